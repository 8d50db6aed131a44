package domain

import "time"

// Rating bounds for reviews.
const (
	MinRating = 1
	MaxRating = 10
)

// DuplicateReviewMessage rejects a second review of a bootcamp by the same user.
const DuplicateReviewMessage = "user has already submitted a review for this bootcamp"

// Review is a user's rating of a bootcamp. A user reviews a bootcamp at most once.
type Review struct {
	ID         string           `json:"id"`
	BootcampID string           `json:"bootcamp_id"`
	UserID     string           `json:"user_id"`
	Title      string           `json:"title"`
	Text       string           `json:"text"`
	Rating     int              `json:"rating"`
	Bootcamp   *BootcampSummary `json:"bootcamp,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ReviewFilter narrows and orders a review listing.
type ReviewFilter struct {
	BootcampID string
	UserID     string
	RatingGTE  int
	Sort       string
	Limit      int
	Offset     int
}
