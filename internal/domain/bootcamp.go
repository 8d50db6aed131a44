package domain

import (
	"time"

	"github.com/utafrali/devcamper/pkg/validator"
)

// DefaultPhoto is the photo of a bootcamp that has not uploaded one.
const DefaultPhoto = "no-photo.jpg"

// Careers a bootcamp can prepare students for.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

func init() {
	validator.RegisterOneOf("career", Careers...)
	validator.RegisterOneOf("skill", Skills...)
	validator.RegisterOneOf("signup_role", string(RoleUser), string(RolePublisher))
	validator.RegisterOneOf("role", string(RoleUser), string(RolePublisher), string(RoleAdmin))
}

// Bootcamp is a training provider listed in the directory.
//
// AverageCost and AverageRating are derived from the bootcamp's courses and
// reviews and are nil while there are none.
type Bootcamp struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Website       string    `json:"website,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address"`
	Location      *Location `json:"location,omitempty"`
	Careers       []string  `json:"careers"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"job_assistance"`
	JobGuarantee  bool      `json:"job_guarantee"`
	AcceptGI      bool      `json:"accept_gi"`
	Photo         string    `json:"photo"`
	AverageCost   *float64  `json:"average_cost"`
	AverageRating *float64  `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BootcampFilter narrows and orders a bootcamp listing.
type BootcampFilter struct {
	Careers          []string
	Housing          *bool
	JobAssistance    *bool
	JobGuarantee     *bool
	AcceptGI         *bool
	AverageCostLTE   *float64
	AverageRatingGTE *float64
	Sort             string
	Limit            int
	Offset           int
}

// BootcampSummary is the short form of a bootcamp embedded in courses and reviews.
type BootcampSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
