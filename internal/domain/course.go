package domain

import "time"

// Minimum skill levels a course can require.
const (
	SkillBeginner     = "beginner"
	SkillIntermediate = "intermediate"
	SkillAdvanced     = "advanced"
)

// Skills lists the accepted minimum skill levels.
var Skills = []string{SkillBeginner, SkillIntermediate, SkillAdvanced}

// Course is a program offered by a bootcamp. Its tuition feeds the bootcamp's average cost.
type Course struct {
	ID                   string           `json:"id"`
	BootcampID           string           `json:"bootcamp_id"`
	UserID               string           `json:"user_id"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Weeks                int              `json:"weeks"`
	Tuition              float64          `json:"tuition"`
	MinimumSkill         string           `json:"minimum_skill"`
	ScholarshipAvailable bool             `json:"scholarship_available"`
	Bootcamp             *BootcampSummary `json:"bootcamp,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

// CourseFilter narrows and orders a course listing.
type CourseFilter struct {
	BootcampID   string
	MinimumSkill string
	TuitionLTE   *float64
	Sort         string
	Limit        int
	Offset       int
}
