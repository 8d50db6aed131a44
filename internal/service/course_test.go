package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/devcamper/internal/domain"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
	"github.com/utafrali/devcamper/pkg/validator"
)

type courseFixture struct {
	courses    *mockCourseRepository
	bootcamps  *mockBootcampRepository
	aggregates *mockMaintainer
	svc        *CourseService
}

func newCourseFixture() *courseFixture {
	f := &courseFixture{
		courses:    new(mockCourseRepository),
		bootcamps:  new(mockBootcampRepository),
		aggregates: new(mockMaintainer),
	}
	f.svc = NewCourseService(f.courses, f.bootcamps, f.aggregates, newTestProducer(), newTestLogger())
	return f
}

func publishedCourse() *domain.Course {
	return &domain.Course{
		ID:           "course-1",
		BootcampID:   "bootcamp-1",
		UserID:       publisher.ID,
		Title:        "Front End Web Development",
		Description:  "HTML, CSS and JavaScript",
		Weeks:        8,
		Tuition:      8000,
		MinimumSkill: domain.SkillBeginner,
	}
}

func amount(v float64) *float64 { return &v }

func TestCourseCreate_Success(t *testing.T) {
	f := newCourseFixture()
	f.bootcamps.On("GetByID", mock.Anything, "bootcamp-1").Return(ownedBootcamp(), nil)
	f.courses.On("Create", mock.Anything, mock.AnythingOfType("*domain.Course")).Return(nil)
	f.aggregates.On("RecomputeAverageCost", mock.Anything, "bootcamp-1").Return()

	c, err := f.svc.Create(context.Background(), publisher, "bootcamp-1", &CreateCourseInput{
		Title:        "Full Stack Web Development",
		Description:  "MERN stack",
		Weeks:        12,
		Tuition:      amount(10000),
		MinimumSkill: domain.SkillIntermediate,
	})
	require.NoError(t, err)

	assert.Equal(t, "bootcamp-1", c.BootcampID)
	assert.Equal(t, publisher.ID, c.UserID)
	require.NotNil(t, c.Bootcamp)
	assert.Equal(t, "Devworks Bootcamp", c.Bootcamp.Name)
	f.aggregates.AssertExpectations(t)
}

func TestCourseCreate_NotBootcampOwner(t *testing.T) {
	f := newCourseFixture()
	f.bootcamps.On("GetByID", mock.Anything, "bootcamp-1").Return(ownedBootcamp(), nil)

	_, err := f.svc.Create(context.Background(), other, "bootcamp-1", &CreateCourseInput{
		Title:        "Intruder",
		Description:  "x",
		Weeks:        1,
		Tuition:      amount(0),
		MinimumSkill: domain.SkillBeginner,
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.courses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.aggregates.AssertNotCalled(t, "RecomputeAverageCost", mock.Anything, mock.Anything)
}

func TestCourseCreate_BootcampNotFound(t *testing.T) {
	f := newCourseFixture()
	f.bootcamps.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("bootcamp", "missing"))

	_, err := f.svc.Create(context.Background(), publisher, "missing", &CreateCourseInput{
		Title:        "Orphan",
		Description:  "x",
		Weeks:        1,
		Tuition:      amount(500),
		MinimumSkill: domain.SkillBeginner,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCourseCreate_InvalidSkill(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.Create(context.Background(), publisher, "bootcamp-1", &CreateCourseInput{
		Title:        "Bad",
		Description:  "x",
		Weeks:        1,
		Tuition:      amount(500),
		MinimumSkill: "wizard",
	})
	require.Error(t, err)
	f.bootcamps.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCourseCreate_TuitionRequired(t *testing.T) {
	f := newCourseFixture()

	_, err := f.svc.Create(context.Background(), publisher, "bootcamp-1", &CreateCourseInput{
		Title:        "Free lunch",
		Description:  "No tuition given",
		Weeks:        4,
		MinimumSkill: domain.SkillBeginner,
	})
	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields(), "tuition")
	f.bootcamps.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.courses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCourseCreate_FreeCourseAllowed(t *testing.T) {
	f := newCourseFixture()
	f.bootcamps.On("GetByID", mock.Anything, "bootcamp-1").Return(ownedBootcamp(), nil)
	f.courses.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Course) bool {
		return c.Tuition == 0
	})).Return(nil)
	f.aggregates.On("RecomputeAverageCost", mock.Anything, "bootcamp-1").Return()

	_, err := f.svc.Create(context.Background(), publisher, "bootcamp-1", &CreateCourseInput{
		Title:        "Intro evening",
		Description:  "Free taster",
		Weeks:        1,
		Tuition:      amount(0),
		MinimumSkill: domain.SkillBeginner,
	})
	require.NoError(t, err)
	f.courses.AssertExpectations(t)
}

func TestCourseUpdate_NonOwnerForbidden(t *testing.T) {
	f := newCourseFixture()
	f.courses.On("GetByID", mock.Anything, "course-1").Return(publishedCourse(), nil)

	title := "Renamed"
	_, err := f.svc.Update(context.Background(), other, "course-1", &UpdateCourseInput{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.courses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCourseUpdate_TuitionChangeRecomputes(t *testing.T) {
	f := newCourseFixture()
	f.courses.On("GetByID", mock.Anything, "course-1").Return(publishedCourse(), nil)
	f.courses.On("Update", mock.Anything, mock.AnythingOfType("*domain.Course")).Return(nil)
	f.aggregates.On("RecomputeAverageCost", mock.Anything, "bootcamp-1").Return()

	tuition := 9000.0
	c, err := f.svc.Update(context.Background(), publisher, "course-1", &UpdateCourseInput{Tuition: &tuition})
	require.NoError(t, err)
	assert.Equal(t, 9000.0, c.Tuition)
	f.aggregates.AssertNumberOfCalls(t, "RecomputeAverageCost", 1)
}

func TestCourseUpdate_TitleOnlyDoesNotRecompute(t *testing.T) {
	f := newCourseFixture()
	f.courses.On("GetByID", mock.Anything, "course-1").Return(publishedCourse(), nil)
	f.courses.On("Update", mock.Anything, mock.AnythingOfType("*domain.Course")).Return(nil)

	title := "Front End Basics"
	_, err := f.svc.Update(context.Background(), admin, "course-1", &UpdateCourseInput{Title: &title})
	require.NoError(t, err)
	f.aggregates.AssertNotCalled(t, "RecomputeAverageCost", mock.Anything, mock.Anything)
}

func TestCourseDelete_UsesCourseOwner(t *testing.T) {
	f := newCourseFixture()

	// The bootcamp belongs to publisher; only the course creator counts.
	c := publishedCourse()
	c.UserID = other.ID
	f.courses.On("GetByID", mock.Anything, "course-1").Return(c, nil)
	f.courses.On("Delete", mock.Anything, "course-1").Return(nil)
	f.aggregates.On("RecomputeAverageCost", mock.Anything, "bootcamp-1").Return()

	require.NoError(t, f.svc.Delete(context.Background(), other, "course-1"))
	f.aggregates.AssertExpectations(t)
	f.bootcamps.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestCourseDelete_NonOwnerForbidden(t *testing.T) {
	f := newCourseFixture()
	f.courses.On("GetByID", mock.Anything, "course-1").Return(publishedCourse(), nil)

	err := f.svc.Delete(context.Background(), other, "course-1")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	f.courses.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.aggregates.AssertNotCalled(t, "RecomputeAverageCost", mock.Anything, mock.Anything)
}

func TestCourseList_UnknownBootcamp(t *testing.T) {
	f := newCourseFixture()
	f.bootcamps.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("bootcamp", "missing"))

	_, _, err := f.svc.List(context.Background(), domain.CourseFilter{BootcampID: "missing"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.courses.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}
