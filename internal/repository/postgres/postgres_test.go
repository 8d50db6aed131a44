package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/repository"
	"github.com/utafrali/devcamper/pkg/database"
	apperrors "github.com/utafrali/devcamper/pkg/errors"
)

// Compile-time interface checks.
var (
	_ repository.BootcampRepository = (*BootcampRepository)(nil)
	_ repository.CourseRepository   = (*CourseRepository)(nil)
	_ repository.ReviewRepository   = (*ReviewRepository)(nil)
	_ repository.UserRepository     = (*UserRepository)(nil)
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return mock
}

func f64(v float64) *float64 { return &v }

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

var bootcampColumnNames = []string{
	"id", "user_id", "name", "slug", "description", "website", "phone", "email", "address",
	"latitude", "longitude", "formatted_address", "street", "city", "state", "zipcode", "country",
	"careers", "housing", "job_assistance", "job_guarantee", "accept_gi", "photo",
	"average_cost", "average_rating", "created_at", "updated_at",
}

func sampleBootcamp() domain.Bootcamp {
	return domain.Bootcamp{
		ID:          "b-1",
		UserID:      "u-1",
		Name:        "Devworks Bootcamp",
		Slug:        "devworks-bootcamp",
		Description: "Full stack web development",
		Website:     "https://devworks.com",
		Phone:       "(111) 111-1111",
		Email:       "enroll@devworks.com",
		Address:     "233 Bay State Rd Boston MA 02215",
		Location: &domain.Location{
			Latitude:         42.350846,
			Longitude:        -71.103277,
			FormattedAddress: "233 Bay State Rd, Boston, MA 02215-1405, US",
			Street:           "233 Bay State Rd",
			City:             "Boston",
			State:            "MA",
			Zipcode:          "02215-1405",
			Country:          "US",
		},
		Careers:     []string{"Web Development", "UI/UX"},
		Housing:     true,
		AcceptGI:    true,
		Photo:       domain.DefaultPhoto,
		AverageCost: f64(10000),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func bootcampRow(b domain.Bootcamp) []any {
	var lat, lng *float64
	loc := domain.Location{}
	if b.Location != nil {
		lat, lng = f64(b.Location.Latitude), f64(b.Location.Longitude)
		loc = *b.Location
	}
	return []any{
		b.ID, b.UserID, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email, b.Address,
		lat, lng, loc.FormattedAddress, loc.Street, loc.City, loc.State, loc.Zipcode, loc.Country,
		b.Careers, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGI, b.Photo,
		b.AverageCost, b.AverageRating, b.CreatedAt, b.UpdatedAt,
	}
}

// ─── BootcampRepository ─────────────────────────────────────────────────────

func TestBootcampRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	l := b.Location
	mock.ExpectExec("INSERT INTO bootcamps").
		WithArgs(
			b.ID, b.UserID, b.Name, b.Slug, b.Description, b.Website, b.Phone, b.Email, b.Address,
			l.Latitude, l.Longitude, l.FormattedAddress, l.Street, l.City, l.State, l.Zipcode, l.Country,
			b.Careers, b.Housing, b.JobAssistance, b.JobGuarantee, b.AcceptGI, b.Photo, b.CreatedAt, b.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_Create_DuplicateName(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	b.Location = nil
	mock.ExpectExec("INSERT INTO bootcamps").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "bootcamps_name_key"})

	err := repo.Create(context.Background(), &b)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_CreateSole_Inserts(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id::text FROM users .+ FOR UPDATE").
		WithArgs(b.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(b.UserID))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(b.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO bootcamps").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	created, err := repo.CreateSole(context.Background(), &b)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_CreateSole_OwnerHasOne(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id::text FROM users .+ FOR UPDATE").
		WithArgs(b.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(b.UserID))
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(b.UserID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	created, err := repo.CreateSole(context.Background(), &b)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_CreateSole_UnknownOwner(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id::text FROM users .+ FOR UPDATE").
		WithArgs(b.UserID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.CreateSole(context.Background(), &b)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_GetByID_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	mock.ExpectQuery("SELECT .+ FROM bootcamps b WHERE b.id").
		WithArgs(b.ID).
		WillReturnRows(pgxmock.NewRows(bootcampColumnNames).AddRow(bootcampRow(b)...))

	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Name, got.Name)
	assert.Equal(t, b.Careers, got.Careers)
	require.NotNil(t, got.Location)
	assert.Equal(t, *b.Location, *got.Location)
	assert.Equal(t, b.AverageCost, got.AverageCost)
	assert.Nil(t, got.AverageRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_GetByID_WithoutCoordinates(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	b.Location = nil
	mock.ExpectQuery("SELECT .+ FROM bootcamps b WHERE b.id").
		WithArgs(b.ID).
		WillReturnRows(pgxmock.NewRows(bootcampColumnNames).AddRow(bootcampRow(b)...))

	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_GetByID_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	mock.ExpectQuery("SELECT .+ FROM bootcamps b WHERE b.id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByID(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_GetByID_Timeout(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	mock.ExpectQuery("SELECT .+ FROM bootcamps b WHERE b.id").
		WithArgs("b-1").
		WillReturnError(context.DeadlineExceeded)

	_, err := repo.GetByID(context.Background(), "b-1")
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_List_Filters(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	housing := true
	mock.ExpectQuery("SELECT .+ FROM bootcamps b WHERE b.careers && .+ AND b.housing = .+ AND b.average_cost <= .+ ORDER BY b.average_cost DESC LIMIT").
		WithArgs([]string{"UI/UX"}, true, 12000.0, 25, 25).
		WillReturnRows(pgxmock.NewRows(append(bootcampColumnNames, "total_count")).AddRow(append(bootcampRow(b), 26)...))

	got, total, err := repo.List(context.Background(), domain.BootcampFilter{
		Careers:        []string{"UI/UX"},
		Housing:        &housing,
		AverageCostLTE: f64(12000),
		Sort:           "-average_cost,unknown",
		Limit:          25,
		Offset:         25,
	})
	require.NoError(t, err)
	assert.Equal(t, 26, total)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_List_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	mock.ExpectQuery("SELECT .+ FROM bootcamps b ORDER BY b.created_at DESC").
		WillReturnRows(pgxmock.NewRows(append(bootcampColumnNames, "total_count")))

	got, total, err := repo.List(context.Background(), domain.BootcampFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_Update_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	mock.ExpectExec("UPDATE bootcamps").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &b)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_WithinRadius(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	b := sampleBootcamp()
	radians := domain.RadiusRadians(10, domain.Miles)
	mock.ExpectQuery("SELECT .+ FROM bootcamps b WHERE b.latitude IS NOT NULL .+ acos").
		WithArgs(42.35, -71.1, radians).
		WillReturnRows(pgxmock.NewRows(bootcampColumnNames).AddRow(bootcampRow(b)...))

	got, err := repo.WithinRadius(context.Background(), 42.35, -71.1, radians)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_ExistsByUser(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_SetAverageCost(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	mock.ExpectExec("UPDATE bootcamps SET average_cost").
		WithArgs(f64(110), "b-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE bootcamps SET average_cost").
		WithArgs((*float64)(nil), "b-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetAverageCost(context.Background(), "b-1", f64(110)))
	require.NoError(t, repo.SetAverageCost(context.Background(), "b-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBootcampRepository_SetPhoto_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewBootcampRepository(mock, time.Second)

	mock.ExpectExec("UPDATE bootcamps SET photo").
		WithArgs("photo_b-9.jpg", pgxmock.AnyArg(), "b-9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.SetPhoto(context.Background(), "b-9", "photo_b-9.jpg")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── CourseRepository ───────────────────────────────────────────────────────

var courseColumnNames = []string{
	"id", "bootcamp_id", "user_id", "title", "description", "weeks", "tuition",
	"minimum_skill", "scholarship_available", "created_at", "updated_at",
	"name", "description",
}

func sampleCourse() domain.Course {
	return domain.Course{
		ID:           "c-1",
		BootcampID:   "b-1",
		UserID:       "u-1",
		Title:        "Front End Web Development",
		Description:  "HTML, CSS and JavaScript",
		Weeks:        8,
		Tuition:      8000,
		MinimumSkill: domain.SkillBeginner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCourseRepository_GetByID_IncludesBootcamp(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCourseRepository(mock, time.Second)

	c := sampleCourse()
	mock.ExpectQuery("SELECT .+ FROM courses c JOIN bootcamps b ON .+ WHERE c.id").
		WithArgs(c.ID).
		WillReturnRows(pgxmock.NewRows(courseColumnNames).AddRow(
			c.ID, c.BootcampID, c.UserID, c.Title, c.Description, c.Weeks, c.Tuition,
			c.MinimumSkill, c.ScholarshipAvailable, c.CreatedAt, c.UpdatedAt,
			"Devworks Bootcamp", "Full stack web development",
		))

	got, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	require.NotNil(t, got.Bootcamp)
	assert.Equal(t, domain.BootcampSummary{ID: "b-1", Name: "Devworks Bootcamp", Description: "Full stack web development"}, *got.Bootcamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_List_ByBootcamp(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCourseRepository(mock, time.Second)

	c := sampleCourse()
	mock.ExpectQuery("SELECT .+ count.+ OVER.+ FROM courses c .+ WHERE c.bootcamp_id = .+ ORDER BY c.tuition ASC").
		WithArgs("b-1").
		WillReturnRows(pgxmock.NewRows(append(courseColumnNames, "total_count")).AddRow(
			c.ID, c.BootcampID, c.UserID, c.Title, c.Description, c.Weeks, c.Tuition,
			c.MinimumSkill, c.ScholarshipAvailable, c.CreatedAt, c.UpdatedAt,
			"Devworks Bootcamp", "Full stack web development", 1,
		))

	got, total, err := repo.List(context.Background(), domain.CourseFilter{BootcampID: "b-1", Sort: "tuition"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "b-1", got[0].Bootcamp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_Delete_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCourseRepository(mock, time.Second)

	mock.ExpectExec("DELETE FROM courses").
		WithArgs("c-9").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "c-9"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_AverageTuition(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCourseRepository(mock, time.Second)

	mock.ExpectQuery("SELECT AVG.+tuition.+ FROM courses").
		WithArgs("b-1").
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(f64(102.5)))
	mock.ExpectQuery("SELECT AVG.+tuition.+ FROM courses").
		WithArgs("b-2").
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow((*float64)(nil)))

	avg, ok, err := repo.AverageTuition(context.Background(), "b-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 102.5, avg)

	_, ok, err = repo.AverageTuition(context.Background(), "b-2")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── ReviewRepository ───────────────────────────────────────────────────────

func sampleReview() domain.Review {
	return domain.Review{
		ID:         "r-1",
		BootcampID: "b-1",
		UserID:     "u-2",
		Title:      "Learned a ton",
		Text:       "Great instructors",
		Rating:     8,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestReviewRepository_Create_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock, time.Second)

	rv := sampleReview()
	mock.ExpectExec("INSERT INTO reviews").
		WithArgs(rv.ID, rv.BootcampID, rv.UserID, rv.Title, rv.Text, rv.Rating, rv.CreatedAt, rv.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), &rv))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_Create_Duplicate(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock, time.Second)

	rv := sampleReview()
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_bootcamp_user_key"})

	err := repo.Create(context.Background(), &rv)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_ExistsForUser(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock, time.Second)

	mock.ExpectQuery("SELECT EXISTS .+ FROM reviews").
		WithArgs("b-1", "u-2").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.ExistsForUser(context.Background(), "b-1", "u-2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_AverageRating(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock, time.Second)

	mock.ExpectQuery("SELECT AVG.+rating.+ FROM reviews").
		WithArgs("b-1").
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(f64(7)))

	avg, ok, err := repo.AverageRating(context.Background(), "b-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7.0, avg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_List_QueryError(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock, time.Second)

	mock.ExpectQuery("SELECT .+ FROM reviews r").
		WillReturnError(errors.New("connection reset"))

	_, _, err := repo.List(context.Background(), domain.ReviewFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list reviews")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ─── UserRepository ─────────────────────────────────────────────────────────

var userColumnNames = []string{"id", "name", "email", "role", "password_hash", "created_at", "updated_at"}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock, time.Second)

	u := domain.User{ID: "u-1", Name: "John", Email: "John@Gmail.com", Role: domain.RolePublisher, PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
	mock.ExpectExec("INSERT INTO users").
		WithArgs("u-1", "John", "john@gmail.com", "publisher", "hash", now, now).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &u)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail_LowerCases(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock, time.Second)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email").
		WithArgs("john@gmail.com").
		WillReturnRows(pgxmock.NewRows(userColumnNames).AddRow(
			"u-1", "John", "john@gmail.com", domain.RolePublisher, "hash", now, now,
		))

	u, err := repo.GetByEmail(context.Background(), "JOHN@gmail.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, domain.RolePublisher, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdatePassword_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewUserRepository(mock, time.Second)

	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("newhash", pgxmock.AnyArg(), "u-9").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.ErrorIs(t, repo.UpdatePassword(context.Background(), "u-9", "newhash"), apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRepository_BootcampIDsByUser(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewReviewRepository(mock, time.Second)

	mock.ExpectQuery(`SELECT DISTINCT r.bootcamp_id.+ FROM reviews r.+ WHERE r.user_id = \$1 AND b.user_id <> \$1`).
		WithArgs("u-2").
		WillReturnRows(pgxmock.NewRows([]string{"bootcamp_id"}).AddRow("b-1").AddRow("b-2"))

	ids, err := repo.BootcampIDsByUser(context.Background(), "u-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"b-1", "b-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepository_BootcampIDsByUser_None(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewCourseRepository(mock, time.Second)

	mock.ExpectQuery(`SELECT DISTINCT c.bootcamp_id.+ FROM courses c`).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"bootcamp_id"}))

	ids, err := repo.BootcampIDsByUser(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
