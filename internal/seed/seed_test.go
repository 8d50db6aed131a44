package seed

import (
	"context"
	"errors"
	"io"
	"testing"
	"testing/fstest"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/geocoder"
	"github.com/utafrali/devcamper/pkg/database"
	"github.com/utafrali/devcamper/pkg/logger"
)

const (
	publisherID = "5d7a514b-5d2c-4d11-9a1e-0c3a2f6b1a02"
	readerID    = "5d7a514b-5d2c-4d11-9a1e-0c3a2f6b1a04"
	bootcampID  = "5d713995-b721-4c0e-9b3c-0c3a2f6b2b01"
)

func f64(v float64) *float64 { return &v }

func newTestSeeder(t *testing.T, geo geocoder.Geocoder) (*Seeder, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	s := New(mock, geo, time.Second, logger.NewWithWriter("seed-test", "error", "json", io.Discard))
	s.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return s, mock
}

func smallFixtures() fstest.MapFS {
	return fstest.MapFS{
		UsersFile: {Data: []byte(`[
			{"id": "` + publisherID + `", "name": "John Doe", "email": "John@Devcamper.io", "role": "publisher", "password": "123456"},
			{"id": "` + readerID + `", "name": "Jane Doe", "email": "jane@devcamper.io", "password": "123456"}
		]`)},
		BootcampsFile: {Data: []byte(`[
			{"id": "` + bootcampID + `", "user_id": "` + publisherID + `", "name": "Devworks Bootcamp",
			 "description": "Full stack JavaScript", "address": "233 Bay State Rd Boston MA 02215",
			 "careers": ["Web Development"]}
		]`)},
		CoursesFile: {Data: []byte(`[
			{"id": "5d725a4a-7b29-4b4b-8c6e-0c3a2f6b3c01", "bootcamp_id": "` + bootcampID + `", "user_id": "` + publisherID + `",
			 "title": "Front End", "description": "HTML and CSS", "weeks": 8, "tuition": 8000, "minimum_skill": "beginner"}
		]`)},
		ReviewsFile: {Data: []byte(`[
			{"id": "5d7a5e4f-2c1b-4a8e-9f0d-0c3a2f6b4d01", "bootcamp_id": "` + bootcampID + `", "user_id": "` + readerID + `",
			 "title": "Learned a ton", "text": "Recommended", "rating": 8}
		]`)},
	}
}

func TestImport_WritesAllRecordsAndRecomputesAggregates(t *testing.T) {
	var geocoded []string
	geo := geocoder.Func(func(_ context.Context, q string) (*domain.Location, error) {
		geocoded = append(geocoded, q)
		return &domain.Location{Latitude: 42.35, Longitude: -71.1, City: "Boston"}, nil
	})
	s, mock := newTestSeeder(t, geo)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO bootcamps").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO courses").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO reviews").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT AVG.+tuition.+ FROM courses").
		WithArgs(bootcampID).
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(f64(8000)))
	mock.ExpectExec("UPDATE bootcamps SET average_cost").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("SELECT AVG.+rating.+ FROM reviews").
		WithArgs(bootcampID).
		WillReturnRows(pgxmock.NewRows([]string{"avg"}).AddRow(f64(8)))
	mock.ExpectExec("UPDATE bootcamps SET average_rating").WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	sum, err := s.Import(context.Background(), smallFixtures())
	require.NoError(t, err)

	assert.Equal(t, Summary{Users: 2, Bootcamps: 1, Courses: 1, Reviews: 1}, sum)
	assert.Equal(t, []string{"233 Bay State Rd Boston MA 02215"}, geocoded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_InvalidRecordWritesNothing(t *testing.T) {
	s, mock := newTestSeeder(t, nil)

	fsys := fstest.MapFS{
		ReviewsFile: {Data: []byte(`[
			{"id": "5d7a5e4f-2c1b-4a8e-9f0d-0c3a2f6b4d01", "bootcamp_id": "` + bootcampID + `", "user_id": "` + readerID + `",
			 "title": "Too good", "text": "Eleven out of ten", "rating": 11}
		]`)},
	}

	_, err := s.Import(context.Background(), fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ReviewsFile+"[0]")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_BootcampWithoutLocationNeedsGeocoder(t *testing.T) {
	s, mock := newTestSeeder(t, nil)

	fsys := smallFixtures()
	delete(fsys, UsersFile)

	_, err := s.Import(context.Background(), fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no geocoder")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_GeocodeFailureAborts(t *testing.T) {
	geo := geocoder.Func(func(context.Context, string) (*domain.Location, error) {
		return nil, geocoder.ErrNoResult
	})
	s, mock := newTestSeeder(t, geo)

	fsys := smallFixtures()
	delete(fsys, UsersFile)

	_, err := s.Import(context.Background(), fsys)
	assert.ErrorIs(t, err, geocoder.ErrNoResult)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_InsertFailureRollsBack(t *testing.T) {
	s, mock := newTestSeeder(t, nil)

	fsys := fstest.MapFS{UsersFile: smallFixtures()[UsersFile]}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := s.Import(context.Background(), fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "john@devcamper.io")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_MalformedFile(t *testing.T) {
	s, _ := newTestSeeder(t, nil)

	_, err := s.Import(context.Background(), fstest.MapFS{CoursesFile: {Data: []byte(`{"not": "an array"}`)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode "+CoursesFile)
}

func TestDestroy_DeletesChildrenFirst(t *testing.T) {
	s, mock := newTestSeeder(t, nil)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reviews").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM courses").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("DELETE FROM bootcamps").WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCommit()

	sum, err := s.Destroy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 5, Bootcamps: 2, Courses: 3, Reviews: 3}, sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDestroy_FailureRollsBack(t *testing.T) {
	s, mock := newTestSeeder(t, nil)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reviews").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	_, err := s.Destroy(context.Background())
	assert.ErrorContains(t, err, "delete reviews")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDefaultData_IsConsistent(t *testing.T) {
	s, _ := newTestSeeder(t, nil)

	fx, err := s.load(context.Background(), DefaultData())
	require.NoError(t, err)
	require.NotEmpty(t, fx.users)
	require.NotEmpty(t, fx.bootcamps)

	users := map[string]domain.Role{}
	for _, u := range fx.users {
		users[u.ID] = u.Role
		assert.NotEqual(t, "123456", u.PasswordHash)
	}
	bootcamps := map[string]bool{}
	for _, b := range fx.bootcamps {
		bootcamps[b.ID] = true
		assert.NotNil(t, b.Location, b.Name)
		assert.Equal(t, domain.DefaultPhoto, b.Photo)
		assert.Contains(t, []domain.Role{domain.RolePublisher, domain.RoleAdmin}, users[b.UserID], b.Name)
	}
	for _, c := range fx.courses {
		assert.True(t, bootcamps[c.BootcampID], c.Title)
	}
	type pair struct{ bootcamp, user string }
	seen := map[pair]bool{}
	for _, r := range fx.reviews {
		assert.True(t, bootcamps[r.BootcampID], r.Title)
		p := pair{r.BootcampID, r.UserID}
		assert.False(t, seen[p], "duplicate review %s", r.Title)
		seen[p] = true
	}
}
