package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Page: 1, PerPage: 25, Offset: 0}},
		{"explicit", "?page=3&per_page=10", Params{Page: 3, PerPage: 10, Offset: 20}},
		{"per_page above max", "?per_page=500", Params{Page: 1, PerPage: 25, Offset: 0}},
		{"garbage", "?page=abc&per_page=-2", Params{Page: 1, PerPage: 25, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/bootcamps"+tt.query, nil)
			assert.Equal(t, tt.want, FromRequest(r))
		})
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage(45, Params{Page: 2, PerPage: 20, Offset: 20})
	assert.Equal(t, 45, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	require.NotNil(t, p.Next)
	require.NotNil(t, p.Prev)
	assert.Equal(t, 3, p.Next.Page)
	assert.Equal(t, 1, p.Prev.Page)

	last := NewPage(45, Params{Page: 3, PerPage: 20, Offset: 40})
	assert.Nil(t, last.Next)

	first := NewPage(5, DefaultParams())
	assert.Nil(t, first.Prev)
	assert.Nil(t, first.Next)
}

func TestSort(t *testing.T) {
	cols := map[string]string{"name": "name", "average_cost": "average_cost", "created_at": "created_at"}

	assert.Equal(t, "average_cost DESC, name ASC", Sort("-average_cost,name", cols, "created_at DESC"))
	assert.Equal(t, "created_at DESC", Sort("", cols, "created_at DESC"))
	assert.Equal(t, "created_at DESC", Sort("password; DROP TABLE users", cols, "created_at DESC"))
}
