package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultFilter(t *testing.T) {
	f := DefaultFilter()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.PageSize)
	assert.Equal(t, "created_at", f.OrderBy)
	assert.Equal(t, "desc", f.OrderDir)
	assert.Empty(t, f.Search)
}

func TestNewPaginated(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		pageSize   int
		totalPages int
	}{
		{"exact pages", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"empty", 0, 20, 0},
		{"zero page size", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaginated([]string{"a"}, tt.total, 1, tt.pageSize)

			assert.Equal(t, tt.totalPages, p.TotalPages)
			assert.Equal(t, tt.total, p.Total)
			assert.Equal(t, []string{"a"}, p.Items)
		})
	}
}
