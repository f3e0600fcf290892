package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 12}.Offset())
	assert.Equal(t, 24, Params{Page: 3, Limit: 12}.Offset())
	assert.Equal(t, 0, Params{Page: 0, Limit: 12}.Offset())
}

func TestNewMetaRoundsPagesUp(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		pages int
	}{
		{0, 12, 0},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{25, 12, 3},
		{100, 50, 2},
	}
	for _, tc := range cases {
		meta := NewMeta(Params{Page: 1, Limit: tc.limit}, tc.total)
		assert.Equal(t, tc.pages, meta.Pages, "total=%d limit=%d", tc.total, tc.limit)
		assert.Equal(t, tc.total, meta.Total)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Params{Page: 1, Limit: 1}.Validate())
	assert.NoError(t, Params{Page: 9, Limit: MaxLimit}.Validate())
	assert.Error(t, Params{Page: 0, Limit: 12}.Validate())
	assert.Error(t, Params{Page: 1, Limit: 0}.Validate())
	assert.Error(t, Params{Page: 1, Limit: MaxLimit + 1}.Validate())
}
