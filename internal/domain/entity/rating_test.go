package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRating(t *testing.T) {
	tests := []struct {
		name  string
		sum   int64
		count int64
		want  float64
	}{
		{name: "two reviews", sum: 9, count: 2, want: 4.5},
		{name: "single review", sum: 4, count: 1, want: 4},
		{name: "repeating decimal rounds half up", sum: 14, count: 3, want: 4.67},
		{name: "rounds down", sum: 13, count: 3, want: 4.33},
		{name: "exact half at third place", sum: 37, count: 8, want: 4.63},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRating(tt.sum, tt.count)
			require.NotNil(t, r.Average)
			assert.Equal(t, tt.want, *r.Average)
			assert.Equal(t, tt.count, r.Count)
		})
	}
}

func TestNewRatingUnrated(t *testing.T) {
	r := NewRating(0, 0)
	assert.Nil(t, r.Average)
	assert.Zero(t, r.Count)

	assert.Equal(t, Rating{}, RatingFromStats(nil))
}
