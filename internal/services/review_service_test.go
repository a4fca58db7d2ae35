package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studybuddy-app/backend/internal/models"
)

func TestAverageRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []float64
		want    float64
	}{
		{"no reviews", nil, 0},
		{"single review", []float64{4}, 4},
		{"existing 3 and 5 plus new 4 averages to 4.0", []float64{3, 5, 4}, 4.0},
		{"rounds to one decimal", []float64{4, 5}, 4.5},
		{"rounds down", []float64{3, 3, 4}, 3.3},
		{"rounds up", []float64{3, 4, 4}, 3.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := make([]models.Review, 0, len(tt.ratings))
			for _, r := range tt.ratings {
				reviews = append(reviews, models.Review{Rating: r})
			}
			assert.Equal(t, tt.want, AverageRating(reviews))
		})
	}
}
