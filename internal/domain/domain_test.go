package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleModerator.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestValidateYear(t *testing.T) {
	current := time.Now().Year()

	assert.NoError(t, ValidateYear(current))
	assert.NoError(t, ValidateYear(1895))
	// Отрицательные годы допустимы: "Илиада" старше нашей эры
	assert.NoError(t, ValidateYear(-700))

	err := ValidateYear(current + 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrYearInFuture)
}

func TestValidateScore(t *testing.T) {
	for score := int32(1); score <= 10; score++ {
		assert.NoError(t, ValidateScore(score))
	}
	assert.ErrorIs(t, ValidateScore(0), ErrScoreRange)
	assert.ErrorIs(t, ValidateScore(11), ErrScoreRange)
	assert.ErrorIs(t, ValidateScore(-3), ErrScoreRange)
}

func TestRoundRating(t *testing.T) {
	tests := []struct {
		name string
		avg  float64
		want float64
	}{
		{"целое остается целым", 8.0, 8.0},
		{"округление вниз", 7.44, 7.4},
		{"округление вверх", 7.46, 7.5},
		{"граница в половину", 7.25, 7.3},
		{"две трети", 20.0 / 3.0, 6.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RoundRating(tt.avg), 1e-9)
		})
	}
}

func TestDisplayRating(t *testing.T) {
	t.Run("без отзывов рейтинга нет", func(t *testing.T) {
		agg := &AggregatedRating{TitleID: "t1", Count: 0}
		assert.Nil(t, agg.DisplayRating())

		var nilAgg *AggregatedRating
		assert.Nil(t, nilAgg.DisplayRating())
	})

	t.Run("среднее округляется до одного знака", func(t *testing.T) {
		agg := &AggregatedRating{TitleID: "t1", Average: 8.333333, Count: 3}
		rating := agg.DisplayRating()
		require.NotNil(t, rating)
		assert.InDelta(t, 8.3, *rating, 1e-9)
	})
}
