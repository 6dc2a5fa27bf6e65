package middleware

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCustomRate(t *testing.T) {
	tests := []struct {
		input  string
		limit  int64
		period time.Duration
	}{
		{"10-2m", 10, 2 * time.Minute},
		{"30-20m", 30, 20 * time.Minute},
		{"5-1h", 5, time.Hour},
		{"20-10s", 20, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rate, err := ParseCustomRate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.limit, rate.Limit)
			assert.Equal(t, tt.period, rate.Period)
		})
	}
}

func TestParseCustomRateInvalid(t *testing.T) {
	for _, input := range []string{"", "10", "10-2d", "x-2m", "10-ym", "10-2m-5s"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCustomRate(input)
			assert.Error(t, err)
		})
	}
}

func TestLimiterKeyPrefersUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c := &gin.Context{}

	userID := uuid.New()
	c.Set("user_id", userID)
	assert.Equal(t, userID.String(), limiterKey(c))
}
