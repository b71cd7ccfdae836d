package model_test

import (
	"testing"
	"time"

	"github.com/Amvnn/QuickShare/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFileExpired(t *testing.T) {
	expiry := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	file := &model.File{ExpiresAt: expiry}

	assert.False(t, file.Expired(expiry.Add(-30*time.Minute)))
	assert.False(t, file.Expired(expiry), "boundary is strict")
	assert.True(t, file.Expired(expiry.Add(time.Second)))
	assert.True(t, file.Expired(expiry.Add(time.Hour)))
}

func TestFileTimeRemaining(t *testing.T) {
	expiry := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	file := &model.File{ExpiresAt: expiry}

	assert.Equal(t, 1, file.TimeRemaining(expiry.Add(-30*time.Minute)), "partial hours round up")
	assert.Equal(t, 1, file.TimeRemaining(expiry.Add(-time.Hour)))
	assert.Equal(t, 2, file.TimeRemaining(expiry.Add(-61*time.Minute)))
	assert.Equal(t, 0, file.TimeRemaining(expiry))
	assert.Equal(t, 0, file.TimeRemaining(expiry.Add(time.Hour)), "floored at zero")
}
