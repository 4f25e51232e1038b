package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateMemoryUsage(t *testing.T) {
	tests := []struct {
		devices, chars int
		want           float64
	}{
		{2, 0, 100},
		{2, 2000, 110},
		{4, 10000, 250},
		{0, 0, 0},
		{1, 500, 52.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateMemoryUsage(tt.devices, tt.chars), "devices=%d chars=%d", tt.devices, tt.chars)
	}
}

func TestThresholds(t *testing.T) {
	assert.False(t, IsAtWarningThreshold(249.9))
	assert.True(t, IsAtWarningThreshold(250))
	assert.False(t, IsAtHardLimit(349.9))
	assert.True(t, IsAtHardLimit(350))
}

func TestCanEnableDevice(t *testing.T) {
	t.Run("past the hard limit is refused", func(t *testing.T) {
		check := CanEnableDevice(6, 10000)
		assert.False(t, check.CanEnable)
		assert.True(t, check.WouldExceedLimit)
		assert.True(t, check.WouldExceedWarning)
		assert.Equal(t, 400.0, check.ProjectedUsage)
		assert.Contains(t, check.Message, "limit")
	})

	t.Run("exactly at the hard limit is allowed", func(t *testing.T) {
		check := CanEnableDevice(6, 0)
		assert.Equal(t, 350.0, check.ProjectedUsage)
		assert.True(t, check.CanEnable)
		assert.False(t, check.WouldExceedLimit)
		assert.True(t, check.WouldExceedWarning)
		assert.Contains(t, check.Message, "warning")
	})

	t.Run("below warning has no message", func(t *testing.T) {
		check := CanEnableDevice(1, 1000)
		assert.True(t, check.CanEnable)
		assert.False(t, check.WouldExceedWarning)
		assert.Empty(t, check.Message)
	})
}

func TestMaxDeviceCount(t *testing.T) {
	tests := []struct {
		chars int
		want  int
	}{
		{0, 7},
		{10000, 6},
		{20000, 5},
		{1000000, 1},
	}
	for _, tt := range tests {
		got := MaxDeviceCount(tt.chars)
		assert.Equal(t, tt.want, got, "chars=%d", tt.chars)
		if got > 1 {
			assert.LessOrEqual(t, CalculateMemoryUsage(got, tt.chars), HardLimit)
			assert.Greater(t, CalculateMemoryUsage(got+1, tt.chars), HardLimit)
		}
	}
}

func TestMemoryStatus(t *testing.T) {
	tests := []struct {
		usage     float64
		wantLevel Level
		wantPct   float64
	}{
		{100, LevelNormal, 29},
		{250, LevelWarning, 71},
		{350, LevelCritical, 100},
		{700, LevelCritical, 100},
	}
	for _, tt := range tests {
		got := MemoryStatus(tt.usage)
		assert.Equal(t, tt.wantLevel, got.Level, "usage=%v", tt.usage)
		assert.Equal(t, tt.wantPct, got.Percentage, "usage=%v", tt.usage)
		assert.NotEmpty(t, got.Message)
	}
}
