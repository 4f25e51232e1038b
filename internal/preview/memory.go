package preview

import (
	"fmt"
	"math"
)

// Memory heuristic for the multi-device preview grid, in megabytes.
const (
	MBPerDevice        = 50.0
	MBPer1000Chars     = 5.0
	WarningThreshold   = 250.0
	HardLimit          = 350.0
	minimumDeviceCount = 1
)

type Level string

const (
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

type DeviceCheck struct {
	CanEnable          bool    `json:"canEnable"`
	WouldExceedWarning bool    `json:"wouldExceedWarning"`
	WouldExceedLimit   bool    `json:"wouldExceedLimit"`
	ProjectedUsage     float64 `json:"projectedUsage"`
	Message            string  `json:"message,omitempty"`
}

type Status struct {
	Level      Level   `json:"level"`
	Message    string  `json:"message"`
	Percentage float64 `json:"percentage"`
}

func CalculateMemoryUsage(devices, chars int) float64 {
	return float64(devices)*MBPerDevice + (float64(chars)/1000)*MBPer1000Chars
}

func IsAtWarningThreshold(usage float64) bool {
	return usage >= WarningThreshold
}

func IsAtHardLimit(usage float64) bool {
	return usage >= HardLimit
}

// CanEnableDevice projects usage with one more device. Enabling is refused
// only when the projection is above the hard limit.
func CanEnableDevice(current, chars int) DeviceCheck {
	projected := CalculateMemoryUsage(current+1, chars)
	check := DeviceCheck{
		CanEnable:          projected <= HardLimit,
		WouldExceedWarning: projected > WarningThreshold,
		WouldExceedLimit:   projected > HardLimit,
		ProjectedUsage:     projected,
	}
	switch {
	case check.WouldExceedLimit:
		check.Message = fmt.Sprintf("Enabling another device would use about %.0f MB, above the %.0f MB limit.", projected, HardLimit)
	case check.WouldExceedWarning:
		check.Message = fmt.Sprintf("Enabling another device would use about %.0f MB, above the %.0f MB warning threshold.", projected, WarningThreshold)
	}
	return check
}

// MaxDeviceCount is the largest device count whose usage stays within the
// hard limit, and never less than one.
func MaxDeviceCount(chars int) int {
	budget := HardLimit - (float64(chars)/1000)*MBPer1000Chars
	n := int(math.Floor(budget / MBPerDevice))
	return max(n, minimumDeviceCount)
}

func MemoryStatus(usage float64) Status {
	percentage := math.Round(min(usage/HardLimit*100, 100))
	switch {
	case IsAtHardLimit(usage):
		return Status{
			Level:      LevelCritical,
			Message:    "Memory usage is critical. Disable some preview devices to keep playback smooth.",
			Percentage: percentage,
		}
	case IsAtWarningThreshold(usage):
		return Status{
			Level:      LevelWarning,
			Message:    "Memory usage is high. Consider disabling preview devices you do not need.",
			Percentage: percentage,
		}
	default:
		return Status{
			Level:      LevelNormal,
			Message:    "Memory usage is normal.",
			Percentage: percentage,
		}
	}
}
