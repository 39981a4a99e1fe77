package domain

import (
	"fmt"
	"math"
)

// LowWaterMarkSeconds is the remaining-time threshold below which a running
// node is restarted.
const LowWaterMarkSeconds = 600

type NodeStatus struct {
	Running          bool    `json:"nodeRunning"`
	SecondsRemaining float64 `json:"timeLeft"`
	EarnedCredits    float64 `json:"currentEarnedPoints"`
	CreditsPerHour   float64 `json:"pointsPerHour"`
}

// HasUnbankedCredit reports whether stopping the node now would bank credit.
func (s NodeStatus) HasUnbankedCredit() bool {
	return s.Running && s.EarnedCredits > 0
}

// ClaimedHours is the hours value sent with a stop request. A zero rate
// yields zero rather than an undefined quotient.
func (s NodeStatus) ClaimedHours() float64 {
	if s.CreditsPerHour <= 0 {
		return 0
	}
	return s.EarnedCredits / s.CreditsPerHour
}

// NeedsRestart reports whether the node is stopped or below the low-water mark.
func (s NodeStatus) NeedsRestart(lowWaterMark float64) bool {
	return !s.Running || s.SecondsRemaining < lowWaterMark
}

func (s NodeStatus) StateLabel() string {
	if s.Running {
		return "Running"
	}
	return "Stopped"
}

type PointsSummary struct {
	TotalPoints float64 `json:"points"`
}

// FormatRemaining renders seconds as "1h 2m 3s", dropping empty leading units.
func FormatRemaining(seconds float64) string {
	if seconds <= 0 || math.IsNaN(seconds) {
		return "0s"
	}

	total := int64(math.Floor(seconds))
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	out := ""
	if hours > 0 {
		out += fmt.Sprintf("%dh ", hours)
	}
	if minutes > 0 {
		out += fmt.Sprintf("%dm ", minutes)
	}
	return out + fmt.Sprintf("%ds", secs)
}

func FormatPoints(points float64) string {
	if points == math.Trunc(points) {
		return fmt.Sprintf("%.0f", points)
	}
	return fmt.Sprintf("%.2f", points)
}
