package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	TaskRewardPoints  = "5000"
	DailyRewardPoints = 1000
	DailyClaimPeriod  = 24 * time.Hour
)

// RequiredTasks lists the onboarding task titles every account must have
// completed. Titles are matched exactly.
var RequiredTasks = []string{
	"Follow the Official Synthelix X Account",
	"Follow Jessie — Your AI Companion in the Synthelix Ecosystem",
	"Follow Hedgecast AI — Our Partner in AI Development",
}

type Profile struct {
	CompletedTasks []string
	// LastDailyClaim is the raw ISO-8601 timestamp of the previous claim,
	// empty when the account never claimed.
	LastDailyClaim string
}

func (p Profile) HasCompleted(title string) bool {
	for _, done := range p.CompletedTasks {
		if done == title {
			return true
		}
	}
	return false
}

// MissingTasks returns the required titles absent from the profile, in
// catalogue order.
func (p Profile) MissingTasks(required []string) []string {
	missing := make([]string, 0, len(required))
	for _, title := range required {
		if !p.HasCompleted(title) {
			missing = append(missing, title)
		}
	}
	return missing
}

// lastClaimLayouts are the ISO-8601 forms accepted for lastDailyClaim.
// Forms without a zone are read as UTC.
var lastClaimLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// DailyClaimDue reports whether at least one claim period elapsed since the
// last claim. The boundary is inclusive. An unparseable timestamp is an
// error and never due.
func (p Profile) DailyClaimDue(now time.Time) (bool, error) {
	if p.LastDailyClaim == "" {
		return true, nil
	}

	last, err := parseISOTime(strings.TrimSpace(p.LastDailyClaim))
	if err != nil {
		return false, fmt.Errorf("parse last daily claim %q: %w", p.LastDailyClaim, err)
	}

	return now.Sub(last) >= DailyClaimPeriod, nil
}

func parseISOTime(raw string) (time.Time, error) {
	var firstErr error
	for _, layout := range lastClaimLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
