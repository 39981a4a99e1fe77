package synthelix

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bnema/synthelix-nodes/internal/domain"
)

type csrfResponse struct {
	CSRFToken string `json:"csrfToken"`
}

type profileResponse struct {
	CompletedTasks []string `json:"completedTasks"`
	LastDailyClaim *string  `json:"lastDailyClaim"`
}

type taskCompleteRequest struct {
	TaskTitle string `json:"taskTitle"`
	Points    string `json:"points"`
}

type dailyRewardRequest struct {
	Points int `json:"points"`
}

type nodeStopRequest struct {
	ClaimedHours float64 `json:"claimedHours"`
	PointsEarned float64 `json:"pointsEarned"`
}

type nodeStatusResponse struct {
	NodeRunning         bool   `json:"nodeRunning"`
	TimeLeft            number `json:"timeLeft"`
	CurrentEarnedPoints number `json:"currentEarnedPoints"`
	PointsPerHour       number `json:"pointsPerHour"`
}

type pointsResponse struct {
	Points number `json:"points"`
}

// number accepts JSON numbers, numeric strings and null.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*n = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("parse numeric string %q: %w", raw, err)
		}
		*n = number(parsed)
		return nil
	}

	var parsed float64
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*n = number(parsed)
	return nil
}

// StatusError is a non-2xx reply from the service.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Unwrap maps rejected credentials onto domain.ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return domain.ErrUnauthorized
	}
	return nil
}

func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
