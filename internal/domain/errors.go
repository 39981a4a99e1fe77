package domain

import "errors"

var (
	ErrNoKeys           = errors.New("no secret keys found")
	ErrProxiesMissing   = errors.New("proxy list not found")
	ErrUnauthorized     = errors.New("session rejected by service")
	ErrSessionMissing   = errors.New("no live session")
	ErrRetriesExhausted = errors.New("retry budget exhausted")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)
