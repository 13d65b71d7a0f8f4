// Package history records profile and transform runs.
//
// Runs are kept in PostgreSQL when DATABASE_URL is configured and in memory
// otherwise. A failed history write never fails the run itself; callers log
// it and move on.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Command names the operation a run performed.
type Command string

const (
	CommandProfile   Command = "profile"
	CommandTransform Command = "transform"
)

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Run is one recorded invocation.
type Run struct {
	ID                string    `json:"id"`
	Command           Command   `json:"command"`
	Source            string    `json:"source"`
	Output            string    `json:"output,omitempty"`
	Status            Status    `json:"status"`
	RowsIn            int       `json:"rowsIn"`
	RowsOut           int       `json:"rowsOut"`
	DuplicatesRemoved int       `json:"duplicatesRemoved"`
	ErrorCode         string    `json:"errorCode,omitempty"`
	StartedAt         time.Time `json:"startedAt"`
	FinishedAt        time.Time `json:"finishedAt"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists runs. List returns the newest runs first.
type Store interface {
	Record(ctx context.Context, run Run) error
	List(ctx context.Context, limit int) ([]Run, error)
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
