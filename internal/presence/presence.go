// Package presence publishes the supervised bot's liveness to a shared
// store so fleet tooling can see which bots are up without asking each
// host. Publishing is best-effort and never blocks the restart loop.
package presence

import (
	"context"
	"time"
)

// BotStatus is the record published for a supervised bot. Records expire
// via TTL, so a dead keeper disappears on its own.
type BotStatus struct {
	BotID         string    `json:"bot_id"`
	PID           int       `json:"pid,omitempty"`
	State         string    `json:"state"`
	Restarts      int       `json:"restarts"`
	LastExitCode  int       `json:"last_exit_code"`
	StartedAt     time.Time `json:"started_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
	SupervisorPID int       `json:"supervisor_pid"`
}

type Store interface {
	Upsert(ctx context.Context, status BotStatus, ttlSeconds int) error
	Delete(ctx context.Context, botID string) error
	Close() error
}

type NoopStore struct{}

func (NoopStore) Upsert(ctx context.Context, status BotStatus, ttlSeconds int) error {
	return nil
}

func (NoopStore) Delete(ctx context.Context, botID string) error {
	return nil
}

func (NoopStore) Close() error {
	return nil
}
