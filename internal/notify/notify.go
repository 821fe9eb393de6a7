package notify

import (
	"context"
	"encoding/json"
	"time"
)

// Change describes one committed mutation of the bookmark store.
type Change struct {
	Op    string    `json:"op"`
	UUIDs []string  `json:"uuids,omitempty"`
	At    time.Time `json:"at"`
}

// Notifier is told about every committed change.
type Notifier interface {
	Notify(ctx context.Context, c Change) error
	Close() error
}

// Nop drops every change.
type Nop struct{}

func (Nop) Notify(context.Context, Change) error { return nil }
func (Nop) Close() error                         { return nil }

// Func adapts a function to Notifier. Close is a no-op.
type Func func(ctx context.Context, c Change) error

func (f Func) Notify(ctx context.Context, c Change) error { return f(ctx, c) }
func (Func) Close() error                                 { return nil }

func encode(c Change) ([]byte, error) {
	return json.Marshal(c)
}

// Decode parses a payload published by RedisNotifier.
func Decode(payload string) (Change, error) {
	var c Change
	err := json.Unmarshal([]byte(payload), &c)
	return c, err
}
