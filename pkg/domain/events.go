package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMutation EventType = "mutation"
	EventRebuild  EventType = "rebuild"
)

// Operation names a user action that changes the store.
type Operation string

const (
	OpCreate     Operation = "create"
	OpSave       Operation = "save"
	OpDelete     Operation = "delete"
	OpConnect    Operation = "connect"
	OpDisconnect Operation = "disconnect"
	OpRestyle    Operation = "restyle"
	OpRename     Operation = "rename"
	OpMove       Operation = "move"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// MutationEvent reports the outcome of a user action.
type MutationEvent struct {
	EventBase
	Op     Operation `json:"op"`
	UnitID string    `json:"unit_id"`
	Handle string    `json:"handle,omitempty"`

	// Written counts the documents written by the action.
	Written int   `json:"written"`
	Err     error `json:"-"`
}

// RebuildEvent reports a full graph rebuild.
type RebuildEvent struct {
	EventBase
	Previous      *Graph        `json:"-"`
	Graph         *Graph        `json:"-"`
	ParseFailures int           `json:"parse_failures"`
	Duration      time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnMutation func(context.Context, *MutationEvent)
	OnRebuild  func(context.Context, *RebuildEvent)
}

// ChainHooks fans every callback out to all the given hooks, in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnMutation: func(ctx context.Context, e *MutationEvent) {
			for _, h := range hooks {
				if h.OnMutation != nil {
					h.OnMutation(ctx, e)
				}
			}
		},
		OnRebuild: func(ctx context.Context, e *RebuildEvent) {
			for _, h := range hooks {
				if h.OnRebuild != nil {
					h.OnRebuild(ctx, e)
				}
			}
		},
	}
}
