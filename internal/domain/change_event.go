package domain

import (
	"context"
	"time"
)

// ChangeType discriminates the kinds of committed mutations announced on the
// broadcast channel.
type ChangeType string

const (
	ChangeCreated ChangeType = "Created"
	ChangeUpdated ChangeType = "Updated"
	ChangeDeleted ChangeType = "Deleted"
	ChangeSwapped ChangeType = "Swapped"
)

// ChangeEvent is a transient notification describing a committed mutation.
// It is transported on a board-scoped topic with at-least-once, unordered
// delivery and is never persisted. OriginSession identifies the client that
// caused the mutation so receivers can discard their own echoes.
//
// Created and Updated events carry the post-mutation item in Snapshot.
// Swapped events carry only the two item ids: receivers re-fetch the full
// grid instead of patching, because both placements changed atomically.
type ChangeEvent struct {
	Type          ChangeType `json:"type"`
	ItemID        string     `json:"itemId,omitempty"`
	ItemIDs       []string   `json:"itemIds,omitempty"`
	OriginSession string     `json:"originSession"`
	Timestamp     time.Time  `json:"timestamp"`
	Snapshot      *Item      `json:"snapshot,omitempty"`
}

// Broadcaster publishes ChangeEvents to all subscribers of a board topic.
// Delivery is best effort: publish failures degrade freshness, never
// correctness, and must not fail the mutation that produced the event.
type Broadcaster interface {
	Publish(ctx context.Context, boardID string, ev ChangeEvent) error
}

// BroadcastSubscription is an active subscription to a board topic.
// Callers must Close it when done.
type BroadcastSubscription interface {
	Events() <-chan ChangeEvent
	Errors() <-chan error
	Close() error
}

// BroadcastSubscriber opens subscriptions to board topics.
type BroadcastSubscriber interface {
	Subscribe(ctx context.Context, boardID string) (BroadcastSubscription, error)
}
