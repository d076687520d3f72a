package store

import (
	"context"
	"time"
)

// DedupRecord is an inbound channel message that has been seen.
type DedupRecord struct {
	MessageID   string     `json:"message_id"`
	SessionKey  string     `json:"session_key"`
	ReceivedAt  time.Time  `json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at"`
}

// DedupRepo deduplicates inbound channel messages such as Twilio webhook
// retries, keyed by the provider's message id.
type DedupRepo interface {
	// RecordInbound claims a message for processing. Returns false if the
	// message was already processed, or is claimed by a delivery received
	// within the claim TTL (duplicate). A stale unprocessed claim is taken over.
	RecordInbound(ctx context.Context, messageID, sessionKey string) (bool, error)

	// MarkProcessed sets the processed time for a message. Processed
	// messages are never claimed again.
	MarkProcessed(ctx context.Context, messageID string) error

	// PruneInbound deletes records received before the cutoff.
	PruneInbound(ctx context.Context, receivedBefore time.Time) (int, error)
}
