package queue

import "encoding/json"

// JobEnvelope is the message stored in the stream and the scheduled set.
// Args holds the JSON array of positional arguments for the handler.
type JobEnvelope struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Args        json.RawMessage `json:"args"`
	Attempt     int             `json:"attempt"`
	MaxAttempts int             `json:"max_attempts"`
	TimeoutMS   int             `json:"timeout_ms"`
	CreatedAt   int64           `json:"created_at"`
	ScheduledAt int64           `json:"scheduled_at,omitempty"`
}
