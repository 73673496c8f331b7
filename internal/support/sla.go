package support

import (
	"time"

	"github.com/ashanV/bookly-sub002/internal/models"
)

// OverdueAfter is how long a user message may wait for a support reply
// before the conversation is flagged.
const OverdueAfter = 2 * time.Hour

// SLA is the derived wait-time of a conversation. It is never stored;
// list endpoints recompute it on every render.
type SLA struct {
	Elapsed time.Duration `json:"-"`
	Seconds int64         `json:"seconds"`
	Overdue bool          `json:"overdue"`
}

// ComputeSLA returns nil when no support reply is awaited: the last word
// belongs to support, or the conversation is closed or trashed.
func ComputeSLA(c *models.Conversation, now time.Time) *SLA {
	if c.LastMessageBy == models.SenderSupport {
		return nil
	}
	if c.Status == models.StatusClosed || c.Status == models.StatusDeleted {
		return nil
	}
	since := c.CreatedAt
	if c.LastMessageAt.After(since) {
		since = c.LastMessageAt
	}
	elapsed := now.Sub(since)
	if elapsed < 0 {
		elapsed = 0
	}
	return &SLA{
		Elapsed: elapsed,
		Seconds: int64(elapsed / time.Second),
		Overdue: elapsed >= OverdueAfter,
	}
}
