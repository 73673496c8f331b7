package support

import (
	"github.com/google/uuid"

	"github.com/ashanV/bookly-sub002/internal/models"
)

// Filter names one tab of the operator console list.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterMine       Filter = "mine"
	FilterOpen       Filter = "open"
	FilterInProgress Filter = "in_progress"
	FilterClosed     Filter = "closed"
	FilterDeleted    Filter = "deleted"
)

// Matches applies the filter's own predicate. "all" aggregates every
// non-closed, non-deleted status; the rest are mutually exclusive.
// viewer is the operator for whom "mine" is evaluated.
func (f Filter) Matches(c *models.Conversation, viewer uuid.UUID) bool {
	switch f {
	case FilterAll:
		return c.Status != models.StatusClosed && c.Status != models.StatusDeleted
	case FilterMine:
		return c.SupportID != nil && *c.SupportID == viewer &&
			c.Status != models.StatusDeleted
	case FilterOpen:
		return c.Status == models.StatusOpen
	case FilterInProgress:
		return c.Status == models.StatusInProgress
	case FilterClosed:
		return c.Status == models.StatusClosed
	case FilterDeleted:
		return c.Status == models.StatusDeleted
	}
	return false
}

// Tab partitions conversations and appeals. A conversation with the
// blocked category only ever shows under the appeals tab.
type Tab string

const (
	TabConversations Tab = "conversations"
	TabAppeals       Tab = "appeals"
)

func (t Tab) Matches(c *models.Conversation) bool {
	if t == TabAppeals {
		return c.IsAppeal()
	}
	return !c.IsAppeal()
}
