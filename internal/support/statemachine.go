package support

import (
	"fmt"

	"github.com/ashanV/bookly-sub002/internal/models"
)

// ErrInvalidTransition is returned for any status change the transition
// table does not allow.
type ErrInvalidTransition struct {
	From models.ConversationStatus
	To   models.ConversationStatus
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("support: invalid transition %s -> %s", e.From, e.To)
}

// transitions is the exhaustive table of legal status changes. Every
// status mutation in the system goes through Transition.
var transitions = map[models.ConversationStatus][]models.ConversationStatus{
	models.StatusOpen: {
		models.StatusInProgress,
		models.StatusWaiting,
		models.StatusResolved,
		models.StatusClosed,
		models.StatusDeleted,
	},
	models.StatusInProgress: {
		models.StatusOpen,
		models.StatusWaiting,
		models.StatusResolved,
		models.StatusClosed,
		models.StatusDeleted,
	},
	models.StatusWaiting: {
		models.StatusInProgress,
		models.StatusResolved,
		models.StatusClosed,
		models.StatusDeleted,
	},
	models.StatusResolved: {
		models.StatusOpen,
		models.StatusClosed,
		models.StatusDeleted,
	},
	models.StatusClosed: {
		models.StatusOpen,
		models.StatusDeleted,
	},
	models.StatusDeleted: {
		models.StatusOpen, // restore
	},
}

// ValidStatus reports whether s is one of the known conversation statuses.
func ValidStatus(s models.ConversationStatus) bool {
	switch s {
	case models.StatusOpen, models.StatusInProgress, models.StatusWaiting,
		models.StatusResolved, models.StatusClosed, models.StatusDeleted:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is allowed. A no-op transition
// (from == to) is always allowed and treated as idempotent.
func CanTransition(from, to models.ConversationStatus) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates and returns the new status. It does not mutate the
// conversation; callers persist the result themselves.
func Transition(from, to models.ConversationStatus) (models.ConversationStatus, error) {
	if !ValidStatus(to) {
		return from, &ErrInvalidTransition{From: from, To: to}
	}
	if !CanTransition(from, to) {
		return from, &ErrInvalidTransition{From: from, To: to}
	}
	return to, nil
}

// CanPurge reports whether the conversation may be permanently removed.
// Hard delete is only reachable from the trash.
func CanPurge(status models.ConversationStatus) bool {
	return status == models.StatusDeleted
}

// BulkAction names a batch operation the operator console may request.
type BulkAction string

const (
	BulkClose   BulkAction = "update_status"
	BulkTrash   BulkAction = "move_to_trash"
	BulkRestore BulkAction = "restore"
	BulkPurge   BulkAction = "delete_permanently"
)

// BulkTarget resolves the target status of a non-purge bulk action.
func BulkTarget(action BulkAction) (models.ConversationStatus, bool) {
	switch action {
	case BulkClose:
		return models.StatusClosed, true
	case BulkTrash:
		return models.StatusDeleted, true
	case BulkRestore:
		return models.StatusOpen, true
	}
	return "", false
}

// StatusLabel returns the operator-facing label for a status.
func StatusLabel(s models.ConversationStatus) string {
	switch s {
	case models.StatusOpen:
		return "Otwarta"
	case models.StatusInProgress:
		return "W trakcie"
	case models.StatusWaiting:
		return "Oczekuje"
	case models.StatusResolved:
		return "Rozwiązana"
	case models.StatusClosed:
		return "Zamknięta"
	case models.StatusDeleted:
		return "W koszu"
	}
	return string(s)
}

// ClosedConversationNotice is shown in the end-user widget in place of the
// message input once a conversation is closed.
const ClosedConversationNotice = "Ta rozmowa jest zamknięta"
