package support

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ashanV/bookly-sub002/internal/models"
)

func conv(status models.ConversationStatus, supportID *uuid.UUID) *models.Conversation {
	return &models.Conversation{Status: status, SupportID: supportID}
}

func TestFilterAllExcludesClosedAndDeleted(t *testing.T) {
	viewer := uuid.New()
	assert.True(t, FilterAll.Matches(conv(models.StatusOpen, nil), viewer))
	assert.True(t, FilterAll.Matches(conv(models.StatusInProgress, nil), viewer))
	assert.True(t, FilterAll.Matches(conv(models.StatusWaiting, nil), viewer))
	assert.True(t, FilterAll.Matches(conv(models.StatusResolved, nil), viewer))
	assert.False(t, FilterAll.Matches(conv(models.StatusClosed, nil), viewer))
	assert.False(t, FilterAll.Matches(conv(models.StatusDeleted, nil), viewer))
}

func TestFilterMine(t *testing.T) {
	viewer := uuid.New()
	other := uuid.New()

	assert.True(t, FilterMine.Matches(conv(models.StatusOpen, &viewer), viewer))
	assert.True(t, FilterMine.Matches(conv(models.StatusClosed, &viewer), viewer))
	assert.False(t, FilterMine.Matches(conv(models.StatusOpen, &other), viewer))
	assert.False(t, FilterMine.Matches(conv(models.StatusOpen, nil), viewer))
	assert.False(t, FilterMine.Matches(conv(models.StatusDeleted, &viewer), viewer),
		"trash stays out of mine")
}

func TestStatusFiltersAreMutuallyExclusive(t *testing.T) {
	viewer := uuid.New()
	filters := []Filter{FilterOpen, FilterInProgress, FilterClosed, FilterDeleted}
	statuses := []models.ConversationStatus{
		models.StatusOpen, models.StatusInProgress, models.StatusWaiting,
		models.StatusResolved, models.StatusClosed, models.StatusDeleted,
	}

	for _, s := range statuses {
		c := conv(s, nil)
		matched := 0
		for _, f := range filters {
			if f.Matches(c, viewer) {
				matched++
			}
		}
		assert.LessOrEqual(t, matched, 1, "status %s matched %d exclusive filters", s, matched)
	}
}

func TestDeletedOnlyVisibleInTrash(t *testing.T) {
	viewer := uuid.New()
	c := conv(models.StatusDeleted, &viewer)

	assert.True(t, FilterDeleted.Matches(c, viewer))
	for _, f := range []Filter{FilterAll, FilterMine, FilterOpen, FilterInProgress, FilterClosed} {
		assert.False(t, f.Matches(c, viewer), "filter %s must hide trashed conversations", f)
	}
}

func TestTabPartition(t *testing.T) {
	appeal := &models.Conversation{Category: models.CategoryBlocked}
	regular := &models.Conversation{Category: models.CategoryQuestion}

	assert.True(t, TabAppeals.Matches(appeal))
	assert.False(t, TabAppeals.Matches(regular))
	assert.True(t, TabConversations.Matches(regular))
	assert.False(t, TabConversations.Matches(appeal),
		"blocked category never mixes with the conversations tab")
}
