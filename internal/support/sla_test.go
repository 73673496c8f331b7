package support

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashanV/bookly-sub002/internal/models"
)

func TestComputeSLASuppressedAfterSupportReply(t *testing.T) {
	now := time.Now()
	c := &models.Conversation{
		Status:        models.StatusInProgress,
		LastMessageBy: models.SenderSupport,
		LastMessageAt: now.Add(-3 * time.Hour),
		CreatedAt:     now.Add(-5 * time.Hour),
	}
	assert.Nil(t, ComputeSLA(c, now))
}

func TestComputeSLASuppressedWhenClosedOrTrashed(t *testing.T) {
	now := time.Now()
	for _, s := range []models.ConversationStatus{models.StatusClosed, models.StatusDeleted} {
		c := &models.Conversation{
			Status:        s,
			LastMessageBy: models.SenderUser,
			LastMessageAt: now.Add(-3 * time.Hour),
			CreatedAt:     now.Add(-5 * time.Hour),
		}
		assert.Nil(t, ComputeSLA(c, now), "%s", s)
	}
}

func TestComputeSLAElapsedFromLastMessage(t *testing.T) {
	now := time.Now()
	c := &models.Conversation{
		Status:        models.StatusOpen,
		LastMessageBy: models.SenderUser,
		LastMessageAt: now.Add(-90 * time.Minute),
		CreatedAt:     now.Add(-6 * time.Hour),
	}
	sla := ComputeSLA(c, now)
	require.NotNil(t, sla)
	assert.Equal(t, int64((90 * time.Minute).Seconds()), sla.Seconds)
	assert.False(t, sla.Overdue)
}

func TestComputeSLAElapsedFromCreationWhenNoMessages(t *testing.T) {
	// LastMessageAt zero value is before CreatedAt, so creation wins
	now := time.Now()
	c := &models.Conversation{
		Status:        models.StatusOpen,
		LastMessageBy: models.SenderUser,
		CreatedAt:     now.Add(-30 * time.Minute),
	}
	sla := ComputeSLA(c, now)
	require.NotNil(t, sla)
	assert.Equal(t, int64((30 * time.Minute).Seconds()), sla.Seconds)
}

func TestComputeSLAOverdueThreshold(t *testing.T) {
	now := time.Now()

	under := &models.Conversation{
		Status:        models.StatusWaiting,
		LastMessageBy: models.SenderUser,
		LastMessageAt: now.Add(-OverdueAfter + time.Minute),
		CreatedAt:     now.Add(-24 * time.Hour),
	}
	sla := ComputeSLA(under, now)
	require.NotNil(t, sla)
	assert.False(t, sla.Overdue)

	over := &models.Conversation{
		Status:        models.StatusWaiting,
		LastMessageBy: models.SenderUser,
		LastMessageAt: now.Add(-OverdueAfter - time.Minute),
		CreatedAt:     now.Add(-24 * time.Hour),
	}
	sla = ComputeSLA(over, now)
	require.NotNil(t, sla)
	assert.True(t, sla.Overdue)
}

func TestComputeSLAClampsNegativeElapsed(t *testing.T) {
	now := time.Now()
	c := &models.Conversation{
		Status:        models.StatusOpen,
		LastMessageBy: models.SenderUser,
		LastMessageAt: now.Add(time.Minute), // clock skew
		CreatedAt:     now,
	}
	sla := ComputeSLA(c, now)
	require.NotNil(t, sla)
	assert.Equal(t, int64(0), sla.Seconds)
	assert.False(t, sla.Overdue)
}
