package support

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/ashanV/bookly-sub002/internal/models"
)

// Publisher is the slice of the realtime gateway the sweeper needs.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload interface{})
}

// EventSLAOverdue nudges the operator console when a conversation crosses
// the overdue threshold between renders.
const EventSLAOverdue = "sla-overdue"

const adminChannel = "admin-support"

// Sweeper periodically scans for conversations whose wait time crossed
// OverdueAfter and announces each one once on the operator channel. The
// SLA itself stays a read-side computation; the sweep only exists so an
// idle console still hears about newly overdue threads.
type Sweeper struct {
	DB       *gorm.DB
	Pub      Publisher
	Interval time.Duration

	announced map[string]time.Time
}

func NewSweeper(db *gorm.DB, pub Publisher) *Sweeper {
	return &Sweeper{
		DB:        db,
		Pub:       pub,
		Interval:  time.Minute,
		announced: make(map[string]time.Time),
	}
}

// Run blocks; start it in a goroutine next to the hub.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	var convs []models.Conversation
	err := s.DB.
		Where("status NOT IN ? AND last_message_by <> ?",
			[]models.ConversationStatus{models.StatusClosed, models.StatusDeleted},
			models.SenderSupport).
		Find(&convs).Error
	if err != nil {
		log.Println("[sla] sweep:", err)
		return
	}

	now := time.Now()
	live := make(map[string]struct{}, len(convs))
	for i := range convs {
		c := &convs[i]
		id := models.NormalizeID(c.ID.String())
		sla := ComputeSLA(c, now)
		if sla == nil || !sla.Overdue {
			continue
		}
		live[id] = struct{}{}

		// announce once per overdue episode; a new user message resets
		// lastMessageAt and with it the episode
		since := c.CreatedAt
		if c.LastMessageAt.After(since) {
			since = c.LastMessageAt
		}
		if prev, ok := s.announced[id]; ok && prev.Equal(since) {
			continue
		}
		s.announced[id] = since

		s.Pub.Publish(ctx, adminChannel, EventSLAOverdue, map[string]interface{}{
			"id":      id,
			"seconds": sla.Seconds,
		})
	}

	for id := range s.announced {
		if _, ok := live[id]; !ok {
			delete(s.announced, id)
		}
	}
}
