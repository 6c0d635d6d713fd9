package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/masjid-admin/internal/domain"
)

// Broadcaster turns domain events into hub messages.
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a Broadcaster on hub.
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// Invalidate tells clients watching the masjid that the records between
// inv.Start and inv.End changed.
func (b *Broadcaster) Invalidate(_ context.Context, inv domain.Invalidation) error {
	msg := NewMessage(TypePrayerTimesInvalidated, InvalidatedPayload{
		MasjidID: inv.MasjidID,
		Start:    inv.Start,
		End:      inv.End,
	})
	if err := b.send(inv.MasjidID, msg); err != nil {
		return fmt.Errorf("events.Broadcaster.Invalidate: %w", err)
	}
	return nil
}

// DayChanged tells every client that the calendar day rolled over in tz, so
// the highlighted "today" row should move.
func (b *Broadcaster) DayChanged(date, tz string) error {
	msg := NewMessage(TypeDayChanged, DayChangedPayload{Date: date, Timezone: tz})
	if err := b.send(uuid.Nil, msg); err != nil {
		return fmt.Errorf("events.Broadcaster.DayChanged: %w", err)
	}
	return nil
}

func (b *Broadcaster) send(masjidID uuid.UUID, msg Message) error {
	data, err := msg.JSON()
	if err != nil {
		return err
	}
	b.hub.Broadcast(masjidID, data)
	return nil
}
