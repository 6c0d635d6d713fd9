package domain

import (
	"time"

	"github.com/google/uuid"
)

// Masjid is the tenant that owns prayer times. Only existence checks and the
// HasTimes flag are managed by this service; the rest of the masjid record is
// edited elsewhere.
type Masjid struct {
	ID        uuid.UUID
	Name      string
	Type      string
	Locale    string
	Madhab    string
	Website   string
	HasTimes  bool
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
