package port

import (
	"time"

	"ens_manager/internal/domain/entity"
)

// ActivityTracker appends structured per-name events and answers range
// queries over the persisted day-partitioned logs.
type ActivityTracker interface {
	// AddActivity appends one event with a UTC timestamp and persists it to
	// the name's current day file.
	AddActivity(name, eventType string, data map[string]string) error

	// Activities returns every stored event for the name whose timestamp
	// falls inside the inclusive [start, end] range; nil bounds are open.
	// A corrupt day file is skipped with a warning, not an error.
	Activities(name string, start, end *time.Time) ([]entity.ActivityEvent, error)
}
