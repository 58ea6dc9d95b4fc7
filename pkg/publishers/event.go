package publishers

import (
	"time"

	"github.com/samvad-hq/moku-rest-client/internal/domain"
)

// Event represents the payload published downstream.
type Event struct {
	Capture     domain.Capture `json:"capture"`
	PublishedAt time.Time      `json:"published_at"`
}

// NewEvent wraps a capture for publishing.
func NewEvent(capture domain.Capture) Event {
	return Event{
		Capture:     capture,
		PublishedAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached by message-queue publishers.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"capture_id":    e.Capture.ID,
		"serial_number": e.Capture.SerialNumber,
		"slot":          e.Capture.Slot,
	}
}
