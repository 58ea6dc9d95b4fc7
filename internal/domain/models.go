package domain

import "time"

// Capture is one archived oscilloscope acquisition.
type Capture struct {
	ID           string               `json:"id"`
	DeviceName   string               `json:"device_name"`
	SerialNumber string               `json:"serial_number"`
	Slot         string               `json:"slot"`
	CapturedAt   time.Time            `json:"captured_at"`
	Time         []float64            `json:"time"`
	Channels     map[string][]float64 `json:"channels"`
}
