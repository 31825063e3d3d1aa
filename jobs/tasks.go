// Package jobs holds the background tasks processed by the worker
// binary.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBookingReminderScan looks for bookings whose pickup time is
	// approaching and emits a reminder for each.
	TaskBookingReminderScan = "bookings:reminder_scan"
)

// BookingReminderScanPayload tunes a single reminder scan run. Window
// is how far ahead of now the scan looks, in minutes; zero means the
// configured default.
type BookingReminderScanPayload struct {
	WindowMinutes int `json:"window_minutes"`
}

// NewBookingReminderScanTask constructs an Asynq task.
func NewBookingReminderScanTask(payload BookingReminderScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingReminderScan, data), nil
}
