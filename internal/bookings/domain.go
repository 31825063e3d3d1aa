package bookings

import "time"

// BookingStatus is the lifecycle state of a booking. Any state may be
// reached from any other state; there is no enforced forward-only
// progression and no automatic transitions.
type BookingStatus string

const (
	StatusUpcoming   BookingStatus = "upcoming"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
)

// Valid reports whether the status is one of the known states.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Booking is a trip assigned to a driver and a vehicle. It has no
// company column of its own: its company is derived by joining through
// the driver, and that derivation is authoritative for scoping.
type Booking struct {
	ID          int64         `json:"id"`
	VehicleID   int64         `json:"vehicle_id"`
	DriverID    int64         `json:"driver_id"`
	Status      BookingStatus `json:"status"`
	PickupTime  time.Time     `json:"pickup_time"`
	DropoffTime *time.Time    `json:"dropoff_time,omitempty"`
	Origin      string        `json:"origin"`
	Destination string        `json:"destination"`
	Price       float64       `json:"price"`
	CreatedAt   time.Time     `json:"created_at"`
}
