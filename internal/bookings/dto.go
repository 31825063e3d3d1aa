package bookings

import "time"

// CreateBookingRequest is the payload for creating a booking. DriverID
// defaults to the acting principal; only Admins may assign another
// driver of their company.
type CreateBookingRequest struct {
	VehicleID   int64      `json:"vehicle_id" validate:"required,gt=0"`
	DriverID    *int64     `json:"driver_id,omitempty" validate:"omitempty,gt=0"`
	PickupTime  time.Time  `json:"pickup_time" validate:"required"`
	DropoffTime *time.Time `json:"dropoff_time,omitempty"`
	Origin      string     `json:"origin" validate:"required,max=256"`
	Destination string     `json:"destination" validate:"required,max=256"`
	Price       float64    `json:"price" validate:"gte=0"`
}

// ListBookingsRequest narrows a scoped listing. The pickup range is
// inclusive on both ends.
type ListBookingsRequest struct {
	Status   *BookingStatus `json:"status,omitempty"`
	DateFrom *time.Time     `json:"date_from,omitempty"`
	DateTo   *time.Time     `json:"date_to,omitempty"`
}

// SetStatusRequest moves a booking to a new lifecycle state.
type SetStatusRequest struct {
	Status BookingStatus `json:"status" validate:"required"`
}
