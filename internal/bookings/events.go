package bookings

// Event names broadcast to realtime subscribers.
const (
	EventNewBooking    = "new_booking"
	EventUpdateBooking = "update_booking"
)

// Event is the payload pushed to realtime subscribers on booking
// mutations.
type Event struct {
	Event   string   `json:"event"`
	Booking *Booking `json:"booking"`
}

// Publisher fans an event out to connected subscribers. Delivery is
// best-effort: Publish never blocks the mutation and never fails it.
type Publisher interface {
	Publish(event Event)
}
