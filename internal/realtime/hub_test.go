package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/bookings"
)

func newBookingEvent(id int64) bookings.Event {
	return bookings.Event{
		Event:   bookings.EventNewBooking,
		Booking: &bookings.Booking{ID: id, Status: bookings.StatusUpcoming},
	}
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe()
	b := hub.Subscribe()

	hub.Publish(newBookingEvent(1))

	for _, sub := range []*Subscription{a, b} {
		payload := <-sub.C()
		var event bookings.Event
		require.NoError(t, json.Unmarshal(payload, &event))
		require.Equal(t, bookings.EventNewBooking, event.Event)
		require.Equal(t, int64(1), event.Booking.ID)
	}
}

func TestUnsubscribedGetsNothing(t *testing.T) {
	hub := NewHub(nil)
	a := hub.Subscribe()
	b := hub.Subscribe()

	hub.Unsubscribe(a)
	hub.Publish(newBookingEvent(1))

	// The detached channel is closed without ever carrying the event.
	_, open := <-a.C()
	require.False(t, open)

	payload := <-b.C()
	require.NotEmpty(t, payload)
	require.Equal(t, 1, hub.Len())
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	hub := NewHub(nil)
	hub.Publish(newBookingEvent(1))

	late := hub.Subscribe()
	hub.Publish(newBookingEvent(2))

	payload := <-late.C()
	var event bookings.Event
	require.NoError(t, json.Unmarshal(payload, &event))
	require.Equal(t, int64(2), event.Booking.ID)
	require.Empty(t, late.C())
}

func TestSlowSubscriberIsDroppedOthersSurvive(t *testing.T) {
	hub := NewHub(nil)
	slow := hub.Subscribe()
	fast := hub.Subscribe()

	// Fill the slow subscriber's buffer without draining it; the next
	// publish must disconnect only that subscriber.
	for i := 0; i <= subscriberBuffer; i++ {
		hub.Publish(newBookingEvent(int64(i)))
		<-fast.C()
	}

	require.Equal(t, 1, hub.Len())

	// The slow channel holds its buffered events and is then closed.
	for i := 0; i < subscriberBuffer; i++ {
		_, open := <-slow.C()
		require.True(t, open)
	}
	_, open := <-slow.C()
	require.False(t, open)

	// The surviving subscriber keeps receiving.
	hub.Publish(newBookingEvent(99))
	payload := <-fast.C()
	require.NotEmpty(t, payload)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	sub := hub.Subscribe()

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	require.Equal(t, 0, hub.Len())
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	hub := NewHub(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe()
			for j := 0; j < 50; j++ {
				hub.Publish(newBookingEvent(int64(j)))
			}
			hub.Unsubscribe(sub)
		}()
	}
	wg.Wait()
	require.Equal(t, 0, hub.Len())
}
