package posetrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEvent_SubscribeFire tests that every subscriber runs in order
func TestEvent_SubscribeFire(t *testing.T) {
	var e Event
	var calls []string

	e.Subscribe(func() { calls = append(calls, "first") })
	e.Subscribe(func() { calls = append(calls, "second") })
	assert.Equal(t, 2, e.Len())

	e.Fire()
	assert.Equal(t, []string{"first", "second"}, calls)
}

// TestEvent_Unsubscribe tests removal, including unknown handles
func TestEvent_Unsubscribe(t *testing.T) {
	var e Event
	count := 0

	id := e.Subscribe(func() { count++ })
	e.Unsubscribe(id)
	e.Unsubscribe(id)
	e.Unsubscribe(Subscription(99))

	e.Fire()
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, e.Len())
}

// TestEvent_UnsubscribeDuringFire tests that a handler may remove itself
func TestEvent_UnsubscribeDuringFire(t *testing.T) {
	var e Event
	once := 0
	always := 0

	var id Subscription
	id = e.Subscribe(func() {
		once++
		e.Unsubscribe(id)
	})
	e.Subscribe(func() { always++ })

	e.Fire()
	e.Fire()

	assert.Equal(t, 1, once)
	assert.Equal(t, 2, always)
}

// TestEvent_FireWithoutSubscribers tests the zero value
func TestEvent_FireWithoutSubscribers(t *testing.T) {
	var e Event
	assert.NotPanics(t, e.Fire)
}

// TestEvent_SubscribeNil tests that a nil handler is ignored
func TestEvent_SubscribeNil(t *testing.T) {
	var e Event
	count := 0

	assert.Equal(t, Subscription(0), e.Subscribe(nil))
	e.Subscribe(func() { count++ })
	assert.Equal(t, 1, e.Len())

	assert.NotPanics(t, e.Fire)
	assert.Equal(t, 1, count)
}
