package ws

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeSubscriber records deliveries and can be told to fail
type fakeSubscriber struct {
	mu       sync.Mutex
	received [][]byte
	fail     bool
	closed   bool
}

func (f *fakeSubscriber) Deliver(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("dead subscriber")
	}
	f.received = append(f.received, payload)
	return nil
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSubscriber) payloads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.received))
	for i, p := range f.received {
		out[i] = string(p)
	}
	return out
}

func TestHubFanOut(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Stop()

	subsT := []*fakeSubscriber{{}, {}, {}}
	for _, s := range subsT {
		hub.Subscribe("thread-t", s)
	}
	subU := &fakeSubscriber{}
	hub.Subscribe("thread-u", subU)

	hub.Publish("thread-t", []byte("hello"))

	for _, s := range subsT {
		assert.Equal(t, []string{"hello"}, s.payloads())
	}
	assert.Empty(t, subU.payloads(), "subscriber of another thread must not receive the payload")
}

func TestHubUnsubscribeCleanup(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Stop()

	sub := &fakeSubscriber{}
	hub.Subscribe("thread-t", sub)
	assert.Equal(t, 1, hub.SubscriberCount("thread-t"))

	hub.Unsubscribe("thread-t", sub)
	assert.Equal(t, 0, hub.SubscriberCount("thread-t"))

	// Bucket is gone; publish must not reach the old handle
	hub.Publish("thread-t", []byte("after disconnect"))
	assert.Empty(t, sub.payloads())

	// Double unsubscribe is a no-op, not an error
	hub.Unsubscribe("thread-t", sub)
}

func TestHubEmptyBucketRemoved(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Stop()

	a, b := &fakeSubscriber{}, &fakeSubscriber{}
	hub.Subscribe("thread-t", a)
	hub.Subscribe("thread-t", b)

	hub.Unsubscribe("thread-t", a)
	assert.Equal(t, 1, hub.SubscriberCount("thread-t"))
	hub.Unsubscribe("thread-t", b)
	assert.Equal(t, 0, hub.SubscriberCount("thread-t"))

	hub.mu.RLock()
	_, exists := hub.subscribers["thread-t"]
	hub.mu.RUnlock()
	assert.False(t, exists, "emptied bucket must be removed from the registry")
}

func TestHubEvictsFailedSubscriber(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Stop()

	dead := &fakeSubscriber{fail: true}
	alive := &fakeSubscriber{}
	hub.Subscribe("thread-t", dead)
	hub.Subscribe("thread-t", alive)

	hub.Publish("thread-t", []byte("m1"))

	assert.Equal(t, []string{"m1"}, alive.payloads(), "healthy subscriber still receives the payload")
	assert.Equal(t, 1, hub.SubscriberCount("thread-t"), "failed subscriber is evicted")
	assert.True(t, dead.closed)

	hub.Publish("thread-t", []byte("m2"))
	assert.Equal(t, []string{"m1", "m2"}, alive.payloads())
	assert.Empty(t, dead.payloads())
}

func TestHubNoRetroactiveDelivery(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Stop()

	hub.Publish("thread-t", []byte("before subscribe"))

	late := &fakeSubscriber{}
	hub.Subscribe("thread-t", late)
	assert.Empty(t, late.payloads(), "hub holds no history")

	hub.Publish("thread-t", []byte("after subscribe"))
	assert.Equal(t, []string{"after subscribe"}, late.payloads())
}

func TestHubBridgeIgnoresOwnEcho(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Stop()

	sub := &fakeSubscriber{}
	hub.Subscribe("thread-t", sub)

	hub.Publish("thread-t", []byte(`{"body":"hello"}`))
	assert.Equal(t, []string{`{"body":"hello"}`}, sub.payloads())

	// Redis relays a published envelope back to its own publisher; replay
	// one here and check the subscriber does not get a second copy.
	echo, err := hub.envelope("thread-t", []byte(`{"body":"hello"}`))
	assert.NoError(t, err)
	hub.handleBridge(echo)

	assert.Equal(t, []string{`{"body":"hello"}`}, sub.payloads(),
		"one publish must reach a subscriber exactly once")
}

func TestHubBridgeDeliversRemoteEnvelope(t *testing.T) {
	local := NewHub(nil)
	defer local.Stop()
	remote := NewHub(nil)
	defer remote.Stop()

	sub := &fakeSubscriber{}
	local.Subscribe("thread-t", sub)

	env, err := remote.envelope("thread-t", []byte(`{"body":"from elsewhere"}`))
	assert.NoError(t, err)
	local.handleBridge(env)

	assert.Equal(t, []string{`{"body":"from elsewhere"}`}, sub.payloads())
}

func TestHubBridgeDropsMalformedPayload(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Stop()

	sub := &fakeSubscriber{}
	hub.Subscribe("thread-t", sub)

	hub.handleBridge([]byte("not json"))
	assert.Empty(t, sub.payloads())
}

func TestHubStopClosesSubscribers(t *testing.T) {
	hub := NewHub(nil)

	a, b := &fakeSubscriber{}, &fakeSubscriber{}
	hub.Subscribe("thread-t", a)
	hub.Subscribe("thread-u", b)

	hub.Stop()

	assert.True(t, a.closed)
	assert.True(t, b.closed)
	assert.Equal(t, 0, hub.SubscriberCount("thread-t"))
	assert.Equal(t, 0, hub.SubscriberCount("thread-u"))
}

func TestHubConcurrentSubscribePublish(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Stop()

	var wg sync.WaitGroup
	subs := make([]*fakeSubscriber, 32)
	for i := range subs {
		subs[i] = &fakeSubscriber{}
		wg.Add(1)
		go func(s *fakeSubscriber) {
			defer wg.Done()
			hub.Subscribe("thread-t", s)
		}(subs[i])
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Publish("thread-t", []byte("x"))
		}()
	}
	wg.Wait()

	for _, s := range subs {
		assert.Len(t, s.payloads(), 16)
	}
}
