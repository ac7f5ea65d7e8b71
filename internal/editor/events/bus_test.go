package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func TestPublishSync(t *testing.T) {
	bus := NewBus(0)
	rec := &recorder{}
	bus.Subscribe(DocumentChanged, rec.handle)
	bus.Subscribe(FocusLost, rec.handle)

	bus.Publish(Event{Type: DocumentChanged, Payload: 1})
	bus.Publish(Event{Type: FocusLost})
	bus.Publish(Event{Type: PasteOccurred}) // без подписчиков

	got := rec.snapshot()
	assert.Len(t, got, 2)
	assert.Equal(t, DocumentChanged, got[0].Type)
	assert.Equal(t, FocusLost, got[1].Type)
}

func TestDebounceDeliversLatestOnly(t *testing.T) {
	bus := NewBus(20 * time.Millisecond)
	rec := &recorder{}
	bus.Subscribe(DocumentChanged, rec.handle)

	bus.PublishDebounced(Event{Type: DocumentChanged, Payload: "stale"})
	bus.PublishDebounced(Event{Type: DocumentChanged, Payload: "latest"})

	time.Sleep(80 * time.Millisecond)

	got := rec.snapshot()
	assert.Len(t, got, 1)
	assert.Equal(t, "latest", got[0].Payload)
}

func TestFlush(t *testing.T) {
	bus := NewBus(time.Hour)
	rec := &recorder{}
	bus.Subscribe(DocumentChanged, rec.handle)

	bus.PublishDebounced(Event{Type: DocumentChanged, Payload: "pending"})
	bus.Flush()

	got := rec.snapshot()
	assert.Len(t, got, 1)
	assert.Equal(t, "pending", got[0].Payload)

	bus.Flush() // повторный flush без отложенных событий
	assert.Len(t, rec.snapshot(), 1)
}
