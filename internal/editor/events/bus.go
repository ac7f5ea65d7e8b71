// Пакет реализует шину уведомлений ядра редактора для внешних наблюдателей.
// Уведомление document-changed дебаунсится: частые нажатия клавиш сливаются,
// но последнее доставленное событие всегда отражает фактическое финальное
// состояние документа, а не промежуточное.
package events

import (
	"sync"
	"time"
)

type Type string

const (
	DocumentChanged  Type = "document-changed"
	FocusGained      Type = "focus-gained"
	FocusLost        Type = "focus-lost"
	PasteOccurred    Type = "paste-occurred"
	PasteModeChanged Type = "paste-mode-changed"
	ImageUploaded    Type = "image-uploaded"
	LimitExceeded    Type = "limit-exceeded"
)

type Event struct {
	Type    Type
	Payload any
}

type Handler func(Event)

type Bus struct {
	mu       sync.Mutex
	handlers map[Type][]Handler

	debounce time.Duration
	timer    *time.Timer
	pending  *Event
}

func NewBus(debounce time.Duration) *Bus {
	return &Bus{
		handlers: make(map[Type][]Handler),
		debounce: debounce,
	}
}

func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

// Publish доставляет событие синхронно всем подписчикам.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	hs := make([]Handler, len(b.handlers[ev.Type]))
	copy(hs, b.handlers[ev.Type])
	b.mu.Unlock()
	for _, h := range hs {
		h(ev)
	}
}

// PublishDebounced откладывает доставку на окно дебаунса. Повторная публикация
// внутри окна замещает отложенное событие: доставляется всегда последнее.
func (b *Bus) PublishDebounced(ev Event) {
	if b.debounce <= 0 {
		b.Publish(ev)
		return
	}
	b.mu.Lock()
	b.pending = &ev
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.debounce, b.flushPending)
	b.mu.Unlock()
}

// Flush немедленно доставляет отложенное событие, если оно есть.
func (b *Bus) Flush() {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()
	b.flushPending()
}

func (b *Bus) flushPending() {
	b.mu.Lock()
	ev := b.pending
	b.pending = nil
	b.mu.Unlock()
	if ev != nil {
		b.Publish(*ev)
	}
}
