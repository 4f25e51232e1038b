package state

// DefaultHistorySize bounds each side of the config undo/redo timeline.
const DefaultHistorySize = 50

// History is a fixed-capacity stack backed by a ring buffer. Pushing onto a
// full history overwrites the oldest entry.
type History[T any] struct {
	buf  []T
	head int // index of the oldest entry
	size int
}

func NewHistory[T any](capacity int) *History[T] {
	if capacity < 1 {
		capacity = DefaultHistorySize
	}
	return &History[T]{buf: make([]T, capacity)}
}

// Push appends v as the newest entry and reports whether the oldest entry was
// evicted to make room.
func (h *History[T]) Push(v T) bool {
	if h.size == len(h.buf) {
		h.buf[h.head] = v
		h.head = (h.head + 1) % len(h.buf)
		return true
	}
	h.buf[(h.head+h.size)%len(h.buf)] = v
	h.size++
	return false
}

// Pop removes and returns the newest entry.
func (h *History[T]) Pop() (T, bool) {
	var zero T
	if h.size == 0 {
		return zero, false
	}
	idx := (h.head + h.size - 1) % len(h.buf)
	v := h.buf[idx]
	h.buf[idx] = zero
	h.size--
	return v, true
}

// Peek returns the newest entry without removing it.
func (h *History[T]) Peek() (T, bool) {
	var zero T
	if h.size == 0 {
		return zero, false
	}
	return h.buf[(h.head+h.size-1)%len(h.buf)], true
}

func (h *History[T]) Len() int { return h.size }

func (h *History[T]) Cap() int { return len(h.buf) }

func (h *History[T]) Clear() {
	var zero T
	for i := range h.buf {
		h.buf[i] = zero
	}
	h.head = 0
	h.size = 0
}

// Items returns the entries from oldest to newest.
func (h *History[T]) Items() []T {
	items := make([]T, h.size)
	for i := 0; i < h.size; i++ {
		items[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return items
}
