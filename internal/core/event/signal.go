package event

// SlotID identifies one connection on a Signal. It stays valid until
// Disconnect or Reset and is never reused by the same Signal.
type SlotID uint64

type slot[T any] struct {
	id SlotID
	fn func(T)
}

// Signal is a synchronous slot registry owned by the emitting component.
// Listeners are called in connection order. Not safe for concurrent use.
type Signal[T any] struct {
	slots []slot[T]
	next  SlotID
}

func (s *Signal[T]) Connect(fn func(T)) SlotID {
	s.next++
	s.slots = append(s.slots, slot[T]{id: s.next, fn: fn})
	return s.next
}

// Disconnect removes a slot. Unknown IDs are ignored.
func (s *Signal[T]) Disconnect(id SlotID) {
	for i := range s.slots {
		if s.slots[i].id == id {
			s.slots = append(s.slots[:i], s.slots[i+1:]...)
			return
		}
	}
}

// Emit calls every connected slot. Slots connected or disconnected from
// inside a listener take effect on the next Emit.
func (s *Signal[T]) Emit(v T) {
	if len(s.slots) == 0 {
		return
	}
	snapshot := make([]slot[T], len(s.slots))
	copy(snapshot, s.slots)
	for _, sl := range snapshot {
		sl.fn(v)
	}
}

// Reset drops every slot.
func (s *Signal[T]) Reset() {
	s.slots = nil
}

func (s *Signal[T]) Len() int { return len(s.slots) }
