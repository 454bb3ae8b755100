package ecs

// World is the top-level ECS container. It owns entity allocation, the
// registered component stores, and a deferred destruction queue flushed by
// the cleanup phase at the end of each tick.
type World struct {
	ids          *idAllocator
	stores       []Removable
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		ids:          newIDAllocator(),
		stores:       make([]Removable, 0, 16),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

// Stores returns how many component stores are registered.
func (w *World) Stores() int { return len(w.stores) }

func (w *World) CreateEntity() EntityID {
	return w.ids.create()
}

func (w *World) Alive(id EntityID) bool {
	return w.ids.alive(id)
}

// Count returns the number of live entities.
func (w *World) Count() int {
	return w.ids.count()
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
// Queuing the same entity twice is a no-op.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.ids.alive(id) {
		return
	}
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending reports whether id is waiting in the destroy queue.
func (w *World) Pending(id EntityID) bool {
	_, ok := w.queued[id]
	return ok
}

// FlushDestroyQueue destroys all queued entities, clears their components and
// returns how many were destroyed.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		for _, st := range w.stores {
			st.Remove(id)
		}
		if w.ids.destroy(id) {
			n++
		}
		delete(w.queued, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
