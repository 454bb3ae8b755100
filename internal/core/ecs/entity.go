package ecs

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs.
// Pooled entities keep their ID for the lifetime of their pool.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// idAllocator hands out entity IDs with generational indices and a free list.
// Index 0 is reserved so the zero EntityID never names a live entity.
type idAllocator struct {
	generations []uint32
	freeList    []uint32
}

func newIDAllocator() *idAllocator {
	return &idAllocator{
		generations: make([]uint32, 1, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (a *idAllocator) create() EntityID {
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		return NewEntityID(idx, a.generations[idx])
	}
	idx := uint32(len(a.generations))
	a.generations = append(a.generations, 0)
	return NewEntityID(idx, 0)
}

func (a *idAllocator) alive(id EntityID) bool {
	idx := id.Index()
	if idx == 0 || int(idx) >= len(a.generations) {
		return false
	}
	return a.generations[idx] == id.Generation()
}

func (a *idAllocator) destroy(id EntityID) bool {
	if !a.alive(id) {
		return false // stale reference or never allocated
	}
	idx := id.Index()
	a.generations[idx]++
	a.freeList = append(a.freeList, idx)
	return true
}

func (a *idAllocator) count() int {
	return len(a.generations) - 1 - len(a.freeList)
}
