package stations

// Allocator hands out synthetic ids for records created within a single run.
// Ids are negative and strictly decreasing starting at -1, which keeps them
// unique per run and distinguishable from database-assigned ids. An Allocator
// is owned by the run that uses it; there is no global counter.
type Allocator struct {
	next int64
}

// NewAllocator returns an allocator whose first id is -1.
func NewAllocator() *Allocator {
	return &Allocator{next: -1}
}

// Next returns the next synthetic id and advances the allocator.
func (a *Allocator) Next() int64 {
	id := a.next
	a.next--
	return id
}
