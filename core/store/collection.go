// Package store holds a portal's in-memory state: four newest-first collections, the profiles & the current user.
// Nothing in here is safe for concurrent use; the owner serializes access.
package store

// Record is anything stored in a Collection.
type Record interface {
	RecordID() int64
}

// Collection is an ordered list of records, newest first.
type Collection[T Record] struct {
	table []T
}

func NewCollection[T Record](records ...T) *Collection[T] {
	c := &Collection[T]{table: make([]T, 0, len(records))}
	c.table = append(c.table, records...)
	return c
}

// InsertFront prepends `rec`.
func (c *Collection[T]) InsertFront(rec T) {
	c.table = append(c.table, rec)
	copy(c.table[1:], c.table[:len(c.table)-1])
	c.table[0] = rec
}

// RemoveByID removes the record with `id`, keeping the relative order of the rest.
// It reports whether a record was removed.
func (c *Collection[T]) RemoveByID(id int64) bool {
	for i, rec := range c.table {
		if rec.RecordID() == id {
			c.table = append(c.table[:i], c.table[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the record with `id`.
func (c *Collection[T]) Get(id int64) (T, bool) {
	for _, rec := range c.table {
		if rec.RecordID() == id {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// All returns a copy of the records, newest first.
func (c *Collection[T]) All() []T {
	recs := make([]T, len(c.table))
	copy(recs, c.table)
	return recs
}

func (c *Collection[T]) Len() int { return len(c.table) }

func (c *Collection[T]) Clear() { c.table = c.table[:0] }
