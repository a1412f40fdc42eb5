package jitson

// ownedEntry pairs the index of an IS_OWN cell with the callback that
// releases whatever external resource its payload indirects to.
type ownedEntry struct {
	idx     uint32
	release func()
}

// Free releases a document's external resources: every IS_OWN string's
// release callback is invoked, every materialized offset table and member
// dictionary is dropped so its backing storage is collectible immediately,
// and the cell span itself is cleared — the Go stand-in for "frees the
// span if ALLOCED" once nothing in the process still holds a reference to
// the Document. Free is safe to call once; calling it again is a no-op
// since there is nothing left to release.
func (d *Document) Free() {
	for _, e := range d.owned {
		if e.release != nil {
			e.release()
		}
	}
	d.owned = nil
	for i := range d.indexTables {
		d.indexTables[i].Store(nil)
	}
	for i := range d.memberDicts {
		d.memberDicts[i].Store(nil)
	}
	d.cells = nil
	d.strings = nil
	d.refs = nil
}
