package testdb

// memDBIterator walks a snapshot of the items taken when it was created.
type memDBIterator struct {
	items []*item
	pos   int
	start []byte
	end   []byte
}

var _ Iterator = (*memDBIterator)(nil)

func newIterator(start, end []byte, items []*item) *memDBIterator {
	return &memDBIterator{items: items, start: start, end: end}
}

// Domain implements Iterator.
func (i *memDBIterator) Domain() (start []byte, end []byte) {
	return i.start, i.end
}

// Valid implements Iterator.
func (i *memDBIterator) Valid() bool {
	return i.pos < len(i.items)
}

// Next implements Iterator.
func (i *memDBIterator) Next() {
	i.assertIsValid()
	i.pos++
}

// Key implements Iterator.
func (i *memDBIterator) Key() []byte {
	i.assertIsValid()
	return i.items[i.pos].key
}

// Value implements Iterator.
func (i *memDBIterator) Value() []byte {
	i.assertIsValid()
	return i.items[i.pos].value
}

// Error implements Iterator.
func (*memDBIterator) Error() error {
	return nil
}

// Close implements Iterator.
func (i *memDBIterator) Close() error {
	i.items = nil
	return nil
}

func (i *memDBIterator) assertIsValid() {
	if !i.Valid() {
		panic("iterator is invalid")
	}
}
