package tensor

// Iterator is a block-strided cursor into a Tensor's data, used by the
// recursive-relation dispatch (spec §4.1) to walk a vertex's Lorentz/Dirac/
// colour index structure without materializing k-tuples of indices.
type Iterator struct {
	t   *Tensor
	off int
}

// Begin returns an Iterator at linear offset 0.
func (t *Tensor) Begin() Iterator { return Iterator{t: t, off: 0} }

// IterAt returns an Iterator positioned at the given k-tuple of indices,
// unchecked.
func (t *Tensor) IterAt(indices ...int) Iterator {
	return Iterator{t: t, off: t.offset(indices)}
}

// Offset returns the iterator's current linear offset.
func (it Iterator) Offset() int { return it.off }

// Get dereferences the iterator.
func (it Iterator) Get() complex128 { return it.t.data[it.off] }

// Set writes through the iterator.
func (it Iterator) Set(v complex128) { it.t.data[it.off] = v }

// Add accumulates v into the iterator's current entry — the operation the
// Feynman-rule dispatch uses to sum products into the produced leg.
func (it Iterator) Add(v complex128) { it.t.data[it.off] += v }

// Forward moves the iterator one step along axis, returning the moved
// iterator. The caller is responsible for staying in bounds; this mirrors
// the source's unchecked iterator movement used inside tight recursive
// loops (spec §4.1).
func (it Iterator) Forward(axis int) Iterator {
	return Iterator{t: it.t, off: it.off + it.t.strides[axis]}
}

// Backward moves the iterator n steps backward along axis.
func (it Iterator) Backward(axis, n int) Iterator {
	return Iterator{t: it.t, off: it.off - n*it.t.strides[axis]}
}

// Jump moves the iterator by a raw linear offset delta — the form the
// colour-structure helpers precompute as (index-jump, value) pairs
// (spec §4.1).
func (it Iterator) Jump(delta int) Iterator {
	return Iterator{t: it.t, off: it.off + delta}
}

// Index recovers the axis-th index of the iterator's current position.
func (it Iterator) Index(axis int) int {
	return (it.off / it.t.strides[axis]) % it.t.ranges[axis]
}

// Sub returns the signed linear distance it - other, valid only when both
// iterators reference the same Tensor.
func (it Iterator) Sub(other Iterator) int {
	return it.off - other.off
}

// Tensor returns the Tensor the iterator references.
func (it Iterator) Tensor() *Tensor { return it.t }
