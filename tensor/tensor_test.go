package tensor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDropsZeroRanges(t *testing.T) {
	require := require.New(t)

	tn := New(4, 0, 3, 0, 2)
	require.Equal([]int{4, 3, 2}, tn.Shape())
	require.Equal(24, tn.Len())
}

func TestScalarTensor(t *testing.T) {
	require := require.New(t)
	tn := New()
	require.Equal(0, tn.Rank())
	require.Equal(1, tn.Len())
}

func TestAtBoundsChecked(t *testing.T) {
	require := require.New(t)
	tn := New(2, 3)

	require.NoError(tn.SetAt(complex(1, 2), 1, 2))
	v, err := tn.At(1, 2)
	require.NoError(err)
	require.Equal(complex(1, 2), v)

	_, err = tn.At(2, 0)
	require.ErrorIs(err, ErrOutOfRange)

	_, err = tn.At(0)
	require.ErrorIs(err, ErrOutOfRange)
}

func TestIteratorForwardBackwardIndexSub(t *testing.T) {
	require := require.New(t)
	tn := New(3, 4)

	it := tn.IterAt(1, 2)
	require.Equal(1, it.Index(0))
	require.Equal(2, it.Index(1))

	fwd := it.Forward(1)
	require.Equal(3, fwd.Index(1))
	require.Equal(1, fwd.Sub(it))

	back := fwd.Backward(1, 1)
	require.Equal(it.Offset(), back.Offset())
}

func TestResizePreservesWhenSizeMatches(t *testing.T) {
	require := require.New(t)
	tn := New(2, 3)
	for i := 0; i < tn.Len(); i++ {
		tn.Set(i, complex(float64(i), 0))
	}
	tn.Resize(3, 2) // same total size (6), different shape
	require.Equal(complex(5, 0), tn.Get(5))

	tn.Resize(10) // different size: cleared
	require.Equal(10, tn.Len())
	for i := 0; i < tn.Len(); i++ {
		require.Equal(complex128(0), tn.Get(i))
	}
}

func TestArithmetic(t *testing.T) {
	require := require.New(t)

	a := New(2)
	a.SetAt(1, 0)
	a.SetAt(2, 1)

	b := New(2)
	b.SetAt(10, 0)
	b.SetAt(20, 1)

	sum, err := Add(a, b)
	require.NoError(err)
	v, _ := sum.At(0)
	require.Equal(complex(11, 0), v)

	scaled := ScaleReal(a, 3)
	v, _ = scaled.At(1)
	require.Equal(complex(6, 0), v)

	mismatched := New(3)
	_, err = Add(a, mismatched)
	require.ErrorIs(err, ErrShapeMismatch)
}
