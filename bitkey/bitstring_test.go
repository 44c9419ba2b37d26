package bitkey

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionInvariant(t *testing.T) {
	require := require.New(t)

	const n = 5
	full := Full(n)
	require.Equal(uint(n), full.Count())

	b1 := Leg(n, 0).Set(1) // legs {0,1}
	b2 := Leg(n, 2)        // leg {2}
	require.True(b1.IsDisjoint(b2))

	union := b1.Union(b2)
	require.Equal(uint(3), union.Count())
	require.ElementsMatch([]uint{0, 1, 2}, union.Legs())

	require.False(b1.Equal(b2))
	require.True(b1.Equal(Leg(n, 0).Set(1)))
}

func TestComplementIsFinalLeg(t *testing.T) {
	require := require.New(t)

	const n = 4
	full := Full(n)
	allButOne := full.Difference(Leg(n, 3))
	require.Equal(uint(3), allButOne.Count())

	final := allButOne.Complement(full)
	require.Equal([]uint{3}, final.Legs())
}

func TestKeyIsStableAcrossClones(t *testing.T) {
	require := require.New(t)

	const n = 6
	a := Leg(n, 1).Set(4)
	b := Leg(n, 4).Set(1)
	require.Equal(a.Key(), b.Key())
}
