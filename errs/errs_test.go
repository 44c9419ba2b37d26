package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrs(t *testing.T) {
	require := require.New(t)

	var e Errs
	require.False(e.Errored())
	require.Nil(e.Err())

	e.Add(nil)
	require.False(e.Errored())

	e.Add(errors.New("first"))
	require.True(e.Errored())
	require.Equal(1, e.Len())
	require.Equal("first", e.Err().Error())

	e.Add(errors.New("second"))
	require.Equal(2, e.Len())
	require.Contains(e.Err().Error(), "2 errors occurred")
	require.Contains(e.Err().Error(), "first")
	require.Contains(e.Err().Error(), "second")
}
