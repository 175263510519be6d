package headvec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeadVec(t *testing.T) {
	var v HeadVec[int]
	require.True(t, v.IsEmpty())
	require.Nil(t, v.Last())

	v.Push(1)
	v.Push(2)
	v.Push(3)
	require.Equal(t, 3, v.Len())
	require.Equal(t, 3, *v.Last())
	require.Equal(t, 1, *v.At(0))
	require.Equal(t, 2, *v.At(1))
	require.Equal(t, 3, *v.At(2))

	popped, ok := v.Pop()
	require.True(t, ok)
	require.Equal(t, 3, popped)
	require.Equal(t, 2, *v.Last())

	v.Clear()
	require.True(t, v.IsEmpty())
	_, ok = v.Pop()
	require.False(t, ok)
}
