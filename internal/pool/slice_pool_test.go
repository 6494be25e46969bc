package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetIntSlice(t *testing.T) {
	s, cleanup := GetIntSlice(10)
	defer cleanup()

	require.Empty(t, s)
	require.GreaterOrEqual(t, cap(s), 10)

	s = append(s, 1, 2, 3)
	require.Equal(t, []int{1, 2, 3}, s)
}

func TestGetIntSlice_ReuseIsEmpty(t *testing.T) {
	s, cleanup := GetIntSlice(4)
	_ = append(s, 5, 6, 7, 8)
	cleanup()

	again, cleanup2 := GetIntSlice(2)
	defer cleanup2()
	require.Empty(t, again)
}
