// Copyright (c) 2024 the mandos authors

package mandos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckValueAbsentIsDefaultStar(t *testing.T) {
	cv, err := lowerCheckValue(Value{}, NewContext(), "", decodeBytesValue)
	require.NoError(t, err)
	require.True(t, cv.IsDefaultStar())
	require.True(t, cv.IsStar())
	_, ok := cv.Value()
	require.False(t, ok)
}

func TestCheckValueEmptyStringIsDefaultStar(t *testing.T) {
	cv, err := lowerCheckValue(NewStr(""), NewContext(), "", decodeBytesValue)
	require.NoError(t, err)
	require.True(t, cv.IsDefaultStar())
}

func TestCheckValueExplicitStar(t *testing.T) {
	cv, err := lowerCheckValue(NewStr("*"), NewContext(), "", decodeBytesValue)
	require.NoError(t, err)
	require.False(t, cv.IsDefaultStar())
	require.True(t, cv.IsStar())
}

func TestCheckValueEqual(t *testing.T) {
	cv, err := lowerCheckValue(NewStr("0x01"), NewContext(), "", decodeBytesValue)
	require.NoError(t, err)
	require.False(t, cv.IsStar())
	v, ok := cv.Value()
	require.True(t, ok)
	require.Equal(t, []byte{0x01}, v.Bytes)
}

func TestCheckValueUniversalInvariantSix(t *testing.T) {
	require.True(t, DefaultStarValue[BytesValue]().IsStar())
	require.True(t, StarValue[BytesValue]().IsStar())
	require.False(t, EqualValue(BytesValue{}).IsStar())
}

func TestCheckValueListRootNeverTreatedAsStar(t *testing.T) {
	// A non-scalar root (list/map) is never "" or "*" regardless of its
	// contents; only a bare Str root is inspected (spec §4.4).
	cv, err := lowerCheckValue(NewList(NewStr("*")), NewContext(), "", decodeBytesValue)
	require.NoError(t, err)
	require.False(t, cv.IsStar())
}
