// Copyright (c) 2024 the mandos authors

package mandos

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeBytesValue(t *testing.T) {
	v := NewStr("str:hi")
	bv, err := decodeBytesValue(v, NewContext(), "")
	require.NoError(t, err)
	require.Equal(t, []byte("hi"), bv.Bytes)
	require.Equal(t, v, bv.OriginalValue())
}

func TestDecodeBigUintValue(t *testing.T) {
	bv, err := decodeBigUintValue(NewStr("256"), NewContext(), "")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(256), bv.Value)
	require.Equal(t, []byte{0x01, 0x00}, bv.Bytes)
}

func TestDecodeBigUintValueEmptyIsZero(t *testing.T) {
	bv, err := decodeBigUintValue(NewStr(""), NewContext(), "")
	require.NoError(t, err)
	require.Equal(t, big.NewInt(0), bv.Value)
}

func TestDecodeU64Value(t *testing.T) {
	uv, err := decodeU64Value(NewStr("0xFFFFFFFF"), NewContext(), "")
	require.NoError(t, err)
	require.Equal(t, uint64(0xFFFFFFFF), uv.Value)
}

func TestDecodeU64ValueOverflow(t *testing.T) {
	_, err := decodeU64Value(NewStr("0x10000000000000000"), NewContext(), "")
	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	require.Equal(t, NumericOverflow, mErr.Kind)
}
