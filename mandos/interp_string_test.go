// Copyright (c) 2024 the mandos authors

package mandos

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterpretStringSeedScenarios(t *testing.T) {
	cases := map[string]struct {
		in   string
		want []byte
	}{
		"true":                      {"true", []byte{0x01}},
		"false":                     {"false", []byte{}},
		"backtick literal":          {"``abcdefg", []byte("abcdefg")},
		"backtick empty":            {"``", []byte{}},
		"backtick escapes backtick": {"```", []byte("`")},
		"str literal":               {"str:abcdefg", []byte("abcdefg")},
		"hex":                       {"0x1234", []byte{0x12, 0x34}},
		"decimal 256":               {"256", []byte{0x01, 0x00}},
		"binary":                    {"0b101", []byte{0x05}},
		"negative one":              {"-1", []byte{0xFF}},
		"255 unsigned":              {"255", []byte{0xFF}},
		"plus 255 signed":           {"+255", []byte{0x00, 0xFF}},
		"negative 256":              {"-256", []byte{0xFF, 0x00}},
		"negative binary":           {"-0b101", []byte{0xFB}},
		"pipe concat":               {"str:foo|0x01|0x02", []byte{'f', 'o', 'o', 0x01, 0x02}},
		"empty string":              {"", []byte{}},
		"hex empty body":            {"0x", []byte{}},
		"binary empty body":         {"0b", []byte{}},
		"zero":                      {"0", []byte{}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := interpretString(c.in, NewContext())
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestInterpretStringAddress(t *testing.T) {
	cases := map[string]struct {
		in   string
		want []byte
	}{
		"empty payload": {
			"address:",
			append([]byte{}, bytesOf('_', 32)...),
		},
		"short payload pads": {
			"address:an_address",
			append([]byte("an_address"), bytesOf('_', 22)...),
		},
		"exact 32 payload": {
			"address:12345678901234567890123456789012",
			[]byte("12345678901234567890123456789012"[:32]),
		},
		"33 byte payload truncates": {
			"address:123456789012345678901234567890123",
			[]byte("123456789012345678901234567890123"[:32]),
		},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := interpretString(c.in, NewContext())
			require.NoError(t, err)
			require.Len(t, got, 32)
			require.Equal(t, c.want, got)
		})
	}
}

func bytesOf(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

func TestInterpretStringFileLoader(t *testing.T) {
	ctx := &InterpreterContext{Files: func(path string) ([]byte, error) {
		require.Equal(t, "code.bin", path)
		return []byte{0xAA, 0xBB}, nil
	}}
	got, err := interpretString("file:code.bin", ctx)
	require.NoError(t, err)
	require.Equal(t, []byte{0xAA, 0xBB}, got)
}

func TestInterpretStringFileLoaderUnsupportedWithoutCollaborator(t *testing.T) {
	_, err := interpretString("file:code.bin", NewContext())
	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	require.Equal(t, Unsupported, mErr.Kind)
}

func TestInterpretStringReservedPrefixesAreUnsupported(t *testing.T) {
	for _, prefix := range reservedPrefixes {
		t.Run(prefix, func(t *testing.T) {
			_, err := interpretString(prefix+"1", NewContext())
			var mErr *Error
			require.ErrorAs(t, err, &mErr)
			require.Equal(t, Unsupported, mErr.Kind)
		})
	}
}

func TestInterpretStringBadLiteral(t *testing.T) {
	_, err := interpretString("not_a_number", NewContext())
	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	require.Equal(t, BadLiteral, mErr.Kind)
}

func TestSignedRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 127, -128, 255, -255, 256, -256, 1 << 20, -(1 << 20)} {
		mag := big.NewInt(n)
		negative := mag.Sign() < 0
		abs := new(big.Int).Abs(mag)
		encoded := encodeSigned(abs, negative)
		decoded := decodeSigned(encoded)
		require.Equal(t, mag, decoded, "round trip of %d", n)
	}
}

func TestInterpretStringIsPure(t *testing.T) {
	ctx := NewContext()
	a, err := interpretString("str:foo|0x01", ctx)
	require.NoError(t, err)
	b, err := interpretString("str:foo|0x01", ctx)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
