// Copyright (c) 2024 the mandos authors

package mandos

import (
	"fmt"
	"math/big"
	"strings"
)

// stringLiteralPrefixes lists the prefixes of rule 4: each strips its own
// length (not a fixed 2 bytes) and returns the remaining UTF-8 bytes
// verbatim.
var stringLiteralPrefixes = []string{"str:", "``", "''"}

const (
	addressPrefix = "address:"
	filePrefix    = "file:"
)

// reservedPrefixes are recognised but not implemented; interpretString
// rejects them with Unsupported rather than falling through to the
// unsigned-integer parse of rule 8 (spec §4.1.3).
var reservedPrefixes = []string{
	"keccak256:",
	"u64:", "u32:", "u16:", "u8:",
	"i64:", "i32:", "i16:", "i8:",
}

// interpretString implements the mini-DSL of spec §4.1. Rule order is the
// contract: do not reorder these checks.
func interpretString(s string, ctx *InterpreterContext) ([]byte, error) {
	// Rule 1: empty string.
	if s == "" {
		return []byte{}, nil
	}

	// Rule 2: pipe-concatenation. Must run before every prefix test, or
	// "str:a|b" would be ambiguous between "str:" eating the whole string
	// and the pipe splitting it.
	if strings.Contains(s, "|") {
		parts := strings.Split(s, "|")
		var out []byte
		for _, part := range parts {
			b, err := interpretString(part, ctx)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		if out == nil {
			out = []byte{}
		}
		return out, nil
	}

	// Rule 3: booleans.
	if s == "true" {
		return []byte{0x01}, nil
	}
	if s == "false" {
		return []byte{}, nil
	}

	// Rule 4: string-literal prefixes.
	for _, prefix := range stringLiteralPrefixes {
		if strings.HasPrefix(s, prefix) {
			rest := s[len(prefix):]
			if rest == "" {
				return []byte{}, nil
			}
			return []byte(rest), nil
		}
	}

	// Rule 5: address.
	if strings.HasPrefix(s, addressPrefix) {
		return encodeAddress(s[len(addressPrefix):]), nil
	}

	// Rule 6: file.
	if strings.HasPrefix(s, filePrefix) {
		if ctx == nil || ctx.Files == nil {
			return nil, &Error{Kind: Unsupported, Err: errUnsupportedf("file: prefix requires an injected FileLoader")}
		}
		path := s[len(filePrefix):]
		data, err := ctx.Files(path)
		if err != nil {
			return nil, &Error{Kind: External, Err: err}
		}
		return data, nil
	}

	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(s, prefix) {
			return nil, &Error{Kind: Unsupported, Err: errUnsupportedf("reserved prefix %q is not implemented", prefix)}
		}
	}

	// Rule 7: explicit sign.
	if s[0] == '+' || s[0] == '-' {
		negative := s[0] == '-'
		mag, err := parseMagnitude(s[1:])
		if err != nil {
			return nil, err
		}
		return encodeSigned(mag, negative), nil
	}

	// Rule 8: unsigned integer fallback.
	mag, err := parseMagnitude(s)
	if err != nil {
		return nil, err
	}
	return mag.Bytes(), nil
}

// encodeAddress implements spec §4.1.1: truncate to 32 bytes if longer,
// right-pad with '_' (0x5F) to 32 bytes if shorter.
func encodeAddress(payload string) []byte {
	b := []byte(payload)
	out := make([]byte, 32)
	for i := range out {
		out[i] = '_'
	}
	n := len(b)
	if n > 32 {
		n = 32
	}
	copy(out, b[:n])
	return out
}

// parseMagnitude implements rule 8's unsigned-magnitude parse: strip '_'
// and ',' anywhere, detect base by prefix (0x/0X hex, 0b/0B binary,
// otherwise decimal), empty body decodes to zero.
func parseMagnitude(s string) (*big.Int, error) {
	clean := strings.Map(func(r rune) rune {
		if r == '_' || r == ',' {
			return -1
		}
		return r
	}, s)

	base := 10
	body := clean
	switch {
	case strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X"):
		base = 16
		body = clean[2:]
	case strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B"):
		base = 2
		body = clean[2:]
	}

	if body == "" {
		return big.NewInt(0), nil
	}

	n, ok := new(big.Int).SetString(body, base)
	if !ok {
		return nil, &Error{Kind: BadLiteral, Err: errBadLiteralf("invalid integer literal %q", s)}
	}
	return n, nil
}

// encodeSigned implements spec §4.1.2: minimal two's-complement big-endian
// encoding. Zero, either sign, encodes to the empty sequence.
func encodeSigned(mag *big.Int, negative bool) []byte {
	if mag.Sign() == 0 {
		return []byte{}
	}
	if !negative {
		b := mag.Bytes()
		if b[0]&0x80 != 0 {
			out := make([]byte, len(b)+1)
			copy(out[1:], b)
			return out
		}
		return b
	}

	// Smallest byte width k such that mag fits in [0, 2^(8k-1)].
	k := 1
	limit := new(big.Int).Lsh(big.NewInt(1), uint(8*k-1))
	for mag.Cmp(limit) > 0 {
		k++
		limit = new(big.Int).Lsh(big.NewInt(1), uint(8*k-1))
	}
	twos := new(big.Int).Lsh(big.NewInt(1), uint(8*k))
	twos.Sub(twos, mag)
	b := twos.Bytes()
	if len(b) < k {
		out := make([]byte, k)
		copy(out[k-len(b):], b)
		return out
	}
	return b
}

// decodeSigned is the inverse of encodeSigned, used by round-trip tests
// and available to callers that need to read a signed value back out of
// canonical bytes.
func decodeSigned(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 == 0 {
		return n
	}
	full := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
	return n.Sub(n, full)
}

func errUnsupportedf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

func errBadLiteralf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
