// Copyright (c) 2024 the mandos authors

package mandos

import "encoding/hex"

// AddressKey is the interpreted, canonical 32-byte identity of an account,
// replacing the raw string key used by the original account map (spec
// §3.6, a deliberate redesign away from the original's raw-string-keyed
// BTreeMap).
type AddressKey [32]byte

// String renders k as lowercase hex, with no 0x prefix, matching the
// mini-DSL's own byte-string conventions.
func (k AddressKey) String() string {
	return hex.EncodeToString(k[:])
}

// lowerAddressKey interprets raw through the mini-DSL and requires the
// result to be exactly 32 bytes. Every rule 5 address: literal already
// produces exactly 32 bytes (truncated or padded), so this only rejects
// sub-trees that are lists, maps, or non-address scalars producing a
// different width.
func lowerAddressKey(v Value, ctx *InterpreterContext, path Path) (AddressKey, error) {
	b, err := interpretSubtree(v, ctx, path)
	if err != nil {
		return AddressKey{}, err
	}
	if len(b) != 32 {
		return AddressKey{}, newError(Shape, path, "address key must interpret to exactly 32 bytes, got %d", len(b))
	}
	var k AddressKey
	copy(k[:], b)
	return k, nil
}

// AddressValue pairs an AddressKey with the raw sub-tree it was lowered
// from, so address-typed tx fields (as opposed to account map keys, which
// carry their own raw key separately) can re-serialise losslessly.
type AddressValue struct {
	Original Value
	Key      AddressKey
}

func (a AddressValue) OriginalValue() Value { return a.Original }

func decodeAddressValue(v Value, ctx *InterpreterContext, path Path) (AddressValue, error) {
	key, err := lowerAddressKey(v, ctx, path)
	if err != nil {
		return AddressValue{}, err
	}
	return AddressValue{Original: v, Key: key}, nil
}
