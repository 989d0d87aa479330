// Copyright (c) 2024 the mandos authors

package mandos

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLowerCheckAccountsPlusKeyIsAllowanceOnly(t *testing.T) {
	raw := RawCheckAccounts{Entries: map[string]RawCheckAccount{
		"+": {Nonce: NewStr("5")},
	}}
	out, err := lowerCheckAccounts(raw, NewContext(), "")
	require.NoError(t, err)
	require.True(t, out.OtherAccountsAllowed)
	require.Empty(t, out.Accounts)
}

func TestLowerCheckAccountsDistinctAddressesCoexist(t *testing.T) {
	raw := RawCheckAccounts{Entries: map[string]RawCheckAccount{
		"address:one": {},
		"address:two": {},
	}}
	out, err := lowerCheckAccounts(raw, NewContext(), "")
	require.NoError(t, err)
	require.Len(t, out.Accounts, 2)
}

func TestLowerCheckAccountsDuplicateAfterNormalisation(t *testing.T) {
	// "address:" truncates anything past 32 bytes, so a 40-'a' payload and
	// an exact 32-'a' payload are two distinct raw keys that normalise to
	// the same AddressKey.
	entries := make(map[string]RawCheckAccount)
	entries["address:"+strings.Repeat("a", 40)] = RawCheckAccount{}
	entries["address:"+strings.Repeat("a", 32)] = RawCheckAccount{}
	_, err := lowerCheckAccounts(RawCheckAccounts{Entries: entries}, NewContext(), "")
	var mErr *Error
	require.ErrorAs(t, err, &mErr)
	require.Equal(t, DuplicateEntry, mErr.Kind)
}

func TestLowerCheckStorageStar(t *testing.T) {
	cs, err := lowerCheckStorage(RawCheckStorage{Star: true}, NewContext(), "")
	require.NoError(t, err)
	require.True(t, cs.Star)
}

func TestLowerCheckLogsStar(t *testing.T) {
	cl, err := lowerCheckLogs(RawCheckLogs{Star: true}, NewContext(), "")
	require.NoError(t, err)
	require.True(t, cl.Star)
}
