// Copyright (c) 2024 the mandos authors

package mandos

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

// canonicalJSON re-marshals arbitrary JSON bytes through Go's own decoder
// so that map-key ordering and whitespace are normalised before diffing —
// this is the "equivalent under key-sorted canonicalisation" of spec
// invariant 4, not a byte-for-byte comparison of the original text.
func canonicalJSON(t *testing.T, data []byte) string {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal(data, &v))
	out, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	return string(out)
}

func requireJSONEquivalent(t *testing.T, want, got []byte) {
	t.Helper()
	wantCanon := canonicalJSON(t, want)
	gotCanon := canonicalJSON(t, got)
	if wantCanon == gotCanon {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(wantCanon),
		B:        difflib.SplitLines(gotCanon),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	t.Fatalf("serialised document does not match input:\n%s", diff)
}

func TestSerializeRoundTripsSetState(t *testing.T) {
	doc := []byte(`{
		"steps": [{
			"step": "setState",
			"accounts": {
				"address:acc1": {
					"nonce": "5",
					"balance": "0x10",
					"storage": {"0x01": "str:hi"}
				}
			}
		}]
	}`)
	raw, err := ParseScenario(doc)
	require.NoError(t, err)
	scenario, err := Lower(raw, NewContext())
	require.NoError(t, err)

	out, err := json.Marshal(Serialize(scenario))
	require.NoError(t, err)
	requireJSONEquivalent(t, doc, out)
}

func TestSerializeOmitsDefaultStarEmitsStar(t *testing.T) {
	doc := []byte(`{
		"steps": [{
			"step": "checkState",
			"accounts": {
				"address:acc1": {"balance": "*"}
			}
		}]
	}`)
	raw, err := ParseScenario(doc)
	require.NoError(t, err)
	scenario, err := Lower(raw, NewContext())
	require.NoError(t, err)

	out := Serialize(scenario)
	data, err := json.Marshal(out)
	require.NoError(t, err)

	var round map[string]any
	require.NoError(t, json.Unmarshal(data, &round))
	steps := round["steps"].([]any)
	step := steps[0].(map[string]any)
	accounts := step["accounts"].(map[string]any)
	acc := accounts["address:acc1"].(map[string]any)
	require.Equal(t, "*", acc["balance"])
	_, hasNonce := acc["nonce"]
	require.False(t, hasNonce, "absent field must not reappear on serialisation")
}

func TestSerializeScCallRoundTrip(t *testing.T) {
	doc := []byte(`{
		"steps": [{
			"step": "scCall",
			"txId": "tx1",
			"tx": {
				"from": "address:alice",
				"to": "address:bob",
				"value": "0",
				"function": "transfer",
				"arguments": ["0x01"],
				"gasLimit": "500000",
				"gasPrice": "1000"
			}
		}]
	}`)
	raw, err := ParseScenario(doc)
	require.NoError(t, err)
	scenario, err := Lower(raw, NewContext())
	require.NoError(t, err)

	out, err := json.Marshal(Serialize(scenario))
	require.NoError(t, err)
	requireJSONEquivalent(t, doc, out)
}

func TestValueToJSONRoundTripsNestedShapes(t *testing.T) {
	v := NewMap(map[string]Value{
		"a": NewList(NewStr("str:x"), NewStr("str:y")),
		"b": NewStr("0x01"),
	})
	data, err := json.Marshal(valueToJSON(v))
	require.NoError(t, err)
	require.True(t, bytes.Contains(data, []byte(`"a"`)))
	require.True(t, bytes.Contains(data, []byte(`"str:x"`)))
}
