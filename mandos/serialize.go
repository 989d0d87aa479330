// Copyright (c) 2024 the mandos authors

package mandos

// Serialize implements spec §6.4: re-emit a lowered scenario as a JSON
// document built from each value's original sub-tree. DefaultStar fields
// are omitted; Star is emitted as the literal string "*"; Equal(v) emits
// v's original sub-tree. Two parts of a check state are not kept by
// lowering and so are not reproduced: a "+" accounts key is emitted with
// the value true whatever value it had, and a check account whose storage
// was absent is emitted with an empty storage map.
// The result is a tree of string/[]any/map[string]any
// ready for encoding/json.Marshal, whose map-key ordering is lexicographic
// by construction of Go's own json package.
func Serialize(s *Scenario) map[string]any {
	doc := map[string]any{}
	if s.Name != "" {
		doc["name"] = s.Name
	}
	if s.Comment != "" {
		doc["comment"] = s.Comment
	}
	if s.CheckGas {
		doc["checkGas"] = true
	}
	steps := make([]any, len(s.Steps))
	for i, st := range s.Steps {
		steps[i] = serializeStep(st)
	}
	doc["steps"] = steps
	return doc
}

// valueToJSON renders a Value sub-tree back into plain Go data
// (string/[]any/map[string]any) suitable for encoding/json.
func valueToJSON(v Value) any {
	switch v.Kind {
	case KindStr:
		return v.Str
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = valueToJSON(item)
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.Map))
		for k, item := range v.Map {
			out[k] = valueToJSON(item)
		}
		return out
	default:
		return nil
	}
}

// serializeCheckValue returns the JSON value to emit and whether the
// field should be present at all (false for DefaultStar, per spec §6.4).
func serializeCheckValue[T Wrapper](cv CheckValue[T]) (any, bool) {
	if cv.IsDefaultStar() {
		return nil, false
	}
	if cv.IsStar() {
		return "*", true
	}
	v, _ := cv.Value()
	return valueToJSON(v.OriginalValue()), true
}

func setCheckValue[T Wrapper](doc map[string]any, key string, cv CheckValue[T]) {
	if v, present := serializeCheckValue(cv); present {
		doc[key] = v
	}
}

func serializeStep(st Step) map[string]any {
	doc := map[string]any{}
	if st.Comment != "" {
		doc["comment"] = st.Comment
	}
	switch st.Kind {
	case StepExternalSteps:
		doc["step"] = "externalSteps"
		doc["path"] = st.ExternalSteps.Path
	case StepSetState:
		doc["step"] = "setState"
		serializeSetState(doc, st.SetState)
	case StepScCall:
		doc["step"] = "scCall"
		serializeScCall(doc, st.ScCall)
	case StepScDeploy:
		doc["step"] = "scDeploy"
		serializeScDeploy(doc, st.ScDeploy)
	case StepTransfer:
		doc["step"] = "transfer"
		serializeTransfer(doc, st.Transfer)
	case StepValidatorReward:
		doc["step"] = "validatorReward"
		serializeValidatorReward(doc, st.ValidatorReward)
	case StepCheckState:
		doc["step"] = "checkState"
		serializeCheckState(doc, st.CheckState)
	case StepDumpState:
		doc["step"] = "dumpState"
	}
	return doc
}

func serializeSetState(doc map[string]any, ss *SetState) {
	if ss.Comment != "" {
		doc["comment"] = ss.Comment
	}
	if ss.Accounts != nil {
		accounts := make(map[string]any, len(ss.Accounts))
		for _, acc := range ss.Accounts {
			accounts[acc.Key.Str] = serializeAccount(acc)
		}
		doc["accounts"] = accounts
	}
	if ss.NewAddresses != nil {
		list := make([]any, len(ss.NewAddresses))
		for i, n := range ss.NewAddresses {
			list[i] = map[string]any{
				"creatorAddress": valueToJSON(n.CreatorAddress.Original),
				"creatorNonce":   valueToJSON(n.CreatorNonce.Original),
				"newAddress":     valueToJSON(n.NewAddress.Original),
			}
		}
		doc["newAddresses"] = list
	}
	if ss.BlockHashes != nil {
		list := make([]any, len(ss.BlockHashes))
		for i, b := range ss.BlockHashes {
			list[i] = valueToJSON(b.Original)
		}
		doc["blockHashes"] = list
	}
	if ss.PreviousBlockInfo != nil {
		doc["previousBlockInfo"] = serializeBlockInfo(ss.PreviousBlockInfo)
	}
	if ss.CurrentBlockInfo != nil {
		doc["currentBlockInfo"] = serializeBlockInfo(ss.CurrentBlockInfo)
	}
}

func serializeAccount(acc Account) map[string]any {
	doc := map[string]any{}
	if acc.Comment != "" {
		doc["comment"] = acc.Comment
	}
	doc["nonce"] = valueToJSON(acc.Nonce.Original)
	doc["balance"] = valueToJSON(acc.Balance.Original)
	if acc.Storage != nil {
		storage := make(map[string]any, len(acc.Storage))
		for k, v := range acc.Storage {
			storage[k] = valueToJSON(v.Original)
		}
		doc["storage"] = storage
	}
	if acc.Code.Original.Kind != KindStr || acc.Code.Original.Str != "" {
		doc["code"] = valueToJSON(acc.Code.Original)
	}
	return doc
}

func serializeBlockInfo(bi *BlockInfo) map[string]any {
	doc := map[string]any{}
	for key, v := range map[string]Value{
		"blockTimestamp": bi.BlockTimestamp.Original,
		"blockNonce":     bi.BlockNonce.Original,
		"blockRound":     bi.BlockRound.Original,
		"blockEpoch":     bi.BlockEpoch.Original,
	} {
		if v.Kind != KindStr || v.Str != "" {
			doc[key] = valueToJSON(v)
		}
	}
	return doc
}

func serializeArguments(args []BytesValue) []any {
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = valueToJSON(a.Original)
	}
	return out
}

func serializeScCall(doc map[string]any, call *ScCall) {
	if call.TxID != "" {
		doc["txId"] = call.TxID
	}
	tx := map[string]any{
		"from":     valueToJSON(call.Tx.From.Original),
		"to":       valueToJSON(call.Tx.To.Original),
		"value":    valueToJSON(call.Tx.Value.Original),
		"function": call.Tx.Function,
		"gasLimit": valueToJSON(call.Tx.GasLimit.Original),
		"gasPrice": valueToJSON(call.Tx.GasPrice.Original),
	}
	if len(call.Tx.Arguments) > 0 {
		tx["arguments"] = serializeArguments(call.Tx.Arguments)
	}
	doc["tx"] = tx
	if call.Expect != nil {
		doc["expect"] = serializeTxExpect(call.Expect)
	}
}

func serializeScDeploy(doc map[string]any, deploy *ScDeploy) {
	if deploy.TxID != "" {
		doc["txId"] = deploy.TxID
	}
	tx := map[string]any{
		"from":         valueToJSON(deploy.Tx.From.Original),
		"value":        valueToJSON(deploy.Tx.Value.Original),
		"contractCode": valueToJSON(deploy.Tx.ContractCode.Original),
		"gasLimit":     valueToJSON(deploy.Tx.GasLimit.Original),
		"gasPrice":     valueToJSON(deploy.Tx.GasPrice.Original),
	}
	if len(deploy.Tx.Arguments) > 0 {
		tx["arguments"] = serializeArguments(deploy.Tx.Arguments)
	}
	doc["tx"] = tx
	if deploy.Expect != nil {
		doc["expect"] = serializeTxExpect(deploy.Expect)
	}
}

func serializeTransfer(doc map[string]any, t *Transfer) {
	if t.TxID != "" {
		doc["txId"] = t.TxID
	}
	doc["tx"] = map[string]any{
		"from":  valueToJSON(t.Tx.From.Original),
		"to":    valueToJSON(t.Tx.To.Original),
		"value": valueToJSON(t.Tx.Value.Original),
	}
}

func serializeValidatorReward(doc map[string]any, r *ValidatorReward) {
	if r.TxID != "" {
		doc["txId"] = r.TxID
	}
	doc["tx"] = map[string]any{
		"to":    valueToJSON(r.Tx.To.Original),
		"value": valueToJSON(r.Tx.Value.Original),
	}
}

func serializeCheckState(doc map[string]any, cs *CheckState) {
	accounts := map[string]any{}
	if cs.Accounts.OtherAccountsAllowed {
		accounts["+"] = true
	}
	for _, acc := range cs.Accounts.Accounts {
		accounts[acc.Key.Str] = serializeCheckAccount(acc)
	}
	doc["accounts"] = accounts
}

func serializeCheckAccount(acc CheckAccount) map[string]any {
	doc := map[string]any{}
	if acc.Comment != "" {
		doc["comment"] = acc.Comment
	}
	setCheckValue(doc, "nonce", acc.Nonce)
	setCheckValue(doc, "balance", acc.Balance)
	setCheckValue(doc, "code", acc.Code)
	setCheckValue(doc, "asyncCallData", acc.AsyncCallData)
	if acc.Storage.Star {
		doc["storage"] = "*"
	} else if acc.Storage.Entries != nil {
		storage := make(map[string]any, len(acc.Storage.Entries))
		for k, cv := range acc.Storage.Entries {
			v, present := serializeCheckValue(cv)
			if present {
				storage[k] = v
			}
		}
		doc["storage"] = storage
	}
	return doc
}

func serializeTxExpect(e *TxExpect) map[string]any {
	doc := map[string]any{}
	if len(e.Out) > 0 {
		doc["out"] = serializeArguments(e.Out)
	}
	setCheckValue(doc, "status", e.Status)
	setCheckValue(doc, "message", e.Message)
	setCheckValue(doc, "gas", e.Gas)
	setCheckValue(doc, "refund", e.Refund)
	if e.Logs.Star {
		doc["logs"] = "*"
	} else if e.Logs.Logs != nil {
		logs := make([]any, len(e.Logs.Logs))
		for i, l := range e.Logs.Logs {
			entry := map[string]any{
				"address":    valueToJSON(l.Address.Original),
				"identifier": valueToJSON(l.Identifier.Original),
				"data":       valueToJSON(l.Data.Original),
			}
			if len(l.Topics) > 0 {
				entry["topics"] = serializeArguments(l.Topics)
			}
			logs[i] = entry
		}
		doc["logs"] = logs
	}
	return doc
}
