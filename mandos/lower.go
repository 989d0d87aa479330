// Copyright (c) 2024 the mandos authors

package mandos

// Lower implements spec §4.6: a single top-down traversal from the raw
// model to the interpreted model. Lowering is pure and deterministic
// given ctx; it never mutates raw.
func Lower(raw *RawScenario, ctx *InterpreterContext) (*Scenario, error) {
	logger.Tracef("lowering scenario %q: %d steps", raw.Name, len(raw.Steps))
	s := &Scenario{Name: raw.Name, Comment: raw.Comment, CheckGas: raw.CheckGas}
	s.Steps = make([]Step, len(raw.Steps))
	for i, rs := range raw.Steps {
		step, err := lowerStep(rs, ctx, Path("steps").Index(i))
		if err != nil {
			return nil, err
		}
		s.Steps[i] = step
	}
	return s, nil
}

func lowerStep(raw RawStep, ctx *InterpreterContext, path Path) (Step, error) {
	logger.Tracef("%s: lowering %s step", path, raw.Kind)
	step := Step{Kind: raw.Kind, Comment: raw.Comment}
	var err error
	switch raw.Kind {
	case StepExternalSteps:
		step.ExternalSteps = &ExternalSteps{Path: raw.ExternalSteps.Path}
	case StepSetState:
		step.SetState, err = lowerSetState(raw.SetState, ctx, path)
	case StepScCall:
		step.ScCall, err = lowerScCall(raw.ScCall, ctx, path)
	case StepScDeploy:
		step.ScDeploy, err = lowerScDeploy(raw.ScDeploy, ctx, path)
	case StepTransfer:
		step.Transfer, err = lowerTransfer(raw.Transfer, ctx, path)
	case StepValidatorReward:
		step.ValidatorReward, err = lowerValidatorReward(raw.ValidatorReward, ctx, path)
	case StepCheckState:
		step.CheckState, err = lowerCheckState(raw.CheckState, ctx, path)
	case StepDumpState:
		// no payload
	}
	if err != nil {
		return Step{}, err
	}
	return step, nil
}

func lowerSetState(raw *RawSetState, ctx *InterpreterContext, path Path) (*SetState, error) {
	ss := &SetState{Comment: raw.Comment}

	if raw.Accounts != nil {
		ss.Accounts = make(map[AddressKey]Account, len(raw.Accounts))
		for rawKey, rawAcc := range raw.Accounts {
			keyPath := path.Field("accounts").Key(rawKey)
			addr, err := lowerAddressKey(NewStr(rawKey), ctx, keyPath)
			if err != nil {
				return nil, err
			}
			if _, exists := ss.Accounts[addr]; exists {
				return nil, newError(DuplicateEntry, keyPath, "address %s already present in this accounts map", addr)
			}
			acc, err := lowerAccount(rawAcc, ctx, keyPath)
			if err != nil {
				return nil, err
			}
			acc.Key = NewStr(rawKey)
			ss.Accounts[addr] = acc
		}
	}

	if raw.NewAddresses != nil {
		ss.NewAddresses = make([]NewAddress, len(raw.NewAddresses))
		for i, n := range raw.NewAddresses {
			na, err := lowerNewAddress(n, ctx, path.Field("newAddresses").Index(i))
			if err != nil {
				return nil, err
			}
			ss.NewAddresses[i] = na
		}
	}

	if raw.BlockHashes != nil {
		ss.BlockHashes = make([]BytesValue, len(raw.BlockHashes))
		for i, v := range raw.BlockHashes {
			bv, err := decodeBytesValue(v, ctx, path.Field("blockHashes").Index(i))
			if err != nil {
				return nil, err
			}
			ss.BlockHashes[i] = bv
		}
	}

	if raw.PreviousBlockInfo != nil {
		bi, err := lowerBlockInfo(raw.PreviousBlockInfo, ctx, path.Field("previousBlockInfo"))
		if err != nil {
			return nil, err
		}
		ss.PreviousBlockInfo = bi
	}
	if raw.CurrentBlockInfo != nil {
		bi, err := lowerBlockInfo(raw.CurrentBlockInfo, ctx, path.Field("currentBlockInfo"))
		if err != nil {
			return nil, err
		}
		ss.CurrentBlockInfo = bi
	}

	return ss, nil
}

func lowerAccount(raw RawAccount, ctx *InterpreterContext, path Path) (Account, error) {
	nonce, err := decodeU64Value(raw.Nonce, ctx, path.Field("nonce"))
	if err != nil {
		return Account{}, err
	}
	balance, err := decodeBigUintValue(raw.Balance, ctx, path.Field("balance"))
	if err != nil {
		return Account{}, err
	}
	code, err := decodeBytesValue(raw.Code, ctx, path.Field("code"))
	if err != nil {
		return Account{}, err
	}
	var storage map[string]BytesValue
	if raw.Storage != nil {
		storage = make(map[string]BytesValue, len(raw.Storage))
		for k, v := range raw.Storage {
			bv, err := decodeBytesValue(v, ctx, path.Field("storage").Key(k))
			if err != nil {
				return Account{}, err
			}
			storage[k] = bv
		}
	}
	return Account{Comment: raw.Comment, Nonce: nonce, Balance: balance, Storage: storage, Code: code}, nil
}

func lowerBlockInfo(raw *RawBlockInfo, ctx *InterpreterContext, path Path) (*BlockInfo, error) {
	ts, err := decodeU64Value(raw.BlockTimestamp, ctx, path.Field("blockTimestamp"))
	if err != nil {
		return nil, err
	}
	nonce, err := decodeU64Value(raw.BlockNonce, ctx, path.Field("blockNonce"))
	if err != nil {
		return nil, err
	}
	round, err := decodeU64Value(raw.BlockRound, ctx, path.Field("blockRound"))
	if err != nil {
		return nil, err
	}
	epoch, err := decodeU64Value(raw.BlockEpoch, ctx, path.Field("blockEpoch"))
	if err != nil {
		return nil, err
	}
	return &BlockInfo{BlockTimestamp: ts, BlockNonce: nonce, BlockRound: round, BlockEpoch: epoch}, nil
}

func lowerNewAddress(raw RawNewAddress, ctx *InterpreterContext, path Path) (NewAddress, error) {
	creator, err := decodeAddressValue(raw.CreatorAddress, ctx, path.Field("creatorAddress"))
	if err != nil {
		return NewAddress{}, err
	}
	nonce, err := decodeU64Value(raw.CreatorNonce, ctx, path.Field("creatorNonce"))
	if err != nil {
		return NewAddress{}, err
	}
	newAddr, err := decodeAddressValue(raw.NewAddress, ctx, path.Field("newAddress"))
	if err != nil {
		return NewAddress{}, err
	}
	return NewAddress{CreatorAddress: creator, CreatorNonce: nonce, NewAddress: newAddr}, nil
}

func lowerArguments(raw []Value, ctx *InterpreterContext, path Path) ([]BytesValue, error) {
	if raw == nil {
		return nil, nil
	}
	out := make([]BytesValue, len(raw))
	for i, v := range raw {
		bv, err := decodeBytesValue(v, ctx, path.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = bv
	}
	return out, nil
}

func lowerScCall(raw *RawScCall, ctx *InterpreterContext, path Path) (*ScCall, error) {
	txPath := path.Field("tx")
	from, err := decodeAddressValue(raw.Tx.From, ctx, txPath.Field("from"))
	if err != nil {
		return nil, err
	}
	to, err := decodeAddressValue(raw.Tx.To, ctx, txPath.Field("to"))
	if err != nil {
		return nil, err
	}
	value, err := decodeBigUintValue(raw.Tx.Value, ctx, txPath.Field("value"))
	if err != nil {
		return nil, err
	}
	gasLimit, err := decodeU64Value(raw.Tx.GasLimit, ctx, txPath.Field("gasLimit"))
	if err != nil {
		return nil, err
	}
	gasPrice, err := decodeU64Value(raw.Tx.GasPrice, ctx, txPath.Field("gasPrice"))
	if err != nil {
		return nil, err
	}
	args, err := lowerArguments(raw.Tx.Arguments, ctx, txPath.Field("arguments"))
	if err != nil {
		return nil, err
	}

	call := &ScCall{
		TxID:    raw.TxID,
		Comment: raw.Comment,
		Tx: TxCall{
			From: from, To: to, Value: value, Function: raw.Tx.Function,
			Arguments: args, GasLimit: gasLimit, GasPrice: gasPrice,
		},
	}
	if raw.Expect != nil {
		expect, err := lowerTxExpect(raw.Expect, ctx, path.Field("expect"))
		if err != nil {
			return nil, err
		}
		call.Expect = expect
	}
	return call, nil
}

func lowerScDeploy(raw *RawScDeploy, ctx *InterpreterContext, path Path) (*ScDeploy, error) {
	txPath := path.Field("tx")
	from, err := decodeAddressValue(raw.Tx.From, ctx, txPath.Field("from"))
	if err != nil {
		return nil, err
	}
	value, err := decodeBigUintValue(raw.Tx.Value, ctx, txPath.Field("value"))
	if err != nil {
		return nil, err
	}
	code, err := decodeBytesValue(raw.Tx.ContractCode, ctx, txPath.Field("contractCode"))
	if err != nil {
		return nil, err
	}
	gasLimit, err := decodeU64Value(raw.Tx.GasLimit, ctx, txPath.Field("gasLimit"))
	if err != nil {
		return nil, err
	}
	gasPrice, err := decodeU64Value(raw.Tx.GasPrice, ctx, txPath.Field("gasPrice"))
	if err != nil {
		return nil, err
	}
	args, err := lowerArguments(raw.Tx.Arguments, ctx, txPath.Field("arguments"))
	if err != nil {
		return nil, err
	}

	deploy := &ScDeploy{
		TxID:    raw.TxID,
		Comment: raw.Comment,
		Tx: TxDeploy{
			From: from, Value: value, ContractCode: code,
			Arguments: args, GasLimit: gasLimit, GasPrice: gasPrice,
		},
	}
	if raw.Expect != nil {
		expect, err := lowerTxExpect(raw.Expect, ctx, path.Field("expect"))
		if err != nil {
			return nil, err
		}
		deploy.Expect = expect
	}
	return deploy, nil
}

func lowerTransfer(raw *RawTransfer, ctx *InterpreterContext, path Path) (*Transfer, error) {
	txPath := path.Field("tx")
	from, err := decodeAddressValue(raw.Tx.From, ctx, txPath.Field("from"))
	if err != nil {
		return nil, err
	}
	to, err := decodeAddressValue(raw.Tx.To, ctx, txPath.Field("to"))
	if err != nil {
		return nil, err
	}
	value, err := decodeBigUintValue(raw.Tx.Value, ctx, txPath.Field("value"))
	if err != nil {
		return nil, err
	}
	return &Transfer{
		TxID: raw.TxID, Comment: raw.Comment,
		Tx: TxTransfer{From: from, To: to, Value: value},
	}, nil
}

func lowerValidatorReward(raw *RawValidatorReward, ctx *InterpreterContext, path Path) (*ValidatorReward, error) {
	txPath := path.Field("tx")
	to, err := decodeAddressValue(raw.Tx.To, ctx, txPath.Field("to"))
	if err != nil {
		return nil, err
	}
	value, err := decodeBigUintValue(raw.Tx.Value, ctx, txPath.Field("value"))
	if err != nil {
		return nil, err
	}
	return &ValidatorReward{
		TxID: raw.TxID, Comment: raw.Comment,
		Tx: TxReward{To: to, Value: value},
	}, nil
}

func lowerCheckState(raw *RawCheckState, ctx *InterpreterContext, path Path) (*CheckState, error) {
	accounts, err := lowerCheckAccounts(raw.Accounts, ctx, path.Field("accounts"))
	if err != nil {
		return nil, err
	}
	return &CheckState{Comment: raw.Comment, Accounts: accounts}, nil
}

func lowerTxExpect(raw *RawTxExpect, ctx *InterpreterContext, path Path) (*TxExpect, error) {
	out := make([]BytesValue, len(raw.Out))
	for i, v := range raw.Out {
		bv, err := decodeBytesValue(v, ctx, path.Field("out").Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = bv
	}
	status, err := lowerCheckValue(raw.Status, ctx, path.Field("status"), decodeU64Value)
	if err != nil {
		return nil, err
	}
	message, err := lowerCheckValue(raw.Message, ctx, path.Field("message"), decodeBytesValue)
	if err != nil {
		return nil, err
	}
	gas, err := lowerCheckValue(raw.Gas, ctx, path.Field("gas"), decodeU64Value)
	if err != nil {
		return nil, err
	}
	refund, err := lowerCheckValue(raw.Refund, ctx, path.Field("refund"), decodeBigUintValue)
	if err != nil {
		return nil, err
	}
	logs, err := lowerCheckLogs(raw.Logs, ctx, path.Field("logs"))
	if err != nil {
		return nil, err
	}
	return &TxExpect{Out: out, Status: status, Logs: logs, Message: message, Gas: gas, Refund: refund}, nil
}
