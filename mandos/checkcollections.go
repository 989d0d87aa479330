// Copyright (c) 2024 the mandos authors

package mandos

// lowerCheckStorage implements spec §3.4: a star passes through as Star,
// otherwise every raw entry's value lowers through lowerCheckValue keyed
// by its raw (uninterpreted) storage key — storage keys are never
// interpreted, unlike account map keys (spec §6.2 only redesigns account
// identity, not storage key identity).
func lowerCheckStorage(raw RawCheckStorage, ctx *InterpreterContext, path Path) (CheckStorage, error) {
	if raw.Star {
		return CheckStorage{Star: true}, nil
	}
	entries := make(map[string]CheckValue[BytesValue], len(raw.Entries))
	for k, v := range raw.Entries {
		cv, err := lowerCheckValue(v, ctx, path.Key(k), decodeBytesValue)
		if err != nil {
			return CheckStorage{}, err
		}
		entries[k] = cv
	}
	return CheckStorage{Entries: entries}, nil
}

// lowerCheckLogs implements spec §3.4.
func lowerCheckLogs(raw RawCheckLogs, ctx *InterpreterContext, path Path) (CheckLogs, error) {
	if raw.Star {
		return CheckLogs{Star: true}, nil
	}
	logs := make([]CheckLog, len(raw.Logs))
	for i, l := range raw.Logs {
		logPath := path.Index(i)
		addr, err := decodeBytesValue(l.Address, ctx, logPath.Field("address"))
		if err != nil {
			return CheckLogs{}, err
		}
		ident, err := decodeBytesValue(l.Identifier, ctx, logPath.Field("identifier"))
		if err != nil {
			return CheckLogs{}, err
		}
		data, err := decodeBytesValue(l.Data, ctx, logPath.Field("data"))
		if err != nil {
			return CheckLogs{}, err
		}
		topics := make([]BytesValue, len(l.Topics))
		for j, t := range l.Topics {
			tv, err := decodeBytesValue(t, ctx, logPath.Field("topics").Index(j))
			if err != nil {
				return CheckLogs{}, err
			}
			topics[j] = tv
		}
		logs[i] = CheckLog{Address: addr, Identifier: ident, Topics: topics, Data: data}
	}
	return CheckLogs{Logs: logs}, nil
}

// lowerCheckAccounts implements spec §4.5: the raw "+" key toggles
// OtherAccountsAllowed and contributes no account (its value, if any, is
// discarded — resolved Open Question: allowance-only, per DESIGN.md).
// Every other entry's raw string key is interpreted to an AddressKey;
// two distinct raw keys lowering to the same AddressKey fail with
// DuplicateEntry.
func lowerCheckAccounts(raw RawCheckAccounts, ctx *InterpreterContext, path Path) (CheckAccounts, error) {
	out := CheckAccounts{Accounts: make(map[AddressKey]CheckAccount, len(raw.Entries))}
	for rawKey, entry := range raw.Entries {
		if rawKey == "+" {
			out.OtherAccountsAllowed = true
			continue
		}
		keyPath := path.Key(rawKey)
		addr, err := lowerAddressKey(NewStr(rawKey), ctx, keyPath)
		if err != nil {
			return CheckAccounts{}, err
		}
		if _, exists := out.Accounts[addr]; exists {
			return CheckAccounts{}, newError(DuplicateEntry, keyPath, "address %s already present in this accounts map", addr)
		}
		acc, err := lowerCheckAccount(entry, ctx, keyPath)
		if err != nil {
			return CheckAccounts{}, err
		}
		acc.Key = NewStr(rawKey)
		out.Accounts[addr] = acc
	}
	return out, nil
}

func lowerCheckAccount(raw RawCheckAccount, ctx *InterpreterContext, path Path) (CheckAccount, error) {
	nonce, err := lowerCheckValue(raw.Nonce, ctx, path.Field("nonce"), decodeU64Value)
	if err != nil {
		return CheckAccount{}, err
	}
	balance, err := lowerCheckValue(raw.Balance, ctx, path.Field("balance"), decodeBigUintValue)
	if err != nil {
		return CheckAccount{}, err
	}
	code, err := lowerCheckValue(raw.Code, ctx, path.Field("code"), decodeBytesValue)
	if err != nil {
		return CheckAccount{}, err
	}
	asyncData, err := lowerCheckValue(raw.AsyncCallData, ctx, path.Field("asyncCallData"), decodeBytesValue)
	if err != nil {
		return CheckAccount{}, err
	}
	storage, err := lowerCheckStorage(raw.Storage, ctx, path.Field("storage"))
	if err != nil {
		return CheckAccount{}, err
	}
	return CheckAccount{
		Comment:       raw.Comment,
		Nonce:         nonce,
		Balance:       balance,
		Storage:       storage,
		Code:          code,
		AsyncCallData: asyncData,
	}, nil
}
