// Copyright (c) 2024 the mandos authors

package mandos

import (
	"github.com/tidwall/gjson"
)

// StepKind discriminates the tagged union of spec §3.5 / §6.1's `step`
// wire discriminator.
type StepKind int

const (
	StepExternalSteps StepKind = iota
	StepSetState
	StepScCall
	StepScDeploy
	StepTransfer
	StepValidatorReward
	StepCheckState
	StepDumpState
)

var stepKindNames = map[string]StepKind{
	"externalSteps":   StepExternalSteps,
	"setState":        StepSetState,
	"scCall":          StepScCall,
	"scDeploy":        StepScDeploy,
	"transfer":        StepTransfer,
	"validatorReward": StepValidatorReward,
	"checkState":      StepCheckState,
	"dumpState":       StepDumpState,
}

var stepKindWireNames = func() map[StepKind]string {
	out := make(map[StepKind]string, len(stepKindNames))
	for name, kind := range stepKindNames {
		out[kind] = name
	}
	return out
}()

// String returns the step's wire discriminator, e.g. "scCall".
func (k StepKind) String() string {
	if name, ok := stepKindWireNames[k]; ok {
		return name
	}
	return "unknown"
}

// RawScenario mirrors the top-level JSON document of spec §6.1 verbatim.
type RawScenario struct {
	Name     string
	Comment  string
	CheckGas bool
	Steps    []RawStep
}

// RawStep is a tagged union over the payload that accompanies each `step`
// discriminator. Only the field matching Kind is populated.
type RawStep struct {
	Kind            StepKind
	Comment         string
	ExternalSteps   *RawExternalSteps
	SetState        *RawSetState
	ScCall          *RawScCall
	ScDeploy        *RawScDeploy
	Transfer        *RawTransfer
	ValidatorReward *RawValidatorReward
	CheckState      *RawCheckState
}

// RawExternalSteps carries the path to another scenario file. Per spec
// §4.6 / §9 open question 3, this path is retained verbatim and never
// passed through the mini-DSL.
type RawExternalSteps struct {
	Path string
}

// RawSetState mirrors a `setState` step's payload.
type RawSetState struct {
	Comment           string
	Accounts          map[string]RawAccount
	NewAddresses      []RawNewAddress
	BlockHashes       []Value
	PreviousBlockInfo *RawBlockInfo
	CurrentBlockInfo  *RawBlockInfo
}

// RawAccount mirrors one entry of `setState.accounts`.
type RawAccount struct {
	Comment string
	Nonce   Value
	Balance Value
	Storage map[string]Value
	Code    Value
}

// RawBlockInfo mirrors the four optional block metadata fields confirmed
// against original_source/src/scenario.rs: block_timestamp, block_nonce,
// block_round, block_epoch. All four are optional U64-shaped values.
type RawBlockInfo struct {
	BlockTimestamp Value
	BlockNonce     Value
	BlockRound     Value
	BlockEpoch     Value
}

// RawNewAddress mirrors one entry of `setState.newAddresses`: a
// deterministic address pre-assignment for a future contract deployment
// from a given creator and nonce.
type RawNewAddress struct {
	CreatorAddress Value
	CreatorNonce   Value
	NewAddress     Value
}

// RawTxCall mirrors `scCall.tx`. Function is a plain identifier, not
// mini-DSL bytes: passing a bare function name like "transfer" through
// interpretString would fall through to rule 8 and fail as BadLiteral.
type RawTxCall struct {
	From      Value
	To        Value
	Value     Value
	Function  string
	Arguments []Value
	GasLimit  Value
	GasPrice  Value
}

// RawScCall mirrors a `scCall` step's payload.
type RawScCall struct {
	TxID    string
	Comment string
	Tx      RawTxCall
	Expect  *RawTxExpect
}

// RawTxDeploy mirrors `scDeploy.tx`.
type RawTxDeploy struct {
	From         Value
	Value        Value
	ContractCode Value
	Arguments    []Value
	GasLimit     Value
	GasPrice     Value
}

// RawScDeploy mirrors a `scDeploy` step's payload.
type RawScDeploy struct {
	TxID    string
	Comment string
	Tx      RawTxDeploy
	Expect  *RawTxExpect
}

// RawTxTransfer mirrors `transfer.tx`.
type RawTxTransfer struct {
	From  Value
	To    Value
	Value Value
}

// RawTransfer mirrors a `transfer` step's payload.
type RawTransfer struct {
	TxID    string
	Comment string
	Tx      RawTxTransfer
}

// RawTxReward mirrors `validatorReward.tx`.
type RawTxReward struct {
	To    Value
	Value Value
}

// RawValidatorReward mirrors a `validatorReward` step's payload.
type RawValidatorReward struct {
	TxID    string
	Comment string
	Tx      RawTxReward
}

// RawCheckState mirrors a `checkState` step's payload.
type RawCheckState struct {
	Comment  string
	Accounts RawCheckAccounts
}

// RawCheckAccounts mirrors spec §3.4 / §6.3: a raw map whose "+" key is
// handled specially during lowering, not here — the raw layer stores it
// as an ordinary entry so the document round-trips losslessly.
type RawCheckAccounts struct {
	Entries map[string]RawCheckAccount
}

// RawCheckAccount mirrors one entry of a `checkState.accounts` map.
// Fields left absent in JSON decode to the zero Value, which lowers to
// DefaultStar (spec §4.4).
type RawCheckAccount struct {
	Comment       string
	Nonce         Value
	Balance       Value
	Storage       RawCheckStorage
	Code          Value
	AsyncCallData Value
}

// RawCheckStorage mirrors spec §3.4: either a star (whole map
// unconstrained) or a concrete map of expected key/value pairs.
type RawCheckStorage struct {
	Star    bool
	Entries map[string]Value
}

// RawCheckLog mirrors one entry of `expect.logs`.
type RawCheckLog struct {
	Address    Value
	Identifier Value
	Topics     []Value
	Data       Value
}

// RawCheckLogs mirrors spec §3.4: either a star or an ordered sequence of
// expected logs.
type RawCheckLogs struct {
	Star bool
	Logs []RawCheckLog
}

// RawTxExpect mirrors `expect` on scCall/scDeploy steps.
type RawTxExpect struct {
	Out    []Value
	Status Value
	Logs   RawCheckLogs
	Message Value
	Gas    Value
	Refund Value
}

// ParseScenario parses a complete scenario document. data must be valid
// JSON (gjson.Parse does not itself validate exhaustively, so malformed
// top-level input surfaces as Shape errors on the fields it cannot find).
func ParseScenario(data []byte) (*RawScenario, error) {
	root := gjson.ParseBytes(data)
	if !root.Exists() || !root.IsObject() {
		return nil, newError(Syntax, "", "scenario document must be a JSON object")
	}
	return parseScenario(root, "")
}

func parseScenario(root gjson.Result, path Path) (*RawScenario, error) {
	s := &RawScenario{
		Name:     root.Get("name").String(),
		Comment:  root.Get("comment").String(),
		CheckGas: root.Get("checkGas").Bool(),
	}
	stepsResult := root.Get("steps")
	if !stepsResult.Exists() {
		return s, nil
	}
	if !stepsResult.IsArray() {
		return nil, newError(Shape, path.Field("steps"), "steps must be an array")
	}
	items := stepsResult.Array()
	s.Steps = make([]RawStep, len(items))
	for i, item := range items {
		step, err := parseStep(item, path.Field("steps").Index(i))
		if err != nil {
			return nil, err
		}
		s.Steps[i] = step
	}
	return s, nil
}

func parseStep(r gjson.Result, path Path) (RawStep, error) {
	kindStr := r.Get("step").String()
	kind, ok := stepKindNames[kindStr]
	if !ok {
		return RawStep{}, newError(Shape, path.Field("step"), "unknown step discriminator %q", kindStr)
	}
	step := RawStep{Kind: kind, Comment: r.Get("comment").String()}
	var err error
	switch kind {
	case StepExternalSteps:
		if err := requireField(r, "path", path); err != nil {
			return RawStep{}, err
		}
		step.ExternalSteps = &RawExternalSteps{Path: r.Get("path").String()}
	case StepSetState:
		step.SetState, err = parseSetState(r, path)
	case StepScCall:
		step.ScCall, err = parseScCall(r, path)
	case StepScDeploy:
		step.ScDeploy, err = parseScDeploy(r, path)
	case StepTransfer:
		step.Transfer, err = parseTransfer(r, path)
	case StepValidatorReward:
		step.ValidatorReward, err = parseValidatorReward(r, path)
	case StepCheckState:
		step.CheckState, err = parseCheckState(r, path)
	case StepDumpState:
		// no payload beyond comment
	}
	if err != nil {
		return RawStep{}, err
	}
	return step, nil
}

func parseValueField(r gjson.Result, field string, path Path) (Value, error) {
	fr := r.Get(field)
	if !fr.Exists() {
		return Value{}, nil
	}
	return ParseValue(path.Field(field), fr)
}

// requireField raises Shape when field is absent from r; callers use it for
// the required fields of spec §6.1's payload table. The storage field of a
// checkState account is not checked for presence. It only checks presence
// — shape/type validation of the field itself happens wherever it is parsed.
func requireField(r gjson.Result, field string, path Path) error {
	if !r.Get(field).Exists() {
		return newError(Shape, path.Field(field), "%s is required", field)
	}
	return nil
}

// parseRequiredValueField is parseValueField plus a presence check, for the
// non-`?` Value fields of spec §6.1 (Account.nonce/balance, TxCall.from/
// to/value/gasLimit/gasPrice, and friends).
func parseRequiredValueField(r gjson.Result, field string, path Path) (Value, error) {
	if err := requireField(r, field, path); err != nil {
		return Value{}, err
	}
	return parseValueField(r, field, path)
}

func parseValueList(r gjson.Result, field string, path Path) ([]Value, error) {
	fr := r.Get(field)
	if !fr.Exists() {
		return nil, nil
	}
	if !fr.IsArray() {
		return nil, newError(Shape, path.Field(field), "%s must be an array", field)
	}
	items := fr.Array()
	out := make([]Value, len(items))
	for i, item := range items {
		v, err := ParseValue(path.Field(field).Index(i), item)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseSetState(r gjson.Result, path Path) (*RawSetState, error) {
	ss := &RawSetState{Comment: r.Get("comment").String()}

	if acc := r.Get("accounts"); acc.Exists() {
		if !acc.IsObject() {
			return nil, newError(Shape, path.Field("accounts"), "accounts must be an object")
		}
		ss.Accounts = make(map[string]RawAccount)
		var firstErr error
		acc.ForEach(func(key, val gjson.Result) bool {
			a, err := parseAccount(val, path.Field("accounts").Key(key.String()))
			if err != nil {
				firstErr = err
				return false
			}
			ss.Accounts[key.String()] = a
			return true
		})
		if firstErr != nil {
			return nil, firstErr
		}
	}

	if na := r.Get("newAddresses"); na.Exists() {
		if !na.IsArray() {
			return nil, newError(Shape, path.Field("newAddresses"), "newAddresses must be an array")
		}
		items := na.Array()
		ss.NewAddresses = make([]RawNewAddress, len(items))
		for i, item := range items {
			n, err := parseNewAddress(item, path.Field("newAddresses").Index(i))
			if err != nil {
				return nil, err
			}
			ss.NewAddresses[i] = n
		}
	}

	bh, err := parseValueList(r, "blockHashes", path)
	if err != nil {
		return nil, err
	}
	ss.BlockHashes = bh

	if pbi := r.Get("previousBlockInfo"); pbi.Exists() {
		info, err := parseBlockInfo(pbi, path.Field("previousBlockInfo"))
		if err != nil {
			return nil, err
		}
		ss.PreviousBlockInfo = info
	}
	if cbi := r.Get("currentBlockInfo"); cbi.Exists() {
		info, err := parseBlockInfo(cbi, path.Field("currentBlockInfo"))
		if err != nil {
			return nil, err
		}
		ss.CurrentBlockInfo = info
	}

	return ss, nil
}

func parseAccount(r gjson.Result, path Path) (RawAccount, error) {
	a := RawAccount{Comment: r.Get("comment").String()}
	var err error
	if a.Nonce, err = parseRequiredValueField(r, "nonce", path); err != nil {
		return RawAccount{}, err
	}
	if a.Balance, err = parseRequiredValueField(r, "balance", path); err != nil {
		return RawAccount{}, err
	}
	if a.Code, err = parseValueField(r, "code", path); err != nil {
		return RawAccount{}, err
	}
	st := r.Get("storage")
	if !st.Exists() {
		return RawAccount{}, newError(Shape, path.Field("storage"), "storage is required")
	}
	if !st.IsObject() {
		return RawAccount{}, newError(Shape, path.Field("storage"), "storage must be an object")
	}
	a.Storage = make(map[string]Value)
	var firstErr error
	st.ForEach(func(key, val gjson.Result) bool {
		v, err := ParseValue(path.Field("storage").Key(key.String()), val)
		if err != nil {
			firstErr = err
			return false
		}
		a.Storage[key.String()] = v
		return true
	})
	if firstErr != nil {
		return RawAccount{}, firstErr
	}
	return a, nil
}

func parseBlockInfo(r gjson.Result, path Path) (*RawBlockInfo, error) {
	bi := &RawBlockInfo{}
	var err error
	if bi.BlockTimestamp, err = parseValueField(r, "blockTimestamp", path); err != nil {
		return nil, err
	}
	if bi.BlockNonce, err = parseValueField(r, "blockNonce", path); err != nil {
		return nil, err
	}
	if bi.BlockRound, err = parseValueField(r, "blockRound", path); err != nil {
		return nil, err
	}
	if bi.BlockEpoch, err = parseValueField(r, "blockEpoch", path); err != nil {
		return nil, err
	}
	return bi, nil
}

func parseNewAddress(r gjson.Result, path Path) (RawNewAddress, error) {
	n := RawNewAddress{}
	var err error
	if n.CreatorAddress, err = parseValueField(r, "creatorAddress", path); err != nil {
		return RawNewAddress{}, err
	}
	if n.CreatorNonce, err = parseValueField(r, "creatorNonce", path); err != nil {
		return RawNewAddress{}, err
	}
	if n.NewAddress, err = parseValueField(r, "newAddress", path); err != nil {
		return RawNewAddress{}, err
	}
	return n, nil
}

func parseScCall(r gjson.Result, path Path) (*RawScCall, error) {
	if err := requireField(r, "txId", path); err != nil {
		return nil, err
	}
	txr := r.Get("tx")
	if !txr.Exists() {
		return nil, newError(Shape, path.Field("tx"), "scCall requires a tx payload")
	}
	txPath := path.Field("tx")
	if err := requireField(txr, "function", txPath); err != nil {
		return nil, err
	}
	tx := RawTxCall{Function: txr.Get("function").String()}
	var err error
	if tx.From, err = parseRequiredValueField(txr, "from", txPath); err != nil {
		return nil, err
	}
	if tx.To, err = parseRequiredValueField(txr, "to", txPath); err != nil {
		return nil, err
	}
	if tx.Value, err = parseRequiredValueField(txr, "value", txPath); err != nil {
		return nil, err
	}
	if tx.GasLimit, err = parseRequiredValueField(txr, "gasLimit", txPath); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = parseRequiredValueField(txr, "gasPrice", txPath); err != nil {
		return nil, err
	}
	if tx.Arguments, err = parseValueList(txr, "arguments", txPath); err != nil {
		return nil, err
	}

	call := &RawScCall{TxID: r.Get("txId").String(), Comment: r.Get("comment").String(), Tx: tx}
	if exp := r.Get("expect"); exp.Exists() {
		call.Expect, err = parseTxExpect(exp, path.Field("expect"))
		if err != nil {
			return nil, err
		}
	}
	return call, nil
}

func parseScDeploy(r gjson.Result, path Path) (*RawScDeploy, error) {
	if err := requireField(r, "txId", path); err != nil {
		return nil, err
	}
	txr := r.Get("tx")
	if !txr.Exists() {
		return nil, newError(Shape, path.Field("tx"), "scDeploy requires a tx payload")
	}
	txPath := path.Field("tx")
	tx := RawTxDeploy{}
	var err error
	if tx.From, err = parseRequiredValueField(txr, "from", txPath); err != nil {
		return nil, err
	}
	if tx.Value, err = parseRequiredValueField(txr, "value", txPath); err != nil {
		return nil, err
	}
	if tx.ContractCode, err = parseRequiredValueField(txr, "contractCode", txPath); err != nil {
		return nil, err
	}
	if tx.GasLimit, err = parseRequiredValueField(txr, "gasLimit", txPath); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = parseRequiredValueField(txr, "gasPrice", txPath); err != nil {
		return nil, err
	}
	if tx.Arguments, err = parseValueList(txr, "arguments", txPath); err != nil {
		return nil, err
	}

	deploy := &RawScDeploy{TxID: r.Get("txId").String(), Comment: r.Get("comment").String(), Tx: tx}
	if exp := r.Get("expect"); exp.Exists() {
		deploy.Expect, err = parseTxExpect(exp, path.Field("expect"))
		if err != nil {
			return nil, err
		}
	}
	return deploy, nil
}

func parseTransfer(r gjson.Result, path Path) (*RawTransfer, error) {
	if err := requireField(r, "txId", path); err != nil {
		return nil, err
	}
	txr := r.Get("tx")
	if !txr.Exists() {
		return nil, newError(Shape, path.Field("tx"), "transfer requires a tx payload")
	}
	txPath := path.Field("tx")
	tx := RawTxTransfer{}
	var err error
	if tx.From, err = parseRequiredValueField(txr, "from", txPath); err != nil {
		return nil, err
	}
	if tx.To, err = parseRequiredValueField(txr, "to", txPath); err != nil {
		return nil, err
	}
	if tx.Value, err = parseRequiredValueField(txr, "value", txPath); err != nil {
		return nil, err
	}
	return &RawTransfer{TxID: r.Get("txId").String(), Comment: r.Get("comment").String(), Tx: tx}, nil
}

func parseValidatorReward(r gjson.Result, path Path) (*RawValidatorReward, error) {
	if err := requireField(r, "txId", path); err != nil {
		return nil, err
	}
	txr := r.Get("tx")
	if !txr.Exists() {
		return nil, newError(Shape, path.Field("tx"), "validatorReward requires a tx payload")
	}
	txPath := path.Field("tx")
	tx := RawTxReward{}
	var err error
	if tx.To, err = parseRequiredValueField(txr, "to", txPath); err != nil {
		return nil, err
	}
	if tx.Value, err = parseRequiredValueField(txr, "value", txPath); err != nil {
		return nil, err
	}
	return &RawValidatorReward{TxID: r.Get("txId").String(), Comment: r.Get("comment").String(), Tx: tx}, nil
}

func parseCheckState(r gjson.Result, path Path) (*RawCheckState, error) {
	accr := r.Get("accounts")
	if !accr.Exists() {
		return nil, newError(Shape, path.Field("accounts"), "checkState requires accounts")
	}
	accounts, err := parseCheckAccounts(accr, path.Field("accounts"))
	if err != nil {
		return nil, err
	}
	return &RawCheckState{Comment: r.Get("comment").String(), Accounts: accounts}, nil
}

func parseCheckAccounts(r gjson.Result, path Path) (RawCheckAccounts, error) {
	if !r.IsObject() {
		return RawCheckAccounts{}, newError(Shape, path, "accounts must be an object")
	}
	out := RawCheckAccounts{Entries: make(map[string]RawCheckAccount)}
	var firstErr error
	r.ForEach(func(key, val gjson.Result) bool {
		a, err := parseCheckAccount(val, path.Key(key.String()))
		if err != nil {
			firstErr = err
			return false
		}
		out.Entries[key.String()] = a
		return true
	})
	if firstErr != nil {
		return RawCheckAccounts{}, firstErr
	}
	return out, nil
}

func parseCheckAccount(r gjson.Result, path Path) (RawCheckAccount, error) {
	a := RawCheckAccount{Comment: r.Get("comment").String()}
	var err error
	if a.Nonce, err = parseValueField(r, "nonce", path); err != nil {
		return RawCheckAccount{}, err
	}
	if a.Balance, err = parseValueField(r, "balance", path); err != nil {
		return RawCheckAccount{}, err
	}
	if a.Code, err = parseValueField(r, "code", path); err != nil {
		return RawCheckAccount{}, err
	}
	if a.AsyncCallData, err = parseValueField(r, "asyncCallData", path); err != nil {
		return RawCheckAccount{}, err
	}
	st := r.Get("storage")
	if st.Exists() && st.Type == gjson.String && st.String() == "*" {
		a.Storage = RawCheckStorage{Star: true}
	} else if st.Exists() {
		if !st.IsObject() {
			return RawCheckAccount{}, newError(Shape, path.Field("storage"), "storage must be an object or \"*\"")
		}
		entries := make(map[string]Value)
		var firstErr error
		st.ForEach(func(key, val gjson.Result) bool {
			v, err := ParseValue(path.Field("storage").Key(key.String()), val)
			if err != nil {
				firstErr = err
				return false
			}
			entries[key.String()] = v
			return true
		})
		if firstErr != nil {
			return RawCheckAccount{}, firstErr
		}
		a.Storage = RawCheckStorage{Entries: entries}
	}
	return a, nil
}

func parseTxExpect(r gjson.Result, path Path) (*RawTxExpect, error) {
	e := &RawTxExpect{}
	var err error
	if e.Out, err = parseValueList(r, "out", path); err != nil {
		return nil, err
	}
	if e.Status, err = parseRequiredValueField(r, "status", path); err != nil {
		return nil, err
	}
	if e.Message, err = parseValueField(r, "message", path); err != nil {
		return nil, err
	}
	if e.Gas, err = parseValueField(r, "gas", path); err != nil {
		return nil, err
	}
	if e.Refund, err = parseValueField(r, "refund", path); err != nil {
		return nil, err
	}
	if err := requireField(r, "logs", path); err != nil {
		return nil, err
	}
	logsr := r.Get("logs")
	if logsr.Type == gjson.String && logsr.String() == "*" {
		e.Logs = RawCheckLogs{Star: true}
	} else {
		if !logsr.IsArray() {
			return nil, newError(Shape, path.Field("logs"), "logs must be an array or \"*\"")
		}
		items := logsr.Array()
		logs := make([]RawCheckLog, len(items))
		for i, item := range items {
			log, err := parseCheckLog(item, path.Field("logs").Index(i))
			if err != nil {
				return nil, err
			}
			logs[i] = log
		}
		e.Logs = RawCheckLogs{Logs: logs}
	}
	return e, nil
}

func parseCheckLog(r gjson.Result, path Path) (RawCheckLog, error) {
	l := RawCheckLog{}
	var err error
	if l.Address, err = parseRequiredValueField(r, "address", path); err != nil {
		return RawCheckLog{}, err
	}
	if l.Identifier, err = parseRequiredValueField(r, "identifier", path); err != nil {
		return RawCheckLog{}, err
	}
	if l.Data, err = parseRequiredValueField(r, "data", path); err != nil {
		return RawCheckLog{}, err
	}
	if l.Topics, err = parseValueList(r, "topics", path); err != nil {
		return RawCheckLog{}, err
	}
	return l, nil
}
