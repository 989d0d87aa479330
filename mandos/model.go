// Copyright (c) 2024 the mandos authors

package mandos

// Scenario is the interpreted mirror of RawScenario: every mini-DSL
// string anywhere in the tree has been decoded into a value wrapper.
type Scenario struct {
	Name     string
	Comment  string
	CheckGas bool
	Steps    []Step
}

// Step is the interpreted mirror of RawStep.
type Step struct {
	Kind            StepKind
	Comment         string
	ExternalSteps   *ExternalSteps
	SetState        *SetState
	ScCall          *ScCall
	ScDeploy        *ScDeploy
	Transfer        *Transfer
	ValidatorReward *ValidatorReward
	CheckState      *CheckState
}

// ExternalSteps is the interpreted mirror of RawExternalSteps. Path is
// carried verbatim, never passed through the mini-DSL (spec §4.6, §9).
type ExternalSteps struct {
	Path string
}

// SetState is the interpreted mirror of RawSetState. Accounts are keyed
// by their interpreted AddressKey, not their raw string (spec §6.2).
type SetState struct {
	Comment           string
	Accounts          map[AddressKey]Account
	NewAddresses      []NewAddress
	BlockHashes       []BytesValue
	PreviousBlockInfo *BlockInfo
	CurrentBlockInfo  *BlockInfo
}

// Account is the interpreted mirror of RawAccount. Key retains the raw
// map-key sub-tree this account was lowered from (map keys are not
// themselves Wrapper values, since they moonlight as the map's own index)
// so the account can re-serialise under its original key literal.
type Account struct {
	Key     Value
	Comment string
	Nonce   U64Value
	Balance BigUintValue
	Storage map[string]BytesValue
	Code    BytesValue
}

// BlockInfo is the interpreted mirror of RawBlockInfo: the four optional
// block metadata fields confirmed against original_source/src/scenario.rs.
type BlockInfo struct {
	BlockTimestamp U64Value
	BlockNonce     U64Value
	BlockRound     U64Value
	BlockEpoch     U64Value
}

// NewAddress is the interpreted mirror of RawNewAddress.
type NewAddress struct {
	CreatorAddress AddressValue
	CreatorNonce   U64Value
	NewAddress     AddressValue
}

// TxCall is the interpreted mirror of RawTxCall.
type TxCall struct {
	From      AddressValue
	To        AddressValue
	Value     BigUintValue
	Function  string
	Arguments []BytesValue
	GasLimit  U64Value
	GasPrice  U64Value
}

// ScCall is the interpreted mirror of RawScCall.
type ScCall struct {
	TxID    string
	Comment string
	Tx      TxCall
	Expect  *TxExpect
}

// TxDeploy is the interpreted mirror of RawTxDeploy.
type TxDeploy struct {
	From         AddressValue
	Value        BigUintValue
	ContractCode BytesValue
	Arguments    []BytesValue
	GasLimit     U64Value
	GasPrice     U64Value
}

// ScDeploy is the interpreted mirror of RawScDeploy.
type ScDeploy struct {
	TxID    string
	Comment string
	Tx      TxDeploy
	Expect  *TxExpect
}

// TxTransfer is the interpreted mirror of RawTxTransfer.
type TxTransfer struct {
	From  AddressValue
	To    AddressValue
	Value BigUintValue
}

// Transfer is the interpreted mirror of RawTransfer.
type Transfer struct {
	TxID    string
	Comment string
	Tx      TxTransfer
}

// TxReward is the interpreted mirror of RawTxReward.
type TxReward struct {
	To    AddressValue
	Value BigUintValue
}

// ValidatorReward is the interpreted mirror of RawValidatorReward.
type ValidatorReward struct {
	TxID    string
	Comment string
	Tx      TxReward
}

// CheckState is the interpreted mirror of RawCheckState.
type CheckState struct {
	Comment  string
	Accounts CheckAccounts
}

// CheckAccounts is the interpreted mirror of spec §3.4 / §4.5: the
// lowered "+" allowance flag plus a map keyed by canonical AddressKey.
type CheckAccounts struct {
	OtherAccountsAllowed bool
	Accounts             map[AddressKey]CheckAccount
}

// CheckAccount is the interpreted mirror of RawCheckAccount. Key retains
// the raw map-key sub-tree, mirroring Account.Key.
type CheckAccount struct {
	Key           Value
	Comment       string
	Nonce         CheckValue[U64Value]
	Balance       CheckValue[BigUintValue]
	Storage       CheckStorage
	Code          CheckValue[BytesValue]
	AsyncCallData CheckValue[BytesValue]
}

// CheckStorage is the interpreted mirror of RawCheckStorage (spec §3.4).
type CheckStorage struct {
	Star    bool
	Entries map[string]CheckValue[BytesValue]
}

// CheckLog is the interpreted mirror of RawCheckLog.
type CheckLog struct {
	Address    BytesValue
	Identifier BytesValue
	Topics     []BytesValue
	Data       BytesValue
}

// CheckLogs is the interpreted mirror of RawCheckLogs (spec §3.4).
type CheckLogs struct {
	Star bool
	Logs []CheckLog
}

// TxExpect is the interpreted mirror of RawTxExpect.
type TxExpect struct {
	Out     []BytesValue
	Status  CheckValue[U64Value]
	Logs    CheckLogs
	Message CheckValue[BytesValue]
	Gas     CheckValue[U64Value]
	Refund  CheckValue[BigUintValue]
}
