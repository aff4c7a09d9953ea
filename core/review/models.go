package review

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
)

// Receipt is the confirmation of a mined state-changing call.
type Receipt struct {
	TxHash      common.Hash `json:"tx_hash"`
	BlockNumber uint64      `json:"block_number"`
	GasUsed     uint64      `json:"gas_used"`
}

// Inputs. Each carries its validation rules; amounts unmarshal from decimal
// token strings ("12.5") into scaled integers.

type NewSubmission struct {
	AchievementType string `json:"achievement_type" validate:"required"`
	Description     string `json:"description" validate:"required"`
	ProofLink       string `json:"proof_link" validate:"required,url"`
}

func (in *NewSubmission) Validate() error {
	in.AchievementType = core.CleanString(in.AchievementType)
	in.Description = core.CleanString(in.Description)
	in.ProofLink = core.CleanString(in.ProofLink)
	return core.Validate.Struct(in)
}

type Redemption struct {
	Amount  core.Amount `json:"amount"`
	Benefit string      `json:"benefit" validate:"required"`
}

func (in *Redemption) Validate() error {
	in.Benefit = core.CleanString(in.Benefit)
	if err := core.Validate.Struct(in); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "must be greater than zero"})
	}
	return nil
}

type DirectReward struct {
	Teacher         string `json:"teacher" validate:"required,eth_addr"`
	AchievementType string `json:"achievement_type" validate:"required"`
}

func (in *DirectReward) Validate() error {
	in.Teacher = core.CleanString(in.Teacher)
	in.AchievementType = core.CleanString(in.AchievementType)
	return core.Validate.Struct(in)
}

func (in *DirectReward) TeacherAddress() common.Address {
	return common.HexToAddress(in.Teacher)
}

type CustomReward struct {
	Teacher     string      `json:"teacher" validate:"required,eth_addr"`
	Amount      core.Amount `json:"amount"`
	Description string      `json:"description" validate:"required"`
}

func (in *CustomReward) Validate() error {
	in.Teacher = core.CleanString(in.Teacher)
	in.Description = core.CleanString(in.Description)
	if err := core.Validate.Struct(in); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "must be greater than zero"})
	}
	return nil
}

func (in *CustomReward) TeacherAddress() common.Address {
	return common.HexToAddress(in.Teacher)
}

type CategoryUpdate struct {
	Name   string      `json:"name" validate:"required,alphanum_"`
	Amount core.Amount `json:"amount"` // zero allowed: disables the category
}

func (in *CategoryUpdate) Validate() error {
	in.Name = core.CleanString(in.Name)
	return core.Validate.Struct(in)
}

type Rejection struct {
	ID     uint64 `json:"id"`
	Reason string `json:"reason" validate:"required"`
}

func (in *Rejection) Validate() error {
	in.Reason = core.CleanString(in.Reason)
	return core.Validate.Struct(in)
}

type Revocation struct {
	ID     uint64 `json:"id"`
	Reason string `json:"reason" validate:"required"`
}

func (in *Revocation) Validate() error {
	in.Reason = core.CleanString(in.Reason)
	return core.Validate.Struct(in)
}

type CustomRevocation struct {
	Teacher string      `json:"teacher" validate:"required,eth_addr"`
	Amount  core.Amount `json:"amount"`
	Reason  string      `json:"reason" validate:"required"`
}

func (in *CustomRevocation) Validate() error {
	in.Teacher = core.CleanString(in.Teacher)
	in.Reason = core.CleanString(in.Reason)
	if err := core.Validate.Struct(in); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: "must be greater than zero"})
	}
	return nil
}

func (in *CustomRevocation) TeacherAddress() common.Address {
	return common.HexToAddress(in.Teacher)
}
