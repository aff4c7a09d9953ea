package submission

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/edutoken/dapp/core"
)

var ErrNotFound = errors.New("submission not found")

// Status is the review lifecycle state as reported by the contract.
// Pending -> Approved | Rejected; Approved -> Revoked. The client only
// observes transitions, it never mutates a submission locally.
type Status uint8

const (
	StatusPending Status = iota
	StatusApproved
	StatusRejected
	StatusRevoked
)

var statusLabels = map[Status]string{
	StatusPending:  "Pending",
	StatusApproved: "Approved",
	StatusRejected: "Rejected",
	StatusRevoked:  "Revoked",
}

func (s Status) String() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return "Unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	for status, l := range statusLabels {
		if l == label {
			*s = status
			return nil
		}
	}
	return errors.New("unknown submission status: " + label)
}

// Submission is a teacher's achievement claim and its review record.
// Identity is the id; only Status, RejectionReason and ReviewedAt ever change,
// and only on the contract in response to review actions.
type Submission struct {
	ID              uint64         `json:"id"`
	Teacher         common.Address `json:"teacher"`
	AchievementType string         `json:"achievement_type"`
	Description     string         `json:"description"`
	ProofLink       string         `json:"proof_link"`
	SubmittedAt     time.Time      `json:"submitted_at"` // UTC
	Status          Status         `json:"status"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	ReviewedAt      time.Time      `json:"reviewed_at"` // UTC; zero until reviewed
}

func (s Submission) Reviewed() bool {
	return !s.ReviewedAt.IsZero()
}

// ReasonLabel distinguishes a revocation reason from a rejection reason when
// rendering RejectionReason.
func (s Submission) ReasonLabel() string {
	if s.Status == StatusRevoked {
		return "Revocation Reason"
	}
	return "Rejection Reason"
}

func (s Submission) ShortTeacher() string {
	return core.ShortAddress(s.Teacher.Hex())
}

// AchievementReward pairs an earned achievement with its reward category's
// current rate. Note: the current rate, not necessarily the rate paid at the
// time; category rates can be changed by the admin after the fact.
type AchievementReward struct {
	Name   string      `json:"name"`
	Reward core.Amount `json:"reward"`
}

// History is the per-teacher achievement history projection.
type History struct {
	Achievements   []AchievementReward `json:"achievements"`
	TotalRewards   core.Amount         `json:"total_rewards"`
	CurrentBalance core.Amount         `json:"current_balance"`
}
