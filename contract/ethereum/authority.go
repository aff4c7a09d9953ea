package ethcontract

import (
	"context"
	"math/big"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/review"
	"github.com/edutoken/dapp/core/role"
	"github.com/edutoken/dapp/core/submission"
)

// TransactorProvider supplies signing options for a given sending account.
// The wallet layer implements it on top of its keystore.
type TransactorProvider interface {
	TransactorFor(ctx context.Context, from common.Address) (*bind.TransactOpts, error)
}

// Authority drives the EduToken contract over an RPC connection. Reads are
// plain eth_call; writes are two-phase: the transaction is sent, then mined,
// and a failed receipt is replayed as a call to recover the revert reason.
type Authority struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	address  common.Address
	signers  TransactorProvider
	timeout  time.Duration
	log      core.Logger
}

var (
	_ role.OwnerReader  = (*Authority)(nil)
	_ submission.Reader = (*Authority)(nil)
	_ review.Authority  = (*Authority)(nil)
)

func NewAuthority(
	client *ethclient.Client,
	address common.Address,
	signers TransactorProvider,
	timeout time.Duration,
	log core.Logger,
) (*Authority, error) {
	parsed, err := abi.JSON(strings.NewReader(authorityABI))
	if err != nil {
		return nil, errors.Wrap(err, "parsing contract ABI")
	}
	return &Authority{
		client:   client,
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		address:  address,
		signers:  signers,
		timeout:  timeout,
		log:      log,
	}, nil
}

// Dial connects to the configured network and binds the configured contract.
func Dial(ctx context.Context, signers TransactorProvider, log core.Logger) (*Authority, error) {
	network := core.Network()
	if len(network.RPCURLs) == 0 {
		return nil, errors.New("no RPC endpoint configured")
	}
	client, err := ethclient.DialContext(ctx, network.RPCURLs[0])
	if err != nil {
		return nil, errors.Wrap(err, "dialing RPC endpoint")
	}
	return NewAuthority(
		client,
		common.HexToAddress(core.Conf.GetString("contractAddress")),
		signers,
		core.Conf.GetDuration("txConfirmationTimeout"),
		log,
	)
}

// --- reads -----------------------------------------------------------------

func (a *Authority) Owner(ctx context.Context) (common.Address, error) {
	var out []interface{}
	if err := a.call(ctx, &out, "owner"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

func (a *Authority) BalanceOf(ctx context.Context, addr common.Address) (core.Amount, error) {
	return a.amountCall(ctx, "balanceOf", addr)
}

func (a *Authority) TotalRewards(ctx context.Context, teacher common.Address) (core.Amount, error) {
	return a.amountCall(ctx, "getTotalRewards", teacher)
}

func (a *Authority) RewardAmount(ctx context.Context, category string) (core.Amount, error) {
	return a.amountCall(ctx, "getRewardAmount", category)
}

func (a *Authority) TeacherSubmissions(ctx context.Context, teacher common.Address) ([]uint64, error) {
	var out []interface{}
	if err := a.call(ctx, &out, "getTeacherSubmissions", teacher); err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	ids := make([]uint64, len(raw))
	for i, id := range raw {
		ids[i] = id.Uint64()
	}
	return ids, nil
}

func (a *Authority) GetSubmission(ctx context.Context, id uint64) (submission.Submission, error) {
	var out []interface{}
	if err := a.call(ctx, &out, "getSubmission", new(big.Int).SetUint64(id)); err != nil {
		return submission.Submission{}, err
	}
	raw := *abi.ConvertType(out[0], new(rawSubmission)).(*rawSubmission)
	return raw.toSubmission(), nil
}

func (a *Authority) PendingCount(ctx context.Context) (uint64, error) {
	var out []interface{}
	if err := a.call(ctx, &out, "getPendingCount"); err != nil {
		return 0, err
	}
	return (*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)).Uint64(), nil
}

func (a *Authority) AllPendingSubmissions(ctx context.Context) ([]submission.Submission, error) {
	var out []interface{}
	if err := a.call(ctx, &out, "getAllPendingSubmissions"); err != nil {
		return nil, err
	}
	raw := *abi.ConvertType(out[0], new([]rawSubmission)).(*[]rawSubmission)
	subs := make([]submission.Submission, len(raw))
	for i, r := range raw {
		subs[i] = r.toSubmission()
	}
	return subs, nil
}

func (a *Authority) AchievementHistory(ctx context.Context, teacher common.Address) ([]string, error) {
	var out []interface{}
	if err := a.call(ctx, &out, "getAchievementHistory", teacher); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]string)).(*[]string), nil
}

func (a *Authority) call(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error {
	if err := a.contract.Call(&bind.CallOpts{Context: ctx}, out, method, args...); err != nil {
		return errors.Wrapf(err, "calling %s", method)
	}
	return nil
}

func (a *Authority) amountCall(ctx context.Context, method string, args ...interface{}) (core.Amount, error) {
	var out []interface{}
	if err := a.call(ctx, &out, method, args...); err != nil {
		return core.Amount{}, err
	}
	return core.NewAmount(*abi.ConvertType(out[0], new(*big.Int)).(**big.Int)), nil
}

// rawSubmission mirrors the contract's Submission tuple layout.
type rawSubmission struct {
	Id              *big.Int
	Teacher         common.Address
	AchievementType string
	Description     string
	ProofLink       string
	SubmittedAt     *big.Int
	Status          uint8
	RejectionReason string
	ReviewedAt      *big.Int
}

func (r rawSubmission) toSubmission() submission.Submission {
	sub := submission.Submission{
		ID:              r.Id.Uint64(),
		Teacher:         r.Teacher,
		AchievementType: r.AchievementType,
		Description:     r.Description,
		ProofLink:       r.ProofLink,
		SubmittedAt:     time.Unix(r.SubmittedAt.Int64(), 0).UTC(),
		Status:          submission.Status(r.Status),
		RejectionReason: r.RejectionReason,
	}
	if r.ReviewedAt.Sign() > 0 {
		sub.ReviewedAt = time.Unix(r.ReviewedAt.Int64(), 0).UTC()
	}
	return sub
}

// --- writes ----------------------------------------------------------------

func (a *Authority) SubmitAchievement(ctx context.Context, from common.Address, achievementType, description, proofLink string) (review.Receipt, error) {
	return a.transact(ctx, from, "submitAchievement", achievementType, description, proofLink)
}

func (a *Authority) RedeemTokens(ctx context.Context, from common.Address, amount core.Amount, benefit string) (review.Receipt, error) {
	return a.transact(ctx, from, "redeemTokens", amount.Wei(), benefit)
}

func (a *Authority) IssueReward(ctx context.Context, from, teacher common.Address, achievementType string) (review.Receipt, error) {
	return a.transact(ctx, from, "issueReward", teacher, achievementType)
}

func (a *Authority) IssueCustomReward(ctx context.Context, from, teacher common.Address, amount core.Amount, description string) (review.Receipt, error) {
	return a.transact(ctx, from, "issueCustomReward", teacher, amount.Wei(), description)
}

func (a *Authority) SetRewardCategory(ctx context.Context, from common.Address, category string, amount core.Amount) (review.Receipt, error) {
	return a.transact(ctx, from, "setRewardCategory", category, amount.Wei())
}

func (a *Authority) ApproveSubmission(ctx context.Context, from common.Address, id uint64) (review.Receipt, error) {
	return a.transact(ctx, from, "approveSubmission", new(big.Int).SetUint64(id))
}

func (a *Authority) RejectSubmission(ctx context.Context, from common.Address, id uint64, reason string) (review.Receipt, error) {
	return a.transact(ctx, from, "rejectSubmission", new(big.Int).SetUint64(id), reason)
}

func (a *Authority) RevokeReward(ctx context.Context, from common.Address, id uint64, reason string) (review.Receipt, error) {
	return a.transact(ctx, from, "revokeReward", new(big.Int).SetUint64(id), reason)
}

func (a *Authority) RevokeCustomAmount(ctx context.Context, from, teacher common.Address, amount core.Amount, reason string) (review.Receipt, error) {
	return a.transact(ctx, from, "revokeCustomAmount", teacher, amount.Wei(), reason)
}

func (a *Authority) transact(ctx context.Context, from common.Address, method string, args ...interface{}) (review.Receipt, error) {
	opts, err := a.signers.TransactorFor(ctx, from)
	if err != nil {
		return review.Receipt{}, errors.Wrap(err, "preparing transactor")
	}
	opts.Context = ctx

	tx, err := a.contract.Transact(opts, method, args...)
	if err != nil {
		// nodes that run eth_estimateGas before accepting the tx surface the
		// revert here, with the selector-encoded reason attached
		if reason, ok := revertData(err); ok {
			return review.Receipt{}, core.NewTxRevertedError(reason, err)
		}
		return review.Receipt{}, errors.Wrapf(err, "sending %s", method)
	}
	a.log.Debug("transaction sent", map[string]interface{}{"method": method, "tx": tx.Hash().Hex()})

	waitCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	rcpt, err := bind.WaitMined(waitCtx, a.client, tx)
	if err != nil {
		return review.Receipt{}, errors.Wrapf(err, "waiting for %s confirmation", method)
	}
	if rcpt.Status != types.ReceiptStatusSuccessful {
		reason := a.replayRevertReason(ctx, from, tx, rcpt.BlockNumber)
		return review.Receipt{}, core.NewTxRevertedError(reason, errors.Errorf("transaction %s reverted", tx.Hash().Hex()))
	}

	return review.Receipt{
		TxHash:      tx.Hash(),
		BlockNumber: rcpt.BlockNumber.Uint64(),
		GasUsed:     rcpt.GasUsed,
	}, nil
}

// replayRevertReason re-executes a failed transaction as a call at its mined
// block so the node reports the require() message.
func (a *Authority) replayRevertReason(ctx context.Context, from common.Address, tx *types.Transaction, block *big.Int) string {
	msg := ethereum.CallMsg{
		From:     from,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}
	data, err := a.client.CallContract(ctx, msg, block)
	if err != nil {
		if reason, ok := revertData(err); ok {
			return reason
		}
		return err.Error()
	}
	if reason, uerr := abi.UnpackRevert(data); uerr == nil {
		return reason
	}
	return "transaction failed"
}

// revertData extracts a require() reason from an RPC error carrying ABI-encoded
// revert data.
func revertData(err error) (string, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return "", false
	}
	hexData, ok := dataErr.ErrorData().(string)
	if !ok {
		return "", false
	}
	reason, uerr := abi.UnpackRevert(common.FromHex(hexData))
	if uerr != nil {
		return "", false
	}
	return reason, true
}
