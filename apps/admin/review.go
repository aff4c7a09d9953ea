package main

import (
	"context"
	"fmt"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/review"
)

func (cli *commandLine) approve(ctx context.Context, id uint64) error {
	if err := cli.connect(ctx); err != nil {
		return err
	}
	rcpt, err := cli.reviewSvc.ApproveSubmission(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("submission %d approved (tx %s)\n", id, rcpt.TxHash.Hex())
	return nil
}

func (cli *commandLine) reject(ctx context.Context, id uint64, reason string) error {
	if err := cli.connect(ctx); err != nil {
		return err
	}
	rcpt, err := cli.reviewSvc.RejectSubmission(ctx, review.Rejection{ID: id, Reason: reason})
	if err != nil {
		return err
	}
	fmt.Printf("submission %d rejected (tx %s)\n", id, rcpt.TxHash.Hex())
	return nil
}

func (cli *commandLine) revoke(ctx context.Context, id uint64, reason string) error {
	if err := cli.connect(ctx); err != nil {
		return err
	}
	rcpt, err := cli.reviewSvc.RevokeReward(ctx, review.Revocation{ID: id, Reason: reason})
	if err != nil {
		return err
	}
	fmt.Printf("submission %d reward revoked (tx %s)\n", id, rcpt.TxHash.Hex())
	return nil
}

func (cli *commandLine) issue(ctx context.Context, teacher, category string) error {
	if err := cli.connect(ctx); err != nil {
		return err
	}
	rcpt, err := cli.reviewSvc.IssueReward(ctx, review.DirectReward{Teacher: teacher, AchievementType: category})
	if err != nil {
		return err
	}
	fmt.Printf("reward issued to %s (tx %s)\n", teacher, rcpt.TxHash.Hex())
	return nil
}

func (cli *commandLine) issueCustom(ctx context.Context, teacher string, amount core.Amount, description string) error {
	if err := cli.connect(ctx); err != nil {
		return err
	}
	rcpt, err := cli.reviewSvc.IssueCustomReward(ctx, review.CustomReward{
		Teacher:     teacher,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s issued to %s (tx %s)\n", amount.Display(), teacher, rcpt.TxHash.Hex())
	return nil
}

func (cli *commandLine) revokeCustom(ctx context.Context, teacher string, amount core.Amount, reason string) error {
	if err := cli.connect(ctx); err != nil {
		return err
	}
	rcpt, err := cli.reviewSvc.RevokeCustomAmount(ctx, review.CustomRevocation{
		Teacher: teacher,
		Amount:  amount,
		Reason:  reason,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s revoked from %s (tx %s)\n", amount.Display(), teacher, rcpt.TxHash.Hex())
	return nil
}

func (cli *commandLine) setCategory(ctx context.Context, name string, amount core.Amount) error {
	if err := cli.connect(ctx); err != nil {
		return err
	}
	rcpt, err := cli.reviewSvc.SetRewardCategory(ctx, review.CategoryUpdate{Name: name, Amount: amount})
	if err != nil {
		return err
	}
	fmt.Printf("category %q set to %s (tx %s)\n", name, amount.Display(), rcpt.TxHash.Hex())
	return nil
}

func (cli *commandLine) listPending(ctx context.Context) error {
	if err := cli.connect(ctx); err != nil {
		return err
	}
	pending, err := cli.store.RefreshPending(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println("no pending submissions")
		return nil
	}
	for _, sub := range pending {
		fmt.Printf("#%d  %s  %s  %s\n", sub.ID, sub.ShortTeacher(), sub.AchievementType, sub.SubmittedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
