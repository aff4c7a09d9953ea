package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
	"github.com/edutoken/dapp/core/review"
	"github.com/edutoken/dapp/core/submission"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	sessions  *chain.Service
	reviewSvc *review.Service
	store     *submission.Store
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  pending                                                    - list pending submissions")
	fmt.Println("  approve -id ID                                             - approve a pending submission")
	fmt.Println("  reject -id ID -reason REASON                               - reject a pending submission")
	fmt.Println("  revoke -id ID -reason REASON                               - revoke an approved submission's reward")
	fmt.Println("  issue -teacher ADDRESS -category CATEGORY                  - pay a category reward directly")
	fmt.Println("  issuecustom -teacher ADDRESS -amount AMOUNT -description D - pay an arbitrary reward")
	fmt.Println("  revokecustom -teacher ADDRESS -amount AMOUNT -reason R     - claw back an arbitrary amount")
	fmt.Println("  setcategory -name NAME -amount AMOUNT                      - create or reprice a reward category")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	approveCmd := flag.NewFlagSet("approve", flag.ExitOnError)
	approveID := approveCmd.Uint64("id", 0, "The submission id.")

	rejectCmd := flag.NewFlagSet("reject", flag.ExitOnError)
	rejectID := rejectCmd.Uint64("id", 0, "The submission id.")
	rejectReason := rejectCmd.String("reason", "", "The rejection reason.")

	revokeCmd := flag.NewFlagSet("revoke", flag.ExitOnError)
	revokeID := revokeCmd.Uint64("id", 0, "The submission id.")
	revokeReason := revokeCmd.String("reason", "", "The revocation reason.")

	issueCmd := flag.NewFlagSet("issue", flag.ExitOnError)
	issueTeacher := issueCmd.String("teacher", "", "The teacher's address.")
	issueCategory := issueCmd.String("category", "", "The achievement category.")

	issueCustomCmd := flag.NewFlagSet("issuecustom", flag.ExitOnError)
	issueCustomTeacher := issueCustomCmd.String("teacher", "", "The teacher's address.")
	issueCustomAmount := issueCustomCmd.String("amount", "", "The token amount, eg. 12.5.")
	issueCustomDesc := issueCustomCmd.String("description", "", "What the reward is for.")

	revokeCustomCmd := flag.NewFlagSet("revokecustom", flag.ExitOnError)
	revokeCustomTeacher := revokeCustomCmd.String("teacher", "", "The teacher's address.")
	revokeCustomAmount := revokeCustomCmd.String("amount", "", "The token amount, eg. 12.5.")
	revokeCustomReason := revokeCustomCmd.String("reason", "", "The revocation reason.")

	setCategoryCmd := flag.NewFlagSet("setcategory", flag.ExitOnError)
	setCategoryName := setCategoryCmd.String("name", "", "The category name.")
	setCategoryAmount := setCategoryCmd.String("amount", "", "The reward amount, eg. 25. Zero disables the category.")

	ctx := context.Background()

	switch args[1] {
	case "pending":
		return cli.listPending(ctx)

	case "approve":
		if err := approveCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *approveID == 0 {
			approveCmd.Usage()
			return errHelp
		}
		return cli.approve(ctx, *approveID)

	case "reject":
		if err := rejectCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *rejectID == 0 || *rejectReason == "" {
			rejectCmd.Usage()
			return errHelp
		}
		return cli.reject(ctx, *rejectID, *rejectReason)

	case "revoke":
		if err := revokeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *revokeID == 0 || *revokeReason == "" {
			revokeCmd.Usage()
			return errHelp
		}
		return cli.revoke(ctx, *revokeID, *revokeReason)

	case "issue":
		if err := issueCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *issueTeacher == "" || *issueCategory == "" {
			issueCmd.Usage()
			return errHelp
		}
		return cli.issue(ctx, *issueTeacher, *issueCategory)

	case "issuecustom":
		if err := issueCustomCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *issueCustomTeacher == "" || *issueCustomAmount == "" || *issueCustomDesc == "" {
			issueCustomCmd.Usage()
			return errHelp
		}
		amount, err := core.ParseAmount(*issueCustomAmount)
		if err != nil {
			return err
		}
		return cli.issueCustom(ctx, *issueCustomTeacher, amount, *issueCustomDesc)

	case "revokecustom":
		if err := revokeCustomCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *revokeCustomTeacher == "" || *revokeCustomAmount == "" || *revokeCustomReason == "" {
			revokeCustomCmd.Usage()
			return errHelp
		}
		amount, err := core.ParseAmount(*revokeCustomAmount)
		if err != nil {
			return err
		}
		return cli.revokeCustom(ctx, *revokeCustomTeacher, amount, *revokeCustomReason)

	case "setcategory":
		if err := setCategoryCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setCategoryName == "" || *setCategoryAmount == "" {
			setCategoryCmd.Usage()
			return errHelp
		}
		amount, err := core.ParseAmount(*setCategoryAmount)
		if err != nil {
			return err
		}
		return cli.setCategory(ctx, *setCategoryName, amount)

	default:
		cli.printUsage()
		return errHelp
	}
}

// connect establishes the wallet session before the first chain call.
func (cli *commandLine) connect(ctx context.Context) error {
	if cli.sessions.Current().Connected {
		return nil
	}
	_, err := cli.sessions.Connect(ctx)
	return err
}
