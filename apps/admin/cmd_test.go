package main

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	dummycontract "github.com/edutoken/dapp/contract/dummy"
	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
	"github.com/edutoken/dapp/core/review"
	"github.com/edutoken/dapp/core/role"
	"github.com/edutoken/dapp/core/submission"
	dummynotifier "github.com/edutoken/dapp/services/notifier/dummy"
)

var (
	ownerAddr   = common.HexToAddress("0x1AF1C89DCF2fC4aDcC4Ba174289aa6E6cd1710cD")
	teacherAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

func setup(t *testing.T) (*commandLine, *dummycontract.Authority) {
	t.Helper()

	provider := &chain.FakeProvider{
		Present:  true,
		Accounts: []common.Address{ownerAddr},
		Chain:    core.Conf.GetString("chainId"),
	}
	sessions := chain.NewService(core.Network(), core.NopLogger{}, provider)
	authority := dummycontract.NewAuthority(ownerAddr)
	store := submission.NewStore(authority, core.NopLogger{})
	svc := review.NewService(sessions, role.NewResolver(authority), store, authority, dummynotifier.NewService(), core.NopLogger{})

	cli := &commandLine{
		sessions:  sessions,
		reviewSvc: svc,
		store:     store,
	}
	return cli, authority
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_help(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "approve: no id", args: []string{"approve"}, wantErr: errHelp},
		{name: "reject: no reason", args: []string{"reject", "-id", "1"}, wantErr: errHelp},
		{name: "revoke: no id", args: []string{"revoke", "-reason", "fraud"}, wantErr: errHelp},
		{name: "issue: no category", args: []string{"issue", "-teacher", teacherAddr.Hex()}, wantErr: errHelp},
		{name: "issuecustom: no amount", args: []string{"issuecustom", "-teacher", teacherAddr.Hex(), "-description", "d"}, wantErr: errHelp},
		{name: "setcategory: no amount", args: []string{"setcategory", "-name", "Workshop"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_review(t *testing.T) {
	cli, authority := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := authority.SubmitAchievement(ctx, teacherAddr, "Workshop", "d", "https://example.org"); err != nil {
			t.Fatalf("seed submit failed: %v", err)
		}
	}

	tests := []cliTest{
		{name: "pending", args: []string{"pending"}},
		{name: "approve", args: []string{"approve", "-id", "1"}},
		{name: "reject", args: []string{"reject", "-id", "2", "-reason", "no proof"}},
		{name: "revoke approved", args: []string{"revoke", "-id", "1", "-reason", "fraud"}},
		{name: "setcategory", args: []string{"setcategory", "-name", "Hackathon", "-amount", "30"}},
		{name: "issue", args: []string{"issue", "-teacher", teacherAddr.Hex(), "-category", "Hackathon"}},
		{name: "issuecustom", args: []string{"issuecustom", "-teacher", teacherAddr.Hex(), "-amount", "5", "-description", "extra"}},
		{name: "revokecustom", args: []string{"revokecustom", "-teacher", teacherAddr.Hex(), "-amount", "5", "-reason", "oops"}},
		{name: "bad amount", args: []string{"setcategory", "-name", "Hackathon", "-amount", "lol"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.name == "bad amount" {
				if err == nil {
					t.Error("cli.run() accepted a malformed amount")
				}
				return
			}
			if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	sub, err := authority.GetSubmission(ctx, 1)
	if err != nil {
		t.Fatalf("GetSubmission() failed: %v", err)
	}
	if sub.Status != submission.StatusRevoked {
		t.Errorf("submission 1 status = %v, want Revoked", sub.Status)
	}
	sub, err = authority.GetSubmission(ctx, 2)
	if err != nil {
		t.Fatalf("GetSubmission() failed: %v", err)
	}
	if sub.Status != submission.StatusRejected {
		t.Errorf("submission 2 status = %v, want Rejected", sub.Status)
	}

	bal, err := authority.BalanceOf(ctx, teacherAddr)
	if err != nil {
		t.Fatalf("BalanceOf() failed: %v", err)
	}
	if bal.String() != "30.00" {
		t.Errorf("teacher balance = %s, want 30.00", bal.String())
	}
}
