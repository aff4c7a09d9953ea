package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/term"

	dummycontract "github.com/edutoken/dapp/contract/dummy"
	ethcontract "github.com/edutoken/dapp/contract/ethereum"
	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
	"github.com/edutoken/dapp/core/review"
	"github.com/edutoken/dapp/core/role"
	"github.com/edutoken/dapp/core/submission"
	logsvc "github.com/edutoken/dapp/services/logger"
	notifiersvc "github.com/edutoken/dapp/services/notifier"
	walletks "github.com/edutoken/dapp/wallet/keystore"
)

var (
	logger *log.Logger

	readPassphraseFunc = term.ReadPassword // mockable
)

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up wallet
	passphrase := core.Conf.GetString("keystorePassphrase")
	if passphrase == "" {
		fmt.Print("Enter keystore passphrase:")
		pwd, err := readPassphraseFunc(syscall.Stdin)
		fmt.Println()
		errAndDie(err)
		passphrase = string(pwd)
	}

	network := core.Network()
	wallet := walletks.NewProvider("keystore", core.Conf.GetString("keystoreDir"), passphrase, network)
	defer wallet.Close()

	coreLogger := logsvc.NewConsoleLogger(logger)

	type contractAuthority interface {
		role.OwnerReader
		submission.Reader
		review.Authority
	}
	var auth contractAuthority
	if core.Conf.GetBool("debug") {
		auth = dummycontract.NewAuthority(common.HexToAddress(core.Conf.GetString("devOwnerAddress")))
	} else {
		ethAuth, err := ethcontract.Dial(context.Background(), wallet, coreLogger)
		errAndDie(err)
		auth = ethAuth
	}

	sessions := chain.NewService(network, coreLogger, wallet)
	store := submission.NewStore(auth, coreLogger)
	reviewSvc := review.NewService(
		sessions,
		role.NewResolver(auth),
		store,
		auth,
		notifiersvc.NewConsoleNotifier(logger),
		coreLogger,
	)

	// start CLI
	cli := commandLine{
		sessions:  sessions,
		reviewSvc: reviewSvc,
		store:     store,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
