package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	echoapi "github.com/edutoken/dapp/apps/api/echo"
	dummycontract "github.com/edutoken/dapp/contract/dummy"
	ethcontract "github.com/edutoken/dapp/contract/ethereum"
	"github.com/edutoken/dapp/core"
	"github.com/edutoken/dapp/core/chain"
	"github.com/edutoken/dapp/core/dapp"
	"github.com/edutoken/dapp/core/review"
	"github.com/edutoken/dapp/core/role"
	"github.com/edutoken/dapp/core/submission"
	logsvc "github.com/edutoken/dapp/services/logger"
	notifiersvc "github.com/edutoken/dapp/services/notifier"
	walletks "github.com/edutoken/dapp/wallet/keystore"
)

type authority interface {
	role.OwnerReader
	submission.Reader
	review.Authority
}

func main() {
	debug := core.Conf.GetBool("debug")

	// set up logger
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	var logger core.Logger
	if debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		rollbar := logsvc.NewRollbarLogger(std)
		rollbar.Enable(true)
		logger = rollbar
	}

	logger.Info(fmt.Sprintf("%s API initializing", core.Conf.GetString("appName")))
	defer logger.Info("Application stopped")

	// set up wallet + contract
	network := core.Network()
	wallet := walletks.NewProvider(
		"keystore",
		core.Conf.GetString("keystoreDir"),
		core.Conf.GetString("keystorePassphrase"),
		network,
	)
	defer wallet.Close()

	var auth authority
	if debug {
		// DEV mode runs against an in-memory contract
		auth = dummycontract.NewAuthority(common.HexToAddress(core.Conf.GetString("devOwnerAddress")))
	} else {
		ethAuth, err := ethcontract.Dial(context.Background(), wallet, logger)
		if err != nil {
			logger.Fatal(fmt.Sprintf("binding contract: %v", err), err)
		}
		auth = ethAuth
	}

	// set up services
	sessions := chain.NewService(network, logger, wallet)
	roles := role.NewResolver(auth)
	store := submission.NewStore(auth, logger)
	notifications := notifiersvc.NewRingNotifier(0)
	orc := dapp.NewOrchestrator(sessions, roles, store, notifications, logger)
	reviewSvc := review.NewService(sessions, roles, store, auth, notifications, logger)

	// reconnect without a prompt when the wallet was already authorized
	if _, err := orc.Resume(context.Background()); err != nil {
		logger.Warn(fmt.Sprintf("session resume failed: %v", err), err)
	}

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       core.Conf.GetString("serverAddress"),
			Logger:        logger,
			Orchestrator:  orc,
			ReviewSvc:     reviewSvc,
			Store:         store,
			Notifications: notifications,
		},
	)
	go app.Start()

	select {
	case err := <-app.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-app.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: start shutdown...", sig))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := app.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("graceful shutdown failed: %v", err), err)
		}
	}
}
