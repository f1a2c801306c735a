package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/openbilateral/bilateral/params"
	"github.com/openbilateral/bilateral/pkg/api"
	"github.com/openbilateral/bilateral/pkg/exchange"
	"github.com/openbilateral/bilateral/pkg/exchange/store"
	"github.com/openbilateral/bilateral/pkg/host"
	"github.com/openbilateral/bilateral/pkg/storage"
	"github.com/openbilateral/bilateral/pkg/util"
)

func main() {
	cfg := params.LoadFromEnv("")

	logger, err := util.NewLogger(cfg.Node.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	kv, err := storage.NewPebbleKV(cfg.Node.DBPath)
	if err != nil {
		sugar.Fatalw("storage_open_failed", "path", cfg.Node.DBPath, "err", err)
	}
	defer kv.Close()

	if !common.IsHexAddress(cfg.Contract.Address) {
		sugar.Fatalw("invalid_contract_address", "address", cfg.Contract.Address)
	}
	contractAddr := common.HexToAddress(cfg.Contract.Address)

	// The dev node has no real metadata module; scopes live in memory.
	scopes := host.NewRegistry()
	engine := exchange.New(store.New(kv), scopes, contractAddr, sugar)

	// Bootstrap: instantiate on first start when an admin is configured.
	if _, err := engine.GetContractInfo(); errors.Is(err, storage.ErrNotFound) {
		if cfg.Contract.Admin == "" {
			sugar.Info("contract not instantiated; POST /api/v1/contract to instantiate")
		} else if !common.IsHexAddress(cfg.Contract.Admin) {
			sugar.Fatalw("invalid_admin_address", "address", cfg.Contract.Admin)
		} else {
			_, err := engine.Instantiate(
				exchange.MsgInfo{Sender: common.HexToAddress(cfg.Contract.Admin)},
				exchange.InstantiateMsg{
					BindName:     cfg.Contract.BindName,
					ContractName: cfg.Contract.ContractName,
					AskFee:       cfg.Contract.AskFee,
					BidFee:       cfg.Contract.BidFee,
				},
			)
			if err != nil {
				sugar.Fatalw("instantiate_failed", "err", err)
			}
		}
	} else if err != nil {
		sugar.Fatalw("contract_info_load_failed", "err", err)
	}

	srv := api.NewServer(engine, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Node.ListenAddr) }()

	select {
	case err := <-errCh:
		sugar.Fatalw("api_server_failed", "err", err)
	case <-ctx.Done():
		sugar.Info("shutting down")
	}
}
