package main

import (
	"context"
	"fmt"

	"github.com/verdora/ordercore/internal/adapter/auth"
	"github.com/verdora/ordercore/internal/adapter/config"
	"github.com/verdora/ordercore/internal/adapter/gateway"
	"github.com/verdora/ordercore/internal/adapter/handler/http"
	"github.com/verdora/ordercore/internal/adapter/logger"
	"github.com/verdora/ordercore/internal/adapter/metrics"
	"github.com/verdora/ordercore/internal/adapter/storage"
	"github.com/verdora/ordercore/internal/adapter/storage/repository"
	"github.com/verdora/ordercore/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log, err := logger.NewLogger(conf.App)
	if err != nil {
		fmt.Printf("error creating log: %s", err)
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	if conf.Gateway.KeyID == "" || conf.Gateway.KeySecret == "" {
		log.Warn("payment gateway credentials are not set, gateway endpoints will fail")
	}

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("repository creating error", zap.Error(err))
		return
	}
	tokenService, err := auth.New(conf.Token)
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}

	gatewayClient, err := gateway.NewClient(conf.Gateway, log.Named("Gateway"))
	if err != nil {
		log.Error("gateway client creating error", zap.Error(err))
		return
	}

	svc, err := service.NewService(repo, gatewayClient, log.Named("Service"))
	if err != nil {
		log.Error("order service creating error", zap.Error(err))
		return
	}

	m := metrics.New()

	orderHandler, err := http.NewOrderHandler(svc, m, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	paymentHandler, err := http.NewPaymentHandler(svc, m, log.Named("Payment handler"))
	if err != nil {
		log.Error("payment handler creating error", zap.Error(err))
		return
	}
	adminHandler, err := http.NewAdminHandler(svc, m, log.Named("Admin handler"))
	if err != nil {
		log.Error("admin handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, tokenService, m, orderHandler, paymentHandler, adminHandler)
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
