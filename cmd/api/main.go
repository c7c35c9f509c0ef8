package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/domain/pricing"
	"storefront/internal/handler"
	"storefront/internal/infra/db"
	"storefront/internal/infra/refgen"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/infra/session"
	"storefront/internal/infra/storage"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	repo "storefront/internal/repository"
	"storefront/internal/server"
	"storefront/internal/usecase"
	"storefront/internal/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//設定（.envは無くてもよい）
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		File:  cfg.App.LogFile,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	//カート置き場（Redisが無ければプロセス内）
	var carts repo.CartStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		carts = session.NewRedisCartStore(rdb, cfg.Session.TTL)
		logger.Info("cart store: redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		carts = session.NewMemoryCartStore()
		logger.Warn("cart store: memory (carts are lost on restart)")
	}

	//メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	shipping := pricing.NewShippingPolicy(cfg.Shop.ShippingFee, cfg.Shop.FreeShippingOver)
	formValidator := validator.NewFormValidator()
	images := storage.NewLocalImageStore(cfg.Shop.StaticDir)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo, images, formValidator)
	cartUC := usecase.NewCartUsecase(carts, productRepo, shipping)
	checkoutUC := usecase.NewCheckoutUsecase(
		txManager, carts, productRepo,
		refgen.UUIDReferenceGenerator{},
		formValidator,
		usecase.CheckoutConfig{Shipping: shipping, AllowBackorder: cfg.Shop.AllowBackorder},
		m,
		logger.Named("checkout"),
	)
	adminUC := usecase.NewAdminUsecase(txManager, shipping)

	//Handler生成
	e := server.New(server.Options{
		Config:      cfg,
		Logger:      logger.Named("http"),
		Metrics:     m,
		Gatherer:    reg,
		HealthCheck: sqlDB.PingContext,
	}, server.Handlers{
		Products: handler.NewProductHandler(productUC),
		Cart:     handler.NewCartHandler(cartUC),
		Checkout: handler.NewCheckoutHandler(checkoutUC),
		Admin:    handler.NewAdminHandler(productUC, adminUC, cfg.Shop.MaxUploadBytes),
	})

	//Server起動（SIGINT/SIGTERMで停止）
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Start(ctx, e, cfg.App.Addr, logger)
}
