package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"marketplace/internal/config"
	"marketplace/internal/handler"
	"marketplace/internal/infra/db"
	infraRepo "marketplace/internal/infra/repository"
	"marketplace/internal/infra/uid"
	"marketplace/internal/invoice"
	"marketplace/internal/metrics"
	"marketplace/internal/notify"
	"marketplace/internal/server"
	"marketplace/internal/usecase"
	"marketplace/internal/validator"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg, logger)
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(gormDB); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	m := metrics.New()

	//realtime push。REDIS_ADDRがあればインスタンス間で配る
	hub := notify.NewHub(logger.Named("ws"), cfg.FEURL)
	defer hub.Close()

	var pub notify.Publisher = hub
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		pub = notify.NewRedisPublisher(rdb, cfg.RedisChannel)
		go func() {
			if err := notify.Relay(ctx, rdb, cfg.RedisChannel, hub, logger.Named("relay")); err != nil {
				logger.Error("redis relay stopped", zap.Error(err))
			}
		}()
	}

	//SMTP_HOSTが空ならメールは送らない
	var mailer notify.Mailer
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	dispatcher := notify.NewDispatcher(pub, mailer, logger.Named("notify"), m, cfg.MailWorkers)
	defer dispatcher.Close()

	//Repository（GORM実装）
	txm := infraRepo.NewTxManagerGorm(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addrRepo := infraRepo.NewAddressGormRepository(gormDB)

	//Usecase
	guard := usecase.NewGuard(cfg.AdminRole)
	renderer := invoice.NewRenderer(invoice.Company{
		Name:    cfg.CompanyName,
		Address: cfg.CompanyAddress,
		Email:   cfg.CompanyEmail,
	})

	orderUC := usecase.NewOrderUsecase(txm, guard, uid.New(), dispatcher, m)
	trackingUC := usecase.NewTrackingUsecase(txm, guard, dispatcher)
	invoiceUC := usecase.NewInvoiceUsecase(txm, guard, renderer)
	reviewUC := usecase.NewReviewUsecase(txm, guard, dispatcher)
	auditUC := usecase.NewAuditUsecase(txm, guard)
	addressUC := usecase.NewAddressUsecase(addrRepo, guard)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, validator.NewAuthValidator(userRepo), guard)

	//Handler / Server
	e := server.New(cfg, logger, m)
	server.RegisterRoutes(e, cfg, userRepo, m, server.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Address:  handler.NewAddressHandler(addressUC),
		Order:    handler.NewOrderHandler(orderUC, invoiceUC),
		Tracking: handler.NewTrackingHandler(trackingUC),
		Admin:    handler.NewAdminHandler(orderUC, reviewUC, auditUC, authUC),
		WS:       handler.NewWSHandler(hub),
	})

	addr := cfg.Port
	if !strings.HasPrefix(addr, ":") {
		addr = ":" + addr
	}
	return server.Run(ctx, e, addr, logger)
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.IsProd() {
		zc = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zc.Level = level
	return zc.Build()
}
