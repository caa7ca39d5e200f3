package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/socialpay/socialpay-api/internal/config"
	"github.com/socialpay/socialpay-api/internal/domain/admin"
	"github.com/socialpay/socialpay-api/internal/domain/audit"
	"github.com/socialpay/socialpay-api/internal/domain/auth"
	"github.com/socialpay/socialpay-api/internal/domain/payment"
	"github.com/socialpay/socialpay-api/internal/domain/referral"
	"github.com/socialpay/socialpay-api/internal/domain/task"
	"github.com/socialpay/socialpay-api/internal/domain/transfer"
	"github.com/socialpay/socialpay-api/internal/domain/user"
	"github.com/socialpay/socialpay-api/internal/domain/wallet"
	"github.com/socialpay/socialpay-api/internal/domain/withdrawal"
	"github.com/socialpay/socialpay-api/internal/middleware"
	"github.com/socialpay/socialpay-api/internal/pkg/database"
	"github.com/socialpay/socialpay-api/internal/pkg/imaging"
	"github.com/socialpay/socialpay-api/internal/pkg/jwt"
	"github.com/socialpay/socialpay-api/internal/pkg/storage"
)

func serve(cfg *config.Config) error {
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting SocialPay API")

	policy, err := config.LoadPolicy(cfg.LedgerPolicyFile)
	if err != nil {
		return fmt.Errorf("load ledger policy: %w", err)
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer database.CloseRedis(redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	evidence, err := storage.New(ctx, storage.Config{
		S3Endpoint:  cfg.S3Endpoint,
		S3Region:    cfg.S3Region,
		S3AccessKey: cfg.S3AccessKey,
		S3SecretKey: cfg.S3SecretKey,
		S3Bucket:    cfg.S3Bucket,
		LocalPath:   cfg.LocalStoragePath,
		LocalURL:    cfg.LocalStorageURL,
	})
	if err != nil {
		return fmt.Errorf("init evidence storage: %w", err)
	}

	var attempts transfer.AttemptTracker
	if redisClient != nil {
		attempts = transfer.NewRedisAttempts(redisClient, policy.PinMaxAttempts, policy.PinLockout)
	} else {
		log.Warn().Msg("Redis disabled, PIN lockout is tracked per process")
		attempts = transfer.NewMemoryAttempts(policy.PinMaxAttempts, policy.PinLockout)
	}

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	referralRepo := referral.NewRepository(db)
	auditRepo := audit.NewRepository(db)

	// ---------- Services ----------
	referralSvc := referral.NewService(referralRepo, walletRepo, policy)
	taskSvc := task.NewService(db, task.NewRepository(db), userRepo, walletRepo, referralSvc, evidence,
		imaging.NewProcessor(imaging.DefaultConfig()))
	limitRepo := transfer.NewLimitRepository(db)
	transferSvc := transfer.NewService(db, transfer.NewPinRepository(db), limitRepo,
		walletRepo, userRepo, auditRepo, attempts, policy)
	withdrawalSvc := withdrawal.NewService(db, withdrawal.NewRepository(db), walletRepo, userRepo, policy)
	adminSvc := admin.NewService(db, admin.NewRepository(db), userRepo, walletRepo, auditRepo)

	h := handlers{
		auth:       auth.NewHandler(auth.NewService(db, userRepo, walletRepo, referralRepo, jwtService)),
		user:       user.NewHandler(user.NewService(userRepo)),
		wallet:     wallet.NewHandler(wallet.NewService(walletRepo)),
		referral:   referral.NewHandler(referralSvc),
		payment:    payment.NewHandler(payment.NewService(payment.NewRepository(db))),
		task:       task.NewHandler(taskSvc),
		transfer:   transfer.NewHandler(transferSvc),
		withdrawal: withdrawal.NewHandler(withdrawalSvc),
		admin:      admin.NewHandler(adminSvc),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go pruneLimiter(ctx, limiter, 5*time.Minute)
	go transfer.NewLimitCleanupJob(limitRepo, 7).Start(ctx, 6*time.Hour)

	opts := routerOptions{
		jwt:            jwtService,
		limiter:        limiter,
		allowedOrigins: cfg.AllowedOrigins,
	}
	if cfg.S3Bucket == "" {
		opts.evidenceDir = cfg.LocalStoragePath
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(h, opts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("Server exited properly")
	return nil
}

func pruneLimiter(ctx context.Context, limiter *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Prune()
		}
	}
}
