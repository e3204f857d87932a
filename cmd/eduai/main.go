package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"eduai/internal/app"
	"eduai/internal/config"
	"eduai/internal/ratelimit"
	"eduai/internal/server"
	"eduai/internal/util"
	"eduai/pkg/mailer"
	"eduai/pkg/storage"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}
	generationTimeout, err := config.ParseGenerationTimeout(cfg.GenerationTimeout)
	if err != nil {
		log.Fatalf("failed to parse generation timeout: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioPublicURL, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object storage: %v", err)
		}
	} else {
		slog.Warn("minio not configured, office export disabled")
	}

	var mail mailer.Mailer = mailer.Noop{}
	if cfg.SendgridAPIKey != "" {
		mail = mailer.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFromEmail)
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:       cfg.DatabaseURL,
		RedisAddr:         cfg.RedisAddr,
		RedisPassword:     cfg.RedisPassword,
		SessionTTL:        sessionTTL,
		JWTSecret:         cfg.JWTSecret,
		GeminiAPIKey:      cfg.GeminiAPIKey,
		GenerationModel:   cfg.GenerationModel,
		GenerationTimeout: generationTimeout,
		ConfirmBaseURL:    cfg.ConfirmBaseURL,
		Objects:           objects,
		Mailer:            mail,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var registerLimiter, loginLimiter, generateLimiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		newLimiter := func(name string, limit, fallback int) *ratelimit.FixedWindowLimiter {
			if limit <= 0 {
				limit = fallback
			}
			limiter, err := ratelimit.New(client, name, limit, time.Minute)
			if err != nil {
				log.Fatalf("failed to init %s limiter: %v", name, err)
			}
			return limiter
		}
		registerLimiter = newLimiter("register", cfg.RegisterRateLimitPerMinute, 5)
		loginLimiter = newLimiter("login", cfg.LoginRateLimitPerMinute, 10)
		generateLimiter = newLimiter("generate", cfg.GenerateRateLimitPerMinute, 20)
	} else {
		slog.Warn("redis not configured, rate limiting disabled")
	}

	httpServer := server.New(server.Config{
		App:             appCore,
		RegisterLimiter: registerLimiter,
		LoginLimiter:    loginLimiter,
		GenerateLimiter: generateLimiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpServer.Router(),
		ReadTimeout: 15 * time.Second,
		// generation calls can hold a request for up to the model timeout
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("eduai server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
