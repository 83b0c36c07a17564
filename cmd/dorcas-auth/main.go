package main

// @title           Dorcas Auth API
// @version         1.0
// @description     Host authentication backed by the Dorcas identity service.

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/dorcas-auth/internal/adapters/driven/auth"
	"github.com/custodia-labs/dorcas-auth/internal/adapters/driven/dorcas"
	"github.com/custodia-labs/dorcas-auth/internal/adapters/driven/memory"
	"github.com/custodia-labs/dorcas-auth/internal/adapters/driven/metrics"
	"github.com/custodia-labs/dorcas-auth/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/dorcas-auth/internal/adapters/driven/redis"
	"github.com/custodia-labs/dorcas-auth/internal/adapters/driving/http"
	"github.com/custodia-labs/dorcas-auth/internal/core/domain"
	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
	"github.com/custodia-labs/dorcas-auth/internal/core/services"
	_ "github.com/custodia-labs/dorcas-auth/internal/docs"
)

var version = "dev"

func main() {
	log.Printf("dorcas-auth %s starting", version)

	// Configuration from environment
	cookieSecret := getEnv("COOKIE_SECRET", "development-secret-change-in-production")
	port := getEnvInt("PORT", 8080)
	dorcasURL := getEnv("DORCAS_API_URL", "https://api.dorcas.io")
	clientID := getEnv("DORCAS_CLIENT_ID", "")
	clientSecret := getEnv("DORCAS_CLIENT_SECRET", "")
	databaseURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	namespace := getEnv("CACHE_NAMESPACE", domain.DefaultCacheNamespace)
	sealingKey := getEnv("TOKEN_SEALING_KEY", "")
	secureCookies := getEnvBool("SECURE_COOKIES", false)
	attachCachedToken := getEnvBool("ATTACH_CACHED_TOKEN", false)
	exposeToken := getEnvBool("EXPOSE_TOKEN", false)
	timeout := getEnvDuration("DORCAS_TIMEOUT", 30*time.Second)
	allowedOrigins := getEnv("CORS_ALLOWED_ORIGINS", "")

	if clientID == "" || clientSecret == "" {
		log.Println("Warning: DORCAS_CLIENT_ID/DORCAS_CLIENT_SECRET not set, logins will be rejected")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.Default()

	// Token cache backend: Redis, then PostgreSQL, then in-process memory
	var tokenCache driven.TokenCache
	var cachePinger http.Pinger
	switch {
	case redisURL != "":
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		tokenCache = redisadapter.NewTokenCache(redisClient, namespace)
		cachePinger = redisPinger{redisClient}
		log.Println("Using Redis token cache")

	case databaseURL != "":
		log.Println("Connecting to PostgreSQL...")
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(databaseURL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}

		var sealer *postgres.TokenSealer
		if sealingKey != "" {
			key, err := hex.DecodeString(sealingKey)
			if err != nil {
				log.Fatalf("TOKEN_SEALING_KEY must be hex: %v", err)
			}
			if sealer, err = postgres.NewTokenSealer(key); err != nil {
				log.Fatalf("Failed to create token sealer: %v", err)
			}
		}

		pgCache := postgres.NewTokenCache(db, namespace, sealer)
		go purgeExpiredTokens(ctx, pgCache, time.Hour)

		tokenCache = pgCache
		cachePinger = db
		log.Printf("Using PostgreSQL token cache (sealed=%t)", sealer != nil)

	default:
		tokenCache = memory.NewTokenCache(namespace, time.Minute)
		log.Println("Using in-memory token cache")
	}

	// Dorcas API
	dorcasCfg := dorcas.DefaultConfig(dorcasURL)
	dorcasCfg.ClientID = clientID
	dorcasCfg.ClientSecret = clientSecret
	dorcasCfg.Timeout = timeout
	dorcasCfg.UserAgent = "dorcas-auth/" + version
	client := dorcas.NewClient(dorcasCfg)
	exchanger := dorcas.NewExchanger(client, dorcasCfg)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	authMetrics, err := metrics.NewPrometheus(registry)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	authAdapter := auth.NewAdapter(cookieSecret)
	cookies := http.NewCookieQueue(authAdapter, secureCookies, logger)

	users := services.NewUserProvider(services.UserProviderConfig{
		Client:            client,
		Exchanger:         exchanger,
		Cache:             tokenCache,
		Cookies:           cookies,
		Verifier:          authAdapter,
		Metrics:           authMetrics,
		Logger:            logger,
		AttachCachedToken: attachCachedToken,
	})

	serverCfg := http.DefaultConfig()
	serverCfg.Port = port
	serverCfg.Version = version
	serverCfg.ExposeToken = exposeToken
	if allowedOrigins != "" {
		serverCfg.AllowedOrigins = strings.Split(allowedOrigins, ",")
	}

	server := http.NewServer(serverCfg, http.Deps{
		Users:   users,
		Cookies: cookies,
		Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Cache:   cachePinger,
		Logger:  logger,
	})

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// redisPinger adapts a Redis client to the readiness check
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func purgeExpiredTokens(ctx context.Context, cache *postgres.TokenCache, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cache.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("token purge failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Debug("purged expired tokens", "count", n)
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
