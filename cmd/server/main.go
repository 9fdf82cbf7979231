// Command server wires the screening pipeline and exposes it over HTTP.
// Collaborators are constructed once here and passed down by reference;
// business logic lives in the internal packages.
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"vaxscreen/internal/advisor"
	"vaxscreen/internal/curation"
	"vaxscreen/internal/curation/handler"
	curationmetrics "vaxscreen/internal/curation/metrics"
	"vaxscreen/internal/decision"
	decisionmetrics "vaxscreen/internal/decision/metrics"
	"vaxscreen/internal/platform/config"
	"vaxscreen/internal/platform/httpserver"
	"vaxscreen/internal/platform/logger"
	platformmetrics "vaxscreen/internal/platform/metrics"
	"vaxscreen/internal/platform/otel"
	"vaxscreen/internal/platform/redis"
	"vaxscreen/internal/screening"
	"vaxscreen/internal/sequence"
	"vaxscreen/internal/storage"
)

func main() {
	if err := run(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Error("config load failed", "error", err)
		return err
	}

	log := logger.New(cfg.Server.LogLevel)

	otelShutdown, err := otel.Setup(ctx, "vaxscreen")
	if err != nil {
		log.Error("otel setup failed", "error", err)
		return err
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	// Persistence: Postgres when a DSN is configured, in-memory otherwise.
	var store curation.Store
	if cfg.Database.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN)
		if err != nil {
			log.Error("postgres connect failed", "error", err)
			return err
		}
		defer pool.Close()

		pg, err := storage.NewPostgres(pool)
		if err != nil {
			log.Error("postgres store init failed", "error", err)
			return err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("schema migration failed", "error", err)
			return err
		}
		store = pg
		log.Info("using postgres store")
	} else {
		store = storage.NewMemory()
		log.Info("using in-memory store")
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		return err
	}
	var cacheBackend *goredis.Client
	if redisClient != nil {
		defer redisClient.Close()
		cacheBackend = redisClient.Client
		log.Info("protein record cache enabled", "ttl", cfg.Redis.CacheTTL)
	}

	uniprot := sequence.NewClient(sequence.ClientConfig{
		BaseURL:    cfg.UniProt.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.UniProt.Timeout},
	})
	fetcher := sequence.NewCache(uniprot, cacheBackend, cfg.Redis.CacheTTL, log)
	source, err := sequence.NewSource(fetcher)
	if err != nil {
		log.Error("sequence source init failed", "error", err)
		return err
	}

	adv := advisor.NewClient(advisor.Config{
		Endpoint:   cfg.Advisor.Endpoint,
		Model:      cfg.Advisor.Model,
		APIKey:     cfg.Advisor.APIKey,
		MaxTokens:  cfg.Advisor.MaxTokens,
		HTTPClient: &http.Client{Timeout: cfg.Advisor.Timeout},
	})
	if cfg.Advisor.APIKey == "" {
		log.Warn("advisor API key not configured, all decisions will use the fallback path")
	}

	fusion := decision.NewService(adv,
		decision.WithLogger(log),
		decision.WithMetrics(decisionmetrics.New()),
	)

	screener, err := screening.NewScreener(
		screening.OrganismClass(cfg.Screening.Organism),
		screening.OrganismCategory(cfg.Screening.Category),
		screening.WithLogger(log),
	)
	if err != nil {
		log.Error("screener init failed", "error", err)
		return err
	}

	svc, err := curation.NewService(source, screener, fusion, store,
		curation.WithLogger(log),
		curation.WithMetrics(curationmetrics.New()),
	)
	if err != nil {
		log.Error("curation service init failed", "error", err)
		return err
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.Recoverer)
	router.Use(platformmetrics.NewHTTP().Middleware)

	router.Get("/healthz", healthz(redisClient))
	router.Handle("/metrics", promhttp.Handler())
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Server.Addr, router)
	if err := httpserver.Run(ctx, srv, log, cfg.Server.ShutdownTimeout); err != nil {
		log.Error("server error", "error", err)
		return err
	}
	return nil
}

func healthz(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
