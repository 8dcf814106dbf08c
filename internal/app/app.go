package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/domain/activity"
	"github.com/riskibarqy/prediction-league/internal/domain/championship"
	"github.com/riskibarqy/prediction-league/internal/domain/jobscheduler"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/reward"
	"github.com/riskibarqy/prediction-league/internal/domain/scoring"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/account/jwtauth"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/jobqueue"
	cacherepo "github.com/riskibarqy/prediction-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/prediction-league/internal/interfaces/httpapi"
	"github.com/riskibarqy/prediction-league/internal/platform/cache"
	idgen "github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/metrics"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type repositories struct {
	championships championship.Repository
	matches       match.Repository
	predictions   prediction.Repository
	ledger        reward.Ledger
	activity      activity.Repository
	dispatches    jobscheduler.DispatchLedger
	close         func() error
}

// NewHTTPServer wires storage, services and the router. The returned closer
// releases the storage pool.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := newRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
		repos.championships = cacherepo.NewChampionshipRepository(repos.championships, store)
	}

	verifier, err := newTokenVerifier(cfg, logger)
	if err != nil {
		_ = repos.close()
		return nil, nil, err
	}

	recorder := metrics.New()
	ids := idgen.NewUUIDGenerator()

	outbox := usecase.NewEventOutboxService(
		repos.matches,
		newJobQueue(cfg, logger),
		repos.dispatches,
		usecase.EventOutboxConfig{
			WebhookPath:    cfg.EventWebhookPath,
			UpcomingBucket: cfg.EventUpcomingBucket,
			WorkerCount:    cfg.EventWorkerCount,
		},
		logger.Named("outbox"),
	)
	leaderboardSvc := usecase.NewLeaderboardService(
		repos.championships,
		repos.matches,
		repos.predictions,
		scoring.NewScorer(nil),
		store,
		recorder,
		logger.Named("leaderboard"),
	)
	championshipSvc := usecase.NewChampionshipService(repos.championships, ids, leaderboardSvc, logger.Named("championship"))
	matchSvc := usecase.NewMatchService(repos.championships, repos.matches, ids, leaderboardSvc, outbox, recorder, logger.Named("match"))
	predictionSvc := usecase.NewPredictionService(repos.championships, repos.matches, repos.predictions, recorder, logger.Named("prediction"))
	rewardSvc := usecase.NewRewardService(
		repos.ledger,
		repos.activity,
		repos.predictions,
		leaderboardSvc,
		cfg.RewardLocation,
		recorder,
		logger.Named("reward"),
	)

	handler := httpapi.NewHandler(championshipSvc, matchSvc, predictionSvc, leaderboardSvc, rewardSvc, outbox, logger)
	router := httpapi.NewRouter(handler, verifier, logger, httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		InternalJobToken:   cfg.InternalJobToken,
		ClaimLimiter:       httpapi.NewUserRateLimiter(cfg.ClaimRateLimitPerMinute, cfg.ClaimRateLimitBurst),
		Metrics:            recorder,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return server, repos.close, nil
}

func newRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (repositories, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return repositories{}, err
		}
		logger.Info("storage ready", "driver", cfg.StorageDriver, "db_name", dbNameFromURL(cfg.DBURL))
		return repositories{
			championships: postgres.NewChampionshipRepository(db),
			matches:       postgres.NewMatchRepository(db),
			predictions:   postgres.NewPredictionRepository(db),
			ledger:        postgres.NewRewardLedger(db),
			activity:      postgres.NewActivityRepository(db),
			dispatches:    postgres.NewJobDispatchRepository(db),
			close:         db.Close,
		}, nil
	default:
		championships := memory.NewChampionshipRepository()
		matches := memory.NewMatchRepository()
		if cfg.AppEnv == config.EnvDev {
			if err := memory.SeedDemo(ctx, championships, matches, time.Now()); err != nil {
				return repositories{}, err
			}
			logger.Info("demo championship seeded", "invite_code", memory.DemoInviteCode)
		}
		logger.Info("storage ready", "driver", config.StorageMemory)
		return repositories{
			championships: championships,
			matches:       matches,
			predictions:   memory.NewPredictionRepository(matches),
			ledger:        memory.NewRewardLedger(),
			activity:      memory.NewActivityRepository(),
			dispatches:    memory.NewJobDispatchRepository(),
			close:         func() error { return nil },
		}, nil
	}
}

func newTokenVerifier(cfg config.Config, logger *logging.Logger) (httpapi.TokenVerifier, error) {
	if cfg.AuthProvider == config.AuthJWT {
		verifier, err := jwtauth.NewVerifier(jwtauth.Config{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
			Leeway:   cfg.JWTLeeway,
		})
		if err != nil {
			return nil, fmt.Errorf("build jwt verifier: %w", err)
		}
		logger.Info("auth provider ready", "provider", config.AuthJWT)
		return verifier, nil
	}

	logger.Info("auth provider ready", "provider", config.AuthAnubis, "base_url", cfg.AnubisBaseURL)
	return anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		anubis.Config{
			BaseURL:        cfg.AnubisBaseURL,
			IntrospectPath: cfg.AnubisIntrospectPath,
			AdminKey:       cfg.AnubisAdminKey,
			CacheTTL:       cfg.AnubisCacheTTL,
			CircuitBreaker: cfg.AnubisCircuit,
		},
		logger,
	), nil
}

func newJobQueue(cfg config.Config, logger *logging.Logger) usecase.JobQueue {
	if !cfg.QStashEnabled {
		logger.Info("qstash disabled", "reason", "QSTASH_ENABLED=false")
		return usecase.NewNoopJobQueue()
	}

	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		Timeout:          cfg.QStashTimeout,
		CircuitBreaker:   cfg.QStashCircuit,
	}, logger)
}
