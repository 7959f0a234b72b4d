package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wonny/tradeblocks/internal/analytics"
	"github.com/wonny/tradeblocks/internal/external/naver"
	"github.com/wonny/tradeblocks/pkg/config"
	"github.com/wonny/tradeblocks/pkg/database"
	"github.com/wonny/tradeblocks/pkg/httputil"
	"github.com/wonny/tradeblocks/pkg/logger"
	"github.com/wonny/tradeblocks/pkg/redis"
)

// runtimeEnv holds the wired dependencies of one command run
type runtimeEnv struct {
	cfg  *config.Config
	log  *logger.Logger
	db   *database.DB // nil in file mode
	repo *analytics.Repository
	svc  *analytics.Service
}

// bootstrap loads config and wires the analytics service.
// needDB=false tolerates a missing DATABASE_URL (file input mode).
func bootstrap(ctx context.Context, needDB bool) (*runtimeEnv, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// stdout 은 결과 출력 전용
	log := logger.NewWithWriter(cfg, os.Stderr)

	env := &runtimeEnv{cfg: cfg, log: log}
	closers := []func(){}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := analytics.Deps{}

	db, err := database.New(ctx, cfg)
	switch {
	case err == nil:
		env.db = db
		env.repo = analytics.NewRepository(db.Pool)
		deps.Blocks = env.repo
		deps.Snapshots = env.repo
		closers = append(closers, db.Close)
	case errors.Is(err, database.ErrNotConfigured) && !needDB:
		log.Debug("DATABASE_URL not set, running in file mode")
	default:
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		// 캐시는 선택 사항
		log.WithError(err).Warn("Redis unavailable, snapshot cache disabled")
		rc = redis.Disabled()
	}
	closers = append(closers, func() { _ = rc.Close() })
	deps.Cache = redis.NewCache(rc, "tradeblocks")

	httpClient := httputil.New(log).WithRateLimit(cfg.Benchmark.RateLimit)
	deps.Benchmark = naver.NewClient(httpClient, log, cfg.Benchmark.BaseURL)

	env.svc = analytics.NewService(cfg, log, deps)
	return env, cleanup, nil
}
