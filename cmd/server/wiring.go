package main

import (
	"context"
	"fmt"
	"log/slog"

	"voteledger/internal/broadcast"
	"voteledger/internal/ledger/service"
	"voteledger/internal/persistence"
	"voteledger/internal/platform/config"
	"voteledger/internal/platform/metrics"
	"voteledger/internal/platform/redis"
	"voteledger/internal/sheets"
)

// infra holds the optional external collaborators. Anything not configured
// stays nil and the ledger runs without it.
type infra struct {
	redis     *redis.Client
	persister service.Persister
	hub       *broadcast.Hub
	notifier  *broadcast.Notifier
	syncer    *sheets.Syncer

	closers []func()
}

func (i *infra) close() {
	for n := len(i.closers) - 1; n >= 0; n-- {
		i.closers[n]()
	}
}

func openInfra(ctx context.Context, cfg config.Config, log *slog.Logger, m *metrics.Metrics) (*infra, error) {
	in := &infra{hub: broadcast.NewHub(cfg.Broadcast.HistorySize)}
	fail := func(err error) (*infra, error) {
		in.close()
		return nil, err
	}

	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return fail(fmt.Errorf("connect redis: %w", err))
	}
	if rc != nil {
		in.redis = rc
		in.closers = append(in.closers, func() { _ = rc.Close() })
	}

	persister, err := openPersister(ctx, cfg, in)
	if err != nil {
		return fail(err)
	}
	in.persister = persister

	publishers := broadcast.Multi{in.hub}
	if cfg.Broadcast.RedisChannel != "" {
		if in.redis == nil {
			return fail(fmt.Errorf("BROADCAST_REDIS_CHANNEL requires REDIS_URL"))
		}
		publishers = append(publishers, broadcast.NewRedisPublisher(in.redis.Client, cfg.Broadcast.RedisChannel))
	}
	if len(cfg.Broadcast.KafkaBrokers) > 0 {
		kp, err := broadcast.NewKafkaPublisher(ctx, cfg.Broadcast.KafkaBrokers, cfg.Broadcast.KafkaTopic)
		if err != nil {
			return fail(fmt.Errorf("connect kafka: %w", err))
		}
		in.closers = append(in.closers, kp.Close)
		publishers = append(publishers, kp)
	}
	in.notifier = broadcast.NewNotifier(publishers, cfg.Broadcast.QueueSize,
		broadcast.WithLogger(log),
		broadcast.WithDropCounter(m),
	)

	if cfg.Sheets.PostgresDSN != "" {
		sink, err := sheets.NewPostgresSink(ctx, cfg.Sheets.PostgresDSN)
		if err != nil {
			return fail(fmt.Errorf("connect sheets database: %w", err))
		}
		in.closers = append(in.closers, sink.Close)
		in.syncer = sheets.NewSyncer(sink, cfg.Sheets.QueueSize,
			sheets.WithLogger(log),
			sheets.WithDropCounter(m),
		)
	}
	return in, nil
}

func openPersister(ctx context.Context, cfg config.Config, in *infra) (service.Persister, error) {
	switch cfg.Persistence.Backend {
	case config.BackendPostgres:
		pg, err := persistence.OpenPostgres(ctx, cfg.Persistence.PostgresDSN)
		if err != nil {
			return nil, err
		}
		in.closers = append(in.closers, func() { _ = pg.Close() })
		return pg, nil
	case config.BackendRedis:
		if in.redis == nil {
			return nil, fmt.Errorf("redis persistence requires REDIS_URL")
		}
		return persistence.NewRedis(in.redis.Client, cfg.Persistence.RedisKey), nil
	case config.BackendMemory:
		return persistence.NewMemory(), nil
	default:
		return persistence.NewFile(cfg.Persistence.SnapshotPath), nil
	}
}
