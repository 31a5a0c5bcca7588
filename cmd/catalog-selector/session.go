package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/catalog-selector/internal/config"
	"github.com/Sternrassler/catalog-selector/pkg/catalog"
	"github.com/Sternrassler/catalog-selector/pkg/coordinator"
	"github.com/Sternrassler/catalog-selector/pkg/selection"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// session wires one selection session: a catalog client, the selection
// store, the page coordinator and the select-first-N selector.
type session struct {
	redis    *redis.Client
	client   *catalog.Client
	store    *selection.Store
	coord    *coordinator.Coordinator
	selector *selection.Selector
}

func newSession(ctx context.Context, cfg *config.Config) (*session, error) {
	s := &session{}

	if opts := cfg.RedisOptions(); opts != nil {
		s.redis = redis.NewClient(opts)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := s.redis.Ping(pingCtx).Err(); err != nil {
			s.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
		}
		log.Info().Str("addr", opts.Addr).Msg("Connected to Redis")
	}

	client, err := catalog.New(cfg.ClientConfig(s.redis))
	if err != nil {
		if s.redis != nil {
			s.redis.Close()
		}
		return nil, fmt.Errorf("create catalog client: %w", err)
	}
	s.client = client

	s.store = selection.NewStore(selection.NewSet())
	s.coord = coordinator.New(client, s.store, coordinator.Config{PageSize: cfg.View.PageSize})
	s.selector = selection.NewSelector(s.store, client, cfg.WalkConfig())

	return s, nil
}

func (s *session) Close() error {
	if s.client != nil {
		s.client.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
