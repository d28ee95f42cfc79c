package pokedex

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/pokedex/pkg/database"
	"github.com/travigo/pokedex/pkg/evolution"
	"github.com/travigo/pokedex/pkg/redis_client"
	"github.com/travigo/pokedex/pkg/resultcache"
)

const closeTimeout = 10 * time.Second

type SessionOptions struct {
	// RecordsFile switches the session to an in-memory engine over a local file
	RecordsFile string

	// CacheTTL enables the Redis result cache when positive
	CacheTTL time.Duration
}

// Session owns every connection a command needs. Close releases them in
// reverse order of acquisition.
type Session struct {
	Engine evolution.Engine

	closers []func(context.Context) error
}

func OpenSession(ctx context.Context, options SessionOptions) (*Session, error) {
	session := &Session{}

	var namespace string

	if options.RecordsFile != "" {
		records, err := evolution.LoadRecords(options.RecordsFile)
		if err != nil {
			return nil, err
		}

		log.Info().Str("path", options.RecordsFile).Int("records", len(records)).Msg("Using records file")

		session.Engine = evolution.NewMemoryEngine(records)
		namespace = "file:" + options.RecordsFile
	} else {
		mongoInstance, err := database.Connect(ctx)
		if err != nil {
			return nil, err
		}
		session.closers = append(session.closers, mongoInstance.Disconnect)

		collection := mongoInstance.GetCollection(database.SamplesCollection)

		session.Engine = evolution.NewMongoEngine(collection)
		namespace = fmt.Sprintf("%s.%s", mongoInstance.Database.Name(), collection.Name())
	}

	if options.CacheTTL > 0 {
		redisClient, err := redis_client.Connect(ctx)
		if err != nil {
			session.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		session.closers = append(session.closers, func(context.Context) error {
			return redisClient.Close()
		})

		log.Info().Dur("ttl", options.CacheTTL).Msg("Result cache enabled")

		session.Engine = resultcache.New(session.Engine, redisClient, options.CacheTTL, namespace)
	}

	return session, nil
}

func (s *Session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Error().Err(err).Msg("Failed to close connection")
		}
	}
	s.closers = nil
}
