// Package cache memoizes similarity oracle answers in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spigell/bidscout/internal/ai"
	"github.com/spigell/bidscout/internal/logger"
	"github.com/spigell/bidscout/internal/procurement"
)

const (
	keyPrefix  = "bidscout:similarity:"
	DefaultTTL = 7 * 24 * time.Hour
)

type store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Oracle wraps another oracle. Cache failures are logged and never surface.
type Oracle struct {
	next   ai.SimilarityOracle
	store  store
	ttl    time.Duration
	logger *zap.Logger
}

func New(client *redis.Client, next ai.SimilarityOracle, ttl time.Duration, log *zap.Logger) *Oracle {
	return newOracle(client, next, ttl, log)
}

func newOracle(s store, next ai.SimilarityOracle, ttl time.Duration, log *zap.Logger) *Oracle {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Oracle{next: next, store: s, ttl: ttl, logger: logger.WithFields(log)}
}

func (o *Oracle) Similarity(ctx context.Context, org *procurement.Organization, opp *procurement.Opportunity) (*ai.Similarity, error) {
	if org == nil || opp == nil {
		return o.next.Similarity(ctx, org, opp)
	}
	key := Key(org, opp)
	fields := logger.PairFields(org.ID, opp.ID)

	raw, err := o.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached ai.Similarity
		if err := json.Unmarshal(raw, &cached); err == nil {
			o.logger.Debug("similarity cache hit", fields...)
			return &cached, nil
		}
		o.logger.Warn("drop malformed similarity cache entry", fields...)
	case !errors.Is(err, redis.Nil):
		o.logger.Warn("similarity cache read failed", append(fields, zap.Error(err))...)
	}

	similarity, err := o.next.Similarity(ctx, org, opp)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(similarity)
	if err != nil {
		return similarity, nil
	}
	if err := o.store.Set(ctx, key, payload, o.ttl).Err(); err != nil {
		o.logger.Warn("similarity cache write failed", append(fields, zap.Error(err))...)
	}
	return similarity, nil
}

// Key derives the cache key from the texts the oracle compares, so edited
// profiles or notices miss the cache.
func Key(org *procurement.Organization, opp *procurement.Opportunity) string {
	h := sha256.New()
	for _, part := range []string{
		org.CapabilityNarrative,
		strings.Join(org.CoreCompetencies, "\x1f"),
		org.PastPerformanceSummary,
		strings.Join(org.ClassificationCodes, "\x1f"),
		opp.Title,
		opp.Description,
		opp.ClassificationCode,
		opp.ClassificationDescription,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Connect initializes a Redis client from a redis:// URL or host:port and pings it.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		return nil, errors.New("redis url is required")
	}

	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
