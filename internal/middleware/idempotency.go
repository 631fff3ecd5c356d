package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	replayKeyPrefix      = "pool:replay:v1:"
	pendingMarker        = "\x00pending"
	storeOpTimeout       = 2 * time.Second
)

// replayRecord is the persisted response for one idempotency key.
type replayRecord struct {
	Status  int               `json:"status"`
	Body    string            `json:"body"`
	Headers map[string]string `json:"headers"`
}

// replayStore keeps per-key response records in Redis. A key moves through
// pending -> recorded; pending keys reject concurrent duplicates.
type replayStore struct {
	cache *redis.Client
	ttl   time.Duration
}

var errPending = errors.New("request with this key is still processing")

// lookup returns the recorded response for the key, redis.Nil when the key
// is unseen, or errPending while the first request is in flight.
func (s *replayStore) lookup(ctx context.Context, key string) (replayRecord, error) {
	raw, err := s.cache.Get(ctx, replayKeyPrefix+key).Result()
	if err != nil {
		return replayRecord{}, err
	}
	if raw == pendingMarker {
		return replayRecord{}, errPending
	}
	var record replayRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return replayRecord{}, err
	}
	return record, nil
}

func (s *replayStore) reserve(ctx context.Context, key string) error {
	return s.cache.SetNX(ctx, replayKeyPrefix+key, pendingMarker, s.ttl).Err()
}

func (s *replayStore) record(ctx context.Context, key string, record replayRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, replayKeyPrefix+key, payload, s.ttl).Err()
}

func (s *replayStore) release(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
	defer cancel()
	s.cache.Del(ctx, replayKeyPrefix+key) // best effort
}

// Idempotency makes unsafe ledger operations replay-safe: the first request
// carrying an Idempotency-Key runs and has its response recorded in Redis,
// and every later request with the same key gets the recorded response back
// without re-executing the operation.
func Idempotency(cache *redis.Client, ttl time.Duration, logger *slog.Logger) fiber.Handler {
	store := &replayStore{cache: cache, ttl: ttl}

	return func(c *fiber.Ctx) error {
		switch strings.ToUpper(c.Method()) {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		key := c.Get(idempotencyKeyHeader)
		if key == "" {
			return fiber.NewError(fiber.StatusBadRequest, "missing Idempotency-Key header")
		}

		ctx, cancel := context.WithTimeout(context.Background(), storeOpTimeout)
		defer cancel()

		record, err := store.lookup(ctx, key)
		switch {
		case err == nil:
			return replay(c, record)
		case errors.Is(err, errPending):
			return fiber.NewError(fiber.StatusConflict, "duplicate request currently processing")
		case errors.Is(err, redis.Nil):
			// First sighting of the key; fall through and run the handler.
		default:
			logger.Error("idempotency lookup failed", slog.String("key", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency store failure")
		}

		if err := store.reserve(ctx, key); err != nil {
			logger.Error("idempotency reservation failed", slog.String("key", key), slog.Any("error", err))
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency reservation failure")
		}

		if err := c.Next(); err != nil {
			// Failed operations are not recorded; the key becomes usable again.
			store.release(key)
			return err
		}

		record = replayRecord{
			Status:  c.Response().StatusCode(),
			Body:    string(c.Response().Body()),
			Headers: map[string]string{},
		}
		c.Response().Header.VisitAll(func(k, v []byte) {
			record.Headers[string(k)] = string(v)
		})

		persistCtx, persistCancel := context.WithTimeout(context.Background(), storeOpTimeout)
		defer persistCancel()
		if err := store.record(persistCtx, key, record); err != nil {
			logger.Error("failed to record idempotent response", slog.String("key", key), slog.Any("error", err))
			store.release(key)
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency persistence failure")
		}

		return nil
	}
}

func replay(c *fiber.Ctx, record replayRecord) error {
	for header, value := range record.Headers {
		if strings.EqualFold(header, fiber.HeaderContentLength) {
			continue
		}
		c.Set(header, value)
	}
	return c.Status(record.Status).SendString(record.Body)
}
