// Package cache provides Redis-backed caching for detector results.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"plate_reader/internal/feature/plate/domain/entity"
	"plate_reader/internal/feature/plate/usecase"
)

// DefaultDetectionTTL is used when no TTL is configured.
const DefaultDetectionTTL = 10 * time.Minute

// DetectionCache stores raw detector output keyed by a hash of the uploaded
// bytes, so repeated uploads of the same photo skip inference.
// A nil client turns every call into a miss.
type DetectionCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.DetectionCache = (*DetectionCache)(nil)

// detectionJSON is the cached wire form of entity.Detection.
type detectionJSON struct {
	Left    float64 `json:"x"`
	ClassID int     `json:"c"`
}

// NewDetectionCache creates a cache scoped to one detector and model.
// If ttl is 0, it defaults to DefaultDetectionTTL. The namespace is part of
// the key so switching detectors or models never serves stale results.
func NewDetectionCache(rdb *redis.Client, ttl time.Duration, namespace string) *DetectionCache {
	if ttl <= 0 {
		ttl = DefaultDetectionTTL
	}
	return &DetectionCache{
		rdb:       rdb,
		ttl:       ttl,
		namespace: "detections:" + namespace,
	}
}

// Get returns cached detections for imageData, if present.
func (c *DetectionCache) Get(ctx context.Context, imageData []byte) ([]entity.Detection, bool) {
	if c.rdb == nil {
		return nil, false
	}
	key := c.cacheKey(imageData)

	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "detection cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	var raw []detectionJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
		return nil, false
	}

	dets := make([]entity.Detection, 0, len(raw))
	for _, d := range raw {
		dets = append(dets, entity.Detection{Left: d.Left, ClassID: d.ClassID})
	}
	return dets, true
}

// Set stores detections for imageData (best effort).
func (c *DetectionCache) Set(ctx context.Context, imageData []byte, dets []entity.Detection) {
	if c.rdb == nil {
		return
	}
	b, err := encodeDetections(dets)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.cacheKey(imageData), b, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "detection cache set failed", "error", err)
	}
}

func encodeDetections(dets []entity.Detection) ([]byte, error) {
	raw := make([]detectionJSON, 0, len(dets))
	for _, d := range dets {
		raw = append(raw, detectionJSON{Left: d.Left, ClassID: d.ClassID})
	}
	return json.Marshal(raw)
}

// cacheKey hashes the image bytes with BLAKE2b-256.
func (c *DetectionCache) cacheKey(imageData []byte) string {
	sum := blake2b.Sum256(imageData)
	return fmt.Sprintf("%s:%s", c.namespace, hex.EncodeToString(sum[:]))
}
