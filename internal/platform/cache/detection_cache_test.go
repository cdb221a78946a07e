package cache

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"golang.org/x/crypto/blake2b"

	"plate_reader/internal/feature/plate/domain/entity"
)

var testImage = []byte("\x89PNG fake image bytes")

func expectedKey(backend string, data []byte) string {
	sum := blake2b.Sum256(data)
	return "detections:" + backend + ":" + hex.EncodeToString(sum[:])
}

// TestNewDetectionCache_DefaultTTL はTTL未指定時にデフォルト値が使われることを検証します。
func TestNewDetectionCache_DefaultTTL(t *testing.T) {
	t.Parallel()

	c := NewDetectionCache(nil, 0, "onnx")
	if c.ttl != DefaultDetectionTTL {
		t.Errorf("expected ttl %v, got %v", DefaultDetectionTTL, c.ttl)
	}
	if c.namespace != "detections:onnx" {
		t.Errorf("unexpected namespace %q", c.namespace)
	}
}

// TestDetectionCache_CacheKey は同じ画像から同じキーが、異なるバックエンドから異なるキーが生成されることを検証します。
func TestDetectionCache_CacheKey(t *testing.T) {
	t.Parallel()

	onnx := NewDetectionCache(nil, time.Minute, "onnx")
	vision := NewDetectionCache(nil, time.Minute, "vision")

	if got, want := onnx.cacheKey(testImage), expectedKey("onnx", testImage); got != want {
		t.Errorf("expected key %q, got %q", want, got)
	}
	if onnx.cacheKey(testImage) == vision.cacheKey(testImage) {
		t.Error("keys for different backends must differ")
	}
	if onnx.cacheKey(testImage) == onnx.cacheKey([]byte("other")) {
		t.Error("keys for different images must differ")
	}

	primary := NewDetectionCache(nil, time.Minute, "onnx:best.onnx")
	fallback := NewDetectionCache(nil, time.Minute, "onnx:yolov8n.onnx")
	if primary.cacheKey(testImage) == fallback.cacheKey(testImage) {
		t.Error("keys for different models of one backend must differ")
	}
}

// TestDetectionCache_Get_Hit はキャッシュヒット時に検出結果が復元されることを検証します。
func TestDetectionCache_Get_Hit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet(expectedKey("onnx", testImage)).SetVal(`[{"x":12.5,"c":1},{"x":40,"c":10}]`)

	c := NewDetectionCache(rdb, time.Minute, "onnx")
	dets, ok := c.Get(context.Background(), testImage)

	if !ok {
		t.Fatal("expected cache hit")
	}
	expected := []entity.Detection{{Left: 12.5, ClassID: 1}, {Left: 40, ClassID: 10}}
	if len(dets) != len(expected) || dets[0] != expected[0] || dets[1] != expected[1] {
		t.Errorf("expected %+v, got %+v", expected, dets)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestDetectionCache_Get_EmptyHit は空の検出結果もキャッシュヒットとして扱うことを検証します。
func TestDetectionCache_Get_EmptyHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet(expectedKey("onnx", testImage)).SetVal(`[]`)

	dets, ok := NewDetectionCache(rdb, time.Minute, "onnx").Get(context.Background(), testImage)

	if !ok {
		t.Fatal("expected cache hit for empty detections")
	}
	if len(dets) != 0 {
		t.Errorf("expected no detections, got %+v", dets)
	}
}

// TestDetectionCache_Get_Miss はキーが存在しない場合やRedisエラー時にミスとなることを検証します。
func TestDetectionCache_Get_Miss(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(mock redismock.ClientMock)
	}{
		{
			name: "key not found",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(expectedKey("onnx", testImage)).RedisNil()
			},
		},
		{
			name: "redis error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(expectedKey("onnx", testImage)).SetErr(errors.New("connection reset"))
			},
		},
		{
			name: "corrupted entry is deleted",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectGet(expectedKey("onnx", testImage)).SetVal("not json")
				mock.ExpectDel(expectedKey("onnx", testImage)).SetVal(1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rdb, mock := redismock.NewClientMock()
			defer func() { _ = rdb.Close() }()
			tt.setup(mock)

			_, ok := NewDetectionCache(rdb, time.Minute, "onnx").Get(context.Background(), testImage)

			if ok {
				t.Error("expected cache miss")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled mock expectations: %v", err)
			}
		})
	}
}

// TestDetectionCache_Set はTTL付きで検出結果が保存されることを検証します。
func TestDetectionCache_Set(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	dets := []entity.Detection{{Left: 3, ClassID: 2}}
	payload, _ := encodeDetections(dets)
	mock.ExpectSet(expectedKey("vision", testImage), payload, 2*time.Minute).SetVal("OK")

	NewDetectionCache(rdb, 2*time.Minute, "vision").Set(context.Background(), testImage, dets)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestDetectionCache_NilClient はRedis未設定時に常にミスとなり、パニックしないことを検証します。
func TestDetectionCache_NilClient(t *testing.T) {
	t.Parallel()

	c := NewDetectionCache(nil, time.Minute, "onnx")
	c.Set(context.Background(), testImage, []entity.Detection{{Left: 1, ClassID: 1}})

	if _, ok := c.Get(context.Background(), testImage); ok {
		t.Error("expected miss with nil client")
	}
}
