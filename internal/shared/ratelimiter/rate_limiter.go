package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// Limiter は、外部API呼び出しなどの操作の頻度を制限するインターフェースです。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiterは、interval あたり limit 回までの操作を許可するトークンバケットです。
// 複数のリクエストから同時に呼ばれても安全です。
type RateLimiter struct {
	limit   int
	limiter *rate.Limiter
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
// limitが0以下の場合は制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 || interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	// intervalの間にlimit回を均等に補充し、最大limit回まで連続で通す
	return &RateLimiter{
		limit:   limit,
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
	}
}

// Waitは枠が空くまで待機します。
// 待機中にctxがキャンセルされた場合、または期限内に枠が空かない場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limiter.Allow() {
		return nil
	}
	slog.WarnContext(ctx, "rate limit reached, waiting", "limit", rl.limit)
	return rl.limiter.Wait(ctx)
}
