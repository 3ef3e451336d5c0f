package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
)

// RetryPolicy 线性退避：第 k 次重试前等待 k * BaseDelay，首次尝试前与最后一次失败后都不等待
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep 为空时使用真实计时器；测试中注入以记录等待时长
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy 3 次尝试，基准间隔 1s
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: defaultRetryAttempts, BaseDelay: defaultRetryBaseDelay}
}

// Retry 包装一次可能失败的操作。全部尝试失败后记录 warning 并返回 ok=false，调用方应跳过该单元
func Retry[T any](ctx context.Context, p RetryPolicy, unit string, op func(ctx context.Context) (T, error)) (T, bool) {
	var zero T

	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	log := zerolog.Ctx(ctx)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*p.BaseDelay); err != nil {
				lastErr = err
				break
			}
		}

		v, err := op(ctx)
		if err == nil {
			return v, true
		}
		lastErr = err
		log.Debug().Err(err).Str("unit", unit).Int("attempt", attempt+1).Msg("attempt failed")
	}

	log.Warn().Err(lastErr).Str("unit", unit).Int("attempts", attempts).Msg("giving up after retries")
	return zero, false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
