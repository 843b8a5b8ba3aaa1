package ratelimiter

import (
	"careplan-service/internal/app/contracts"
	"careplan-service/internal/pkg/constvars"
	"fmt"
	"time"

	"context"

	"go.uber.org/zap"
)

// SubmissionLimiter bounds care plan submissions with two sliding counters, a
// per-minute one and a per-day one. Each counter lives in Redis under a
// window-stamped key armed with a TTL slightly past the window length, so
// stale counters clean themselves up.
//
// The check is a single atomic increment-and-compare per counter rather than
// separate get/set calls, which keeps concurrent submissions from slipping
// past the ceiling between a read and a write.
type SubmissionLimiter struct {
	redis     contracts.RedisRepository
	log       *zap.Logger
	minuteMax int
	dayMax    int
	// now is replaceable in tests.
	now func() time.Time
}

func NewSubmissionLimiter(redis contracts.RedisRepository, log *zap.Logger, minuteMax, dayMax int) *SubmissionLimiter {
	return &SubmissionLimiter{
		redis:     redis,
		log:       log,
		minuteMax: minuteMax,
		dayMax:    dayMax,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AllowOutput reports allowance only; thresholds and current counts stay
// internal so the caller cannot leak them.
type AllowOutput struct {
	Allowed bool
}

// Allow admits or rejects one submission. Both counters are incremented on
// every call; a rejected call still consumes a slot, which keeps the
// evaluation a single round-trip per counter.
func (l *SubmissionLimiter) Allow(ctx context.Context) (*AllowOutput, error) {
	now := l.now()

	minuteKey := fmt.Sprintf("%s:%d", constvars.RedisKeySubmissionMinutePrefix, now.Unix()/60)
	dayKey := fmt.Sprintf("%s:%s", constvars.RedisKeySubmissionDayPrefix, now.Format("2006-01-02"))

	minuteCount, err := l.redis.IncrementWithTTL(ctx, minuteKey, 61*time.Second)
	if err != nil {
		l.log.Error("SubmissionLimiter.Allow minute increment failed",
			zap.String(constvars.LoggingRedisKey, minuteKey),
			zap.Error(err))
		return nil, err
	}

	dayCount, err := l.redis.IncrementWithTTL(ctx, dayKey, 86401*time.Second)
	if err != nil {
		l.log.Error("SubmissionLimiter.Allow day increment failed",
			zap.String(constvars.LoggingRedisKey, dayKey),
			zap.Error(err))
		return nil, err
	}

	if (l.minuteMax > 0 && minuteCount > int64(l.minuteMax)) ||
		(l.dayMax > 0 && dayCount > int64(l.dayMax)) {
		l.log.Warn("SubmissionLimiter.Allow rejected submission",
			zap.Int64("minute_count", minuteCount),
			zap.Int64("day_count", dayCount))
		return &AllowOutput{Allowed: false}, nil
	}

	return &AllowOutput{Allowed: true}, nil
}

// SetNowFunc overrides the clock; used by tests.
func (l *SubmissionLimiter) SetNowFunc(now func() time.Time) {
	l.now = now
}
