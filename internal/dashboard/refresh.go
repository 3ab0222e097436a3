package dashboard

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

const maxRefreshSeconds = float64(math.MaxInt64 / int64(time.Second))

var newTicker = func(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// RefreshInterval converts a refresh period in seconds to a duration.
// ok is false when the period is not a positive finite number.
func RefreshInterval(seconds float64) (time.Duration, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, false
	}

	if seconds > maxRefreshSeconds {
		seconds = maxRefreshSeconds
	}

	interval := time.Duration(seconds * float64(time.Second))
	if interval <= 0 {
		return 0, false
	}

	return interval, true
}

// AutoRefresh starts one Match per tick until ctx is done. Each Match runs on
// its own goroutine, so a slow request never delays the next tick.
// It returns immediately when seconds is not a positive finite number.
func (d *Dashboard) AutoRefresh(ctx context.Context, seconds float64) {
	interval, ok := RefreshInterval(seconds)
	if !ok {
		d.logger.Info("auto refresh is disabled", zap.Float64("refresh_seconds", seconds))
		return
	}

	d.logger.Info("auto refresh is enabled", zap.Duration("interval", interval))

	ticks, stop := newTicker(interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Debug("auto refresh stopped", zap.Error(ctx.Err()))
			return
		case <-ticks:
			go func() {
				_ = d.Match(ctx)
			}()
		}
	}
}
