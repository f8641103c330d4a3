//go:build !tinygo

package hal

import (
	"context"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled  bool
	Duration time.Duration
}

// RunHeadless runs the boot function without opening a window and
// waits for the context or the configured duration.
func RunHeadless(ctx context.Context, boot func(HAL), cfg HeadlessConfig) error {
	h := New()
	go boot(h)

	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	<-ctx.Done()
	if err := ctx.Err(); err != context.DeadlineExceeded {
		return err
	}
	return nil
}
