package fetcher

import (
	"context"
	"time"
)

// SleepFunc приостанавливает выполнение на d или до отмены ctx
type SleepFunc func(ctx context.Context, d time.Duration) error

// Pacer фиксированная пауза между запросами к удалённому сервису
type Pacer struct {
	delay time.Duration
	sleep SleepFunc
}

func NewPacer(delay time.Duration) *Pacer {
	return NewPacerWithSleep(delay, ContextSleep)
}

// NewPacerWithSleep позволяет подменить sleep (в тестах без реального ожидания)
func NewPacerWithSleep(delay time.Duration, sleep SleepFunc) *Pacer {
	if sleep == nil {
		sleep = ContextSleep
	}
	return &Pacer{delay: delay, sleep: sleep}
}

func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Pause вызывается после каждой попытки запроса, успешной или нет
func (p *Pacer) Pause(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, p.delay)
}

func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
