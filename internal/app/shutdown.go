package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"chronam-essays/internal/observability"
)

// GracefulShutdown отменяет context по SIGINT/SIGTERM.
// Стадии проверяют context между запросами, поэтому текущий запрос завершается,
// а уже полученные данные записываются на диск.
func GracefulShutdown(parent context.Context, logger *observability.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	// Канал для сигналов ОС
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Warn("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
