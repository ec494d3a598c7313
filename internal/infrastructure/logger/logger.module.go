package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewLogger),
	fx.Provide(NewMiddleware),
	fx.Invoke(RegisterLifecycle),
)

func NewMiddleware(logger *zap.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{logger: logger.Named("http")}
}

// RegisterLifecycle vide les tampons du logger à l'arrêt
func RegisterLifecycle(lc fx.Lifecycle, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
}
