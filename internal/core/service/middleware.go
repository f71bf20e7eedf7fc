package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/rl1809/campus-canteen/internal/core/domain"
)

// Logging echoes every request at debug level and reports failures with their kind.
func Logging(logger *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (string, error) {
			start := time.Now()
			logger.Debug("handling command", zap.Stringer("request", req))

			result, err := next(ctx, req)
			if err != nil {
				logger.Info("command failed",
					zap.String("command", req.Command),
					zap.String("kind", domain.Kind(err)),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err))
				return result, err
			}

			logger.Debug("command succeeded",
				zap.String("command", req.Command),
				zap.Duration("duration", time.Since(start)))
			return result, nil
		}
	}
}

// Tracing opens one span per command.
func Tracing(tracer trace.Tracer) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req Request) (string, error) {
			ctx, span := tracer.Start(ctx, "command "+req.Command)
			defer span.End()

			span.SetAttributes(attribute.String("canteen.command", req.Command))
			for _, key := range []string{ParamUserID, ParamItemID, ParamOrderID} {
				if v, ok := req.Param(key); ok {
					span.SetAttributes(attribute.String("canteen."+key, v))
				}
			}

			result, err := next(ctx, req)
			if err != nil {
				span.RecordError(err)
				span.SetAttributes(attribute.String("canteen.error_kind", domain.Kind(err)))
				span.SetStatus(codes.Error, err.Error())
				return result, err
			}

			span.SetStatus(codes.Ok, "")
			return result, nil
		}
	}
}
