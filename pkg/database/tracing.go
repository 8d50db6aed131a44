package database

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/utafrali/devcamper/pkg/database"

type slowQuery struct {
	threshold time.Duration
	log       *slog.Logger
}

var slowQueries atomic.Pointer[slowQuery]

// SetSlowQueryLogging logs statements slower than threshold as warnings.
// A zero threshold disables it.
func SetSlowQueryLogging(threshold time.Duration, log *slog.Logger) {
	if threshold <= 0 || log == nil {
		slowQueries.Store(nil)
		return
	}
	slowQueries.Store(&slowQuery{threshold: threshold, log: log})
}

// TraceQuery opens a client span for one statement. Call the returned func with
// the statement's error when it finishes:
//
//	ctx, end := database.TraceQuery(ctx, "GetBootcamp", query)
//	defer func() { end(err) }()
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", statement),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		sq := slowQueries.Load()
		if sq == nil {
			return
		}
		if elapsed := time.Since(start); elapsed >= sq.threshold {
			sq.log.WarnContext(ctx, "slow query",
				slog.String("operation", operation),
				slog.String("statement", statement),
				slog.Duration("duration", elapsed),
			)
		}
	}
}
