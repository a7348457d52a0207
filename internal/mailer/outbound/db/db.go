// Package db loads the records an email is composed from. It only reads;
// the booking service owns these tables.
package db

import (
	"context"
	"errors"

	"github.com/bridj/tripmailer/internal/pkg/goerror"
	"github.com/bridj/tripmailer/internal/pkg/instrument"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const uniqueViolation = "23505"

// querier is the part of *pgxpool.Pool the lookups use.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DB struct {
	conn   querier
	tracer trace.Tracer
}

func NewDB(conn querier, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, tracer: ins.Tracer("mailer.outbound.db")}
}

// mapError turns driver errors into the goerror sentinels the usecase
// understands. Other errors pass through.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return goerror.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return goerror.ErrConflict
	}
	return err
}

// getOne runs a single-row lookup by id inside a span. A missing row is an
// expected outcome and does not mark the span as failed.
func getOne[T any](ctx context.Context, s *DB, op, query string, id int64, scan func(pgx.Row, *T) error) (*T, error) {
	ctx, span := s.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.Int64("record.id", id),
	))
	defer span.End()

	var item T
	if err := mapError(scan(s.conn.QueryRow(ctx, query, id), &item)); err != nil {
		if !errors.Is(err, goerror.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	return &item, nil
}
