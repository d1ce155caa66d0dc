/*
Package postgres implements repository.Repository against a PostgreSQL
database, using jmoiron/sqlx over the jackc/pgx/v5 stdlib driver.
*/
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	// registers the "pgx" driver with database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum/glados/pkg/glerr"
	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
)

var tracer = otel.Tracer("github.com/ethereum/glados/pkg/repository/postgres")

// Store is the PostgreSQL-backed Content Repository.
type Store struct {
	db *sqlx.DB
}

// Open connects to databaseURL and verifies connectivity. Callers own the
// returned Store and must Close it on shutdown.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sqlx.Open("pgx", databaseURL)
	if err != nil {
		return nil, glerr.Transport("repository.open", fmt.Errorf("parse database url: %w", err))
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, glerr.Transport("repository.open", fmt.Errorf("ping database: %w", err))
	}

	log.WithComponent("repository").Info().Msg("connected to database")
	return &Store{db: db}, nil
}

// NewWithDB wraps an already-open sqlx.DB, used by tests against sqlmock.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying *sql.DB, used by the migration runner.
func (s *Store) DB() *sql.DB {
	return s.db.DB
}

// observe starts a span and a duration timer for a repository query, named
// op (e.g. "create_pending_audit"). The returned func ends both and must be
// deferred immediately at the call site.
func observe(ctx context.Context, op string) func() {
	_, span := tracer.Start(ctx, "postgres."+op, trace.WithAttributes(attribute.String("db.operation", op)))
	timer := metrics.NewTimer()
	return func() {
		timer.ObserveDurationVec(metrics.RepositoryQueryDuration, op)
		span.End()
	}
}
