package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/madcourses/skillmatch/internal/domain/course"
)

// selectCatalog reads the catalog. Every column except c.subject and
// e.embedding may be NULL; a NULL subject makes the course invalid.
const selectCatalog = `
	SELECT c.id, c.subject, c.level, c.title, c.credit_amount,
	       c.credit_min, c.credit_max, c.last_taught, c.description, e.embedding
	FROM courses c
	JOIN embeddings e ON c.id = e.course_id
	ORDER BY c.id`

// querier is the consumer interface for the Postgres catalog (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore reads courses joined with their pgvector embeddings.
type PostgresStore struct {
	db querier
}

// NewPostgresStore creates a Postgres-backed catalog store.
func NewPostgresStore(db querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// NewPool connects to Postgres and registers the pgvector types on every connection.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn) //nolint:wrapcheck // surfaced by pool connect
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Name implements usecase/catalog.Loader.
func (s *PostgresStore) Name() string { return "postgres" }

// Load reads every course that has an embedding, ordered by id.
func (s *PostgresStore) Load(ctx context.Context) ([]course.Entry, error) {
	rows, err := s.db.Query(ctx, selectCatalog)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	var entries []course.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog rows: %w", err)
	}
	return entries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (course.Entry, error) {
	var (
		d                      courseDTO
		subject, title, amount *string
		vec                    pgvector.Vector
	)
	err := row.Scan(
		&d.ID, &subject, &d.Level, &title, &amount,
		&d.CreditMin, &d.CreditMax, &d.LastTaught, &d.Description, &vec,
	)
	if err != nil {
		return course.Entry{}, fmt.Errorf("scan catalog row: %w", err)
	}
	d.Subject, d.Title, d.CreditAmount = deref(subject), deref(title), deref(amount)
	d.Embedding = vec.Slice()
	return d.toEntry()
}
