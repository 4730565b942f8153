package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Source resolves content object ids into bodies.
type Source interface {
	// Content returns the body of object id, or ErrNotFound.
	Content(ctx context.Context, id int64) (string, error)
}

// MapSource is an in-memory Source.
type MapSource map[int64]string

// Content implements Source.
func (m MapSource) Content(_ context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", ErrInvalidID
	}
	body, ok := m[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return body, nil
}

// Querier is the subset of pgx used by PostgresSource.
// *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy it.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresSource reads bodies from a table keyed by a bigint id.
type PostgresSource struct {
	db    Querier
	query string
}

// PostgresOption configures a PostgresSource.
type PostgresOption func(*postgresOptions)

type postgresOptions struct {
	table      string
	idColumn   string
	bodyColumn string
	condition  string
}

// WithTable sets the table, optionally schema-qualified ("cms.posts"). Default: "posts".
func WithTable(name string) PostgresOption {
	return func(o *postgresOptions) {
		if name != "" {
			o.table = name
		}
	}
}

// WithColumns sets the id and body columns. Default: "id" and "body".
func WithColumns(id, body string) PostgresOption {
	return func(o *postgresOptions) {
		if id != "" {
			o.idColumn = id
		}
		if body != "" {
			o.bodyColumn = body
		}
	}
}

// WithCondition adds a fixed SQL condition, e.g. "status = 'published'".
// The condition is inserted verbatim and must not come from user input.
func WithCondition(cond string) PostgresOption {
	return func(o *postgresOptions) {
		o.condition = strings.TrimSpace(cond)
	}
}

// NewPostgresSource creates a Source backed by db.
func NewPostgresSource(db Querier, opts ...PostgresOption) *PostgresSource {
	o := &postgresOptions{table: "posts", idColumn: "id", bodyColumn: "body"}
	for _, opt := range opts {
		opt(o)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		pgx.Identifier{o.bodyColumn}.Sanitize(),
		pgx.Identifier(strings.Split(o.table, ".")).Sanitize(),
		pgx.Identifier{o.idColumn}.Sanitize(),
	)
	if o.condition != "" {
		query += " AND (" + o.condition + ")"
	}

	return &PostgresSource{db: db, query: query}
}

// Content implements Source. A NULL body reads as empty.
func (s *PostgresSource) Content(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", ErrInvalidID
	}

	var body *string
	if err := s.db.QueryRow(ctx, s.query, id).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return "", errors.Join(ErrQueryFailed, err)
	}

	if body == nil {
		return "", nil
	}
	return *body, nil
}
