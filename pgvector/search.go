// Package pgvector implements similarity search over Postgres with the
// pgvector extension.
package pgvector

import (
	"context"
	"fmt"

	"github.com/govseek/govseek"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"
	pgvecpgx "github.com/pgvector/pgvector-go/pgx"
)

// Compile-time interface verification.
var _ govseek.SearchService = (*SearchService)(nil)

// Connect opens a connection pool with pgvector types registered on every
// connection.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgvecpgx.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}

// SearchService implements govseek.SearchService by embedding the query
// and cosine-ordering stored chunks.
type SearchService struct {
	pool     *pgxpool.Pool
	embedder govseek.Embedder
}

// NewSearchService creates a new SearchService.
func NewSearchService(pool *pgxpool.Pool, embedder govseek.Embedder) *SearchService {
	return &SearchService{pool: pool, embedder: embedder}
}

// Search returns the k chunks closest to the query by cosine distance.
func (s *SearchService) Search(ctx context.Context, query string, k int) ([]govseek.RetrievedDocument, error) {
	if query == "" {
		return nil, govseek.Errorf(govseek.EINVALID, "query required")
	}
	if k <= 0 {
		return nil, govseek.Errorf(govseek.EINVALID, "k must be positive")
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT text, link FROM chunks ORDER BY embedding <=> $1 LIMIT $2
	`, pgvec.NewVector(vec), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []govseek.RetrievedDocument
	for rows.Next() {
		var doc govseek.RetrievedDocument
		if err := rows.Scan(&doc.Text, &doc.Source); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
