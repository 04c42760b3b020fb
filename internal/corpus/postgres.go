package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/lib/pq"
	"github.com/quaero-search/quaero/pkg/postgres"
)

// PostgresDocumentSource streams the corpus out of a PostgreSQL table with
// an id column and a content column. The row count is taken upfront, and
// docIDs are assigned in row order, exactly like the file source.
type PostgresDocumentSource struct {
	mu    sync.Mutex
	rows  *sql.Rows
	total int
	next  int
	err   error
}

// OpenPostgresDocuments counts the rows of table and opens a streaming
// cursor over them, ordered by id.
func OpenPostgresDocuments(ctx context.Context, client *postgres.Client, table string) (*PostgresDocumentSource, error) {
	quoted := pq.QuoteIdentifier(table)
	var total int
	if err := client.DB.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted),
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting documents in %s: %w", table, err)
	}
	rows, err := client.DB.QueryContext(ctx,
		fmt.Sprintf("SELECT content FROM %s ORDER BY id", quoted),
	)
	if err != nil {
		return nil, fmt.Errorf("querying documents from %s: %w", table, err)
	}
	return &PostgresDocumentSource{rows: rows, total: total}, nil
}

// TotalDocs returns the row count taken when the source was opened.
func (s *PostgresDocumentSource) TotalDocs() int {
	return s.total
}

// Next returns the next document in row order.
func (s *PostgresDocumentSource) Next() (Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= s.total || s.err != nil {
		return Document{}, false
	}
	if !s.rows.Next() {
		if err := s.rows.Err(); err != nil {
			s.err = fmt.Errorf("reading document row %d: %w", s.next, err)
		}
		return Document{}, false
	}
	var text string
	if err := s.rows.Scan(&text); err != nil {
		s.err = fmt.Errorf("scanning document row %d: %w", s.next, err)
		return Document{}, false
	}
	doc := Document{ID: s.next, Text: text}
	s.next++
	return doc, true
}

// Err returns the first read error encountered, if any.
func (s *PostgresDocumentSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close closes the row cursor.
func (s *PostgresDocumentSource) Close() error {
	return s.rows.Close()
}
