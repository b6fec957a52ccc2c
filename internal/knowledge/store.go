package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Document is a stored knowledge entry.
type Document struct {
	// ID is the unique identifier of the document row.
	ID int64

	// Name is the human-readable document name.
	Name string

	// Content is the document text.
	Content string

	// CreatedAt is when the document was indexed.
	CreatedAt time.Time

	// Similarity is the cosine similarity score from embedding search.
	// Zero when the store runs without an embedder.
	Similarity float64
}

// Store is a SQLite-backed document index.
//
// Design decision: Keyword LIKE recall first, embedding re-rank second.
// Keyword recall alone keeps the store usable with no API key, and
// running similarity only over recalled candidates keeps the embedding
// cost bounded even for large document sets.
type Store struct {
	db       *sql.DB
	embedder Embedder
	mu       sync.RWMutex
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithEmbedder enables embedding-based ranking for search results.
func WithEmbedder(embedder Embedder) StoreOption {
	return func(s *Store) {
		s.embedder = embedder
	}
}

// OpenStore opens or creates a knowledge store in the given directory.
func OpenStore(dir string, opts ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create knowledge directory: %w", err)
	}

	dbPath := filepath.Join(dir, "knowledge.db")
	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open knowledge database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		embedding TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(name)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_name ON documents(name);
	`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create knowledge schema: %w", err)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add indexes a document, replacing any existing document with the same
// name. The embedding is computed when an embedder is configured; an
// embedding failure degrades to keyword-only search rather than failing
// the add.
func (s *Store) Add(ctx context.Context, name, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var embeddingJSON sql.NullString
	if s.embedder != nil {
		if vec, err := s.embedder.Embed(ctx, content); err == nil {
			if data, err := json.Marshal(vec); err == nil {
				embeddingJSON = sql.NullString{String: string(data), Valid: true}
			}
		}
	}

	query := `
	INSERT INTO documents (name, content, embedding)
	VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		content = excluded.content,
		embedding = excluded.embedding,
		created_at = CURRENT_TIMESTAMP
	`

	if _, err := s.db.ExecContext(ctx, query, name, content, embeddingJSON); err != nil {
		return fmt.Errorf("failed to index document %q: %w", name, err)
	}

	return nil
}

// AddFile indexes a document from a file, using the base name as the
// document name when name is empty.
func (s *Store) AddFile(ctx context.Context, name, path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read knowledge file: %w", err)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	return s.Add(ctx, name, string(data))
}

// Count returns the number of indexed documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// Search returns up to limit documents relevant to the query.
// Candidates are recalled by keyword match; when an embedder is
// configured they are re-ranked by cosine similarity against the query
// embedding.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return nil, nil
	}

	// Keyword recall with LIKE for each term
	var conditions []string
	var args []any
	for _, kw := range keywords {
		conditions = append(conditions, "LOWER(content) LIKE ?")
		args = append(args, "%"+kw+"%")
	}

	sqlQuery := fmt.Sprintf(
		"SELECT id, name, content, embedding, created_at FROM documents WHERE %s ORDER BY created_at DESC LIMIT ?",
		strings.Join(conditions, " OR "),
	)
	args = append(args, limit*4) // over-recall, ranking trims to limit

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		doc       Document
		embedding []float64
	}

	var candidates []candidate
	for rows.Next() {
		var c candidate
		var embeddingJSON sql.NullString
		var createdAt string
		if err := rows.Scan(&c.doc.ID, &c.doc.Name, &c.doc.Content, &embeddingJSON, &createdAt); err != nil {
			continue
		}
		if t, err := time.Parse("2006-01-02 15:04:05", createdAt); err == nil {
			c.doc.CreatedAt = t
		}
		if embeddingJSON.Valid && embeddingJSON.String != "" {
			_ = json.Unmarshal([]byte(embeddingJSON.String), &c.embedding) //nolint:errcheck // missing embedding means keyword-only rank
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("knowledge search failed: %w", err)
	}

	// Re-rank by similarity when possible
	if s.embedder != nil {
		if queryVec, err := s.embedder.Embed(ctx, query); err == nil {
			for i := range candidates {
				candidates[i].doc.Similarity = cosineSimilarity(queryVec, candidates[i].embedding)
			}
			sort.SliceStable(candidates, func(i, j int) bool {
				return candidates[i].doc.Similarity > candidates[j].doc.Similarity
			})
		}
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	docs := make([]Document, len(candidates))
	for i, c := range candidates {
		docs[i] = c.doc
	}
	return docs, nil
}
