package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/doclane/doclane/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/doclane/doclane/internal/core/domain"
	"github.com/doclane/doclane/internal/core/ports/driven"
)

// Store is a SQLite-backed metadata store for documents, chunks and
// summaries.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.DocumentStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.doclane/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".doclane", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, filename, file_type, size_bytes, status, chunk_count,
			 storage_ref, error_message, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			file_type = excluded.file_type,
			size_bytes = excluded.size_bytes,
			status = excluded.status,
			chunk_count = excluded.chunk_count,
			storage_ref = excluded.storage_ref,
			error_message = excluded.error_message,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, doc.ID, doc.Filename, string(doc.FileType), doc.SizeBytes, string(doc.Status),
		doc.ChunkCount, doc.StorageRef, doc.ErrorMessage,
		nullTime(doc.ExpiresAt), doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, file_type, size_bytes, status, chunk_count,
		       storage_ref, error_message, expires_at, created_at, updated_at
		FROM documents WHERE id = ?
	`, id)

	return scanDocument(row)
}

// ListDocuments returns all documents ordered by creation time.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT id, filename, file_type, size_bytes, status, chunk_count,
		       storage_ref, error_message, expires_at, created_at, updated_at
		FROM documents ORDER BY created_at, id
	`)
}

// ListByStatus returns documents in the given status.
func (s *Store) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT id, filename, file_type, size_bytes, status, chunk_count,
		       storage_ref, error_message, expires_at, created_at, updated_at
		FROM documents WHERE status = ? ORDER BY created_at, id
	`, string(status))
}

// ListExpired returns documents whose ExpiresAt is before the cutoff.
func (s *Store) ListExpired(ctx context.Context, cutoff time.Time) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT id, filename, file_type, size_bytes, status, chunk_count,
		       storage_ref, error_message, expires_at, created_at, updated_at
		FROM documents WHERE expires_at IS NOT NULL AND expires_at < ?
		ORDER BY created_at, id
	`, cutoff)
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// SaveChunks replaces the chunk set for a document wholesale.
func (s *Store) SaveChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, seq_index, start_offset, end_offset, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, documentID, chunk.SeqIndex,
			chunk.StartOffset, chunk.EndOffset, chunk.Content, embeddingBlob); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks retrieves all chunks for a document, ordered by SeqIndex.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, seq_index, start_offset, end_offset, content, embedding
		FROM chunks WHERE document_id = ?
		ORDER BY seq_index
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, seq_index, start_offset, end_offset, content, embedding
		FROM chunks WHERE id = ?
	`, id)

	return scanChunkRow(row)
}

// SaveSummary stores or replaces the summary for a document.
func (s *Store) SaveSummary(ctx context.Context, summary *domain.Summary) error {
	keyPointsJSON, err := json.Marshal(summary.KeyPoints)
	if err != nil {
		return fmt.Errorf("marshalling key points: %w", err)
	}
	paragraphsJSON, err := json.Marshal(summary.Paragraphs)
	if err != nil {
		return fmt.Errorf("marshalling paragraphs: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO summaries (document_id, text, key_points, paragraphs, personal_info, word_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			text = excluded.text,
			key_points = excluded.key_points,
			paragraphs = excluded.paragraphs,
			personal_info = excluded.personal_info,
			word_count = excluded.word_count,
			created_at = excluded.created_at
	`, summary.DocumentID, summary.Text, string(keyPointsJSON), string(paragraphsJSON),
		summary.PersonalInfo, summary.WordCount, summary.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving summary: %w", err)
	}
	return nil
}

// GetSummary retrieves the summary for a document.
func (s *Store) GetSummary(ctx context.Context, documentID string) (*domain.Summary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, text, key_points, paragraphs, personal_info, word_count, created_at
		FROM summaries WHERE document_id = ?
	`, documentID)

	var summary domain.Summary
	var keyPointsJSON, paragraphsJSON string
	if err := row.Scan(&summary.DocumentID, &summary.Text, &keyPointsJSON,
		&paragraphsJSON, &summary.PersonalInfo, &summary.WordCount, &summary.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning summary: %w", err)
	}

	if err := json.Unmarshal([]byte(keyPointsJSON), &summary.KeyPoints); err != nil {
		return nil, fmt.Errorf("unmarshaling key points: %w", err)
	}
	if err := json.Unmarshal([]byte(paragraphsJSON), &summary.Paragraphs); err != nil {
		return nil, fmt.Errorf("unmarshaling paragraphs: %w", err)
	}

	return &summary, nil
}

// DeleteDocument removes a document, its chunks and its summary.
// Deleting an absent document is not an error.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

// nullTime maps a zero time to SQL NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// scanDocument scans a single document row.
func scanDocument(row *sql.Row) (*domain.Document, error) {
	var doc domain.Document
	var fileType, status string
	var expiresAt sql.NullTime

	if err := row.Scan(&doc.ID, &doc.Filename, &fileType, &doc.SizeBytes, &status,
		&doc.ChunkCount, &doc.StorageRef, &doc.ErrorMessage,
		&expiresAt, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.FileType = domain.FileType(fileType)
	doc.Status = domain.Status(status)
	if expiresAt.Valid {
		doc.ExpiresAt = expiresAt.Time
	}

	return &doc, nil
}

// scanDocumentRows scans a document from *sql.Rows.
func scanDocumentRows(rows *sql.Rows) (*domain.Document, error) {
	var doc domain.Document
	var fileType, status string
	var expiresAt sql.NullTime

	if err := rows.Scan(&doc.ID, &doc.Filename, &fileType, &doc.SizeBytes, &status,
		&doc.ChunkCount, &doc.StorageRef, &doc.ErrorMessage,
		&expiresAt, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.FileType = domain.FileType(fileType)
	doc.Status = domain.Status(status)
	if expiresAt.Valid {
		doc.ExpiresAt = expiresAt.Time
	}

	return &doc, nil
}

// scanChunk scans a chunk from *sql.Rows.
func scanChunk(rows *sql.Rows) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SeqIndex,
		&chunk.StartOffset, &chunk.EndOffset, &chunk.Content, &embeddingBlob); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}

// scanChunkRow scans a chunk from *sql.Row.
func scanChunkRow(row *sql.Row) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SeqIndex,
		&chunk.StartOffset, &chunk.EndOffset, &chunk.Content, &embeddingBlob); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	return &chunk, nil
}
