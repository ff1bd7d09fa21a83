package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements VectorStore using Postgres + pgvector.
//
// Expected schema:
//
//	CREATE TABLE tool_documents (
//	    id        BIGSERIAL PRIMARY KEY,
//	    tool      TEXT UNIQUE NOT NULL,
//	    document  TEXT NOT NULL,
//	    embedding VECTOR NOT NULL
//	);
type PostgresStore struct {
	DB *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and returns a pgvector-backed store.
func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (ps *PostgresStore) Index(ctx context.Context, records []ToolRecord) error {
	if ps == nil || ps.DB == nil {
		return nil
	}
	for _, rec := range records {
		jsonEmbed, _ := json.Marshal(rec.Embedding)
		_, err := ps.DB.Exec(ctx, `
                INSERT INTO tool_documents (tool, document, embedding)
                VALUES ($1, $2, $3::vector)
                ON CONFLICT (tool) DO UPDATE
                SET document = EXCLUDED.document, embedding = EXCLUDED.embedding;
        `, rec.Tool, rec.Document, vectorFromJSON(jsonEmbed))
		if err != nil {
			return fmt.Errorf("index tool %s: %w", rec.Tool, err)
		}
	}
	return nil
}

func (ps *PostgresStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]ToolRecord, error) {
	if ps == nil || ps.DB == nil {
		return nil, nil
	}
	jsonEmbed, _ := json.Marshal(queryEmbedding)
	rows, err := ps.DB.Query(ctx, `
        SELECT id, tool, document, embedding::text, (embedding <=> $1::vector) AS distance
        FROM tool_documents
        ORDER BY embedding <=> $1::vector
        LIMIT $2;
        `, vectorFromJSON(jsonEmbed), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ToolRecord
	for rows.Next() {
		var rec ToolRecord
		var embeddingText string
		var distance float64
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.Document, &embeddingText, &distance); err != nil {
			return nil, err
		}
		rec.Embedding = parseVector(embeddingText)
		rec.Score = 1 - distance // cosine distance -> similarity
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (ps *PostgresStore) Count(ctx context.Context) (int, error) {
	if ps == nil || ps.DB == nil {
		return 0, nil
	}
	var count int
	if err := ps.DB.QueryRow(ctx, `SELECT COUNT(*) FROM tool_documents;`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Close releases the connection pool.
func (ps *PostgresStore) Close() {
	if ps != nil && ps.DB != nil {
		ps.DB.Close()
	}
}

var _ VectorStore = (*PostgresStore)(nil)

func vectorFromJSON(jsonEmbed []byte) string {
	return fmt.Sprintf("[%s]", strings.Trim(string(jsonEmbed), "[]"))
}

func parseVector(text string) []float32 {
	text = strings.Trim(text, "[]")
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	vec := make([]float32, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			continue
		}
		vec = append(vec, float32(f))
	}
	return vec
}
