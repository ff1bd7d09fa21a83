package index

import (
	"context"
	"errors"
	"fmt"

	neo4j "github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jStore implements VectorStore on Neo4j's native vector index. Each tool
// becomes a (:ToolDocument) node; Search calls db.index.vector.queryNodes.
type Neo4jStore struct {
	driver    neo4j.DriverWithContext
	database  string
	indexName string
}

// ErrNeo4jUnavailable is returned when operations are attempted without a configured driver.
var ErrNeo4jUnavailable = errors.New("neo4j driver not configured")

// NewNeo4jStore constructs a Neo4j-backed store. database and indexName fall
// back to "neo4j" and "tool_documents" when empty.
func NewNeo4jStore(driver neo4j.DriverWithContext, database, indexName string) *Neo4jStore {
	if database == "" {
		database = "neo4j"
	}
	if indexName == "" {
		indexName = "tool_documents"
	}
	return &Neo4jStore{driver: driver, database: database, indexName: indexName}
}

// EnsureIndex creates the vector index if it does not exist.
func (ns *Neo4jStore) EnsureIndex(ctx context.Context, dimensions int) error {
	if ns == nil || ns.driver == nil {
		return ErrNeo4jUnavailable
	}
	session := ns.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: ns.database, AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
        CREATE VECTOR INDEX %s IF NOT EXISTS
        FOR (d:ToolDocument) ON (d.embedding)
        OPTIONS {indexConfig: {
            `+"`vector.dimensions`"+`: $dimensions,
            `+"`vector.similarity_function`"+`: 'cosine'
        }}`, ns.indexName)
	_, err := session.Run(ctx, query, map[string]any{"dimensions": dimensions})
	return err
}

func (ns *Neo4jStore) Index(ctx context.Context, records []ToolRecord) error {
	if ns == nil || ns.driver == nil {
		return ErrNeo4jUnavailable
	}
	session := ns.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: ns.database, AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return err
	}
	defer tx.Close(ctx)

	for _, rec := range records {
		embedding := make([]float64, len(rec.Embedding))
		for i, v := range rec.Embedding {
			embedding[i] = float64(v)
		}
		_, err := tx.Run(ctx, `
            MERGE (d:ToolDocument {tool: $tool})
            SET d.document = $document
            WITH d
            CALL db.create.setNodeVectorProperty(d, 'embedding', $embedding)
        `, map[string]any{
			"tool":      rec.Tool,
			"document":  rec.Document,
			"embedding": embedding,
		})
		if err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("index tool %s: %w", rec.Tool, err)
		}
	}
	return tx.Commit(ctx)
}

func (ns *Neo4jStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]ToolRecord, error) {
	if ns == nil || ns.driver == nil {
		return nil, ErrNeo4jUnavailable
	}
	if k <= 0 {
		return nil, nil
	}
	session := ns.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: ns.database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	embedding := make([]float64, len(queryEmbedding))
	for i, v := range queryEmbedding {
		embedding[i] = float64(v)
	}
	result, err := session.Run(ctx, `
        CALL db.index.vector.queryNodes($index, $k, $embedding)
        YIELD node, score
        RETURN node.tool AS tool, node.document AS document, score
        ORDER BY score DESC
    `, map[string]any{
		"index":     ns.indexName,
		"k":         k,
		"embedding": embedding,
	})
	if err != nil {
		return nil, err
	}

	var records []ToolRecord
	var id int64
	for result.Next(ctx) {
		record := result.Record()
		id++
		rec := ToolRecord{ID: id}
		if v, ok := record.Get("tool"); ok {
			rec.Tool, _ = v.(string)
		}
		if v, ok := record.Get("document"); ok {
			rec.Document, _ = v.(string)
		}
		if v, ok := record.Get("score"); ok {
			rec.Score, _ = v.(float64)
		}
		records = append(records, rec)
	}
	return records, result.Err()
}

func (ns *Neo4jStore) Count(ctx context.Context) (int, error) {
	if ns == nil || ns.driver == nil {
		return 0, ErrNeo4jUnavailable
	}
	session := ns.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: ns.database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `MATCH (d:ToolDocument) RETURN count(d) AS count`, nil)
	if err != nil {
		return 0, err
	}
	if result.Next(ctx) {
		if v, ok := result.Record().Get("count"); ok {
			if n, ok := v.(int64); ok {
				return int(n), nil
			}
		}
	}
	return 0, result.Err()
}

// Close shuts down the underlying driver.
func (ns *Neo4jStore) Close(ctx context.Context) error {
	if ns == nil || ns.driver == nil {
		return nil
	}
	return ns.driver.Close(ctx)
}

var _ VectorStore = (*Neo4jStore)(nil)
