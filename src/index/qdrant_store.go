package index

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// qdrantStatus supports both `status: "ok"` and `status: {"error":"..."}`.
type qdrantStatus struct {
	State string
	Error string
}

func (s *qdrantStatus) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.State = strings.ToLower(v)
		return nil
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	if obj.Error != "" {
		s.State = "error"
		s.Error = obj.Error
	}
	return nil
}

type qdrantEnvelope[T any] struct {
	Status qdrantStatus `json:"status"`
	Time   float64      `json:"time"`
	Result T            `json:"result"`
}

type qdrantPointResult struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

type qdrantCountResult struct {
	Count int `json:"count"`
}

// QdrantStore implements VectorStore over Qdrant's REST API.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
	mu         sync.Mutex
	nextID     int64
}

// NewQdrantStore creates a Qdrant-backed VectorStore implementation.
func NewQdrantStore(baseURL, collection, apiKey string) *QdrantStore {
	if baseURL == "" {
		baseURL = "http://localhost:6333"
	}
	return &QdrantStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// EnsureCollection creates the collection if it does not exist yet
// (idempotent: "already exists" is not an error).
func (qs *QdrantStore) EnsureCollection(ctx context.Context, vectorSize int) error {
	req := map[string]any{
		"vectors": map[string]any{"size": vectorSize, "distance": "Cosine"},
	}
	var resp qdrantEnvelope[json.RawMessage]
	err := qs.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", url.PathEscape(qs.collection)), req, &resp)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return err
	}
	if resp.Status.Error != "" && !strings.Contains(strings.ToLower(resp.Status.Error), "already exists") {
		return errors.New(resp.Status.Error)
	}
	return nil
}

func (qs *QdrantStore) Index(ctx context.Context, records []ToolRecord) error {
	if qs == nil {
		return errors.New("nil qdrant store")
	}
	if qs.collection == "" {
		return errors.New("qdrant collection is empty")
	}
	points := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		points = append(points, map[string]any{
			"id":     qs.generateID(),
			"vector": rec.Embedding,
			"payload": map[string]any{
				"tool":     rec.Tool,
				"document": rec.Document,
			},
		})
	}
	req := map[string]any{"points": points}
	var resp qdrantEnvelope[json.RawMessage]
	if err := qs.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points", url.PathEscape(qs.collection)), req, &resp); err != nil {
		return err
	}
	if !strings.EqualFold(resp.Status.State, "ok") && resp.Status.Error != "" {
		return errors.New(resp.Status.Error)
	}
	return nil
}

func (qs *QdrantStore) Search(ctx context.Context, queryEmbedding []float32, k int) ([]ToolRecord, error) {
	if qs == nil {
		return nil, errors.New("nil qdrant store")
	}
	if k <= 0 {
		return nil, nil
	}
	reqBody := map[string]any{
		"vector":       queryEmbedding,
		"limit":        k,
		"with_payload": true,
	}
	var resp qdrantEnvelope[[]qdrantPointResult]
	if err := qs.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", url.PathEscape(qs.collection)), reqBody, &resp); err != nil {
		return nil, err
	}
	results := make([]ToolRecord, 0, len(resp.Result))
	for _, point := range resp.Result {
		id, _ := parseQdrantID(point.ID)
		rec := ToolRecord{ID: id, Score: point.Score}
		if v, ok := point.Payload["tool"].(string); ok {
			rec.Tool = v
		}
		if v, ok := point.Payload["document"].(string); ok {
			rec.Document = v
		}
		results = append(results, rec)
	}
	return results, nil
}

func (qs *QdrantStore) Count(ctx context.Context) (int, error) {
	if qs == nil {
		return 0, nil
	}
	req := map[string]any{"exact": true}
	var resp qdrantEnvelope[qdrantCountResult]
	if err := qs.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", url.PathEscape(qs.collection)), req, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

func (qs *QdrantStore) do(ctx context.Context, method, path string, body any, out any) error {
	u := qs.baseURL + path

	var buf io.ReadWriter
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewBuffer(b)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if qs.apiKey != "" {
		req.Header.Set("api-key", qs.apiKey)
	}
	resp, err := qs.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("qdrant %s %s -> http %d: %s",
			method, u, resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if out != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, out); err != nil {
			return err
		}
	}
	return nil
}

func (qs *QdrantStore) generateID() int64 {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.nextID++
	return qs.nextID
}

func parseQdrantID(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	var idInt int64
	if err := json.Unmarshal(raw, &idInt); err == nil {
		return idInt, nil
	}
	var idStr string
	if err := json.Unmarshal(raw, &idStr); err == nil {
		if val, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			return val, nil
		}
	}
	return 0, errors.New("unrecognised qdrant id")
}

var _ VectorStore = (*QdrantStore)(nil)
