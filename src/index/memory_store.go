package index

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
)

// InMemoryStore implements VectorStore for tests and lightweight deployments.
// Save and Load give it the same persist-to-disk convenience a FAISS-style
// local index offers.
type InMemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	records map[int64]ToolRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[int64]ToolRecord)}
}

func (s *InMemoryStore) Index(_ context.Context, records []ToolRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		s.records = make(map[int64]ToolRecord)
	}
	// Replace prior entries for re-indexed tools.
	for id, existing := range s.records {
		for _, rec := range records {
			if existing.Tool == rec.Tool {
				delete(s.records, id)
				break
			}
		}
	}
	for _, rec := range records {
		s.nextID++
		stored := rec
		stored.ID = s.nextID
		stored.Embedding = append([]float32(nil), rec.Embedding...)
		s.records[stored.ID] = stored
	}
	return nil
}

func (s *InMemoryStore) Search(_ context.Context, queryEmbedding []float32, k int) ([]ToolRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 {
		return nil, nil
	}
	scored := make([]ToolRecord, 0, len(s.records))
	for _, rec := range s.records {
		rec.Score = CosineSimilarity(queryEmbedding, rec.Embedding)
		scored = append(scored, rec)
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score == scored[j].Score {
			return scored[i].ID < scored[j].ID // deterministic tie order
		}
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Save writes the index to disk as JSON (atomic rename).
func (s *InMemoryStore) Save(path string) error {
	s.mu.RLock()
	records := make([]ToolRecord, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	s.mu.RUnlock()
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load replaces the store contents with a previously saved index.
func (s *InMemoryStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var records []ToolRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[int64]ToolRecord, len(records))
	s.nextID = 0
	for _, rec := range records {
		if rec.ID > s.nextID {
			s.nextID = rec.ID
		}
		s.records[rec.ID] = rec
	}
	return nil
}

var _ VectorStore = (*InMemoryStore)(nil)
