package memory

import (
	"context"
	"sync"

	"github.com/courtwire/courtwire/internal/domain/rawpayload"
)

type RawPayloadRepository struct {
	mu    sync.RWMutex
	items map[string]rawpayload.Payload
}

func NewRawPayloadRepository() *RawPayloadRepository {
	return &RawPayloadRepository{items: make(map[string]rawpayload.Payload)}
}

func (r *RawPayloadRepository) UpsertMany(_ context.Context, items []rawpayload.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		key := item.Source + "|" + item.EventID + "|" + item.Endpoint
		r.items[key] = item
	}
	return nil
}

// Len reports how many distinct payload slots are retained.
func (r *RawPayloadRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}
