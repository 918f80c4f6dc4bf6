package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ResultStore owns the generation results slot.
type ResultStore struct {
	backend Backend
	log     *zap.Logger
}

func NewResultStore(backend Backend, log *zap.Logger) *ResultStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResultStore{backend: backend, log: log}
}

// Save overwrites the previous result.
func (r *ResultStore) Save(ctx context.Context, res GenerationResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	return r.backend.Store(ctx, ResultsSlot, data)
}

// Load returns the stored result and leaves it in place. Unparseable or empty
// payloads are discarded and read as absent.
func (r *ResultStore) Load(ctx context.Context) (GenerationResult, bool) {
	data, err := r.backend.Load(ctx, ResultsSlot)
	if errors.Is(err, ErrNotFound) {
		return GenerationResult{}, false
	}
	if err != nil && !errors.Is(err, ErrCorrupt) {
		r.log.Warn("failed to read results", zap.Error(err))
		return GenerationResult{}, false
	}
	if err == nil {
		var res GenerationResult
		if err = json.Unmarshal(data, &res); err == nil {
			if !res.Empty() {
				return res, true
			}
			err = errors.New("no ideas, hashtags or trends")
		}
	}

	r.log.Warn("discarding stored results", zap.Error(err))
	if rmErr := r.Discard(ctx); rmErr != nil {
		r.log.Error("failed to discard results", zap.Error(rmErr))
	}
	return GenerationResult{}, false
}

// Discard removes the stored result.
func (r *ResultStore) Discard(ctx context.Context) error {
	return r.backend.Remove(ctx, ResultsSlot)
}
