package portfoliorepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/projectshelf/internal/domain/portfolio"
)

// MemoryRepository keeps portfolios in process memory for tests/dev.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]portfolio.Portfolio
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]portfolio.Portfolio)}
}

func (r *MemoryRepository) Create(_ context.Context, p portfolio.Portfolio) (portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.items[p.ID] = clonePortfolio(p)
	return clonePortfolio(p), nil
}

func (r *MemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]portfolio.Portfolio, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]portfolio.Portfolio, 0)
	for _, p := range r.items {
		if p.UserID == ownerID {
			out = append(out, clonePortfolio(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) GetForOwner(_ context.Context, id, ownerID string) (portfolio.Portfolio, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok || p.UserID != ownerID {
		return portfolio.Portfolio{}, false, nil
	}
	return clonePortfolio(p), true, nil
}

func (r *MemoryRepository) Update(_ context.Context, p portfolio.Portfolio) (portfolio.Portfolio, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[p.ID]
	if !ok || existing.UserID != p.UserID {
		return portfolio.Portfolio{}, false, nil
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.items[p.ID] = clonePortfolio(p)
	return clonePortfolio(p), true, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id, ownerID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.UserID != ownerID {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func (r *MemoryRepository) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, p := range r.items {
		if p.UserID == ownerID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

// clonePortfolio detaches the slices so callers cannot mutate stored state.
func clonePortfolio(p portfolio.Portfolio) portfolio.Portfolio {
	studies := make([]portfolio.CaseStudy, len(p.CaseStudies))
	for i, cs := range p.CaseStudies {
		cs.Images = cloneStrings(cs.Images)
		cs.Tools = cloneStrings(cs.Tools)
		cs.Timeline = cloneStrings(cs.Timeline)
		cs.VideoLinks = cloneStrings(cs.VideoLinks)
		studies[i] = cs
	}
	p.CaseStudies = studies
	return p
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

var _ portfolio.Repository = (*MemoryRepository)(nil)
