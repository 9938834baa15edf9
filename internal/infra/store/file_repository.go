package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/candleco/callback-service/internal/entity"
	"github.com/candleco/callback-service/internal/usecase"
)

// FileLeadRepository is the local fallback: one JSON array on disk, every
// operation a whole-collection read-modify-write under a mutex. Safe for a
// single process only; nothing coordinates writers across processes.
type FileLeadRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileLeadRepository(path string) (*FileLeadRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, err
		}
	}
	return &FileLeadRepository{path: path}, nil
}

func (r *FileLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, err := r.load()
	if err != nil {
		return err
	}
	for _, existing := range leads {
		if existing.LeadID == lead.LeadID {
			return usecase.ErrDuplicateLead
		}
	}
	leads = append(leads, lead)
	return r.save(leads)
}

func (r *FileLeadRepository) Update(ctx context.Context, leadID string, update entity.LeadUpdate) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, lead := range leads {
		if lead.LeadID != leadID {
			continue
		}
		update.Apply(lead)
		lead.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		if err := r.save(leads); err != nil {
			return nil, err
		}
		return lead, nil
	}
	return nil, usecase.ErrLeadNotFound
}

func (r *FileLeadRepository) AppendEvent(ctx context.Context, leadID string, event entity.LeadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, err := r.load()
	if err != nil {
		return err
	}
	for _, lead := range leads {
		if lead.LeadID != leadID {
			continue
		}
		lead.Events = append(lead.Events, event)
		lead.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		return r.save(leads)
	}
	return usecase.ErrLeadNotFound
}

func (r *FileLeadRepository) List(ctx context.Context) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, err := r.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].CreatedAt > leads[j].CreatedAt
	})
	return leads, nil
}

func (r *FileLeadRepository) GetByID(ctx context.Context, leadID string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	leads, err := r.load()
	if err != nil {
		return nil, err
	}
	for _, lead := range leads {
		if lead.LeadID == leadID {
			return lead, nil
		}
	}
	return nil, usecase.ErrLeadNotFound
}

func (r *FileLeadRepository) load() ([]*entity.Lead, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	var leads []*entity.Lead
	if err := json.Unmarshal(raw, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *FileLeadRepository) save(leads []*entity.Lead) error {
	raw, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, raw, 0o644)
}
