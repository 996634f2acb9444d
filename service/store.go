package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/askar0007amirkhanov/ai-precheck/config"
	"github.com/askar0007amirkhanov/ai-precheck/model"
)

// ErrReportNotFound is returned when a report id is unknown to the store.
var ErrReportNotFound = errors.New("report not found")

// ReportStore persists compliance report records. Implementations:
// MemoryReportStore for single-node deployments and PostgresReportStore
// for shared persistence.
type ReportStore interface {
	Save(ctx context.Context, rec *model.ReportRecord) error
	Get(ctx context.Context, id string) (*model.ReportRecord, error)
	ListByClient(ctx context.Context, clientID string) ([]*model.ReportRecord, error)
	CountSince(ctx context.Context, clientID string, since time.Time) (int, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// MemoryReportStore is an in-memory report store. Oldest records are
// evicted once maxReports is exceeded.
type MemoryReportStore struct {
	reports    map[string]*model.ReportRecord
	mu         sync.RWMutex
	maxReports int // 0 = unlimited
}

func NewMemoryReportStore(cfg *config.StoreConfig) *MemoryReportStore {
	maxReports := cfg.MaxReports
	if maxReports < 0 {
		maxReports = 0
	}
	slog.Info("report store initialized", "driver", "memory", "max_reports", maxReports)
	return &MemoryReportStore{
		reports:    make(map[string]*model.ReportRecord),
		maxReports: maxReports,
	}
}

func (s *MemoryReportStore) Save(_ context.Context, rec *model.ReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.reports[rec.ID] = rec

	s.cleanupIfNeeded()
	return nil
}

func (s *MemoryReportStore) Get(_ context.Context, id string) (*model.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return rec, nil
}

func (s *MemoryReportStore) ListByClient(_ context.Context, clientID string) ([]*model.ReportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.ReportRecord
	for _, rec := range s.reports {
		if rec.ClientID == clientID {
			result = append(result, rec)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryReportStore) CountSince(_ context.Context, clientID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.reports {
		if rec.ClientID == clientID && !rec.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryReportStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reports[id]; !ok {
		return ErrReportNotFound
	}
	delete(s.reports, id)
	return nil
}

func (s *MemoryReportStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports), nil
}

// cleanupIfNeeded removes oldest reports if the store exceeds maxReports.
// Must be called with lock held.
func (s *MemoryReportStore) cleanupIfNeeded() {
	if s.maxReports <= 0 {
		return // Unlimited
	}

	if len(s.reports) <= s.maxReports {
		return
	}

	records := make([]*model.ReportRecord, 0, len(s.reports))
	for _, rec := range s.reports {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	removeCount := len(records) - s.maxReports
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old report",
			"report_id", records[i].ID,
			"created_at", records[i].CreatedAt,
		)
		delete(s.reports, records[i].ID)
	}
}

// StoredChecklist is a compiled custom checklist held for later checks.
type StoredChecklist struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	ClientID  string           `json:"client_id"`
	Checklist *model.Checklist `json:"checklist"`
	Notes     []string         `json:"notes,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// ChecklistStore is an in-memory store for uploaded custom checklists.
// Checklists are small and client-scoped, so memory is always enough.
type ChecklistStore struct {
	checklists map[string]*StoredChecklist
	mu         sync.RWMutex
}

func NewChecklistStore() *ChecklistStore {
	return &ChecklistStore{checklists: make(map[string]*StoredChecklist)}
}

func (s *ChecklistStore) Save(cl *StoredChecklist) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cl.CreatedAt.IsZero() {
		cl.CreatedAt = time.Now()
	}
	s.checklists[cl.ID] = cl
}

func (s *ChecklistStore) Get(id string) *StoredChecklist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checklists[id]
}

func (s *ChecklistStore) ListByClient(clientID string) []*StoredChecklist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*StoredChecklist
	for _, cl := range s.checklists {
		if cl.ClientID == clientID {
			result = append(result, cl)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}

func (s *ChecklistStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checklists, id)
}
