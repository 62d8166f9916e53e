package compliance

import (
	"context"
	"sort"
	"sync"

	dErrors "sentinela/pkg/domain-errors"
)

// InMemoryStore keeps compliance state in maps for tests and DSN-less
// deployments.
type InMemoryStore struct {
	mu        sync.RWMutex
	consents  map[string][]ConsentRecord
	settings  map[string]PrivacySettings
	exports   map[string][]ExportRequest
	deletions map[string][]DeletionRequest
	documents []LegalDocument
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		consents:  make(map[string][]ConsentRecord),
		settings:  make(map[string]PrivacySettings),
		exports:   make(map[string][]ExportRequest),
		deletions: make(map[string][]DeletionRequest),
	}
}

func (s *InMemoryStore) InsertConsent(_ context.Context, record ConsentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consents[record.UserID] = append(s.consents[record.UserID], record)
	return nil
}

func (s *InMemoryStore) ConsentStatus(_ context.Context, userID string) ([]ConsentStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := make(map[string]ConsentRecord)
	for _, r := range s.consents[userID] {
		cur, ok := latest[r.ConsentType]
		if !ok || r.CreatedAt.After(cur.CreatedAt) {
			latest[r.ConsentType] = r
		}
	}
	statuses := make([]ConsentStatus, 0, len(latest))
	for _, r := range latest {
		statuses = append(statuses, ConsentStatus{
			ConsentType:  r.ConsentType,
			ConsentGiven: r.ConsentGiven,
			Version:      r.Version,
			UpdatedAt:    r.CreatedAt,
		})
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].ConsentType < statuses[j].ConsentType
	})
	return statuses, nil
}

func (s *InMemoryStore) GetPrivacySettings(_ context.Context, userID string) (*PrivacySettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	settings, ok := s.settings[userID]
	if !ok {
		return nil, nil
	}
	return &settings, nil
}

func (s *InMemoryStore) UpsertPrivacySettings(_ context.Context, settings PrivacySettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[settings.UserID] = settings
	return nil
}

func (s *InMemoryStore) CreateExportRequest(_ context.Context, request ExportRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.exports[request.UserID] {
		if existing.Status == RequestStatusPending {
			return dErrors.New(dErrors.CodeConflict, "an export request is already pending")
		}
	}
	s.exports[request.UserID] = append(s.exports[request.UserID], request)
	return nil
}

func (s *InMemoryStore) CreateDeletionRequest(_ context.Context, request DeletionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.deletions[request.UserID] {
		if existing.Status == RequestStatusPending {
			return dErrors.New(dErrors.CodeConflict, "a deletion request is already pending")
		}
	}
	s.deletions[request.UserID] = append(s.deletions[request.UserID], request)
	return nil
}

func (s *InMemoryStore) ListActiveLegalDocuments(_ context.Context) ([]LegalDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var docs []LegalDocument
	for _, d := range s.documents {
		if d.IsActive {
			docs = append(docs, d)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	return docs, nil
}

// SeedDocument inserts a legal document, for tests and fixtures.
func (s *InMemoryStore) SeedDocument(doc LegalDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, doc)
}

// Consents returns the full consent history for a user, for test assertions.
func (s *InMemoryStore) Consents(userID string) []ConsentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ConsentRecord{}, s.consents[userID]...)
}
