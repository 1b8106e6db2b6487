package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"clinical-intel/internal/cohort"
	"clinical-intel/internal/embedding"
	"clinical-intel/internal/extraction"
	"clinical-intel/internal/models"
	"clinical-intel/internal/repository"
	"clinical-intel/internal/vectorindex"

	"github.com/google/uuid"
)

// -- Mock Patient Store --

type mockPatientStore struct {
	patients map[int64]*models.Patient
	calls    int
}

func newMockPatientStore(patients ...models.Patient) *mockPatientStore {
	m := &mockPatientStore{patients: make(map[int64]*models.Patient)}
	for i := range patients {
		m.patients[patients[i].ID] = &patients[i]
	}
	return m
}

func (m *mockPatientStore) GetByID(_ context.Context, id int64) (*models.Patient, error) {
	m.calls++
	p, ok := m.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockPatientStore) GetByMRN(_ context.Context, mrn string) (*models.Patient, error) {
	m.calls++
	for _, p := range m.patients {
		if p.MRN == mrn {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockPatientStore) Details(ctx context.Context, id int64) (*models.PatientDetails, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PatientDetails{Patient: *p, EncounterCount: 2}, nil
}

func (m *mockPatientStore) ListIDs(_ context.Context) ([]int64, error) {
	ids := make([]int64, 0, len(m.patients))
	for id := range m.patients {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// -- Mock Note Store --

type mockNoteStore struct {
	mu         sync.Mutex
	notes      map[int64]*models.ClinicalNote
	hits       []models.NoteHit
	searches   int
	lastLimit  int
	lastType   *models.NoteType
	embeddings map[int64][]float32
	failEmbed  map[int64]bool
}

func newMockNoteStore(notes ...models.ClinicalNote) *mockNoteStore {
	m := &mockNoteStore{
		notes:      make(map[int64]*models.ClinicalNote),
		embeddings: make(map[int64][]float32),
		failEmbed:  make(map[int64]bool),
	}
	for i := range notes {
		m.notes[notes[i].ID] = &notes[i]
	}
	return m
}

func (m *mockNoteStore) GetByID(_ context.Context, id int64) (*models.ClinicalNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return n, nil
}

func (m *mockNoteStore) SearchSimilar(_ context.Context, _ []float32, noteType *models.NoteType, limit int) ([]models.NoteHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches++
	m.lastLimit = limit
	m.lastType = noteType
	out := m.hits
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockNoteStore) LatestByPatient(_ context.Context, ids []int64) (map[int64]models.ClinicalNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[int64]bool)
	for _, id := range ids {
		want[id] = true
	}
	out := make(map[int64]models.ClinicalNote)
	for _, n := range m.notes {
		if !want[n.PatientID] {
			continue
		}
		cur, ok := out[n.PatientID]
		if !ok || n.NoteDate.After(cur.NoteDate) || (n.NoteDate.Equal(cur.NoteDate) && n.ID > cur.ID) {
			out[n.PatientID] = *n
		}
	}
	return out, nil
}

func (m *mockNoteStore) sorted(filter func(*models.ClinicalNote) bool) []models.ClinicalNote {
	var out []models.ClinicalNote
	for _, n := range m.notes {
		if filter(n) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockNoteStore) ListWithoutEmbedding(_ context.Context, _ int) ([]models.ClinicalNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(n *models.ClinicalNote) bool { _, ok := m.embeddings[n.ID]; return !ok }), nil
}

func (m *mockNoteStore) ListWithoutTerms(_ context.Context, _ int) ([]models.ClinicalNote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*models.ClinicalNote) bool { return true }), nil
}

func (m *mockNoteStore) UpsertEmbedding(_ context.Context, noteID, _ int64, _ string, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEmbed[noteID] {
		return errors.New("disk full")
	}
	m.embeddings[noteID] = vec
	return nil
}

// -- Mock Term Store --

type mockTermStore struct {
	mu    sync.Mutex
	terms map[int64][]models.ExtractedTerm
	runs  map[int64]uuid.UUID
}

func newMockTermStore() *mockTermStore {
	return &mockTermStore{terms: make(map[int64][]models.ExtractedTerm), runs: make(map[int64]uuid.UUID)}
}

func (m *mockTermStore) ReplaceForNote(_ context.Context, noteID int64, runID uuid.UUID, _ string, terms []models.ExtractedTerm) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terms[noteID] = terms
	m.runs[noteID] = runID
	return nil
}

func (m *mockTermStore) ListByNote(_ context.Context, noteID int64) ([]models.MedicalTerm, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MedicalTerm
	for _, t := range m.terms[noteID] {
		out = append(out, models.MedicalTerm{NoteID: noteID, Term: t.Term, Category: t.Category})
	}
	return out, nil
}

// -- Mock Embedding Store --

type mockEmbeddingStore struct {
	mu    sync.Mutex
	saved map[int64]models.PatientEmbedding
	saves int
}

func newMockEmbeddingStore() *mockEmbeddingStore {
	return &mockEmbeddingStore{saved: make(map[int64]models.PatientEmbedding)}
}

func (m *mockEmbeddingStore) Save(_ context.Context, e *models.PatientEmbedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.saved[e.PatientID] = *e
	return nil
}

func (m *mockEmbeddingStore) Meta(_ context.Context, ids []int64) (map[int64]models.PatientEmbedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int64]models.PatientEmbedding)
	for _, id := range ids {
		if e, ok := m.saved[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (m *mockEmbeddingStore) Get(_ context.Context, id int64) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.saved[id]
	if !ok {
		return nil, vectorindex.ErrNotFound
	}
	return e.Vector, nil
}

func (m *mockEmbeddingStore) ChangedSince(_ context.Context, since time.Time, fn func(int64, []float32, time.Time) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.saved {
		if e.UpdatedAt.Before(since) {
			continue
		}
		if err := fn(id, e.Vector, e.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockEmbeddingStore) All(_ context.Context, fn func(int64, []float32) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.saved {
		if err := fn(id, e.Vector); err != nil {
			return err
		}
	}
	return nil
}

// -- Mock Analytics Store --

type mockAnalyticsStore struct {
	activity  []models.DailyActivity
	lastSince time.Time
}

func (m *mockAnalyticsStore) Overview(context.Context) (*models.Overview, error) {
	return &models.Overview{TotalPatients: 3}, nil
}

func (m *mockAnalyticsStore) Departments(context.Context) ([]models.DepartmentStat, error) {
	return nil, nil
}

func (m *mockAnalyticsStore) TopDiagnoses(_ context.Context, limit int) ([]models.DiagnosisCount, error) {
	return []models.DiagnosisCount{{Diagnosis: "Asthma", Count: limit}}, nil
}

func (m *mockAnalyticsStore) AgeDistribution(context.Context) ([]models.AgeBucket, error) {
	return nil, errors.New("timeout")
}

func (m *mockAnalyticsStore) NoteActivity(_ context.Context, since time.Time) ([]models.DailyActivity, error) {
	m.lastSince = since
	return m.activity, nil
}

// -- Fakes --

type recordingCompleter struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (c *recordingCompleter) Complete(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.reply, c.err
}

// failingEmbedder wraps another embedder and fails for texts in fail.
type failingEmbedder struct {
	inner embedding.Embedder
	fail  map[string]bool
}

func (f *failingEmbedder) Name() string    { return f.inner.Name() }
func (f *failingEmbedder) Dimensions() int { return f.inner.Dimensions() }

func (f *failingEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	for _, in := range inputs {
		if f.fail[in] {
			return nil, errors.New("embedding backend unavailable")
		}
	}
	return f.inner.Embed(ctx, inputs)
}

// shortEmbedder drops the last vector of multi-text batches.
type shortEmbedder struct {
	embedding.Embedder
}

func (s shortEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	vecs, err := s.Embedder.Embed(ctx, inputs)
	if err != nil || len(vecs) < 2 {
		return vecs, err
	}
	return vecs[:len(vecs)-1], nil
}

// emptyCohortStore returns no clinical data; enough for service-level tests.
type emptyCohortStore struct{}

func (emptyCohortStore) Demographics(context.Context, []int64) (map[int64]cohort.Demographics, error) {
	return map[int64]cohort.Demographics{}, nil
}

func (emptyCohortStore) TermSets(context.Context, []int64) (map[int64]extraction.TermSet, error) {
	return map[int64]extraction.TermSet{}, nil
}

func (emptyCohortStore) MedicationOrders(context.Context, []int64, []models.MedicationClass) ([]models.MedicationOrder, error) {
	return nil, nil
}

func (emptyCohortStore) LabResults(context.Context, []int64) ([]models.LabResult, error) {
	return nil, nil
}
