package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clinical-intel/internal/api/handlers"
	"clinical-intel/internal/cohort"
	"clinical-intel/internal/dto"
	"clinical-intel/internal/embedding"
	"clinical-intel/internal/extraction"
	"clinical-intel/internal/models"
	"clinical-intel/internal/repository"
	"clinical-intel/internal/service"
	"clinical-intel/internal/vectorindex"
	"clinical-intel/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePatients struct {
	byID map[int64]models.Patient
}

func (f *fakePatients) GetByID(_ context.Context, id int64) (*models.Patient, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (f *fakePatients) GetByMRN(_ context.Context, mrn string) (*models.Patient, error) {
	for _, p := range f.byID {
		if p.MRN == mrn {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePatients) Details(ctx context.Context, id int64) (*models.PatientDetails, error) {
	p, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.PatientDetails{Patient: *p, EncounterCount: 1}, nil
}

func (f *fakePatients) ListIDs(context.Context) ([]int64, error) {
	return []int64{1, 2, 3, 4}, nil
}

type fakeNotes struct {
	hits []models.NoteHit
}

func (f *fakeNotes) GetByID(_ context.Context, id int64) (*models.ClinicalNote, error) {
	if id == 5 {
		return &models.ClinicalNote{ID: 5, PatientID: 1, Text: "Febrile, started cefepime."}, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeNotes) SearchSimilar(_ context.Context, _ []float32, _ *models.NoteType, limit int) ([]models.NoteHit, error) {
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeNotes) LatestByPatient(context.Context, []int64) (map[int64]models.ClinicalNote, error) {
	return map[int64]models.ClinicalNote{}, nil
}

func (f *fakeNotes) ListWithoutEmbedding(context.Context, int) ([]models.ClinicalNote, error) {
	return nil, nil
}

func (f *fakeNotes) ListWithoutTerms(context.Context, int) ([]models.ClinicalNote, error) {
	return nil, nil
}

func (f *fakeNotes) UpsertEmbedding(context.Context, int64, int64, string, []float32) error {
	return nil
}

type fakeTerms struct{}

func (fakeTerms) ReplaceForNote(context.Context, int64, uuid.UUID, string, []models.ExtractedTerm) error {
	return nil
}

func (fakeTerms) ListByNote(context.Context, int64) ([]models.MedicalTerm, error) {
	return nil, nil
}

type fakeEmbeddings struct{}

func (fakeEmbeddings) Save(context.Context, *models.PatientEmbedding) error { return nil }

func (fakeEmbeddings) Meta(context.Context, []int64) (map[int64]models.PatientEmbedding, error) {
	return map[int64]models.PatientEmbedding{}, nil
}

func (fakeEmbeddings) All(context.Context, func(int64, []float32) error) error { return nil }

type fakeAnalytics struct{}

func (fakeAnalytics) Overview(context.Context) (*models.Overview, error) {
	return &models.Overview{TotalPatients: 4, TotalNotes: 9}, nil
}

func (fakeAnalytics) Departments(context.Context) ([]models.DepartmentStat, error) {
	return nil, errors.New("connection reset by peer")
}

func (fakeAnalytics) TopDiagnoses(context.Context, int) ([]models.DiagnosisCount, error) {
	return nil, nil
}

func (fakeAnalytics) AgeDistribution(context.Context) ([]models.AgeBucket, error) {
	return nil, nil
}

func (fakeAnalytics) NoteActivity(context.Context, time.Time) ([]models.DailyActivity, error) {
	return nil, nil
}

type fakeClinical struct{}

func (fakeClinical) Demographics(_ context.Context, ids []int64) (map[int64]cohort.Demographics, error) {
	out := make(map[int64]cohort.Demographics)
	for _, id := range ids {
		out[id] = cohort.Demographics{Patient: models.Patient{ID: id, AgeYears: int(id) + 4, Gender: "F"}, PrimaryDiagnosis: "B-cell ALL"}
	}
	return out, nil
}

func (fakeClinical) TermSets(context.Context, []int64) (map[int64]extraction.TermSet, error) {
	return map[int64]extraction.TermSet{
		1: extraction.NewTermSet("fever", "vincristine"),
		2: extraction.NewTermSet("fever"),
	}, nil
}

func (fakeClinical) MedicationOrders(_ context.Context, ids []int64, _ []models.MedicationClass) ([]models.MedicationOrder, error) {
	var out []models.MedicationOrder
	for _, id := range ids {
		if id == 2 || id == 3 {
			out = append(out, models.MedicationOrder{ID: id * 100, PatientID: id, Name: "Ondansetron", Class: models.MedicationClassAntiemetic})
		}
	}
	return out, nil
}

func (fakeClinical) LabResults(context.Context, []int64) ([]models.LabResult, error) {
	day := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return []models.LabResult{
		{ID: 1, PatientID: 1, TestName: "WBC", Value: "15", Unit: "K/uL", ResultDate: day},
		{ID: 2, PatientID: 2, TestName: "WBC", Value: "10", Unit: "K/uL", ResultDate: day},
		{ID: 3, PatientID: 3, TestName: "WBC", Value: "12", Unit: "K/uL", ResultDate: day},
		{ID: 4, PatientID: 4, TestName: "WBC", Value: "14", Unit: "K/uL", ResultDate: day},
	}, nil
}

func newTestApp(t *testing.T, cohortCfg config.CohortConfig) *fiber.App {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	index := vectorindex.NewFlat()
	require.NoError(t, index.Upsert(ctx, 1, []float32{1, 0}))
	require.NoError(t, index.Upsert(ctx, 2, []float32{0.9, 0.1}))
	require.NoError(t, index.Upsert(ctx, 3, []float32{0.8, 0.6}))
	require.NoError(t, index.Upsert(ctx, 4, []float32{0, 1}))

	patients := &fakePatients{byID: map[int64]models.Patient{
		1: {ID: 1, MRN: "MRN00000001"},
		2: {ID: 2, MRN: "MRN00000002"},
		3: {ID: 3, MRN: "MRN00000003"},
		4: {ID: 4, MRN: "MRN00000004"},
	}}
	notes := &fakeNotes{hits: []models.NoteHit{
		{ClinicalNote: models.ClinicalNote{ID: 5, PatientID: 1, NoteType: models.NoteTypeProgress, Text: "Febrile overnight."}, Score: 0.8},
	}}

	dict, err := extraction.LoadDictionary("")
	require.NoError(t, err)
	embedder := embedding.NewHashingEmbedder(64)

	if cohortCfg.SimilarMaxResults == 0 {
		cohortCfg.SimilarMaxResults = 10
	}
	searchCfg := &config.SearchConfig{DefaultLimit: 10, MaxLimit: 50, SummaryNotes: 3, ExcerptLength: 500}

	patientSvc := service.NewPatientService(patients, logger)
	cohortSvc := service.NewCohortService(cohort.NewEngine(index, fakeClinical{}, logger), patientSvc, &cohortCfg, logger)
	extractionSvc := service.NewExtractionService(extraction.NewDictionaryExtractor(dict), notes, fakeTerms{}, logger)
	indexingSvc := service.NewIndexingService(patients, notes, fakeEmbeddings{}, embedder, extractionSvc, index, 2, logger)

	h := Handlers{
		Search:     handlers.NewSearchHandler(service.NewSearchService(notes, embedder, nil, searchCfg, logger), logger),
		Patient:    handlers.NewPatientHandler(patientSvc, cohortSvc, logger),
		Extraction: handlers.NewExtractionHandler(extractionSvc, logger),
		Analytics:  handlers.NewAnalyticsHandler(service.NewAnalyticsService(fakeAnalytics{}, logger), logger),
		Admin:      handlers.NewAdminHandler(indexingSvc, logger),
	}
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "cohort_ops_total 0\n")
	})
	serverCfg := &config.ServerConfig{ReadTimeout: time.Second, WriteTimeout: time.Second, CORSOrigins: "*"}
	return SetupRouter(h, serverCfg, metricsHandler, logger)
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, _ := doRequest(t, app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)

	status, body := doRequest(t, app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "cohort_ops_total")
}

func TestSimilarPatients(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/patients/MRN00000001/similar?min_similarity=0.5", "")

	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.SimilarPatientsResponse](t, body)
	assert.Equal(t, int64(1), res.PatientID)
	require.Len(t, res.Patients, 2)
	assert.Equal(t, int64(2), res.Patients[0].PatientID)
	assert.Equal(t, int64(3), res.Patients[1].PatientID)
	assert.Equal(t, 1, res.Patients[0].SharedTerms)
	assert.Equal(t, "B-cell ALL", res.Patients[0].PrimaryDiagnosis)
	assert.Empty(t, res.Issues)
}

func TestSimilarPatients_MaxResults(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{SimilarMinSimilarity: threshold(0.5)})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/patients/1/similar?max_results=1", "")

	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.SimilarPatientsResponse](t, body)
	require.Len(t, res.Patients, 1)
	assert.Equal(t, int64(2), res.Patients[0].PatientID)
}

func TestSimilarPatients_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
		want int
	}{
		{"threshold required", "/api/v1/patients/1/similar", http.StatusBadRequest},
		{"threshold out of range", "/api/v1/patients/1/similar?min_similarity=1.5", http.StatusBadRequest},
		{"threshold not a number", "/api/v1/patients/1/similar?min_similarity=high", http.StatusBadRequest},
		{"max results zero", "/api/v1/patients/1/similar?min_similarity=0.5&max_results=0", http.StatusBadRequest},
		{"unknown patient", "/api/v1/patients/999/similar?min_similarity=0.5", http.StatusNotFound},
		{"bad reference", "/api/v1/patients/bob/similar?min_similarity=0.5", http.StatusBadRequest},
		{"unknown patient with bad threshold", "/api/v1/patients/999/similar?min_similarity=2", http.StatusBadRequest},
		{"unknown patient with bad lab threshold", "/api/v1/patients/999/cohort/labs?threshold=-1", http.StatusBadRequest},
		{"unknown patient with bad medication threshold", "/api/v1/patients/999/cohort/medications?threshold=1.01", http.StatusBadRequest},
		{"max results above cap", "/api/v1/patients/1/similar?min_similarity=0.1&max_results=501", http.StatusBadRequest},
		{"max results overflow", "/api/v1/patients/1/similar?min_similarity=0.1&max_results=9223372036854775807", http.StatusBadRequest},
	}
	app := newTestApp(t, config.CohortConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doRequest(t, app, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.want, status, string(body))
			assert.NotEmpty(t, decode[dto.ErrorResponse](t, body).Error)
		})
	}
}

func TestMedicationProfile(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/patients/1/cohort/medications?threshold=0.5", "")

	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.MedicationProfileResponse](t, body)
	assert.Equal(t, 2, res.CohortSize)
	require.Len(t, res.Medications, 1)
	assert.Equal(t, "Ondansetron", res.Medications[0].Name)
	assert.Equal(t, 2, res.Medications[0].PatientCount)
	assert.Equal(t, 100.0, res.Medications[0].Percent)
}

func TestLabComparison(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{LabThreshold: threshold(0.5)})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/patients/1/cohort/labs", "")
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.LabComparisonResponse](t, body)
	assert.Empty(t, res.Labs)
	require.Len(t, res.Omitted, 1)
	assert.Equal(t, 2, res.Omitted[0].Contributors)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/patients/1/cohort/labs?threshold=0", "")
	require.Equal(t, http.StatusOK, status, string(body))
	res = decode[dto.LabComparisonResponse](t, body)
	require.Len(t, res.Labs, 1)
	assert.Equal(t, "WBC", res.Labs[0].TestName)
	assert.Equal(t, 15.0, res.Labs[0].PatientValue)
	assert.InDelta(t, 12.0, res.Labs[0].CohortMean, 1e-9)
	assert.Equal(t, string(cohort.LabAboveCohort), res.Labs[0].Status)
}

func TestGetPatient(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/patients/mrn00000003", "")
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.PatientResponse](t, body)
	assert.Equal(t, int64(3), res.PatientID)
	assert.NotNil(t, res.Departments)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/patients/MRN404", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSearchNotes(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/notes/search?q=fever&summary=true", "")
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.SearchNotesResponse](t, body)
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.NoteTypes, 1)
	assert.Equal(t, string(models.NoteTypeProgress), res.NoteTypes[0].NoteType)
	assert.NotEmpty(t, res.Summary)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/notes/search", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/notes/search?q=fever&note_type=Radiology", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/notes/search?q=fever&limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestExtract(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/extract", `{"text":"Given vincristine, now afebrile."}`)
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.ExtractionResponse](t, body)
	assert.Equal(t, []string{"vincristine"}, res.ByCategory["medication"])
	assert.Empty(t, res.RunID)

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/extract", `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/extract", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestExtractNote(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/notes/5/extract", "")
	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.ExtractionResponse](t, body)
	assert.Equal(t, int64(5), res.NoteID)
	assert.NotEmpty(t, res.RunID)

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/notes/abc/extract", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/v1/notes/77/extract", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAnalytics(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, body := doRequest(t, app, http.MethodGet, "/api/v1/analytics/overview", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 4, decode[models.Overview](t, body).TotalPatients)

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/analytics/departments", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, string(body), "connection reset")

	status, body = doRequest(t, app, http.MethodGet, "/api/v1/analytics/activity?days=7", "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.DailyActivity](t, body), 7)

	status, _ = doRequest(t, app, http.MethodGet, "/api/v1/analytics/activity?days=-1", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestReindex(t *testing.T) {
	app := newTestApp(t, config.CohortConfig{})

	status, body := doRequest(t, app, http.MethodPost, "/api/v1/admin/reindex", "")

	require.Equal(t, http.StatusOK, status, string(body))
	res := decode[dto.ReindexResponse](t, body)
	assert.Equal(t, 4, res.Patients)
	assert.Equal(t, 4, res.PatientsWithout)
}

func threshold(v float64) *float64 { return &v }
