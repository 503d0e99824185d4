package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"feynman_tutor/internal/config"
	"feynman_tutor/internal/services"
	"feynman_tutor/pkg"
	"feynman_tutor/src/graph"
	"feynman_tutor/src/memory"
	"feynman_tutor/src/model"
	"feynman_tutor/src/storage"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) *server.Hertz {
	t.Helper()
	return newTestServerWithUploadLimit(t, 0)
}

func newTestServerWithUploadLimit(t *testing.T, maxUpload int64) *server.Hertz {
	t.Helper()

	catalog := graph.NewStaticCatalog(config.DefaultConcepts(), 5, 2)
	store := storage.NewMemoryRecordStore()
	mem := memory.NewService(store, memory.DefaultScheduler()).
		WithClock(func() time.Time { return testNow })

	handler := NewHandler(Deps{
		Concepts: services.NewConceptService(catalog, nil, nil),
		Learning: services.NewLearningService(nil, nil),
		Importer: services.NewImporter(catalog),
		Memory:   mem,
		Health:   map[string]Pinger{"store": store},

		MaxUploadBytes: maxUpload,
	})

	h := server.Default()
	handler.Register(h)
	return h
}

func jsonBody(t *testing.T, v any) *ut.Body {
	t.Helper()
	data, err := sonic.Marshal(v)
	require.NoError(t, err)
	return &ut.Body{Body: bytes.NewReader(data), Len: len(data)}
}

var jsonHeader = ut.Header{Key: "Content-Type", Value: "application/json"}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/healthz", nil)
	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode())

	var body pkg.HealthResponse
	require.NoError(t, sonic.Unmarshal(resp.Body(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["store"])
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t)

	w := ut.PerformRequest(h.Engine, http.MethodGet, "/healthz", nil)
	assert.NotEmpty(t, w.Result().Header.Get(RequestIDHeader))

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/healthz", nil,
		ut.Header{Key: RequestIDHeader, Value: "abc-123"})
	assert.Equal(t, "abc-123", w.Result().Header.Get(RequestIDHeader))
}

func TestConceptRoutes(t *testing.T) {
	h := newTestServer(t)

	t.Run("search", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/search?q=python", nil)
		require.Equal(t, http.StatusOK, w.Result().StatusCode())

		var names []string
		require.NoError(t, sonic.Unmarshal(w.Result().Body(), &names))
		assert.Contains(t, names, "Python")
	})

	t.Run("empty search is rejected", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/search", nil)
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	})

	t.Run("unknown concept", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/Cobol", nil)
		assert.Equal(t, http.StatusNotFound, w.Result().StatusCode())

		var body pkg.ErrorResponse
		require.NoError(t, sonic.Unmarshal(w.Result().Body(), &body))
		assert.NotEmpty(t, body.Error)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("explanation falls back without a model", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/Python/explanation", nil)
		require.Equal(t, http.StatusOK, w.Result().StatusCode())

		var exp model.Explanation
		require.NoError(t, sonic.Unmarshal(w.Result().Body(), &exp))
		assert.Equal(t, model.SourceFallback, exp.Source)
		assert.NotEmpty(t, exp.CoreDefinition)
	})

	t.Run("bad difficulty", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/Python/exercises?difficulty=extreme", nil)
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	})

	t.Run("knowledge graph", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/Python/knowledge-graph", nil)
		require.Equal(t, http.StatusOK, w.Result().StatusCode())

		var kg model.KnowledgeGraph
		require.NoError(t, sonic.Unmarshal(w.Result().Body(), &kg))
		assert.NotEmpty(t, kg.Nodes)
	})

	t.Run("related limit", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/Python/related?limit=1", nil)
		require.Equal(t, http.StatusOK, w.Result().StatusCode())

		var related []model.RelatedConcept
		require.NoError(t, sonic.Unmarshal(w.Result().Body(), &related))
		assert.Len(t, related, 1)

		w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/Python/related?limit=x", nil)
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	})
}

func TestImportConcepts(t *testing.T) {
	h := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "concepts.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,description,category,related_concepts\nRust,Systems language,Language,\"Go,C++\"\n,,,\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/concept/import",
		&ut.Body{Body: bytes.NewReader(buf.Bytes()), Len: buf.Len()},
		ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()})
	require.Equal(t, http.StatusOK, w.Result().StatusCode(), string(w.Result().Body()))

	var result model.ImportResult
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &result))
	assert.Equal(t, 1, result.Imported)

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/Rust", nil)
	assert.Equal(t, http.StatusOK, w.Result().StatusCode())
}

func csvUpload(t *testing.T, content string) (*ut.Body, ut.Header) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "concepts.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &ut.Body{Body: bytes.NewReader(buf.Bytes()), Len: buf.Len()},
		ut.Header{Key: "Content-Type", Value: mw.FormDataContentType()}
}

func TestImportTooLarge(t *testing.T) {
	h := newTestServerWithUploadLimit(t, 16)

	body, header := csvUpload(t, "name,description\nRust,A systems language with ownership\n")
	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/concept/import", body, header,
		ut.Header{Key: RequestIDHeader, Value: "upload-1"})
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Result().StatusCode())

	var resp pkg.ErrorResponse
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &resp))
	assert.Contains(t, resp.Error, "16 bytes")
	assert.Equal(t, "upload-1", resp.RequestID)
}

func TestUpdateRelationship(t *testing.T) {
	h := newTestServer(t)

	weight := 4.0
	w := ut.PerformRequest(h.Engine, http.MethodPut, "/api/concept/Python/related/Web开发",
		jsonBody(t, pkg.RelationshipRequest{Weight: &weight}), jsonHeader)
	require.Equal(t, http.StatusOK, w.Result().StatusCode(), string(w.Result().Body()))

	var rel pkg.Relationship
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &rel))
	assert.Equal(t, pkg.Relationship{From: "Python", To: "Web开发", Weight: 4}, rel)

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/concept/Python/related?limit=1", nil)
	var related []model.RelatedConcept
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &related))
	require.Len(t, related, 1)
	assert.Equal(t, "Web开发", related[0].Name)

	t.Run("missing weight", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodPut, "/api/concept/Python/related/Web开发",
			jsonBody(t, pkg.RelationshipRequest{}), jsonHeader)
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	})

	t.Run("non-positive weight", func(t *testing.T) {
		zero := 0.0
		w := ut.PerformRequest(h.Engine, http.MethodPut, "/api/concept/Python/related/Web开发",
			jsonBody(t, pkg.RelationshipRequest{Weight: &zero}), jsonHeader)
		assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
	})

	t.Run("unrelated concepts", func(t *testing.T) {
		w := ut.PerformRequest(h.Engine, http.MethodPut, "/api/concept/Python/related/大数据",
			jsonBody(t, pkg.RelationshipRequest{Weight: &weight}), jsonHeader)
		assert.Equal(t, http.StatusNotFound, w.Result().StatusCode())
	})
}

func TestImportWithoutFile(t *testing.T) {
	h := newTestServer(t)

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/concept/import", nil)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
}

func TestLearningPath(t *testing.T) {
	h := newTestServer(t)

	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/learning/path",
		jsonBody(t, pkg.PathRequest{Concept: "Python", UserLevel: "advanced"}), jsonHeader)
	require.Equal(t, http.StatusOK, w.Result().StatusCode())

	var path model.LearningPath
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &path))
	assert.Len(t, path.Days, 3)

	w = ut.PerformRequest(h.Engine, http.MethodPost, "/api/learning/path",
		jsonBody(t, pkg.PathRequest{}), jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, http.MethodPost, "/api/learning/path",
		&ut.Body{Body: bytes.NewReader([]byte("{")), Len: 1}, jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
}

func TestMemoryRoutes(t *testing.T) {
	h := newTestServer(t)

	add := func() int {
		w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/memory/records",
			jsonBody(t, pkg.ReviewRequest{Concept: "Python"}), jsonHeader)
		return w.Result().StatusCode()
	}
	assert.Equal(t, http.StatusCreated, add())
	assert.Equal(t, http.StatusOK, add())

	score := 1.0
	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/memory/review/submit",
		jsonBody(t, pkg.ReviewRequest{Concept: "Python", PerformanceScore: &score}), jsonHeader)
	require.Equal(t, http.StatusOK, w.Result().StatusCode())

	var result pkg.ReviewResult
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &result))
	assert.Equal(t, "success", result.Status)
	assert.InDelta(t, 0.65, result.Record.MemoryStrength, 1e-9)
	assert.Equal(t, 1, result.Record.ReviewCount)
	assert.Equal(t, "Python", result.Entry.Concept)

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/memory/stats?user_id=1", nil)
	require.Equal(t, http.StatusOK, w.Result().StatusCode())
	var stats model.LearningStats
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &stats))
	assert.Equal(t, 1, stats.TotalConcepts)
	assert.Equal(t, 1, stats.ReviewCount)

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/memory/review", nil)
	require.Equal(t, http.StatusOK, w.Result().StatusCode())
	var schedule []model.ScheduleEntry
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &schedule))
	require.Len(t, schedule, 1)

	w = ut.PerformRequest(h.Engine, http.MethodGet, "/api/memory/strength?user_id=2", nil)
	require.Equal(t, http.StatusOK, w.Result().StatusCode())
	var overview model.StrengthOverview
	require.NoError(t, sonic.Unmarshal(w.Result().Body(), &overview))
	assert.Empty(t, overview.Concepts)
}

func TestSubmitReviewErrors(t *testing.T) {
	h := newTestServer(t)

	score := 0.5
	w := ut.PerformRequest(h.Engine, http.MethodPost, "/api/memory/review/submit",
		jsonBody(t, pkg.ReviewRequest{Concept: "Unseen", PerformanceScore: &score}), jsonHeader)
	assert.Equal(t, http.StatusNotFound, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, http.MethodPost, "/api/memory/review/submit",
		jsonBody(t, pkg.ReviewRequest{Concept: "Python"}), jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())

	bad := 1.5
	ut.PerformRequest(h.Engine, http.MethodPost, "/api/memory/records",
		jsonBody(t, pkg.ReviewRequest{Concept: "Python"}), jsonHeader)
	w = ut.PerformRequest(h.Engine, http.MethodPost, "/api/memory/review/submit",
		jsonBody(t, pkg.ReviewRequest{Concept: "Python", PerformanceScore: &bad}), jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())

	w = ut.PerformRequest(h.Engine, http.MethodPost, "/api/memory/review/start",
		jsonBody(t, pkg.ReviewRequest{}), jsonHeader)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode())
}

func TestStartAndSkipReview(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/api/memory/review/start", "/api/memory/review/skip"} {
		w := ut.PerformRequest(h.Engine, http.MethodPost, path,
			jsonBody(t, pkg.ReviewRequest{Concept: "Python"}), jsonHeader)
		require.Equal(t, http.StatusOK, w.Result().StatusCode(), path)

		var session model.ReviewSession
		require.NoError(t, sonic.Unmarshal(w.Result().Body(), &session))
		assert.Equal(t, "Python", session.Concept)
		assert.NotEmpty(t, session.ID)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, statusFor(storage.ErrConflict))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(storage.ErrStoreUnavailable))
	assert.Equal(t, http.StatusNotFound, statusFor(graph.ErrConceptNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(memory.ErrInvalidInput))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
