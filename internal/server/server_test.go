package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/concierge/internal/core"
	"github.com/agenthands/concierge/internal/model"
	"github.com/agenthands/concierge/internal/userdata"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPipeline struct {
	result  model.PipelineResult
	lastReq core.Request
}

func (s *stubPipeline) Recommend(_ context.Context, req core.Request) model.PipelineResult {
	s.lastReq = req
	return s.result
}

type stubGenerator struct {
	questions []model.Question
	err       error
}

func (s *stubGenerator) Generate(_ context.Context, _ string, _, _ int) ([]model.Question, error) {
	return s.questions, s.err
}

func newTestRouter(pipeline Recommender, generator QuestionGenerator) *gin.Engine {
	srv := New(pipeline, generator, userdata.NewStore(nil, nil), nil)
	return srv.SetupRouter()
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubGenerator{})

	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestSearchSuccess(t *testing.T) {
	pipeline := &stubPipeline{result: model.PipelineResult{
		Success: true,
		Results: []model.SearchResult{{Title: "EcoKettle", URL: "https://shop.com/kettle"}},
	}}
	router := newTestRouter(pipeline, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/search", gin.H{
		"query":   "electric kettle",
		"answers": gin.H{"q1": "1L"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.PipelineResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "EcoKettle", resp.Results[0].Title)

	assert.Equal(t, "electric kettle", pipeline.lastReq.Query)
	assert.Equal(t, map[string]string{"q1": "1L"}, pipeline.lastReq.Answers)
}

func TestSearchPipelineFailureStillHTTP200(t *testing.T) {
	pipeline := &stubPipeline{result: model.Failure("No ecommerce product results found. Try adjusting the query.")}
	router := newTestRouter(pipeline, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/search", gin.H{"query": "unobtainium"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.PipelineResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "No ecommerce product results found")
}

func TestSearchMissingQueryRejected(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/search", gin.H{"answers": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchInvalidProfileRejected(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/search", gin.H{
		"query":        "kettle",
		"user_profile": gin.H{"age": 300, "gender": "Male", "lives_in_us": true},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchProfilePassedThrough(t *testing.T) {
	pipeline := &stubPipeline{result: model.PipelineResult{Success: true}}
	router := newTestRouter(pipeline, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/search", gin.H{
		"query":        "kettle",
		"user_profile": gin.H{"age": 31, "gender": "Female", "lives_in_us": true},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, pipeline.lastReq.Profile)
	assert.Equal(t, 31, pipeline.lastReq.Profile.Age)
	assert.Equal(t, model.GenderFemale, pipeline.lastReq.Profile.Gender)
}

func TestGenerateQuestionsSuccess(t *testing.T) {
	generator := &stubGenerator{questions: []model.Question{
		{ID: "q1", Text: "What is your budget?", Answers: []string{"Low", "High"}},
	}}
	router := newTestRouter(&stubPipeline{}, generator)

	w := doJSON(t, router, http.MethodPost, "/api/generate-questions", gin.H{
		"userQuery": "running shoes",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp GenerateQuestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "q1", resp.Questions[0].ID)
}

func TestGenerateQuestionsFailureEnvelope(t *testing.T) {
	generator := &stubGenerator{err: errors.New("model unavailable")}
	router := newTestRouter(&stubPipeline{}, generator)

	w := doJSON(t, router, http.MethodPost, "/api/generate-questions", gin.H{
		"userQuery": "running shoes",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp GenerateQuestionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "model unavailable")
	assert.Empty(t, resp.Questions)
}

func TestGenerateQuestionsBadCountsRejected(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/generate-questions", gin.H{
		"userQuery":    "running shoes",
		"numQuestions": 99,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchHistoryEndpoint(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := userdata.NewStore(rdb, nil)

	store.RecordSearch(context.Background(), "u1", userdata.SearchRecord{Query: "first"})
	store.RecordSearch(context.Background(), "u1", userdata.SearchRecord{Query: "second"})

	srv := New(&stubPipeline{}, &stubGenerator{}, store, nil)
	router := srv.SetupRouter()

	w := doJSON(t, router, http.MethodGet, "/api/users/u1/history?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		UserID  string                  `json:"user_id"`
		History []userdata.SearchRecord `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)
	require.Len(t, resp.History, 1)
	assert.Equal(t, "second", resp.History[0].Query)
}

func TestSearchHistoryUnavailableStoreEmpty(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubGenerator{})

	w := doJSON(t, router, http.MethodGet, "/api/users/u1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"history":[]`)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&stubPipeline{}, &stubGenerator{})

	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
