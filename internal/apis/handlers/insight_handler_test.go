package handlers

import (
	"clave-insights/internal/apis/dtos"
	"clave-insights/internal/models"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInteractionStore struct {
	records   []models.LLMInteraction
	lastLimit int
	err       error
}

func (s *stubInteractionStore) Create(*models.LLMInteraction) error {
	return nil
}

func (s *stubInteractionStore) ListRecent(limit int) ([]models.LLMInteraction, error) {
	s.lastLimit = limit
	return s.records, s.err
}

func listInteractionsContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, recorder
}

func TestListInteractionsReturnsRecentRecords(t *testing.T) {
	store := &stubInteractionStore{records: []models.LLMInteraction{
		{UserPrompt: "sales by location", SuccessStatus: true, AgentAnswered: true},
	}}
	handler := NewInsightHandler(nil, store)
	c, recorder := listInteractionsContext("/api/insights/interactions?limit=5")

	handler.ListInteractions(c)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 5, store.lastLimit)

	var resp dtos.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	records, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, records, 1)
}

func TestListInteractionsClampsBadLimits(t *testing.T) {
	for _, target := range []string{
		"/api/insights/interactions",
		"/api/insights/interactions?limit=0",
		"/api/insights/interactions?limit=9999",
		"/api/insights/interactions?limit=abc",
	} {
		store := &stubInteractionStore{}
		handler := NewInsightHandler(nil, store)
		c, recorder := listInteractionsContext(target)

		handler.ListInteractions(c)

		require.Equal(t, http.StatusOK, recorder.Code, target)
		assert.Equal(t, defaultInteractionListLimit, store.lastLimit, target)
	}
}

func TestListInteractionsReportsRepositoryFailure(t *testing.T) {
	store := &stubInteractionStore{err: errors.New("connection refused")}
	handler := NewInsightHandler(nil, store)
	c, recorder := listInteractionsContext("/api/insights/interactions")

	handler.ListInteractions(c)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	var resp dtos.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "failed to load interactions", *resp.Error)
}
