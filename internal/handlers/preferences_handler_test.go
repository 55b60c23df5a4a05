package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakdoczlapie/transit-admin-backend/internal/selection"
)

func setupPreferencesRouter(t *testing.T) (*gin.Engine, *selection.Store) {
	t.Helper()
	store, err := selection.NewStore(selection.NewMemoryPersistence())
	require.NoError(t, err)

	handler := NewPreferencesHandler(store, testLogger())
	router := gin.New()
	router.GET("/api/preferences/operators", handler.GetOperators)
	router.PUT("/api/preferences/operators/active", handler.SetActive)
	router.POST("/api/preferences/operators/comparison/toggle", handler.ToggleComparison)
	return router, store
}

func TestGetOperators(t *testing.T) {
	router, _ := setupPreferencesRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/preferences/operators", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"active":"LUZ","comparison":["LUZ"]}`, w.Body.String())
}

func TestSetActiveOperator(t *testing.T) {
	t.Run("Set", func(t *testing.T) {
		router, store := setupPreferencesRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/preferences/operators/active",
			strings.NewReader(`{"operator":"KZK"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "KZK", store.State().Active)
	})

	t.Run("Clear With Null", func(t *testing.T) {
		router, store := setupPreferencesRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/preferences/operators/active",
			strings.NewReader(`{"operator":null}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, store.State().Active)
	})
}

func TestToggleComparisonOperator(t *testing.T) {
	t.Run("Add And Remove", func(t *testing.T) {
		router, store := setupPreferencesRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/preferences/operators/comparison/toggle",
			strings.NewReader(`{"operator":"KZK"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"LUZ", "KZK"}, store.State().Comparison)

		w = httptest.NewRecorder()
		req = httptest.NewRequest(http.MethodPost, "/api/preferences/operators/comparison/toggle",
			strings.NewReader(`{"operator":"KZK"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, []string{"LUZ"}, store.State().Comparison)
	})

	t.Run("Last Operator Stays", func(t *testing.T) {
		router, store := setupPreferencesRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/preferences/operators/comparison/toggle",
			strings.NewReader(`{"operator":"LUZ"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"LUZ"}, store.State().Comparison)
	})

	t.Run("Missing Operator", func(t *testing.T) {
		router, _ := setupPreferencesRouter(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/preferences/operators/comparison/toggle",
			strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
