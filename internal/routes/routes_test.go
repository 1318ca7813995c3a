package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/genomike/citasmedicas/internal/citas"
	"github.com/genomike/citasmedicas/internal/repository"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := repository.NewMemoryStore().Store()
	svc := citas.NewService(store)
	router := gin.New()
	SetupRoutes(router, store, svc)
	return router
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			Timestamp string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decodificando respuesta: %v", err)
	}
	if !body.Success {
		t.Error("se esperaba success=true")
	}
	if body.Message == "" {
		t.Error("se esperaba un mensaje de estado")
	}
	if _, err := time.Parse(time.RFC3339, body.Data.Timestamp); err != nil {
		t.Errorf("timestamp inválido %q: %v", body.Data.Timestamp, err)
	}
}
