package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eureka-dev/go-place-backend/internal/config"
	"github.com/eureka-dev/go-place-backend/internal/domain"
	"github.com/eureka-dev/go-place-backend/internal/live"
	"github.com/eureka-dev/go-place-backend/internal/repo"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:routerdb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath: "/api/v1",
		RateRPS:     100,
		RateBurst:   100,
		Canvas: config.CanvasConfig{
			Width:         100,
			Height:        100,
			Cooldown:      15 * time.Second,
			StrictPalette: true,
		},
		Auth: config.AuthConfig{TrustUserHeader: true},
		WS: config.WSConfig{
			WriteWait:  5 * time.Second,
			PingPeriod: 30 * time.Second,
			SendBuffer: 16,
		},
		CORS:     config.CORSConfig{AllowedOrigins: nil}, // AllowAllOrigins branch
		Security: config.SecurityConfig{EnableHSTS: false},
		OTEL:     config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T) (*gin.Engine, *live.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	hub := live.NewHub(16)
	RegisterRoutes(r, newTestDB(t), hub, testConfig())
	return r, hub
}

func TestRegisterRoutes_HealthMetricsFallbacks(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("/health: %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing wildcard ACAO")
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/pixels", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("bad method: %d", w.Code)
	}
}

// End-to-end placement through the full middleware chain: place, observe
// the live publish, reject the follow-up inside the cooldown window, and
// read the cell back.
func TestRegisterRoutes_PlacementFlow(t *testing.T) {
	r, hub := newRouter(t)
	sub := hub.Subscribe(live.Filter{})

	place := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pixels", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "u-router")
		r.ServeHTTP(w, req)
		return w
	}

	w := place(`{"x":5,"y":5,"color":"#E50000"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("place: %d (%s)", w.Code, w.Body.String())
	}
	var pixel domain.Pixel
	if err := json.Unmarshal(w.Body.Bytes(), &pixel); err != nil {
		t.Fatalf("json: %v", err)
	}
	if pixel.ID != "5_5" || pixel.PlacedBy != "u-router" {
		t.Fatalf("committed pixel: %+v", pixel)
	}

	select {
	case p := <-sub.Updates():
		if p.ID != "5_5" {
			t.Fatalf("published pixel: %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatalf("commit not published to hub")
	}

	w = place(`{"x":6,"y":5,"color":"#0000EA"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("cooldown: expected 429, got %d", w.Code)
	}
	var er struct {
		Code         string `json:"code"`
		RetryAfterMs int64  `json:"retry_after_ms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != "cooldown_active" || er.RetryAfterMs <= 0 {
		t.Fatalf("cooldown envelope: %+v", er)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pixels/5/5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("get pixel: %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/pixels", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("snapshot: %d", w.Code)
	}
	if w.Header().Get("ETag") == "" {
		t.Fatalf("snapshot missing ETag")
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("history: %d", w.Code)
	}
}

func TestRegisterRoutes_AnonymousPlacementRejected(t *testing.T) {
	r, _ := newRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pixels",
		bytes.NewBufferString(`{"x":1,"y":1,"color":"#FFFFFF"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSAllowlist(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"https://place.example"}
	RegisterRoutes(r, newTestDB(t), live.NewHub(16), cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://place.example")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://place.example" {
		t.Fatalf("ACAO = %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("disallowed origin got ACAO %q", got)
	}
}
