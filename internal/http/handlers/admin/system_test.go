package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bloodlink-next/internal/provider"
	"github.com/bloodlink-next/internal/service"
	"github.com/bloodlink-next/internal/store"

	"github.com/gin-gonic/gin"
)

func newSystemTestRouter(identity *service.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := New(&provider.Container{Guard: store.NewGuard(nil, store.Config{})})
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if identity != nil {
			c.Set("identity", identity)
		}
	})
	r.GET("/system/status", handler.SystemStatus)
	return r
}

func TestSystemStatusStaffForbidden(t *testing.T) {
	r := newSystemTestRouter(&service.Identity{AdminID: 2, HospitalID: 2})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/status", nil))

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("staff admin must not read system status, status_code want 403 got %d", resp.StatusCode)
	}
}

func TestSystemStatusSuperSeesFallbackFlag(t *testing.T) {
	r := newSystemTestRouter(&service.Identity{AdminID: 1, HospitalID: 1, IsSuper: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/status", nil))

	var resp struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			FallbackMode bool `json:"fallback_mode"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d", resp.StatusCode)
	}
	if !resp.Data.FallbackMode {
		t.Fatalf("guard without database should report fallback mode")
	}
}

func TestSystemStatusMissingIdentity(t *testing.T) {
	r := newSystemTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/system/status", nil))

	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}
