package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/thelocal/backend/internal/config"
	"github.com/thelocal/backend/internal/dashboard"
	"github.com/thelocal/backend/internal/diagnostics"
	"github.com/thelocal/backend/internal/services"
	"github.com/thelocal/backend/internal/settings"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	settingsStore := settings.New(filepath.Join(dir, "settings.json"), config.DefaultsConfig{
		OpenAIModel:      "gpt-4o-mini",
		OllamaURL:        "http://localhost:11434",
		OllamaModel:      "llama3.1",
		CloudStoragePath: filepath.Join(dir, "cloud"),
	})
	settingsStore.Load()

	dashboardStore := dashboard.NewStore(filepath.Join(dir, "dashboard_data.json"))
	dashboardStore.Load()

	monitor := diagnostics.NewStorageMonitor()
	prober := diagnostics.NewTailscaleProber()
	openaiService := services.NewOpenAIService(settingsStore)
	ollamaService := services.NewOllamaService(settingsStore)

	settingsHandler := NewSettingsHandler(settingsStore)
	dashboardHandler := NewDashboardHandler(dashboardStore)
	userHandler := NewUserHandler(dashboardStore)
	inviteHandler := NewInviteHandler(dashboardStore)
	tailscaleHandler := NewTailscaleHandler(settingsStore, prober)
	storageHandler := NewStorageHandler(settingsStore, monitor)
	toolsHandler := NewToolsHandler()
	modelsHandler := NewModelsHandler(openaiService, ollamaService)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/settings", settingsHandler.Get)
	api.POST("/settings", settingsHandler.Update)
	api.GET("/dashboard", dashboardHandler.Get)
	api.PATCH("/system-settings", dashboardHandler.UpdateSystemSettings)
	api.POST("/users", userHandler.Create)
	api.PATCH("/users/:id", userHandler.Update)
	api.DELETE("/users/:id", userHandler.Delete)
	api.POST("/invites", inviteHandler.Create)
	api.DELETE("/invites/:id", inviteHandler.Delete)
	api.GET("/tailscale", tailscaleHandler.Get)
	api.POST("/tailscale/verify", tailscaleHandler.Verify)
	api.GET("/tailscale/peers", tailscaleHandler.Peers)
	api.GET("/storage", storageHandler.Get)
	api.POST("/tools/ping", toolsHandler.Ping)
	api.GET("/tools/qr", toolsHandler.QR)
	api.GET("/models/openai", modelsHandler.OpenAI)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON response: %v: %s", err, w.Body.String())
	}
	return out
}

func TestUserLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/users", `{"name":"A","handle":"@a","email":"a@x.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	if created["id"] != float64(1) {
		t.Errorf("id = %v, expected 1", created["id"])
	}
	if created["status"] != "online" {
		t.Errorf("status = %v", created["status"])
	}
	if created["devices"] != float64(0) {
		t.Errorf("devices = %v", created["devices"])
	}

	w = doRequest(t, r, http.MethodDelete, "/api/users/1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", w.Code, w.Body.String())
	}
	deleted := decode(t, w)
	if deleted["status"] != "deleted" {
		t.Errorf("delete envelope = %v", deleted)
	}
	user := deleted["user"].(map[string]interface{})
	if user["id"] != float64(1) || user["handle"] != "@a" {
		t.Errorf("deleted user = %v", user)
	}

	w = doRequest(t, r, http.MethodGet, "/api/dashboard", "")
	doc := decode(t, w)
	if users := doc["users"].([]interface{}); len(users) != 0 {
		t.Errorf("users should be empty, got %v", users)
	}
	logs := doc["logs"].([]interface{})
	top := logs[0].(map[string]interface{})
	if !strings.Contains(top["action"].(string), "User deleted: @a") {
		t.Errorf("top log entry = %v", top)
	}
}

func TestUpdateUserErrors(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPatch, "/api/users/99", `{"status":"offline"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d", w.Code)
	}

	doRequest(t, r, http.MethodPost, "/api/users", `{"name":"A","handle":"@a","email":"a@x.com"}`)
	w = doRequest(t, r, http.MethodPatch, "/api/users/1", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d", w.Code)
	}
}

func TestCreateUserValidation(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/users", `{"name":"A"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing fields status = %d", w.Code)
	}
}

func TestInviteLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/invites", `{"maxUses":3,"expiresDays":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("create invite status = %d: %s", w.Code, w.Body.String())
	}
	invite := decode(t, w)
	if invite["maxUses"] != float64(3) {
		t.Errorf("maxUses = %v", invite["maxUses"])
	}
	if !strings.HasPrefix(invite["code"].(string), "INV-") {
		t.Errorf("code = %v", invite["code"])
	}

	w = doRequest(t, r, http.MethodDelete, "/api/invites/1", "")
	if w.Code != http.StatusOK {
		t.Errorf("delete invite status = %d", w.Code)
	}

	w = doRequest(t, r, http.MethodDelete, "/api/invites/1", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("double delete status = %d", w.Code)
	}
}

func TestSystemSettingsPatch(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPatch, "/api/system-settings", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d", w.Code)
	}

	w = doRequest(t, r, http.MethodPatch, "/api/system-settings", `{"maintenanceMode":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}
	out := decode(t, w)
	merged := out["systemSettings"].(map[string]interface{})
	if merged["maintenanceMode"] != true {
		t.Errorf("systemSettings = %v", merged)
	}
	if merged["backupFrequency"] != "manual" {
		t.Error("defaults should survive the patch")
	}
}

func TestSettingsUpdateEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/settings", `{"openai_model":"gpt-4.1","bogus":"x","openai_key":7}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	out := decode(t, w)
	updated := out["updated"].(map[string]interface{})
	if len(updated) != 1 || updated["openai_model"] != "gpt-4.1" {
		t.Errorf("updated = %v", updated)
	}

	w = doRequest(t, r, http.MethodGet, "/api/settings", "")
	current := decode(t, w)
	if current["openai_model"] != "gpt-4.1" {
		t.Errorf("settings not applied: %v", current["openai_model"])
	}

	w = doRequest(t, r, http.MethodPost, "/api/settings", `not json`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", w.Code)
	}
}

func TestPingRejectsBadMethod(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/tools/ping", `{"url":"example.com","method":"POST"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", w.Code)
	}
}

func TestQREndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/tools/qr", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing data status = %d", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/tools/qr?data=hello", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content type = %q", ct)
	}
	// PNG magic bytes.
	if body := w.Body.Bytes(); len(body) < 8 || body[1] != 'P' || body[2] != 'N' || body[3] != 'G' {
		t.Error("response is not a PNG image")
	}
}

func TestOpenAIModelsFallback(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/models/openai", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	out := decode(t, w)
	if out["source"] != "local-cache" {
		t.Errorf("source = %v, expected local-cache", out["source"])
	}
	data := out["data"].([]interface{})
	first := data[0].(map[string]interface{})
	if first["id"] != "gpt-4o-mini" {
		t.Errorf("first model = %v", first)
	}
}

func TestTailscaleEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/tailscale", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	out := decode(t, w)
	if out["tailscale_ip"] != "" {
		t.Errorf("tailscale_ip = %v", out["tailscale_ip"])
	}

	w = doRequest(t, r, http.MethodPost, "/api/tailscale/verify", "")
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d", w.Code)
	}
	status := decode(t, w)
	if status["reachable"] != false {
		t.Errorf("unconfigured peer should be unreachable: %v", status)
	}
	if status["detail"] != "No Tailscale address configured" {
		t.Errorf("detail = %v", status["detail"])
	}

	w = doRequest(t, r, http.MethodGet, "/api/tailscale/peers", "")
	peers := decode(t, w)
	if list := peers["peers"].([]interface{}); len(list) != 0 {
		t.Errorf("peers = %v", list)
	}
}

func TestStorageEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/storage", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	out := decode(t, w)
	if out["available"] != true {
		t.Errorf("temp-dir storage should be available: %v", out)
	}
}
