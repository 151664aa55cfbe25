package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AtRiskMedia/storefront-go/internal/application/container"
	"github.com/AtRiskMedia/storefront-go/internal/application/services"
	"github.com/AtRiskMedia/storefront-go/internal/application/storefront"
	"github.com/AtRiskMedia/storefront-go/internal/application/stores"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/api"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/storefront-go/internal/infrastructure/persistence/kv"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/http/middleware"
	"github.com/AtRiskMedia/storefront-go/internal/presentation/templates"
	"github.com/AtRiskMedia/storefront-go/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// remoteAPI fakes the storefront backend the service talks to
type remoteAPI struct {
	mu     sync.Mutex
	orders []map[string]any
	auth   []string
}

func (f *remoteAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	if h := r.Header.Get("Authorization"); h != "" {
		f.auth = append(f.auth, r.Method+" "+r.URL.Path+" "+h)
	}
	f.mu.Unlock()

	switch r.Method + " " + r.URL.Path {
	case "GET /settings":
		_, _ = w.Write([]byte(`{"primary_color":"#ff0000","primary_font":"font-serif"}`))
	case "POST /auth/login":
		_, _ = w.Write([]byte(`{"user":{"id":"u1","email":"a@b.c"},"token":"cust-tok"}`))
	case "POST /admin/login":
		_, _ = w.Write([]byte(`{"admin":{"id":"a1"},"token":"admin-tok"}`))
	case "GET /websites":
		_, _ = w.Write([]byte(`[{"id":"w1","name":"One"}]`))
	case "GET /products":
		_, _ = w.Write([]byte(`[{"id":"p1","name":"Mug","price":10}]`))
	case "POST /orders":
		var order map[string]any
		_ = json.NewDecoder(r.Body).Decode(&order)
		f.mu.Lock()
		f.orders = append(f.orders, order)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"o1","status":"pending"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	}
}

type harness struct {
	router      *gin.Engine
	remote      *remoteAPI
	backend     *kv.MemoryStore
	broadcaster *messaging.EventBroadcaster
	container   *container.Container
}

const testSysopPassword = "sysop-secret"

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prevPassword := config.SysopPassword
	config.SysopPassword = testSysopPassword
	t.Cleanup(func() { config.SysopPassword = prevPassword })

	remote := &remoteAPI{}
	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	logger := logging.NewDiscardLogger()
	perf := performance.NewTracker(nil)
	backend := kv.NewMemoryStore()
	client := api.NewClient(srv.URL, 2*time.Second, logger)
	broadcaster := messaging.NewEventBroadcaster(logger, 16)
	doc := templates.NewDocument()
	theme := stores.NewThemeStore(client, doc, logger)
	profiles := storefront.NewManager(backend, nil, broadcaster, client, storefront.Config{MaxProfiles: 10}, logger, perf)

	c := &container.Container{
		AuthService:     services.NewAuthService(client, logger, perf),
		CheckoutService: services.NewCheckoutService(client, logger, perf),
		SettingsService: services.NewSettingsService(client, theme, logger, perf),
		CatalogService:  services.NewCatalogService(client),
		ThemeStore:      theme,
		Document:        doc,
		Profiles:        profiles,
		Backend:         backend,
		API:             client,
		Broadcaster:     broadcaster,
		Logger:          logger,
		PerfTracker:     perf,
	}
	return &harness{router: SetupRoutes(c), remote: remote, backend: backend, broadcaster: broadcaster, container: c}
}

func (h *harness) do(t *testing.T, method, path, profile string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if profile != "" {
		req.Header.Set(middleware.ProfileHeader, profile)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var out map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func product(id string, price float64) map[string]any {
	return map[string]any{"id": id, "name": "Item " + id, "price": price, "image": "/img/" + id + ".png"}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	w, body := h.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["storage"])
}

func TestProfileIsMintedAndReused(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(t, http.MethodPost, "/api/v1/cart", "", gin.H{"product": product("a", 10), "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	profile := w.Header().Get(middleware.ProfileHeader)
	require.NotEmpty(t, profile)
	assert.Contains(t, w.Header().Get("Set-Cookie"), middleware.ProfileCookie+"="+profile)

	w, body := h.do(t, http.MethodPost, "/api/v1/cart", profile, gin.H{"product": product("b", 5), "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, profile, w.Header().Get(middleware.ProfileHeader))
	assert.Equal(t, 35.0, body["total"])
	assert.Equal(t, 2.0, body["count"])
}

func TestMalformedProfileRejected(t *testing.T) {
	h := newHarness(t)
	w, _ := h.do(t, http.MethodGet, "/api/v1/cart", "../../etc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartQuantityAndClear(t *testing.T) {
	h := newHarness(t)
	profile := "4f1b6c1e-7c59-4a57-9d1c-8d0f6a2b9e10"

	h.do(t, http.MethodPost, "/api/v1/cart", profile, gin.H{"product": product("a", 10), "quantity": 1})
	h.do(t, http.MethodPost, "/api/v1/cart", profile, gin.H{"product": product("b", 4), "quantity": 1})

	_, body := h.do(t, http.MethodPut, "/api/v1/cart/a", profile, gin.H{"quantity": 0})
	assert.Equal(t, 1.0, body["count"])
	assert.Equal(t, 4.0, body["total"])

	w, _ := h.do(t, http.MethodPut, "/api/v1/cart/b", profile, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, body = h.do(t, http.MethodDelete, "/api/v1/cart", profile, nil)
	assert.Equal(t, 0.0, body["count"])

	raw, err := h.backend.Get(context.Background(), storefront.ProfilePrefix(profile)+stores.KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestWishlistToggleIsIdempotentPair(t *testing.T) {
	h := newHarness(t)
	profile := "0b7d2a52-3f0e-4b6a-9c55-1c7a3e2d4f60"

	_, body := h.do(t, http.MethodPost, "/api/v1/wishlist/toggle", profile, product("x", 3))
	assert.Equal(t, true, body["added"])

	_, body = h.do(t, http.MethodGet, "/api/v1/wishlist/x", profile, nil)
	assert.Equal(t, true, body["inWishlist"])

	_, body = h.do(t, http.MethodPost, "/api/v1/wishlist/toggle", profile, product("x", 3))
	assert.Equal(t, false, body["added"])
	assert.Equal(t, 0.0, body["count"])
}

func TestCustomerLoginLogout(t *testing.T) {
	h := newHarness(t)
	profile := "9a0c5d4e-1b2f-4c3d-8e7f-6a5b4c3d2e1f"

	w, body := h.do(t, http.MethodPost, "/api/v1/auth/login", profile, gin.H{"email": "a@b.c", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cust-tok", body["token"])

	_, body = h.do(t, http.MethodGet, "/api/v1/auth/session", profile, nil)
	assert.Equal(t, true, body["isAuthenticated"])

	// The admin namespace is independent.
	_, body = h.do(t, http.MethodGet, "/api/v1/admin/session", profile, nil)
	assert.Equal(t, false, body["isAuthenticated"])

	_, body = h.do(t, http.MethodPost, "/api/v1/auth/logout", profile, nil)
	assert.Equal(t, false, body["isAuthenticated"])
	assert.Equal(t, string(stores.StateAnonymous), body["state"])
}

func TestAdoptRejectsSentinelToken(t *testing.T) {
	h := newHarness(t)
	profile := "5c6d7e8f-9a0b-4c1d-8e2f-3a4b5c6d7e8f"

	w, _ := h.do(t, http.MethodPut, "/api/v1/admin/session", profile, gin.H{"user": gin.H{"id": "a1"}, "token": "undefined"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, body := h.do(t, http.MethodGet, "/api/v1/admin/session", profile, nil)
	assert.Equal(t, false, body["isAuthenticated"])
}

func TestCheckout(t *testing.T) {
	h := newHarness(t)
	profile := "1d2e3f40-5a6b-4c7d-8e9f-0a1b2c3d4e5f"

	w, _ := h.do(t, http.MethodPost, "/api/v1/checkout", profile, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h.do(t, http.MethodPost, "/api/v1/auth/login", profile, gin.H{"email": "a@b.c", "password": "pw"})
	h.do(t, http.MethodPost, "/api/v1/cart", profile, gin.H{"product": product("a", 10), "quantity": 2})

	w, body := h.do(t, http.MethodPost, "/api/v1/checkout", profile, gin.H{"paymentMethod": "card"})
	require.Equal(t, http.StatusCreated, w.Code)
	cart := body["cart"].(map[string]any)
	assert.Equal(t, 0.0, cart["count"])

	h.remote.mu.Lock()
	defer h.remote.mu.Unlock()
	require.Len(t, h.remote.orders, 1)
	assert.Equal(t, 20.0, h.remote.orders[0]["total"])
	assert.Contains(t, h.remote.auth, "POST /orders Bearer cust-tok")
}

func TestAdminFlows(t *testing.T) {
	h := newHarness(t)
	profile := "6e7f8091-a2b3-4c4d-9e5f-60718293a4b5"

	w, _ := h.do(t, http.MethodGet, "/api/v1/admin/products", profile, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(t, http.MethodPost, "/api/v1/admin/login", profile, gin.H{"email": "op@b.c", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)

	_, body := h.do(t, http.MethodGet, "/api/v1/admin/websites", profile, nil)
	assert.Len(t, body["websites"], 1)

	_, body = h.do(t, http.MethodPut, "/api/v1/admin/websites/selected", profile, gin.H{"websiteId": "w1"})
	assert.Equal(t, "w1", body["selectedWebsiteId"])

	w, body = h.do(t, http.MethodGet, "/api/v1/admin/products", profile, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "w1", body["websiteId"])
	assert.Equal(t, 1.0, body["count"])

	// An out-of-process logout clears the admin session here too.
	require.NoError(t, h.backend.Delete(context.Background(), storefront.ProfilePrefix(profile)+stores.KeyAdminToken))
	_, body = h.do(t, http.MethodGet, "/api/v1/admin/session", profile, nil)
	assert.Equal(t, false, body["isAuthenticated"])
}

func TestThemeRefreshAndCSS(t *testing.T) {
	h := newHarness(t)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/theme.css", nil))
	assert.Contains(t, w.Body.String(), "--primary-color:#0d9488")

	rw, body := h.do(t, http.MethodPost, "/api/v1/theme/refresh", "", nil)
	require.Equal(t, http.StatusOK, rw.Code)
	theme := body["theme"].(map[string]any)
	assert.Equal(t, "#ff0000", theme["primary_color"])

	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/theme.css", nil))
	assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "--primary-color:#ff0000")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/theme.css", nil)
	req.Header.Set("If-None-Match", w.Header().Get("ETag"))
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestEventStreamReceivesCartWrites(t *testing.T) {
	h := newHarness(t)
	srv := httptest.NewServer(h.router)
	t.Cleanup(srv.Close)
	profile := "7a8b9c0d-1e2f-4a3b-8c4d-5e6f7a8b9c0d"

	header := http.Header{}
	header.Set(middleware.ProfileHeader, profile)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/api/v1/events", header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool {
		return h.broadcaster.ConnectionCount(profile) == 1
	}, 2*time.Second, 10*time.Millisecond)

	h.do(t, http.MethodPost, "/api/v1/cart", profile, gin.H{"product": product("a", 1), "quantity": 1})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg messaging.EventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, stores.KeyCart, msg.Key)
	assert.Equal(t, kv.OpSet, msg.Op)
}

func TestSystemRoutesRequireSysop(t *testing.T) {
	h := newHarness(t)
	victim := "11111111-2222-4333-8444-555555555555"

	w, _ := h.do(t, http.MethodPost, "/api/v1/admin/login", victim, gin.H{"email": "op@b.c", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/v1/system/profiles", nil},
		{http.MethodGet, "/api/v1/system/performance", nil},
		{http.MethodGet, "/api/v1/system/logs/levels", nil},
		{http.MethodPost, "/api/v1/system/logs/levels", gin.H{"channel": "http", "level": "debug"}},
	} {
		w, _ := h.do(t, tc.method, tc.path, "", tc.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
		assert.NotContains(t, w.Body.String(), victim, tc.path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/profiles", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/system/profiles", nil)
	req.Header.Set("Authorization", "Bearer "+testSysopPassword)
	w = httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), victim)
}

func TestSystemRoutesClosedWithoutPassword(t *testing.T) {
	h := newHarness(t)
	config.SysopPassword = ""
	router := SetupRoutes(h.container)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/profiles", nil)
	req.Header.Set("Authorization", "Bearer ")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAllowedOrigin(t *testing.T) {
	check := AllowedOrigin([]string{"http://localhost:4321"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "http://localhost:4321")
	assert.True(t, check(req))
	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}
