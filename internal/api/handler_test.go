package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"storefront/internal/admin"
	"storefront/internal/analytics"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/order"
	"storefront/internal/redisclient"
	"storefront/internal/store"
	"storefront/internal/storefront"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryDB stands in for the Postgres store
type memoryDB struct {
	mu       sync.Mutex
	items    map[string]models.MenuItem
	branches map[string]models.Branch
	events   []models.OrderEvent
	admins   map[string]*models.Admin
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		items:    map[string]models.MenuItem{},
		branches: map[string]models.Branch{},
		admins:   map[string]*models.Admin{},
	}
}

func (m *memoryDB) ListMenuItems(context.Context) ([]models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]models.MenuItem, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].NameAr < items[j].NameAr })
	return items, nil
}

func (m *memoryDB) GetMenuItem(_ context.Context, id string) (*models.MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("menu item %s: %w", id, store.ErrNotFound)
	}
	return &item, nil
}

func (m *memoryDB) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = uuid.New().String()
	m.items[item.ID] = *item
	return nil
}

func (m *memoryDB) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *memoryDB) DeleteMenuItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("menu item %s: %w", id, store.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

func (m *memoryDB) ListBranches(context.Context) ([]models.Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	branches := make([]models.Branch, 0, len(m.branches))
	for _, b := range m.branches {
		branches = append(branches, b)
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

func (m *memoryDB) ListActiveBranches(ctx context.Context) ([]models.Branch, error) {
	all, _ := m.ListBranches(ctx)
	active := all[:0]
	for _, b := range all {
		if b.Active {
			active = append(active, b)
		}
	}
	return active, nil
}

func (m *memoryDB) GetBranch(_ context.Context, id string) (*models.Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.branches[id]
	if !ok {
		return nil, fmt.Errorf("branch %s: %w", id, store.ErrNotFound)
	}
	return &b, nil
}

func (m *memoryDB) CreateBranch(_ context.Context, b *models.Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b.ID = uuid.New().String()
	m.branches[b.ID] = *b
	return nil
}

func (m *memoryDB) UpdateBranch(_ context.Context, b *models.Branch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.branches[b.ID] = *b
	return nil
}

func (m *memoryDB) DeleteBranch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.branches[id]; !ok {
		return fmt.Errorf("branch %s: %w", id, store.ErrNotFound)
	}
	delete(m.branches, id)
	return nil
}

func (m *memoryDB) AppendOrderEvent(_ context.Context, e *models.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *e
	if stored.Timestamp.Kind == models.TimestampPending {
		stored.Timestamp = models.NativeTimestamp(time.Now())
	}
	m.events = append(m.events, stored)
	return nil
}

func (m *memoryDB) ListOrderEventsSince(_ context.Context, since time.Time) ([]models.OrderEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.OrderEvent
	for _, e := range m.events {
		if ts, ok := e.Timestamp.Normalize(); ok && !ts.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryDB) GetAdminByEmail(_ context.Context, email string) (*models.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[email]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("admin %s: %w", email, store.ErrNotFound)
}

type memorySlots struct {
	language string
	branch   string
	cart     []models.CartLine
}

func (m *memorySlots) LoadLanguage(context.Context) (string, error) { return m.language, nil }
func (m *memorySlots) SaveLanguage(_ context.Context, l string) error {
	m.language = l
	return nil
}
func (m *memorySlots) LoadBranch(context.Context) (string, error) { return m.branch, nil }
func (m *memorySlots) SaveBranch(_ context.Context, b string) error {
	m.branch = b
	return nil
}
func (m *memorySlots) LoadCart(context.Context) ([]models.CartLine, error) {
	return append([]models.CartLine(nil), m.cart...), nil
}
func (m *memorySlots) SaveCart(_ context.Context, lines []models.CartLine) error {
	m.cart = append([]models.CartLine(nil), lines...)
	return nil
}
func (m *memorySlots) Touch(context.Context) error { return nil }

type memoryAdminSessions struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memoryAdminSessions) SetAdminSession(_ context.Context, id, email string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[id] = email
	return nil
}

func (m *memoryAdminSessions) GetAdminSession(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if email, ok := m.data[id]; ok {
		return email, nil
	}
	return "", redisclient.ErrSessionNotFound
}

func (m *memoryAdminSessions) DeleteAdminSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type onlineProbe struct{}

func (onlineProbe) Online(context.Context) bool { return true }

func eventsRecorder(db *memoryDB) storefront.Recorder {
	return events.NewRecorder(db, nil, onlineProbe{}, time.Second)
}

type testServer struct {
	router *gin.Engine
	db     *memoryDB
	cache  *catalog.Cache
	cookie *http.Cookie
	token  string
}

func newTestServer(t *testing.T, readyErr error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := newMemoryDB()
	hash, err := auth.HashPassword("s3cret")
	require.NoError(t, err)
	db.admins["ops@example.com"] = &models.Admin{ID: "a1", Email: "ops@example.com", PasswordHash: hash}
	db.branches["b1"] = models.Branch{ID: "b1", Name: "Olaya", Phone: "+966 5 1234 5678", Active: true}
	db.items["m1"] = models.MenuItem{ID: "m1", NameAr: "فلافل", NameEn: "Falafel", Price: decimal.NewFromInt(5), Category: models.CategorySandwich, Available: true}

	cache := catalog.NewCache(db)
	require.NoError(t, cache.Refresh(context.Background()))

	slots := map[string]*memorySlots{}
	var slotsMu sync.Mutex
	slotsFor := func(id string) storefront.SessionStore {
		slotsMu.Lock()
		defer slotsMu.Unlock()
		if _, ok := slots[id]; !ok {
			slots[id] = &memorySlots{}
		}
		return slots[id]
	}

	recorder := eventsRecorder(db)
	handler := NewHandler(Dependencies{
		Sessions:  storefront.NewManager(slotsFor, nil, cache, order.NewComposer(""), recorder),
		Menu:      admin.NewMenuService(db, nil, cache),
		Branches:  admin.NewBranchService(db, nil, cache),
		Auth:      auth.NewService(db, &memoryAdminSessions{data: map[string]string{}}, "test-secret", time.Hour),
		Analytics: analytics.NewService(db, time.UTC),
		ReadyChecks: map[string]func(context.Context) error{
			"database": func(context.Context) error { return readyErr },
		},
		SessionTTL: time.Hour,
	})

	router := gin.New()
	handler.SetupRoutes(router)
	return &testServer{router: router, db: db, cache: cache}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "storefront_session" {
			s.cookie = c
		}
	}
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthAndReadiness(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/ready", nil).Code)

	down := newTestServer(t, errors.New("connection refused"))
	w := down.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestSessionCookieIssuedOnce(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/v1/session", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, srv.cookie)
	first := srv.cookie.Value

	body := decode(t, w)
	assert.Equal(t, "ar", body["language"])
	assert.Equal(t, "rtl", body["direction"])

	w = srv.do(t, http.MethodGet, "/api/v1/session", nil)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, first, decode(t, w)["id"])
}

func TestLanguageEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/session/language/toggle", nil)
	assert.Equal(t, "en", decode(t, w)["language"])

	w = srv.do(t, http.MethodPut, "/api/v1/session/language", map[string]string{"language": "fr"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPut, "/api/v1/session/language", map[string]string{"language": "ar"})
	assert.Equal(t, "ar", decode(t, w)["language"])
}

func TestLabelsFollowSessionLanguage(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/v1/labels?text=Add%20to%20Cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "rtl", body["direction"])
	assert.Equal(t, "أضف للسلة", body["translation"])
	labels := body["labels"].(map[string]interface{})
	assert.Equal(t, "عرض على الخريطة", labels["View on Map"])

	srv.do(t, http.MethodPost, "/api/v1/session/language/toggle", nil)
	body = decode(t, srv.do(t, http.MethodGet, "/api/v1/labels", nil))
	assert.Equal(t, "en", body["language"])
	assert.NotContains(t, body, "translation")
	labels = body["labels"].(map[string]interface{})
	assert.Equal(t, "View on Map", labels["View on Map"])
}

func TestCartAndCheckoutFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodPost, "/api/v1/checkout", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	srv.do(t, http.MethodPost, "/api/v1/cart/items", map[string]string{"item_id": "m1"})
	w = srv.do(t, http.MethodPatch, "/api/v1/cart/items/m1", map[string]int{"delta": 2})
	require.Equal(t, http.StatusOK, w.Code)
	cart := decode(t, w)
	assert.Equal(t, "15", cart["total"])

	srv.do(t, http.MethodPut, "/api/v1/session/language", map[string]string{"language": "en"})
	w = srv.do(t, http.MethodPost, "/api/v1/checkout", map[string]string{"notes": "extra tahini"})
	require.Equal(t, http.StatusOK, w.Code)
	composition := decode(t, w)
	assert.Contains(t, composition["url"], "https://wa.me/966512345678?text=")
	assert.Contains(t, composition["message"], "Falafel × 3")

	require.Len(t, srv.db.events, 2)
	assert.Equal(t, models.EventTypeOrderClicked, srv.db.events[0].Type)
	assert.Equal(t, models.EventTypeOrderSubmitted, srv.db.events[1].Type)

	w = srv.do(t, http.MethodDelete, "/api/v1/cart/items/m1", nil)
	assert.Equal(t, true, decode(t, w)["empty"])
}

func TestMenuEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/v1/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	menu := decode(t, w)
	sections := menu["sections"].([]interface{})
	require.Len(t, sections, 1)
	assert.Equal(t, "سندوتشات", sections[0].(map[string]interface{})["title"])

	w = srv.do(t, http.MethodPut, "/api/v1/session/branch", map[string]string{"branch_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func signIn(t *testing.T, srv *testServer) {
	t.Helper()
	w := srv.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"email": "ops@example.com", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	srv.token = decode(t, w)["token"].(string)
}

func TestAdminRequiresSession(t *testing.T) {
	srv := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/v1/admin/menu-items", nil).Code)

	w := srv.do(t, http.MethodPost, "/api/v1/admin/login", map[string]string{"email": "ops@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	signIn(t, srv)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/api/v1/admin/menu-items", nil).Code)

	srv.do(t, http.MethodPost, "/api/v1/admin/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/api/v1/admin/menu-items", nil).Code)
}

func TestAdminMenuCRUDRefreshesStorefront(t *testing.T) {
	srv := newTestServer(t, nil)
	signIn(t, srv)

	w := srv.do(t, http.MethodPost, "/api/v1/admin/menu-items", map[string]interface{}{
		"name_ar": "شاي", "name_en": "Tea", "price": "abc", "category": "drink",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/menu-items", map[string]interface{}{
		"name_ar": "شاي", "name_en": "Tea", "price": 2, "category": "drink",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode(t, w)
	id := created["item"].(map[string]interface{})["id"].(string)
	assert.Len(t, created["items"], 2)

	_, ok := srv.cache.Item(id)
	assert.True(t, ok, "storefront cache sees the new item")

	w = srv.do(t, http.MethodDelete, "/api/v1/admin/menu-items/"+id, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Are you sure")

	w = srv.do(t, http.MethodDelete, "/api/v1/admin/menu-items/"+id+"?confirm=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, ok = srv.cache.Item(id)
	assert.False(t, ok)

	w = srv.do(t, http.MethodPut, "/api/v1/admin/menu-items/"+id, map[string]interface{}{
		"name_ar": "شاي", "name_en": "Tea", "price": "1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminBranchCRUD(t *testing.T) {
	srv := newTestServer(t, nil)
	signIn(t, srv)

	w := srv.do(t, http.MethodPost, "/api/v1/admin/branches", map[string]interface{}{"name": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/admin/branches", map[string]interface{}{
		"name": "Malqa", "phone": "0555", "active": false,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, decode(t, w)["branches"], 2)
	assert.Len(t, srv.cache.Branches(), 1, "inactive branches stay hidden from customers")

	w = srv.do(t, http.MethodGet, "/api/v1/admin/branches", nil)
	assert.Len(t, decode(t, w)["branches"], 2)
}

func TestAdminAnalytics(t *testing.T) {
	srv := newTestServer(t, nil)
	signIn(t, srv)

	w := srv.do(t, http.MethodGet, "/api/v1/admin/analytics?period=yearly", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/admin/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "daily", body["period"])
	report := body["report"].(map[string]interface{})
	assert.Equal(t, float64(0), report["total_orders"])
	assert.Equal(t, "-", report["peak_hour"])
}

func TestRateLimiterPerClient(t *testing.T) {
	limiter := newClientLimiter(1, 2, time.Minute)
	now := time.Now()

	assert.True(t, limiter.allow("10.0.0.1", now))
	assert.True(t, limiter.allow("10.0.0.1", now))
	assert.False(t, limiter.allow("10.0.0.1", now))
	assert.True(t, limiter.allow("10.0.0.2", now))
	assert.True(t, limiter.allow("10.0.0.1", now.Add(time.Second)))
}
