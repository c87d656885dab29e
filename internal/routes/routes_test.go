package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/example/unihome/internal/config"
	"github.com/example/unihome/internal/database"
	"github.com/example/unihome/internal/handlers"
	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/services"
	"github.com/example/unihome/internal/utils"
	"github.com/example/unihome/internal/views"
)

type testServer struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	db, err := database.Open(filepath.Join(dir, "unihome.db"), false)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Seed(db, database.SeedOptions{
		AdminUsername: "admin",
		AdminEmail:    "admin@unihome.com",
		AdminPassword: "admin123",
		DemoData:      true,
	}))

	storage, err := services.NewUploadStorage(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	cfg := &config.Config{
		SessionSecret:   "test-secret",
		TokenExpires:    time.Hour,
		VerificationTTL: 5 * time.Minute,
		CORSOrigins:     "*",
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		Views:        views.New(false),
	})
	Register(app, Deps{
		DB:       db,
		Config:   cfg,
		Sessions: session.New(),
		Codes:    services.NewDBVerificationStore(db),
		Mailer:   services.LogMailer{},
		Notifier: services.LogNotifier{},
		Storage:  storage,
	})

	return &testServer{app: app, db: db}
}

func (s *testServer) do(t *testing.T, method, target, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	payload := map[string]interface{}{}
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	}
	return resp, payload
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	resp, payload := s.do(t, http.MethodPost, "/api/login", "", fiber.Map{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode, payload)
	token, _ := payload["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (s *testServer) customerToken(t *testing.T) string {
	t.Helper()

	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&models.User{
		Username:      "student",
		Email:         "student@example.com",
		PasswordHash:  hash,
		EmailVerified: true,
	}).Error)
	return s.login(t, "student@example.com", "secret123")
}

func firstPropertyID(t *testing.T, db *gorm.DB) uint {
	t.Helper()

	var property models.Property
	require.NoError(t, db.Order("id asc").First(&property).Error)
	return property.ID
}

func TestListPropertiesShape(t *testing.T) {
	s := newTestServer(t)

	resp, payload := s.do(t, http.MethodGet, "/api/properties?location="+url.QueryEscape("多伦多")+"&per_page=1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, true, payload["success"])
	data, ok := payload["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 1)

	pagination := payload["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, true, pagination["has_next"])

	filters := payload["filters"].(map[string]interface{})
	assert.Equal(t, "多伦多", filters["location"])
}

func TestGetPropertyNotFound(t *testing.T) {
	s := newTestServer(t)

	resp, payload := s.do(t, http.MethodGet, "/api/property/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, payload["success"])
}

func TestFavoritesRequireLogin(t *testing.T) {
	s := newTestServer(t)

	resp, payload := s.do(t, http.MethodGet, "/api/favorites", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, true, payload["need_login"])

	resp, payload = s.do(t, http.MethodGet, "/api/favorites/check/1", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, payload["is_favorited"])
	assert.Equal(t, true, payload["need_login"])
}

func TestFavoriteLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.customerToken(t)
	propertyID := firstPropertyID(t, s.db)

	resp, _ := s.do(t, http.MethodPost, "/api/favorites", token, fiber.Map{"property_id": propertyID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, payload := s.do(t, http.MethodPost, "/api/favorites", token, fiber.Map{"property_id": propertyID})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, payload["success"])

	_, payload = s.do(t, http.MethodGet, "/api/favorites/check/"+itoa(propertyID), token, nil)
	assert.Equal(t, true, payload["is_favorited"])

	_, payload = s.do(t, http.MethodGet, "/api/favorites", token, nil)
	assert.Len(t, payload["data"], 1)

	resp, _ = s.do(t, http.MethodDelete, "/api/favorites/"+itoa(propertyID), token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/favorites/"+itoa(propertyID), token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAppointmentEndpoints(t *testing.T) {
	s := newTestServer(t)
	propertyID := firstPropertyID(t, s.db)

	resp, payload := s.do(t, http.MethodPost, "/api/appointments", "", fiber.Map{
		"property_id":    propertyID,
		"name":           "Li Wei",
		"preferred_date": "2024-09-01",
		"preferred_time": "14:00",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "缺少必填字段: phone", payload["message"])

	resp, _ = s.do(t, http.MethodPost, "/api/appointments", "", fiber.Map{
		"property_id":    propertyID,
		"name":           "Li Wei",
		"phone":          "555-0100",
		"preferred_date": "2024-09-01",
		"preferred_time": "14:00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/appointments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/appointments", s.customerToken(t), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	admin := s.login(t, "admin@unihome.com", "admin123")
	resp, payload = s.do(t, http.MethodGet, "/api/appointments", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := payload["data"].([]interface{})
	require.Len(t, data, 1)

	id := uint(data[0].(map[string]interface{})["id"].(float64))
	resp, payload = s.do(t, http.MethodPut, "/api/appointments/"+itoa(id), admin, fiber.Map{"status": "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPut, "/api/appointments/"+itoa(id), admin, fiber.Map{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPropertyIDAcceptedAsString(t *testing.T) {
	s := newTestServer(t)
	token := s.customerToken(t)
	propertyID := itoa(firstPropertyID(t, s.db))

	resp, payload := s.do(t, http.MethodPost, "/api/favorites", token, fiber.Map{"property_id": propertyID})
	require.Equal(t, http.StatusOK, resp.StatusCode, payload)

	resp, payload = s.do(t, http.MethodPost, "/api/appointments", "", fiber.Map{
		"property_id":    propertyID,
		"name":           "Li Wei",
		"phone":          "555-0100",
		"preferred_date": "2024-09-01",
		"preferred_time": "14:00",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, payload)
	data := payload["data"].(map[string]interface{})
	assert.Equal(t, propertyID, itoa(uint(data["property_id"].(float64))))

	resp, _ = s.do(t, http.MethodPost, "/api/favorites", token, fiber.Map{"property_id": "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	s := newTestServer(t)

	resp, payload := s.do(t, http.MethodPost, "/api/login", "", fiber.Map{"email": "admin@unihome.com", "password": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, payload["success"])

	_, payload = s.do(t, http.MethodGet, "/api/current_user", "", nil)
	assert.Equal(t, false, payload["success"])
}

func TestCurrentUserWithToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin@unihome.com", "admin123")

	_, payload := s.do(t, http.MethodGet, "/api/current_user", token, nil)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "admin", payload["username"])
}

func TestLocationInUseCannotBeDeleted(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@unihome.com", "admin123")

	var location models.Location
	require.NoError(t, s.db.Where("name = ?", "多伦多").First(&location).Error)

	resp, payload := s.do(t, http.MethodDelete, "/admin/locations/"+itoa(location.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, payload["message"], "无法删除")

	resp, _ = s.do(t, http.MethodPost, "/admin/locations", admin, fiber.Map{"name": "多伦多", "country": "Canada"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, payload = s.do(t, http.MethodPost, "/admin/locations", admin, fiber.Map{"name": "蒙特利尔", "country": "Canada"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := payload["data"].(map[string]interface{})

	resp, _ = s.do(t, http.MethodDelete, "/admin/locations/"+itoa(uint(created["id"].(float64))), admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExportCustomerFavoritesCSV(t *testing.T) {
	s := newTestServer(t)
	token := s.customerToken(t)
	propertyID := firstPropertyID(t, s.db)
	resp, _ := s.do(t, http.MethodPost, "/api/favorites", token, fiber.Map{"property_id": propertyID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	admin := s.login(t, "admin@unihome.com", "admin123")
	req := httptest.NewRequest(http.MethodGet, "/api/admin/customer_favorites/export", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment;")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[1], "student@example.com")
}

func TestPublicPagesRender(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/", "/search?location=" + url.QueryEscape("多伦多"), "/property/1", "/favorites"} {
		resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
	}
}

func TestConsoleRequiresAdmin(t *testing.T) {
	s := newTestServer(t)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get(fiber.HeaderLocation))

	admin := s.login(t, "admin@unihome.com", "admin123")
	for _, target := range []string{"/admin/dashboard", "/admin/properties", "/admin/property/add", "/admin/property/edit/1", "/admin/appointments"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, target)
	}
}

func TestConsoleLoginForm(t *testing.T) {
	s := newTestServer(t)

	post := func(username, password string) *http.Response {
		form := url.Values{"username": {username}, "password": {password}}
		req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		resp, err := s.app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	assert.Equal(t, http.StatusUnauthorized, post("admin", "wrong").StatusCode)

	resp := post("admin", "admin123")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/admin/dashboard", resp.Header.Get(fiber.HeaderLocation))
}

func TestToggleStatusFromConsole(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@unihome.com", "admin123")
	propertyID := firstPropertyID(t, s.db)

	resp, payload := s.do(t, http.MethodPost, "/admin/property/toggle_status/"+itoa(propertyID), admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.StatusInactive, payload["status"])

	resp, payload = s.do(t, http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), payload["inactive_properties"])
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestTorontoPriceAscending(t *testing.T) {
	s := newTestServer(t)

	target := "/api/properties?location=" + url.QueryEscape("多伦多") + "&sort_by=price&sort_order=asc&page=1&per_page=2"
	resp, payload := s.do(t, http.MethodGet, target, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := payload["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, float64(550), data[0].(map[string]interface{})["price"])
	assert.Equal(t, float64(750), data[1].(map[string]interface{})["price"])
	for _, item := range data {
		record := item.(map[string]interface{})
		for _, key := range []string{"desc", "facilities", "traffic", "surroundings", "landlord", "map", "video", "videos", "images", "minTerm"} {
			assert.Contains(t, record, key)
		}
	}
}
