package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/beesaferoot/rental-engine/internal/apperr"
	"github.com/beesaferoot/rental-engine/internal/auth"
	"github.com/beesaferoot/rental-engine/internal/clock"
	"github.com/beesaferoot/rental-engine/internal/models"
	"github.com/beesaferoot/rental-engine/internal/property"
	"github.com/beesaferoot/rental-engine/internal/repository"
	"github.com/beesaferoot/rental-engine/internal/reservation"
	"github.com/beesaferoot/rental-engine/internal/testdb"
	"github.com/beesaferoot/rental-engine/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	db      *gorm.DB
	auth    *auth.Authenticator
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	db := testdb.Open(t)
	store := repository.NewStore(db)
	clk := clock.Fake(time.Date(2024, time.May, 20, 10, 0, 0, 0, time.UTC))

	tokens, err := token.NewService("gateway-secret", token.WithClock(clk))
	require.NoError(t, err)
	authn, err := auth.New(store.Users(), tokens, auth.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	gw, err := New(Deps{
		Auth:         authn,
		Properties:   property.NewService(store.Properties(), nil),
		Reservations: reservation.NewEngine(store, reservation.WithClock(clk)),
		Health:       store,
	})
	require.NoError(t, err)
	return &testServer{t: t, handler: gw.Handler(), db: db, auth: authn}
}

func (s *testServer) do(method, path, tok string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(email, role string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "password123", "role": role})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out sessionResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.Token
}

func (s *testServer) admin() string {
	s.t.Helper()
	_, err := s.auth.CreateAdmin(context.Background(), auth.RegisterRequest{Email: "admin@example.com", Password: "password123"})
	require.NoError(s.t, err)
	session, err := s.auth.Login(context.Background(), "admin@example.com", "password123")
	require.NoError(s.t, err)
	return session.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestAuthFlow(t *testing.T) {
	s := setupServer(t)

	tok := s.register("ada@example.com", "owner")

	rec := s.do(http.MethodGet, "/auth/me", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "ada@example.com", me.Email)
	assert.Equal(t, "OWNER", me.Role)

	rec = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "ADA@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/auth/login", "", gin.H{"email": "ada@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, rec).Error)

	rec = s.do(http.MethodPost, "/auth/register", "", gin.H{"email": "ada@example.com", "password": "password123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "duplicate_email", decodeError(t, rec).Error)
}

func TestRegister_Validation(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"bad email", gin.H{"email": "nope", "password": "password123"}},
		{"short password", gin.H{"email": "a@example.com", "password": "short"}},
		{"unknown role", gin.H{"email": "a@example.com", "password": "password123", "role": "landlord"}},
		{"admin role", gin.H{"email": "a@example.com", "password": "password123", "role": "ADMIN"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid_input", decodeError(t, rec).Error)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthentication(t *testing.T) {
	s := setupServer(t)

	rec := s.do(http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decodeError(t, rec).Error)

	rec = s.do(http.MethodGet, "/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok := s.register("gone@example.com", "tenant")
	require.NoError(t, s.db.Unscoped().Where("email = ?", "gone@example.com").Delete(&models.User{}).Error)
	rec = s.do(http.MethodGet, "/auth/me", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "user_vanished", decodeError(t, rec).Error)
}

func createProperty(t *testing.T, s *testServer, tok string) propertyResponse {
	t.Helper()
	rec := s.do(http.MethodPost, "/properties", tok, gin.H{
		"title":         "Canal house",
		"address":       "Prinsengracht 263, Amsterdam",
		"latitude":      52.375,
		"longitude":     4.884,
		"pricePerNight": "100.00",
		"images":        []string{"https://img/a.jpg"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p propertyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestPropertyRoutes(t *testing.T) {
	s := setupServer(t)
	owner := s.register("owner@example.com", "OWNER")
	other := s.register("other@example.com", "OWNER")
	tenant := s.register("tenant@example.com", "")
	admin := s.admin()

	p := createProperty(t, s, owner)
	assert.Equal(t, "PENDING_VALIDATION", p.Status)
	assert.Equal(t, []string{"https://img/a.jpg"}, p.Images)

	rec := s.do(http.MethodPost, "/properties", tenant, gin.H{"title": "Nope", "pricePerNight": 10})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Error)

	rec = s.do(http.MethodPost, "/properties", owner, gin.H{"title": "Far north", "latitude": 91})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/properties/%d", p.ID), other, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, fmt.Sprintf("/properties/%d", p.ID), owner, gin.H{"title": "Canal house, renovated", "pricePerNight": "120"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPatch, fmt.Sprintf("/properties/%d/status", p.ID), owner, gin.H{"status": "AVAILABLE"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodPatch, fmt.Sprintf("/properties/%d/status", p.ID), admin, gin.H{"status": "available"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/properties?status=available&q=amsterdam", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []propertyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Canal house, renovated", list[0].Title)

	rec = s.do(http.MethodGet, "/properties?status=sold", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/properties/my", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = s.do(http.MethodGet, "/properties/my", tenant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/properties/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "property_not_found", decodeError(t, rec).Error)

	rec = s.do(http.MethodGet, "/properties/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/properties/%d", p.ID), other, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(http.MethodDelete, fmt.Sprintf("/properties/%d", p.ID), owner, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRentalRoutes(t *testing.T) {
	s := setupServer(t)
	owner := s.register("owner@example.com", "OWNER")
	tenant := s.register("tenant@example.com", "TENANT")
	tenant2 := s.register("tenant2@example.com", "TENANT")
	admin := s.admin()

	p := createProperty(t, s, owner)
	rec := s.do(http.MethodPatch, fmt.Sprintf("/properties/%d/status", p.ID), admin, gin.H{"status": "AVAILABLE"})
	require.Equal(t, http.StatusOK, rec.Code)

	book := func(tok, start, end string) *httptest.ResponseRecorder {
		return s.do(http.MethodPost, "/rentals", tok, gin.H{"propertyId": p.ID, "startDate": start, "endDate": end})
	}

	rec = book(tenant, "2024-06-01", "2024-06-04")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var b bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Equal(t, 3, b.Nights)
	assert.Equal(t, "300", b.TotalPrice.String())
	assert.Equal(t, "PENDING_CONFIRMATION", b.Status)
	assert.Equal(t, "2024-06-01", b.StartDate.String())

	rec = book(tenant2, "2024-06-03", "2024-06-05")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date_conflict", decodeError(t, rec).Error)

	rec = book(tenant2, "2024-06-04", "2024-06-06")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = book(owner, "2024-07-01", "2024-07-03")
	assert.Equal(t, http.StatusForbidden, rec.Code, "owners are not tenants")

	rec = book(tenant, "2024-05-01", "2024-05-03")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_date_range", decodeError(t, rec).Error)

	rec = book(tenant, "01/06/2024", "2024-06-03")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeError(t, rec).Error)

	rec = s.do(http.MethodGet, "/rentals/my-rentals", tenant, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))
	assert.Len(t, mine, 1)

	rec = s.do(http.MethodGet, fmt.Sprintf("/rentals/property/%d", p.ID), owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []bookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = s.do(http.MethodGet, fmt.Sprintf("/rentals/property/%d", p.ID), tenant, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/rentals/my-rentals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(apperr.KindNotFound))
	assert.Equal(t, http.StatusForbidden, StatusFor(apperr.KindForbidden))
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperr.KindInvalidInput))
	assert.Equal(t, http.StatusBadRequest, StatusFor(apperr.KindBusinessRule))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(apperr.KindUnauthenticated))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(apperr.KindInternal))
}

type brokenProperties struct{ Properties }

func (brokenProperties) List(ctx context.Context, status, query string) ([]models.Property, error) {
	return nil, errors.New("connection reset by peer at 10.0.0.7:5432")
}

func (brokenProperties) Get(ctx context.Context, id uint) (*models.Property, error) {
	panic("unexpected nil map")
}

func TestInternalErrorsAreOpaque(t *testing.T) {
	gw, err := New(Deps{Properties: brokenProperties{}})
	require.NoError(t, err)
	h := gw.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal", body.Error)
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, rec.Body.String(), "10.0.0.7")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties/1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "nil map")
}

func TestRequestIDAndHealth(t *testing.T) {
	s := setupServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "5f0c1a4e-3c3b-4f38-9b7e-6a2f1d1c9e11")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "5f0c1a4e-3c3b-4f38-9b7e-6a2f1d1c9e11", rec.Header().Get("X-Request-ID"))

	rec = s.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
