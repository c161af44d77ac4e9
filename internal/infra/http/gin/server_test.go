package ginserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelrates/internal/app/auth"
	"hotelrates/internal/app/dto"
	"hotelrates/internal/app/registry"
	"hotelrates/internal/app/services/catalog"
	"hotelrates/internal/infra/obs"
	"hotelrates/internal/infra/security"
	"hotelrates/internal/infra/storage/memory"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type testServer struct {
	router   *gin.Engine
	verifier security.TokenVerifier
	outbox   *memory.Outbox
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := obs.NewLogger("test")
	store := memory.NewStore()
	factory := memory.NewFactory(store)
	box := memory.NewOutbox(logger)
	metrics := obs.NewMetrics("hotelrates-test")
	buses := registry.Build(registry.Deps{
		UoW:         factory,
		Outbox:      box,
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		QuoteCache:  memory.NewQuoteCache(),
		Catalog:     &catalog.Service{},
		CacheTTL:    time.Minute,
		Logger:      logger,
		Observer:    metrics,
		Now:         func() time.Time { return testNow },
	})
	verifier := security.TokenVerifier{Secret: []byte("test-secret"), Issuer: "hotelrates"}
	router := NewRouter(obs.Middleware{Logger: logger, Metrics: metrics}, obs.HealthHandlers{}, Handlers{
		Rooms:          RoomHandler{Commands: buses.Commands, Queries: buses.Queries},
		Pricing:        PricingHandler{Commands: buses.Commands, Queries: buses.Queries},
		Availability:   AvailabilityHandler{Queries: buses.Queries},
		Booking:        BookingHandler{Commands: buses.Commands, Queries: buses.Queries},
		Config:         ConfigHandler{Commands: buses.Commands, Queries: buses.Queries},
		AuthMiddleware: AuthMiddleware{Verifier: verifier, Logger: logger}.Handle,
		Metrics:        metrics.Handler(),
	})
	return &testServer{router: router, verifier: verifier, outbox: box}
}

func (s *testServer) token(t *testing.T, roles ...string) string {
	t.Helper()
	tok, err := s.verifier.Issue("tester", roles, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedRoom(t *testing.T) {
	t.Helper()
	rec := s.do(t, http.MethodPut, "/api/v1/admin/rooms/r-101", s.token(t, auth.RoleAdmin), dto.Room{
		Name: "Sea View", Price: 100, Category: "deluxe", Capacity: 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAdminRoutesRequireRole(t *testing.T) {
	s := newTestServer(t)
	room := dto.Room{Name: "Sea View", Price: 100, Category: "deluxe", Capacity: 2}

	rec := s.do(t, http.MethodPut, "/api/v1/admin/rooms/r-101", "", room)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/admin/rooms/r-101", s.token(t, auth.RoleGuest), room)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/admin/rooms/r-101", "not-a-token", room)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/admin/rooms/r-101", s.token(t, auth.RoleStaff), room)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuoteAndBookingFlow(t *testing.T) {
	s := newTestServer(t)
	s.seedRoom(t)

	rec := s.do(t, http.MethodGet, "/api/v1/rooms/r-101/quote?check_in=2024-06-10&check_out=2024-06-12", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var quote dto.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Equal(t, 200.0, quote.Price.FinalTotal)
	assert.Equal(t, 2, quote.Price.TotalNights)
	assert.Equal(t, "USD", quote.Currency)

	req := createBookingRequest{RoomID: "r-101", GuestName: "Ana", Guests: 2, CheckIn: "2024-06-10", CheckOut: "2024-06-12"}
	rec = s.do(t, http.MethodPost, "/api/v1/bookings", "", req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created dto.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, 200.0, created.TotalPrice)
	assert.NotEmpty(t, created.ID)

	overlapping := req
	overlapping.CheckIn, overlapping.CheckOut = "2024-06-11", "2024-06-13"
	rec = s.do(t, http.MethodPost, "/api/v1/bookings", "", overlapping)
	assert.Equal(t, http.StatusConflict, rec.Code)

	backToBack := req
	backToBack.CheckIn, backToBack.CheckOut = "2024-06-12", "2024-06-14"
	rec = s.do(t, http.MethodPost, "/api/v1/bookings", "", backToBack)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/rooms/r-101/availability?check_in=2024-06-11&check_out=2024-06-12", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var avail dto.Availability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &avail))
	assert.False(t, avail.Available)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/bookings/"+created.ID+"/cancel", s.token(t, auth.RoleAdmin), map[string]string{"reason": "guest request"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/bookings", "", overlapping)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, s.outbox.Delivered())
}

func TestCreateBookingIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	s.seedRoom(t)

	body := createBookingRequest{RoomID: "r-101", GuestName: "Ana", Guests: 1, CheckIn: "2024-06-10", CheckOut: "2024-06-11"}
	send := func() dto.Booking {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "key-1")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var out dto.Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}
	first, second := send(), send()
	assert.Equal(t, first.ID, second.ID)
}

func TestReplayedFailureKeepsStatus(t *testing.T) {
	s := newTestServer(t)
	s.seedRoom(t)

	body := createBookingRequest{RoomID: "r-101", GuestName: "Ana", Guests: 1, CheckIn: "2024-05-01", CheckOut: "2024-05-03"}
	send := func() *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "past-1")
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}
	first, second := send(), send()
	assert.Equal(t, http.StatusBadRequest, first.Code)
	assert.Equal(t, http.StatusBadRequest, second.Code, second.Body.String())
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestBadRequestsMapToStatusCodes(t *testing.T) {
	s := newTestServer(t)
	s.seedRoom(t)

	rec := s.do(t, http.MethodGet, "/api/v1/rooms/r-101/quote?check_in=2024-06-12&check_out=2024-06-10", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/rooms/missing/quote?check_in=2024-06-10&check_out=2024-06-12", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/bookings", "", createBookingRequest{RoomID: "r-101", GuestName: "Ana", Guests: 5, CheckIn: "2024-06-10", CheckOut: "2024-06-12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/bookings", "", createBookingRequest{RoomID: "r-101", GuestName: "Ana", Guests: 1, CheckIn: "2024-05-01", CheckOut: "2024-05-03"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSiteConfigRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/v1/admin/config", s.token(t, auth.RoleAdmin), dto.SiteConfig{HotelName: "Harbour Inn"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/config", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg dto.SiteConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "Harbour Inn", cfg.HotelName)
	assert.Equal(t, "USD", cfg.Currency)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/livez", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/readyz", "", nil).Code)

	s.do(t, http.MethodGet, "/api/v1/rooms", "", nil)
	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(1, 1)
	router := gin.New()
	router.GET("/x", rl.Limit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}
