package bookings

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/internal/shared"
)

func newTestRouter(p shared.Principal) (chi.Router, *memoryRepo) {
	svc, repo, _ := newTestService()
	handler := NewHandler(slog.New(slog.DiscardHandler), svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := shared.ContextWithPrincipal(req.Context(), p)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/bookings", handler.MountRoutes)
	return r, repo
}

func TestCreateAndShowBooking(t *testing.T) {
	router, _ := newTestRouter(driver(10, 1))

	body := `{"vehicle_id":1,"pickup_time":"2025-06-01T09:00:00Z","origin":"Airport","destination":"Harbour","price":45}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, StatusUpcoming, created.Status)
	require.Equal(t, int64(10), created.DriverID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateBookingValidation(t *testing.T) {
	router, _ := newTestRouter(driver(10, 1))

	// origin is required
	body := `{"vehicle_id":1,"pickup_time":"2025-06-01T09:00:00Z","destination":"Harbour","price":45}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestListAcceptsBothDateFormats(t *testing.T) {
	router, repo := newTestRouter(driver(10, 1))
	repo.bookings[1] = Booking{ID: 1, DriverID: 10, Status: StatusUpcoming, PickupTime: time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC)}

	for _, query := range []string{
		"?date_from=2025-06-01&date_to=2025-06-30",
		"?date_from=2025-06-01T00:00:00Z&date_to=2025-06-30T23:59:59Z",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings"+query, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var list []Booking
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings?date_from=junk", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEmptyIsJSONArray(t *testing.T) {
	router, _ := newTestRouter(driver(10, 1))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]\n", rec.Body.String())
}

func TestSetStatusEndpoint(t *testing.T) {
	router, repo := newTestRouter(driver(10, 1))
	repo.bookings[1] = Booking{ID: 1, DriverID: 10, Status: StatusUpcoming}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/bookings/1/status", strings.NewReader(`{"status":"in_progress"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, StatusInProgress, updated.Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/bookings/1/status", strings.NewReader(`{"status":"finished"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEndpointIsQuietForMissing(t *testing.T) {
	router, _ := newTestRouter(shared.Principal{UserID: 1, Role: shared.RoleAdmin, CompanyID: 1})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/bookings/42", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUnauthenticatedRequestIsRejected(t *testing.T) {
	svc, _, _ := newTestService()
	handler := NewHandler(slog.New(slog.DiscardHandler), svc)
	r := chi.NewRouter()
	r.Route("/bookings", handler.MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bookings", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
