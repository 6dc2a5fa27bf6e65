package booking_controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamevents/marketplace/models/shared_models"
)

func newTestRouter(f *fixture, asUser uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", asUser)
	})

	bc := NewBookingController(f.service, nil)
	r.POST("/bookings", bc.CreateBooking)
	r.POST("/bookings/:id/decision", bc.DecideBooking)
	r.GET("/bookings/:id", bc.GetBooking)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBookingBody(serviceID uuid.UUID) gin.H {
	return gin.H{
		"service_id":     serviceID.String(),
		"event_date":     "2026-11-20",
		"event_time":     "18:00",
		"event_location": "Juhu Beach, Mumbai",
		"guest_count":    150,
		"contact_phone":  "9876543210",
	}
}

func TestCreateBookingEndpoint(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, f.customerID)

	w := doJSON(t, r, http.MethodPost, "/bookings", createBookingBody(f.catalog.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Message string `json:"message"`
		Warning string `json:"warning"`
		Booking struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, shared_models.BookingStatusPending, resp.Booking.Status)
	assert.Empty(t, resp.Warning)
	assert.Equal(t, 1, f.notifier.callCount())
}

func TestCreateBookingEndpointSurfacesWarning(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = fmt.Errorf("dispatch down")
	r := newTestRouter(f, f.customerID)

	w := doJSON(t, r, http.MethodPost, "/bookings", createBookingBody(f.catalog.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Booking created, but failed to notify vendor.")
}

func TestCreateBookingEndpointValidation(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, f.customerID)

	body := createBookingBody(f.catalog.ID)
	body["contact_phone"] = "12345"
	w := doJSON(t, r, http.MethodPost, "/bookings", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookingEndpointUnknownService(t *testing.T) {
	f := newFixture(t)
	r := newTestRouter(f, f.customerID)

	w := doJSON(t, r, http.MethodPost, "/bookings", createBookingBody(uuid.New()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDecideBookingEndpoint(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)
	r := newTestRouter(f, f.vendorID)

	w := doJSON(t, r, http.MethodPost, "/bookings/"+booking.ID.String()+"/decision", gin.H{"decision": "accept"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), shared_models.BookingStatusConfirmed)
	assert.Equal(t, 1, f.outbox.entryCount())
}

func TestDecideBookingEndpointStatusMapping(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	// Foreign vendor gets 403.
	outsider := newTestRouter(f, uuid.New())
	w := doJSON(t, outsider, http.MethodPost, "/bookings/"+booking.ID.String()+"/decision", gin.H{"decision": "reject"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	vendor := newTestRouter(f, f.vendorID)

	// Unknown booking gets 404.
	w = doJSON(t, vendor, http.MethodPost, "/bookings/"+uuid.NewString()+"/decision", gin.H{"decision": "accept"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Malformed decision is rejected by binding.
	w = doJSON(t, vendor, http.MethodPost, "/bookings/"+booking.ID.String()+"/decision", gin.H{"decision": "approve"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Settle it, then a second decision conflicts.
	w = doJSON(t, vendor, http.MethodPost, "/bookings/"+booking.ID.String()+"/decision", gin.H{"decision": "reject"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, vendor, http.MethodPost, "/bookings/"+booking.ID.String()+"/decision", gin.H{"decision": "accept"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetBookingEndpointVisibility(t *testing.T) {
	f := newFixture(t)
	booking := f.createPendingBooking(t)

	for _, id := range []uuid.UUID{f.customerID, f.vendorID} {
		r := newTestRouter(f, id)
		w := doJSON(t, r, http.MethodGet, "/bookings/"+booking.ID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	stranger := newTestRouter(f, uuid.New())
	w := doJSON(t, stranger, http.MethodGet, "/bookings/"+booking.ID.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r := newTestRouter(f, f.customerID)
	w = doJSON(t, r, http.MethodGet, "/bookings/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
