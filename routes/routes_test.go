package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tourly/database/memdb"
	"tourly/database/repository"
	"tourly/handlers"
	"tourly/services/booking"
	"tourly/services/schedule"
	"tourly/services/tour"
)

type stubVerifier map[string]*auth.Token

func (s stubVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	if token, ok := s[idToken]; ok {
		return token, nil
	}
	return nil, errors.New("invalid token")
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repos := repository.NewMemory(memdb.New())
	logger := zap.NewNop()

	bookingSvc := &booking.DefaultBookingService{
		Reservations: repos.Reservations,
		Tours:        repos.Tours,
		Policy:       booking.Policy{TxTimeout: 5 * time.Second, ReleaseSeatsOnCancel: true},
		Logger:       logger,
	}
	tourSvc := tour.NewDefaultTourService(repos.Tours, nil, nil, time.Minute, logger)
	scheduleSvc := schedule.NewDefaultScheduleService(repos.Slots, repos.Tours, logger)

	verifier := stubVerifier{
		"guide-token":   {UID: "guide-1", Claims: map[string]interface{}{"role": "guide", "name": "Rita"}},
		"tourist-token": {UID: "user-1", Claims: map[string]interface{}{"name": "Ana Silva", "email": "ana@example.com"}},
	}

	r := gin.New()
	RegisterRoutes(r, handlers.NewHandlerBundle(bookingSvc, tourSvc, scheduleSvc, verifier), logger)
	return &testServer{t: t, router: r}
}

func (s *testServer) do(method, path, token string, body interface{}, out interface{}) int {
	s.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(s.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if out != nil {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

type tourEnvelope struct {
	Tour struct {
		ID string `json:"id"`
	} `json:"tour"`
}

type slotsEnvelope struct {
	Slots []struct {
		ID        string `json:"id"`
		Available int    `json:"available"`
	} `json:"slots"`
}

type reservationsEnvelope struct {
	Reservations []struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		PartySize int    `json:"partySize"`
	} `json:"reservations"`
}

func TestBookingFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	var created tourEnvelope
	code := s.do(http.MethodPost, "/api/guide/tours", "guide-token", map[string]interface{}{
		"title": "Alfama walk", "city": "Lisbon", "price": 20, "durationMinutes": 120,
	}, &created)
	require.Equal(t, http.StatusCreated, code)
	tourID := created.Tour.ID

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	var slots slotsEnvelope
	code = s.do(http.MethodPost, "/api/guide/tours/"+tourID+"/slots", "guide-token", map[string]interface{}{
		"slots": []map[string]interface{}{{"start": start, "end": start.Add(2 * time.Hour), "capacity": 4}},
	}, &slots)
	require.Equal(t, http.StatusCreated, code)
	require.Len(t, slots.Slots, 1)
	slotID := slots.Slots[0].ID

	// anonymous booking
	var booked struct {
		ReservationID string `json:"reservationId"`
	}
	code = s.do(http.MethodPost, "/api/slots/"+slotID+"/bookings", "", map[string]interface{}{
		"fullName": "Guest", "email": "guest@example.com", "partySize": 3,
	}, &booked)
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, booked.ReservationID)

	// not enough seats left
	code = s.do(http.MethodPost, "/api/slots/"+slotID+"/bookings", "", map[string]interface{}{
		"fullName": "Guest", "email": "guest@example.com", "partySize": 2,
	}, nil)
	assert.Equal(t, http.StatusConflict, code)

	// signed-in booking of the last seat
	var mine struct {
		ReservationID string `json:"reservationId"`
	}
	code = s.do(http.MethodPost, "/api/slots/"+slotID+"/bookings", "tourist-token", map[string]interface{}{"partySize": 1}, &mine)
	require.Equal(t, http.StatusCreated, code)

	var listed slotsEnvelope
	code = s.do(http.MethodGet, "/api/tours/"+tourID+"/slots", "", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, listed.Slots, "a sold-out slot is not bookable")

	code = s.do(http.MethodGet, "/api/tours/"+tourID+"/slots?bookable=false", "", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, listed.Slots, 1)
	assert.Equal(t, 0, listed.Slots[0].Available)

	var my reservationsEnvelope
	code = s.do(http.MethodGet, "/api/me/reservations", "tourist-token", nil, &my)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, my.Reservations, 1)
	assert.Equal(t, "pending", my.Reservations[0].Status)

	code = s.do(http.MethodPost, "/api/guide/reservations/"+mine.ReservationID+"/confirm", "guide-token", nil, nil)
	assert.Equal(t, http.StatusOK, code)

	code = s.do(http.MethodPost, "/api/reservations/"+mine.ReservationID+"/cancel", "tourist-token", nil, nil)
	assert.Equal(t, http.StatusOK, code)

	code = s.do(http.MethodGet, "/api/tours/"+tourID+"/slots?bookable=false", "", nil, &listed)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1, listed.Slots[0].Available)

	var forGuide reservationsEnvelope
	code = s.do(http.MethodGet, "/api/guide/tours/"+tourID+"/reservations", "guide-token", nil, &forGuide)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, forGuide.Reservations, 2)
}

func TestRouteGuards(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/me/reservations", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/me/reservations", "forged", nil, nil))
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/guide/tours", "tourist-token", nil, nil))
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/guide/tours", "guide-token", nil, nil))
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/tours", "", nil, nil))
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/slots/missing/bookings", "", map[string]interface{}{
		"fullName": "Guest", "email": "guest@example.com", "partySize": 1,
	}, nil))
}
