package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelease_service/domain"
	application "travelease_service/service"
)

type fakeBookingStore struct {
	bookings map[primitive.ObjectID]*domain.Booking
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: map[primitive.ObjectID]*domain.Booking{}}
}

func (s *fakeBookingStore) GetByUser(ctx context.Context, email string) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for _, booking := range s.bookings {
		if booking.UserEmail == email {
			bookings = append(bookings, booking)
		}
	}
	return bookings, nil
}

func (s *fakeBookingStore) ExistsForVehicle(ctx context.Context, vehicleID string) (bool, error) {
	for _, booking := range s.bookings {
		if booking.VehicleID == vehicleID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBookingStore) Insert(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	booking.ID = primitive.NewObjectID()
	s.bookings[booking.ID] = booking
	return booking, nil
}

func (s *fakeBookingStore) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	if _, ok := s.bookings[id]; !ok {
		return 0, nil
	}
	delete(s.bookings, id)
	return 1, nil
}

func newBookingRouter(store *fakeBookingStore) *mux.Router {
	service := application.NewBookingService(store, nil, testLogger(), testTracer())
	handler := NewBookingHandler(testLogger(), service, testTracer())
	router := mux.NewRouter()
	handler.Init(router)
	return router
}

func bookingBody(vehicleID, email string) *strings.Reader {
	return strings.NewReader(`{"vehicleId": "` + vehicleID + `", "userEmail": "` + email + `"}`)
}

func TestCreateBookingWithoutClaims(t *testing.T) {
	router := newBookingRouter(newFakeBookingStore())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("POST", "/bookings", bookingBody("v1", "alice@x.com")))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestCreateBookingForSomeoneElse(t *testing.T) {
	router := newBookingRouter(newFakeBookingStore())

	req := withClaims(httptest.NewRequest("POST", "/bookings", bookingBody("v1", "bob@x.com")), "alice@x.com")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
}

func TestCreateBookingForBookedVehicle(t *testing.T) {
	store := newFakeBookingStore()
	router := newBookingRouter(store)

	first := withClaims(httptest.NewRequest("POST", "/bookings", bookingBody("v1", "alice@x.com")), "alice@x.com")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, first)
	if recorder.Code != http.StatusOK {
		t.Fatalf("first booking: expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	second := withClaims(httptest.NewRequest("POST", "/bookings", bookingBody("v1", "bob@x.com")), "bob@x.com")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, second)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestCreateBookingReturnsBookingID(t *testing.T) {
	store := newFakeBookingStore()
	router := newBookingRouter(store)

	req := withClaims(httptest.NewRequest("POST", "/bookings", bookingBody("v1", "alice@x.com")), "alice@x.com")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	id, err := primitive.ObjectIDFromHex(resp["bookingId"])
	if err != nil {
		t.Fatalf("bookingId is not a valid id: %v", err)
	}
	if store.bookings[id].ConfirmationCode == "" {
		t.Fatalf("stored booking has no confirmation code")
	}
}

func TestListMineWithoutClaims(t *testing.T) {
	router := newBookingRouter(newFakeBookingStore())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/bookings", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestListMineIsScopedToCaller(t *testing.T) {
	store := newFakeBookingStore()
	store.Insert(context.Background(), &domain.Booking{VehicleID: "v1", UserEmail: "alice@x.com"})
	store.Insert(context.Background(), &domain.Booking{VehicleID: "v2", UserEmail: "bob@x.com"})
	router := newBookingRouter(store)

	req := withClaims(httptest.NewRequest("GET", "/bookings", nil), "alice@x.com")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	var bookings []*domain.Booking
	if err := json.Unmarshal(recorder.Body.Bytes(), &bookings); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(bookings) != 1 || bookings[0].UserEmail != "alice@x.com" {
		t.Fatalf("expected only the caller's bookings, got %#v", bookings)
	}
}

func TestCancelBookingMalformedID(t *testing.T) {
	router := newBookingRouter(newFakeBookingStore())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/bookings/nope", nil))

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	router := newBookingRouter(newFakeBookingStore())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("DELETE", "/bookings/"+primitive.NewObjectID().Hex(), nil))

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}
