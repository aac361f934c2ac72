package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medverse-server/internal/booking"
	"medverse-server/internal/models"
)

// fakeStore backs the booking service in handler tests, enforcing the same
// one-active-appointment-per-slot rule the database index does.
type fakeStore struct {
	mu    sync.Mutex
	appts map[string]*models.Appointment
	slots map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		appts: make(map[string]*models.Appointment),
		slots: make(map[string]string),
	}
}

func (f *fakeStore) key(doctorID string, startAt time.Time) string {
	return doctorID + "|" + startAt.UTC().Format(time.RFC3339)
}

func (f *fakeStore) Create(ctx context.Context, appt *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := f.key(appt.DoctorID, appt.StartAt)
	if appt.Status != models.StatusCancelled {
		if _, taken := f.slots[key]; taken {
			return booking.ErrSlotTaken
		}
	}
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	if appt.Status != models.StatusCancelled {
		f.slots[key] = appt.ID
	}
	cp := *appt
	f.appts[appt.ID] = &cp
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (f *fakeStore) FindOwned(ctx context.Context, id, patientID string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appt, ok := f.appts[id]
	if !ok || appt.PatientID != patientID {
		return nil, booking.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (f *fakeStore) FindActiveBySlot(ctx context.Context, doctorID string, startAt time.Time) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.slots[f.key(doctorID, startAt)]
	if !ok {
		return nil, booking.ErrNotFound
	}
	cp := *f.appts[id]
	return &cp, nil
}

func (f *fakeStore) Update(ctx context.Context, appt *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, ok := f.appts[appt.ID]
	if !ok {
		return booking.ErrNotFound
	}
	newKey := f.key(appt.DoctorID, appt.StartAt)
	if appt.Status != models.StatusCancelled {
		if holder, taken := f.slots[newKey]; taken && holder != appt.ID {
			return booking.ErrSlotTaken
		}
	}
	oldKey := f.key(prev.DoctorID, prev.StartAt)
	if f.slots[oldKey] == appt.ID {
		delete(f.slots, oldKey)
	}
	if appt.Status != models.StatusCancelled {
		f.slots[newKey] = appt.ID
	}
	cp := *appt
	f.appts[appt.ID] = &cp
	return nil
}

func (f *fakeStore) ListByPatient(ctx context.Context, patientID string, page, limit int) ([]models.Appointment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListActiveByDoctorBetween(ctx context.Context, doctorID string, from, to time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Appointment
	for _, a := range f.appts {
		if a.DoctorID != doctorID || a.Status == models.StatusCancelled {
			continue
		}
		if a.StartAt.Before(from) || !a.StartAt.Before(to) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeStore) UpdateDoctorSnapshot(ctx context.Context, doctorID, name, specialization string) (int64, error) {
	return 0, nil
}

// fakeDirectory resolves doctor lookups without a database.
type fakeDirectory struct {
	doctors map[string]*models.User
}

func (f *fakeDirectory) DoctorProfile(ctx context.Context, doctorID string) (*models.User, error) {
	doctor, ok := f.doctors[doctorID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return doctor, nil
}

// asUser injects the auth context the way AuthMiddleware would.
func asUser(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userEmail", userID+"@example.com")
		c.Set("userRole", role)
		c.Next()
	}
}

func newTestRouter(store booking.Store, directory DoctorDirectory, userID string, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewAppointmentHandler(booking.NewService(store), directory)

	router := gin.New()
	api := router.Group("/api", asUser(userID, role))
	api.POST("/appointments", handler.BookAppointment)
	api.GET("/appointments", handler.GetAppointments)
	api.GET("/appointments/booked-slots", handler.GetBookedSlots)
	api.PATCH("/appointments/:id/cancel", handler.CancelAppointment)
	return router
}

func testDirectory() *fakeDirectory {
	doctor := &models.User{
		FirstName:      "Jane",
		LastName:       "Smith",
		Role:           models.RoleDoctor,
		Specialization: "Cardiology",
	}
	doctor.ID = "doctor-1"
	return &fakeDirectory{doctors: map[string]*models.User{"doctor-1": doctor}}
}

func bookBody(t *testing.T, doctorID, date, timeOfDay string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(gin.H{
		"doctorId": doctorID,
		"mode":     string(models.ModeInPerson),
		"date":     date,
		"time":     timeOfDay,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func doRequest(router *gin.Engine, method, path string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// futureDate returns a YYYY-MM-DD string far enough ahead that the
// must-be-in-the-future check never trips.
func futureDate() string {
	return time.Now().UTC().AddDate(1, 0, 0).Format("2006-01-02")
}

func TestBookAppointmentLifecycle(t *testing.T) {
	store := newFakeStore()
	directory := testDirectory()
	date := futureDate()

	patient1 := newTestRouter(store, directory, "patient-1", models.RolePatient)
	patient2 := newTestRouter(store, directory, "patient-2", models.RolePatient)

	// First booking wins the slot.
	rec := doRequest(patient1, http.MethodPost, "/api/appointments", bookBody(t, "doctor-1", date, "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data models.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "patient-1", created.Data.PatientID)
	assert.Equal(t, "Jane Smith", created.Data.DoctorName)
	assert.Equal(t, "Cardiology", created.Data.Specialization)
	assert.Equal(t, models.StatusScheduled, created.Data.Status)

	// A second patient hitting the same slot gets a conflict.
	rec = doRequest(patient2, http.MethodPost, "/api/appointments", bookBody(t, "doctor-1", date, "10:00"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The slot shows up in the booked listing.
	rec = doRequest(patient2, http.MethodGet, fmt.Sprintf("/api/appointments/booked-slots?doctorId=doctor-1&date=%s", date), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var slots struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	assert.Equal(t, []string{"10:00"}, slots.Data)

	// Cancelling frees the slot.
	rec = doRequest(patient1, http.MethodPatch, "/api/appointments/"+created.Data.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Now the other patient can rebook it.
	rec = doRequest(patient2, http.MethodPost, "/api/appointments", bookBody(t, "doctor-1", date, "10:00"))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestBookAppointmentUnknownDoctor(t *testing.T) {
	router := newTestRouter(newFakeStore(), testDirectory(), "patient-1", models.RolePatient)

	rec := doRequest(router, http.MethodPost, "/api/appointments", bookBody(t, "doctor-404", futureDate(), "10:00"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookAppointmentRejectsPast(t *testing.T) {
	router := newTestRouter(newFakeStore(), testDirectory(), "patient-1", models.RolePatient)

	rec := doRequest(router, http.MethodPost, "/api/appointments", bookBody(t, "doctor-1", "2020-01-01", "10:00"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookAppointmentRejectsBadMode(t *testing.T) {
	router := newTestRouter(newFakeStore(), testDirectory(), "patient-1", models.RolePatient)

	body, err := json.Marshal(gin.H{
		"doctorId": "doctor-1",
		"mode":     "Telepathy",
		"date":     futureDate(),
		"time":     "10:00",
	})
	require.NoError(t, err)

	rec := doRequest(router, http.MethodPost, "/api/appointments", bytes.NewBuffer(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookAppointmentMissingFields(t *testing.T) {
	router := newTestRouter(newFakeStore(), testDirectory(), "patient-1", models.RolePatient)

	body, err := json.Marshal(gin.H{"doctorId": "doctor-1"})
	require.NoError(t, err)

	rec := doRequest(router, http.MethodPost, "/api/appointments", bytes.NewBuffer(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelForeignAppointmentHidden(t *testing.T) {
	store := newFakeStore()
	directory := testDirectory()
	date := futureDate()

	owner := newTestRouter(store, directory, "patient-1", models.RolePatient)
	stranger := newTestRouter(store, directory, "patient-2", models.RolePatient)

	rec := doRequest(owner, http.MethodPost, "/api/appointments", bookBody(t, "doctor-1", date, "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data models.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// Someone else's appointment looks like it does not exist.
	rec = doRequest(stranger, http.MethodPatch, "/api/appointments/"+created.Data.ID+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelIgnoresTokenRoleClaim(t *testing.T) {
	store := newFakeStore()
	directory := testDirectory()
	date := futureDate()

	owner := newTestRouter(store, directory, "patient-1", models.RolePatient)

	rec := doRequest(owner, http.MethodPost, "/api/appointments", bookBody(t, "doctor-1", date, "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data models.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// A token still claiming admin gives its holder no reach beyond their
	// own appointments on this route.
	staleAdmin := newTestRouter(store, directory, "stale-admin", models.RoleAdmin)
	rec = doRequest(staleAdmin, http.MethodPatch, "/api/appointments/"+created.Data.ID+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Same for a token claiming doctor, even the assigned one.
	staleDoctor := newTestRouter(store, directory, "doctor-1", models.RoleDoctor)
	rec = doRequest(staleDoctor, http.MethodPatch, "/api/appointments/"+created.Data.ID+"/cancel", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// The appointment is untouched and still cancellable by its owner.
	rec = doRequest(owner, http.MethodPatch, "/api/appointments/"+created.Data.ID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetBookedSlotsRequiresDoctorID(t *testing.T) {
	router := newTestRouter(newFakeStore(), testDirectory(), "patient-1", models.RolePatient)

	rec := doRequest(router, http.MethodGet, "/api/appointments/booked-slots", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBookedSlotsWithoutDateIsEmpty(t *testing.T) {
	router := newTestRouter(newFakeStore(), testDirectory(), "patient-1", models.RolePatient)

	rec := doRequest(router, http.MethodGet, "/api/appointments/booked-slots?doctorId=doctor-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var slots struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slots))
	assert.Empty(t, slots.Data)
}

func TestGetAppointmentsPaginatedEnvelope(t *testing.T) {
	store := newFakeStore()
	directory := testDirectory()
	date := futureDate()

	router := newTestRouter(store, directory, "patient-1", models.RolePatient)

	rec := doRequest(router, http.MethodPost, "/api/appointments", bookBody(t, "doctor-1", date, "10:00"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/appointments?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Appointments      []models.Appointment `json:"appointments"`
			CurrentPage       int                  `json:"currentPage"`
			TotalPages        int                  `json:"totalPages"`
			TotalAppointments int64                `json:"totalAppointments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Appointments, 1)
	assert.Equal(t, 1, resp.Data.CurrentPage)
	assert.Equal(t, 1, resp.Data.TotalPages)
	assert.EqualValues(t, 1, resp.Data.TotalAppointments)
}
