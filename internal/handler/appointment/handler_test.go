package appointment

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

	"github.com/odontoware/clinic-api/internal/config"
	"github.com/odontoware/clinic-api/internal/handler"
	"github.com/odontoware/clinic-api/internal/middleware"
	"github.com/odontoware/clinic-api/internal/model"
	"github.com/odontoware/clinic-api/internal/repository"
	"github.com/odontoware/clinic-api/internal/scheduling"
	appointmentsvc "github.com/odontoware/clinic-api/internal/service/appointment"
	apperrors "github.com/odontoware/clinic-api/pkg/errors"
	"github.com/odontoware/clinic-api/pkg/logger"
)

type fakeRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*model.Appointment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeRepo) BookedSlots(_ context.Context, q scheduling.Query) ([]scheduling.BookedSlot, error) {
	var out []scheduling.BookedSlot
	for _, apt := range r.appointments {
		if apt.OrganizationID != q.OrganizationID || apt.DoctorID != q.DoctorID || !apt.Date.Equal(q.Date) {
			continue
		}
		if q.ExcludeID != nil && apt.ID == *q.ExcludeID {
			continue
		}
		slot, err := scheduling.NewSlot(apt.StartTime, apt.EndTime)
		if err != nil {
			return nil, err
		}
		out = append(out, scheduling.BookedSlot{
			ID:        apt.ID,
			Slot:      slot,
			Cancelled: apt.Status == model.AppointmentStatusCancelled,
		})
	}
	return out, nil
}

func (r *fakeRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := r.appointments[id]
	if !ok || apt.OrganizationID != orgID {
		return nil, apperrors.NotFound("appointment", nil)
	}
	clone := *apt
	return &clone, nil
}

func (r *fakeRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	apt, ok := r.appointments[id]
	if !ok || apt.OrganizationID != orgID {
		return apperrors.NotFound("appointment", nil)
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range r.appointments {
		if apt.OrganizationID == filters.OrganizationID {
			out = append(out, apt)
		}
	}
	return out, nil
}

func (r *fakeRepo) WithSlotLock(ctx context.Context, _, _ uuid.UUID, _ time.Time, fn func(ctx context.Context, tx repository.SlotTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx, &fakeTx{repo: r})
}

type fakeTx struct {
	repo *fakeRepo
}

func (t *fakeTx) BookedSlots(ctx context.Context, q scheduling.Query) ([]scheduling.BookedSlot, error) {
	return t.repo.BookedSlots(ctx, q)
}

func (t *fakeTx) Insert(_ context.Context, apt *model.Appointment) error {
	clone := *apt
	t.repo.appointments[apt.ID] = &clone
	return nil
}

func (t *fakeTx) Update(_ context.Context, apt *model.Appointment) error {
	if _, ok := t.repo.appointments[apt.ID]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	clone := *apt
	t.repo.appointments[apt.ID] = &clone
	return nil
}

func (t *fakeTx) InsertEvent(_ context.Context, _ *model.OutboxEvent) error {
	return nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *model.Doctor) error {
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) Get(_ context.Context, orgID, id uuid.UUID) (*model.Doctor, error) {
	d, ok := r.doctors[id]
	if !ok || d.OrganizationID != orgID {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func (r *fakeDoctorRepo) Update(_ context.Context, d *model.Doctor) error {
	r.doctors[d.ID] = d
	return nil
}

func (r *fakeDoctorRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	delete(r.doctors, id)
	return nil
}

func (r *fakeDoctorRepo) List(_ context.Context, orgID uuid.UUID) ([]*model.Doctor, error) {
	var out []*model.Doctor
	for _, d := range r.doctors {
		if d.OrganizationID == orgID {
			out = append(out, d)
		}
	}
	return out, nil
}

type testEnv struct {
	router   *gin.Engine
	repo     *fakeRepo
	orgID    uuid.UUID
	doctorID uuid.UUID
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler.RegisterValidators()

	orgID := uuid.New()
	doctorID := uuid.New()

	repo := newFakeRepo()
	doctorRepo := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{
		doctorID: {
			Base:           model.Base{ID: doctorID},
			OrganizationID: orgID,
			WorkdayStart:   "09:00",
			WorkdayEnd:     "11:00",
			SlotMinutes:    30,
		},
	}}

	svc := appointmentsvc.NewService(repo, doctorRepo, nil, config.SchedulingConfig{}, logger.NewLogger(nil))

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextOrganizationID, orgID)
	})
	NewHandler(svc).RegisterRoutes(api)

	return &testEnv{router: r, repo: repo, orgID: orgID, doctorID: doctorID}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func createBody(env *testEnv, start, end string) map[string]any {
	return map[string]any{
		"patient_id": uuid.New().String(),
		"doctor_id":  env.doctorID.String(),
		"date":       "2026-09-14",
		"start_time": start,
		"end_time":   end,
		"type":       "cleaning",
	}
}

func TestCreateAppointmentReturns201(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", createBody(env, "09:00", "09:30"))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Status string            `json:"status"`
		Data   model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, env.orgID, resp.Data.OrganizationID)
	assert.Equal(t, "09:00", resp.Data.StartTime)
	assert.Equal(t, model.AppointmentStatusScheduled, resp.Data.Status)
}

func TestCreateAppointmentConflictReturns400(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", createBody(env, "09:00", "09:30"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/appointments", createBody(env, "09:15", "09:45"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, appointmentsvc.ConflictMessage, resp.Message)
	assert.Len(t, env.repo.appointments, 1)
}

func TestCreateAppointmentBackToBackAccepted(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", createBody(env, "09:00", "09:30"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/appointments", createBody(env, "09:30", "10:00"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateAppointmentRejectsBadTimeFormat(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", createBody(env, "9:00", "09:30"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.repo.appointments)
}

func TestUpdateAppointmentNotFoundReturns404(t *testing.T) {
	env := setupTest(t)

	path := fmt.Sprintf("/api/v1/appointments/%s", uuid.New())
	w := env.do(t, http.MethodPut, path, map[string]any{"notes": "rebooked"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelThenDeleteAppointment(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", createBody(env, "10:00", "10:30"))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.Data.ID

	// Delete requires the appointment to be cancelled first.
	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/appointments/%s", id), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/appointments/%s/cancel", id), map[string]any{"reason": "patient request"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/appointments/%s", id), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetAvailabilityExcludesBookedSlots(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodPost, "/api/v1/appointments", createBody(env, "09:30", "10:00"))
	require.Equal(t, http.StatusCreated, w.Code)

	path := fmt.Sprintf("/api/v1/appointments/availability?doctor_id=%s&date=2026-09-14", env.doctorID)
	w = env.do(t, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.TimeSlot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Workday 09:00-11:00 in 30 minute steps, minus the booked 09:30 slot.
	require.Len(t, resp.Data, 3)
	assert.Equal(t, "09:00", resp.Data[0].Start)
	assert.Equal(t, "10:00", resp.Data[1].Start)
	assert.Equal(t, "10:30", resp.Data[2].Start)
}

func TestListAppointmentsRequiresValidFilters(t *testing.T) {
	env := setupTest(t)

	w := env.do(t, http.MethodGet, "/api/v1/appointments?doctor_id=not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
