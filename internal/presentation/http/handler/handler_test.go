package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/presentation/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// envelope is the decoded response.APIResponse
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func (e envelope) fields() []string {
	out := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// signedIn stands in for the auth middleware
func signedIn(doctorID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if doctorID != 0 {
			c.Set(middleware.DoctorIDKey, doctorID)
		}
		c.Next()
	}
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type fakeDoctorRepo struct {
	doctors map[int64]*entity.Doctor
}

func newFakeDoctorRepo(doctors ...entity.Doctor) *fakeDoctorRepo {
	r := &fakeDoctorRepo{doctors: make(map[int64]*entity.Doctor)}
	for i := range doctors {
		d := doctors[i]
		r.doctors[d.DoctorID] = &d
	}
	return r
}

func (r *fakeDoctorRepo) Create(_ context.Context, d *entity.Doctor) error {
	r.doctors[d.DoctorID] = d
	return nil
}

func (r *fakeDoctorRepo) GetByID(_ context.Context, id int64) (*entity.Doctor, error) {
	return r.doctors[id], nil
}

func (r *fakeDoctorRepo) List(context.Context) ([]entity.Doctor, error) {
	out := make([]entity.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDoctorRepo) Count(context.Context) (int64, error) {
	return int64(len(r.doctors)), nil
}

// noAppointments is an empty appointment book
type noAppointments struct{}

func (noAppointments) GetByID(context.Context, string) (*entity.Appointment, error) {
	return nil, nil
}

func (noAppointments) GetByIDs(context.Context, []string) ([]entity.Appointment, error) {
	return nil, nil
}

func (noAppointments) ListByDoctorOn(context.Context, int64, time.Time) ([]entity.Appointment, error) {
	return nil, nil
}

func (noAppointments) ListRecent(context.Context, int) ([]entity.Appointment, error) {
	return nil, nil
}

func (noAppointments) ListByPatient(context.Context, string) ([]entity.Appointment, error) {
	return nil, nil
}

func (noAppointments) ListAll(context.Context) ([]entity.Appointment, error) {
	return nil, nil
}

type fakeBillRepo struct {
	mu    sync.Mutex
	bills map[uuid.UUID]*entity.Bill
}

func newFakeBillRepo() *fakeBillRepo {
	return &fakeBillRepo{bills: make(map[uuid.UUID]*entity.Bill)}
}

func (r *fakeBillRepo) Create(_ context.Context, b *entity.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.SyncBalance()
	cp := *b
	r.bills[b.ID] = &cp
	return nil
}

func (r *fakeBillRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBillRepo) Update(_ context.Context, b *entity.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.SyncBalance()
	cp := *b
	r.bills[b.ID] = &cp
	return nil
}

func (r *fakeBillRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bills {
		if b.BillNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBillRepo) List(_ context.Context, _ *repository.BillFilterParams) ([]entity.Bill, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.Bill, 0, len(r.bills))
	for _, b := range r.bills {
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBillRepo) ListByPatient(context.Context, string) ([]entity.Bill, error) {
	return nil, nil
}

func (r *fakeBillRepo) DistinctPatientMRNos(context.Context) ([]string, error) {
	return nil, nil
}

func (r *fakeBillRepo) Stats(context.Context, time.Time) (*repository.BillStats, error) {
	return &repository.BillStats{TotalBills: int64(len(r.bills))}, nil
}
