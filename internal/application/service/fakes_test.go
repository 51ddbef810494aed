package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/enum"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/events"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/metrics"
)

var errDown = errors.New("database is down")

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
	var out []entity.Doctor
	for _, d := range r.doctors {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoctorID < out[j].DoctorID })
	return out, nil
}

func (r *fakeDoctorRepo) Count(context.Context) (int64, error) {
	return int64(len(r.doctors)), nil
}

// fakeAppointmentRepo keeps appointments latest first, like the real queries
type fakeAppointmentRepo struct {
	appointments []entity.Appointment
}

func newFakeAppointmentRepo(appointments ...entity.Appointment) *fakeAppointmentRepo {
	sorted := append([]entity.Appointment(nil), appointments...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	return &fakeAppointmentRepo{appointments: sorted}
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*entity.Appointment, error) {
	for i := range r.appointments {
		if r.appointments[i].AppointmentID == id {
			a := r.appointments[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) GetByIDs(_ context.Context, ids []string) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range r.appointments {
		for _, id := range ids {
			if a.AppointmentID == id {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListByDoctorOn(_ context.Context, doctorID int64, day time.Time) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID && a.IsOn(day) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListRecent(_ context.Context, limit int) ([]entity.Appointment, error) {
	if len(r.appointments) < limit {
		limit = len(r.appointments)
	}
	return append([]entity.Appointment(nil), r.appointments[:limit]...), nil
}

func (r *fakeAppointmentRepo) ListByPatient(_ context.Context, mrno string) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, a := range r.appointments {
		if a.MRNo == mrno {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListAll(context.Context) ([]entity.Appointment, error) {
	return append([]entity.Appointment(nil), r.appointments...), nil
}

type fakeBillRepo struct {
	mu    sync.Mutex
	bills []*entity.Bill
	// taken numbers answer ExistsByNumber with true
	taken map[string]bool
	// duplicateOnCreate makes the next n inserts hit the unique index
	duplicateOnCreate int
	createErr         error
	updateErr         error
	existsCalls       int
}

func newFakeBillRepo(bills ...entity.Bill) *fakeBillRepo {
	r := &fakeBillRepo{taken: make(map[string]bool)}
	for i := range bills {
		b := bills[i]
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		r.bills = append(r.bills, &b)
	}
	return r
}

func (r *fakeBillRepo) Create(_ context.Context, b *entity.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.duplicateOnCreate > 0 {
		r.duplicateOnCreate--
		return repository.ErrDuplicateKey
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.SyncBalance()
	cp := *b
	r.bills = append(r.bills, &cp)
	return nil
}

func (r *fakeBillRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bills {
		if b.ID == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBillRepo) Update(_ context.Context, b *entity.Bill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	b.SyncBalance()
	for i := range r.bills {
		if r.bills[i].ID == b.ID {
			cp := *b
			r.bills[i] = &cp
			return nil
		}
	}
	return errors.New("bill not found")
}

func (r *fakeBillRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.existsCalls++
	if r.taken[number] {
		return true, nil
	}
	for _, b := range r.bills {
		if b.BillNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBillRepo) List(_ context.Context, params *repository.BillFilterParams) ([]entity.Bill, int64, error) {
	var out []entity.Bill
	for _, b := range r.bills {
		if params.Status != nil && b.PaymentStatus != *params.Status {
			continue
		}
		if params.Search != "" && !strings.Contains(b.BillNumber+b.PatientMRNo+b.ServiceName+b.DoctorName, params.Search) {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBillRepo) ListByPatient(_ context.Context, mrno string) ([]entity.Bill, error) {
	var out []entity.Bill
	for _, b := range r.bills {
		if b.PatientMRNo == mrno {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBillRepo) DistinctPatientMRNos(context.Context) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, b := range r.bills {
		if !seen[b.PatientMRNo] {
			seen[b.PatientMRNo] = true
			out = append(out, b.PatientMRNo)
		}
	}
	return out, nil
}

func (r *fakeBillRepo) Stats(_ context.Context, today time.Time) (*repository.BillStats, error) {
	stats := &repository.BillStats{}
	for _, b := range r.bills {
		stats.TotalBills++
		switch b.PaymentStatus {
		case enum.PaymentStatusPaid:
			stats.PaidAmount += b.PaidAmount
		case enum.PaymentStatusPending:
			stats.PendingAmount += b.BalanceDue
			if b.IsOverdue(today) {
				stats.OverdueAmount += b.BalanceDue
				stats.OverdueBills++
			}
		}
	}
	return stats, nil
}

type fakeFormRepo struct {
	forms     []*entity.MedicalForm
	createErr error
}

func (r *fakeFormRepo) CreateWithLineItems(_ context.Context, f *entity.MedicalForm) error {
	if r.createErr != nil {
		return r.createErr
	}
	f.CreatedAt = time.Now()
	r.forms = append(r.forms, f)
	return nil
}

func (r *fakeFormRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.MedicalForm, error) {
	for _, f := range r.forms {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFormRepo) List(_ context.Context, doctorID int64, formType string) ([]entity.MedicalForm, error) {
	var out []entity.MedicalForm
	for _, f := range r.forms {
		if f.DoctorID != nil && *f.DoctorID == doctorID && (formType == "" || f.FormType == formType) {
			out = append(out, *f)
		}
	}
	return out, nil
}

type fakeCatalogRepo struct {
	medicines []entity.Medicine
	labs      []entity.LabTest
	scans     []entity.RadiologyService
}

func (r *fakeCatalogRepo) SearchMedicines(_ context.Context, term string, limit int) ([]entity.Medicine, error) {
	var out []entity.Medicine
	for _, m := range r.medicines {
		if strings.Contains(strings.ToLower(m.Name), strings.ToLower(term)) && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) SearchLabTests(_ context.Context, term string, limit int) ([]entity.LabTest, error) {
	var out []entity.LabTest
	for _, t := range r.labs {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(term)) && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) SearchRadiology(_ context.Context, term string, limit int) ([]entity.RadiologyService, error) {
	var out []entity.RadiologyService
	for _, t := range r.scans {
		if strings.Contains(strings.ToLower(t.Name), strings.ToLower(term)) && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindMedicines(_ context.Context, ids []int64) ([]entity.Medicine, error) {
	var out []entity.Medicine
	for _, m := range r.medicines {
		if containsID(ids, m.ID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindLabTests(_ context.Context, ids []int64) ([]entity.LabTest, error) {
	var out []entity.LabTest
	for _, t := range r.labs {
		if containsID(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) FindRadiology(_ context.Context, ids []int64) ([]entity.RadiologyService, error) {
	var out []entity.RadiologyService
	for _, t := range r.scans {
		if containsID(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// counterValue reads a counter from the registry, summing over label values
// that match labels
func counterValue(t *testing.T, m *metrics.Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if matchLabels(metric, labels) {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	for k, v := range labels {
		found := false
		for _, lp := range metric.GetLabel() {
			if lp.GetName() == k && lp.GetValue() == v {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func ptr[T any](v T) *T {
	return &v
}

// fixedClock is 16 Oct 2026, 10:30 in the clinic's zone
func fixedClock(loc *time.Location) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 10, 16, 10, 30, 0, 0, loc)
	}
}

func day(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
