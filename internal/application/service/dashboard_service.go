package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
)

// RecentAppointmentsLimit bounds the appointment dropdown of the bill form
const RecentAppointmentsLimit = 50

const dateLayout = "2006-01-02"

// DashboardService provides the doctor's day at a glance and the lookup
// lists used by the bill form
type DashboardService struct {
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	loc             *time.Location
	now             func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	loc *time.Location,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		loc:             loc,
		now:             time.Now,
	}
}

// AppointmentView is an appointment with the patient name resolved
type AppointmentView struct {
	AppointmentID string `json:"appointment_id"`
	MRNo          string `json:"mrno"`
	PatientName   string `json:"patient_name"`
	PatientPhone  string `json:"patient_phone"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	DoctorID      int64  `json:"doctor_id"`
	Status        string `json:"status"`
}

func newAppointmentView(a *entity.Appointment) AppointmentView {
	status := strings.ToLower(a.Status)
	if status == "" {
		status = entity.AppointmentStatusScheduled
	}
	return AppointmentView{
		AppointmentID: a.AppointmentID,
		MRNo:          a.MRNo,
		PatientName:   a.ResolvedPatientName(),
		PatientPhone:  a.PatientPhone,
		Date:          a.Date.Format(dateLayout),
		Time:          a.Time,
		DoctorID:      a.DoctorID,
		Status:        status,
	}
}

func newAppointmentViews(appointments []entity.Appointment) []AppointmentView {
	views := make([]AppointmentView, 0, len(appointments))
	for i := range appointments {
		views = append(views, newAppointmentView(&appointments[i]))
	}
	return views
}

// DashboardStats are the counters shown above the appointment list
type DashboardStats struct {
	TodayAppointments int `json:"today_appointments"`
	CompletedToday    int `json:"completed_today"`
}

// Dashboard is the doctor's landing page
type Dashboard struct {
	Date         string            `json:"date"`
	Appointments []AppointmentView `json:"appointments"`
	Stats        DashboardStats    `json:"stats"`
}

// GetDashboard returns today's appointments for the doctor
func (s *DashboardService) GetDashboard(ctx context.Context, doctorID int64) (*Dashboard, error) {
	today := s.now().In(s.loc)

	appointments, err := s.appointmentRepo.ListByDoctorOn(ctx, doctorID, today)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	dashboard := &Dashboard{
		Date:         today.Format(dateLayout),
		Appointments: newAppointmentViews(appointments),
	}
	for _, a := range dashboard.Appointments {
		dashboard.Stats.TodayAppointments++
		if a.Status == entity.AppointmentStatusCompleted {
			dashboard.Stats.CompletedToday++
		}
	}

	return dashboard, nil
}

// ListDoctors returns every doctor for the bill form
func (s *DashboardService) ListDoctors(ctx context.Context) ([]entity.Doctor, error) {
	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// ListAppointments returns one patient's appointments, or the latest ones
// when patientMRNo is empty
func (s *DashboardService) ListAppointments(ctx context.Context, patientMRNo string) ([]AppointmentView, error) {
	var (
		appointments []entity.Appointment
		err          error
	)
	if mrno := strings.TrimSpace(patientMRNo); mrno != "" {
		appointments, err = s.appointmentRepo.ListByPatient(ctx, mrno)
	} else {
		appointments, err = s.appointmentRepo.ListRecent(ctx, RecentAppointmentsLimit)
	}
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return newAppointmentViews(appointments), nil
}
