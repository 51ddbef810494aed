package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/billing"
)

const (
	notAvailable       = "N/A"
	unknownPatientName = "Unknown Patient"
)

// PatientService builds the patient directory. There is no patients table;
// patients are derived from appointments and bills.
type PatientService struct {
	appointmentRepo repository.AppointmentRepository
	billRepo        repository.BillRepository
}

// NewPatientService creates a new patient service
func NewPatientService(appointmentRepo repository.AppointmentRepository, billRepo repository.BillRepository) *PatientService {
	return &PatientService{
		appointmentRepo: appointmentRepo,
		billRepo:        billRepo,
	}
}

// Patient is a directory entry keyed by MR number
type Patient struct {
	MRNo             string `json:"patient_id"`
	Name             string `json:"patient_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Age              string `json:"age"`
	Gender           string `json:"gender"`
	LastVisit        string `json:"last_visit"`
	AppointmentCount int    `json:"appointment_count"`
}

// matches reports whether query occurs in the name, MR number, phone or email
func (p *Patient) matches(query string) bool {
	for _, field := range []string{p.Name, p.MRNo, p.Phone, p.Email} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// patientFromAppointment takes identity from the appointment, overridden by
// whatever the booking app captured
func patientFromAppointment(a *entity.Appointment) *Patient {
	p := &Patient{
		MRNo:      a.MRNo,
		Name:      orDefault(a.PatientName, unknownPatientName),
		Email:     notAvailable,
		Phone:     orDefault(a.PatientPhone, notAvailable),
		Age:       notAvailable,
		Gender:    notAvailable,
		LastVisit: a.Date.Format(dateLayout),
	}
	b := a.Booking()
	p.Name = orDefault(b.PatientName, p.Name)
	p.Email = orDefault(b.PatientEmail, p.Email)
	p.Phone = orDefault(b.PatientPhone, p.Phone)
	p.Age = orDefault(b.PatientAge, p.Age)
	p.Gender = orDefault(b.PatientGender, p.Gender)
	return p
}

func billOnlyPatient(mrno string) *Patient {
	short := mrno
	if len(short) > 8 {
		short = short[:8]
	}
	return &Patient{
		MRNo:      mrno,
		Name:      "Patient " + short,
		Email:     notAvailable,
		Phone:     notAvailable,
		Age:       notAvailable,
		Gender:    notAvailable,
		LastVisit: notAvailable,
	}
}

// groupPatients folds appointments (latest first) into one entry per MR
// number. The latest appointment supplies the identity.
func groupPatients(appointments []entity.Appointment) ([]*Patient, map[string]*Patient) {
	var order []*Patient
	byMRNo := make(map[string]*Patient)
	for i := range appointments {
		a := &appointments[i]
		if a.MRNo == "" {
			continue
		}
		p, ok := byMRNo[a.MRNo]
		if !ok {
			p = patientFromAppointment(a)
			byMRNo[a.MRNo] = p
			order = append(order, p)
		}
		p.AppointmentCount++
		if d := a.Date.Format(dateLayout); d > p.LastVisit {
			p.LastVisit = d
		}
	}
	return order, byMRNo
}

// ListPatients returns every known patient, optionally filtered by a
// case-insensitive search over name, MR number, phone and email
func (s *PatientService) ListPatients(ctx context.Context, search string) ([]Patient, error) {
	appointments, err := s.appointmentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	mrnos, err := s.billRepo.DistinctPatientMRNos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list billed patients: %w", err)
	}

	order, byMRNo := groupPatients(appointments)
	for _, mrno := range mrnos {
		if mrno == "" {
			continue
		}
		if _, ok := byMRNo[mrno]; !ok {
			p := billOnlyPatient(mrno)
			byMRNo[mrno] = p
			order = append(order, p)
		}
	}

	query := strings.ToLower(strings.TrimSpace(search))
	patients := make([]Patient, 0, len(order))
	for _, p := range order {
		if query == "" || p.matches(query) {
			patients = append(patients, *p)
		}
	}
	return patients, nil
}

// PatientTotals sums a patient's bills
type PatientTotals struct {
	Billed string `json:"total_billed"`
	Paid   string `json:"total_paid"`
	Due    string `json:"total_due"`
}

// PatientProfile is one patient with their history
type PatientProfile struct {
	Patient      Patient           `json:"patient"`
	Appointments []AppointmentView `json:"appointments"`
	Bills        []entity.Bill     `json:"bills"`
	Totals       PatientTotals     `json:"totals"`
}

// GetPatientProfile returns a patient, their appointments and their bills
func (s *PatientService) GetPatientProfile(ctx context.Context, mrno string) (*PatientProfile, error) {
	mrno = strings.TrimSpace(mrno)
	appointments, err := s.appointmentRepo.ListByPatient(ctx, mrno)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	bills, err := s.billRepo.ListByPatient(ctx, mrno)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	if len(appointments) == 0 && len(bills) == 0 {
		return nil, apperror.NewNotFoundError("Patient")
	}

	var patient *Patient
	if order, _ := groupPatients(appointments); len(order) > 0 {
		patient = order[0]
	} else {
		patient = billOnlyPatient(mrno)
	}

	var billed, paid, due float64
	for _, b := range bills {
		billed += b.TotalAmount
		paid += b.PaidAmount
		due += b.BalanceDue
	}
	if bills == nil {
		bills = []entity.Bill{}
	}

	return &PatientProfile{
		Patient:      *patient,
		Appointments: newAppointmentViews(appointments),
		Bills:        bills,
		Totals: PatientTotals{
			Billed: billing.FormatMoney(billed),
			Paid:   billing.FormatMoney(paid),
			Due:    billing.FormatMoney(due),
		},
	}, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
