package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/entity"
	"github.com/Alexrusso3108/cura-doctors-portal/internal/domain/repository"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/apperror"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/events"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/formrender"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/metrics"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/storage"
	"github.com/Alexrusso3108/cura-doctors-portal/pkg/utils"
)

const (
	// CatalogSearchLimit bounds each catalog search
	CatalogSearchLimit = 20

	formImageContentType = "image/png"
)

var annotationSizeMessage = fmt.Sprintf("Annotation must be %dx%d pixels", formrender.PageWidth, formrender.PageHeight)

// FormService renders, flattens and files medical forms
type FormService struct {
	formRepo        repository.FormRepository
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	catalogRepo     repository.CatalogRepository
	store           storage.Store
	renderer        *formrender.Renderer
	metrics         *metrics.Metrics
	notifier        notifier
	logger          *zap.Logger
	tracer          trace.Tracer
	loc             *time.Location
	now             func() time.Time
}

// NewFormService creates a new form service
func NewFormService(
	formRepo repository.FormRepository,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	catalogRepo repository.CatalogRepository,
	store storage.Store,
	renderer *formrender.Renderer,
	loc *time.Location,
	publisher events.Publisher,
	m *metrics.Metrics,
	logger *zap.Logger,
) *FormService {
	if loc == nil {
		loc = time.UTC
	}
	return &FormService{
		formRepo:        formRepo,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		catalogRepo:     catalogRepo,
		store:           store,
		renderer:        renderer,
		metrics:         m,
		notifier:        notifier{publisher: publisher, metrics: m, logger: logger},
		logger:          logger,
		tracer:          otel.Tracer("form-service"),
		loc:             loc,
		now:             time.Now,
	}
}

// CatalogTest is a lab test or radiology service offered by the catalog
type CatalogTest struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

// SearchMedicines searches the pharmacy catalog by name
func (s *FormService) SearchMedicines(ctx context.Context, term string) ([]entity.Medicine, error) {
	medicines, err := s.catalogRepo.SearchMedicines(ctx, strings.TrimSpace(term), CatalogSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search medicines: %w", err)
	}
	return medicines, nil
}

// SearchTests searches lab tests and radiology services, lab tests first
func (s *FormService) SearchTests(ctx context.Context, term string) ([]CatalogTest, error) {
	term = strings.TrimSpace(term)
	labs, err := s.catalogRepo.SearchLabTests(ctx, term, CatalogSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search lab tests: %w", err)
	}
	scans, err := s.catalogRepo.SearchRadiology(ctx, term, CatalogSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search radiology: %w", err)
	}

	tests := make([]CatalogTest, 0, len(labs)+len(scans))
	for _, t := range labs {
		tests = append(tests, CatalogTest{ID: t.ID, Name: t.Name, Type: string(formrender.SourceLab), Price: t.Price})
	}
	for _, t := range scans {
		tests = append(tests, CatalogTest{ID: t.ID, Name: t.Name, Type: string(formrender.SourceRadiology), Price: t.Price})
	}
	return tests, nil
}

// MedicineInput is a catalog medicine with the doctor's directions
type MedicineInput struct {
	ID           int64
	Dosage       string
	Duration     string
	Instructions string
}

// TestInput is a catalog test; Type is lab or radiology
type TestInput struct {
	ID   int64
	Type string
}

// FormInput describes the form being filled in
type FormInput struct {
	Kind          string
	AppointmentID string
	Medicines     []MedicineInput
	Tests         []TestInput
	// DoctorID is the signed-in doctor, who signs the form
	DoctorID int64
}

// SaveFormInput adds the doctor's annotation layer as a PNG data URL
type SaveFormInput struct {
	FormInput
	Annotation string
}

// formContext is the resolved input of one render
type formContext struct {
	kind        formrender.Kind
	ctx         formrender.Context
	appointment *entity.Appointment
}

// Preview returns the markup preview of the form
func (s *FormService) Preview(ctx context.Context, input *FormInput) (string, error) {
	fc, err := s.buildContext(ctx, input)
	if err != nil {
		return "", err
	}

	start := time.Now()
	markup, err := s.renderer.RenderTemplate(fc.kind, fc.ctx)
	s.observeRender(fc.kind, "markup", start)
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return markup, nil
}

// Save flattens the annotation onto the form, stores the image and records
// the form with its line items. Nothing is kept when any step fails.
func (s *FormService) Save(ctx context.Context, input *SaveFormInput) (*entity.MedicalForm, error) {
	ctx, span := s.tracer.Start(ctx, "FormService.Save", trace.WithAttributes(attribute.String("form.kind", input.Kind)))
	defer span.End()

	form, err := s.save(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save form")
		return nil, err
	}
	span.SetAttributes(attribute.String("form.id", form.ID.String()))
	return form, nil
}

func (s *FormService) save(ctx context.Context, input *SaveFormInput) (*entity.MedicalForm, error) {
	annotation, err := formrender.DecodeAnnotation(input.Annotation)
	if errors.Is(err, formrender.ErrAnnotationSize) {
		s.countFailure("decode")
		return nil, apperror.NewUnprocessableError(annotationSizeMessage, err)
	}
	if err != nil {
		s.countFailure("decode")
		return nil, apperror.NewUnprocessableError("Annotation must be a PNG image", err)
	}

	fc, err := s.buildContext(ctx, &input.FormInput)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	page, err := s.renderer.Flatten(fc.kind, fc.ctx, annotation)
	s.observeRender(fc.kind, "raster", start)
	if errors.Is(err, formrender.ErrAnnotationSize) || errors.Is(err, formrender.ErrNoAnnotation) {
		s.countFailure("flatten")
		return nil, apperror.NewUnprocessableError(annotationSizeMessage, err)
	}
	if err != nil {
		s.countFailure("flatten")
		return nil, fmt.Errorf("flatten form: %w", err)
	}
	png, err := formrender.EncodePNG(page)
	if err != nil {
		s.countFailure("flatten")
		return nil, err
	}

	form := s.newForm(fc, input.DoctorID)
	form.ImageSize = int64(len(png))
	form.ContentType = formImageContentType

	ref, err := s.store.Put(ctx, utils.FormImageName(string(fc.kind), form.ID), png, formImageContentType)
	if err != nil {
		s.countFailure("storage")
		return nil, fmt.Errorf("store form image: %w", err)
	}
	form.ImageRef = ref

	if err := s.formRepo.CreateWithLineItems(ctx, form); err != nil {
		s.countFailure("database")
		if derr := s.store.Delete(ctx, ref); derr != nil {
			s.logger.Error("orphaned form image", zap.String("image_ref", ref), zap.Error(derr))
		}
		return nil, fmt.Errorf("save form: %w", err)
	}

	if s.metrics != nil {
		s.metrics.FormsSaved.WithLabelValues(string(fc.kind)).Inc()
	}
	s.logger.Info("form saved",
		zap.String("form_id", form.ID.String()),
		zap.String("form_type", form.FormType),
		zap.Int64("doctor_id", input.DoctorID),
		zap.Int64("image_size", form.ImageSize))

	s.notifier.publish(ctx, events.New(events.TypeFormSaved, form.ID.String(), input.DoctorID, s.now(), formEvent{
		FormType:      form.FormType,
		AppointmentID: form.AppointmentID,
		PatientID:     form.PatientID,
		Medicines:     len(form.Medicines),
		Tests:         len(form.Tests),
	}))

	return form, nil
}

type formEvent struct {
	FormType      string  `json:"form_type"`
	AppointmentID *string `json:"appointment_id,omitempty"`
	PatientID     *string `json:"patient_id,omitempty"`
	Medicines     int     `json:"medicines"`
	Tests         int     `json:"tests"`
}

func (s *FormService) newForm(fc *formContext, doctorID int64) *entity.MedicalForm {
	form := &entity.MedicalForm{
		ID:       uuid.New(),
		FormType: string(fc.kind),
		DoctorID: &doctorID,
	}
	if a := fc.appointment; a != nil {
		form.AppointmentID = &a.AppointmentID
		if a.MRNo != "" {
			mrno := a.MRNo
			form.PatientID = &mrno
		}
	}

	for _, m := range fc.ctx.Items.Medicines() {
		form.Medicines = append(form.Medicines, entity.PrescribedMedicine{
			AppointmentID: form.AppointmentID,
			PatientID:     form.PatientID,
			DoctorID:      form.DoctorID,
			MedicineID:    m.ID,
			MedicineName:  m.Name,
			Dosage:        m.Dosage,
			Duration:      m.Duration,
			Instructions:  m.Instructions,
		})
	}
	for _, t := range fc.ctx.Items.Tests() {
		form.Tests = append(form.Tests, entity.PrescribedTest{
			AppointmentID: form.AppointmentID,
			PatientID:     form.PatientID,
			DoctorID:      form.DoctorID,
			TestID:        t.ID,
			TestName:      t.Name,
			TestType:      string(t.Source),
			Price:         t.Price,
		})
	}
	return form
}

func (s *FormService) buildContext(ctx context.Context, input *FormInput) (*formContext, error) {
	kind, err := formrender.ParseKind(input.Kind)
	if err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "form_type", Message: "Unknown form type"}})
	}

	fc := &formContext{kind: kind}
	fc.ctx.Timestamp = s.now().In(s.loc)

	doctor, err := s.doctorRepo.GetByID(ctx, input.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if doctor != nil {
		fc.ctx.Doctor = formrender.Doctor{Name: doctor.Name, RegistrationNo: doctor.RegistrationNo}
	}

	if id := strings.TrimSpace(input.AppointmentID); id != "" {
		appointment, err := s.appointmentRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load appointment: %w", err)
		}
		if appointment == nil {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "appointment_id", Message: "Appointment not found"}})
		}
		fc.appointment = appointment
		fc.ctx.Patient = patientContext(appointment)
	}

	switch kind {
	case formrender.KindPrescription:
		medicines, err := s.resolveMedicines(ctx, input.Medicines)
		if err != nil {
			return nil, err
		}
		fc.ctx.Items = formrender.NewMedicineSet(medicines)
	case formrender.KindLaboratory:
		tests, err := s.resolveTests(ctx, input.Tests)
		if err != nil {
			return nil, err
		}
		fc.ctx.Items = formrender.NewTestSet(tests)
	}

	return fc, nil
}

func patientContext(a *entity.Appointment) formrender.Patient {
	b := a.Booking()
	return formrender.Patient{
		Name:   a.ResolvedPatientName(),
		MRNo:   a.MRNo,
		Age:    b.PatientAge,
		Gender: b.PatientGender,
		Phone:  orDefault(a.PatientPhone, b.PatientPhone),
	}
}

func (s *FormService) resolveMedicines(ctx context.Context, in []MedicineInput) ([]formrender.Medicine, error) {
	if len(in) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(in))
	for _, m := range in {
		ids = append(ids, m.ID)
	}
	found, err := s.catalogRepo.FindMedicines(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load medicines: %w", err)
	}
	names := make(map[int64]string, len(found))
	for _, m := range found {
		names[m.ID] = m.Name
	}

	medicines := make([]formrender.Medicine, 0, len(in))
	for i, m := range in {
		name, ok := names[m.ID]
		if !ok {
			return nil, apperror.NewValidationError([]apperror.FieldError{{
				Field:   fmt.Sprintf("medicines[%d].id", i),
				Message: "Medicine not found",
			}})
		}
		medicines = append(medicines, formrender.Medicine{
			ID:           strconv.FormatInt(m.ID, 10),
			Name:         name,
			Dosage:       strings.TrimSpace(m.Dosage),
			Duration:     strings.TrimSpace(m.Duration),
			Instructions: strings.TrimSpace(m.Instructions),
		})
	}
	return medicines, nil
}

func (s *FormService) resolveTests(ctx context.Context, in []TestInput) ([]formrender.Test, error) {
	if len(in) == 0 {
		return nil, nil
	}
	var labIDs, scanIDs []int64
	for _, t := range in {
		if formrender.SourceKind(t.Type) == formrender.SourceRadiology {
			scanIDs = append(scanIDs, t.ID)
		} else {
			labIDs = append(labIDs, t.ID)
		}
	}

	type entry struct {
		name  string
		price float64
	}
	catalog := map[formrender.SourceKind]map[int64]entry{
		formrender.SourceLab:       {},
		formrender.SourceRadiology: {},
	}
	if len(labIDs) > 0 {
		labs, err := s.catalogRepo.FindLabTests(ctx, labIDs)
		if err != nil {
			return nil, fmt.Errorf("load lab tests: %w", err)
		}
		for _, t := range labs {
			catalog[formrender.SourceLab][t.ID] = entry{t.Name, t.Price}
		}
	}
	if len(scanIDs) > 0 {
		scans, err := s.catalogRepo.FindRadiology(ctx, scanIDs)
		if err != nil {
			return nil, fmt.Errorf("load radiology services: %w", err)
		}
		for _, t := range scans {
			catalog[formrender.SourceRadiology][t.ID] = entry{t.Name, t.Price}
		}
	}

	tests := make([]formrender.Test, 0, len(in))
	for i, t := range in {
		source := formrender.SourceLab
		if formrender.SourceKind(t.Type) == formrender.SourceRadiology {
			source = formrender.SourceRadiology
		}
		e, ok := catalog[source][t.ID]
		if !ok {
			return nil, apperror.NewValidationError([]apperror.FieldError{{
				Field:   fmt.Sprintf("tests[%d].id", i),
				Message: "Test not found",
			}})
		}
		tests = append(tests, formrender.Test{
			ID:     strconv.FormatInt(t.ID, 10),
			Name:   e.name,
			Source: source,
			Price:  e.price,
		})
	}
	return tests, nil
}

// FormSummary is a saved form as listed for the doctor
type FormSummary struct {
	ID            uuid.UUID `json:"id"`
	FormType      string    `json:"form_type"`
	AppointmentID *string   `json:"appointment_id,omitempty"`
	PatientID     *string   `json:"patient_id,omitempty"`
	PatientName   string    `json:"patient_name"`
	ImageSize     int64     `json:"image_size"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListForms returns the doctor's saved forms with patient names joined from
// the appointments
func (s *FormService) ListForms(ctx context.Context, doctorID int64, kind string) ([]FormSummary, error) {
	kind = strings.TrimSpace(kind)
	if kind != "" && kind != "all" {
		if _, err := formrender.ParseKind(kind); err != nil {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "type", Message: "Unknown form type"}})
		}
	} else {
		kind = ""
	}

	forms, err := s.formRepo.List(ctx, doctorID, kind)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}

	var ids []string
	seen := make(map[string]bool)
	for _, f := range forms {
		if f.AppointmentID != nil && !seen[*f.AppointmentID] {
			seen[*f.AppointmentID] = true
			ids = append(ids, *f.AppointmentID)
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) > 0 {
		appointments, err := s.appointmentRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("load appointments: %w", err)
		}
		for i := range appointments {
			names[appointments[i].AppointmentID] = appointments[i].ResolvedPatientName()
		}
	}

	summaries := make([]FormSummary, 0, len(forms))
	for _, f := range forms {
		name := ""
		if f.AppointmentID != nil {
			name = names[*f.AppointmentID]
		}
		summaries = append(summaries, FormSummary{
			ID:            f.ID,
			FormType:      f.FormType,
			AppointmentID: f.AppointmentID,
			PatientID:     f.PatientID,
			PatientName:   orDefault(name, unknownPatientName),
			ImageSize:     f.ImageSize,
			CreatedAt:     f.CreatedAt,
		})
	}
	return summaries, nil
}

// FormImage is a stored, flattened form
type FormImage struct {
	Data        []byte
	ContentType string
}

// GetFormImage returns the image of one of the doctor's forms
func (s *FormService) GetFormImage(ctx context.Context, id uuid.UUID, doctorID int64) (*FormImage, error) {
	form, err := s.formRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load form: %w", err)
	}
	if form == nil || (form.DoctorID != nil && *form.DoctorID != doctorID) {
		return nil, apperror.NewNotFoundError("Form")
	}

	data, contentType, err := s.store.Get(ctx, form.ImageRef)
	if errors.Is(err, storage.ErrNoObject) {
		return nil, apperror.NewNotFoundError("Form image")
	}
	if err != nil {
		return nil, fmt.Errorf("load form image: %w", err)
	}
	if contentType == "" {
		contentType = orDefault(form.ContentType, formImageContentType)
	}
	return &FormImage{Data: data, ContentType: contentType}, nil
}

func (s *FormService) observeRender(kind formrender.Kind, surface string, start time.Time) {
	if s.metrics != nil {
		s.metrics.RenderDuration.WithLabelValues(string(kind), surface).Observe(time.Since(start).Seconds())
	}
}

func (s *FormService) countFailure(stage string) {
	if s.metrics != nil {
		s.metrics.FormSaveFailures.WithLabelValues(stage).Inc()
	}
}
