package patient

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hospital-portal/internal/email"
	"github.com/jwalitptl/hospital-portal/internal/handler"
	"github.com/jwalitptl/hospital-portal/internal/model"
	"github.com/jwalitptl/hospital-portal/pkg/httputil"
	"github.com/jwalitptl/hospital-portal/pkg/logger"
)

// Records is the part of the record store patient routes use.
type Records interface {
	RegisterPatient(ctx context.Context, req model.RegisterPatientRequest) (*model.PatientRecord, error)
	GetPatient(ctx context.Context, id string) (*model.PatientRecord, error)
	ListPatients(ctx context.Context) ([]*model.PatientRecord, error)
	GetPatientActiveVisit(ctx context.Context, patientID string) (*model.ActiveVisit, error)
	GenerateVisitToken(ctx context.Context, patientID, department, doctor string) (*model.ActiveVisit, error)
	AddTestsToPatient(ctx context.Context, patientID string, tests []model.Test) (*model.MedicalVisit, error)
	AddPrescriptionsToPatient(ctx context.Context, patientID string, prescriptions []model.Prescription) (*model.MedicalVisit, error)
	UpdatePatientVisit(ctx context.Context, patientID string, update model.VisitUpdate) (*model.MedicalVisit, error)
	MarkTestAsPerformed(ctx context.Context, patientID, testID string, performed bool) (*model.Test, error)
	MarkMedicineAsIssued(ctx context.Context, patientID, prescriptionID string, issued bool) (*model.Prescription, error)
	SaveTestReport(ctx context.Context, patientID, testID string, upload model.ReportUpload) (*model.Test, error)
	GetPatientTests(ctx context.Context, patientID string) ([]model.Test, error)
	GetPatientPrescriptions(ctx context.Context, patientID string) ([]model.Prescription, error)
}

type Handler struct {
	records Records
	mailer  email.Service
	log     *logger.Logger
}

func NewHandler(records Records, mailer email.Service, log *logger.Logger) *Handler {
	return &Handler{records: records, mailer: mailer, log: log}
}

func (h *Handler) RegisterRoutes(g handler.Groups) {
	g.Public.POST("/patients/register", h.Register)

	me := g.Patient.Group("/me")
	{
		me.GET("", h.Me)
		me.GET("/tests", h.MyTests)
		me.GET("/prescriptions", h.MyPrescriptions)
		me.GET("/active-visit", h.MyActiveVisit)
		me.POST("/visits", h.BookMyVisit)
	}

	patients := g.Clinical.Group("/patients")
	{
		patients.GET("/:id", h.GetPatient)
		patients.POST("/:id/visits", h.BookVisit)
		patients.PUT("/:id/visit", h.UpdateVisit)
		patients.POST("/:id/tests", h.AddTests)
		patients.PUT("/:id/tests/:testId/performed", h.MarkTestPerformed)
		patients.POST("/:id/tests/:testId/report", h.SaveTestReport)
		patients.POST("/:id/prescriptions", h.AddPrescriptions)
		patients.PUT("/:id/prescriptions/:prescriptionId/issued", h.MarkMedicineIssued)
	}

	g.Admin.GET("/patients", h.ListPatients)
}

// Register creates a patient account. A welcome mail with the new id is
// sent when the patient gave an address; mail failures do not fail the
// registration.
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	patient, err := h.records.RegisterPatient(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if patient.Email != "" {
		if err := h.mailer.SendWelcome(c.Request.Context(), patient.Email, patient.Name, patient.PatientID); err != nil {
			h.log.WithContext(c.Request.Context()).Error(err, "failed to send welcome email", "patient_id", patient.PatientID)
		}
	}

	httputil.RespondWithCreated(c, handler.NewPatientResponse(patient))
}

func (h *Handler) Me(c *gin.Context) {
	h.respondPatient(c, handler.SessionFrom(c).ID)
}

func (h *Handler) MyTests(c *gin.Context) {
	tests, err := h.records.GetPatientTests(c.Request.Context(), handler.SessionFrom(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, tests)
}

func (h *Handler) MyPrescriptions(c *gin.Context) {
	prescriptions, err := h.records.GetPatientPrescriptions(c.Request.Context(), handler.SessionFrom(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, prescriptions)
}

func (h *Handler) MyActiveVisit(c *gin.Context) {
	visit, err := h.records.GetPatientActiveVisit(c.Request.Context(), handler.SessionFrom(c).ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, visit)
}

func (h *Handler) BookMyVisit(c *gin.Context) {
	h.book(c, handler.SessionFrom(c).ID)
}

func (h *Handler) GetPatient(c *gin.Context) {
	h.respondPatient(c, c.Param("id"))
}

// BookVisit is reception booking a token on a patient's behalf.
func (h *Handler) BookVisit(c *gin.Context) {
	h.book(c, c.Param("id"))
}

func (h *Handler) book(c *gin.Context, patientID string) {
	var req model.BookVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	visit, err := h.records.GenerateVisitToken(c.Request.Context(), patientID, req.Department, req.Doctor)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithCreated(c, visit)
}

func (h *Handler) UpdateVisit(c *gin.Context) {
	var req model.VisitUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	visit, err := h.records.UpdatePatientVisit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, visit)
}

func (h *Handler) AddTests(c *gin.Context) {
	var req model.AddTestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	visit, err := h.records.AddTestsToPatient(c.Request.Context(), c.Param("id"), req.Tests)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithCreated(c, visit)
}

func (h *Handler) AddPrescriptions(c *gin.Context) {
	var req model.AddPrescriptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	visit, err := h.records.AddPrescriptionsToPatient(c.Request.Context(), c.Param("id"), req.Prescriptions)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithCreated(c, visit)
}

func (h *Handler) MarkTestPerformed(c *gin.Context) {
	var req model.FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	test, err := h.records.MarkTestAsPerformed(c.Request.Context(), c.Param("id"), c.Param("testId"), *req.Value)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, test)
}

func (h *Handler) MarkMedicineIssued(c *gin.Context) {
	var req model.FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}

	prescription, err := h.records.MarkMedicineAsIssued(c.Request.Context(), c.Param("id"), c.Param("prescriptionId"), *req.Value)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, prescription)
}

// SaveTestReport stores a nurse's report. The uploader defaults to the
// signed-in staff member's name.
func (h *Handler) SaveTestReport(c *gin.Context) {
	var req model.ReportUpload
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		return
	}
	if req.UploadedBy == "" {
		req.UploadedBy = handler.SessionFrom(c).Name
	}

	test, err := h.records.SaveTestReport(c.Request.Context(), c.Param("id"), c.Param("testId"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, test)
}

func (h *Handler) ListPatients(c *gin.Context) {
	patients, err := h.records.ListPatients(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, handler.NewPatientListResponse(patients))
}

func (h *Handler) respondPatient(c *gin.Context, id string) {
	patient, err := h.records.GetPatient(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, handler.NewPatientResponse(patient))
}
