package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/physiomanager/backend/internal/application/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
	"github.com/physiomanager/backend/internal/interfaces/http/dto"
)

// PatientHandler handles patient management endpoints
type PatientHandler struct {
	BaseHandler
	patientService *clinic.PatientService
	importService  *clinic.PatientImportService
}

// NewPatientHandler creates a new PatientHandler
func NewPatientHandler(patientService *clinic.PatientService, importService *clinic.PatientImportService) *PatientHandler {
	return &PatientHandler{patientService: patientService, importService: importService}
}

// Create registers a new patient
func (h *PatientHandler) Create(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req clinic.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	patient, err := h.patientService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, patient)
}

// List returns patients for the current account, filtered and paginated
func (h *PatientHandler) List(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter clinic.PatientListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	patients, total, err := h.patientService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, patients, total, page, pageSize)
}

// Get returns a single patient by ID
func (h *PatientHandler) Get(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	patient, err := h.patientService.GetByID(c.Request.Context(), tenantID, patientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, patient)
}

// Update modifies a patient's editable fields
func (h *PatientHandler) Update(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	var req clinic.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	patient, err := h.patientService.Update(c.Request.Context(), tenantID, patientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, patient)
}

// Complete marks a patient's treatment as finished
func (h *PatientHandler) Complete(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	patient, err := h.patientService.Complete(c.Request.Context(), tenantID, patientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, patient)
}

// Reactivate returns a completed patient to active treatment
func (h *PatientHandler) Reactivate(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	patient, err := h.patientService.Reactivate(c.Request.Context(), tenantID, patientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, patient)
}

// Delete removes a patient. Session logs and payment records survive.
func (h *PatientHandler) Delete(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	if err := h.patientService.Delete(c.Request.Context(), tenantID, patientID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// History returns a patient's session log, newest first
func (h *PatientHandler) History(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid patient ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize

	logs, err := h.patientService.History(c.Request.Context(), tenantID, patientID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, logs)
}

// maxImportFileSize caps the accepted roster upload at 5MB
const maxImportFileSize = 5 << 20

// Import bulk-creates patients from an uploaded CSV roster.
// The file is validated as a whole before anything is written.
func (h *PatientHandler) Import(c *gin.Context) {
	tenantID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' form field")
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.BadRequest(c, "File exceeds the 5MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer file.Close()

	result, err := h.importService.ImportPatients(c.Request.Context(), tenantID, file)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// normalizePage applies the default page and page size used by list endpoints
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}
