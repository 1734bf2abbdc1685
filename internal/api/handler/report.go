package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/curbwise/curbwise/internal/api/models"
	"github.com/curbwise/curbwise/internal/api/response"
	"github.com/curbwise/curbwise/internal/reports"
)

// ReportHandler handles community report endpoints.
type ReportHandler struct {
	service *reports.Service
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service *reports.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// CreateReport handles POST /v1/reports - submit a curb condition report.
func (h *ReportHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var input models.ReportCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	report, err := h.service.Submit(r.Context(), reports.SubmitInput{
		Type:        reports.Type(input.Type),
		Location:    input.Location,
		Description: input.Description,
		Severity:    reports.Severity(input.Severity),
	})
	if err != nil {
		if errors.Is(err, reports.ErrInvalidReport) {
			response.BadRequest(w, r, err.Error(), nil)
			return
		}
		response.InternalError(w, r, "failed to store report")
		return
	}

	location := fmt.Sprintf("/v1/reports/%s", report.ID)
	response.Created(w, r, location, report)
}

// ListReports handles GET /v1/reports - list reports, newest first.
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, r, "limit must be a positive integer", []models.FieldError{
				{Field: "limit", Message: "must be a positive integer", Code: "OUT_OF_RANGE"},
			})
			return
		}
		limit = parsed
	}

	result, err := h.service.List(r.Context(), location, limit)
	if err != nil {
		response.InternalError(w, r, "failed to list reports")
		return
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"reports": result,
	})
}
