package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/curbwise/curbwise/internal/ai/gemini"
	"github.com/curbwise/curbwise/internal/api/models"
	"github.com/curbwise/curbwise/internal/api/response"
	"github.com/curbwise/curbwise/internal/featureflags"
	"github.com/curbwise/curbwise/internal/parking"
	"github.com/curbwise/curbwise/pkg/geo"
)

// ParkingHandler handles parking endpoints.
type ParkingHandler struct {
	estimator *parking.Estimator
	ai        *gemini.Client
	flags     *featureflags.Service
}

// NewParkingHandler creates a new ParkingHandler.
func NewParkingHandler(estimator *parking.Estimator, ai *gemini.Client, flags *featureflags.Service) *ParkingHandler {
	return &ParkingHandler{estimator: estimator, ai: ai, flags: flags}
}

// ListSpots handles GET /v1/parking/spots - live curbside spot snapshot.
func (h *ParkingHandler) ListSpots(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)

	var fieldErrors []models.FieldError
	if latErr != nil || lat < -90 || lat > 90 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "lat", Message: "must be a number between -90 and 90", Code: "OUT_OF_RANGE",
		})
	}
	if lngErr != nil || lng < -180 || lng > 180 {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "lng", Message: "must be a number between -180 and 180", Code: "OUT_OF_RANGE",
		})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "valid lat and lng query parameters are required", fieldErrors)
		return
	}

	// Next-hour predictions are a premium panel.
	identity := GetIdentity(r.Context())
	premium := identity.Premium() && h.flags.IsSpotSharingEnabled(r.Context())

	spots := h.estimator.Spots(geo.Coordinate{Lat: lat, Lng: lng}, premium)
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"spots": spots,
	})
}

// AnalyzeSign handles POST /v1/parking/sign:analyze - parking sign photo analysis.
func (h *ParkingHandler) AnalyzeSign(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentity(r.Context())
	if !identity.Premium() {
		response.Forbidden(w, r, "sign analysis requires a premium plan")
		return
	}
	if !h.flags.IsSignScannerEnabled(r.Context()) {
		response.ServiceUnavailable(w, r, "sign scanner is temporarily disabled")
		return
	}

	var input models.SignAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if input.Image == "" {
		response.BadRequest(w, r, "image is required", []models.FieldError{
			{Field: "image", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	// Analysis never fails outright; the client degrades to a canned reading.
	analysis := h.ai.AnalyzeParkingSign(r.Context(), input.Image, input.MimeType)
	response.JSON(w, r, http.StatusOK, analysis)
}
