// Package handler provides HTTP handlers for the Curbwise API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/curbwise/curbwise/internal/api/models"
	"github.com/curbwise/curbwise/internal/api/response"
	"github.com/curbwise/curbwise/internal/featureflags"
	"github.com/curbwise/curbwise/internal/trip"
	"github.com/curbwise/curbwise/pkg/geo"
)

// TripHandler handles trip analysis endpoints.
type TripHandler struct {
	trips *trip.Service
	flags *featureflags.Service
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(trips *trip.Service, flags *featureflags.Service) *TripHandler {
	return &TripHandler{trips: trips, flags: flags}
}

// AnalyzeTrip handles POST /v1/trips:analyze - compare driving and transit.
func (h *TripHandler) AnalyzeTrip(w http.ResponseWriter, r *http.Request) {
	var input models.TripAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var fieldErrors []models.FieldError
	if input.Origin.Address == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "origin.address", Message: "required", Code: "REQUIRED",
		})
	}
	if input.Destination.Address == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field: "destination.address", Message: "required", Code: "REQUIRED",
		})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "origin and destination addresses are required", fieldErrors)
		return
	}

	identity := GetIdentity(r.Context())
	premium := identity.Premium() && h.flags.ArePremiumAlertsEnabled(r.Context())

	prefs := trip.Preferences{
		ArrivalTime:   input.ArrivalTime,
		Language:      input.Language,
		Notifications: input.Notifications,
		Premium:       premium,
	}

	result, err := h.trips.AnalyzeTrip(r.Context(), toTripLocation(input.Origin), toTripLocation(input.Destination), prefs)
	if err != nil {
		switch {
		case errors.Is(err, trip.ErrInvalidInput):
			response.BadRequest(w, r, err.Error(), nil)
		case errors.Is(err, trip.ErrAnalysisFailed):
			response.ServiceUnavailable(w, r, "trip analysis is temporarily unavailable")
		default:
			response.InternalError(w, r, "failed to analyze trip")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

func toTripLocation(l models.TripLocation) trip.Location {
	loc := trip.Location{Address: l.Address}
	if l.Lat != nil && l.Lng != nil {
		loc.Coordinates = &geo.Coordinate{Lat: *l.Lat, Lng: *l.Lng}
	}
	return loc
}
