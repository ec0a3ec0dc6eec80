package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"parenthelper/internal/app/bookings"
	"parenthelper/internal/store"
)

type bookingRequestBody struct {
	ParentName          string `json:"parentName"`
	ParentEmail         string `json:"parentEmail"`
	ParentPhone         string `json:"parentPhone"`
	ChildName           string `json:"childName"`
	ChildAge            int    `json:"childAge"`
	BookingType         string `json:"bookingType"`
	SessionsRequested   int    `json:"sessionsRequested"`
	PreferredDate       string `json:"preferredDate"`
	SpecialRequirements string `json:"specialRequirements"`
}

func (s *Server) handleCreateBookingRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid class id")
		return
	}

	var req bookingRequestBody
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(req.ParentName) == "" {
		fields["parentName"] = "Parent name is required"
	}
	if strings.TrimSpace(req.ParentEmail) == "" {
		fields["parentEmail"] = "Parent email is required"
	}
	if strings.TrimSpace(req.ChildName) == "" {
		fields["childName"] = "Child name is required"
	}
	if req.ChildAge < 0 {
		fields["childAge"] = "Child age must not be negative"
	}
	preferredDate, okDate := parseTimePtr(req.PreferredDate)
	if !okDate {
		fields["preferredDate"] = "Preferred date must be an RFC 3339 timestamp"
	}
	if len(fields) > 0 {
		writeValidationErrors(w, fields)
		return
	}

	created, err := s.bookings.Create(r.Context(), id, bookings.Request{
		ParentName:          req.ParentName,
		ParentEmail:         req.ParentEmail,
		ParentPhone:         req.ParentPhone,
		ChildName:           req.ChildName,
		ChildAge:            req.ChildAge,
		BookingType:         req.BookingType,
		SessionsRequested:   req.SessionsRequested,
		PreferredDate:       preferredDate,
		SpecialRequirements: req.SpecialRequirements,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrClassNotFound):
			writeError(w, http.StatusNotFound, "Class not found")
		case errors.Is(err, store.ErrProviderNotFound):
			writeError(w, http.StatusNotFound, "Provider not found")
		case errors.Is(err, bookings.ErrBookingUnavailable):
			writeError(w, http.StatusConflict, "This class does not accept booking requests")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create booking request")
		}
		return
	}
	writeData(w, http.StatusCreated, created)
}
