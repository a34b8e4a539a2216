package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tablebook/internal/models"
	"tablebook/internal/schedule"
	"tablebook/internal/service"
)

type slotQuery struct {
	date        time.Time
	startMin    int
	partySize   int
	durationMin int
}

// parseSlotQuery reads the common date/time/party_size/duration query
// parameters. duration is optional; 0 lets the venue default apply.
func parseSlotQuery(r *http.Request) (slotQuery, error) {
	var q slotQuery

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		return q, &schedule.ValidationError{Field: "date", Message: "date is required"}
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return q, &schedule.ValidationError{Field: "date", Message: "invalid date format; expected YYYY-MM-DD"}
	}
	q.date = date

	timeStr := strings.TrimSpace(r.URL.Query().Get("time"))
	if timeStr == "" {
		return q, &schedule.ValidationError{Field: "time", Message: "time is required"}
	}
	startMin, verr := schedule.ToMinutes(timeStr)
	if verr != nil {
		return q, verr
	}
	q.startMin = startMin

	partyStr := strings.TrimSpace(r.URL.Query().Get("party_size"))
	if partyStr == "" {
		return q, &schedule.ValidationError{Field: "party_size", Message: "party_size is required"}
	}
	partySize, err := strconv.Atoi(partyStr)
	if err != nil || partySize <= 0 {
		return q, &schedule.ValidationError{Field: "party_size", Message: "party_size must be a positive integer"}
	}
	q.partySize = partySize

	if durStr := strings.TrimSpace(r.URL.Query().Get("duration")); durStr != "" {
		duration, err := strconv.Atoi(durStr)
		if err != nil || duration <= 0 {
			return q, &schedule.ValidationError{Field: "duration", Message: "duration must be a positive integer"}
		}
		q.durationMin = duration
	}

	return q, nil
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q, err := parseSlotQuery(r)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	result, err := s.bookings.CheckSlot(r.Context(), q.date, q.startMin, q.partySize, q.durationMin)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleAlternatives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q, err := parseSlotQuery(r)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	slots, err := s.bookings.Alternatives(r.Context(), q.date, q.startMin, q.partySize, q.durationMin)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"alternatives": slots})
}

func (s *HTTPServer) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	overview, err := s.bookings.DayOverview(r.Context(), date)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

type bookPayload struct {
	GuestName   string `json:"guest_name"`
	Phone       string `json:"phone"`
	PartySize   int    `json:"party_size"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	DurationMin int    `json:"duration_min"`
	Origin      string `json:"origin"`
	Comment     string `json:"comment"`
	Version     int64  `json:"version"`
}

func (p bookPayload) toRequest() (service.BookRequest, error) {
	date, err := time.Parse("2006-01-02", strings.TrimSpace(p.Date))
	if err != nil {
		return service.BookRequest{}, &schedule.ValidationError{Field: "date", Message: "invalid date format; expected YYYY-MM-DD"}
	}
	startMin, verr := schedule.ToMinutes(strings.TrimSpace(p.Time))
	if verr != nil {
		return service.BookRequest{}, verr
	}
	if strings.TrimSpace(p.GuestName) == "" {
		return service.BookRequest{}, &schedule.ValidationError{Field: "guest_name", Message: "guest_name is required"}
	}

	origin := p.Origin
	if origin == "" {
		origin = models.OriginWeb
	}

	return service.BookRequest{
		GuestName:   strings.TrimSpace(p.GuestName),
		Phone:       strings.TrimSpace(p.Phone),
		PartySize:   p.PartySize,
		Date:        date,
		StartMin:    startMin,
		DurationMin: p.DurationMin,
		Origin:      origin,
		Comment:     p.Comment,
	}, nil
}

func (s *HTTPServer) handleReservations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload bookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := payload.toRequest()
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	reservation, err := s.bookings.Book(r.Context(), req)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reservation)
}

// handleReservationByID routes /api/v1/reservations/{id} and
// /api/v1/reservations/{id}/{action}.
func (s *HTTPServer) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/reservations/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(rest, "/", 2)

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		reservation, err := s.bookings.GetReservation(r.Context(), id)
		if err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reservation)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload bookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	action := parts[1]
	switch action {
	case "reschedule":
		req, rerr := payload.toRequest()
		if rerr != nil {
			s.writeRejection(w, rerr)
			return
		}
		updated, uerr := s.bookings.Reschedule(r.Context(), id, payload.Version, req)
		if uerr != nil {
			s.writeRejection(w, uerr)
			return
		}
		writeJSON(w, http.StatusOK, updated)
		return
	case "confirm":
		err = s.bookings.Confirm(r.Context(), id, payload.Version)
	case "cancel":
		err = s.bookings.Cancel(r.Context(), id, payload.Version)
	case "complete":
		err = s.bookings.Complete(r.Context(), id, payload.Version)
	case "no-show":
		err = s.bookings.MarkNoShow(r.Context(), id, payload.Version)
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTableCheck routes /api/v1/tables/{id}/check.
func (s *HTTPServer) handleTableCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/v1/tables/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] != "check" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	tableID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || tableID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid table id")
		return
	}

	q, qerr := parseSlotQuery(r)
	if qerr != nil {
		s.writeRejection(w, qerr)
		return
	}

	result, err := s.bookings.CheckTable(r.Context(), tableID, q.date, q.startMin, q.partySize, q.durationMin)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	status := http.StatusOK
	if result.Allocated == nil {
		status = http.StatusConflict
	}
	writeJSON(w, status, result)
}

// handleSessionDraft routes /api/v1/sessions/{id}/draft for the interactive
// booking flows.
func (s *HTTPServer) handleSessionDraft(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/sessions/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[1] != "draft" || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	sessionID := parts[0]

	allowed, err := s.drafts.Allowed(r.Context(), sessionID)
	if err == nil && !allowed {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	switch r.Method {
	case http.MethodGet:
		draft, err := s.drafts.GetDraft(r.Context(), sessionID)
		if err != nil {
			s.writeRejection(w, err)
			return
		}
		if draft == nil {
			writeError(w, http.StatusNotFound, "no draft for session")
			return
		}
		writeJSON(w, http.StatusOK, draft)
	case http.MethodPut:
		var draft models.BookingDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		draft.SessionID = sessionID
		if err := s.drafts.SaveDraft(r.Context(), &draft); err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusOK, draft)
	case http.MethodDelete:
		if err := s.drafts.ClearDraft(r.Context(), sessionID); err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
