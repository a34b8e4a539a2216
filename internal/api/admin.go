package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"tablebook/internal/models"
	"tablebook/internal/schedule"
)

type weeklyHoursPayload struct {
	Weekday int    `json:"weekday"`
	Open    string `json:"open"`
	Close   string `json:"close"`
	Closed  bool   `json:"closed"`
}

// handleWeeklyHours reads or replaces one weekday's schedule. Changes take
// effect on the next request; nothing is cached.
func (s *HTTPServer) handleWeeklyHours(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		out := make([]*models.BusinessHours, 0, 7)
		for weekday := 0; weekday < 7; weekday++ {
			hours, err := s.store.GetWeeklyHours(r.Context(), weekday)
			if err != nil {
				s.writeRejection(w, err)
				return
			}
			if hours != nil {
				out = append(out, hours)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"weekly_hours": out})
	case http.MethodPut:
		var payload weeklyHoursPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.Weekday < 0 || payload.Weekday > 6 {
			writeError(w, http.StatusBadRequest, "weekday must be 0-6")
			return
		}

		hours := &models.BusinessHours{Weekday: payload.Weekday, Closed: payload.Closed}
		if !payload.Closed {
			openMin, err := schedule.ToMinutes(payload.Open)
			if err != nil {
				s.writeRejection(w, err)
				return
			}
			closeMin, err := schedule.ToMinutes(payload.Close)
			if err != nil {
				s.writeRejection(w, err)
				return
			}
			hours.OpenMin = openMin
			hours.CloseMin = closeMin
		}

		if err := s.store.SetWeeklyHours(r.Context(), hours); err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusOK, hours)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type exceptionPayload struct {
	Date   string `json:"date"`
	Closed bool   `json:"closed"`
	Open   string `json:"open"`
	Close  string `json:"close"`
	Reason string `json:"reason"`
}

// handleExceptions manages per-date overrides of the weekly schedule.
func (s *HTTPServer) handleExceptions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		exc, err := s.store.GetHoursException(r.Context(), date)
		if err != nil {
			s.writeRejection(w, err)
			return
		}
		if exc == nil {
			writeError(w, http.StatusNotFound, "no exception for date")
			return
		}
		writeJSON(w, http.StatusOK, exc)
	case http.MethodPut:
		var payload exceptionPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(payload.Date))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}

		exc := &models.HoursException{Date: date, Closed: payload.Closed, Reason: payload.Reason}
		if !payload.Closed {
			openMin, verr := schedule.ToMinutes(payload.Open)
			if verr != nil {
				s.writeRejection(w, verr)
				return
			}
			closeMin, verr := schedule.ToMinutes(payload.Close)
			if verr != nil {
				s.writeRejection(w, verr)
				return
			}
			exc.OpenMin = openMin
			exc.CloseMin = closeMin
		}

		if err := s.store.SetHoursException(r.Context(), exc); err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusOK, exc)
	case http.MethodDelete:
		dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
			return
		}
		if err := s.store.DeleteHoursException(r.Context(), date); err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleDefaultDuration(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		minutes, err := s.store.GetDefaultDuration(r.Context())
		if err != nil {
			s.writeRejection(w, err)
			return
		}
		if minutes <= 0 {
			minutes = models.DefaultDurationFallback
		}
		writeJSON(w, http.StatusOK, map[string]int{"default_duration_min": minutes})
	case http.MethodPut:
		var payload struct {
			DefaultDurationMin int `json:"default_duration_min"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.DefaultDurationMin <= 0 {
			writeError(w, http.StatusBadRequest, "default_duration_min must be positive")
			return
		}
		if err := s.store.SetDefaultDuration(r.Context(), payload.DefaultDurationMin); err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"default_duration_min": payload.DefaultDurationMin})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleTables(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tables, err := s.store.ListTables(r.Context())
		if err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tables": tables})
	case http.MethodPost:
		var table models.Table
		if err := json.NewDecoder(r.Body).Decode(&table); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if table.Number <= 0 || table.Capacity <= 0 {
			writeError(w, http.StatusBadRequest, "number and capacity must be positive")
			return
		}
		table.IsActive = true
		if err := s.store.CreateTable(r.Context(), &table); err != nil {
			s.writeRejection(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, table)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start, err := time.Parse("2006-01-02", strings.TrimSpace(payload.StartDate))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(payload.EndDate))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date; expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "end_date is before start_date")
		return
	}

	path, err := s.exports.ExportSchedule(r.Context(), start, end)
	if err != nil {
		s.writeRejection(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"file_path": path})
}
