// Package http holds response and query-parsing helpers shared by the
// API handlers.
package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// JSON writes v as a JSON response with the given status code
func JSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// ErrorResponse sends an error response as JSON
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	log.Printf("Error: %s (status %d)", message, statusCode)
	JSON(w, statusCode, map[string]string{"error": message})
}

// DecodeJSON decodes the request body into v, rejecting unknown fields
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Attachment writes data as a file download
func Attachment(w http.ResponseWriter, data []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		log.Printf("Error writing attachment %s: %v", filename, err)
	}
}

// ParseDateRange parses start and end date query parameters with defaults
func ParseDateRange(startStr, endStr string, minDate, maxDate time.Time) (start, end time.Time) {
	// Parse start date
	if startStr != "" {
		start, _ = time.Parse("2006-01-02", startStr)
	} else {
		// Default to YTD
		start = time.Date(time.Now().Year(), 1, 1, 0, 0, 0, 0, time.Local)
		// If YTD range starts after our data ends, default to all-time
		if !maxDate.IsZero() && start.After(maxDate) {
			start = minDate
		} else if start.Before(minDate) {
			start = minDate
		}
	}

	// Parse end date
	if endStr != "" {
		end, _ = time.Parse("2006-01-02", endStr)
	} else {
		end = maxDate
	}

	return start, end
}
