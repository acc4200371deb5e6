package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// APIErrorDetail represents a single error in the standardized error response.
type APIErrorDetail struct {
	Code   string `json:"code"`
	Status string `json:"status"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

// APIErrorResponse represents the standardized error response body.
type APIErrorResponse struct {
	Errors []APIErrorDetail `json:"errors"`
}

// WriteAPIError writes a standardized error response with the given HTTP status, code, and detail.
func WriteAPIError(w http.ResponseWriter, httpStatus int, code string, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	resp := APIErrorResponse{
		Errors: []APIErrorDetail{
			{
				Code:   code,
				Status: strconv.Itoa(httpStatus),
				Detail: detail,
			},
		},
	}

	_ = json.NewEncoder(w).Encode(resp)
}

// WriteValidationErrors writes a 422 with one field-scoped detail per
// violation, used by the multipart upload and category forms.
func WriteValidationErrors(w http.ResponseWriter, details []APIErrorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)

	for i := range details {
		if details[i].Code == "" {
			details[i].Code = "validation_error"
		}
		details[i].Status = strconv.Itoa(http.StatusUnprocessableEntity)
	}

	_ = json.NewEncoder(w).Encode(APIErrorResponse{Errors: details})
}
