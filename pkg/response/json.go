package response

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the standard success envelope
type APIResponse struct {
	Data       interface{} `json:"data"`
	Meta       *Meta       `json:"meta,omitempty"`
	StatusCode int         `json:"status_code"`
}

// APIError is the standard error envelope
type APIError struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

// Meta contains pagination metadata for list responses
type Meta struct {
	CurrentPage  int `json:"current_page"`
	LastPage     int `json:"last_page"`
	FirstItem    int `json:"first_item"`
	LastItem     int `json:"last_item"`
	ItemsPerPage int `json:"items_per_page"`
	Total        int `json:"total"`
}

// JSON sends a success envelope with the given status code
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(APIResponse{
		Data:       data,
		StatusCode: status,
	})
}

// JSONWithMeta sends a success envelope with pagination metadata
func JSONWithMeta(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(APIResponse{
		Data:       data,
		Meta:       meta,
		StatusCode: status,
	})
}

// Error sends an error envelope
func Error(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(APIError{
		Detail:     detail,
		StatusCode: status,
	})
}

// Common error responses
func BadRequest(w http.ResponseWriter, detail string) {
	Error(w, http.StatusBadRequest, detail)
}

func NotFound(w http.ResponseWriter, detail string) {
	Error(w, http.StatusNotFound, detail)
}

func Conflict(w http.ResponseWriter, detail string) {
	Error(w, http.StatusConflict, detail)
}

func InternalError(w http.ResponseWriter, detail string) {
	Error(w, http.StatusInternalServerError, detail)
}
