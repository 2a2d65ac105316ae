package service

import (
	"encoding/json"
	"errors"
	"net/http"

	"civicdesk/internal/logic"
	"civicdesk/pkg/pagination"
)

// Response is the JSON envelope every admin endpoint answers with.
type Response struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
	Data       interface{}      `json:"data,omitempty"`
	Error      string           `json:"error,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`

	status int
}

// StatusCode returns the HTTP status the envelope is written with.
func (r *Response) StatusCode() int {
	if r.status != 0 {
		return r.status
	}
	if r.Success {
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

func ResponseSuccess(d interface{}) *Response {
	return &Response{Success: true, Data: d, status: http.StatusOK}
}

func ResponseSuccessWithMsg(d interface{}, msg string) *Response {
	return &Response{Success: true, Data: d, Message: msg, status: http.StatusOK}
}

func ResponseCreated(d interface{}) *Response {
	return &Response{Success: true, Data: d, status: http.StatusCreated}
}

// ResponsePage wraps one page of results with its pagination metadata.
func ResponsePage(p *pagination.PageResult) *Response {
	meta := p.Pagination
	return &Response{Success: true, Data: p.Data, Pagination: &meta, status: http.StatusOK}
}

// ResponseError maps err onto its HTTP status. Server-side failures are not echoed to the caller.
func ResponseError(err error) *Response {
	code := statusFromError(err)
	msg := err.Error()
	if code >= http.StatusInternalServerError {
		msg = http.StatusText(code)
	}
	return &Response{Success: false, Error: msg, status: code}
}

func ResponseErrorWithStatus(code int, msg string) *Response {
	return &Response{Success: false, Error: msg, status: code}
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, logic.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrActorNotFound):
		return http.StatusNotFound
	case errors.Is(err, logic.ErrStoreFailure):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, httpCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteResponse writes the envelope with its own status.
func WriteResponse(w http.ResponseWriter, resp *Response) {
	WriteJSON(w, resp.StatusCode(), resp)
}

// WriteHttpError writes a standard JSON error response to the http.ResponseWriter.
func WriteHttpError(w http.ResponseWriter, httpCode int, message string) {
	WriteResponse(w, ResponseErrorWithStatus(httpCode, message))
}
