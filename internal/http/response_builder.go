// Package http exposes the cost service as a JSON API.
//
// This file implements a small builder for JSON responses, the mapping from
// domain errors to HTTP errors and the wire shapes of every payload.

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"costs/internal/core"
	applog "costs/internal/log"
)

// Error codes carried in the error envelope.
const (
	CodeValidation           = "validation_error"
	CodeNotFound             = "not_found"
	CodeUnrecognizedCategory = "unrecognized_category"
	CodeStore                = "store_error"
	CodeInternal             = "internal_error"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header sets a custom header on the response.
func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// StatusCode returns the configured status code.
func (b *JSONResponseBuilder) StatusCode() int {
	return b.statusCode
}

// Send writes the response. Encoding happens before the header is written so
// a marshal failure can still become a 500.
func (b *JSONResponseBuilder) Send(w http.ResponseWriter) {
	payload, err := json.Marshal(b.body)
	if err != nil {
		b.statusCode = http.StatusInternalServerError
		payload = []byte(`{"error":{"code":"internal_error","message":"Internal server error"}}`)
	}

	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse creates an error envelope with the given status and code.
func ErrorResponse(status int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(status).
		Body(errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

// NotFoundError creates a 404 response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, CodeNotFound, message)
}

// InternalError creates a 500 response without details.
func InternalError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, CodeInternal, "Internal server error")
}

// ErrorFromDomain maps err onto the error taxonomy. Client errors carry the
// error text as message; server errors get a fixed message and expose the
// error text as details only when exposeDetails is set.
func ErrorFromDomain(err error, exposeDetails bool) *JSONResponseBuilder {
	var status int
	var body errorBody

	switch {
	case errors.Is(err, core.ErrValidation):
		status, body = http.StatusBadRequest, errorBody{Code: CodeValidation, Message: err.Error()}
	case errors.Is(err, core.ErrNotFound):
		status, body = http.StatusNotFound, errorBody{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, core.ErrUnrecognizedCategory):
		status, body = http.StatusInternalServerError, errorBody{Code: CodeUnrecognizedCategory, Message: "A stored cost has an unrecognized category"}
	case errors.Is(err, core.ErrStore):
		status, body = http.StatusInternalServerError, errorBody{Code: CodeStore, Message: "Storage operation failed"}
	default:
		status, body = http.StatusInternalServerError, errorBody{Code: CodeInternal, Message: "Internal server error"}
	}

	if status >= http.StatusInternalServerError && exposeDetails {
		body.Details = err.Error()
	}
	return NewJSONResponse().Status(status).Body(errorEnvelope{Error: body})
}

// writeError logs server-side failures and sends the mapped error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp := ErrorFromDomain(err, s.exposeDetails)
	if resp.StatusCode() >= http.StatusInternalServerError {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, applog.ComponentHTTP, op, applog.NewFields())
	}
	resp.Send(w)
}

type costResponse struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	UserID      int64     `json:"userid"`
	Sum         float64   `json:"sum"`
	Date        time.Time `json:"date"`
}

func newCostResponse(c core.Cost) costResponse {
	return costResponse{
		ID:          c.ID,
		Description: c.Description,
		Category:    c.Category.String(),
		UserID:      c.UserID,
		Sum:         c.Sum,
		Date:        c.Date,
	}
}

type reportEntryResponse struct {
	Sum         float64 `json:"sum"`
	Description string  `json:"description"`
	Day         int     `json:"day"`
}

// reportResponse renders one single-key object per category, always in
// category order: "costs":[{"food":[...]},{"health":[...]},...].
type reportResponse struct {
	UserID int64                              `json:"userid"`
	Year   int                                `json:"year"`
	Month  int                                `json:"month"`
	Costs  []map[string][]reportEntryResponse `json:"costs"`
}

func newReportResponse(r core.MonthlyReport) reportResponse {
	resp := reportResponse{
		UserID: r.UserID,
		Year:   r.Year,
		Month:  r.Month,
		Costs:  make([]map[string][]reportEntryResponse, 0, len(core.Categories)),
	}
	for _, c := range core.Categories {
		bucket := r.Bucket(c)
		entries := make([]reportEntryResponse, 0, len(bucket))
		for _, e := range bucket {
			entries = append(entries, reportEntryResponse{Sum: e.Sum, Description: e.Description, Day: e.Day})
		}
		resp.Costs = append(resp.Costs, map[string][]reportEntryResponse{c.String(): entries})
	}
	return resp
}

type userResponse struct {
	ID        int64   `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Total     float64 `json:"total"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Total: u.Total}
}

type teamMemberResponse struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func newTeamResponse(members []core.TeamMember) []teamMemberResponse {
	resp := make([]teamMemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, teamMemberResponse{FirstName: m.FirstName, LastName: m.LastName})
	}
	return resp
}
