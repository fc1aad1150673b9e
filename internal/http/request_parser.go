// Package http exposes the cost service as a JSON API.
//
// This file holds the request decoding shared by the handlers: a body parser
// that accepts JSON or form-encoded payloads and strict query helpers.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"costs/internal/core"
	"costs/internal/services"
)

// maxBodyBytes bounds the request body of POST /api/add.
const maxBodyBytes = 1 << 20

// RequestBodyParser reads a request body once and exposes its fields whether
// the client sent JSON or form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of r's body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		p.err = fmt.Errorf("%w: reading body: %v", core.ErrValidation, p.err)
	}
	return p
}

// Parse decodes the body. JSON is chosen by Content-Type or by a leading
// brace; everything else is treated as a form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.looksLikeJSON(trimmed) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: body must be a JSON object: %v", core.ErrValidation, err)
			return p.err
		}
		if p.jsonData == nil {
			p.err = fmt.Errorf("%w: body must be a JSON object", core.ErrValidation)
			return p.err
		}
		var extra any
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: body must hold a single JSON object", core.ErrValidation)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = fmt.Errorf("%w: malformed form body: %v", core.ErrValidation, p.err)
	}
	return p.err
}

func (p *RequestBodyParser) looksLikeJSON(body []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(p.contentType); err == nil {
		if mediaType == "application/json" || strings.HasSuffix(mediaType, "+json") {
			return true
		}
	}
	return body[0] == '{' || body[0] == '['
}

// Lookup returns the value of the first present key. A key whose value is
// absent, null or blank is not present.
func (p *RequestBodyParser) Lookup(keys ...string) (string, bool) {
	for _, key := range keys {
		var raw string
		var found bool
		switch {
		case p.jsonData != nil:
			if val, ok := p.jsonData[key]; ok && val != nil {
				raw, found = stringValue(val)
			}
		case p.formData != nil:
			if _, ok := p.formData[key]; ok {
				raw, found = p.formData.Get(key), true
			}
		}
		if !found {
			continue
		}
		if v := sanitizeInput(raw); v != "" {
			return v, true
		}
	}
	return "", false
}

// stringValue renders a scalar JSON value. Objects and arrays are rejected.
func stringValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// sanitizeInput drops NUL and other control characters except tab, newline
// and carriage return, then trims surrounding whitespace. Text inside the
// value is otherwise kept as sent.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\n', '\r':
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// parseAddCostRequest validates presence and types of the add-cost fields.
// Date strings without a zone are read in loc.
func parseAddCostRequest(p *RequestBodyParser, loc *time.Location) (services.AddCostRequest, error) {
	var req services.AddCostRequest
	if err := p.Parse(); err != nil {
		return req, err
	}

	description, okDesc := p.Lookup("description")
	category, okCat := p.Lookup("category")
	userID, okUser := p.Lookup("userid", "userId")
	sum, okSum := p.Lookup("sum", "amount")

	var missing []string
	for _, f := range []struct {
		name string
		ok   bool
	}{{"description", okDesc}, {"category", okCat}, {"userid", okUser}, {"sum", okSum}} {
		if !f.ok {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return req, fmt.Errorf("%w: missing required fields: %s", core.ErrValidation, strings.Join(missing, ", "))
	}

	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return req, fmt.Errorf("%w: userid %q must be an integer", core.ErrValidation, userID)
	}
	amount, err := strconv.ParseFloat(sum, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return req, fmt.Errorf("%w: sum %q must be a number", core.ErrValidation, sum)
	}

	req = services.AddCostRequest{
		Description: description,
		Category:    category,
		UserID:      id,
		Sum:         amount,
	}
	if date, ok := p.Lookup("date"); ok {
		if req.Date, err = core.ParseDate(date, loc); err != nil {
			return services.AddCostRequest{}, err
		}
	}
	return req, nil
}

// ReportParams holds the parsed query of GET /api/report.
type ReportParams struct {
	UserID int64
	Year   int
	Month  int
}

// ParseReportParams requires id, year and month as integers. Range checks on
// year and month are left to the report service.
func ParseReportParams(query url.Values) (ReportParams, error) {
	var params ReportParams
	var errs []error

	id, err := requiredInt(query, "id")
	errs = append(errs, err)
	year, err := requiredInt(query, "year")
	errs = append(errs, err)
	month, err := requiredInt(query, "month")
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return params, err
	}

	params.UserID = id
	params.Year = int(year)
	params.Month = int(month)
	return params, nil
}

func requiredInt(query url.Values, key string) (int64, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return 0, fmt.Errorf("%w: query parameter %q is required", core.ErrValidation, key)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: query parameter %q must be an integer", core.ErrValidation, key)
	}
	return n, nil
}
