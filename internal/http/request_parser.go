package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/views"
)

const maxBodyBytes = 64 << 10

var errMalformedBody = errors.New("malformed request body")

// RequestBodyParser reads a JSON object or form-encoded body once and serves
// string values from it. JSON numbers are kept in their literal form so that
// amounts never pass through a float.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body. Bodies starting with '{' are JSON, anything else is
// treated as form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.err = p.parseJSON(trimmed)
		return p.err
	}

	var err error
	if p.formData, err = url.ParseQuery(string(trimmed)); err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return p.err
}

// parseJSON accepts exactly one object whose values are strings, numbers or
// null.
func (p *RequestBodyParser) parseJSON(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	data := make(map[string]any)
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: unexpected data after JSON object", errMalformedBody)
	}
	for key, val := range data {
		switch val.(type) {
		case string, json.Number, nil:
		default:
			return fmt.Errorf("%w: field %q must be a string or a number", core.ErrInvalidInput, key)
		}
	}
	p.jsonData = data
	return nil
}

// Get returns the trimmed value for key, or "" when it is absent.
func (p *RequestBodyParser) Get(key string) string {
	v, _ := p.Lookup(key)
	return v
}

// Lookup reports whether key was present in the body. A JSON null counts
// as absent.
func (p *RequestBodyParser) Lookup(key string) (string, bool) {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		if !ok || val == nil {
			return "", false
		}
		return sanitizeInput(stringValue(val)), true
	}
	if p.formData != nil {
		if _, ok := p.formData[key]; !ok {
			return "", false
		}
		return sanitizeInput(p.formData.Get(key)), true
	}
	return "", false
}

func stringValue(v any) string {
	if n, ok := v.(json.Number); ok {
		return n.String()
	}
	str, _ := v.(string)
	return str
}

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// ParseListQuery reads the category and q parameters. An empty category or
// "All" matches every category; unknown categories are invalid input.
func ParseListQuery(query url.Values) (views.Query, error) {
	q := views.Query{
		Category: core.CategoryAll,
		Search:   query.Get("q"),
	}
	raw := strings.TrimSpace(query.Get("category"))
	if raw == "" || strings.EqualFold(raw, string(core.CategoryAll)) {
		return q, nil
	}
	c, err := core.ParseCategory(raw)
	if err != nil {
		return views.Query{}, err
	}
	q.Category = c
	return q, nil
}
