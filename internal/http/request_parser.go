package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"socialspend/internal/analytics"
	"socialspend/internal/core"
)

const maxBodyBytes = 1 << 16

// YearPairParams holds the years of a comparison and whether it is partial.
type YearPairParams struct {
	YearA   int
	YearB   int
	Partial bool
}

// ParseYearPairParams reads year_a, year_b and partial. Missing years default
// to the latest dataset year and the one before it.
func ParseYearPairParams(query url.Values, records []core.SpendRecord) (YearPairParams, error) {
	var p YearPairParams
	years := analytics.UniqueYears(records)
	if len(years) > 0 {
		p.YearB = years[len(years)-1]
	}

	var err error
	if p.YearB, err = intParam(query, "year_b", p.YearB); err != nil {
		return p, err
	}
	if p.YearA, err = intParam(query, "year_a", p.YearB-1); err != nil {
		return p, err
	}
	if p.Partial, err = boolParam(query, "partial"); err != nil {
		return p, err
	}
	return p, nil
}

// ParseYearParam reads year, defaulting to def.
func ParseYearParam(query url.Values, def int) (int, error) {
	return intParam(query, "year", def)
}

// ParseBankParam returns the sanitized bank parameter or an error when it is
// missing.
func ParseBankParam(query url.Values) (string, error) {
	bank := sanitizeInput(query.Get("bank"))
	if bank == "" {
		return "", errors.New("missing bank parameter")
	}
	return bank, nil
}

func intParam(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1000 || n > 9999 {
		return 0, fmt.Errorf("invalid %s %q: must be a four digit year", key, v)
	}
	return n, nil
}

func boolParam(query url.Values, key string) (bool, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: must be true or false", key, v)
	}
	return b, nil
}

// importBody is the payload of POST /api/v1/imports.
type importBody struct {
	Path   string `json:"path"`
	Source string `json:"source"`
	Strict bool   `json:"strict"`
}

func decodeImportBody(r io.Reader) (importBody, error) {
	var body importBody
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		return body, fmt.Errorf("invalid request body: %w", err)
	}
	body.Path = sanitizeInput(body.Path)
	body.Source = sanitizeInput(body.Source)
	if body.Path == "" {
		return body, errors.New("path is required")
	}
	return body, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
