package urls

import (
	"fmt"
	"strings"
)

var missingTokens = map[string]bool{
	"":     true,
	"none": true,
	"null": true,
	"na":   true,
	"n/a":  true,
}

// Bundle groups a required model URL with its optional code and dataset URLs.
type Bundle struct {
	Model   string
	Code    string
	Dataset string
}

// normalizeMissing trims the field and maps common null tokens to empty.
func normalizeMissing(s string) string {
	t := strings.TrimSpace(s)
	if missingTokens[strings.ToLower(t)] {
		return ""
	}
	return t
}

// ParseRecord validates one input record of 1-3 URL fields and groups them
// into a bundle. Each non-empty field is classified independently by its
// host and path shape; two fields claiming the same role is an error, and
// the model field is required. Missing sentinels count as absent fields.
func ParseRecord(fields []string) (*Bundle, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("expected 1-3 URL fields, got none")
	}
	if len(fields) > 3 {
		return nil, fmt.Errorf("at most 3 URL fields allowed, got %d", len(fields))
	}

	b := &Bundle{}
	for i, f := range fields {
		u := normalizeMissing(f)
		if u == "" {
			continue
		}
		role, err := Classify(u)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}
		switch role {
		case RoleModel:
			if b.Model != "" {
				return nil, fmt.Errorf("duplicate model URL in field %d: %s", i+1, u)
			}
			b.Model = u
		case RoleCode:
			if b.Code != "" {
				return nil, fmt.Errorf("duplicate code URL in field %d: %s", i+1, u)
			}
			b.Code = u
		case RoleDataset:
			if b.Dataset != "" {
				return nil, fmt.Errorf("duplicate dataset URL in field %d: %s", i+1, u)
			}
			b.Dataset = u
		}
	}

	if b.Model == "" {
		return nil, fmt.Errorf("model URL is required")
	}
	return b, nil
}

// ParseLine splits a raw comma-separated record line and parses it.
func ParseLine(line string) (*Bundle, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return ParseRecord(fields)
}
