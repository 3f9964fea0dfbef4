package urls

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	hubHost  = "huggingface.co"
	codeHost = "github.com"

	datasetPathPrefix = "/datasets/"
)

// Role identifies what a single URL points at.
type Role int

const (
	RoleUnknown Role = iota
	RoleModel
	RoleCode
	RoleDataset
)

func (r Role) String() string {
	switch r {
	case RoleModel:
		return "model"
	case RoleCode:
		return "code"
	case RoleDataset:
		return "dataset"
	default:
		return "unknown"
	}
}

// InvalidURLError indicates a URL that could not be parsed or has no host.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid URL: %q", e.URL)
}

// UnsupportedDomainError indicates a URL on a host this tool does not know.
type UnsupportedDomainError struct {
	URL  string
	Host string
}

func (e *UnsupportedDomainError) Error() string {
	return fmt.Sprintf("unsupported domain %q in URL: %q", e.Host, e.URL)
}

// Classify determines the role of a single URL from its host and path shape.
func Classify(raw string) (Role, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RoleUnknown, &InvalidURLError{URL: raw}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return RoleUnknown, &InvalidURLError{URL: raw}
	}

	switch u.Host {
	case hubHost:
		if strings.HasPrefix(u.Path, datasetPathPrefix) {
			return RoleDataset, nil
		}
		if strings.HasPrefix(u.Path, "/") && u.Path != "/" {
			return RoleModel, nil
		}
		return RoleUnknown, &InvalidURLError{URL: raw}
	case codeHost:
		return RoleCode, nil
	default:
		return RoleUnknown, &UnsupportedDomainError{URL: raw, Host: u.Host}
	}
}
