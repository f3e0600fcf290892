package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/novathreads/storefront-backend/pkg/errors"
	"github.com/novathreads/storefront-backend/pkg/types"
)

// ParseQueryInt reads an integer query parameter, falling back to defaultVal
// when absent. Out-of-range values are validation errors naming key.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(key, fmt.Sprintf("%s must be a whole number", key))
	}
	if value < min || value > max {
		return 0, queryError(key, fmt.Sprintf("%s must be between %d and %d", key, min, max))
	}
	return value, nil
}

// ParseQueryBool returns nil when the parameter is absent, so callers can
// tell "not filtered" apart from "filtered on false".
func ParseQueryBool(r *http.Request, key string) (*bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, queryError(key, fmt.Sprintf("%s must be true or false", key))
	}
	return &value, nil
}

// ParseQueryString returns the trimmed value, truncated to maxLen.
func ParseQueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}

func queryError(field, msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).
		WithDetails([]types.FieldError{{Field: field, Message: msg}})
}
