package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/jrsteele09/go-auth-client/gateway"
	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/utils"
)

// registerFieldOrder is the order fields are inspected when the server
// reports several invalid fields at once.
var registerFieldOrder = []string{"username", "email", "password", "role"}

// generalErrorKeys carry messages that apply to the whole request.
var generalErrorKeys = map[string]bool{
	"non_field_errors": true,
	"detail":           true,
}

const genericRegisterMessage = "registration failed"

// parseValidationBody extracts the first field message from a field-keyed
// error body such as {"username": ["already taken"]}.
func parseValidationBody(body []byte) (*ValidationError, bool) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return nil, false
	}

	keys := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(registerFieldOrder))
	for _, k := range registerFieldOrder {
		if _, ok := fields[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(fields))
	for k := range fields {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	for _, k := range keys {
		msg, ok := utils.FirstString(fields[k])
		if !ok {
			continue
		}
		if generalErrorKeys[k] {
			k = ""
		}
		return NewValidationError(k, msg), true
	}
	return nil, false
}

// classifyExchangeError maps a login exchange failure onto an error kind.
func classifyExchangeError(err error) error {
	var httpErr *gateway.HTTPError
	switch {
	case errors.As(err, &httpErr):
		switch httpErr.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return autherrors.Join(ErrInvalidCredentials, err)
		}
		return autherrors.Join(ErrUnknown, err)
	case isNetworkError(err):
		return autherrors.Join(ErrNetworkFailure, err)
	default:
		return autherrors.Join(ErrUnknown, err)
	}
}

// classifyRegisterError maps a register failure onto an error kind. A 4xx
// always yields a *ValidationError.
func classifyRegisterError(err error) error {
	var httpErr *gateway.HTTPError
	switch {
	case errors.As(err, &httpErr):
		if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
			if verr, ok := parseValidationBody(httpErr.Body); ok {
				return verr
			}
			return NewValidationError("", genericRegisterMessage)
		}
		return autherrors.Join(ErrUnknown, err)
	case isNetworkError(err):
		return autherrors.Join(ErrNetworkFailure, err)
	default:
		return autherrors.Join(ErrUnknown, err)
	}
}

func isNetworkError(err error) bool {
	return errors.Is(err, gateway.ErrNetwork) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
