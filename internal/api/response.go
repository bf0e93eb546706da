// Package api holds the HTTP payloads and helpers shared by every feature.
package api

import (
	"net/url"
	"sort"

	"github.com/oapi-codegen/runtime"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// BindQuery binds an optional form-style query parameter into dest.
// dest keeps its current value when the parameter is absent.
func BindQuery(q url.Values, name string, dest any) error {
	return runtime.BindQueryParameter("form", true, false, name, q, dest)
}

// BindQueries binds several optional parameters, in name order, stopping at the first error.
func BindQueries(q url.Values, params map[string]any) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := BindQuery(q, name, params[name]); err != nil {
			return err
		}
	}
	return nil
}
