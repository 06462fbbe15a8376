// Package forms holds the view-models posted by the client and person
// forms, their validation tables and the mappings to and from the stored
// records.
package forms

import (
	"fmt"
	"net/http"

	"github.com/go-playground/form"
)

var decoder = form.NewDecoder()

// decode parses the request body into dst. Only body values are used so a
// query string cannot override a posted field.
func decode(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parsing form: %w", err)
	}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		return fmt.Errorf("decoding form: %w", err)
	}
	return nil
}
