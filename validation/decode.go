package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/rpupo63/portfolio-backend/errs"
)

// DecodeJSON decodes a JSON body into dst. An empty body decodes to the zero value.
func DecodeJSON(r io.Reader, dst any, payloadName string) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return errs.Malformed(payloadName)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return decodeBytes(body, dst, payloadName)
}

// DecodeForm decodes url-encoded or multipart form values into dst through the same path as
// JSON bodies. Keys ending in "[]" and keys repeated more than once become string arrays.
func DecodeForm(values url.Values, dst any, payloadName string) error {
	m := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if name, ok := strings.CutSuffix(key, "[]"); ok {
			m[name] = vals
			continue
		}
		if len(vals) > 1 {
			m[key] = vals
			continue
		}
		if key == "id" && strings.TrimSpace(vals[0]) == "" {
			// a blank hidden id input means a new record
			continue
		}
		m[key] = vals[0]
	}
	body, err := json.Marshal(m)
	if err != nil {
		return errs.Malformed(payloadName)
	}
	return decodeBytes(body, dst, payloadName)
}

func decodeBytes(body []byte, dst any, payloadName string) error {
	err := json.Unmarshal(body, dst)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrInvalidTechStack) {
		return errs.NewInvalidFieldError("tech_stack", "Invalid tech stack")
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return errs.NewInvalidFieldError(typeErr.Field, fmt.Sprintf("Field '%s' has the wrong type", typeErr.Field))
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return errs.Malformed(payloadName)
	}
	apiErr := errs.NewBadRequestError(fmt.Sprintf("Invalid %s payload: %s", payloadName, err.Error()))
	apiErr.Cause = err
	return apiErr
}
