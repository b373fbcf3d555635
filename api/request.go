package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/validation"
)

// multipartMemory is how much of a multipart body is kept in memory before spilling to disk.
const multipartMemory = 8 << 20

// maxIdempotencyKey matches the width of the request_id columns.
const maxIdempotencyKey = 64

// decodeBody decodes a JSON, url-encoded or multipart body into dst.
func decodeBody(r *http.Request, dst any, payloadName string) error {
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := parseForm(r, payloadName); err != nil {
			return err
		}
		return validation.DecodeForm(r.MultipartForm.Value, dst, payloadName)
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := parseForm(r, payloadName); err != nil {
			return err
		}
		return validation.DecodeForm(r.PostForm, dst, payloadName)
	default:
		return validation.DecodeJSON(r.Body, dst, payloadName)
	}
}

// parseForm parses a url-encoded or multipart body once. Later calls are no-ops.
func parseForm(r *http.Request, payloadName string) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return formError(err, payloadName)
	}
	return nil
}

func formError(err error, payloadName string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errs.NewUploadFailedError(err)
	}
	return errs.Malformed(payloadName)
}

// queryID parses an integer id from the query string. ok is false when the parameter is absent.
func queryID(r *http.Request) (id int64, ok bool, err error) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, errs.NewInvalidFieldError("id", "Invalid id")
	}
	return id, true, nil
}

// resolveID prefers the id carried in the body and falls back to the query string.
func resolveID(r *http.Request, body validation.Optional[validation.Int]) (int64, error) {
	if v, ok := body.Get(); ok && v > 0 {
		return int64(v), nil
	}
	id, ok, err := queryID(r)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errs.NewMissingRequiredFieldError("id")
	}
	return id, nil
}

func queryBool(r *http.Request, name string) bool {
	return validation.ParseBool(r.URL.Query().Get(name))
}

// bodyID returns the id of a POST body. ok is false when the body names no record, which
// makes the POST a create.
func bodyID(body validation.Optional[validation.Int]) (id int64, ok bool, err error) {
	v, set := body.Get()
	if !set {
		return 0, false, nil
	}
	if v <= 0 {
		return 0, false, errs.NewInvalidFieldError("id", "Invalid id")
	}
	return int64(v), true, nil
}

// idempotencyKey returns the client supplied request key, header first. Keys longer than
// the request_id column are rejected rather than cut, so distinct keys never collide.
func idempotencyKey(r *http.Request, body validation.Optional[string]) (*string, error) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		key = strings.TrimSpace(body.Value)
	}
	if key == "" {
		return nil, nil
	}
	if !utf8.ValidString(key) || utf8.RuneCountInString(key) > maxIdempotencyKey {
		return nil, errs.NewInvalidFieldError("request_id",
			fmt.Sprintf("Idempotency key must be at most %d characters", maxIdempotencyKey))
	}
	return &key, nil
}

// limitBody caps request bodies at maxBytes.
func limitBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
