package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type detail struct {
	Detail    string            `json:"detail"`
	Fields    map[string]string `json:"fields,omitempty"`
	Retryable bool              `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, detail{Detail: msg})
}

// decode reads a JSON body into v and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}

	if err := validate.Struct(v); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) {
			writeJSON(w, http.StatusBadRequest, detail{Detail: "validation failed", Fields: fields(errs)})
			return false
		}
		writeDetail(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

func fields(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, err := range errs {
		name := err.Field()
		switch err.Tag() {
		case "required":
			out[name] = fmt.Sprintf("%s is required", name)
		case "email":
			out[name] = fmt.Sprintf("%s must be a valid email", name)
		case "min", "gte":
			out[name] = fmt.Sprintf("%s must be at least %s", name, err.Param())
		case "max", "lte":
			out[name] = fmt.Sprintf("%s must be at most %s", name, err.Param())
		default:
			out[name] = fmt.Sprintf("%s failed on '%s'", name, err.Tag())
		}
	}
	return out
}
