// AngelaMos | 2026
// response.go

package core

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// development widens internal error responses with the underlying
// message. Set once at bootstrap, read-only afterwards.
var development bool

func SetDevelopment(dev bool) {
	development = dev
}

type Envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Count   *int       `json:"count,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // best-effort response write
	_ = json.NewEncoder(w).Encode(body)
}

func OK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMessage(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func CreatedMessage(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusCreated, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Collection writes a list response carrying a count alongside the data,
// the envelope the search and listing endpoints use.
func Collection(w http.ResponseWriter, count int, data any) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Count:   &count,
		Data:    data,
	})
}

func JSONError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, Envelope{
			Success: false,
			Error: &ErrorBody{
				Code:    appErr.Code,
				Message: appErr.Message,
			},
		})
		return
	}

	InternalServerError(w, err)
}

func BadRequest(w http.ResponseWriter, message string) {
	JSONError(w, ValidationError(message))
}

func Unauthorized(w http.ResponseWriter, message string) {
	JSONError(w, UnauthorizedError(message))
}

func Forbidden(w http.ResponseWriter, message string) {
	JSONError(w, ForbiddenError(message))
}

func NotFound(w http.ResponseWriter, resource string) {
	JSONError(w, NotFoundError(resource))
}

func Conflict(w http.ResponseWriter, field string) {
	JSONError(w, DuplicateError(field))
}

// InternalServerError logs the underlying error and responds with a
// generic message. Development mode includes the error detail so the
// caller does not have to cross-reference server logs.
func InternalServerError(w http.ResponseWriter, err error) {
	slog.Error("internal error", "error", err)

	body := Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    "INTERNAL_ERROR",
			Message: "something went wrong",
		},
	}

	if development && err != nil {
		body.Error.Detail = err.Error()
	}

	writeJSON(w, http.StatusInternalServerError, body)
}

func FormatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "invalid request"
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		case "email":
			messages = append(messages, field+" must be a valid email")
		case "min":
			messages = append(
				messages,
				field+" must be at least "+fieldErr.Param()+" characters",
			)
		case "max":
			messages = append(
				messages,
				field+" must be at most "+fieldErr.Param()+" characters",
			)
		case "oneof":
			messages = append(
				messages,
				field+" must be one of: "+fieldErr.Param(),
			)
		case "gte":
			messages = append(
				messages,
				field+" must be at least "+fieldErr.Param(),
			)
		default:
			messages = append(messages, field+" is invalid")
		}
	}

	return strings.Join(messages, "; ")
}
