package http

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/camslew/internal/adapters/backend"
	"github.com/samirrijal/camslew/internal/core/domain"
	"github.com/samirrijal/camslew/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int          `json:"status"`
	Code      string       `json:"code"`    // Error code: bad_request, not_found, validation_failed, etc.
	Message   string       `json:"message"` // Human-readable message
	Fields    []FieldError `json:"fields,omitempty"`
	RequestID string       `json:"request_id,omitempty"`
}

// FieldError is one invalid input field, with the text a form shows next to it.
type FieldError struct {
	Field   string `json:"field"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeError(c, APIError{Status: status, Code: code, Message: message})
}

func writeError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusConflict, "conflict", msg)
}

// errBadGateway returns a 502 error for camera backend failures.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadGateway, "backend_error", msg)
}

// errValidation returns a 422 error listing every invalid field.
func errValidation(c *fiber.Ctx, verrs domain.ValidationErrors, prefix string) error {
	fields := make([]FieldError, len(verrs))
	for i, v := range verrs {
		fields[i] = FieldError{Field: prefix + v.Field, Reason: v.Reason, Message: v.Message()}
	}
	return writeError(c, APIError{
		Status:  fiber.StatusUnprocessableEntity,
		Code:    "validation_failed",
		Message: "one or more fields are invalid",
		Fields:  fields,
	})
}

// handleError maps a use-case error to its HTTP response.
func handleError(c *fiber.Ctx, err error) error {
	var (
		candErr   *usecases.CandidateError
		idxErr    *domain.IndexError
		statusErr *backend.StatusError
		urlErr    *url.Error
	)

	switch {
	case errors.As(err, &candErr):
		if verrs, ok := domain.AsValidationErrors(candErr.Err); ok {
			return errValidation(c, verrs, candidatePrefix(candErr.Index))
		}
	case errors.As(err, &idxErr):
		return errBadRequest(c, idxErr.Error())
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrCameraNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrNoCameraSelected), errors.Is(err, domain.ErrNoResult):
		return errConflict(c, err.Error())
	case errors.Is(err, usecases.ErrHistoryDisabled):
		return newError(c, fiber.StatusNotImplemented, "not_implemented", err.Error())
	case errors.As(err, &statusErr), errors.As(err, &urlErr):
		LoggerFromCtx(c.UserContext()).Error("camera backend failure", "path", c.Path(), "error", err)
		return errBadGateway(c, err.Error())
	}

	if verrs, ok := domain.AsValidationErrors(err); ok {
		return errValidation(c, verrs, "")
	}

	LoggerFromCtx(c.UserContext()).Error("request failed", "path", c.Path(), "error", err)
	return errInternal(c, err.Error())
}

func candidatePrefix(i int) string {
	return "candidates[" + strconv.Itoa(i) + "]."
}
