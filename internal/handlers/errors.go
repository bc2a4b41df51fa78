package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/fftopup/internal/orders"
	"github.com/example/fftopup/internal/storage"
	"github.com/example/fftopup/internal/validation"
)

// ErrorHandler renders every error as {"success": false, "error": ...}.
// Field errors are added under "fields".
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	var fields validation.FieldErrors

	var fiberErr *fiber.Error
	var submitErr *orders.SubmissionError
	var fieldErr validation.FieldErrors

	switch {
	case errors.As(err, &fiberErr):
		code, message = fiberErr.Code, fiberErr.Message
	case errors.As(err, &submitErr):
		message, fields = submitErr.Message, submitErr.Fields
		switch submitErr.Kind {
		case orders.ErrKindValidation:
			code = fiber.StatusUnprocessableEntity
		case orders.ErrKindUpload:
			code = fiber.StatusBadGateway
		}
		if submitErr.Err != nil {
			log.Printf("[Orders] submission failed (%s): %v", submitErr.Kind, submitErr.Err)
		}
	case errors.As(err, &fieldErr):
		code, message, fields = fiber.StatusUnprocessableEntity, "Please fix the errors in the form", fieldErr
	case errors.Is(err, orders.ErrOfferNotFound):
		code, message = fiber.StatusNotFound, "Offer not found"
	case errors.Is(err, orders.ErrIllegalTransition):
		code, message = fiber.StatusConflict, err.Error()
	case errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrInvalidMode),
		errors.Is(err, orders.ErrUnknownKind),
		errors.Is(err, orders.ErrInvalidRole),
		errors.Is(err, storage.ErrInvalidPath):
		code, message = fiber.StatusBadRequest, err.Error()
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, storage.ErrNotFound):
		code, message = fiber.StatusNotFound, "not found"
	default:
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.Path(), err)
	}

	body := fiber.Map{"success": false, "error": message}
	if len(fields) > 0 {
		body["fields"] = fields
	}
	return c.Status(code).JSON(body)
}
