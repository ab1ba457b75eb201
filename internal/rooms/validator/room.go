package validator

import (
	"errors"
	"fmt"
	"strings"

	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type RoomValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRoomValidator(log *logger.Logger) *RoomValidator {
	v := validator.New()

	if err := v.RegisterValidation("equipment_item", validateEquipmentItem); err != nil {
		log.Fatal("Failed to register 'equipment_item' validator",
			"error", err,
		)
	}
	v.RegisterStructValidation(validateRoomUpdate, model.RoomUpdate{})

	log.Debug("Room validator initialized successfully")

	return &RoomValidator{
		validate: v,
		logger:   log,
	}
}

// validateEquipmentItem rejects items that would be split again when the list is
// written back as a delimited string.
func validateEquipmentItem(fl validator.FieldLevel) bool {
	item := fl.Field().String()
	return !strings.ContainsAny(item, ";,#")
}

func validateRoomUpdate(sl validator.StructLevel) {
	update := sl.Current().Interface().(model.RoomUpdate)
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		sl.ReportError(update.Title, "Title", "Title", "required", "")
	}
}

func (v *RoomValidator) Validate(room *model.Room) error {
	if err := v.validate.Struct(room); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if errs := v.validateEquipment(room.Equipment); len(errs) > 0 {
		return errs
	}

	return nil
}

func (v *RoomValidator) ValidateUpdate(update *model.RoomUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Equipment != nil {
		if errs := v.validateEquipment(*update.Equipment); len(errs) > 0 {
			return errs
		}
	}

	return nil
}

func (v *RoomValidator) validateEquipment(items []string) ValidationErrors {
	var errs ValidationErrors
	for i, item := range items {
		if err := v.validate.Var(item, "equipment_item"); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("Equipment[%d]", i),
				Message: "equipment items cannot contain ';', ',' or '#'",
			})
		}
	}
	return errs
}

func (v *RoomValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "hexcolor":
			message = fmt.Sprintf("%s must be a hex color (e.g., #1f6feb)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
