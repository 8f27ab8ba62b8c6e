package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

var validate = validator.New()

// ValidateStruct validates a struct's `validate` tags and returns
// formatted errors.
func ValidateStruct(s interface{}) []ValidationError {
	var errs []ValidationError

	err := validate.Struct(s)
	if err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: getErrorMessage(fe),
			})
		}
	}

	return errs
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "min":
		return err.Field() + " must be at least " + err.Param() + " characters"
	case "max":
		return err.Field() + " must be at most " + err.Param() + " characters"
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "lte":
		return err.Field() + " must be less than or equal to " + err.Param()
	case "gt":
		return err.Field() + " must be greater than " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}

// FailValidation sends field-level validation errors.
func FailValidation(c *gin.Context, errs []ValidationError) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": ErrorBody{Code: "VALIDATION", Message: "validation failed"},
		"details": errs,
	})
}
