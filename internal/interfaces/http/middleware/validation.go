package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// maxPlotLength bounds a single plot identifier
const maxPlotLength = 50

var setupValidatorOnce sync.Once

// SetupValidator names fields after their json (or form) tag in errors and
// registers the "plot" tag. It is safe to call more than once.
func SetupValidator() {
	setupValidatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("plot", validPlot)
	})
}

func fieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
	}
	return name
}

// validPlot accepts a plot identifier such as "A12" or "Block 4/7". Commas
// and semicolons separate plots in imports and on receipts, so they cannot
// appear inside one. Surrounding blanks are trimmed later.
func validPlot(fl validator.FieldLevel) bool {
	plot := strings.TrimSpace(fl.Field().String())
	if utf8.RuneCountInString(plot) > maxPlotLength {
		return false
	}
	return !strings.ContainsFunc(plot, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsControl(r)
	})
}

// FormatValidationErrors lists each failed field of err in a validation
// error body
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details = make([]dto.ValidationDetail, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
				Code:    e.Tag(),
			})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError answers 400 with the field errors of err
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, getRequestID(c)))
}

func getValidationMessage(e validator.FieldError) string {
	unit := ""
	if e.Kind() == reflect.String {
		unit = " characters"
	}
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "uuid":
		return "Invalid UUID format"
	case "min":
		if e.Kind() == reflect.Slice {
			return "Must contain at least " + e.Param() + " item(s)"
		}
		return "Must be at least " + e.Param() + unit
	case "max":
		return "Must be at most " + e.Param() + unit
	case "oneof":
		return "Must be one of: " + e.Param()
	case "plot":
		return "Plot numbers are at most 50 characters and cannot contain ',' or ';'"
	default:
		return "Invalid value"
	}
}
