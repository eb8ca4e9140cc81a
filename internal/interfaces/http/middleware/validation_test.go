package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValidationErrors(t *testing.T) {
	type clientInput struct {
		Name  string `json:"name" binding:"required,max=10"`
		Email string `json:"email" binding:"omitempty,email"`
	}

	SetupValidator()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID())
	router.POST("/clients", func(c *gin.Context) {
		var req clientInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	t.Run("lists invalid fields by json name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{"name": "", "email": "invalid"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDKey, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-42", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Code
		}
		assert.Equal(t, "required", fields["name"])
		assert.Equal(t, "email", fields["email"])
	})

	t.Run("accepts valid input", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{"name": "Ada"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestPlotValidation(t *testing.T) {
	type entryInput struct {
		PlotNumbers []string `json:"plot_numbers" binding:"omitempty,dive,plot"`
	}

	SetupValidator()
	router := gin.New()
	router.POST("/entries", func(c *gin.Context) {
		var req entryInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"no plots", `{}`, http.StatusOK},
		{"plain identifiers", `{"plot_numbers": ["A12", " Block 4/7 "]}`, http.StatusOK},
		{"comma inside a plot", `{"plot_numbers": ["A1, A2"]}`, http.StatusBadRequest},
		{"semicolon inside a plot", `{"plot_numbers": ["A1;A2"]}`, http.StatusBadRequest},
		{"too long", `{"plot_numbers": ["` + strings.Repeat("9", 51) + `"]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/entries", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusBadRequest {
				assert.Contains(t, w.Body.String(), `"code":"plot"`)
			}
		})
	}
}

func TestGetValidationMessage(t *testing.T) {
	type input struct {
		Required string   `validate:"required"`
		Min      string   `validate:"min=5"`
		Max      string   `validate:"max=3"`
		UUID     string   `validate:"uuid"`
		OneOf    string   `validate:"oneof=Paid Partial"`
		Plots    []string `validate:"min=1"`
	}

	err := validator.New().Struct(input{Min: "ab", Max: "abcdef", UUID: "nope", OneOf: "Overdue", Plots: []string{}})
	require.Error(t, err)

	messages := map[string]string{}
	for _, e := range err.(validator.ValidationErrors) {
		messages[e.Field()] = getValidationMessage(e)
	}

	assert.Equal(t, "This field is required", messages["Required"])
	assert.Equal(t, "Must be at least 5 characters", messages["Min"])
	assert.Equal(t, "Must be at most 3 characters", messages["Max"])
	assert.Equal(t, "Invalid UUID format", messages["UUID"])
	assert.Equal(t, "Must be one of: Paid Partial", messages["OneOf"])
	assert.Equal(t, "Must contain at least 1 item(s)", messages["Plots"])
}
