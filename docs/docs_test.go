package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag/v2"
)

func TestRegisteredDoc(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var spec struct {
		Swagger  string                    `json:"swagger"`
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &spec))

	assert.Equal(t, "2.0", spec.Swagger)
	assert.Equal(t, "/api/v1", spec.BasePath)
	assert.Contains(t, spec.Paths["/estates/{id}/entries/{entryId}/receipts"], "post")
	assert.Contains(t, spec.Paths["/invoices/export"], "get")
}
