// Package docs registers the OpenAPI description served under /swagger.
// swagger.json is derived from the godoc annotations on the HTTP handlers.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag/v2"
)

//go:embed swagger.json
var doc string

// SwaggerInfo holds the exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Property Flow Organizer API",
	Description:      "Estate entries, payment receipts and invoices for real-estate sales",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  doc,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
