package middleware

import (
	"context"
	"strings"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// Profiling attaches route labels to the request so CPU profiles can be
// sliced per endpoint. Unmatched routes and /health are left unlabelled.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelMethod:     c.Request.Method,
			telemetry.ProfilingLabelRoute:      route,
			telemetry.ProfilingLabelController: controllerFromRoute(route),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// controllerFromRoute returns the first resource segment after the version,
// e.g. "/api/v1/estates/:id/entries" gives "estates"
func controllerFromRoute(route string) string {
	parts := strings.Split(strings.Trim(route, "/"), "/")
	for i, part := range parts {
		if part == "api" {
			if i+2 < len(parts) {
				return parts[i+2]
			}
			return ""
		}
	}
	if len(parts) > 0 && !strings.HasPrefix(parts[0], ":") {
		return parts[0]
	}
	return ""
}
