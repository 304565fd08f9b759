package http

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/screentime-labs/tracker/backend/internal/common/constants"
	"github.com/screentime-labs/tracker/backend/internal/common/httpmetrics"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
)

// BuildBaseHandler wraps the router with the shared middleware stack. CORS
// sits outermost so preflight requests from the browser extension never hit
// the rest of the chain.
func BuildBaseHandler(log *logger.Logger, allowedOrigins []string, handler http.Handler) http.Handler {
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	metrics := httpmetrics.New()
	recovery := RecoveryMiddleware(log)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)

	return corsMiddleware.Handler(
		SecurityHeadersMiddleware(
			recovery(
				TraceIDMiddleware(
					maxRequestSize(
						metrics.Wrap(handler),
					),
				),
			),
		),
	)
}
