package middleware

import (
	"net/http"

	"crm-service/pkg/config"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
)

// APIKeyMiddleware enforces the shared-secret header on protected routes.
// The key is a single static token compared against every request; there is
// no per-user identity. A missing or mismatched key is rejected with 401
// before any domain logic or store access runs.
func APIKeyMiddleware(cfg *config.AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			// Track authentication attempts
			prometheus.AuthAttemptsCounter.Inc()

			key := c.Request().Header.Get(cfg.Header)
			if key == "" {
				log.Warn("Missing API key")
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "invalid API key",
				})
			}

			if cfg.APIKey == "" || key != cfg.APIKey {
				log.Warn("Invalid API key")
				prometheus.AuthErrorsCounter.Inc()
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "invalid API key",
				})
			}

			prometheus.AuthSuccessCounter.Inc()
			return next(c)
		}
	}
}
