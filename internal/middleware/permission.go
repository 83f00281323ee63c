package middleware

import (
	"net/http"

	"backoffice-service/internal/model"
	"backoffice-service/pkg/logger"
	"backoffice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequireCapability gates a route group behind one capability flag.
// The company owner always passes; everyone else needs the flag set true
// on their permission record.
func RequireCapability(capability model.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident, ok := IdentityFromContext(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			if !ident.Can(capability) {
				logger.FromContext(c).Warn("Capability denied",
					zap.String("username", ident.User.Username),
					zap.Uint("company_id", ident.CompanyID()),
					zap.String("capability", string(capability)))
				prometheus.RecordPermissionDenial(string(capability))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "you do not have permission to access this area"})
			}

			return next(c)
		}
	}
}
