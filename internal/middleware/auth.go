package middleware

import (
	"errors"
	"net/http"
	"strings"

	"backoffice-service/internal/model"
	"backoffice-service/pkg/database"
	"backoffice-service/pkg/jwtutil"
	"backoffice-service/pkg/logger"
	"backoffice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const identityKey = "identity"

// Identity is the fully resolved caller for one request: the user row, the
// company link and the permission record (nil when none exists yet). It is
// rebuilt from the database on every request so permission changes take
// effect immediately.
type Identity struct {
	User       model.User
	Link       model.UserCompany
	Permission *model.UserPermission
}

// CompanyID returns the acting company of this request
func (i *Identity) CompanyID() uint {
	return i.Link.CompanyID
}

// Can reports whether this identity holds the given capability.
// Ownership short-circuits before the permission record is consulted.
func (i *Identity) Can(capability model.Capability) bool {
	if i.Link.IsOwner {
		return true
	}
	return i.Permission.Allows(capability)
}

// IdentityFromContext retrieves the identity stored by Authenticate
func IdentityFromContext(c echo.Context) (*Identity, bool) {
	ident, ok := c.Get(identityKey).(*Identity)
	return ident, ok
}

// Authenticate validates the bearer token and loads the caller's user,
// company link and permission record into the request context
func Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		db := database.GetDB()

		var user model.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			log.Warn("Token references unknown user", zap.Uint("user_id", claims.UserID))
			prometheus.RecordAuthError("unknown_user")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}
		if !user.IsActive {
			log.Warn("Inactive user attempted access", zap.String("username", user.Username))
			prometheus.RecordAuthError("inactive_user")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account is disabled"})
		}

		var link model.UserCompany
		if err := db.Where("user_id = ?", user.ID).First(&link).Error; err != nil {
			log.Warn("User has no company membership", zap.Uint("user_id", user.ID))
			prometheus.RecordAuthError("no_membership")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "no company membership"})
		}

		// A membership without a permission record has no capabilities
		// (unless it is the owner link).
		var perm *model.UserPermission
		var stored model.UserPermission
		err = db.Where("user_company_id = ?", link.ID).First(&stored).Error
		switch {
		case err == nil:
			perm = &stored
		case errors.Is(err, gorm.ErrRecordNotFound):
			perm = nil
		default:
			log.Error("Failed to load permission record", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}

		c.Set(identityKey, &Identity{User: user, Link: link, Permission: perm})
		c.Set("user_id", user.ID)

		return next(c)
	}
}
