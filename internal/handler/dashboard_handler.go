package handler

import (
	"net/http"
	"time"

	"backoffice-service/internal/middleware"
	"backoffice-service/internal/model"
	"backoffice-service/pkg/database"
	"backoffice-service/pkg/logger"
	"backoffice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Dashboard returns the landing payload: who the caller is, which company
// they act for, and what the navigation may show them
func Dashboard(c echo.Context) error {
	log := logger.FromContext(c)

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("query")(time.Now())

	var company model.Company
	if err := db.First(&company, ident.CompanyID()).Error; err != nil {
		log.Error("Failed to load company", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve dashboard"})
	}

	pref, err := loadOrCreatePreference(db, ident.User.ID)
	if err != nil {
		log.Error("Failed to load user preference", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve dashboard"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":        ident.User.ID,
			"username":  ident.User.Username,
			"full_name": ident.User.FullName,
			"email":     ident.User.Email,
		},
		"company": echo.Map{
			"id":        company.ID,
			"name":      company.Name,
			"logo_path": company.LogoPath,
		},
		"is_owner": ident.Link.IsOwner,
		"capabilities": echo.Map{
			"contacts": ident.Can(model.CapabilityContacts),
			"users":    ident.Can(model.CapabilityUsers),
			"products": ident.Can(model.CapabilityProducts),
			"sectors":  ident.Can(model.CapabilitySectors),
		},
		"theme": pref.Theme,
	})
}
