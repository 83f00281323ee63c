package handler

import (
	"net/http"
	"strconv"
	"time"

	"backoffice-service/internal/middleware"
	"backoffice-service/internal/model"
	"backoffice-service/pkg/database"
	"backoffice-service/pkg/logger"
	"backoffice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SectorRequest carries the submitted fields of a sector form
type SectorRequest struct {
	Name     string `json:"name" form:"name"`
	IsActive bool   `json:"is_active" form:"is_active"`
}

func (r *SectorRequest) validate() map[string]string {
	errs := map[string]string{}
	if r.Name == "" {
		errs["name"] = "sector name is required"
	}
	return errs
}

func findSector(c echo.Context, ident *middleware.Identity) (*model.Sector, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid sector ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var sector model.Sector
	if err := database.GetDB().Where("id = ? AND company_id = ?", id, ident.CompanyID()).First(&sector).Error; err != nil {
		logger.FromContext(c).Warn("Sector not found for company",
			zap.Uint64("sector_id", id),
			zap.Uint("company_id", ident.CompanyID()))
		return nil, echo.NewHTTPError(http.StatusNotFound, "sector not found")
	}
	return &sector, nil
}

// ListSectors returns the acting company's sectors
func ListSectors(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("sector", "list")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var sectors []model.Sector
	if err := database.GetDB().Where("company_id = ?", ident.CompanyID()).Order("name").Find(&sectors).Error; err != nil {
		log.Error("Failed to list sectors", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve sectors"})
	}

	return c.JSON(http.StatusOK, echo.Map{"sectors": sectors})
}

// CreateSector adds a sector to the acting company
func CreateSector(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("sector", "create")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req SectorRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse sector request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	sector := model.Sector{
		CompanyID: ident.CompanyID(),
		Name:      req.Name,
		IsActive:  req.IsActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&sector).Error; err != nil {
		log.Error("Failed to create sector", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create sector"})
	}

	log.Info("Sector created",
		zap.Uint("id", sector.ID),
		zap.String("name", sector.Name),
		zap.Uint("company_id", sector.CompanyID))

	return c.JSON(http.StatusCreated, sector)
}

// GetSectorEdit returns one sector for the edit form
func GetSectorEdit(c echo.Context) error {
	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	sector, err := findSector(c, ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sector)
}

// UpdateSector persists the submitted sector fields
func UpdateSector(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("sector", "update")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	sector, err := findSector(c, ident)
	if err != nil {
		return err
	}

	var req SectorRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse sector request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	sector.Name = req.Name
	sector.IsActive = req.IsActive

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(sector).Error; err != nil {
		log.Error("Failed to update sector", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update sector"})
	}

	log.Info("Sector updated", zap.Uint("id", sector.ID), zap.Uint("company_id", sector.CompanyID))
	return c.JSON(http.StatusOK, sector)
}

// GetSectorDelete returns the record about to be removed so the client can
// ask for confirmation
func GetSectorDelete(c echo.Context) error {
	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	sector, err := findSector(c, ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"sector":  sector,
		"message": "confirm deletion",
	})
}

// DeleteSector removes a sector once confirmed
func DeleteSector(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("sector", "delete")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	sector, err := findSector(c, ident)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := database.GetDB().Delete(sector).Error; err != nil {
		log.Error("Failed to delete sector", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete sector"})
	}

	log.Info("Sector deleted", zap.Uint("id", sector.ID), zap.Uint("company_id", sector.CompanyID))
	return c.JSON(http.StatusOK, echo.Map{"message": "sector deleted"})
}
