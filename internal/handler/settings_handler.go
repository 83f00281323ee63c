package handler

import (
	"errors"
	"net/http"
	"time"

	"backoffice-service/internal/middleware"
	"backoffice-service/internal/model"
	"backoffice-service/internal/storage"
	"backoffice-service/pkg/database"
	"backoffice-service/pkg/logger"
	"backoffice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SettingsRequest carries the combined company-profile and preference form
type SettingsRequest struct {
	Name  string `json:"name" form:"name"`
	CNPJ  string `json:"cnpj" form:"cnpj"`
	Email string `json:"email" form:"email"`
	Phone string `json:"phone" form:"phone"`

	CEP      string `json:"cep" form:"cep"`
	Address  string `json:"address" form:"address"`
	Number   string `json:"number" form:"number"`
	District string `json:"district" form:"district"`
	City     string `json:"city" form:"city"`
	UF       string `json:"uf" form:"uf"`

	WhatsappDefaultMessage string `json:"whatsapp_default_message" form:"whatsapp_default_message"`

	Theme string `json:"theme" form:"theme"`
}

// loadOrCreatePreference fetches a user's preference row, creating the
// dark-theme default on first access
func loadOrCreatePreference(db *gorm.DB, userID uint) (*model.UserPreference, error) {
	var pref model.UserPreference
	err := db.Where("user_id = ?", userID).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pref = model.UserPreference{UserID: userID, Theme: model.ThemeDark}
		err = db.Create(&pref).Error
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// GetSettings returns the acting company's profile and the caller's preferences
func GetSettings(c echo.Context) error {
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
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve settings"})
	}

	pref, err := loadOrCreatePreference(db, ident.User.ID)
	if err != nil {
		log.Error("Failed to load user preference", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve settings"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"company": company,
		"theme":   pref.Theme,
	})
}

// UpdateSettings persists company profile, optional logo upload and the
// caller's theme preference. Both sub-forms must validate before either
// one is written.
func UpdateSettings(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("settings", "update")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse settings request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	errs := map[string]string{}
	if req.Name == "" {
		errs["name"] = "company name is required"
	}
	if req.Email == "" {
		errs["email"] = "company email is required"
	}
	if req.Theme != "" && !model.ValidTheme(req.Theme) {
		errs["theme"] = "theme must be dark or light"
	}

	db := database.GetDB()
	if req.Email != "" {
		var count int64
		db.Model(&model.Company{}).
			Where("email = ? AND id <> ?", req.Email, ident.CompanyID()).
			Count(&count)
		if count > 0 {
			errs["email"] = "a company with this email already exists"
		}
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	var company model.Company
	if err := db.First(&company, ident.CompanyID()).Error; err != nil {
		log.Error("Failed to load company", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update settings"})
	}

	// The logo is stored before the transaction so a failed write leaves the
	// stored profile untouched.
	if file, err := c.FormFile("logo"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			log.Error("Failed to open uploaded logo", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"logo": "could not read uploaded file"}})
		}
		defer src.Close()

		relPath, err := storage.Get().SaveLogo(ident.CompanyID(), file.Filename, file.Size, src)
		if err != nil {
			log.Warn("Logo upload rejected", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"errors": map[string]string{"logo": err.Error()}})
		}
		company.LogoPath = relPath
	}

	company.Name = req.Name
	company.CNPJ = req.CNPJ
	company.Email = req.Email
	company.Phone = req.Phone
	company.CEP = req.CEP
	company.Address = req.Address
	company.Number = req.Number
	company.District = req.District
	company.City = req.City
	company.UF = req.UF
	company.WhatsappDefaultMessage = req.WhatsappDefaultMessage

	pref, err := loadOrCreatePreference(db, ident.User.ID)
	if err != nil {
		log.Error("Failed to load user preference", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update settings"})
	}
	if req.Theme != "" {
		pref.Theme = req.Theme
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&company).Error; err != nil {
			return err
		}
		return tx.Save(pref).Error
	})
	if err != nil {
		log.Error("Settings update transaction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update settings"})
	}

	log.Info("Settings updated",
		zap.Uint("company_id", company.ID),
		zap.Uint("user_id", ident.User.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"company": company,
		"theme":   pref.Theme,
	})
}
