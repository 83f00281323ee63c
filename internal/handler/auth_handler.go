package handler

import (
	"net/http"
	"time"

	"backoffice-service/internal/model"
	"backoffice-service/pkg/database"
	"backoffice-service/pkg/jwtutil"
	"backoffice-service/pkg/logger"
	"backoffice-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// Login authenticates a user by username/password and issues a bearer token
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Username == "" || req.Password == "" {
		prometheus.RecordAuthError("incomplete_login")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	if err := database.GetDB().Where("username = ?", req.Username).First(&user).Error; err != nil {
		log.Warn("Login failed: user not found", zap.String("username", req.Username))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if !user.IsActive {
		log.Warn("Login failed: user inactive", zap.String("username", req.Username))
		prometheus.RecordAuthError("inactive_user")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Login failed: wrong password", zap.String("username", req.Username))
		prometheus.RecordAuthError("login_failure")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.ID, user.Username, user.Email)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in", zap.String("username", user.Username), zap.Uint("user_id", user.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user": echo.Map{
			"id":        user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"full_name": user.FullName,
		},
	})
}

// Logout acknowledges session termination. Tokens are stateless, so the
// client discards the bearer token on its side.
func Logout(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// CompanySignup provisions a new tenant: the company, its owner user, the
// owner's membership link, a full permission grant and a default preference
// record, all inside one transaction.
func CompanySignup(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.SignupCounter.Inc()

	var req struct {
		CompanyName     string `json:"company_name" form:"company_name"`
		CompanyEmail    string `json:"company_email" form:"company_email"`
		CompanyPhone    string `json:"company_phone" form:"company_phone"`
		CNPJ            string `json:"cnpj" form:"cnpj"`
		AdminName       string `json:"admin_name" form:"admin_name"`
		AdminEmail      string `json:"admin_email" form:"admin_email"`
		Username        string `json:"username" form:"username"`
		Password        string `json:"password" form:"password"`
		PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse signup request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	errs := map[string]string{}
	if req.CompanyName == "" {
		errs["company_name"] = "company name is required"
	}
	if req.CompanyEmail == "" {
		errs["company_email"] = "company email is required"
	}
	if req.AdminName == "" {
		errs["admin_name"] = "your name is required"
	}
	if req.AdminEmail == "" {
		errs["admin_email"] = "your email is required"
	}
	if req.Username == "" {
		errs["username"] = "username is required"
	}
	if len(req.Password) < minPasswordLength {
		errs["password"] = "password must be at least 6 characters"
	} else if req.Password != req.PasswordConfirm {
		errs["password_confirm"] = "passwords do not match"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	db := database.GetDB()
	defer prometheus.TrackDBOperation("query")(time.Now())

	var count int64
	db.Model(&model.User{}).Where("username = ?", req.Username).Count(&count)
	if count > 0 {
		errs["username"] = "this username is already taken"
	}
	db.Model(&model.User{}).Where("email = ?", req.AdminEmail).Count(&count)
	if count > 0 {
		errs["admin_email"] = "a user with this email already exists"
	}
	db.Model(&model.Company{}).Where("email = ?", req.CompanyEmail).Count(&count)
	if count > 0 {
		errs["company_email"] = "a company with this email already exists"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	company := model.Company{
		Name:  req.CompanyName,
		Email: req.CompanyEmail,
		Phone: req.CompanyPhone,
		CNPJ:  req.CNPJ,
	}
	user := model.User{
		Username: req.Username,
		Email:    req.AdminEmail,
		FullName: req.AdminName,
		Password: string(hashedPassword),
		IsActive: true,
		IsStaff:  true,
	}

	// All five rows are created together or not at all.
	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		link := model.UserCompany{
			UserID:    user.ID,
			CompanyID: company.ID,
			IsOwner:   true,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		perm := model.UserPermission{
			UserCompanyID:     link.ID,
			CanManageContacts: true,
			CanManageUsers:    true,
			CanManageProducts: true,
			CanManageSectors:  true,
		}
		if err := tx.Create(&perm).Error; err != nil {
			return err
		}
		pref := model.UserPreference{
			UserID: user.ID,
			Theme:  model.ThemeDark,
		}
		return tx.Create(&pref).Error
	})
	if err != nil {
		log.Error("Company signup transaction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	log.Info("Company registered",
		zap.String("company", company.Name),
		zap.Uint("company_id", company.ID),
		zap.String("owner", user.Username))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "company registered successfully",
		"company": echo.Map{"id": company.ID, "name": company.Name},
		"user":    echo.Map{"id": user.ID, "username": user.Username},
	})
}
