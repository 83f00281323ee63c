package handler

import (
	"errors"
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
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserCreateRequest carries the fields for provisioning a staff user
type UserCreateRequest struct {
	FullName string `json:"full_name" form:"full_name"`
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	IsActive bool   `json:"is_active" form:"is_active"`
	IsStaff  bool   `json:"is_staff" form:"is_staff"`

	CanManageContacts bool `json:"can_manage_contacts" form:"can_manage_contacts"`
	CanManageUsers    bool `json:"can_manage_users" form:"can_manage_users"`
	CanManageProducts bool `json:"can_manage_products" form:"can_manage_products"`
	CanManageSectors  bool `json:"can_manage_sectors" form:"can_manage_sectors"`

	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
}

// UserUpdateRequest carries the fields for editing a staff user. The
// password pair is optional: empty means keep the current password.
type UserUpdateRequest struct {
	FullName string `json:"full_name" form:"full_name"`
	Email    string `json:"email" form:"email"`
	IsActive bool   `json:"is_active" form:"is_active"`
	IsStaff  bool   `json:"is_staff" form:"is_staff"`

	CanManageContacts bool `json:"can_manage_contacts" form:"can_manage_contacts"`
	CanManageUsers    bool `json:"can_manage_users" form:"can_manage_users"`
	CanManageProducts bool `json:"can_manage_products" form:"can_manage_products"`
	CanManageSectors  bool `json:"can_manage_sectors" form:"can_manage_sectors"`

	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
}

// emailTakenInCompany checks email uniqueness among the company's members.
// Uniqueness is scoped per company on purpose: the same address may exist
// in another company. excludeUserID skips the member being edited.
func emailTakenInCompany(db *gorm.DB, companyID uint, email string, excludeUserID uint) bool {
	query := db.Model(&model.UserCompany{}).
		Joins("JOIN users ON users.id = user_companies.user_id").
		Where("user_companies.company_id = ? AND users.email = ?", companyID, email)
	if excludeUserID != 0 {
		query = query.Where("users.id <> ?", excludeUserID)
	}
	var count int64
	query.Count(&count)
	return count > 0
}

func findUserLink(c echo.Context, ident *middleware.Identity) (*model.UserCompany, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid user ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var link model.UserCompany
	if err := database.GetDB().Where("id = ? AND company_id = ?", id, ident.CompanyID()).First(&link).Error; err != nil {
		logger.FromContext(c).Warn("User link not found for company",
			zap.Uint64("link_id", id),
			zap.Uint("company_id", ident.CompanyID()))
		return nil, echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return &link, nil
}

// loadOrCreatePermission fetches the permission row for a membership,
// creating it with defaults when the member predates the permission table
func loadOrCreatePermission(db *gorm.DB, linkID uint) (*model.UserPermission, error) {
	var perm model.UserPermission
	err := db.Where("user_company_id = ?", linkID).First(&perm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		perm = model.UserPermission{
			UserCompanyID:     linkID,
			CanManageContacts: true,
		}
		err = db.Create(&perm).Error
	}
	if err != nil {
		return nil, err
	}
	return &perm, nil
}

func memberResponse(link *model.UserCompany, perm *model.UserPermission) echo.Map {
	resp := echo.Map{
		"id":        link.ID,
		"is_owner":  link.IsOwner,
		"user_id":   link.UserID,
		"username":  link.User.Username,
		"full_name": link.User.FullName,
		"email":     link.User.Email,
		"is_active": link.User.IsActive,
		"is_staff":  link.User.IsStaff,
	}
	if perm != nil {
		resp["can_manage_contacts"] = perm.CanManageContacts
		resp["can_manage_users"] = perm.CanManageUsers
		resp["can_manage_products"] = perm.CanManageProducts
		resp["can_manage_sectors"] = perm.CanManageSectors
	}
	return resp
}

// ListUsers returns the acting company's members
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("user", "list")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var links []model.UserCompany
	if err := database.GetDB().Preload("User").Where("company_id = ?", ident.CompanyID()).Find(&links).Error; err != nil {
		log.Error("Failed to list company users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	items := make([]echo.Map, 0, len(links))
	for i := range links {
		items = append(items, memberResponse(&links[i], nil))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": items})
}

// CreateUser provisions a staff member of the acting company
func CreateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("user", "create")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req UserCreateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	errs := map[string]string{}
	if req.FullName == "" {
		errs["full_name"] = "full name is required"
	}
	if req.Email == "" {
		errs["email"] = "email is required"
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
	if req.Email != "" && emailTakenInCompany(db, ident.CompanyID(), req.Email, 0) {
		errs["email"] = "a user with this email already exists in this company"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	user := model.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: string(hashedPassword),
		IsActive: req.IsActive,
		IsStaff:  req.IsStaff,
	}
	var link model.UserCompany

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		link = model.UserCompany{
			UserID:    user.ID,
			CompanyID: ident.CompanyID(),
			IsOwner:   false,
		}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		perm := model.UserPermission{
			UserCompanyID:     link.ID,
			CanManageContacts: req.CanManageContacts,
			CanManageUsers:    req.CanManageUsers,
			CanManageProducts: req.CanManageProducts,
			CanManageSectors:  req.CanManageSectors,
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
		log.Error("User creation transaction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "user creation failed"})
	}

	log.Info("Staff user created",
		zap.String("username", user.Username),
		zap.Uint("user_id", user.ID),
		zap.Uint("company_id", ident.CompanyID()))

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user created successfully",
		"user":    echo.Map{"id": user.ID, "username": user.Username, "link_id": link.ID},
	})
}

// GetUserEdit returns one member with their capability flags for the edit form
func GetUserEdit(c echo.Context) error {
	log := logger.FromContext(c)

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	link, err := findUserLink(c, ident)
	if err != nil {
		return err
	}

	db := database.GetDB()
	var user model.User
	if err := db.First(&user, link.UserID).Error; err != nil {
		log.Error("Failed to load member user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}
	link.User = user

	perm, err := loadOrCreatePermission(db, link.ID)
	if err != nil {
		log.Error("Failed to load member permissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}

	return c.JSON(http.StatusOK, memberResponse(link, perm))
}

// UpdateUser persists profile, credential and capability changes for a member.
// The owner's capability flags are forced to all-true regardless of input.
func UpdateUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("user", "update")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	link, err := findUserLink(c, ident)
	if err != nil {
		return err
	}

	var req UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse user request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	errs := map[string]string{}
	if req.FullName == "" {
		errs["full_name"] = "full name is required"
	}
	if req.Email == "" {
		errs["email"] = "email is required"
	}
	if req.Password != "" || req.PasswordConfirm != "" {
		if req.Password != req.PasswordConfirm {
			errs["password_confirm"] = "passwords do not match"
		} else if len(req.Password) < minPasswordLength {
			errs["password"] = "password must be at least 6 characters"
		}
	}

	db := database.GetDB()
	if req.Email != "" && emailTakenInCompany(db, ident.CompanyID(), req.Email, link.UserID) {
		errs["email"] = "a user with this email already exists in this company"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	var user model.User
	if err := db.First(&user, link.UserID).Error; err != nil {
		log.Error("Failed to load member user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	user.FullName = req.FullName
	user.Email = req.Email
	user.IsActive = req.IsActive
	user.IsStaff = req.IsStaff
	if req.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
		}
		user.Password = string(hashedPassword)
	}

	perm, err := loadOrCreatePermission(db, link.ID)
	if err != nil {
		log.Error("Failed to load member permissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	// The owner can never be downgraded.
	if link.IsOwner {
		perm.CanManageContacts = true
		perm.CanManageUsers = true
		perm.CanManageProducts = true
		perm.CanManageSectors = true
	} else {
		perm.CanManageContacts = req.CanManageContacts
		perm.CanManageUsers = req.CanManageUsers
		perm.CanManageProducts = req.CanManageProducts
		perm.CanManageSectors = req.CanManageSectors
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Save(perm).Error
	})
	if err != nil {
		log.Error("User update transaction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}

	log.Info("Staff user updated",
		zap.String("username", user.Username),
		zap.Uint("user_id", user.ID),
		zap.Uint("company_id", ident.CompanyID()))

	link.User = user
	return c.JSON(http.StatusOK, memberResponse(link, perm))
}

// checkDeleteGuards applies the business rules protecting members from
// removal: the owner can never be deleted, and nobody deletes themself
func checkDeleteGuards(ident *middleware.Identity, link *model.UserCompany) error {
	if link.IsOwner {
		return echo.NewHTTPError(http.StatusConflict, "cannot delete the company owner")
	}
	if link.UserID == ident.User.ID {
		return echo.NewHTTPError(http.StatusConflict, "cannot delete your own account")
	}
	return nil
}

// GetUserDelete returns the member about to be removed so the client can
// ask for confirmation
func GetUserDelete(c echo.Context) error {
	log := logger.FromContext(c)

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	link, err := findUserLink(c, ident)
	if err != nil {
		return err
	}
	if err := checkDeleteGuards(ident, link); err != nil {
		return err
	}

	var user model.User
	if err := database.GetDB().First(&user, link.UserID).Error; err != nil {
		log.Error("Failed to load member user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve user"})
	}
	link.User = user

	return c.JSON(http.StatusOK, echo.Map{
		"user":    memberResponse(link, nil),
		"message": "confirm deletion",
	})
}

// DeleteUser removes a member and everything hanging off them once confirmed
func DeleteUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("user", "delete")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	link, err := findUserLink(c, ident)
	if err != nil {
		return err
	}
	if err := checkDeleteGuards(ident, link); err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("transaction")(time.Now())
	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_company_id = ?", link.ID).Delete(&model.UserPermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", link.UserID).Delete(&model.UserPreference{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.UserCompany{}, link.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, link.UserID).Error
	})
	if err != nil {
		log.Error("User deletion transaction failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}

	log.Info("Staff user deleted",
		zap.Uint("user_id", link.UserID),
		zap.Uint("company_id", ident.CompanyID()))

	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
