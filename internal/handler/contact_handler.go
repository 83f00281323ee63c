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

// ContactRequest carries the submitted fields of a contact form
type ContactRequest struct {
	Document    string `json:"document" form:"document"`
	DisplayName string `json:"display_name" form:"display_name"`
	LegalName   string `json:"legal_name" form:"legal_name"`
	Phone       string `json:"phone" form:"phone"`
	Email       string `json:"email" form:"email"`
	IsActive    bool   `json:"is_active" form:"is_active"`

	CEP      string `json:"cep" form:"cep"`
	Address  string `json:"address" form:"address"`
	Number   string `json:"number" form:"number"`
	District string `json:"district" form:"district"`
	City     string `json:"city" form:"city"`
	UF       string `json:"uf" form:"uf"`

	IsClient   bool `json:"is_client" form:"is_client"`
	IsSupplier bool `json:"is_supplier" form:"is_supplier"`
	IsPartner  bool `json:"is_partner" form:"is_partner"`
	IsEmployee bool `json:"is_employee" form:"is_employee"`
	IsOther    bool `json:"is_other" form:"is_other"`
	IsSeller   bool `json:"is_seller" form:"is_seller"`

	Commission *float64 `json:"commission" form:"commission"`
	Notes      string   `json:"notes" form:"notes"`
}

func (r *ContactRequest) validate() map[string]string {
	errs := map[string]string{}
	if r.DisplayName == "" {
		errs["display_name"] = "display name is required"
	}
	return errs
}

func (r *ContactRequest) apply(contact *model.Contact) {
	contact.Document = r.Document
	contact.DisplayName = r.DisplayName
	contact.LegalName = r.LegalName
	contact.Phone = r.Phone
	contact.Email = r.Email
	contact.IsActive = r.IsActive
	contact.CEP = r.CEP
	contact.Address = r.Address
	contact.Number = r.Number
	contact.District = r.District
	contact.City = r.City
	contact.UF = r.UF
	contact.IsClient = r.IsClient
	contact.IsSupplier = r.IsSupplier
	contact.IsPartner = r.IsPartner
	contact.IsEmployee = r.IsEmployee
	contact.IsOther = r.IsOther
	contact.IsSeller = r.IsSeller
	contact.Commission = r.Commission
	contact.Notes = r.Notes
}

// findContact fetches a contact constrained by both id and acting company.
// A cross-company id looks exactly like a missing one.
func findContact(c echo.Context, ident *middleware.Identity) (*model.Contact, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid contact ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var contact model.Contact
	if err := database.GetDB().Where("id = ? AND company_id = ?", id, ident.CompanyID()).First(&contact).Error; err != nil {
		logger.FromContext(c).Warn("Contact not found for company",
			zap.Uint64("contact_id", id),
			zap.Uint("company_id", ident.CompanyID()))
		return nil, echo.NewHTTPError(http.StatusNotFound, "contact not found")
	}
	return &contact, nil
}

// ListContacts returns the acting company's contacts
func ListContacts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("contact", "list")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var contacts []model.Contact
	if err := database.GetDB().Where("company_id = ?", ident.CompanyID()).Order("display_name").Find(&contacts).Error; err != nil {
		log.Error("Failed to list contacts", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve contacts"})
	}

	return c.JSON(http.StatusOK, echo.Map{"contacts": contacts})
}

// CreateContact adds a contact to the acting company
func CreateContact(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("contact", "create")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse contact request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	contact := model.Contact{CompanyID: ident.CompanyID()}
	req.apply(&contact)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&contact).Error; err != nil {
		log.Error("Failed to create contact", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create contact"})
	}

	log.Info("Contact created",
		zap.Uint("id", contact.ID),
		zap.String("display_name", contact.DisplayName),
		zap.Uint("company_id", contact.CompanyID))

	return c.JSON(http.StatusCreated, contact)
}

// GetContactEdit returns one contact for the edit form
func GetContactEdit(c echo.Context) error {
	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	contact, err := findContact(c, ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, contact)
}

// UpdateContact persists the submitted contact fields
func UpdateContact(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("contact", "update")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	contact, err := findContact(c, ident)
	if err != nil {
		return err
	}

	var req ContactRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse contact request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	req.apply(contact)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(contact).Error; err != nil {
		log.Error("Failed to update contact", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update contact"})
	}

	log.Info("Contact updated", zap.Uint("id", contact.ID), zap.Uint("company_id", contact.CompanyID))
	return c.JSON(http.StatusOK, contact)
}

// GetContactDelete returns the record about to be removed so the client can
// ask for confirmation
func GetContactDelete(c echo.Context) error {
	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	contact, err := findContact(c, ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"contact": contact,
		"message": "confirm deletion",
	})
}

// DeleteContact removes a contact once confirmed
func DeleteContact(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("contact", "delete")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	contact, err := findContact(c, ident)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := database.GetDB().Delete(contact).Error; err != nil {
		log.Error("Failed to delete contact", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete contact"})
	}

	log.Info("Contact deleted", zap.Uint("id", contact.ID), zap.Uint("company_id", contact.CompanyID))
	return c.JSON(http.StatusOK, echo.Map{"message": "contact deleted"})
}
