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

// ProductRequest carries the submitted fields of a product form
type ProductRequest struct {
	Name      string   `json:"name" form:"name"`
	Unit      string   `json:"unit" form:"unit"`
	Price     *float64 `json:"price" form:"price"`
	CostPrice *float64 `json:"cost_price" form:"cost_price"`
	IsActive  bool     `json:"is_active" form:"is_active"`
}

func (r *ProductRequest) validate() map[string]string {
	errs := map[string]string{}
	if r.Name == "" {
		errs["name"] = "product name is required"
	}
	if r.Price == nil {
		errs["price"] = "sale price is required"
	} else if *r.Price < 0 {
		errs["price"] = "sale price cannot be negative"
	}
	if r.CostPrice != nil && *r.CostPrice < 0 {
		errs["cost_price"] = "cost price cannot be negative"
	}
	if r.Unit != "" && !model.ValidUnit(r.Unit) {
		errs["unit"] = "unit must be M2 or UN"
	}
	return errs
}

func (r *ProductRequest) apply(product *model.Product) {
	product.Name = r.Name
	product.Unit = r.Unit
	if product.Unit == "" {
		product.Unit = model.UnitSquareMeter
	}
	product.Price = *r.Price
	product.CostPrice = r.CostPrice
	product.IsActive = r.IsActive
}

// productResponse adds the derived profit fields to the stored record
func productResponse(p *model.Product) echo.Map {
	return echo.Map{
		"id":             p.ID,
		"company_id":     p.CompanyID,
		"name":           p.Name,
		"unit":           p.Unit,
		"price":          p.Price,
		"cost_price":     p.CostPrice,
		"is_active":      p.IsActive,
		"profit_value":   p.ProfitValue(),
		"profit_percent": p.ProfitPercent(),
		"created_at":     p.CreatedAt,
		"updated_at":     p.UpdatedAt,
	}
}

func findProduct(c echo.Context, ident *middleware.Identity) (*model.Product, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid product ID")
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var product model.Product
	if err := database.GetDB().Where("id = ? AND company_id = ?", id, ident.CompanyID()).First(&product).Error; err != nil {
		logger.FromContext(c).Warn("Product not found for company",
			zap.Uint64("product_id", id),
			zap.Uint("company_id", ident.CompanyID()))
		return nil, echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return &product, nil
}

// ListProducts returns the acting company's products with derived profit values
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("product", "list")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var products []model.Product
	if err := database.GetDB().Where("company_id = ?", ident.CompanyID()).Order("name").Find(&products).Error; err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve products"})
	}

	items := make([]echo.Map, 0, len(products))
	for i := range products {
		items = append(items, productResponse(&products[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"products": items})
}

// CreateProduct adds a product to the acting company
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("product", "create")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	product := model.Product{CompanyID: ident.CompanyID()}
	req.apply(&product)

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := database.GetDB().Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	log.Info("Product created",
		zap.Uint("id", product.ID),
		zap.String("name", product.Name),
		zap.Uint("company_id", product.CompanyID))

	return c.JSON(http.StatusCreated, productResponse(&product))
}

// GetProductEdit returns one product for the edit form
func GetProductEdit(c echo.Context) error {
	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	product, err := findProduct(c, ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productResponse(product))
}

// UpdateProduct persists the submitted product fields
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("product", "update")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	product, err := findProduct(c, ident)
	if err != nil {
		return err
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	req.apply(product)

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := database.GetDB().Save(product).Error; err != nil {
		log.Error("Failed to update product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}

	log.Info("Product updated", zap.Uint("id", product.ID), zap.Uint("company_id", product.CompanyID))
	return c.JSON(http.StatusOK, productResponse(product))
}

// GetProductDelete returns the record about to be removed so the client can
// ask for confirmation
func GetProductDelete(c echo.Context) error {
	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	product, err := findProduct(c, ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"product": productResponse(product),
		"message": "confirm deletion",
	})
}

// DeleteProduct removes a product once confirmed
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordOperation("product", "delete")

	ident, ok := middleware.IdentityFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	product, err := findProduct(c, ident)
	if err != nil {
		return err
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := database.GetDB().Delete(product).Error; err != nil {
		log.Error("Failed to delete product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}

	log.Info("Product deleted", zap.Uint("id", product.ID), zap.Uint("company_id", product.CompanyID))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
