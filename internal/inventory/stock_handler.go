package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"magaza-backend/internal/config"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

type CreateStockRequest struct {
	// Code tek kod ya da virgülle birleştirilmiş çoklu kod olabilir ("A1,A2").
	Code          string  `json:"code" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	SupplierPrice float64 `json:"supplier_price" validate:"gte=0"`
	Quantity      float64 `json:"quantity" validate:"gte=0"`
	Unit          string  `json:"unit" validate:"required"`
	CategoryID    *uint   `json:"category_id"`
	DateAdded     string  `json:"date_added"` // "2006-01-02", boşsa bugün
}

type UpdateStockRequest struct {
	Code          string  `json:"code" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Price         float64 `json:"price" validate:"gte=0"`
	SupplierPrice float64 `json:"supplier_price" validate:"gte=0"`
	Unit          string  `json:"unit" validate:"required"`
	CategoryID    *uint   `json:"category_id"`
}

type StockResponse struct {
	ID            uint              `json:"id"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Price         float64           `json:"price"`
	SupplierPrice float64           `json:"supplier_price"`
	Quantity      float64           `json:"quantity"`
	FixedQuantity float64           `json:"fixed_quantity"`
	Unit          string            `json:"unit"`
	Category      *CategoryResponse `json:"category"`
	DateAdded     string            `json:"date_added"`
}

func toStockResponse(s models.Stock) StockResponse {
	resp := StockResponse{
		ID:            s.ID,
		Code:          s.Code,
		Name:          s.Name,
		Price:         s.Price,
		SupplierPrice: s.SupplierPrice,
		Quantity:      s.Quantity,
		FixedQuantity: s.FixedQuantity,
		Unit:          s.Unit,
		DateAdded:     s.DateAdded.Format("2006-01-02"),
	}
	if s.Category != nil {
		resp.Category = &CategoryResponse{ID: s.Category.ID, Name: s.Category.Name}
	}
	return resp
}

func buildStock(req CreateStockRequest) (models.Stock, error) {
	if err := validate.Struct(req); err != nil {
		return models.Stock{}, fiber.NewError(fiber.StatusBadRequest, "Geçersiz stok: code, name ve unit zorunlu; fiyat ve miktar negatif olamaz")
	}

	var dateAdded time.Time
	if req.DateAdded == "" {
		now := time.Now()
		dateAdded = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	} else {
		var err error
		dateAdded, err = time.Parse("2006-01-02", req.DateAdded)
		if err != nil {
			return models.Stock{}, fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
		}
	}

	if req.CategoryID != nil {
		var cat models.Category
		if err := database.DB.First(&cat, "id = ?", *req.CategoryID).Error; err != nil {
			return models.Stock{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Kategori bulunamadı: %d", *req.CategoryID))
		}
	}

	return models.Stock{
		Code:          req.Code,
		Name:          req.Name,
		Price:         req.Price,
		SupplierPrice: req.SupplierPrice,
		Quantity:      req.Quantity,
		FixedQuantity: req.Quantity, // ilk giriş miktarı burada damgalanır, bir daha değişmez
		Unit:          req.Unit,
		CategoryID:    req.CategoryID,
		DateAdded:     dateAdded,
	}, nil
}

// POST /api/stocks
// Gövde tek obje de olabilir dizi de; dizi gelirse her eleman ayrı satır olur.
func CreateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bytes.TrimSpace(c.Body())
		if len(raw) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if raw[0] == '[' {
			var reqs []CreateStockRequest
			if err := json.Unmarshal(raw, &reqs); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
			}
			if len(reqs) == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "En az bir stok gönderilmeli")
			}

			stocks := make([]models.Stock, 0, len(reqs))
			for _, req := range reqs {
				s, err := buildStock(req)
				if err != nil {
					return err
				}
				stocks = append(stocks, s)
			}

			if err := database.DB.Create(&stocks).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Stoklar kaydedilemedi")
			}

			// Kategori ilişkisiyle birlikte yeniden oku; id sırası istek sırasıdır
			ids := make([]uint, 0, len(stocks))
			for _, s := range stocks {
				ids = append(ids, s.ID)
			}
			if err := database.DB.Preload("Category").
				Where("id IN ?", ids).
				Order("id ASC").
				Find(&stocks).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Stoklar yüklenemedi")
			}

			resp := make([]StockResponse, 0, len(stocks))
			for _, s := range stocks {
				resp = append(resp, toStockResponse(s))
			}
			return c.Status(fiber.StatusCreated).JSON(resp)
		}

		var req CreateStockRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		s, err := buildStock(req)
		if err != nil {
			return err
		}

		if err := database.DB.Create(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok kaydedilemedi")
		}

		database.DB.Preload("Category").First(&s, "id = ?", s.ID)
		return c.Status(fiber.StatusCreated).JSON(toStockResponse(s))
	}
}

// GET /api/stocks?category_id=1
func ListStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Category")

		if cidStr := c.Query("category_id"); cidStr != "" {
			var cid uint
			if _, err := fmt.Sscan(cidStr, &cid); err != nil || cid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "category_id geçersiz")
			}
			dbq = dbq.Where("category_id = ?", cid)
		}

		var stocks []models.Stock
		if err := dbq.Order("date_added DESC, id DESC").Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stoklar listelenemedi")
		}

		resp := make([]StockResponse, 0, len(stocks))
		for _, s := range stocks {
			resp = append(resp, toStockResponse(s))
		}
		return c.JSON(resp)
	}
}

// GET /api/stocks/by-code?code=A1
// Birebir kod eşleşmesi; virgüllü kompozit kodlar da aynen karşılaştırılır.
func ListStocksByCodeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Query("code")
		if code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "code parametresi zorunlu")
		}

		var stocks []models.Stock
		if err := database.DB.Preload("Category").
			Where("code = ?", code).
			Order("id ASC").
			Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stoklar listelenemedi")
		}

		resp := make([]StockResponse, 0, len(stocks))
		for _, s := range stocks {
			resp = append(resp, toStockResponse(s))
		}
		return c.JSON(resp)
	}
}

// GET /api/stocks/:id
func GetStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var s models.Stock
		if err := database.DB.Preload("Category").First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok bulunamadı")
		}

		return c.JSON(toStockResponse(s))
	}
}

// PUT /api/stocks/:id
// Miktar alanlarına dokunmaz: Quantity sadece adjust/set uçlarından değişir
// (her değişiklik movement ister), FixedQuantity ise hiç değişmez.
func UpdateStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var s models.Stock
		if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok bulunamadı")
		}

		var req UpdateStockRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz stok: code, name ve unit zorunlu; fiyatlar negatif olamaz")
		}

		if req.CategoryID != nil {
			var cat models.Category
			if err := database.DB.First(&cat, "id = ?", *req.CategoryID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Kategori bulunamadı: %d", *req.CategoryID))
			}
		}

		s.Code = req.Code
		s.Name = req.Name
		s.Price = req.Price
		s.SupplierPrice = req.SupplierPrice
		s.Unit = req.Unit
		s.CategoryID = req.CategoryID
		s.Category = nil

		if err := database.DB.Save(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
		}

		database.DB.Preload("Category").First(&s, "id = ?", s.ID)
		return c.JSON(toStockResponse(s))
	}
}

// DELETE /api/stocks/:id
func DeleteStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var s models.Stock
		if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok bulunamadı")
		}

		// Hareket kayıtları DB seviyesindeki cascade ile birlikte silinir
		if err := database.DB.Delete(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

type AdjustStockRequest struct {
	Delta   float64 `json:"delta"`
	Comment string  `json:"comment"`
}

// PUT /api/stocks/by-code/:code
// İşaretli delta uygular. Pozitif delta "in", negatif delta "adjust" hareketi
// yazar; stok güncellemesi ve hareket kaydı tek transaction içinde yapılır.
func AdjustStockByCodeHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		code := c.Params("code")
		if code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "code zorunlu")
		}

		var req AdjustStockRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.Delta == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "delta 0 olamaz")
		}

		var s models.Stock
		if err := database.DB.Where("code = ?", code).Order("id ASC").First(&s).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Stok bulunamadı: %s", code))
		}

		newQty := s.Quantity + req.Delta
		if newQty < 0 && !cfg.AllowNegativeStock {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Yetersiz stok: %s (eldeki %.2f, istenen %.2f)", s.Code, s.Quantity, -req.Delta))
		}

		if err := applyQuantityChange(&s, req.Delta, req.Comment); err != nil {
			return err
		}

		return c.JSON(toStockResponse(s))
	}
}

type SetQuantityRequest struct {
	Quantity float64 `json:"quantity"`
	Comment  string  `json:"comment"`
}

// PATCH /api/stocks/:id/update-quantity
// Mutlak değer atar; hareket için ima edilen delta hesaplanır. Değer aynıysa
// hareket yazılmaz.
func SetStockQuantityHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var req SetQuantityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if req.Quantity < 0 && !cfg.AllowNegativeStock {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar negatif olamaz")
		}

		var s models.Stock
		if err := database.DB.First(&s, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Stok bulunamadı")
		}

		delta := req.Quantity - s.Quantity
		if delta == 0 {
			return c.JSON(toStockResponse(s))
		}

		if err := applyQuantityChange(&s, delta, req.Comment); err != nil {
			return err
		}

		return c.JSON(toStockResponse(s))
	}
}

// applyQuantityChange: Stok miktarını günceller ve tam olarak bir StockMovement
// yazar; ikisi ya birlikte olur ya hiç olmaz.
func applyQuantityChange(s *models.Stock, delta float64, comment string) error {
	movementType := models.MovementIn
	quantity := delta
	if delta < 0 {
		movementType = models.MovementAdjust
		quantity = -delta
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		s.Quantity += delta
		if err := tx.Save(s).Error; err != nil {
			return err
		}

		movement := models.StockMovement{
			StockID:      s.ID,
			MovementType: movementType,
			Quantity:     quantity,
			Comment:      comment,
			Date:         time.Now(),
		}
		return tx.Create(&movement).Error
	})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Stok güncellenemedi")
	}
	return nil
}
