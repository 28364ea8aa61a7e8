package sales

import (
	"errors"
	"fmt"
	"time"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/config"
	"magaza-backend/internal/database"
	"magaza-backend/internal/idgen"
	"magaza-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

type SaleLineRequest struct {
	Code     string  `json:"code" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

type CreateSaleRequest struct {
	PaymentType models.PaymentType `json:"payment_type" validate:"required,oneof=cash card"`
	Total       float64            `json:"total" validate:"gte=0"`
	Items       []SaleLineRequest  `json:"items" validate:"required,min=1,dive"`
}

type SaleItemResponse struct {
	ID       uint    `json:"id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
	Total    float64 `json:"total"`
}

type SaleResponse struct {
	ID          uint               `json:"id"`
	Number      string             `json:"number"`
	PaymentType models.PaymentType `json:"payment_type"`
	Total       float64            `json:"total"`
	Date        string             `json:"date"`
	Items       []SaleItemResponse `json:"items"`
}

func toSaleResponse(sale models.SaleHistory) SaleResponse {
	items := make([]SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleItemResponse{
			ID:       item.ID,
			Code:     item.Code,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
			Total:    item.Total,
		})
	}
	return SaleResponse{
		ID:          sale.ID,
		Number:      sale.Number,
		PaymentType: sale.PaymentType,
		Total:       sale.Total,
		Date:        sale.Date.Format("2006-01-02 15:04:05"),
		Items:       items,
	}
}

// POST /api/sales
// Satış kaydı: başlık + kalemler + stok düşümü + hareket kayıtları, hepsi tek
// transaction. Herhangi bir kalem patlarsa (ör. bilinmeyen kod) önceki kalemler
// dahil hiçbir şey kalıcı olmaz.
func CreateSaleHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz satış: payment_type (cash|card) ve en az bir kalem zorunlu; kalemlerde code, name ve quantity (> 0) olmalı")
		}

		sale := models.SaleHistory{
			Number:      idgen.Number(),
			PaymentType: body.PaymentType,
			Total:       body.Total,
			Date:        time.Now(),
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&sale).Error; err != nil {
				return err
			}

			for _, line := range body.Items {
				item := models.SaleItem{
					SaleID:   sale.ID,
					Code:     line.Code,
					Name:     line.Name,
					Price:    line.Price,
					Quantity: line.Quantity,
					Total:    line.Price * line.Quantity,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}

				var stock models.Stock
				if err := tx.Where("code = ?", line.Code).Order("id ASC").First(&stock).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Stok bulunamadı: %s", line.Code))
					}
					return err
				}

				if stock.Quantity-line.Quantity < 0 && !cfg.AllowNegativeStock {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("Yetersiz stok: %s (eldeki %.2f, istenen %.2f)", stock.Code, stock.Quantity, line.Quantity))
				}

				stock.Quantity -= line.Quantity
				if err := tx.Save(&stock).Error; err != nil {
					return err
				}

				movement := models.StockMovement{
					StockID:      stock.ID,
					MovementType: models.MovementSale,
					Quantity:     line.Quantity,
					Comment:      "Satış",
					Date:         time.Now(),
					SaleID:       &sale.ID,
				}
				if err := tx.Create(&movement).Error; err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Satış kaydedilemedi")
		}

		if err := database.DB.Preload("Items").First(&sale, sale.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış yüklenemedi")
		}

		if userID, userName, err := auth.GetUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "sale",
				EntityID:    sale.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Satış eklendi: %d kalem, toplam %.2f", len(sale.Items), sale.Total),
				After:       sale,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
	}
}

// GET /api/sales?payment_type=cash&from=...&to=...
func ListSalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Items")

		if pt := c.Query("payment_type"); pt != "" {
			dbq = dbq.Where("payment_type = ?", pt)
		}
		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "from tarihi geçersiz")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "to tarihi geçersiz")
			}
			dbq = dbq.Where("date < ?", to.AddDate(0, 0, 1))
		}

		var salesList []models.SaleHistory
		if err := dbq.Order("date DESC, id DESC").Find(&salesList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		resp := make([]SaleResponse, 0, len(salesList))
		for _, sale := range salesList {
			resp = append(resp, toSaleResponse(sale))
		}
		return c.JSON(resp)
	}
}

// GET /api/sales/:id
func GetSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var sale models.SaleHistory
		if err := database.DB.Preload("Items").First(&sale, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		return c.JSON(toSaleResponse(sale))
	}
}

type UpdateSaleRequest struct {
	PaymentType models.PaymentType `json:"payment_type" validate:"required,oneof=cash card"`
	Total       float64            `json:"total" validate:"gte=0"`
}

// PUT /api/sales/:id
// Kalemler satış anının fotoğrafıdır, güncellenmez; sadece başlık alanları.
func UpdateSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var sale models.SaleHistory
		if err := database.DB.Preload("Items").First(&sale, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		var req UpdateSaleRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "payment_type (cash|card) zorunlu, total negatif olamaz")
		}

		sale.PaymentType = req.PaymentType
		sale.Total = req.Total

		if err := database.DB.Save(&sale).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış güncellenemedi")
		}

		return c.JSON(toSaleResponse(sale))
	}
}

// DELETE /api/sales/:id
// Kalemler cascade ile silinir; hareket kayıtlarının sale_id'si NULL'a çekilir,
// hareketler audit izi olarak kalır.
func DeleteSaleHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var sale models.SaleHistory
		if err := database.DB.Preload("Items").First(&sale, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Satış bulunamadı")
		}

		if err := database.DB.Delete(&sale).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satış silinemedi")
		}

		if userID, userName, err := auth.GetUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "sale",
				EntityID:    sale.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Satış silindi: %s", sale.Number),
				Before:      sale,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
