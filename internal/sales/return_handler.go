package sales

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateReturnRequest struct {
	SaleItemID uint                `json:"sale_item" validate:"required"`
	Quantity   float64             `json:"quantity" validate:"gt=0"`
	Reason     string              `json:"reason"`
	Branch     models.ReturnBranch `json:"branch" validate:"required,oneof=Сокулук Беловодское"`
}

type ReturnResponse struct {
	ID         uint                `json:"id"`
	SaleItemID uint                `json:"sale_item"`
	Quantity   float64             `json:"quantity"`
	Reason     string              `json:"reason"`
	Branch     models.ReturnBranch `json:"branch"`
	Date       string              `json:"date"`
}

func toReturnResponse(r models.ReturnItem) ReturnResponse {
	return ReturnResponse{
		ID:         r.ID,
		SaleItemID: r.SaleItemID,
		Quantity:   r.Quantity,
		Reason:     r.Reason,
		Branch:     r.Branch,
		Date:       r.Date.Format("2006-01-02 15:04:05"),
	}
}

// createReturn: Tek iadenin üç yazımı (stok + hareket + iade kaydı) kendi
// transaction'ında yapılır.
func createReturn(req CreateReturnRequest) (models.ReturnItem, error) {
	if err := validate.Struct(req); err != nil {
		return models.ReturnItem{}, fiber.NewError(fiber.StatusBadRequest, "Geçersiz iade: sale_item, quantity (> 0) ve branch (Сокулук|Беловодское) zorunlu")
	}

	var saleItem models.SaleItem
	if err := database.DB.First(&saleItem, "id = ?", req.SaleItemID).Error; err != nil {
		return models.ReturnItem{}, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Satış kalemi bulunamadı: %d", req.SaleItemID))
	}

	ret := models.ReturnItem{
		SaleItemID: saleItem.ID,
		Quantity:   req.Quantity,
		Reason:     req.Reason,
		Branch:     req.Branch,
		Date:       time.Now(),
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Stoğu satış anındaki koddan çöz; silinmişse sıfır tabanlı yeniden
		// oluştur. Bu bir envanter düzeltmesi değil, politika tercihi: iade
		// silinmiş ürünü diriltebilir.
		var stock models.Stock
		if err := tx.Where("code = ?", saleItem.Code).Order("id ASC").First(&stock).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			now := time.Now()
			stock = models.Stock{
				Code:          saleItem.Code,
				Name:          saleItem.Name,
				Price:         saleItem.Price,
				SupplierPrice: 0,
				Quantity:      0,
				FixedQuantity: 0,
				Unit:          "adet",
				DateAdded:     time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
			}
			if err := tx.Create(&stock).Error; err != nil {
				return err
			}
		}

		stock.Quantity += req.Quantity
		if err := tx.Save(&stock).Error; err != nil {
			return err
		}

		movement := models.StockMovement{
			StockID:      stock.ID,
			MovementType: models.MovementReturn,
			Quantity:     req.Quantity,
			Comment:      fmt.Sprintf("İade: Satış #%d", saleItem.SaleID),
			Date:         time.Now(),
		}
		if err := tx.Create(&movement).Error; err != nil {
			return err
		}

		return tx.Create(&ret).Error
	})
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return models.ReturnItem{}, fe
		}
		return models.ReturnItem{}, fiber.NewError(fiber.StatusInternalServerError, "İade kaydedilemedi")
	}

	return ret, nil
}

// POST /api/returns
// Gövde tek obje de olabilir dizi de. Dizi TEK transaction DEĞİLDİR: her eleman
// kendi içinde atomiktir, ortada patlayan bir eleman öncekileri geri almaz.
func CreateReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bytes.TrimSpace(c.Body())
		if len(raw) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if raw[0] == '[' {
			var reqs []CreateReturnRequest
			if err := json.Unmarshal(raw, &reqs); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
			}
			if len(reqs) == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "En az bir iade gönderilmeli")
			}

			resp := make([]ReturnResponse, 0, len(reqs))
			for i, req := range reqs {
				ret, err := createReturn(req)
				if err != nil {
					var fe *fiber.Error
					if errors.As(err, &fe) {
						// Önceki elemanlar commit edildi; hatayı indeksle raporla
						return fiber.NewError(fe.Code, fmt.Sprintf("İade %d işlenemedi (öncekiler kaydedildi): %s", i, fe.Message))
					}
					return err
				}
				resp = append(resp, toReturnResponse(ret))
			}
			return c.Status(fiber.StatusCreated).JSON(resp)
		}

		var req CreateReturnRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		ret, err := createReturn(req)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toReturnResponse(ret))
	}
}

// GET /api/returns?branch=Сокулук&from=...&to=...
func ListReturnsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.ReturnItem{})

		if b := c.Query("branch"); b != "" {
			dbq = dbq.Where("branch = ?", b)
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

		var returns []models.ReturnItem
		if err := dbq.Order("date DESC, id DESC").Find(&returns).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İadeler listelenemedi")
		}

		resp := make([]ReturnResponse, 0, len(returns))
		for _, r := range returns {
			resp = append(resp, toReturnResponse(r))
		}
		return c.JSON(resp)
	}
}

// GET /api/returns/:id
func GetReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var r models.ReturnItem
		if err := database.DB.First(&r, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İade bulunamadı")
		}

		return c.JSON(toReturnResponse(r))
	}
}

type UpdateReturnRequest struct {
	Quantity float64             `json:"quantity" validate:"gt=0"`
	Reason   string              `json:"reason"`
	Branch   models.ReturnBranch `json:"branch" validate:"required,oneof=Сокулук Беловодское"`
}

// PUT /api/returns/:id
// Sadece kayıt alanlarını düzeltir; stok miktarına dokunmaz.
func UpdateReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var r models.ReturnItem
		if err := database.DB.First(&r, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İade bulunamadı")
		}

		var req UpdateReturnRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "quantity (> 0) ve branch (Сокулук|Беловодское) zorunlu")
		}

		r.Quantity = req.Quantity
		r.Reason = req.Reason
		r.Branch = req.Branch

		if err := database.DB.Save(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İade güncellenemedi")
		}

		return c.JSON(toReturnResponse(r))
	}
}

// DELETE /api/returns/:id
func DeleteReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var r models.ReturnItem
		if err := database.DB.First(&r, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İade bulunamadı")
		}

		if err := database.DB.Delete(&r).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İade silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
