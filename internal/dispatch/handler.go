package dispatch

import (
	"errors"
	"fmt"
	"time"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/idgen"
	"magaza-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

type DispatchItemRequest struct {
	StockID  *uint   `json:"stock_id"`
	Code     string  `json:"code" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Price    float64 `json:"price" validate:"gte=0"`
	Total    float64 `json:"total" validate:"gte=0"`
}

type CreateDispatchRequest struct {
	Recipient string                `json:"recipient" validate:"required"`
	Comment   string                `json:"comment"`
	Items     []DispatchItemRequest `json:"items" validate:"required,min=1,dive"`
}

type DispatchItemResponse struct {
	ID       uint    `json:"id"`
	StockID  *uint   `json:"stock_id"`
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type DispatchResponse struct {
	ID        uint                   `json:"id"`
	Number    string                 `json:"number"`
	Recipient string                 `json:"recipient"`
	Comment   string                 `json:"comment"`
	Total     float64                `json:"total"`
	Date      string                 `json:"date"`
	Items     []DispatchItemResponse `json:"items"`
}

func toDispatchResponse(d models.DispatchHistory) DispatchResponse {
	items := make([]DispatchItemResponse, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, DispatchItemResponse{
			ID:       item.ID,
			StockID:  item.StockID,
			Code:     item.Code,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
			Total:    item.Total,
		})
	}
	return DispatchResponse{
		ID:        d.ID,
		Number:    d.Number,
		Recipient: d.Recipient,
		Comment:   d.Comment,
		Total:     d.Total,
		Date:      d.Date.Format("2006-01-02 15:04:05"),
		Items:     items,
	}
}

// POST /api/dispatches
// İki aşamalı yazım: başlık Total=0 ile açılır, kalemler yazılır, toplam
// kalemlerden hesaplanıp başlığa işlenir; hepsi tek transaction. Sevk stok
// miktarını DÜŞÜRMEZ; satıştan farklı, kayıt amaçlıdır.
func CreateDispatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDispatchRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sevk: recipient ve en az bir kalem zorunlu; kalemlerde code, name ve quantity (> 0) olmalı")
		}

		dispatch := models.DispatchHistory{
			Number:    idgen.Number(),
			Recipient: body.Recipient,
			Comment:   body.Comment,
			Total:     0,
			Date:      time.Now(),
		}

		err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&dispatch).Error; err != nil {
				return err
			}

			var total float64
			for _, itemReq := range body.Items {
				// Zayıf referans: stock_id verilmişse var olmalı
				if itemReq.StockID != nil {
					var stock models.Stock
					if err := tx.First(&stock, "id = ?", *itemReq.StockID).Error; err != nil {
						if errors.Is(err, gorm.ErrRecordNotFound) {
							return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Stok bulunamadı: %d", *itemReq.StockID))
						}
						return err
					}
				}

				item := models.DispatchItem{
					DispatchID: dispatch.ID,
					StockID:    itemReq.StockID,
					Code:       itemReq.Code,
					Name:       itemReq.Name,
					Quantity:   itemReq.Quantity,
					Price:      itemReq.Price,
					Total:      itemReq.Total,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
				total += item.Total
			}

			dispatch.Total = total
			return tx.Model(&dispatch).Update("total", total).Error
		})
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Sevk kaydedilemedi")
		}

		if err := database.DB.Preload("Items").First(&dispatch, dispatch.ID).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sevk yüklenemedi")
		}

		if userID, userName, err := auth.GetUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "dispatch",
				EntityID:    dispatch.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Sevk eklendi: %s, %d kalem, toplam %.2f", dispatch.Recipient, len(dispatch.Items), dispatch.Total),
				After:       dispatch,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toDispatchResponse(dispatch))
	}
}

// GET /api/dispatches?from=...&to=...
func ListDispatchesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Items")

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

		var dispatches []models.DispatchHistory
		if err := dbq.Order("date DESC, id DESC").Find(&dispatches).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sevkler listelenemedi")
		}

		resp := make([]DispatchResponse, 0, len(dispatches))
		for _, d := range dispatches {
			resp = append(resp, toDispatchResponse(d))
		}
		return c.JSON(resp)
	}
}

// GET /api/dispatches/:id
func GetDispatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var d models.DispatchHistory
		if err := database.DB.Preload("Items").First(&d, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sevk bulunamadı")
		}

		return c.JSON(toDispatchResponse(d))
	}
}

// DELETE /api/dispatches/:id
func DeleteDispatchHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var d models.DispatchHistory
		if err := database.DB.Preload("Items").First(&d, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sevk bulunamadı")
		}

		if err := database.DB.Delete(&d).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sevk silinemedi")
		}

		if userID, userName, err := auth.GetUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "dispatch",
				EntityID:    d.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Sevk silindi: %s", d.Number),
				Before:      d,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
