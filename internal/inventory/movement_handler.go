package inventory

import (
	"fmt"
	"time"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MovementResponse struct {
	ID           uint                `json:"id"`
	StockID      uint                `json:"stock_id"`
	StockName    string              `json:"stock_name"`
	MovementType models.MovementType `json:"movement_type"`
	Quantity     float64             `json:"quantity"`
	Comment      string              `json:"comment"`
	Date         string              `json:"date"`
	SaleID       *uint               `json:"sale_id"`
}

func toMovementResponse(m models.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		StockID:      m.StockID,
		StockName:    m.Stock.Name,
		MovementType: m.MovementType,
		Quantity:     m.Quantity,
		Comment:      m.Comment,
		Date:         m.Date.Format("2006-01-02 15:04:05"),
		SaleID:       m.SaleID,
	}
}

// GET /api/stock-movements?stock_id=1&movement_type=sale&from=...&to=...
// Hareket günlüğü salt okunur; kayıtlar yalnızca diğer işlemlerin yan etkisi
// olarak oluşur.
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Preload("Stock")

		if sidStr := c.Query("stock_id"); sidStr != "" {
			var sid uint
			if _, err := fmt.Sscan(sidStr, &sid); err != nil || sid == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "stock_id geçersiz")
			}
			dbq = dbq.Where("stock_id = ?", sid)
		}
		if mt := c.Query("movement_type"); mt != "" {
			switch models.MovementType(mt) {
			case models.MovementIn, models.MovementSale, models.MovementReturn, models.MovementAdjust:
				dbq = dbq.Where("movement_type = ?", mt)
			default:
				return fiber.NewError(fiber.StatusBadRequest, "movement_type geçersiz (in|sale|return|adjust)")
			}
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

		var movements []models.StockMovement
		if err := dbq.Order("date DESC, id DESC").Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		resp := make([]MovementResponse, 0, len(movements))
		for _, m := range movements {
			resp = append(resp, toMovementResponse(m))
		}
		return c.JSON(resp)
	}
}

// GET /api/stock-movements/:id
func GetMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var m models.StockMovement
		if err := database.DB.Preload("Stock").First(&m, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hareket bulunamadı")
		}

		return c.JSON(toMovementResponse(m))
	}
}
