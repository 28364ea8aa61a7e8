package finance

import (
	"bytes"
	"encoding/json"
	"time"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CreateTransactionRequest struct {
	Type   models.TransactionType `json:"type" validate:"required,oneof=income expense"`
	Name   string                 `json:"name" validate:"required"`
	Amount float64                `json:"amount" validate:"required,gt=0"`
	Date   string                 `json:"date"` // "2006-01-02", boşsa bugün
}

type TransactionResponse struct {
	ID     uint                   `json:"id"`
	Type   models.TransactionType `json:"type"`
	Name   string                 `json:"name"`
	Amount float64                `json:"amount"`
	Date   string                 `json:"date"`
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:     t.ID,
		Type:   t.Type,
		Name:   t.Name,
		Amount: t.Amount,
		Date:   t.Date.Format("2006-01-02"),
	}
}

// parseDateOrToday: "YYYY-MM-DD" ya da boş string. Gün bazlı saklanır.
func parseDateOrToday(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	return time.Parse("2006-01-02", s)
}

func buildTransaction(req CreateTransactionRequest) (models.Transaction, error) {
	if err := validate.Struct(req); err != nil {
		return models.Transaction{}, fiber.NewError(fiber.StatusBadRequest, "Geçersiz işlem: type (income|expense), name ve amount (> 0) zorunlu")
	}

	d, err := parseDateOrToday(req.Date)
	if err != nil {
		return models.Transaction{}, fiber.NewError(fiber.StatusBadRequest, "Tarih formatı 'YYYY-MM-DD' olmalı")
	}

	return models.Transaction{
		Type:   req.Type,
		Name:   req.Name,
		Amount: req.Amount,
		Date:   d,
	}, nil
}

// POST /api/transactions
// Gövde tek obje de olabilir dizi de; dizi gelirse toplu kayıt yapılır.
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bytes.TrimSpace(c.Body())
		if len(raw) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		// Dizi → bulk create
		if raw[0] == '[' {
			var reqs []CreateTransactionRequest
			if err := json.Unmarshal(raw, &reqs); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
			}
			if len(reqs) == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "En az bir işlem gönderilmeli")
			}

			txns := make([]models.Transaction, 0, len(reqs))
			for _, req := range reqs {
				t, err := buildTransaction(req)
				if err != nil {
					return err
				}
				txns = append(txns, t)
			}

			if err := database.DB.Create(&txns).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "İşlemler kaydedilemedi")
			}

			resp := make([]TransactionResponse, 0, len(txns))
			for _, t := range txns {
				resp = append(resp, toTransactionResponse(t))
			}
			return c.Status(fiber.StatusCreated).JSON(resp)
		}

		// Tek obje
		var req CreateTransactionRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := buildTransaction(req)
		if err != nil {
			return err
		}

		if err := database.DB.Create(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem kaydedilemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(t))
	}
}

// GET /api/transactions?type=expense&from=2025-08-01&to=2025-08-31
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Transaction{})

		if t := c.Query("type"); t != "" {
			dbq = dbq.Where("type = ?", t)
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
			dbq = dbq.Where("date <= ?", to)
		}

		var txns []models.Transaction
		if err := dbq.Order("date DESC, id DESC").Find(&txns).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlemler listelenemedi")
		}

		resp := make([]TransactionResponse, 0, len(txns))
		for _, t := range txns {
			resp = append(resp, toTransactionResponse(t))
		}
		return c.JSON(resp)
	}
}

// GET /api/transactions/:id
func GetTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var t models.Transaction
		if err := database.DB.First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
		}

		return c.JSON(toTransactionResponse(t))
	}
}

// PUT /api/transactions/:id
func UpdateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var t models.Transaction
		if err := database.DB.First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
		}

		var req CreateTransactionRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updated, err := buildTransaction(req)
		if err != nil {
			return err
		}

		t.Type = updated.Type
		t.Name = updated.Name
		t.Amount = updated.Amount
		t.Date = updated.Date

		if err := database.DB.Save(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem güncellenemedi")
		}

		return c.JSON(toTransactionResponse(t))
	}
}

// DELETE /api/transactions/:id
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var t models.Transaction
		if err := database.DB.First(&t, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "İşlem bulunamadı")
		}

		if err := database.DB.Delete(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem silinemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
