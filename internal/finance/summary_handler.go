package finance

import (
	"time"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type SummaryMonth struct {
	AddedToday int64 `json:"added_today"`
}

type SummaryResponse struct {
	Month          SummaryMonth `json:"month"`
	DailyExpense   float64      `json:"daily_expense"`
	MonthlyExpense float64      `json:"monthly_expense"`
}

// GET /api/transactions/summary
// Bugün eklenen kayıt sayısı (tür fark etmez), bugünkü gider toplamı ve
// ay başından bugüne gider toplamı. Kayıt yoksa alanlar sıfır döner, null değil.
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		tomorrow := today.AddDate(0, 0, 1)
		startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		var addedToday int64
		if err := database.DB.Model(&models.Transaction{}).
			Where("date >= ? AND date < ?", today, tomorrow).
			Count(&addedToday).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Özet hesaplanamadı")
		}

		var dailyExpense float64
		if err := database.DB.Model(&models.Transaction{}).
			Where("date >= ? AND date < ? AND type = ?", today, tomorrow, models.TransactionExpense).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&dailyExpense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Günlük gider hesaplanamadı")
		}

		var monthlyExpense float64
		if err := database.DB.Model(&models.Transaction{}).
			Where("date >= ? AND date < ? AND type = ?", startOfMonth, tomorrow, models.TransactionExpense).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&monthlyExpense).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Aylık gider hesaplanamadı")
		}

		return c.JSON(SummaryResponse{
			Month:          SummaryMonth{AddedToday: addedToday},
			DailyExpense:   dailyExpense,
			MonthlyExpense: monthlyExpense,
		})
	}
}
