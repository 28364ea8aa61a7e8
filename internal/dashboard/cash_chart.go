package dashboard

import (
	"fmt"
	"time"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CashChartPoint struct {
	Label   string  `json:"label"` // gün
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

type CashChartGrandTotals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

type CashChartResponse struct {
	From        string               `json:"from"`
	To          string               `json:"to"`
	Points      []CashChartPoint     `json:"points"`
	GrandTotals CashChartGrandTotals `json:"grand_totals"`
}

// GET /api/dashboard/cash-chart?count=7
// Gelir/gider defterinin son N gününü gün bazında toplar. Kayıt olmayan günler
// de sıfırla döner ki grafik boşluksuz çizilsin.
func CashChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		count := 7
		if countStr := c.Query("count"); countStr != "" {
			if _, err := fmt.Sscan(countStr, &count); err != nil || count <= 0 {
				return fiber.NewError(fiber.StatusBadRequest, "count geçersiz")
			}
		}

		now := time.Now()
		loc := now.Location()
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		start := end.AddDate(0, 0, -(count - 1))

		var txns []models.Transaction
		if err := database.DB.
			Where("date >= ? AND date < ?", start, end.AddDate(0, 0, 1)).
			Find(&txns).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Veri toplanırken hata oluştu")
		}

		type bucketAgg struct {
			Income  float64
			Expense float64
		}
		buckets := make(map[string]*bucketAgg)

		for _, t := range txns {
			label := t.Date.Format("2006-01-02")
			agg, ok := buckets[label]
			if !ok {
				agg = &bucketAgg{}
				buckets[label] = agg
			}
			switch t.Type {
			case models.TransactionIncome:
				agg.Income += t.Amount
			case models.TransactionExpense:
				agg.Expense += t.Amount
			}
		}

		points := make([]CashChartPoint, 0, count)
		grand := CashChartGrandTotals{}

		for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
			label := day.Format("2006-01-02")
			point := CashChartPoint{Label: label}
			if agg, ok := buckets[label]; ok {
				point.Income = agg.Income
				point.Expense = agg.Expense
			}
			point.Net = point.Income - point.Expense
			points = append(points, point)

			grand.Income += point.Income
			grand.Expense += point.Expense
		}
		grand.Net = grand.Income - grand.Expense

		return c.JSON(CashChartResponse{
			From:        start.Format("2006-01-02"),
			To:          end.Format("2006-01-02"),
			Points:      points,
			GrandTotals: grand,
		})
	}
}
