package sales

import (
	"fmt"
	"net/http"
	"time"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/sales/export?from=...&to=...
// Satışları kalem bazında Excel olarak indirir.
func ExportSalesHandler() fiber.Handler {
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

		var salesList []models.SaleHistory
		if err := dbq.Order("date ASC, id ASC").Find(&salesList).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satışlar listelenemedi")
		}

		f := excelize.NewFile()
		sheet := "Sheet1"

		f.SetCellValue(sheet, "A1", "Fiş No")
		f.SetCellValue(sheet, "B1", "Tarih")
		f.SetCellValue(sheet, "C1", "Ödeme")
		f.SetCellValue(sheet, "D1", "Kod")
		f.SetCellValue(sheet, "E1", "İsim")
		f.SetCellValue(sheet, "F1", "Birim Fiyat")
		f.SetCellValue(sheet, "G1", "Miktar")
		f.SetCellValue(sheet, "H1", "Kalem Toplamı")

		row := 2
		for _, sale := range salesList {
			for _, item := range sale.Items {
				f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sale.Number)
				f.SetCellValue(sheet, fmt.Sprintf("B%d", row), sale.Date.Format("2006-01-02 15:04:05"))
				f.SetCellValue(sheet, fmt.Sprintf("C%d", row), string(sale.PaymentType))
				f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.Code)
				f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.Name)
				f.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.Price)
				f.SetCellValue(sheet, fmt.Sprintf("G%d", row), item.Quantity)
				f.SetCellValue(sheet, fmt.Sprintf("H%d", row), item.Total)
				row++
			}
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", `attachment; filename="satislar.xlsx"`)

		if err := f.Write(c.Response().BodyWriter()); err != nil {
			return c.Status(http.StatusInternalServerError).SendString("Excel oluşturulamadı")
		}

		return nil
	}
}
