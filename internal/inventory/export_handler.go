package inventory

import (
	"fmt"
	"net/http"

	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/stocks/export
// Mevcut stok listesini Excel olarak indirir.
func ExportStocksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var stocks []models.Stock
		if err := database.DB.Preload("Category").Order("code ASC").Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stoklar listelenemedi")
		}

		f := excelize.NewFile()
		sheet := "Sheet1"

		f.SetCellValue(sheet, "A1", "Kod")
		f.SetCellValue(sheet, "B1", "İsim")
		f.SetCellValue(sheet, "C1", "Kategori")
		f.SetCellValue(sheet, "D1", "Birim")
		f.SetCellValue(sheet, "E1", "Fiyat")
		f.SetCellValue(sheet, "F1", "Tedarikçi Fiyatı")
		f.SetCellValue(sheet, "G1", "Miktar")
		f.SetCellValue(sheet, "H1", "İlk Giriş Miktarı")
		f.SetCellValue(sheet, "I1", "Giriş Tarihi")

		for i, s := range stocks {
			row := i + 2
			categoryName := ""
			if s.Category != nil {
				categoryName = s.Category.Name
			}
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), s.Code)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), s.Name)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), categoryName)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.Unit)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), s.Price)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), s.SupplierPrice)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), s.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), s.FixedQuantity)
			f.SetCellValue(sheet, fmt.Sprintf("I%d", row), s.DateAdded.Format("2006-01-02"))
		}

		c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set("Content-Disposition", `attachment; filename="stoklar.xlsx"`)

		if err := f.Write(c.Response().BodyWriter()); err != nil {
			return c.Status(http.StatusInternalServerError).SendString("Excel oluşturulamadı")
		}

		return nil
	}
}
