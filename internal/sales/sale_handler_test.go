package sales_test

import (
	"fmt"
	"net/http"
	"testing"

	"magaza-backend/internal/inventory"
	"magaza-backend/internal/models"
	"magaza-backend/internal/sales"
	"magaza-backend/internal/testutil"
)

func seedStock(t *testing.T, env *testutil.Env, code string, quantity, price float64) inventory.StockResponse {
	t.Helper()

	resp, raw := env.DoJSON(t, "POST", "/api/stocks", map[string]any{
		"code":           code,
		"name":           "Ürün " + code,
		"price":          price,
		"supplier_price": price * 0.7,
		"quantity":       quantity,
		"unit":           "adet",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("stok oluşturulamadı: %d (%s)", resp.StatusCode, raw)
	}

	var created inventory.StockResponse
	testutil.Decode(t, raw, &created)
	return created
}

func TestCreateSaleDecrementsStockAndLogsMovement(t *testing.T) {
	env := testutil.Setup(t)

	stock := seedStock(t, env, "S1", 10, 40)

	resp, raw := env.DoJSON(t, "POST", "/api/sales", map[string]any{
		"payment_type": "cash",
		"total":        120.0,
		"items": []map[string]any{
			{"code": "S1", "name": "Ürün S1", "price": 40.0, "quantity": 3.0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("satış başarısız: %d (%s)", resp.StatusCode, raw)
	}

	var sale sales.SaleResponse
	testutil.Decode(t, raw, &sale)
	if sale.Number == "" {
		t.Fatal("fiş numarası üretilmeliydi")
	}
	if len(sale.Items) != 1 || sale.Items[0].Total != 120 {
		t.Fatalf("kalem toplamı price*quantity olmalı: %+v", sale.Items)
	}

	var s models.Stock
	env.DB.First(&s, stock.ID)
	if s.Quantity != 7 {
		t.Fatalf("stok 7'ye düşmeliydi, gelen %.2f", s.Quantity)
	}

	var movements []models.StockMovement
	env.DB.Where("stock_id = ?", stock.ID).Find(&movements)
	if len(movements) != 1 {
		t.Fatalf("tek satış hareketi bekleniyordu, gelen %d", len(movements))
	}
	m := movements[0]
	if m.MovementType != models.MovementSale || m.Quantity != 3 {
		t.Fatalf("hareket sale/3 olmalı: %+v", m)
	}
	if m.SaleID == nil || *m.SaleID != sale.ID {
		t.Fatalf("hareket satışa bağlanmalı: %+v", m)
	}
}

func TestSaleItemsSnapshotSurviveStockEdit(t *testing.T) {
	env := testutil.Setup(t)

	stock := seedStock(t, env, "S2", 10, 40)

	resp, raw := env.DoJSON(t, "POST", "/api/sales", map[string]any{
		"payment_type": "card",
		"total":        40.0,
		"items": []map[string]any{
			{"code": "S2", "name": "Ürün S2", "price": 40.0, "quantity": 1.0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("satış başarısız: %d", resp.StatusCode)
	}
	var sale sales.SaleResponse
	testutil.Decode(t, raw, &sale)

	// Stoğun adı ve fiyatı sonradan değişirse kalem fotoğrafı bozulmaz
	resp, _ = env.DoJSON(t, "PUT", fmt.Sprintf("/api/stocks/%d", stock.ID), map[string]any{
		"code": "S2", "name": "Yeni Ad", "price": 99.0, "supplier_price": 50.0, "unit": "adet",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stok güncellenemedi: %d", resp.StatusCode)
	}

	resp, raw = env.DoJSON(t, "GET", fmt.Sprintf("/api/sales/%d", sale.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("satış okunamadı: %d", resp.StatusCode)
	}
	var got sales.SaleResponse
	testutil.Decode(t, raw, &got)
	if got.Items[0].Name != "Ürün S2" || got.Items[0].Price != 40 {
		t.Fatalf("kalem fotoğrafı değişmemeliydi: %+v", got.Items[0])
	}
}

func TestCreateSaleUnknownCodeRollsBackEverything(t *testing.T) {
	env := testutil.Setup(t)

	stock := seedStock(t, env, "S3", 10, 40)

	resp, _ := env.DoJSON(t, "POST", "/api/sales", map[string]any{
		"payment_type": "cash",
		"total":        80.0,
		"items": []map[string]any{
			{"code": "S3", "name": "Ürün S3", "price": 40.0, "quantity": 2.0},
			{"code": "YOK", "name": "Hayalet", "price": 40.0, "quantity": 1.0},
		},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("bilinmeyen kod 404 dönmeli: %d", resp.StatusCode)
	}

	// İlk kalem işlenmiş olsa da hiçbir şey kalıcı olmamalı
	var count int64
	env.DB.Model(&models.SaleHistory{}).Count(&count)
	if count != 0 {
		t.Fatalf("satış kaydı kalmamalıydı, %d satır var", count)
	}
	env.DB.Model(&models.SaleItem{}).Count(&count)
	if count != 0 {
		t.Fatalf("kalem kalmamalıydı, %d satır var", count)
	}
	env.DB.Model(&models.StockMovement{}).Count(&count)
	if count != 0 {
		t.Fatalf("hareket kalmamalıydı, %d satır var", count)
	}

	var s models.Stock
	env.DB.First(&s, stock.ID)
	if s.Quantity != 10 {
		t.Fatalf("stok değişmemeliydi, gelen %.2f", s.Quantity)
	}
}

func TestCreateSaleInsufficientStock(t *testing.T) {
	env := testutil.Setup(t)

	seedStock(t, env, "S4", 2, 40)

	resp, _ := env.DoJSON(t, "POST", "/api/sales", map[string]any{
		"payment_type": "cash",
		"total":        200.0,
		"items": []map[string]any{
			{"code": "S4", "name": "Ürün S4", "price": 40.0, "quantity": 5.0},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("yetersiz stok 400 dönmeli: %d", resp.StatusCode)
	}
}

func TestCreateSaleAllowsNegativeStockWhenEnabled(t *testing.T) {
	env := testutil.SetupAllowNegativeStock(t)

	stock := seedStock(t, env, "S5", 2, 40)

	resp, _ := env.DoJSON(t, "POST", "/api/sales", map[string]any{
		"payment_type": "cash",
		"total":        200.0,
		"items": []map[string]any{
			{"code": "S5", "name": "Ürün S5", "price": 40.0, "quantity": 5.0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("izinliyken satış geçmeliydi: %d", resp.StatusCode)
	}

	var s models.Stock
	env.DB.First(&s, stock.ID)
	if s.Quantity != -3 {
		t.Fatalf("stok -3 olmalı, gelen %.2f", s.Quantity)
	}
}

func TestDeleteSaleKeepsMovementsWithoutSaleRef(t *testing.T) {
	env := testutil.Setup(t)

	stock := seedStock(t, env, "S6", 10, 40)

	resp, raw := env.DoJSON(t, "POST", "/api/sales", map[string]any{
		"payment_type": "cash",
		"total":        40.0,
		"items": []map[string]any{
			{"code": "S6", "name": "Ürün S6", "price": 40.0, "quantity": 1.0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("satış başarısız: %d", resp.StatusCode)
	}
	var sale sales.SaleResponse
	testutil.Decode(t, raw, &sale)

	resp, _ = env.DoJSON(t, "DELETE", fmt.Sprintf("/api/sales/%d", sale.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("satış silinemedi: %d", resp.StatusCode)
	}

	var count int64
	env.DB.Model(&models.SaleItem{}).Where("sale_id = ?", sale.ID).Count(&count)
	if count != 0 {
		t.Fatalf("kalemler cascade ile silinmeliydi, %d satır var", count)
	}

	// Hareket kaydı kalır ama satış referansı düşer
	var movements []models.StockMovement
	env.DB.Where("stock_id = ?", stock.ID).Find(&movements)
	if len(movements) != 1 {
		t.Fatalf("hareket silinmemeliydi, gelen %d", len(movements))
	}
	if movements[0].SaleID != nil {
		t.Fatalf("sale_id NULL'a çekilmeliydi: %+v", movements[0])
	}
}

func TestUpdateSaleHeaderOnly(t *testing.T) {
	env := testutil.Setup(t)

	seedStock(t, env, "S7", 10, 40)

	resp, raw := env.DoJSON(t, "POST", "/api/sales", map[string]any{
		"payment_type": "cash",
		"total":        40.0,
		"items": []map[string]any{
			{"code": "S7", "name": "Ürün S7", "price": 40.0, "quantity": 1.0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("satış başarısız: %d", resp.StatusCode)
	}
	var sale sales.SaleResponse
	testutil.Decode(t, raw, &sale)

	resp, raw = env.DoJSON(t, "PUT", fmt.Sprintf("/api/sales/%d", sale.ID), map[string]any{
		"payment_type": "card",
		"total":        45.0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("satış güncellenemedi: %d (%s)", resp.StatusCode, raw)
	}
	var got sales.SaleResponse
	testutil.Decode(t, raw, &got)
	if got.PaymentType != models.PaymentCard || got.Total != 45 {
		t.Fatalf("başlık güncellenmeliydi: %+v", got)
	}
	if got.Number != sale.Number || len(got.Items) != 1 {
		t.Fatalf("numara ve kalemler korunmalıydı: %+v", got)
	}
}
