package inventory_test

import (
	"fmt"
	"net/http"
	"testing"

	"magaza-backend/internal/inventory"
	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

func createStock(t *testing.T, env *testutil.Env, code string, quantity float64) inventory.StockResponse {
	t.Helper()

	resp, raw := env.DoJSON(t, "POST", "/api/stocks", map[string]any{
		"code":           code,
		"name":           "Ürün " + code,
		"price":          25.0,
		"supplier_price": 18.0,
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

func TestFixedQuantityStampedAtCreate(t *testing.T) {
	env := testutil.Setup(t)

	created := createStock(t, env, "A1", 10)
	if created.FixedQuantity != 10 {
		t.Fatalf("fixed_quantity oluşturmadaki miktara eşit olmalı: %+v", created)
	}

	// Delta uygula, sonra mutlak değer ata; fixed_quantity kıpırdamamalı
	resp, _ := env.DoJSON(t, "PUT", "/api/stocks/by-code/A1", map[string]any{"delta": 5.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("adjust başarısız: %d", resp.StatusCode)
	}

	resp, _ = env.DoJSON(t, "PATCH", fmt.Sprintf("/api/stocks/%d/update-quantity", created.ID), map[string]any{"quantity": 7.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update-quantity başarısız: %d", resp.StatusCode)
	}

	resp, raw := env.DoJSON(t, "GET", fmt.Sprintf("/api/stocks/%d", created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stok okunamadı: %d", resp.StatusCode)
	}
	var got inventory.StockResponse
	testutil.Decode(t, raw, &got)
	if got.Quantity != 7 {
		t.Fatalf("quantity 7 olmalı, gelen %.2f", got.Quantity)
	}
	if got.FixedQuantity != 10 {
		t.Fatalf("fixed_quantity hiç değişmemeli, gelen %.2f", got.FixedQuantity)
	}
}

func TestBulkCreateAndByCode(t *testing.T) {
	env := testutil.Setup(t)

	body := []byte(`[
		{"code":"B1","name":"Ürün B1","price":10,"supplier_price":7,"quantity":5,"unit":"adet"},
		{"code":"B2","name":"Ürün B2","price":12,"supplier_price":8,"quantity":3,"unit":"kg"}
	]`)
	resp, raw := env.DoRaw(t, "POST", "/api/stocks", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("bulk create başarısız: %d (%s)", resp.StatusCode, raw)
	}
	var created []inventory.StockResponse
	testutil.Decode(t, raw, &created)
	if len(created) != 2 {
		t.Fatalf("2 stok bekleniyordu, gelen %d", len(created))
	}

	resp, raw = env.DoJSON(t, "GET", "/api/stocks/by-code?code=B2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("by-code başarısız: %d", resp.StatusCode)
	}
	var matched []inventory.StockResponse
	testutil.Decode(t, raw, &matched)
	if len(matched) != 1 || matched[0].Code != "B2" {
		t.Fatalf("birebir kod eşleşmesi bekleniyordu: %+v", matched)
	}

	// Kompozit kod aynen saklanır ve aynen eşleşir
	composite := createStock(t, env, "C1,C2", 4)
	resp, raw = env.DoJSON(t, "GET", "/api/stocks/by-code?code=C1,C2", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("by-code başarısız: %d", resp.StatusCode)
	}
	testutil.Decode(t, raw, &matched)
	if len(matched) != 1 || matched[0].ID != composite.ID {
		t.Fatalf("kompozit kod birebir eşleşmeliydi: %+v", matched)
	}

	resp, raw = env.DoJSON(t, "GET", "/api/stocks/by-code?code=C1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("by-code başarısız: %d", resp.StatusCode)
	}
	testutil.Decode(t, raw, &matched)
	if len(matched) != 0 {
		t.Fatalf("parça kod eşleşmemeliydi: %+v", matched)
	}
}

func TestAdjustGuardsNegativeStock(t *testing.T) {
	env := testutil.Setup(t)

	created := createStock(t, env, "D1", 3)

	resp, _ := env.DoJSON(t, "PUT", "/api/stocks/by-code/D1", map[string]any{"delta": -5.0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("eksiye düşen delta reddedilmeli: %d", resp.StatusCode)
	}

	// Reddedilen işlem ne stok değiştirmeli ne hareket yazmalı
	var count int64
	env.DB.Model(&models.StockMovement{}).Where("stock_id = ?", created.ID).Count(&count)
	if count != 0 {
		t.Fatalf("hareket yazılmamalıydı, %d satır var", count)
	}
}

func TestAdjustAllowedWhenNegativeStockEnabled(t *testing.T) {
	env := testutil.SetupAllowNegativeStock(t)

	createStock(t, env, "D2", 3)

	resp, raw := env.DoJSON(t, "PUT", "/api/stocks/by-code/D2", map[string]any{"delta": -5.0})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("izinliyken eksiye düşebilmeli: %d (%s)", resp.StatusCode, raw)
	}
	var got inventory.StockResponse
	testutil.Decode(t, raw, &got)
	if got.Quantity != -2 {
		t.Fatalf("quantity -2 olmalı, gelen %.2f", got.Quantity)
	}
}

func TestQuantityChangeWritesExactlyOneMovement(t *testing.T) {
	env := testutil.Setup(t)

	created := createStock(t, env, "E1", 10)

	// pozitif delta → "in"
	env.DoJSON(t, "PUT", "/api/stocks/by-code/E1", map[string]any{"delta": 4.0, "comment": "Yeni parti"})
	// negatif delta → "adjust"
	env.DoJSON(t, "PUT", "/api/stocks/by-code/E1", map[string]any{"delta": -2.0})
	// mutlak atama → ima edilen delta
	env.DoJSON(t, "PATCH", fmt.Sprintf("/api/stocks/%d/update-quantity", created.ID), map[string]any{"quantity": 20.0})
	// aynı değeri atamak hareket üretmez
	env.DoJSON(t, "PATCH", fmt.Sprintf("/api/stocks/%d/update-quantity", created.ID), map[string]any{"quantity": 20.0})

	var movements []models.StockMovement
	env.DB.Where("stock_id = ?", created.ID).Order("id ASC").Find(&movements)
	if len(movements) != 3 {
		t.Fatalf("3 hareket bekleniyordu, gelen %d", len(movements))
	}
	if movements[0].MovementType != models.MovementIn || movements[0].Quantity != 4 {
		t.Fatalf("ilk hareket in/4 olmalı: %+v", movements[0])
	}
	if movements[1].MovementType != models.MovementAdjust || movements[1].Quantity != 2 {
		t.Fatalf("ikinci hareket adjust/2 olmalı: %+v", movements[1])
	}
	if movements[2].MovementType != models.MovementIn || movements[2].Quantity != 8 {
		t.Fatalf("üçüncü hareket in/8 olmalı (12 → 20): %+v", movements[2])
	}
}

func TestCreateStockResponseCarriesCategory(t *testing.T) {
	env := testutil.Setup(t)

	resp, raw := env.DoJSON(t, "POST", "/api/categories", map[string]any{"name": "Gıda"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("kategori oluşturulamadı: %d", resp.StatusCode)
	}
	var cat inventory.CategoryResponse
	testutil.Decode(t, raw, &cat)

	// Tek obje: 201 yanıtı da GET de kategoriyi dolu dönmeli
	resp, raw = env.DoJSON(t, "POST", "/api/stocks", map[string]any{
		"code": "K1", "name": "Makarna", "price": 8.0, "supplier_price": 5.0,
		"quantity": 10.0, "unit": "adet", "category_id": cat.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("stok oluşturulamadı: %d (%s)", resp.StatusCode, raw)
	}
	var created inventory.StockResponse
	testutil.Decode(t, raw, &created)
	if created.Category == nil || created.Category.Name != "Gıda" {
		t.Fatalf("create yanıtı kategoriyi taşımalı: %+v", created)
	}

	resp, raw = env.DoJSON(t, "GET", fmt.Sprintf("/api/stocks/%d", created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stok okunamadı: %d", resp.StatusCode)
	}
	var got inventory.StockResponse
	testutil.Decode(t, raw, &got)
	if got.Category == nil || got.Category.ID != created.Category.ID {
		t.Fatalf("create ve GET aynı kategoriyi dönmeli: %+v / %+v", created.Category, got.Category)
	}

	// Dizi gövdesi de aynı şekilde davranmalı
	body := []byte(fmt.Sprintf(`[
		{"code":"K2","name":"Pirinç","price":12,"supplier_price":9,"quantity":5,"unit":"kg","category_id":%d},
		{"code":"K3","name":"Tuz","price":3,"supplier_price":2,"quantity":20,"unit":"adet"}
	]`, cat.ID))
	resp, raw = env.DoRaw(t, "POST", "/api/stocks", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("bulk create başarısız: %d (%s)", resp.StatusCode, raw)
	}
	var bulk []inventory.StockResponse
	testutil.Decode(t, raw, &bulk)
	if len(bulk) != 2 {
		t.Fatalf("2 stok bekleniyordu, gelen %d", len(bulk))
	}
	if bulk[0].Code != "K2" || bulk[0].Category == nil || bulk[0].Category.ID != cat.ID {
		t.Fatalf("ilk kayıt kategorisiyle dönmeli: %+v", bulk[0])
	}
	if bulk[1].Code != "K3" || bulk[1].Category != nil {
		t.Fatalf("kategorisiz kayıt null kategoriyle dönmeli: %+v", bulk[1])
	}
}

func TestCategoryDeleteClearsStockReference(t *testing.T) {
	env := testutil.Setup(t)

	resp, raw := env.DoJSON(t, "POST", "/api/categories", map[string]any{"name": "İçecek"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("kategori oluşturulamadı: %d", resp.StatusCode)
	}
	var cat inventory.CategoryResponse
	testutil.Decode(t, raw, &cat)

	resp, raw = env.DoJSON(t, "POST", "/api/stocks", map[string]any{
		"code": "F1", "name": "Su", "price": 5.0, "supplier_price": 3.0,
		"quantity": 10.0, "unit": "adet", "category_id": cat.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("stok oluşturulamadı: %d (%s)", resp.StatusCode, raw)
	}
	var created inventory.StockResponse
	testutil.Decode(t, raw, &created)
	if created.Category == nil || created.Category.ID != cat.ID {
		t.Fatalf("kategori bağlanmalıydı: %+v", created)
	}

	resp, _ = env.DoJSON(t, "DELETE", fmt.Sprintf("/api/categories/%d", cat.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("kategori silinemedi: %d", resp.StatusCode)
	}

	// Stok silinmez, kategori referansı NULL'a çekilir
	resp, raw = env.DoJSON(t, "GET", fmt.Sprintf("/api/stocks/%d", created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stok silinmemeliydi: %d", resp.StatusCode)
	}
	var got inventory.StockResponse
	testutil.Decode(t, raw, &got)
	if got.Category != nil {
		t.Fatalf("kategori referansı temizlenmeliydi: %+v", got)
	}
}

func TestStockExportReturnsExcel(t *testing.T) {
	env := testutil.Setup(t)

	createStock(t, env, "G1", 2)

	resp, raw := env.DoJSON(t, "GET", "/api/stocks/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export başarısız: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("beklenmeyen content-type: %s", ct)
	}
	if len(raw) == 0 {
		t.Fatal("boş dosya döndü")
	}
}
