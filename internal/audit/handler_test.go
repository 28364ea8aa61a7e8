package audit_test

import (
	"fmt"
	"net/http"
	"testing"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/models"
	"magaza-backend/internal/testutil"
)

func TestSaleLifecycleIsAudited(t *testing.T) {
	env := testutil.Setup(t)

	resp, raw := env.DoJSON(t, "POST", "/api/stocks", map[string]any{
		"code": "A1", "name": "Ürün A1", "price": 10.0, "supplier_price": 7.0,
		"quantity": 5.0, "unit": "adet",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("stok oluşturulamadı: %d", resp.StatusCode)
	}

	resp, raw = env.DoJSON(t, "POST", "/api/sales", map[string]any{
		"payment_type": "cash",
		"total":        20.0,
		"items": []map[string]any{
			{"code": "A1", "name": "Ürün A1", "price": 10.0, "quantity": 2.0},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("satış başarısız: %d (%s)", resp.StatusCode, raw)
	}
	var sale struct {
		ID uint `json:"id"`
	}
	testutil.Decode(t, raw, &sale)

	resp, _ = env.DoJSON(t, "DELETE", fmt.Sprintf("/api/sales/%d", sale.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("satış silinemedi: %d", resp.StatusCode)
	}

	resp, raw = env.DoJSON(t, "GET", fmt.Sprintf("/api/audit-logs?entity_type=sale&entity_id=%d", sale.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("loglar listelenemedi: %d", resp.StatusCode)
	}
	var logs []audit.AuditLogResponse
	testutil.Decode(t, raw, &logs)
	if len(logs) != 2 {
		t.Fatalf("create ve delete logu bekleniyordu, gelen %d", len(logs))
	}
	actions := map[models.AuditAction]bool{}
	for _, log := range logs {
		actions[log.Action] = true
		if log.UserName != "Test Admin" {
			t.Fatalf("log kullanıcı adını taşımalı: %+v", log)
		}
	}
	if !actions[models.AuditActionCreate] || !actions[models.AuditActionDelete] {
		t.Fatalf("create ve delete aksiyonları bekleniyordu: %+v", logs)
	}
}

func TestAuditLogBeforeAfterPayloads(t *testing.T) {
	env := testutil.Setup(t)

	resp, _ := env.DoJSON(t, "POST", "/api/cash-sessions/open", map[string]any{"opening_sum": 200.0})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("oturum açılamadı: %d", resp.StatusCode)
	}

	var logs []models.AuditLog
	if err := env.DB.Where("entity_type = ?", "cash_session").Find(&logs).Error; err != nil {
		t.Fatalf("loglar okunamadı: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("tek log bekleniyordu, gelen %d", len(logs))
	}
	if logs[0].BeforeData != "null" {
		t.Fatalf("create logunda before 'null' olmalı: %q", logs[0].BeforeData)
	}
	if logs[0].AfterData == "" || logs[0].AfterData == "null" {
		t.Fatalf("create logunda after dolu olmalı: %q", logs[0].AfterData)
	}
}
