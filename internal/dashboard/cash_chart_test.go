package dashboard_test

import (
	"net/http"
	"testing"
	"time"

	"magaza-backend/internal/dashboard"
	"magaza-backend/internal/testutil"
)

func TestCashChartEmptyIsZeroFilled(t *testing.T) {
	env := testutil.Setup(t)

	resp, raw := env.DoJSON(t, "GET", "/api/dashboard/cash-chart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("grafik başarısız: %d (%s)", resp.StatusCode, raw)
	}

	var chart dashboard.CashChartResponse
	testutil.Decode(t, raw, &chart)
	if len(chart.Points) != 7 {
		t.Fatalf("varsayılan 7 nokta bekleniyordu, gelen %d", len(chart.Points))
	}
	for _, p := range chart.Points {
		if p.Income != 0 || p.Expense != 0 || p.Net != 0 {
			t.Fatalf("boş defterde tüm noktalar sıfır olmalı: %+v", p)
		}
	}
	if chart.To != time.Now().Format("2006-01-02") {
		t.Fatalf("aralık bugünde bitmeli: %s", chart.To)
	}
}

func TestCashChartAggregatesPerDay(t *testing.T) {
	env := testutil.Setup(t)

	today := time.Now().Format("2006-01-02")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	for _, body := range []map[string]any{
		{"type": "income", "amount": 100.0, "name": "Gün sonu", "date": today},
		{"type": "expense", "amount": 30.0, "name": "Kargo", "date": today},
		{"type": "expense", "amount": 20.0, "name": "Temizlik", "date": yesterday},
	} {
		resp, raw := env.DoJSON(t, "POST", "/api/transactions", body)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("işlem kaydedilemedi: %d (%s)", resp.StatusCode, raw)
		}
	}

	resp, raw := env.DoJSON(t, "GET", "/api/dashboard/cash-chart?count=3", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("grafik başarısız: %d", resp.StatusCode)
	}

	var chart dashboard.CashChartResponse
	testutil.Decode(t, raw, &chart)
	if len(chart.Points) != 3 {
		t.Fatalf("3 nokta bekleniyordu, gelen %d", len(chart.Points))
	}

	byLabel := make(map[string]dashboard.CashChartPoint, len(chart.Points))
	for _, p := range chart.Points {
		byLabel[p.Label] = p
	}

	if p := byLabel[today]; p.Income != 100 || p.Expense != 30 || p.Net != 70 {
		t.Fatalf("bugün 100/30/70 olmalı: %+v", p)
	}
	if p := byLabel[yesterday]; p.Income != 0 || p.Expense != 20 || p.Net != -20 {
		t.Fatalf("dün 0/20/-20 olmalı: %+v", p)
	}

	g := chart.GrandTotals
	if g.Income != 100 || g.Expense != 50 || g.Net != 50 {
		t.Fatalf("genel toplam 100/50/50 olmalı: %+v", g)
	}
}

func TestCashChartRejectsBadCount(t *testing.T) {
	env := testutil.Setup(t)

	for _, q := range []string{"0", "-3", "abc"} {
		resp, _ := env.DoJSON(t, "GET", "/api/dashboard/cash-chart?count="+q, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("count=%s reddedilmeliydi: %d", q, resp.StatusCode)
		}
	}
}
