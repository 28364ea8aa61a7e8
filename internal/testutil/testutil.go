package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"magaza-backend/internal/auth"
	"magaza-backend/internal/config"
	"magaza-backend/internal/database"
	"magaza-backend/internal/idgen"
	"magaza-backend/internal/models"
	"magaza-backend/internal/server"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Env struct {
	App   *fiber.App
	DB    *gorm.DB
	Cfg   *config.Config
	Token string
}

// Setup: In-memory sqlite üzerinde tam uygulama kurar; testler gerçek route'lara
// app.Test ile istek atar.
func Setup(t *testing.T) *Env {
	return setup(t, false)
}

// SetupAllowNegativeStock: ALLOW_NEGATIVE_STOCK=true davranışını test etmek için.
func SetupAllowNegativeStock(t *testing.T) *Env {
	return setup(t, true)
}

func setup(t *testing.T, allowNegativeStock bool) *Env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("test veritabanı açılamadı: %v", err)
	}

	// In-memory sqlite bağlantı başına ayrı veritabanı tutar; tek bağlantıya sabitle
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB alınamadı: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migration hatası: %v", err)
	}

	database.DB = db
	idgen.Init()

	cfg := &config.Config{
		HTTPPort:           "0",
		JWTSecret:          "test-secret-test-secret-test-secret!",
		CORSOrigins:        "http://localhost:5173",
		AllowNegativeStock: allowNegativeStock,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("test1234"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("şifre hashlenemedi: %v", err)
	}
	user := models.User{
		Name:         "Test Admin",
		Email:        "admin@test.local",
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("test kullanıcısı oluşturulamadı: %v", err)
	}

	token, err := auth.GenerateToken(cfg.JWTSecret, &user)
	if err != nil {
		t.Fatalf("token oluşturulamadı: %v", err)
	}

	return &Env{
		App:   server.New(cfg),
		DB:    db,
		Cfg:   cfg,
		Token: token,
	}
}

// DoJSON: JSON gövdeli istek atar, yanıt gövdesini okur.
func (e *Env) DoJSON(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("gövde encode edilemedi: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.Token)

	resp, err := e.App.Test(req, -1)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("yanıt okunamadı: %v", err)
	}
	resp.Body.Close()

	return resp, raw
}

// DoRaw: Gövdeyi olduğu gibi gönderir (dizi/obje ayrımı testleri için).
func (e *Env) DoRaw(t *testing.T, method, path string, body []byte) (*http.Response, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.Token)

	resp, err := e.App.Test(req, -1)
	if err != nil {
		t.Fatalf("istek başarısız: %v", err)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("yanıt okunamadı: %v", err)
	}
	resp.Body.Close()

	return resp, raw
}

// Decode: JSON yanıtı hedefe çözer.
func Decode(t *testing.T, raw []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("yanıt çözümlenemedi: %v (gövde: %s)", err, raw)
	}
}
