package cashbox

import (
	"errors"
	"fmt"
	"time"

	"magaza-backend/internal/audit"
	"magaza-backend/internal/auth"
	"magaza-backend/internal/database"
	"magaza-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OpenSessionRequest struct {
	OpeningSum float64 `json:"opening_sum"`
}

type CloseSessionRequest struct {
	ClosingSum float64 `json:"closing_sum"`
}

type SessionResponse struct {
	ID         uint     `json:"id"`
	OpenedAt   string   `json:"opened_at"`
	ClosedAt   *string  `json:"closed_at"`
	OpeningSum float64  `json:"opening_sum"`
	ClosingSum *float64 `json:"closing_sum"`
	IsOpen     bool     `json:"is_open"`
}

func toSessionResponse(s models.CashSession) SessionResponse {
	resp := SessionResponse{
		ID:         s.ID,
		OpenedAt:   s.OpenedAt.Format("2006-01-02 15:04:05"),
		OpeningSum: s.OpeningSum,
		ClosingSum: s.ClosingSum,
		IsOpen:     s.IsOpen(),
	}
	if s.ClosedAt != nil {
		closedAt := s.ClosedAt.Format("2006-01-02 15:04:05")
		resp.ClosedAt = &closedAt
	}
	return resp
}

// POST /api/cash-sessions/open
// Açık oturum varken ikinci oturum açılamaz. Kayıt öncesi kontrolün yanında
// closed_at IS NULL üzerindeki partial unique index eşzamanlı open isteklerini
// de durdurur; unique ihlali aynı çakışma mesajına çevrilir.
func OpenSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OpenSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.OpeningSum < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Açılış tutarı negatif olamaz")
		}

		var openCount int64
		if err := database.DB.Model(&models.CashSession{}).
			Where("closed_at IS NULL").
			Count(&openCount).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oturum kontrol edilemedi")
		}
		if openCount > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Zaten açık bir kasa oturumu var")
		}

		session := models.CashSession{
			OpenedAt:   time.Now(),
			OpeningSum: body.OpeningSum,
		}

		if err := database.DB.Create(&session).Error; err != nil {
			// Yarışı kaybeden istek index'e takılır; diğer hatalar çakışma değildir
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusBadRequest, "Zaten açık bir kasa oturumu var")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Oturum açılamadı")
		}

		if userID, userName, err := auth.GetUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "cash_session",
				EntityID:    session.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Kasa açıldı: açılış %.2f", session.OpeningSum),
				After:       session,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toSessionResponse(session))
	}
}

// POST /api/cash-sessions/:id/close
// Kapanış tutarı ve zamanı tek transaction içinde damgalanır. Kapalı oturum
// tekrar açılamaz; Closed son duraktır.
func CloseSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var body CloseSessionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ClosingSum < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Kapanış tutarı negatif olamaz")
		}

		var session models.CashSession
		if err := database.DB.First(&session, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Oturum bulunamadı")
		}

		if !session.IsOpen() {
			return fiber.NewError(fiber.StatusBadRequest, "Oturum zaten kapatılmış")
		}

		now := time.Now()
		txErr := database.DB.Transaction(func(tx *gorm.DB) error {
			session.ClosedAt = &now
			session.ClosingSum = &body.ClosingSum
			return tx.Save(&session).Error
		})
		if txErr != nil {
			var fe *fiber.Error
			if errors.As(txErr, &fe) {
				return fe
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Oturum kapatılamadı")
		}

		if userID, userName, err := auth.GetUserInfo(c); err == nil {
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "cash_session",
				EntityID:    session.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Kasa kapatıldı: kapanış %.2f", body.ClosingSum),
				After:       session,
			})
		}

		return c.JSON(toSessionResponse(session))
	}
}

// GET /api/cash-sessions?open=true
func ListSessionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.CashSession{})

		if openStr := c.Query("open"); openStr != "" {
			switch openStr {
			case "true":
				dbq = dbq.Where("closed_at IS NULL")
			case "false":
				dbq = dbq.Where("closed_at IS NOT NULL")
			default:
				return fiber.NewError(fiber.StatusBadRequest, "open parametresi true|false olmalı")
			}
		}

		var sessions []models.CashSession
		if err := dbq.Order("opened_at DESC, id DESC").Find(&sessions).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oturumlar listelenemedi")
		}

		resp := make([]SessionResponse, 0, len(sessions))
		for _, s := range sessions {
			resp = append(resp, toSessionResponse(s))
		}
		return c.JSON(resp)
	}
}

// GET /api/cash-sessions/:id
func GetSessionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		var session models.CashSession
		if err := database.DB.First(&session, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Oturum bulunamadı")
		}

		return c.JSON(toSessionResponse(session))
	}
}
