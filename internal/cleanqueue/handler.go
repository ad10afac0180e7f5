package cleanqueue

import (
	"errors"
	"fmt"

	"mantar-backend/internal/auth"
	"mantar-backend/internal/database"
	"mantar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type QueueEntryResponse struct {
	SupplyID  uint   `json:"supply_id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	Pending   int    `json:"pending"`
	UpdatedAt string `json:"updated_at"`
}

// GET /api/clean-queue
// "Temizle (N)" rozetini süren bekleyen adetler.
func ListQueueHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var entries []models.CleanQueueEntry
		if err := database.DB.Where("user_id = ? AND pending > 0", userID).Order("name ASC").Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kuyruk listelenemedi")
		}

		resp := make([]QueueEntryResponse, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, QueueEntryResponse{
				SupplyID:  e.SupplyID,
				Name:      e.Name,
				Unit:      e.Unit,
				Pending:   e.Pending,
				UpdatedAt: e.UpdatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(resp)
	}
}

type CleanReturnRequest struct {
	ReturnedQty int `json:"returned_qty"`
}

// POST /api/clean-queue/:supplyId/return
func CleanReturnHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var supplyID uint
		if _, err := fmt.Sscan(c.Params("supplyId"), &supplyID); err != nil || supplyID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz tedarik ID")
		}

		var body CleanReturnRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		result, err := CleanReturn(userID, supplyID, body.ReturnedQty)
		if err != nil {
			if errors.Is(err, ErrInvalidReturn) {
				return fiber.NewError(fiber.StatusBadRequest, "İade miktarı 0 ile bekleyen adet arasında olmalı")
			}
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Kuyruk kaydı veya tedarik bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "İade işlenemedi")
		}

		return c.JSON(result)
	}
}

// POST /api/clean-queue/scan
func ScanBackfillHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		result, err := ScanBackfill(userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tarama tamamlanamadı")
		}
		return c.JSON(result)
	}
}
