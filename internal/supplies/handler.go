package supplies

import (
	"errors"
	"fmt"
	"strings"

	"mantar-backend/internal/audit"
	"mantar-backend/internal/auth"
	"mantar-backend/internal/database"
	"mantar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateSupplyRequest struct {
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Unit              string  `json:"unit"`
	Quantity          float64 `json:"quantity"`
	TotalPrice        float64 `json:"total_price"` // ilk alımın toplam fiyatı
	LowStockThreshold float64 `json:"low_stock_threshold"`
	ReorderLink       string  `json:"reorder_link"`
}

type UpdateSupplyRequest struct {
	Name              *string  `json:"name"`
	Category          *string  `json:"category"`
	Unit              *string  `json:"unit"`
	LowStockThreshold *float64 `json:"low_stock_threshold"`
	ReorderLink       *string  `json:"reorder_link"`
}

type SupplyResponse struct {
	ID                uint    `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Unit              string  `json:"unit"`
	Quantity          float64 `json:"quantity"`
	Cost              float64 `json:"cost"`
	LowStockThreshold float64 `json:"low_stock_threshold"`
	ReorderLink       string  `json:"reorder_link"`
	Empty             bool    `json:"empty"`
	Low               bool    `json:"low"`
}

func toResponse(s models.Supply) SupplyResponse {
	return SupplyResponse{
		ID:                s.ID,
		Name:              s.Name,
		Category:          string(s.Category),
		Unit:              s.Unit,
		Quantity:          s.Quantity,
		Cost:              s.Cost,
		LowStockThreshold: s.LowStockThreshold,
		ReorderLink:       s.ReorderLink,
		Empty:             s.Quantity <= 0,
		Low:               s.Quantity > 0 && s.Quantity <= s.LowStockThreshold,
	}
}

func validCategory(c string) bool {
	switch models.SupplyCategory(c) {
	case models.SupplyCategorySubstrate, models.SupplyCategoryContainer,
		models.SupplyCategoryTool, models.SupplyCategorySupplement,
		models.SupplyCategoryLabor:
		return true
	}
	return c == ""
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
	}
	return id, nil
}

// GET /api/supplies
func ListSuppliesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var supplies []models.Supply
		if err := database.DB.Where("user_id = ?", userID).Order("name ASC").Find(&supplies).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarikler listelenemedi")
		}

		resp := make([]SupplyResponse, 0, len(supplies))
		for _, s := range supplies {
			resp = append(resp, toResponse(s))
		}
		return c.JSON(resp)
	}
}

// POST /api/supplies
func CreateSupplyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body CreateSupplyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" || body.Unit == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim ve birim zorunlu")
		}
		if body.Quantity < 0 || body.TotalPrice < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Miktar ve fiyat negatif olamaz")
		}
		if !validCategory(body.Category) {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kategori")
		}

		// Kilitli birim maliyet ilk alımdan türetilir
		unitCost := body.TotalPrice
		if body.Quantity > 0 {
			unitCost = body.TotalPrice / body.Quantity
		}

		supply := models.Supply{
			UserID:            userID,
			Name:              body.Name,
			Category:          models.SupplyCategory(body.Category),
			Unit:              body.Unit,
			Quantity:          body.Quantity,
			Cost:              unitCost,
			LowStockThreshold: body.LowStockThreshold,
			ReorderLink:       body.ReorderLink,
			LastPurchaseTotal: body.TotalPrice,
			LastPurchaseQty:   body.Quantity,
		}

		if err := database.DB.Create(&supply).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarik oluşturulamadı")
		}

		rec := audit.NewRecord(userID, supply.ID, models.SupplyAuditAdd, supply.Quantity, supply.Unit, &supply.Cost)
		rec.Note = "İlk tedarik girişi"
		if err := audit.Write(database.DB, &rec); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		return c.Status(fiber.StatusCreated).JSON(toResponse(supply))
	}
}

// PUT /api/supplies/:id
func UpdateSupplyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body UpdateSupplyRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var supply models.Supply
		if err := database.DB.First(&supply, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tedarik bulunamadı")
		}

		updates := map[string]interface{}{}
		if body.Name != nil && strings.TrimSpace(*body.Name) != "" {
			updates["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Category != nil {
			if !validCategory(*body.Category) {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz kategori")
			}
			updates["category"] = *body.Category
		}
		if body.Unit != nil && *body.Unit != "" {
			updates["unit"] = *body.Unit
		}
		if body.LowStockThreshold != nil {
			updates["low_stock_threshold"] = *body.LowStockThreshold
		}
		if body.ReorderLink != nil {
			updates["reorder_link"] = *body.ReorderLink
		}

		if len(updates) > 0 {
			if err := database.DB.Model(&supply).Updates(updates).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Tedarik güncellenemedi")
			}

			rec := audit.NewRecord(userID, supply.ID, models.SupplyAuditEdit, 0, supply.Unit, nil)
			rec.Note = "Tedarik bilgileri güncellendi"
			if err := audit.Write(database.DB, &rec); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}

		return c.JSON(toResponse(supply))
	}
}

// DELETE /api/supplies/:id
func DeleteSupplyHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		if err := SoftDelete(userID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Tedarik bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarik silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Tedarik silindi"})
	}
}

type RestockRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// POST /api/supplies/:id/restock
func RestockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body RestockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		note := body.Note
		if note == "" {
			note = "Manuel stok girişi"
		}

		supply, err := Restock(userID, id, body.Amount, note)
		if err != nil {
			if errors.Is(err, ErrInvalidAmount) {
				return fiber.NewError(fiber.StatusBadRequest, "Miktar pozitif olmalı")
			}
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Tedarik bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Stok girişi yapılamadı")
		}

		return c.JSON(toResponse(*supply))
	}
}

type RepriceRequest struct {
	TotalPrice   float64 `json:"total_price"`
	PurchasedQty float64 `json:"purchased_qty"`
}

// POST /api/supplies/:id/reprice
func RepriceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body RepriceRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		supply, err := Reprice(userID, id, body.TotalPrice, body.PurchasedQty)
		if err != nil {
			if errors.Is(err, ErrInvalidAmount) {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat ve miktar negatif olamaz")
			}
			if errors.Is(err, ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "Tedarik bulunamadı")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Fiyat güncellenemedi")
		}

		return c.JSON(toResponse(*supply))
	}
}
