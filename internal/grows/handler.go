// Package grows: Yetiştirme CRUD'u ve motoru tetikleyen iki yaşam döngüsü sınırı:
// tarif/batch değişikliğinde reconciliation, arşive geçişte temizlik kuyruğu.
package grows

import (
	"fmt"
	"strings"
	"time"

	"mantar-backend/internal/auth"
	"mantar-backend/internal/cleanqueue"
	"mantar-backend/internal/database"
	"mantar-backend/internal/models"
	"mantar-backend/internal/reconcile"

	"github.com/gofiber/fiber/v2"
)

type GrowRequest struct {
	Name         string   `json:"name"`
	RecipeID     *uint    `json:"recipe_id"`
	BatchCount   int      `json:"batch_count"`
	PerChildQty  *float64 `json:"per_child_qty"`
	PerChildUnit string   `json:"per_child_unit"`
	Stage        string   `json:"stage"`
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
	}
	return id, nil
}

func paramsOf(g *models.Grow) *reconcile.RecipeParams {
	if g.RecipeID == nil {
		return nil
	}
	return &reconcile.RecipeParams{
		RecipeID:     *g.RecipeID,
		BatchCount:   g.BatchCount,
		PerChildQty:  g.PerChildQty,
		PerChildUnit: g.PerChildUnit,
	}
}

// GET /api/grows
func ListGrowsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("user_id = ?", userID)
		if c.Query("archived") == "true" {
			dbq = dbq.Where("archived = ?", true)
		} else if c.Query("archived") == "false" {
			dbq = dbq.Where("archived = ?", false)
		}

		var grows []models.Grow
		if err := dbq.Order("created_at DESC").Find(&grows).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yetiştirmeler listelenemedi")
		}
		return c.JSON(grows)
	}
}

// POST /api/grows
// Tarif atanmışsa ilk tüketim burada yapılır (sadece "yeni" yarısıyla reconcile).
func CreateGrowHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body GrowRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "İsim zorunlu")
		}
		if body.BatchCount < 1 {
			body.BatchCount = 1
		}

		grow := models.Grow{
			UserID:       userID,
			Name:         body.Name,
			RecipeID:     body.RecipeID,
			BatchCount:   body.BatchCount,
			PerChildQty:  body.PerChildQty,
			PerChildUnit: body.PerChildUnit,
			Stage:        body.Stage,
			CleanGate:    models.CleanGateUngated,
		}

		if err := database.DB.Create(&grow).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yetiştirme oluşturulamadı")
		}

		if err := reconcile.ReconcileRecipeChange(userID, &grow.ID, nil, paramsOf(&grow)); err != nil {
			// Kısmi tüketim denetim kayıtlarından izlenebilir; kayıt oluştu
			return fiber.NewError(fiber.StatusInternalServerError, "Tedarik tüketimi tamamlanamadı, denetim kayıtlarını kontrol edin")
		}

		return c.Status(fiber.StatusCreated).JSON(grow)
	}
}

// PUT /api/grows/:id
// Tarif veya batch parametreleri değiştiyse eski tüketim iade edilir, yenisi uygulanır.
func UpdateGrowHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body GrowRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var grow models.Grow
		if err := database.DB.First(&grow, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Yetiştirme bulunamadı")
		}

		if body.BatchCount < 1 {
			body.BatchCount = 1
		}

		oldParams := paramsOf(&grow)

		grow.RecipeID = body.RecipeID
		grow.BatchCount = body.BatchCount
		grow.PerChildQty = body.PerChildQty
		grow.PerChildUnit = body.PerChildUnit
		if name := strings.TrimSpace(body.Name); name != "" {
			grow.Name = name
		}
		if body.Stage != "" {
			grow.Stage = body.Stage
		}

		newParams := paramsOf(&grow)

		if err := database.DB.Save(&grow).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yetiştirme güncellenemedi")
		}

		if recipeChanged(oldParams, newParams) {
			if err := reconcile.ReconcileRecipeChange(userID, &grow.ID, oldParams, newParams); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Reconciliation tamamlanamadı, denetim kayıtlarını kontrol edin")
			}
		}

		return c.JSON(grow)
	}
}

func recipeChanged(oldParams, newParams *reconcile.RecipeParams) bool {
	if oldParams == nil && newParams == nil {
		return false
	}
	if oldParams == nil || newParams == nil {
		return true
	}
	if oldParams.RecipeID != newParams.RecipeID || oldParams.BatchCount != newParams.BatchCount {
		return true
	}
	if oldParams.PerChildUnit != newParams.PerChildUnit {
		return true
	}
	op, np := oldParams.PerChildQty, newParams.PerChildQty
	if (op == nil) != (np == nil) {
		return true
	}
	return op != nil && *op != *np
}

// PUT /api/grows/:id/archive
// Arşiv geçişi temizlik kuyruğu enqueue'sunu tetikler. Enqueue'nin kendi kapısı
// olduğundan endpoint tekrar çağrılabilir; ikinci çağrı sıfır ekler.
func ArchiveGrowHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var grow models.Grow
		if err := database.DB.First(&grow, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Yetiştirme bulunamadı")
		}

		if !grow.Archived {
			now := time.Now()
			err := database.DB.Model(&grow).Updates(map[string]interface{}{
				"archived":    true,
				"archived_at": now,
			}).Error
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Yetiştirme arşivlenemedi")
			}
			grow.Archived = true
			grow.ArchivedAt = &now
		}

		result, err := cleanqueue.EnqueueForGrow(userID, grow.ID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Temizlik kuyruğu güncellenemedi")
		}

		return c.JSON(fiber.Map{
			"grow":     grow,
			"enqueued": result.Enqueued,
			"stamped":  result.Stamped,
		})
	}
}

// POST /api/grows/:id/reset-clean-gate
// Sadece bilinçli operatör müdahalesi: kapıyı açar, tekrar enqueue mümkün olur.
func ResetCleanGateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		if err := cleanqueue.ResetGate(userID, id); err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Yetiştirme bulunamadı")
		}
		return c.JSON(fiber.Map{"message": "Temizlik kapısı sıfırlandı"})
	}
}

// DELETE /api/grows/:id
func DeleteGrowHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		res := database.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Grow{})
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Yetiştirme silinemedi")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Yetiştirme bulunamadı")
		}
		return c.JSON(fiber.Map{"message": "Yetiştirme silindi"})
	}
}
