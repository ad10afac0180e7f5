package recipes

import (
	"fmt"
	"strings"

	"mantar-backend/internal/auth"
	"mantar-backend/internal/database"
	"mantar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RecipeItemRequest struct {
	SupplyID uint     `json:"supply_id"`
	Amount   float64  `json:"amount"`
	Unit     string   `json:"unit"`
	PerChild *float64 `json:"per_child"`
}

type RecipeRequest struct {
	Name      string              `json:"name"`
	YieldQty  float64             `json:"yield_qty"`
	YieldUnit string              `json:"yield_unit"`
	Items     []RecipeItemRequest `json:"items"`
}

func parseIDParam(c *fiber.Ctx) (uint, error) {
	var id uint
	if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
	}
	return id, nil
}

func buildItems(recipeID uint, reqs []RecipeItemRequest) []models.RecipeItem {
	items := make([]models.RecipeItem, 0, len(reqs))
	for _, it := range reqs {
		if it.SupplyID == 0 || it.Amount <= 0 {
			continue // kullanılamaz satırlar sessizce atlanır
		}
		items = append(items, models.RecipeItem{
			RecipeID: recipeID,
			SupplyID: it.SupplyID,
			Amount:   it.Amount,
			Unit:     it.Unit,
			PerChild: it.PerChild,
		})
	}
	return items
}

// GET /api/recipes
func ListRecipesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var list []models.Recipe
		if err := database.DB.Preload("Items").Where("user_id = ?", userID).Order("name ASC").Find(&list).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tarifler listelenemedi")
		}
		return c.JSON(list)
	}
}

// POST /api/recipes
func CreateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Tarif ismi zorunlu")
		}
		if body.YieldQty < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Verim negatif olamaz")
		}

		recipe := models.Recipe{
			UserID:    userID,
			Name:      body.Name,
			YieldQty:  body.YieldQty,
			YieldUnit: body.YieldUnit,
		}

		if err := database.DB.Create(&recipe).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tarif oluşturulamadı")
		}

		items := buildItems(recipe.ID, body.Items)
		if len(items) > 0 {
			if err := database.DB.Create(&items).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Tarif satırları kaydedilemedi")
			}
		}
		recipe.Items = items

		return c.Status(fiber.StatusCreated).JSON(recipe)
	}
}

// PUT /api/recipes/:id
// Satır listesi komple değiştirilir. Geçmiş tüketim kayıtları HESAPLANMIŞ
// miktarları taşıdığı için tarif düzenlemek eski denetim kayıtlarını değiştirmez.
func UpdateRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var body RecipeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		var recipe models.Recipe
		if err := database.DB.First(&recipe, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tarif bulunamadı")
		}

		updates := map[string]interface{}{
			"yield_qty":  body.YieldQty,
			"yield_unit": body.YieldUnit,
		}
		if name := strings.TrimSpace(body.Name); name != "" {
			updates["name"] = name
		}
		if err := database.DB.Model(&recipe).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tarif güncellenemedi")
		}

		if err := database.DB.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeItem{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tarif satırları güncellenemedi")
		}
		items := buildItems(recipe.ID, body.Items)
		if len(items) > 0 {
			if err := database.DB.Create(&items).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Tarif satırları kaydedilemedi")
			}
		}
		recipe.Items = items

		return c.JSON(recipe)
	}
}

// DELETE /api/recipes/:id
func DeleteRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var recipe models.Recipe
		if err := database.DB.First(&recipe, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tarif bulunamadı")
		}

		tx := database.DB.Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem başlatılamadı")
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeItem{}).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Tarif satırları silinemedi")
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "Tarif silinemedi")
		}
		if err := tx.Commit().Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlem tamamlanamadı")
		}

		return c.JSON(fiber.Map{"message": "Tarif silindi"})
	}
}

// POST /api/recipes/:id/clone
func CloneRecipeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		id, err := parseIDParam(c)
		if err != nil {
			return err
		}

		var src models.Recipe
		if err := database.DB.Preload("Items").First(&src, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Tarif bulunamadı")
		}

		clone := models.Recipe{
			UserID:    userID,
			Name:      src.Name + " (kopya)",
			YieldQty:  src.YieldQty,
			YieldUnit: src.YieldUnit,
		}
		if err := database.DB.Create(&clone).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Tarif kopyalanamadı")
		}

		if len(src.Items) > 0 {
			items := make([]models.RecipeItem, 0, len(src.Items))
			for _, it := range src.Items {
				items = append(items, models.RecipeItem{
					RecipeID: clone.ID,
					SupplyID: it.SupplyID,
					Amount:   it.Amount,
					Unit:     it.Unit,
					PerChild: it.PerChild,
				})
			}
			if err := database.DB.Create(&items).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Tarif satırları kopyalanamadı")
			}
			clone.Items = items
		}

		return c.Status(fiber.StatusCreated).JSON(clone)
	}
}
