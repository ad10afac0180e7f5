package audit

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"mantar-backend/internal/auth"
	"mantar-backend/internal/database"
	"mantar-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditResponse struct {
	ID               uint                     `json:"id"`
	SupplyID         uint                     `json:"supply_id"`
	Action           models.SupplyAuditAction `json:"action"`
	Amount           float64                  `json:"amount"`
	Unit             string                   `json:"unit"`
	UnitCostApplied  *float64                 `json:"unit_cost_applied"`
	TotalCostApplied *float64                 `json:"total_cost_applied"`
	RecipeID         *uint                    `json:"recipe_id"`
	RecipeName       string                   `json:"recipe_name"`
	GrowID           *uint                    `json:"grow_id"`
	Note             string                   `json:"note"`
	CreatedAt        string                   `json:"created_at"`
}

func toResponse(l models.SupplyAudit) AuditResponse {
	return AuditResponse{
		ID:               l.ID,
		SupplyID:         l.SupplyID,
		Action:           l.Action,
		Amount:           l.Amount,
		Unit:             l.Unit,
		UnitCostApplied:  l.UnitCostApplied,
		TotalCostApplied: l.TotalCostApplied,
		RecipeID:         l.RecipeID,
		RecipeName:       l.RecipeName,
		GrowID:           l.GrowID,
		Note:             l.Note,
		CreatedAt:        l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func queryLogs(userID uint, supplyID uint, action string) ([]models.SupplyAudit, error) {
	dbq := database.DB.Model(&models.SupplyAudit{}).Where("user_id = ?", userID)

	if supplyID > 0 {
		dbq = dbq.Where("supply_id = ?", supplyID)
	}
	if action != "" {
		dbq = dbq.Where("action = ?", action)
	}

	var logs []models.SupplyAudit
	// Zaman artan sırada çekilir, görüntüleme için en yeni başa alınır
	if err := dbq.Order("created_at ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// GET /api/audit-logs?supply_id=1&action=consume&limit=5
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var supplyID uint
		if s := c.Query("supply_id"); s != "" {
			fmt.Sscan(s, &supplyID)
		}

		logs, err := queryLogs(userID, supplyID, c.Query("action"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		// Tedarik satırındaki "son 5 olay" önizlemesi için
		if limit := c.QueryInt("limit"); limit > 0 && limit < len(logs) {
			logs = logs[:limit]
		}

		resp := make([]AuditResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, toResponse(l))
		}
		return c.JSON(resp)
	}
}

// GET /api/supplies/:id/audits?limit=5
// Tedarik satırındaki denetim önizlemesi; /audit-logs'un path'e sabitlenmiş hâli.
func ListSupplyAuditsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var supplyID uint
		if _, err := fmt.Sscan(c.Params("id"), &supplyID); err != nil || supplyID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ID")
		}

		logs, err := queryLogs(userID, supplyID, c.Query("action"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar listelenemedi")
		}

		if limit := c.QueryInt("limit"); limit > 0 && limit < len(logs) {
			logs = logs[:limit]
		}

		resp := make([]AuditResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, toResponse(l))
		}
		return c.JSON(resp)
	}
}

// GET /api/audit-logs/export.csv?action=consume
func ExportAuditCSVHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var supplyID uint
		if s := c.Query("supply_id"); s != "" {
			fmt.Sscan(s, &supplyID)
		}

		logs, err := queryLogs(userID, supplyID, c.Query("action"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Loglar okunamadı")
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Write([]string{"timestamp", "supply_id", "action", "amount", "unit", "unit_cost_applied", "total_cost_applied", "recipe_name", "grow_id", "note"})

		for _, l := range logs {
			unitCost, totalCost := "", ""
			if l.UnitCostApplied != nil {
				unitCost = fmt.Sprintf("%.4f", *l.UnitCostApplied)
			}
			if l.TotalCostApplied != nil {
				totalCost = fmt.Sprintf("%.4f", *l.TotalCostApplied)
			}
			growID := ""
			if l.GrowID != nil {
				growID = fmt.Sprint(*l.GrowID)
			}
			w.Write([]string{
				l.CreatedAt.Format("2006-01-02 15:04:05"),
				fmt.Sprint(l.SupplyID),
				string(l.Action),
				fmt.Sprintf("%g", l.Amount),
				l.Unit,
				unitCost,
				totalCost,
				l.RecipeName,
				growID,
				l.Note,
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "CSV oluşturulamadı")
		}

		c.Set("Content-Type", "text/csv")
		c.Set("Content-Disposition", "attachment; filename=supply-audits.csv")
		return c.Send(buf.Bytes())
	}
}
