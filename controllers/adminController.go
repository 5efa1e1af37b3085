package controllers

import (
	"mediverse-backend/database"
	"mediverse-backend/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/summary — dashboard counts plus recent feedback.
func AdminSummary(c *fiber.Ctx) error {
	var (
		adminCount    int64
		customerCount int64
		medicineCount int64
		supplierCount int64
		invoiceCount  int64
	)

	counts := []struct {
		model any
		out   *int64
	}{
		{&models.Admin{}, &adminCount},
		{&models.Customer{}, &customerCount},
		{&models.Medicine{}, &medicineCount},
		{&models.Supplier{}, &supplierCount},
		{&models.Invoice{}, &invoiceCount},
	}
	for _, q := range counts {
		if err := database.DB.Model(q.model).Count(q.out).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "db error")
		}
	}

	var feedbacks []models.Feedback
	if err := database.DB.Order("feedback_date DESC").Limit(5).Find(&feedbacks).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	return c.JSON(fiber.Map{
		"admins":          adminCount,
		"customers":       customerCount,
		"medicines":       medicineCount,
		"suppliers":       supplierCount,
		"invoices":        invoiceCount,
		"recent_feedback": feedbacks,
	})
}
