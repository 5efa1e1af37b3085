package controllers

import (
	"mediverse-backend/billing"
	"mediverse-backend/database"
	"mediverse-backend/middlewares"
	"mediverse-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RestockDTO struct {
	MedicineId string `json:"medicine_id" validate:"required,uuid4"`
	SupplierId uint   `json:"supplier_id" validate:"required,gt=0"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

// POST /api/stock (admin) — restock a (medicine, supplier) pair; the row is
// created on first restock.
func Restock(c *fiber.Ctx) error {
	var in RestockDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		return billing.AdjustStock(tx, in.MedicineId, in.SupplierId, in.Quantity)
	})
	if err != nil {
		return err
	}

	quantity, err := billing.SupplierStock(database.DB, in.MedicineId, in.SupplierId)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{
		"medicine_id": in.MedicineId,
		"supplier_id": in.SupplierId,
		"quantity":    quantity,
	})
}

// GET /api/stock/:medicineId (admin) — per-supplier rows plus the total.
func GetStock(c *fiber.Ctx) error {
	medicineID := c.Params("medicineId")

	var rows []models.Stock
	if err := database.DB.Preload("Supplier").
		Where("medicine_id = ?", medicineID).
		Find(&rows).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	total, err := billing.TotalStock(database.DB, medicineID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(fiber.Map{"stocks": rows, "total": total})
}
