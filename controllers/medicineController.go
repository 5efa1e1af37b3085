package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mediverse-backend/database"
	"mediverse-backend/middlewares"
	"mediverse-backend/models"
	"mediverse-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MedicineCreateDTO struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Composition string  `json:"composition" validate:"omitempty"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	ExpiryDate  string  `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	Type        string  `json:"type" validate:"omitempty"`
	ImgURL      string  `json:"img_url" validate:"omitempty,url"`
}

type MedicineUpdateDTO struct {
	Name        *string  `json:"name" validate:"omitempty,min=1"`
	Composition *string  `json:"composition"`
	UnitPrice   *float64 `json:"unit_price" validate:"omitempty,gte=0"`
	ExpiryDate  *string  `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	Type        *string  `json:"type"`
	ImgURL      *string  `json:"img_url" validate:"omitempty,url"`
}

// POST /api/medicines (admin, batch create)
func CreateMedicines(c *fiber.Ctx) error {
	var inputs []MedicineCreateDTO
	if err := c.BodyParser(&inputs); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	tx := database.DB.Begin()
	var created []models.Medicine

	for i, in := range inputs {
		if err := middlewares.ValidateStruct(in); err != nil {
			tx.Rollback()
			return err
		}
		expiry, err := time.Parse("2006-01-02", in.ExpiryDate)
		if err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid expiry date at index %d", i))
		}

		medicine := models.Medicine{
			Name:        strings.TrimSpace(in.Name),
			Composition: strings.TrimSpace(in.Composition),
			UnitPrice:   utils.Round2(in.UnitPrice),
			ExpiryDate:  expiry,
			Type:        strings.TrimSpace(in.Type),
			ImgURL:      strings.TrimSpace(in.ImgURL),
			Active:      true,
		}
		if err := tx.Create(&medicine).Error; err != nil {
			tx.Rollback()
			return fiber.NewError(fiber.StatusInternalServerError, "could not create medicine")
		}
		created = append(created, medicine)
	}

	tx.Commit()
	return c.Status(fiber.StatusCreated).JSON(created)
}

// GET /api/medicines
func GetMedicines(c *fiber.Ctx) error {
	var medicines []models.Medicine
	if err := database.DB.Where("active = ?", true).Order("name").Find(&medicines).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(medicines)
}

// GET /api/medicines/:id
func GetMedicine(c *fiber.Ctx) error {
	var medicine models.Medicine
	if err := database.DB.First(&medicine, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "medicine not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(medicine)
}

// PUT /api/medicines/:id (admin)
// Price edits never touch existing line items; amounts are snapshotted at
// line item creation.
func UpdateMedicine(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))

	var in MedicineUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	var existing models.Medicine
	if err := database.DB.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "medicine not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if raw, ok := updates["expiry_date"]; ok {
		expiry, err := time.Parse("2006-01-02", raw.(string))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid expiry date")
		}
		updates["expiry_date"] = expiry
	}
	if len(updates) == 0 {
		return c.JSON(existing)
	}

	if err := database.DB.Model(&models.Medicine{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update medicine")
	}

	var out models.Medicine
	if err := database.DB.First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload medicine")
	}
	return c.JSON(out)
}

// DELETE /api/medicines/:id (admin) — soft delete; sold-against medicines
// stay resolvable from historical line items.
func DeleteMedicine(c *fiber.Ctx) error {
	res := database.DB.Model(&models.Medicine{}).
		Where("id = ?", c.Params("id")).
		Update("active", false)
	if res.Error != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "medicine not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
