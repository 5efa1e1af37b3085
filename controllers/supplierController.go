package controllers

import (
	"errors"
	"strings"

	"mediverse-backend/database"
	"mediverse-backend/middlewares"
	"mediverse-backend/models"
	"mediverse-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SupplierCreateDTO struct {
	Name        string `json:"name" validate:"required,min=1"`
	Address     string `json:"address" validate:"required,min=1"`
	City        string `json:"city" validate:"required,min=1"`
	State       string `json:"state" validate:"required,min=1"`
	Zip         string `json:"zip" validate:"required,min=1"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

type SupplierUpdateDTO struct {
	Address     *string `json:"address" validate:"omitempty"`
	City        *string `json:"city" validate:"omitempty"`
	State       *string `json:"state" validate:"omitempty"`
	Zip         *string `json:"zip" validate:"omitempty"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty"`
}

// POST /api/suppliers (admin)
func CreateSupplier(c *fiber.Ctx) error {
	var in SupplierCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizeDTO(&in)

	supplier := models.Supplier{
		Name:        in.Name,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		Zip:         in.Zip,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
	}

	if err := database.DB.Create(&supplier).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create supplier")
	}
	return c.Status(fiber.StatusCreated).JSON(supplier)
}

// GET /api/suppliers (admin)
func GetSuppliers(c *fiber.Ctx) error {
	var suppliers []models.Supplier
	if err := database.DB.Order("name").Find(&suppliers).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(suppliers)
}

// PUT /api/suppliers/:id (admin)
func UpdateSupplier(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing supplier id in path")
	}

	var in SupplierUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	var existing models.Supplier
	if err := database.DB.First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "supplier not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) == 0 {
		return c.JSON(existing)
	}

	if err := database.DB.Model(&models.Supplier{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not update supplier")
	}

	var out models.Supplier
	if err := database.DB.First(&out, "id = ?", id).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload supplier")
	}
	return c.JSON(out)
}
