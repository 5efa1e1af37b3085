package controllers

import (
	"errors"
	"strconv"
	"strings"

	"mediverse-backend/database"
	"mediverse-backend/middlewares"
	"mediverse-backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type RegisterDTO struct {
	Name            string `json:"name" validate:"required,min=1"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=admin customer"`
}

// POST /api/register — customer self-registration.
func Register(c *fiber.Ctx) error {
	var in RegisterDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if in.Password != in.PasswordConfirm {
		return fiber.NewError(fiber.StatusBadRequest, "passwords do not match")
	}

	var mailExist models.Customer
	database.DB.Where("email = ?", strings.TrimSpace(in.Email)).First(&mailExist)
	if mailExist.Email != "" {
		return fiber.NewError(fiber.StatusBadRequest, "email already exists")
	}

	customer := models.Customer{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
	}
	customer.SetPassword(in.Password)

	if err := database.DB.Create(&customer).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not create customer")
	}
	return c.Status(fiber.StatusCreated).JSON(customer)
}

// POST /api/login — shared login for admins and customers; the role in the
// body selects which credential table is consulted.
func Login(c *fiber.Ctx) error {
	var in LoginDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	email := strings.TrimSpace(in.Email)

	var id uint
	switch in.Role {
	case middlewares.RoleAdmin:
		var admin models.Admin
		if err := database.DB.First(&admin, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "db error")
		}
		if admin.ComparePassword(in.Password) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		id = admin.Id
	case middlewares.RoleCustomer:
		var customer models.Customer
		if err := database.DB.First(&customer, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "db error")
		}
		if customer.ComparePassword(in.Password) != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		id = customer.Id
	}

	token, err := middlewares.GenerateJWT(strconv.FormatUint(uint64(id), 10), in.Role)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(fiber.Map{"token": token, "role": in.Role})
}

// currentUserID reads the authenticated numeric id stashed by the JWT middleware.
func currentUserID(c *fiber.Ctx) (uint, error) {
	raw, _ := c.Locals("userID").(string)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "invalid auth context")
	}
	return uint(id), nil
}
