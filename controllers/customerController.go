package controllers

import (
	"errors"
	"strings"
	"time"

	"mediverse-backend/database"
	"mediverse-backend/middlewares"
	"mediverse-backend/models"
	"mediverse-backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CustomerUpdateDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty"`
	PhotoURL    *string `json:"photo_url" validate:"omitempty,url"`
}

type AddressCreateDTO struct {
	AddressType string `json:"address_type" validate:"required,oneof=home work other"`
	Street      string `json:"street" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
	ZipCode     string `json:"zip_code" validate:"required"`
}

type FeedbackCreateDTO struct {
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	FeedbackText string `json:"feedback_text" validate:"omitempty,max=2000"`
}

// GET /api/profile (customer)
func GetProfile(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var customer models.Customer
	if err := database.DB.Preload("Addresses").First(&customer, "id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(customer)
}

// PUT /api/profile (customer)
func UpdateProfile(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in CustomerUpdateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&in)

	updates := utils.UpdatesFromPtrDTO(&in, nil)
	if len(updates) > 0 {
		if err := database.DB.Model(&models.Customer{}).Where("id = ?", customerID).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not update profile")
		}
	}

	var out models.Customer
	if err := database.DB.Preload("Addresses").First(&out, "id = ?", customerID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to reload customer")
	}
	return c.JSON(out)
}

// POST /api/profile/addresses (customer)
func AddAddress(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in AddressCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	address := models.CustomerAddress{
		CustomerId:  customerID,
		AddressType: strings.TrimSpace(in.AddressType),
		Street:      strings.TrimSpace(in.Street),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		ZipCode:     strings.TrimSpace(in.ZipCode),
	}
	if err := database.DB.Create(&address).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not add address")
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// POST /api/feedback (customer)
func CreateFeedback(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in FeedbackCreateDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	feedback := models.Feedback{
		CustomerId:   customerID,
		Rating:       in.Rating,
		FeedbackText: strings.TrimSpace(in.FeedbackText),
		FeedbackDate: time.Now(),
	}
	if err := database.DB.Create(&feedback).Error; err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "could not record feedback")
	}
	return c.Status(fiber.StatusCreated).JSON(feedback)
}

// GET /api/customers (admin)
func GetCustomers(c *fiber.Ctx) error {
	var customers []models.Customer
	if err := database.DB.Order("name").Find(&customers).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(customers)
}

// GET /api/customers/:id (admin)
func GetCustomer(c *fiber.Ctx) error {
	var customer models.Customer
	if err := database.DB.Preload("Addresses").First(&customer, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "customer not found")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(customer)
}
