package controllers

import (
	"mediverse-backend/billing"
	"mediverse-backend/database"
	"mediverse-backend/middlewares"
	"mediverse-backend/models"

	"github.com/gofiber/fiber/v2"
)

type AddItemDTO struct {
	MedicineId string `json:"medicine_id" validate:"required,uuid4"`
	SupplierId *uint  `json:"supplier_id" validate:"omitempty,gt=0"`
	Quantity   int    `json:"quantity" validate:"required"`
}

type EditItemDTO struct {
	MedicineId    *string `json:"medicine_id" validate:"omitempty,uuid4"`
	SupplierId    *uint   `json:"supplier_id" validate:"omitempty,gt=0"`
	ClearSupplier bool    `json:"clear_supplier"`
	Quantity      *int    `json:"quantity"`
}

type AssignSessionDTO struct {
	SessionKey string `json:"session_key" validate:"omitempty,uuid4"`
}

type MergeSessionsDTO struct {
	SourceKey string `json:"source_key" validate:"required,uuid4"`
	TargetKey string `json:"target_key" validate:"required,uuid4"`
}

type SessionAmountDTO struct {
	Amount *float64 `json:"amount" validate:"omitempty,gte=0"`
}

// POST /api/cart/items (customer)
func AddItem(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in AddItemDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	item, err := billing.AddItem(database.DB, customerID, in.MedicineId, in.SupplierId, in.Quantity)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// PUT /api/cart/items/:id (customer)
func EditItem(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var in EditItemDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	item, err := billing.EditItem(database.DB, customerID, uint(itemID), billing.ItemEdit{
		MedicineId:    in.MedicineId,
		SupplierId:    in.SupplierId,
		ClearSupplier: in.ClearSupplier,
		Quantity:      in.Quantity,
	})
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// PUT /api/cart/items/:id/session (customer) — empty/missing key starts a
// fresh session.
func AssignToSession(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	var in AssignSessionDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	key, err := billing.AssignToSession(database.DB, customerID, uint(itemID), in.SessionKey)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"session_key": key})
}

// DELETE /api/cart/items/:id/session (customer) — back to cart state.
func UnassignFromSession(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	itemID, err := c.ParamsInt("id")
	if err != nil || itemID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}

	if err := billing.UnassignItem(database.DB, customerID, uint(itemID)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/cart (customer) — all not-yet-invoiced line items, grouped or not.
func GetCart(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var items []models.LineItem
	if err := database.DB.Preload("Medicine").Preload("Supplier").
		Where("customer_id = ? AND invoiced = ?", customerID, false).
		Order("id").
		Find(&items).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(items)
}

// GET /api/sessions (customer) — the customer's open sessions.
func GetSessions(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var sessions []models.PurchaseSession
	if err := database.DB.Where("customer_id = ?", customerID).
		Order("created_at").
		Find(&sessions).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(sessions)
}

// POST /api/sessions/merge (admin)
func MergeSessions(c *fiber.Ctx) error {
	var in MergeSessionsDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if err := billing.MergeSessions(database.DB, in.SourceKey, in.TargetKey); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DELETE /api/sessions/:key (admin) — destructive for cart-state sessions
// only; invoiced sessions are historical.
func DeleteSession(c *fiber.Ctx) error {
	if err := billing.DeleteSession(database.DB, c.Params("key")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PUT /api/sessions/:key/amount (admin) — amount-actually-to-pay override.
func SetSessionAmount(c *fiber.Ctx) error {
	var in SessionAmountDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	if err := billing.SetSessionAmount(database.DB, c.Params("key"), in.Amount); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
