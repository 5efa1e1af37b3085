package controllers

import (
	"mediverse-backend/billing"
	"mediverse-backend/database"
	"mediverse-backend/middlewares"

	"github.com/gofiber/fiber/v2"
)

type GenerateInvoiceDTO struct {
	SessionKey string  `json:"session_key" validate:"required,uuid4"`
	Discount   float64 `json:"discount" validate:"gte=0"`
	PaymentAmt float64 `json:"payment_amt" validate:"gte=0"`
}

type RecordPaymentDTO struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// POST /api/invoices (admin) — converts one session into its invoice.
func GenerateInvoice(c *fiber.Ctx) error {
	adminID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var in GenerateInvoiceDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	invoice, err := billing.GenerateInvoice(database.DB, in.SessionKey, in.Discount, in.PaymentAmt, adminID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// POST /api/invoices/:no/payments (admin)
func RecordPayment(c *fiber.Ctx) error {
	var in RecordPaymentDTO
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}

	invoice, err := billing.RecordPayment(database.DB, c.Params("no"), in.Amount)
	if err != nil {
		return err
	}
	return c.JSON(invoice)
}

// GET /api/invoices/:no (admin, or the owning customer)
func GetInvoice(c *fiber.Ctx) error {
	invoice, err := billing.GetInvoice(database.DB, c.Params("no"))
	if err != nil {
		return err
	}

	if role, _ := c.Locals("role").(string); role == middlewares.RoleCustomer {
		customerID, err := currentUserID(c)
		if err != nil {
			return err
		}
		if invoice.CustomerId != customerID {
			return fiber.NewError(fiber.StatusNotFound, "invoice not found")
		}
	}
	return c.JSON(invoice)
}

// GET /api/invoices/:no/payments (admin)
func ListPayments(c *fiber.Ctx) error {
	if _, err := billing.GetInvoice(database.DB, c.Params("no")); err != nil {
		return err
	}
	payments, err := billing.ListPayments(database.DB, c.Params("no"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(payments)
}

// GET /api/my/invoices (customer) — invoice history, newest first.
func GetMyInvoices(c *fiber.Ctx) error {
	customerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	invoices, err := billing.ListCustomerInvoices(database.DB, customerID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(invoices)
}

// GET /api/customers/:id/invoices (admin)
func GetCustomerInvoices(c *fiber.Ctx) error {
	customerID, err := c.ParamsInt("id")
	if err != nil || customerID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid customer id")
	}
	invoices, err := billing.ListCustomerInvoices(database.DB, uint(customerID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "db error")
	}
	return c.JSON(invoices)
}
