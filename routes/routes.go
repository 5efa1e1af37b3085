package routes

import (
	"github.com/gofiber/fiber/v2"

	"mediverse-backend/controllers"
	"mediverse-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public endpoints
	api.Post("/register", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Get("/medicines", controllers.GetMedicines)
	api.Get("/medicines/:id", controllers.GetMedicine)

	// Protected endpoints (JWT auth, then Idempotency guard)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())
	protected.Use(middlewares.Idempotency())

	// Role guards are per-route handlers: fiber mounts group handlers by
	// path prefix, and sibling groups on the same prefix would stack both
	// guards onto every route registered after them.
	customerOnly := middlewares.RequireRole(middlewares.RoleCustomer)
	adminOnly := middlewares.RequireRole(middlewares.RoleAdmin)

	// Customer-facing
	protected.Get("/profile", customerOnly, controllers.GetProfile)
	protected.Put("/profile", customerOnly, controllers.UpdateProfile)
	protected.Post("/profile/addresses", customerOnly, controllers.AddAddress)
	protected.Post("/feedback", customerOnly, controllers.CreateFeedback)

	protected.Post("/cart/items", customerOnly, controllers.AddItem)
	protected.Put("/cart/items/:id", customerOnly, controllers.EditItem)
	protected.Put("/cart/items/:id/session", customerOnly, controllers.AssignToSession)
	protected.Delete("/cart/items/:id/session", customerOnly, controllers.UnassignFromSession)
	protected.Get("/cart", customerOnly, controllers.GetCart)
	protected.Get("/sessions", customerOnly, controllers.GetSessions)
	protected.Get("/my/invoices", customerOnly, controllers.GetMyInvoices)

	// Admin-facing
	protected.Get("/admin/summary", adminOnly, controllers.AdminSummary)

	protected.Post("/medicines", adminOnly, controllers.CreateMedicines) // batch create
	protected.Put("/medicines/:id", adminOnly, controllers.UpdateMedicine)
	protected.Delete("/medicines/:id", adminOnly, controllers.DeleteMedicine)

	protected.Post("/suppliers", adminOnly, controllers.CreateSupplier)
	protected.Get("/suppliers", adminOnly, controllers.GetSuppliers)
	protected.Put("/suppliers/:id", adminOnly, controllers.UpdateSupplier)

	protected.Get("/customers", adminOnly, controllers.GetCustomers)
	protected.Get("/customers/:id", adminOnly, controllers.GetCustomer)
	protected.Get("/customers/:id/invoices", adminOnly, controllers.GetCustomerInvoices)

	protected.Post("/stock", adminOnly, controllers.Restock)
	protected.Get("/stock/:medicineId", adminOnly, controllers.GetStock)

	protected.Post("/sessions/merge", adminOnly, controllers.MergeSessions)
	protected.Delete("/sessions/:key", adminOnly, controllers.DeleteSession)
	protected.Put("/sessions/:key/amount", adminOnly, controllers.SetSessionAmount)

	protected.Post("/invoices", adminOnly, controllers.GenerateInvoice)
	protected.Post("/invoices/:no/payments", adminOnly, controllers.RecordPayment)
	protected.Get("/invoices/:no/payments", adminOnly, controllers.ListPayments)

	// Invoice snapshot is readable by admins and the owning customer.
	protected.Get("/invoices/:no", controllers.GetInvoice)
}
