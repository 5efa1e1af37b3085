package billing

import (
	"encoding/json"
	"errors"
	"time"

	"mediverse-backend/models"
	"mediverse-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GenerateInvoice converts one session into an immutable invoice:
//
//	totalToPay  = sum of the session's line item amounts
//	              (or the session's actual-amount override, when set)
//	netTotal    = totalToPay - discount + customer balance before invoicing
//	currBalance = netTotal - paymentAmount
//
// Stock for every supplier-assigned item is decremented in the same
// transaction; any failure rolls the whole generation back. Invoice
// generation is serialized per customer so the balance read and write
// cannot interleave with another invoice for the same customer, and the
// unique index on invoices.session_key guarantees at most one invoice per
// session even across processes.
func GenerateInvoice(db *gorm.DB, sessionKey string, discount, paymentAmount float64, adminID uint) (*models.Invoice, error) {
	var session models.PurchaseSession
	if err := db.First(&session, "session_key = ?", sessionKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No session row means no items were ever grouped under the key.
			return nil, ErrEmptySession
		}
		return nil, err
	}

	unlock := lockCustomer(session.CustomerId)
	defer unlock()

	var invoice models.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		var items []models.LineItem
		if err := tx.Preload("Medicine").Preload("Supplier").
			Where("session_key = ?", sessionKey).
			Order("id").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptySession
		}

		invoiced, err := sessionInvoiced(tx, sessionKey)
		if err != nil {
			return err
		}
		if invoiced {
			return ErrAlreadyInvoiced
		}

		var totalToPay float64
		for _, item := range items {
			totalToPay += item.Amount
		}
		if session.ActualAmtToPay != nil {
			totalToPay = *session.ActualAmtToPay
		}
		totalToPay = utils.Round2(totalToPay)

		discount = utils.Round2(discount)
		if discount < 0 || discount > totalToPay {
			return ErrInvalidDiscount
		}

		// Balance must be read under this transaction, never from a value
		// cached earlier in the request.
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", session.CustomerId).Error; err != nil {
			return err
		}
		prevBalance := customer.BalanceAmt

		netTotal := utils.Round2(totalToPay - discount + prevBalance)
		paymentAmount = utils.Round2(paymentAmount)
		if paymentAmount < 0 || paymentAmount > netTotal {
			return ErrInvalidPayment
		}

		lines := make([]models.InvoiceLine, 0, len(items))
		for _, item := range items {
			if item.SupplierId != nil {
				if err := AdjustStock(tx, item.MedicineId, *item.SupplierId, -item.Quantity); err != nil {
					return err
				}
			}
			line := models.InvoiceLine{
				MedicineName: item.Medicine.Name,
				Composition:  item.Medicine.Composition,
				ExpiryDate:   item.Medicine.ExpiryDate.Format("2006-01-02"),
				SupplierName: "Unknown",
				Quantity:     item.Quantity,
				UnitPrice:    item.Medicine.UnitPrice,
				Amount:       item.Amount,
			}
			if item.Supplier != nil {
				line.SupplierName = item.Supplier.Name
			}
			lines = append(lines, line)
		}
		snapshot, err := json.Marshal(lines)
		if err != nil {
			return err
		}

		invoice = models.Invoice{
			InvoiceNo:     uuid.NewString(),
			SessionKey:    sessionKey,
			CustomerId:    session.CustomerId,
			ItemsSnapshot: snapshot,
			TotalToPay:    totalToPay,
			PrevBalance:   prevBalance,
			Discount:      discount,
			NetTotal:      netTotal,
			PaidTotal:     paymentAmount,
			CurrBalance:   utils.Round2(netTotal - paymentAmount),
			AdminId:       adminID,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost the generation race to a concurrent admin.
				return ErrAlreadyInvoiced
			}
			return err
		}

		if paymentAmount > 0 {
			payment := models.Payment{
				InvoiceNo: invoice.InvoiceNo,
				Amount:    paymentAmount,
				PaidAt:    time.Now(),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&customer).Update("balance_amt", invoice.CurrBalance).Error; err != nil {
			return err
		}

		return tx.Model(&models.LineItem{}).
			Where("session_key = ?", sessionKey).
			Update("invoiced", true).Error
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// RecordPayment settles part or all of a previously generated invoice.
// The invoice's paid total and current balance are updated; the customer's
// running balance follows only when this is their most recent invoice —
// older invoices are historical and never rewrite the running balance.
func RecordPayment(db *gorm.DB, invoiceNo string, amount float64) (*models.Invoice, error) {
	amount = utils.Round2(amount)
	if amount <= 0 {
		return nil, ErrInvalidPayment
	}

	var probe models.Invoice
	if err := db.First(&probe, "invoice_no = ?", invoiceNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	unlock := lockCustomer(probe.CustomerId)
	defer unlock()

	var invoice models.Invoice
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&invoice, "invoice_no = ?", invoiceNo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if amount > invoice.CurrBalance {
			return ErrOverPayment
		}

		payment := models.Payment{
			InvoiceNo: invoice.InvoiceNo,
			Amount:    amount,
			PaidAt:    time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		invoice.PaidTotal = utils.Round2(invoice.PaidTotal + amount)
		invoice.CurrBalance = utils.Round2(invoice.NetTotal - invoice.PaidTotal)
		if err := tx.Model(&models.Invoice{}).
			Where("invoice_no = ?", invoice.InvoiceNo).
			Updates(map[string]any{
				"paid_total":   invoice.PaidTotal,
				"curr_balance": invoice.CurrBalance,
			}).Error; err != nil {
			return err
		}

		// Id breaks created_at ties; generation is serialized per customer,
		// so a higher id always means a later invoice for this customer.
		var newer int64
		if err := tx.Model(&models.Invoice{}).
			Where("customer_id = ? AND (created_at > ? OR (created_at = ? AND id > ?))",
				invoice.CustomerId, invoice.CreatedAt, invoice.CreatedAt, invoice.Id).
			Count(&newer).Error; err != nil {
			return err
		}
		if newer == 0 {
			if err := tx.Model(&models.Customer{}).
				Where("id = ?", invoice.CustomerId).
				Update("balance_amt", invoice.CurrBalance).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetInvoice fetches one invoice snapshot.
func GetInvoice(db *gorm.DB, invoiceNo string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := db.First(&invoice, "invoice_no = ?", invoiceNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// ListCustomerInvoices returns a customer's invoices, newest first.
func ListCustomerInvoices(db *gorm.DB, customerID uint) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := db.Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&invoices).Error
	return invoices, err
}

// ListPayments returns the payments recorded against an invoice, oldest first.
func ListPayments(db *gorm.DB, invoiceNo string) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Where("invoice_no = ?", invoiceNo).
		Order("paid_at").
		Find(&payments).Error
	return payments, err
}
