package billing

import (
	"errors"

	"mediverse-backend/models"
	"mediverse-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemEdit carries the optional fields of an EditItem call. Nil pointers
// leave the field untouched; ClearSupplier resets the item to "supplier not
// chosen yet".
type ItemEdit struct {
	MedicineId    *string
	SupplierId    *uint
	ClearSupplier bool
	Quantity      *int
}

// AddItem creates a cart-state line item: no session key yet, amount
// snapshotted from the current medicine price. Stock is only checked here,
// not reserved; the decrement happens at invoicing time because supplier
// and quantity can still change.
func AddItem(db *gorm.DB, customerID uint, medicineID string, supplierID *uint, quantity int) (*models.LineItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var item models.LineItem
	err := db.Transaction(func(tx *gorm.DB) error {
		var medicine models.Medicine
		if err := tx.First(&medicine, "id = ?", medicineID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if supplierID != nil {
			available, err := SupplierStock(tx, medicineID, *supplierID)
			if err != nil {
				return err
			}
			if available < quantity {
				return ErrInsufficientStock
			}
		}

		item = models.LineItem{
			CustomerId: customerID,
			MedicineId: medicineID,
			SupplierId: supplierID,
			Quantity:   quantity,
			Amount:     utils.Round2(float64(quantity) * medicine.UnitPrice),
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// EditItem mutates a not-yet-invoiced line item and recomputes its amount
// from the (possibly new) medicine's current price inside the same
// transaction as the write. Switching the medicine drops a previously
// pinned supplier unless the edit pins a new one; the old pin refers to
// stock of the old medicine.
func EditItem(db *gorm.DB, customerID, lineItemID uint, edit ItemEdit) (*models.LineItem, error) {
	if edit.Quantity != nil && *edit.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	unlock := lockCustomer(customerID)
	defer unlock()

	var item models.LineItem
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ? AND customer_id = ?", lineItemID, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if item.Invoiced {
			return ErrAlreadyInvoiced
		}

		if edit.MedicineId != nil && *edit.MedicineId != item.MedicineId {
			item.MedicineId = *edit.MedicineId
			item.SupplierId = nil
		}
		if edit.ClearSupplier {
			item.SupplierId = nil
		} else if edit.SupplierId != nil {
			item.SupplierId = edit.SupplierId
		}
		if edit.Quantity != nil {
			item.Quantity = *edit.Quantity
		}

		var medicine models.Medicine
		if err := tx.First(&medicine, "id = ?", item.MedicineId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		item.Amount = utils.Round2(float64(item.Quantity) * medicine.UnitPrice)

		return tx.Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AssignToSession groups a cart item under a session key. An empty key
// starts a fresh session; the session row is created implicitly when its
// first item is grouped. Returns the (possibly new) key.
func AssignToSession(db *gorm.DB, customerID, lineItemID uint, sessionKey string) (string, error) {
	unlock := lockCustomer(customerID)
	defer unlock()

	err := db.Transaction(func(tx *gorm.DB) error {
		var item models.LineItem
		if err := tx.First(&item, "id = ? AND customer_id = ?", lineItemID, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if item.Invoiced {
			return ErrAlreadyInvoiced
		}

		if sessionKey == "" {
			sessionKey = uuid.NewString()
		}

		var session models.PurchaseSession
		err := tx.First(&session, "session_key = ?", sessionKey).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			session = models.PurchaseSession{SessionKey: sessionKey, CustomerId: customerID}
			if err := tx.Create(&session).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case session.CustomerId != customerID:
			return ErrCustomerMismatch
		default:
			invoiced, err := sessionInvoiced(tx, sessionKey)
			if err != nil {
				return err
			}
			if invoiced {
				return ErrAlreadyInvoiced
			}
		}

		previous := item.SessionKey
		if err := tx.Model(&item).Update("session_key", sessionKey).Error; err != nil {
			return err
		}
		if previous != nil && *previous != sessionKey {
			return dropSessionIfEmpty(tx, *previous)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return sessionKey, nil
}

// UnassignItem moves a session-assigned item back to the cart. The session
// row is removed once its last item leaves.
func UnassignItem(db *gorm.DB, customerID, lineItemID uint) error {
	unlock := lockCustomer(customerID)
	defer unlock()

	return db.Transaction(func(tx *gorm.DB) error {
		var item models.LineItem
		if err := tx.First(&item, "id = ? AND customer_id = ?", lineItemID, customerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if item.Invoiced {
			return ErrAlreadyInvoiced
		}
		if item.SessionKey == nil {
			return nil
		}

		key := *item.SessionKey
		if err := tx.Model(&item).Update("session_key", nil).Error; err != nil {
			return err
		}
		return dropSessionIfEmpty(tx, key)
	})
}

// MergeSessions re-keys every line item of the source session onto the
// target and removes the source grouping. Both sessions must belong to the
// same customer and neither may be invoiced yet.
func MergeSessions(db *gorm.DB, sourceKey, targetKey string) error {
	if sourceKey == targetKey {
		return nil
	}

	// Probe for the owning customer first; the lock serializes the merge
	// against a concurrent invoice generation that would mark the moved
	// items invoiced without billing them. Everything is re-read under the
	// transaction once the lock is held.
	var probe models.PurchaseSession
	if err := db.First(&probe, "session_key = ?", sourceKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	unlock := lockCustomer(probe.CustomerId)
	defer unlock()

	return db.Transaction(func(tx *gorm.DB) error {
		var source, target models.PurchaseSession
		if err := tx.First(&source, "session_key = ?", sourceKey).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.First(&target, "session_key = ?", targetKey).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if source.CustomerId != target.CustomerId {
			return ErrCustomerMismatch
		}
		for _, key := range []string{sourceKey, targetKey} {
			invoiced, err := sessionInvoiced(tx, key)
			if err != nil {
				return err
			}
			if invoiced {
				return ErrAlreadyInvoiced
			}
		}

		if err := tx.Model(&models.LineItem{}).
			Where("session_key = ?", sourceKey).
			Update("session_key", targetKey).Error; err != nil {
			return err
		}
		return tx.Delete(&source).Error
	})
}

// DeleteSession destroys a cart-state session and every line item grouped
// under it. Invoiced sessions are historical and can never be deleted.
func DeleteSession(db *gorm.DB, sessionKey string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var session models.PurchaseSession
		if err := tx.First(&session, "session_key = ?", sessionKey).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		invoiced, err := sessionInvoiced(tx, sessionKey)
		if err != nil {
			return err
		}
		if invoiced {
			return ErrAlreadyInvoiced
		}

		if err := tx.Where("session_key = ?", sessionKey).Delete(&models.LineItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&session).Error
	})
}

// SetSessionAmount records (or clears, with nil) the admin's
// amount-actually-to-pay override on a not-yet-invoiced session.
func SetSessionAmount(db *gorm.DB, sessionKey string, amount *float64) error {
	if amount != nil && *amount < 0 {
		return ErrInvalidAmount
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var session models.PurchaseSession
		if err := tx.First(&session, "session_key = ?", sessionKey).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		invoiced, err := sessionInvoiced(tx, sessionKey)
		if err != nil {
			return err
		}
		if invoiced {
			return ErrAlreadyInvoiced
		}

		if amount != nil {
			rounded := utils.Round2(*amount)
			amount = &rounded
		}
		return tx.Model(&session).Update("actual_amt_to_pay", amount).Error
	})
}

func sessionInvoiced(tx *gorm.DB, sessionKey string) (bool, error) {
	var n int64
	err := tx.Model(&models.Invoice{}).Where("session_key = ?", sessionKey).Count(&n).Error
	return n > 0, err
}

func dropSessionIfEmpty(tx *gorm.DB, sessionKey string) error {
	var n int64
	if err := tx.Model(&models.LineItem{}).Where("session_key = ?", sessionKey).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return tx.Where("session_key = ?", sessionKey).Delete(&models.PurchaseSession{}).Error
}
