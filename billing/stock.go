package billing

import (
	"errors"

	"mediverse-backend/models"

	"gorm.io/gorm"
)

// AdjustStock applies delta to the (medicine, supplier) quantity: positive
// for restock, negative for sale. A row is created on first restock. The
// decrement is a conditional UPDATE guarded on the current quantity, so the
// result can never go below zero regardless of concurrent callers; an
// unsatisfiable decrement fails with ErrInsufficientStock.
//
// Call this inside the same transaction as the operation that triggered it,
// so a failed adjustment aborts the whole step.
func AdjustStock(tx *gorm.DB, medicineID string, supplierID uint, delta int) error {
	if delta == 0 {
		return nil
	}

	if delta < 0 {
		res := tx.Model(&models.Stock{}).
			Where("medicine_id = ? AND supplier_id = ? AND quantity >= ?", medicineID, supplierID, -delta).
			Update("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}
		return nil
	}

	// Restock: increment if the row exists, otherwise create it.
	res := tx.Model(&models.Stock{}).
		Where("medicine_id = ? AND supplier_id = ?", medicineID, supplierID).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Verify the references exist so restock surfaces NotFound instead of a
	// bare FK violation.
	var medicine models.Medicine
	if err := tx.First(&medicine, "id = ?", medicineID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	var supplier models.Supplier
	if err := tx.First(&supplier, "id = ?", supplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	stock := models.Stock{MedicineId: medicineID, SupplierId: supplierID, Quantity: delta}
	return tx.Create(&stock).Error
}

// SupplierStock returns the quantity available for (medicine, supplier);
// zero if no stock row exists yet.
func SupplierStock(db *gorm.DB, medicineID string, supplierID uint) (int, error) {
	var stock models.Stock
	err := db.First(&stock, "medicine_id = ? AND supplier_id = ?", medicineID, supplierID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return stock.Quantity, nil
}

// TotalStock sums a medicine's quantity across all suppliers, for
// availability checks.
func TotalStock(db *gorm.DB, medicineID string) (int, error) {
	var total int64
	err := db.Model(&models.Stock{}).
		Where("medicine_id = ?", medicineID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}
