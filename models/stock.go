package models

// Stock tracks the available quantity of one medicine from one supplier.
// The row is created on first restock; quantity never goes below zero
// (enforced by the ledger's conditional update plus a CHECK constraint).
type Stock struct {
	Id         uint     `json:"id" gorm:"primaryKey"`
	MedicineId string   `json:"medicine_id" gorm:"not null;uniqueIndex:idx_stocks_medicine_supplier,priority:1"`
	Medicine   Medicine `json:"-" gorm:"foreignKey:MedicineId;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	SupplierId uint     `json:"supplier_id" gorm:"not null;uniqueIndex:idx_stocks_medicine_supplier,priority:2"`
	Supplier   Supplier `json:"-" gorm:"foreignKey:SupplierId;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	Quantity   int      `json:"quantity" gorm:"not null;default:0"`
}
