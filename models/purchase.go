package models

import "time"

// LineItem is a single purchase intent: one customer buying a quantity of
// one medicine, optionally pinned to a supplier. Amount is snapshotted from
// the medicine price at create/edit time and never recomputed afterwards.
//
// State machine: Cart (SessionKey null) -> SessionAssigned (SessionKey set)
// -> Invoiced (terminal, no further mutation or deletion).
type LineItem struct {
	Id         uint      `json:"id" gorm:"primaryKey"`
	CustomerId uint      `json:"customer_id" gorm:"not null;index"`
	Customer   Customer  `json:"-" gorm:"foreignKey:CustomerId;references:Id"`
	MedicineId string    `json:"medicine_id" gorm:"not null;index"`
	Medicine   Medicine  `json:"medicine" gorm:"foreignKey:MedicineId;references:Id;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	SupplierId *uint     `json:"supplier_id"` // nil until an admin picks a supplier
	Supplier   *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierId;references:Id"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Amount     float64   `json:"amount" gorm:"type:numeric(12,2)"` // quantity x unit price, snapshotted
	SessionKey *string   `json:"session_key" gorm:"index"`         // nil => still in cart
	Invoiced   bool      `json:"invoiced" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
}

// PurchaseSession groups a customer's line items under one immutable key
// destined for a single invoice. The key is assigned once when the first
// item is grouped and is never reused for ordering or display.
type PurchaseSession struct {
	SessionKey string   `json:"session_key" gorm:"primaryKey;size:36"`
	CustomerId uint     `json:"customer_id" gorm:"not null;index"`
	Customer   Customer `json:"-" gorm:"foreignKey:CustomerId;references:Id"`

	// ActualAmtToPay lets an admin override the summed item amount before
	// invoicing. Nil means "charge the sum".
	ActualAmtToPay *float64  `json:"actual_amt_to_pay" gorm:"type:numeric(12,2)"`
	CreatedAt      time.Time `json:"created_at"`
}
