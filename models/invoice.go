package models

import (
	"time"

	"gorm.io/datatypes"
)

// Invoice is the immutable financial snapshot of one purchase session.
// At most one invoice ever references a session (unique index on
// session_key); the loser of a concurrent generation race sees the
// uniqueness violation as AlreadyInvoiced.
type Invoice struct {
	// Monotonic insertion sequence. created_at alone can tie within one
	// clock tick, so "most recent invoice" comparisons break ties on Id.
	Id         uint            `json:"-" gorm:"primaryKey"`
	InvoiceNo  string          `json:"invoice_no" gorm:"size:36;uniqueIndex;not null"`
	SessionKey string          `json:"session_key" gorm:"size:36;uniqueIndex;not null"`
	Session    PurchaseSession `json:"-" gorm:"foreignKey:SessionKey;references:SessionKey"`
	CustomerId uint            `json:"customer_id" gorm:"not null;index"`

	// Frozen aggregated item data (medicine name/composition/expiry,
	// supplier, quantity, amount per line) so later catalog edits never
	// change what the invoice shows.
	ItemsSnapshot datatypes.JSON `json:"items" gorm:"type:jsonb"`

	TotalToPay  float64 `json:"total_to_pay" gorm:"type:numeric(12,2)"`
	PrevBalance float64 `json:"prev_balance" gorm:"type:numeric(12,2)"`
	Discount    float64 `json:"discount" gorm:"type:numeric(12,2)"`
	NetTotal    float64 `json:"net_total" gorm:"type:numeric(12,2)"` // total_to_pay - discount + prev_balance
	PaidTotal   float64 `json:"paid_total" gorm:"type:numeric(12,2)"`
	CurrBalance float64 `json:"curr_balance" gorm:"type:numeric(12,2)"` // net_total - paid_total

	AdminId   uint      `json:"admin_id"`
	Admin     Admin     `json:"-" gorm:"foreignKey:AdminId;references:Id"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// InvoiceLine is one row of the frozen snapshot stored in ItemsSnapshot.
type InvoiceLine struct {
	MedicineName string  `json:"medicine_name"`
	Composition  string  `json:"composition"`
	ExpiryDate   string  `json:"expiry_date"`
	SupplierName string  `json:"supplier_name"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	Amount       float64 `json:"amount"`
}

// Payment records money received against an invoice, either at generation
// time or as a later settlement.
type Payment struct {
	Id        uint      `json:"id" gorm:"primaryKey"`
	InvoiceNo string    `json:"invoice_no" gorm:"size:36;index:idx_payments_invoice_paid_at,priority:1"`
	Amount    float64   `json:"amount" gorm:"type:numeric(12,2)"`
	PaidAt    time.Time `json:"paid_at" gorm:"index:idx_payments_invoice_paid_at,priority:2"`
	CreatedAt time.Time `json:"created_at"`
}
