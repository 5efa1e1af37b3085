package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Customer struct {
	Id          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null"`
	Email       string `json:"email" gorm:"unique;not null"`
	PhoneNumber string `json:"phone_number" gorm:"not null"`
	Password    []byte `json:"-" gorm:"not null"`
	PhotoURL    string `json:"photo_url"`

	// BalanceAmt is the running outstanding amount. Written only by the
	// billing engine; always equals the curr_balance of the customer's
	// most recent invoice.
	BalanceAmt float64 `json:"balance_amt" gorm:"type:numeric(12,2);default:0"`

	Addresses []CustomerAddress `json:"addresses" gorm:"foreignKey:CustomerId;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `json:"created_at"`
}

type CustomerAddress struct {
	Id          uint   `json:"id" gorm:"primaryKey"`
	CustomerId  uint   `json:"-" gorm:"index"`
	AddressType string `json:"address_type"` // home, work, ...
	Street      string `json:"street"`
	City        string `json:"city"`
	State       string `json:"state"`
	ZipCode     string `json:"zip_code"`
}

func (customer *Customer) SetPassword(password string) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte(password), 12)
	customer.Password = hashedPassword
}

func (customer *Customer) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(customer.Password, []byte(password))
}
