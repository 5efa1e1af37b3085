package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Medicine struct {
	Id          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;index"`
	Composition string    `json:"composition"`
	UnitPrice   float64   `json:"unit_price" gorm:"type:numeric(12,2)"`
	ExpiryDate  time.Time `json:"expiry_date"`
	Type        string    `json:"type"` // tablet, syrup, ointment, ...
	ImgURL      string    `json:"img_url"`
	Active      bool      `json:"-"`
}

func (medicine *Medicine) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	medicine.Id = uuid.NewString()
	return
}
