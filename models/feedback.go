package models

import "time"

type Feedback struct {
	Id           uint      `json:"id" gorm:"primaryKey"`
	CustomerId   uint      `json:"customer_id" gorm:"not null;index"`
	Customer     Customer  `json:"-" gorm:"foreignKey:CustomerId;references:Id"`
	Rating       int       `json:"rating" gorm:"not null"` // 1..5
	FeedbackText string    `json:"feedback_text"`
	FeedbackDate time.Time `json:"feedback_date"`
}
