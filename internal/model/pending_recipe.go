package model

import "time"

// PendingStatus is the moderation state of a PendingRecipe.
type PendingStatus string

const (
	PendingStatusPending  PendingStatus = "PENDING"
	PendingStatusApproved PendingStatus = "APPROVED"
	PendingStatusRejected PendingStatus = "REJECTED"
)

// Terminal reports whether no further transition is allowed.
func (s PendingStatus) Terminal() bool {
	return s == PendingStatusApproved || s == PendingStatusRejected
}

// PendingRecipe is a submitted draft awaiting an admin decision.
type PendingRecipe struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	Title        string        `json:"title" gorm:"size:255;not null"`
	Description  string        `json:"description" gorm:"type:text"`
	Ingredients  string        `json:"ingredients" gorm:"type:text"`
	Instructions string        `json:"instructions" gorm:"type:text"`
	ImageURL     *string       `json:"imageUrl" gorm:"type:text"`
	Category     string        `json:"category" gorm:"size:191;not null;default:'Other'"`
	Country      string        `json:"country" gorm:"size:191;not null"`
	DishType     *string       `json:"dishType" gorm:"size:191"`
	UserID       uint          `json:"userId" gorm:"not null;index"`
	Status       PendingStatus `json:"status" gorm:"type:varchar(10);not null;default:'PENDING';index"`
	CreatedAt    time.Time     `json:"createdAt" gorm:"index"`
}

// ToRecipe copies the publishable fields. Country and dish type are dropped.
func (p *PendingRecipe) ToRecipe() *Recipe {
	category := p.Category
	if category == "" {
		category = DefaultCategory
	}
	return &Recipe{
		Title:        p.Title,
		Description:  p.Description,
		Ingredients:  p.Ingredients,
		Instructions: p.Instructions,
		ImageURL:     p.ImageURL,
		Category:     category,
	}
}
