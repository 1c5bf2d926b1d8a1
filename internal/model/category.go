package model

// Category is an admin-managed recipe category name.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;size:191;not null"`
}
