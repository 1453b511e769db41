package models

import (
	"time"
)

type Category struct {
	ID        string    `json:"id" gorm:"primaryKey"` // short opaque id, immutable once assigned
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	CreatedBy int64     `json:"createdBy" gorm:"index;not null"` // admin user ID
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	Files     []File    `json:"files" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"` // one-to-many relation
}
