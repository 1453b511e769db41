package models

import (
	"time"
)

// Channel is a mandatory channel a non-admin user must join before
// receiving files from any category.
type Channel struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	ChannelID   string    `json:"channelId" gorm:"uniqueIndex;not null"`
	ChannelName string    `json:"channelName" gorm:"not null"`
	InviteLink  string    `json:"inviteLink" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
}
