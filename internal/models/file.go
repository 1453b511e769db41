package models

import (
	"time"
)

// Supported media kinds. Each maps to exactly one Telegram send method.
const (
	FileTypeDocument = "document"
	FileTypePhoto    = "photo"
	FileTypeVideo    = "video"
	FileTypeAudio    = "audio"
	FileTypeVoice    = "voice"
)

type File struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	CategoryID string    `json:"categoryId" gorm:"index;not null"`   // foreign key
	FileID     string    `json:"fileId" gorm:"uniqueIndex;not null"` // reference token issued by Telegram
	FileName   string    `json:"fileName" gorm:"not null"`
	FileSize   int64     `json:"fileSize" gorm:"not null"` // bytes
	FileType   string    `json:"fileType" gorm:"not null"`
	Caption    string    `json:"caption"`
	UploadDate time.Time `json:"uploadDate" gorm:"autoCreateTime"`
}
