// Package delivery streams a category's files to a chat, one message per
// file, pacing sends against Telegram's outbound rate limits.
package delivery

import (
	"fmt"
	"log"
	"time"

	"github.com/arashpm/uploadmaster/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// DefaultSendDelay spaces consecutive media sends.
const DefaultSendDelay = 500 * time.Millisecond

// MediaSender sends prepared Telegram messages.
type MediaSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Engine struct {
	sender MediaSender
	delay  time.Duration
}

func NewEngine(sender MediaSender) *Engine {
	return &Engine{sender: sender, delay: DefaultSendDelay}
}

// Deliver sends every file of the category to the chat in stored order.
// Delivery is best effort per item: a failed send is logged and the
// remaining files still go out.
func (e *Engine) Deliver(chatID int64, category *models.Category) {
	for i, file := range category.Files {
		msg, err := mediaMessage(chatID, file)
		if err != nil {
			log.Printf("Error sending file %s: %v", file.FileID, err)
			continue
		}
		if _, err := e.sender.Send(msg); err != nil {
			log.Printf("Error sending file %s: %v", file.FileID, err)
		}
		if i < len(category.Files)-1 {
			time.Sleep(e.delay)
		}
	}
}

// mediaMessage maps a stored file to the send operation for its kind,
// carrying the platform token and caption. The token is used as-is; the
// underlying media is never re-fetched.
func mediaMessage(chatID int64, file models.File) (tgbotapi.Chattable, error) {
	token := tgbotapi.FileID(file.FileID)
	switch file.FileType {
	case models.FileTypeDocument:
		msg := tgbotapi.NewDocument(chatID, token)
		msg.Caption = file.Caption
		return msg, nil
	case models.FileTypePhoto:
		msg := tgbotapi.NewPhoto(chatID, token)
		msg.Caption = file.Caption
		return msg, nil
	case models.FileTypeVideo:
		msg := tgbotapi.NewVideo(chatID, token)
		msg.Caption = file.Caption
		return msg, nil
	case models.FileTypeAudio:
		msg := tgbotapi.NewAudio(chatID, token)
		msg.Caption = file.Caption
		return msg, nil
	case models.FileTypeVoice:
		msg := tgbotapi.NewVoice(chatID, token)
		msg.Caption = file.Caption
		return msg, nil
	}
	return nil, fmt.Errorf("unsupported file type %q", file.FileType)
}
