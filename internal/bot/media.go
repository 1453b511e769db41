package bot

import (
	"github.com/arashpm/uploadmaster/internal/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// extractFileInfo pulls the platform reference token and metadata out of a
// media message. Reports false for unsupported kinds.
func extractFileInfo(msg *tgbotapi.Message) (models.File, bool) {
	caption := msg.Caption

	switch {
	case msg.Document != nil:
		name := msg.Document.FileName
		if name == "" {
			name = "document"
		}
		return models.File{
			FileID:   msg.Document.FileID,
			FileName: name,
			FileSize: int64(msg.Document.FileSize),
			FileType: models.FileTypeDocument,
			Caption:  caption,
		}, true
	case len(msg.Photo) > 0:
		photo := msg.Photo[len(msg.Photo)-1] // largest size
		return models.File{
			FileID:   photo.FileID,
			FileName: "photo.jpg",
			FileSize: int64(photo.FileSize),
			FileType: models.FileTypePhoto,
			Caption:  caption,
		}, true
	case msg.Video != nil:
		name := msg.Video.FileName
		if name == "" {
			name = "video.mp4"
		}
		return models.File{
			FileID:   msg.Video.FileID,
			FileName: name,
			FileSize: int64(msg.Video.FileSize),
			FileType: models.FileTypeVideo,
			Caption:  caption,
		}, true
	case msg.Audio != nil:
		name := msg.Audio.FileName
		if name == "" {
			name = "audio"
		}
		return models.File{
			FileID:   msg.Audio.FileID,
			FileName: name,
			FileSize: int64(msg.Audio.FileSize),
			FileType: models.FileTypeAudio,
			Caption:  caption,
		}, true
	case msg.Voice != nil:
		return models.File{
			FileID:   msg.Voice.FileID,
			FileName: "voice.ogg",
			FileSize: int64(msg.Voice.FileSize),
			FileType: models.FileTypeVoice,
			Caption:  caption,
		}, true
	}
	return models.File{}, false
}
