package repositories

import (
	"errors"

	"github.com/arashpm/uploadmaster/internal/models"
	"gorm.io/gorm"
)

// ChannelRepository handles mandatory-channel data operations.
type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// Add registers a mandatory channel. Returns ErrDuplicateChannel when the
// channel ID is already registered.
func (r *ChannelRepository) Add(channelID, channelName, inviteLink string) error {
	channel := models.Channel{
		ChannelID:   channelID,
		ChannelName: channelName,
		InviteLink:  inviteLink,
	}
	err := withRetry(r.db, func() error {
		return r.db.Create(&channel).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateChannel
	}
	return err
}

// List returns all mandatory channels in registration order.
func (r *ChannelRepository) List() ([]models.Channel, error) {
	var channels []models.Channel
	err := withRetry(r.db, func() error {
		return r.db.Order("created_at ASC, id ASC").Find(&channels).Error
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// Delete removes a channel by its platform ID, reporting whether a row was
// actually deleted.
func (r *ChannelRepository) Delete(channelID string) (bool, error) {
	var result *gorm.DB
	err := withRetry(r.db, func() error {
		result = r.db.Delete(&models.Channel{}, "channel_id = ?", channelID)
		return result.Error
	})
	if err != nil {
		return false, err
	}
	return result.RowsAffected > 0, nil
}
