// Package bot routes Telegram updates to the admin commands, conversation
// flows and gated file delivery.
package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/arashpm/uploadmaster/internal/access"
	"github.com/arashpm/uploadmaster/internal/config"
	"github.com/arashpm/uploadmaster/internal/delivery"
	"github.com/arashpm/uploadmaster/internal/repositories"
	"github.com/arashpm/uploadmaster/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const deepLinkPrefix = "cat_"

// API is the part of the Telegram client the bot relies on, satisfied by
// *tgbotapi.BotAPI.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Bot struct {
	api        API
	cfg        config.Config
	categories *repositories.CategoryRepository
	files      *repositories.FileRepository
	channels   *repositories.ChannelRepository
	sessions   *session.Store
	access     *access.Evaluator
	delivery   *delivery.Engine
}

func New(api API, cfg config.Config, categories *repositories.CategoryRepository, files *repositories.FileRepository, channels *repositories.ChannelRepository) *Bot {
	return &Bot{
		api:        api,
		cfg:        cfg,
		categories: categories,
		files:      files,
		channels:   channels,
		sessions:   session.NewStore(),
		access:     access.NewEvaluator(cfg.AdminIDs, channels, memberChecker{api: api}),
		delivery:   delivery.NewEngine(api),
	}
}

// Run consumes updates until the context is cancelled. Updates are handled
// one at a time, to completion, so handlers never run concurrently.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	log.Println("Bot is running...")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	case update.Message == nil || update.Message.From == nil:
		// nothing routable
	case update.Message.IsCommand():
		b.handleCommand(update.Message)
	default:
		b.handleMessage(update.Message)
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.handleStart(msg)
	case "new_category":
		b.handleNewCategory(msg)
	case "upload":
		b.handleUpload(msg)
	case "finish_upload":
		b.handleFinishUpload(msg)
	case "categories":
		b.handleCategories(msg)
	case "add_channel":
		b.handleAddChannel(msg)
	case "remove_channel":
		b.handleRemoveChannel(msg)
	case "channels":
		b.handleChannels(msg)
	case "cancel":
		b.handleCancel(msg)
	}
}

// handleMessage routes non-command messages into whichever conversation
// the sender has in progress.
func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	userID := msg.From.ID
	if _, ok := b.sessions.Upload(userID); ok {
		if msg.Text == "" {
			b.handleUploadMedia(msg)
		}
		return
	}
	if _, ok := b.sessions.Channel(userID); ok && msg.Text != "" {
		b.handleChannelInfo(msg)
	}
}

func (b *Bot) categoryLink(categoryID string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s%s", b.cfg.BotUsername, deepLinkPrefix, categoryID)
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (b *Bot) editText(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		log.Printf("Error editing message: %v", err)
	}
}

// memberChecker adapts the Telegram client to the access evaluator.
type memberChecker struct {
	api API
}

func (c memberChecker) MemberStatus(channelID string, userID int64) (string, error) {
	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: userID},
	}
	if chatID, err := strconv.ParseInt(channelID, 10, 64); err == nil {
		cfg.ChatID = chatID
	} else {
		cfg.SuperGroupUsername = channelID
	}
	member, err := c.api.GetChatMember(cfg)
	if err != nil {
		return "", err
	}
	return member.Status, nil
}
