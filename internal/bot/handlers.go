package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arashpm/uploadmaster/internal/repositories"
	"github.com/arashpm/uploadmaster/internal/session"
	"github.com/arashpm/uploadmaster/internal/utils"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	genericErrorReply = "Something went wrong, please try again later."
	notAllowedReply   = "You are not allowed to do that."
)

const adminWelcome = `Hello, admin!

Available commands:
/new_category <name> - create a category
/upload <category_id> - start uploading files
/finish_upload - finish uploading
/cancel - cancel the current operation
/categories - list categories
/add_channel - add a mandatory channel
/remove_channel <channel_id> - remove a mandatory channel
/channels - list mandatory channels`

func (b *Bot) handleStart(msg *tgbotapi.Message) {
	payload := msg.CommandArguments()
	if strings.HasPrefix(payload, deepLinkPrefix) {
		b.handleCategoryAccess(msg.Chat.ID, msg.From.ID, strings.TrimPrefix(payload, deepLinkPrefix))
		return
	}

	if b.access.IsAdmin(msg.From.ID) {
		b.reply(msg.Chat.ID, adminWelcome)
		return
	}
	b.reply(msg.Chat.ID, "Hello! Use the links you were given to receive files.")
}

// handleCategoryAccess is the deep-link entry point. Admins get the
// management panel; everyone else passes through the membership gate
// before delivery.
func (b *Bot) handleCategoryAccess(chatID, userID int64, categoryID string) {
	if b.access.IsAdmin(userID) {
		b.sendAdminPanel(chatID, categoryID)
		return
	}

	decision, err := b.access.Check(userID)
	if err != nil {
		b.reply(chatID, genericErrorReply)
		return
	}
	if decision.Granted {
		b.sendCategoryFiles(chatID, categoryID)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(decision.Missing)+1)
	for _, ch := range decision.Missing {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📢 "+ch.ChannelName, ch.InviteLink),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ I joined", cbCheckMembership+categoryID),
	))

	out := tgbotapi.NewMessage(chatID, "To receive the files, please join the channels below first:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(out)
}

func (b *Bot) sendAdminPanel(chatID int64, categoryID string) {
	category, err := b.categories.Get(categoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		b.reply(chatID, "Category not found.")
		return
	}
	if err != nil {
		b.reply(chatID, genericErrorReply)
		return
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📁 View files", cbViewFiles+categoryID)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("➕ Add files", cbAddFiles+categoryID)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🗑 Delete a file", cbDeleteFileMenu+categoryID)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("❌ Delete category", cbDeleteCategory+categoryID)),
	)
	out := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"Category: %s\nFiles: %d\n\nChoose an action:",
		category.Name, len(category.Files),
	))
	out.ReplyMarkup = markup
	b.send(out)
}

func (b *Bot) sendCategoryFiles(chatID int64, categoryID string) {
	category, err := b.categories.Get(categoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		b.reply(chatID, "Category not found.")
		return
	}
	if err != nil {
		b.reply(chatID, genericErrorReply)
		return
	}
	if len(category.Files) == 0 {
		b.reply(chatID, "This category has no files yet.")
		return
	}

	b.reply(chatID, fmt.Sprintf("Sending files from %q...", category.Name))
	b.delivery.Deliver(chatID, category)
}

func (b *Bot) requireAdmin(msg *tgbotapi.Message) bool {
	if b.access.IsAdmin(msg.From.ID) {
		return true
	}
	b.reply(msg.Chat.ID, notAllowedReply)
	return false
}

func (b *Bot) handleNewCategory(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		b.reply(msg.Chat.ID, "Please provide a category name.\nExample: /new_category my category")
		return
	}

	id := utils.NewCategoryID()
	err := b.categories.Create(id, name, msg.From.ID)
	if errors.Is(err, repositories.ErrDuplicateName) {
		b.reply(msg.Chat.ID, "A category with that name already exists.")
		return
	}
	if err != nil {
		b.reply(msg.Chat.ID, genericErrorReply)
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Category %q created!\n\nShare link:\n%s\n\nStart uploading files with:\n/upload %s",
		name, b.categoryLink(id), id,
	))
}

func (b *Bot) handleUpload(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	categoryID := strings.TrimSpace(msg.CommandArguments())
	if categoryID == "" {
		b.reply(msg.Chat.ID, "Please provide a category ID.\nExample: /upload category_id")
		return
	}

	category, err := b.categories.Get(categoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		b.reply(msg.Chat.ID, "Category not found.")
		return
	}
	if err != nil {
		b.reply(msg.Chat.ID, genericErrorReply)
		return
	}

	// A single upload slot per admin: this replaces any upload already in
	// progress and drops its accumulated files.
	b.sessions.StartUpload(msg.From.ID, categoryID)
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"Upload mode enabled for %q.\n\nSend your files now.\nUse /finish_upload when you are done, or /cancel to discard.",
		category.Name,
	))
}

func (b *Bot) handleUploadMedia(msg *tgbotapi.Message) {
	file, ok := extractFileInfo(msg)
	if !ok {
		b.reply(msg.Chat.ID, "That file type is not supported.")
		return
	}

	count, ok := b.sessions.AppendFile(msg.From.ID, file)
	if !ok {
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("Received %q!\nFiles collected so far: %d", file.FileName, count))
}

func (b *Bot) handleFinishUpload(msg *tgbotapi.Message) {
	upload, ok := b.sessions.FinishUpload(msg.From.ID)
	if !ok {
		b.reply(msg.Chat.ID, "No upload is in progress.")
		return
	}
	if len(upload.Files) == 0 {
		b.reply(msg.Chat.ID, "No files were uploaded.")
		return
	}

	if err := b.files.AddBatch(upload.CategoryID, upload.Files); err != nil {
		b.reply(msg.Chat.ID, "Failed to save the files, please try again.")
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf(
		"%d file(s) added!\n\nShare link:\n%s",
		len(upload.Files), b.categoryLink(upload.CategoryID),
	))
}

func (b *Bot) handleCategories(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	categories, err := b.categories.List()
	if err != nil {
		b.reply(msg.Chat.ID, genericErrorReply)
		return
	}
	if len(categories) == 0 {
		b.reply(msg.Chat.ID, "There are no categories yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Categories:\n\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "• %s\n  Files: %d\n  Link: %s\n\n", c.Name, len(c.Files), b.categoryLink(c.ID))
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleAddChannel(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	b.sessions.StartChannel(msg.From.ID)
	b.reply(msg.Chat.ID, `Send the channel details one message at a time, in this order:

1. Channel ID
2. Channel name
3. Invite link

Example:
-1001234567890
Example Channel
https://t.me/example

Use /cancel to stop.`)
}

// handleChannelInfo consumes one plain-text message of the channel
// registration flow. On the third message the channel is persisted and
// the session is cleared either way.
func (b *Bot) handleChannelInfo(msg *tgbotapi.Message) {
	pending, ok := b.sessions.AdvanceChannel(msg.From.ID, strings.TrimSpace(msg.Text))
	if !ok {
		return
	}

	switch pending.Step {
	case session.StepChannelName:
		b.reply(msg.Chat.ID, "Channel ID saved. Now send the channel name:")
	case session.StepInviteLink:
		b.reply(msg.Chat.ID, "Channel name saved. Now send the invite link:")
	case session.StepDone:
		b.sessions.ClearChannel(msg.From.ID)
		err := b.channels.Add(pending.ChannelID, pending.ChannelName, pending.InviteLink)
		switch {
		case errors.Is(err, repositories.ErrDuplicateChannel):
			b.reply(msg.Chat.ID, "That channel is already registered.")
		case err != nil:
			b.reply(msg.Chat.ID, "Failed to add the channel.")
		default:
			b.reply(msg.Chat.ID, "Channel added!")
		}
	}
}

func (b *Bot) handleRemoveChannel(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	channelID := strings.TrimSpace(msg.CommandArguments())
	if channelID == "" {
		b.reply(msg.Chat.ID, "Please provide a channel ID.\nExample: /remove_channel -1001234567890")
		return
	}

	deleted, err := b.channels.Delete(channelID)
	if err != nil {
		b.reply(msg.Chat.ID, genericErrorReply)
		return
	}
	if !deleted {
		b.reply(msg.Chat.ID, "Channel not found.")
		return
	}
	b.reply(msg.Chat.ID, "Channel removed!")
}

func (b *Bot) handleChannels(msg *tgbotapi.Message) {
	if !b.requireAdmin(msg) {
		return
	}

	channels, err := b.channels.List()
	if err != nil {
		b.reply(msg.Chat.ID, genericErrorReply)
		return
	}
	if len(channels) == 0 {
		b.reply(msg.Chat.ID, "No mandatory channels are registered.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Mandatory channels:\n\n")
	for i, ch := range channels {
		fmt.Fprintf(&sb, "%d. %s\n   ID: %s\n   Link: %s\n\n", i+1, ch.ChannelName, ch.ChannelID, ch.InviteLink)
	}
	b.reply(msg.Chat.ID, sb.String())
}

func (b *Bot) handleCancel(msg *tgbotapi.Message) {
	b.sessions.CancelAll(msg.From.ID)
	b.reply(msg.Chat.ID, "Operation cancelled.")
}
