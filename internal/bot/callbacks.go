package bot

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/arashpm/uploadmaster/internal/repositories"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes for inline buttons.
const (
	cbCheckMembership = "check_membership_"
	cbViewFiles       = "view_"
	cbAddFiles        = "add_"
	cbDeleteFileMenu  = "delete_file_"
	cbDeleteCategory  = "delete_cat_"
	cbConfirmDelete   = "confirm_del_cat_"
	cbDeleteFileAt    = "del_file_"
	cbCancel          = "cancel"
)

func (b *Bot) handleCallback(query *tgbotapi.CallbackQuery) {
	// Stop the client-side spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
	if query.Message == nil {
		return
	}

	userID := query.From.ID
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	data := query.Data

	if strings.HasPrefix(data, cbCheckMembership) {
		// Membership may have changed since the denial, so the gate is
		// evaluated again from scratch.
		b.handleCategoryAccess(chatID, userID, strings.TrimPrefix(data, cbCheckMembership))
		return
	}

	if !b.access.IsAdmin(userID) {
		b.editText(chatID, messageID, notAllowedReply)
		return
	}

	switch {
	case strings.HasPrefix(data, cbViewFiles):
		b.handleViewFiles(chatID, messageID, strings.TrimPrefix(data, cbViewFiles))
	case strings.HasPrefix(data, cbAddFiles):
		b.handleStartAddingFiles(chatID, messageID, userID, strings.TrimPrefix(data, cbAddFiles))
	case strings.HasPrefix(data, cbDeleteFileMenu):
		b.handleDeleteFileMenu(chatID, messageID, strings.TrimPrefix(data, cbDeleteFileMenu))
	case strings.HasPrefix(data, cbConfirmDelete):
		b.handleDeleteCategory(chatID, messageID, strings.TrimPrefix(data, cbConfirmDelete))
	case strings.HasPrefix(data, cbDeleteCategory):
		b.handleConfirmDeletion(chatID, messageID, strings.TrimPrefix(data, cbDeleteCategory))
	case strings.HasPrefix(data, cbDeleteFileAt):
		b.handleDeleteFileAt(chatID, messageID, strings.TrimPrefix(data, cbDeleteFileAt))
	case data == cbCancel:
		b.editText(chatID, messageID, "Operation cancelled.")
	}
}

func (b *Bot) handleViewFiles(chatID int64, messageID int, categoryID string) {
	category, err := b.categories.Get(categoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		b.editText(chatID, messageID, "Category not found.")
		return
	}
	if err != nil {
		b.editText(chatID, messageID, genericErrorReply)
		return
	}
	if len(category.Files) == 0 {
		b.editText(chatID, messageID, "This category has no files yet.")
		return
	}

	b.editText(chatID, messageID, "Sending files...")
	b.delivery.Deliver(chatID, category)
}

func (b *Bot) handleStartAddingFiles(chatID int64, messageID int, userID int64, categoryID string) {
	b.sessions.StartUpload(userID, categoryID)
	b.editText(chatID, messageID,
		"Upload mode enabled.\n\nSend the new files now.\nUse /finish_upload when you are done, or /cancel to discard.")
}

func (b *Bot) handleDeleteFileMenu(chatID int64, messageID int, categoryID string) {
	category, err := b.categories.Get(categoryID)
	if err != nil || len(category.Files) == 0 {
		b.editText(chatID, messageID, "This category has no files yet.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(category.Files))
	for i, file := range category.Files {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"🗑 "+file.FileName,
				fmt.Sprintf("%s%s_%d", cbDeleteFileAt, categoryID, i),
			),
		))
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		"Which file do you want to delete?",
		tgbotapi.NewInlineKeyboardMarkup(rows...),
	)
	b.send(edit)
}

func (b *Bot) handleDeleteFileAt(chatID int64, messageID int, payload string) {
	// payload is <category_id>_<index>; category ids contain no underscores.
	sep := strings.LastIndex(payload, "_")
	if sep < 0 {
		return
	}
	categoryID := payload[:sep]
	index, err := strconv.Atoi(payload[sep+1:])
	if err != nil {
		return
	}

	deleted, err := b.files.DeleteAt(categoryID, index)
	if err != nil {
		b.editText(chatID, messageID, genericErrorReply)
		return
	}
	if !deleted {
		b.editText(chatID, messageID, "File not found.")
		return
	}
	b.editText(chatID, messageID, "File deleted!")
}

func (b *Bot) handleConfirmDeletion(chatID int64, messageID int, categoryID string) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		"Are you sure you want to delete this category?\nThis cannot be undone!",
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Yes, delete it", cbConfirmDelete+categoryID),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", cbCancel),
			),
		),
	)
	b.send(edit)
}

func (b *Bot) handleDeleteCategory(chatID int64, messageID int, categoryID string) {
	category, err := b.categories.Get(categoryID)
	if errors.Is(err, repositories.ErrNotFound) {
		b.editText(chatID, messageID, "Category not found.")
		return
	}
	if err != nil {
		b.editText(chatID, messageID, genericErrorReply)
		return
	}

	if err := b.categories.Delete(categoryID); err != nil {
		b.editText(chatID, messageID, genericErrorReply)
		return
	}
	b.editText(chatID, messageID, fmt.Sprintf("Category %q deleted!", category.Name))
}
