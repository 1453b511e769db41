package bot

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/arashpm/uploadmaster/internal/config"
	"github.com/arashpm/uploadmaster/internal/models"
	"github.com/arashpm/uploadmaster/internal/repositories"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	adminID   int64 = 42
	visitorID int64 = 7
)

type fakeAPI struct {
	sent     []tgbotapi.Chattable
	statuses map[string]string // channel id -> member status
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetChatMember(cfg tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	key := cfg.SuperGroupUsername
	if key == "" {
		key = strconv.FormatInt(cfg.ChatID, 10)
	}
	status, ok := f.statuses[key]
	if !ok {
		return tgbotapi.ChatMember{}, errors.New("chat not found")
	}
	return tgbotapi.ChatMember{Status: status}, nil
}

func (f *fakeAPI) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return nil
}

// texts returns the text of every plain message sent so far.
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	texts := f.texts()
	if len(texts) == 0 {
		t.Fatal("no text messages were sent")
	}
	return texts[len(texts)-1]
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("getting sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	if err := repositories.Migrate(db); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	api := &fakeAPI{statuses: make(map[string]string)}
	cfg := config.Config{
		BotToken:    "test-token",
		BotUsername: "uploadmaster_bot",
		AdminIDs:    []int64{adminID},
		DatabaseURL: "unused",
	}
	b := New(api, cfg,
		repositories.NewCategoryRepository(db),
		repositories.NewFileRepository(db),
		repositories.NewChannelRepository(db),
	)
	return b, api, db
}

func commandMsg(userID int64, text string) *tgbotapi.Message {
	length := len(text)
	if i := strings.Index(text, " "); i >= 0 {
		length = i
	}
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: userID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func documentMsg(userID int64, fileID, fileName string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: userID},
		Document: &tgbotapi.Document{FileID: fileID, FileName: fileName, FileSize: 10},
	}
}

func textMsg(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
}

func (b *Bot) process(msgs ...*tgbotapi.Message) {
	for _, m := range msgs {
		b.handleUpdate(tgbotapi.Update{Message: m})
	}
}

func seedCategory(t *testing.T, db *gorm.DB, id, name string, files ...models.File) {
	t.Helper()
	if err := repositories.NewCategoryRepository(db).Create(id, name, adminID); err != nil {
		t.Fatalf("seeding category: %v", err)
	}
	if len(files) > 0 {
		if err := repositories.NewFileRepository(db).AddBatch(id, files); err != nil {
			t.Fatalf("seeding files: %v", err)
		}
	}
}

func TestNonAdminCommandRefused(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.process(commandMsg(visitorID, "/new_category secret"))

	if got := api.lastText(t); got != notAllowedReply {
		t.Errorf("reply = %q, want permission refusal", got)
	}
}

func TestSecondUploadDiscardsFirst(t *testing.T) {
	b, _, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA")
	seedCategory(t, db, "bbbb2222", "catB")

	// Start upload A, add X, start upload B without finishing, add Y,
	// finish. Only Y may persist, and only to B.
	b.process(
		commandMsg(adminID, "/upload aaaa1111"),
		documentMsg(adminID, "X", "x.pdf"),
		commandMsg(adminID, "/upload bbbb2222"),
		documentMsg(adminID, "Y", "y.pdf"),
		commandMsg(adminID, "/finish_upload"),
	)

	var files []models.File
	if err := db.Find(&files).Error; err != nil {
		t.Fatalf("listing files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("persisted %d files, want 1", len(files))
	}
	if files[0].FileID != "Y" || files[0].CategoryID != "bbbb2222" {
		t.Errorf("persisted %+v, want file Y in bbbb2222", files[0])
	}
}

func TestFinishUploadWithoutStart(t *testing.T) {
	b, api, _ := newTestBot(t)

	b.process(commandMsg(adminID, "/finish_upload"))

	if got := api.lastText(t); got != "No upload is in progress." {
		t.Errorf("reply = %q", got)
	}
}

func TestUnsupportedMediaRejectedDuringUpload(t *testing.T) {
	b, api, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA")

	sticker := &tgbotapi.Message{
		From:    &tgbotapi.User{ID: adminID},
		Chat:    &tgbotapi.Chat{ID: adminID},
		Sticker: &tgbotapi.Sticker{FileID: "s1"},
	}
	b.process(
		commandMsg(adminID, "/upload aaaa1111"),
		sticker,
	)

	if got := api.lastText(t); got != "That file type is not supported." {
		t.Errorf("reply = %q, want unsupported-type rejection", got)
	}

	// The flow stays open: a supported file is still collected.
	b.process(documentMsg(adminID, "X", "x.pdf"), commandMsg(adminID, "/finish_upload"))
	var count int64
	if err := db.Model(&models.File{}).Count(&count).Error; err != nil {
		t.Fatalf("counting files: %v", err)
	}
	if count != 1 {
		t.Errorf("persisted %d files, want 1", count)
	}
}

func TestCancelDiscardsUpload(t *testing.T) {
	b, _, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA")

	b.process(
		commandMsg(adminID, "/upload aaaa1111"),
		documentMsg(adminID, "X", "x.pdf"),
		commandMsg(adminID, "/cancel"),
		commandMsg(adminID, "/finish_upload"),
	)

	var count int64
	if err := db.Model(&models.File{}).Count(&count).Error; err != nil {
		t.Fatalf("counting files: %v", err)
	}
	if count != 0 {
		t.Errorf("persisted %d files after cancel, want 0", count)
	}
}

func TestDeepLinkWithoutChannelsDeliversImmediately(t *testing.T) {
	b, api, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA", models.File{
		FileID: "f1", FileName: "a.pdf", FileType: models.FileTypeDocument,
	})

	b.process(commandMsg(visitorID, "/start cat_aaaa1111"))

	// No gate message: the files go straight out.
	var docs int
	for _, c := range api.sent {
		switch c.(type) {
		case tgbotapi.DocumentConfig:
			docs++
		}
		if m, ok := c.(tgbotapi.MessageConfig); ok && m.ReplyMarkup != nil {
			t.Errorf("gate keyboard shown with zero registered channels: %q", m.Text)
		}
	}
	if docs != 1 {
		t.Errorf("delivered %d documents, want 1", docs)
	}
}

func TestDeepLinkGateListsMissingChannels(t *testing.T) {
	b, api, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA", models.File{
		FileID: "f1", FileName: "a.pdf", FileType: models.FileTypeDocument,
	})
	if err := repositories.NewChannelRepository(db).Add("-100111", "News", "https://t.me/news"); err != nil {
		t.Fatalf("seeding channel: %v", err)
	}
	api.statuses["-100111"] = "left"

	b.process(commandMsg(visitorID, "/start cat_aaaa1111"))

	last, ok := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("last send was %T, want MessageConfig", api.sent[len(api.sent)-1])
	}
	markup, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatal("denial message carries no inline keyboard")
	}
	// One row per missing channel plus the recheck button.
	if len(markup.InlineKeyboard) != 2 {
		t.Errorf("keyboard has %d rows, want 2", len(markup.InlineKeyboard))
	}
	for _, c := range api.sent {
		if _, isDoc := c.(tgbotapi.DocumentConfig); isDoc {
			t.Error("files delivered despite denial")
		}
	}
}

func TestMembershipRecheckDeliversAfterJoin(t *testing.T) {
	b, api, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA", models.File{
		FileID: "f1", FileName: "a.pdf", FileType: models.FileTypeDocument,
	})
	if err := repositories.NewChannelRepository(db).Add("-100111", "News", "https://t.me/news"); err != nil {
		t.Fatalf("seeding channel: %v", err)
	}
	api.statuses["-100111"] = "member"

	b.handleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: visitorID},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: visitorID}},
		Data:    cbCheckMembership + "aaaa1111",
	}})

	var docs int
	for _, c := range api.sent {
		if _, ok := c.(tgbotapi.DocumentConfig); ok {
			docs++
		}
	}
	if docs != 1 {
		t.Errorf("delivered %d documents after recheck, want 1", docs)
	}
}

func TestAdminDeepLinkShowsPanel(t *testing.T) {
	b, api, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA")

	b.process(commandMsg(adminID, "/start cat_aaaa1111"))

	last, ok := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("last send was %T, want MessageConfig", api.sent[len(api.sent)-1])
	}
	if _, ok := last.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
		t.Error("admin panel carries no inline keyboard")
	}
}

func TestChannelRegistrationFlow(t *testing.T) {
	b, api, db := newTestBot(t)

	b.process(
		commandMsg(adminID, "/add_channel"),
		textMsg(adminID, "-100111"),
		textMsg(adminID, "News Channel"),
		textMsg(adminID, "https://t.me/news"),
	)

	var channels []models.Channel
	if err := db.Find(&channels).Error; err != nil {
		t.Fatalf("listing channels: %v", err)
	}
	if len(channels) != 1 {
		t.Fatalf("registered %d channels, want 1", len(channels))
	}
	got := channels[0]
	if got.ChannelID != "-100111" || got.ChannelName != "News Channel" || got.InviteLink != "https://t.me/news" {
		t.Errorf("registered channel = %+v", got)
	}

	// A second run with the same ID is rejected but still clears the flow.
	b.process(
		commandMsg(adminID, "/add_channel"),
		textMsg(adminID, "-100111"),
		textMsg(adminID, "Other Name"),
		textMsg(adminID, "https://t.me/other"),
	)
	if got := api.lastText(t); got != "That channel is already registered." {
		t.Errorf("duplicate reply = %q", got)
	}
	if _, ok := b.sessions.Channel(adminID); ok {
		t.Error("channel flow not cleared after duplicate")
	}
}

func TestNewCategoryReturnsDeepLink(t *testing.T) {
	b, api, db := newTestBot(t)

	b.process(commandMsg(adminID, "/new_category lecture notes"))

	var categories []models.Category
	if err := db.Find(&categories).Error; err != nil {
		t.Fatalf("listing categories: %v", err)
	}
	if len(categories) != 1 {
		t.Fatalf("created %d categories, want 1", len(categories))
	}
	if categories[0].Name != "lecture notes" {
		t.Errorf("category name = %q", categories[0].Name)
	}
	wantLink := "https://t.me/uploadmaster_bot?start=cat_" + categories[0].ID
	if got := api.lastText(t); !strings.Contains(got, wantLink) {
		t.Errorf("reply %q does not contain deep-link %q", got, wantLink)
	}
}

func TestDeleteFileCallbackRemovesByIndex(t *testing.T) {
	b, _, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA",
		models.File{FileID: "first", FileName: "1.pdf", FileType: models.FileTypeDocument},
		models.File{FileID: "second", FileName: "2.pdf", FileType: models.FileTypeDocument},
	)

	b.handleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: adminID},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: adminID}},
		Data:    cbDeleteFileAt + "aaaa1111_0",
	}})

	var files []models.File
	if err := db.Find(&files).Error; err != nil {
		t.Fatalf("listing files: %v", err)
	}
	if len(files) != 1 || files[0].FileID != "second" {
		t.Errorf("remaining files = %+v, want only second", files)
	}
}

func TestCallbackRefusedForNonAdmin(t *testing.T) {
	b, _, db := newTestBot(t)
	seedCategory(t, db, "aaaa1111", "catA",
		models.File{FileID: "first", FileName: "1.pdf", FileType: models.FileTypeDocument},
	)

	b.handleUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "q1",
		From:    &tgbotapi.User{ID: visitorID},
		Message: &tgbotapi.Message{MessageID: 5, Chat: &tgbotapi.Chat{ID: visitorID}},
		Data:    cbDeleteCategory + "aaaa1111",
	}})

	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		t.Fatalf("counting categories: %v", err)
	}
	if count != 1 {
		t.Error("non-admin callback mutated categories")
	}
}
