package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/repository"
	"github.com/ivanoskov/keloladuit/internal/service"
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	require.True(t, ok, "last message is %T", f.sent[len(f.sent)-1])
	return msg.Text
}

func (f *fakeSender) last() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

var (
	today = time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	budi  = &tgbotapi.User{ID: 42, FirstName: "Budi"}
	chat  = &tgbotapi.Chat{ID: 7}
)

func newTestBot(t *testing.T) (*Bot, *fakeSender, *repository.MemoryRepository) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	opts := service.DefaultOptions()
	opts.Clock = func() time.Time { return today }
	tracker, err := service.NewTracker(service.Deps{Repo: repo}, opts)
	require.NoError(t, err)
	t.Cleanup(tracker.Close)

	sender := &fakeSender{}
	b := New(sender, tracker, nil)
	b.now = func() time.Time { return today }
	return b, sender, repo
}

func command(text string) tgbotapi.Update {
	cmd := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     budi,
		Chat:     chat,
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}}
}

func text(s string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{From: budi, Chat: chat, Text: s}}
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    budi,
		Message: &tgbotapi.Message{Chat: chat},
		Data:    data,
	}}
}

func TestAddTransactionFlow(t *testing.T) {
	ctx := context.Background()
	b, sender, repo := newTestBot(t)

	require.NoError(t, b.HandleUpdate(ctx, command("/start")))
	assert.Contains(t, sender.lastText(t), "Selamat datang")

	require.NoError(t, b.HandleUpdate(ctx, callback("type_expense")))
	assert.Equal(t, "Metode pembayaran:", sender.lastText(t))
	require.NoError(t, b.HandleUpdate(ctx, callback("pay_cash")))
	assert.Contains(t, sender.lastText(t), "Masukkan jumlah")
	assert.Equal(t, 2, sender.requests)

	require.NoError(t, b.HandleUpdate(ctx, text("50.000 Makan siang")))
	assert.Contains(t, sender.lastText(t), "Transaksi tersimpan")
	assert.Contains(t, sender.lastText(t), "Rp 50.000")

	recs, err := repo.ListTransactions(ctx, "tg-42")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Makan siang", recs[0].Description)
	assert.Equal(t, "cash", recs[0].Payment)
	assert.Equal(t, "2024-03-15", recs[0].Date)

	require.NoError(t, b.HandleUpdate(ctx, command("/report")))
	assert.Contains(t, sender.lastText(t), "📊 Laporan Maret 2024")
	assert.Contains(t, sender.lastText(t), "Pengeluaran: Rp 50.000")

	require.NoError(t, b.HandleUpdate(ctx, command("/delete "+recs[0].ID)))
	assert.Equal(t, "🗑 Transaksi dihapus.", sender.lastText(t))
	require.NoError(t, b.HandleUpdate(ctx, command("/delete "+recs[0].ID)))
	assert.Contains(t, sender.lastText(t), "tidak ditemukan")
}

// downRepository refuses every create
type downRepository struct {
	*repository.MemoryRepository
}

func (downRepository) CreateTransaction(context.Context, string, model.Transaction) (string, error) {
	return "", errors.New("connection refused")
}

func TestRemoteFailureStillRecordsLocally(t *testing.T) {
	ctx := context.Background()
	opts := service.DefaultOptions()
	opts.Clock = func() time.Time { return today }
	tracker, err := service.NewTracker(service.Deps{Repo: downRepository{repository.NewMemoryRepository()}}, opts)
	require.NoError(t, err)
	t.Cleanup(tracker.Close)
	sender := &fakeSender{}
	b := New(sender, tracker, nil)
	b.now = func() time.Time { return today }

	require.NoError(t, b.HandleUpdate(ctx, callback("type_expense")))
	require.NoError(t, b.HandleUpdate(ctx, callback("pay_cash")))
	require.NoError(t, b.HandleUpdate(ctx, text("25000 Parkir")))
	assert.Contains(t, sender.lastText(t), "Transaksi dicatat, tetapi gagal disimpan ke server")
	assert.Contains(t, sender.lastText(t), "Rp 25.000")

	require.NoError(t, b.HandleUpdate(ctx, command("/report")))
	assert.Contains(t, sender.lastText(t), "Pengeluaran: Rp 25.000")
}

func TestEntryWithoutStateShowsMenu(t *testing.T) {
	b, sender, _ := newTestBot(t)
	require.NoError(t, b.HandleUpdate(context.Background(), text("50000 kopi")))
	assert.Equal(t, "Pilih aksi:", sender.lastText(t))
}

func TestBadEntryKeepsState(t *testing.T) {
	ctx := context.Background()
	b, sender, repo := newTestBot(t)
	require.NoError(t, b.HandleUpdate(ctx, text(btnIncome)))
	require.NoError(t, b.HandleUpdate(ctx, callback("pay_transfer")))

	require.NoError(t, b.HandleUpdate(ctx, text("banyak")))
	assert.Contains(t, sender.lastText(t), "Format salah")

	require.NoError(t, b.HandleUpdate(ctx, text("5000000 Gaji 2024-03-01")))
	assert.Contains(t, sender.lastText(t), "Transaksi tersimpan")
	recs, err := repo.ListTransactions(ctx, "tg-42")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "income", recs[0].Type)
	assert.Equal(t, "2024-03-01", recs[0].Date)
}

func TestMonthAndHistoryCommands(t *testing.T) {
	ctx := context.Background()
	b, sender, _ := newTestBot(t)

	require.NoError(t, b.HandleUpdate(ctx, command("/history")))
	assert.Equal(t, "Belum ada riwayat bulan sebelumnya.", sender.lastText(t))

	require.NoError(t, b.HandleUpdate(ctx, command("/month 2024-3")))
	assert.Contains(t, sender.lastText(t), "/month YYYY-MM")

	require.NoError(t, b.HandleUpdate(ctx, command("/month 2024-02")))
	assert.Contains(t, sender.lastText(t), "Februari 2024")
}

func TestChartAndExport(t *testing.T) {
	ctx := context.Background()
	b, sender, _ := newTestBot(t)

	require.NoError(t, b.HandleUpdate(ctx, command("/chart")))
	assert.Equal(t, "Belum ada data untuk grafik.", sender.lastText(t))

	require.NoError(t, b.HandleUpdate(ctx, text(btnExpense)))
	require.NoError(t, b.HandleUpdate(ctx, callback("pay_card")))
	require.NoError(t, b.HandleUpdate(ctx, text("120000 Bensin")))

	require.NoError(t, b.HandleUpdate(ctx, command("/chart")))
	photo, ok := sender.last().(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Contains(t, photo.Caption, "Pengeluaran")

	require.NoError(t, b.HandleUpdate(ctx, command("/export")))
	doc, ok := sender.last().(tgbotapi.DocumentConfig)
	require.True(t, ok)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "laporan-2024-03.txt", file.Name)
	assert.Contains(t, string(file.Bytes), "2024-03-15 | Bensin | card | Rp 120.000")
}

func TestDeleteAccountNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	b, sender, repo := newTestBot(t)
	repo.Seed("tg-42", repositoryRecord("2024-03-01"), repositoryRecord("2024-02-01"))

	// confirming without the prompt does nothing
	require.NoError(t, b.HandleUpdate(ctx, callback("confirm_delete_account")))
	recs, _ := repo.ListTransactions(ctx, "tg-42")
	assert.Len(t, recs, 2)

	require.NoError(t, b.HandleUpdate(ctx, command("/deleteaccount")))
	require.NoError(t, b.HandleUpdate(ctx, callback("confirm_delete_account")))
	assert.Equal(t, "✅ Semua data telah dihapus.", sender.lastText(t))
	recs, _ = repo.ListTransactions(ctx, "tg-42")
	assert.Empty(t, recs)
}

func TestProfileCommand(t *testing.T) {
	b, sender, _ := newTestBot(t)
	require.NoError(t, b.HandleUpdate(context.Background(), command("/profile")))
	assert.Contains(t, sender.lastText(t), "👤 Budi")
	assert.Contains(t, sender.lastText(t), "Total transaksi: 0")
}

func TestParseEntry(t *testing.T) {
	entry, err := parseEntry("1.500,5 Beli buku tulis", today)
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("1500.5")))
	assert.Equal(t, "Beli buku tulis", entry.Description)
	assert.Equal(t, "2024-03-15", entry.Date)

	entry, err = parseEntry("Rp25000 Parkir 2024-02-29", today)
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, "Parkir", entry.Description)
	assert.Equal(t, "2024-02-29", entry.Date)

	// a lone date is the description
	entry, err = parseEntry("100 2024-02-29", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", entry.Description)

	_, err = parseEntry("100", today)
	assert.Error(t, err)
	_, err = parseEntry("seratus rupiah", today)
	assert.Error(t, err)
}

func repositoryRecord(date string) model.Record {
	return model.Record{Date: date, Type: "expense", Payment: "cash", Amount: 1000.0}
}
