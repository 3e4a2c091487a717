package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/service"
)

const (
	awaitingEntry         = "entry"
	awaitingDeleteConfirm = "delete_account"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.handleStart(ctx, message)
	case "add":
		b.handleAdd(message.Chat.ID)
	case "report":
		b.handleReport(ctx, message.From, message.Chat.ID, args)
	case "history":
		b.handleHistory(ctx, message.From, message.Chat.ID)
	case "month":
		b.handleMonth(ctx, message.From, message.Chat.ID, args)
	case "chart":
		b.handleChart(ctx, message.From, message.Chat.ID)
	case "profile":
		b.handleProfile(ctx, message.From, message.Chat.ID)
	case "delete":
		b.handleDelete(ctx, message.From, message.Chat.ID, args)
	case "export":
		b.handleExport(ctx, message.From, message.Chat.ID)
	case "deleteaccount":
		b.handleDeleteAccountPrompt(message.From.ID, message.Chat.ID)
	default:
		b.sendText(message.Chat.ID, "Perintah tidak dikenal. Ketik /start untuk melihat menu.")
	}
	return nil
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) {
	if _, err := b.session(ctx, message.From); err != nil {
		b.sendFailure(message.Chat.ID, err)
		return
	}
	b.clearState(message.From.ID)

	msg := tgbotapi.NewMessage(message.Chat.ID,
		"Selamat datang di KelolaDuit! 💰\n\n"+
			"Saya membantu mencatat pemasukan dan pengeluaranmu:\n\n"+
			"• /add catat transaksi\n"+
			"• /report [metode] ringkasan bulan ini\n"+
			"• /history riwayat bulan sebelumnya\n"+
			"• /month YYYY-MM detail satu bulan\n"+
			"• /chart grafik pengeluaran\n"+
			"• /profile profil dan statistik\n"+
			"• /delete <id> hapus transaksi\n"+
			"• /export laporan bulan ini\n\n"+
			"Pilih aksi:")
	msg.ReplyMarkup = b.getMainKeyboard()
	b.send(msg)
}

func (b *Bot) handleAdd(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Jenis transaksi:")
	msg.ReplyMarkup = b.getTypeKeyboard()
	b.send(msg)
}

func (b *Bot) handleReport(ctx context.Context, from *tgbotapi.User, chatID int64, payment string) {
	sess, err := b.session(ctx, from)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	msg := tgbotapi.NewMessage(chatID, formatDashboard(sess.Dashboard(payment)))
	msg.ReplyMarkup = b.getFilterKeyboard()
	b.send(msg)
}

func (b *Bot) handleHistory(ctx context.Context, from *tgbotapi.User, chatID int64) {
	sess, err := b.session(ctx, from)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	cards := sess.History()
	msg := tgbotapi.NewMessage(chatID, formatHistory(cards))
	if len(cards) > 0 {
		msg.ReplyMarkup = b.getHistoryKeyboard(cards)
	}
	b.send(msg)
}

func (b *Bot) handleMonth(ctx context.Context, from *tgbotapi.User, chatID int64, month string) {
	sess, err := b.session(ctx, from)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	detail, err := sess.MonthDetail(month)
	if err != nil {
		b.sendErrorMessage(chatID, "Gunakan format: /month YYYY-MM")
		return
	}
	b.sendText(chatID, formatMonthDetail(detail))
}

func (b *Bot) handleChart(ctx context.Context, from *tgbotapi.User, chatID int64) {
	sess, err := b.session(ctx, from)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	img, err := b.charts.GenerateExpenseTrend(sess.Series())
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	if img == nil {
		b.sendText(chatID, "Belum ada data untuk grafik.")
		return
	}
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "pengeluaran.png", Bytes: img})
	photo.Caption = "📈 Pengeluaran 12 bulan terakhir"
	b.send(photo)
}

func (b *Bot) handleProfile(ctx context.Context, from *tgbotapi.User, chatID int64) {
	sess, err := b.session(ctx, from)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	p, err := sess.Profile(ctx)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	b.sendText(chatID, formatProfile(p))
}

func (b *Bot) handleDelete(ctx context.Context, from *tgbotapi.User, chatID int64, id string) {
	if id == "" {
		b.sendErrorMessage(chatID, "Gunakan format: /delete <id>")
		return
	}
	sess, err := b.session(ctx, from)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	removed, err := sess.Delete(ctx, id)
	switch {
	case err != nil && !removed:
		b.sendFailure(chatID, err)
	case err != nil:
		b.sendText(chatID, "🗑 Transaksi dihapus di perangkat, tetapi server gagal dihubungi.")
	case !removed:
		b.sendErrorMessage(chatID, "Transaksi tidak ditemukan.")
	default:
		b.sendText(chatID, "🗑 Transaksi dihapus.")
	}
}

func (b *Bot) handleExport(ctx context.Context, from *tgbotapi.User, chatID int64) {
	sess, err := b.session(ctx, from)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	st := sess.Statement()
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "laporan-" + st.Month + ".txt",
		Bytes: []byte(st.Text()),
	})
	doc.Caption = "📄 Laporan " + st.Label
	b.send(doc)
}

func (b *Bot) handleDeleteAccountPrompt(userID, chatID int64) {
	b.setState(model.UserState{UserID: userID, AwaitingAction: awaitingDeleteConfirm})
	msg := tgbotapi.NewMessage(chatID, "⚠️ Semua transaksi akan dihapus permanen. Lanjutkan?")
	msg.ReplyMarkup = b.getConfirmKeyboard()
	b.send(msg)
}

func (b *Bot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID
	from := callback.From
	data := callback.Data

	switch {
	case data == "action_add":
		b.handleAdd(chatID)
	case strings.HasPrefix(data, "type_"):
		txType := model.TransactionType(strings.TrimPrefix(data, "type_"))
		if !txType.Valid() {
			break
		}
		b.setState(model.UserState{UserID: from.ID, TransactionType: txType})
		msg := tgbotapi.NewMessage(chatID, "Metode pembayaran:")
		msg.ReplyMarkup = b.getPaymentKeyboard()
		b.send(msg)
	case strings.HasPrefix(data, "pay_"):
		st := b.state(from.ID)
		if st == nil || st.TransactionType == "" {
			b.handleAdd(chatID)
			break
		}
		st.Payment = strings.TrimPrefix(data, "pay_")
		st.AwaitingAction = awaitingEntry
		b.setState(*st)
		b.sendText(chatID, "Masukkan jumlah dan keterangan, contoh:\n50000 Makan siang\n50000 Makan siang 2024-03-15")
	case strings.HasPrefix(data, "filter_"):
		b.handleReport(ctx, from, chatID, strings.TrimPrefix(data, "filter_"))
	case strings.HasPrefix(data, "month_"):
		b.handleMonth(ctx, from, chatID, strings.TrimPrefix(data, "month_"))
	case data == "confirm_delete_account":
		b.handleDeleteAccount(ctx, from, chatID)
	case data == "action_back":
		b.clearState(from.ID)
		msg := tgbotapi.NewMessage(chatID, "Pilih aksi:")
		msg.ReplyMarkup = b.getMainKeyboard()
		b.send(msg)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.Warn("failed to answer callback", "error", err)
	}
	return nil
}

func (b *Bot) handleDeleteAccount(ctx context.Context, from *tgbotapi.User, chatID int64) {
	st := b.state(from.ID)
	if st == nil || st.AwaitingAction != awaitingDeleteConfirm {
		return
	}
	b.clearState(from.ID)

	sess, err := b.session(ctx, from)
	if err != nil {
		b.sendFailure(chatID, err)
		return
	}
	if err := sess.DeleteAccount(ctx); err != nil {
		b.sendFailure(chatID, err)
		return
	}
	b.sendText(chatID, "✅ Semua data telah dihapus.")
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID

	switch message.Text {
	case btnIncome:
		b.setState(model.UserState{UserID: message.From.ID, TransactionType: model.Income})
		msg := tgbotapi.NewMessage(chatID, "Metode pembayaran:")
		msg.ReplyMarkup = b.getPaymentKeyboard()
		b.send(msg)
		return nil
	case btnExpense:
		b.setState(model.UserState{UserID: message.From.ID, TransactionType: model.Expense})
		msg := tgbotapi.NewMessage(chatID, "Metode pembayaran:")
		msg.ReplyMarkup = b.getPaymentKeyboard()
		b.send(msg)
		return nil
	case btnReport:
		b.handleReport(ctx, message.From, chatID, "")
		return nil
	case btnHistory:
		b.handleHistory(ctx, message.From, chatID)
		return nil
	case btnChart:
		b.handleChart(ctx, message.From, chatID)
		return nil
	case btnProfile:
		b.handleProfile(ctx, message.From, chatID)
		return nil
	}

	st := b.state(message.From.ID)
	if st == nil || st.AwaitingAction != awaitingEntry {
		msg := tgbotapi.NewMessage(chatID, "Pilih aksi:")
		msg.ReplyMarkup = b.getMainKeyboard()
		b.send(msg)
		return nil
	}

	entry, err := parseEntry(message.Text, b.now())
	if err != nil {
		b.sendErrorMessage(chatID, "Format salah. Gunakan: <jumlah> <keterangan> [YYYY-MM-DD]")
		return nil
	}
	entry.Type = string(st.TransactionType)
	entry.Payment = st.Payment

	sess, err := b.session(ctx, message.From)
	if err != nil {
		b.sendFailure(chatID, err)
		return nil
	}
	tx, err := sess.RecordNew(ctx, entry)
	if err != nil && !(errors.Is(err, service.ErrRemote) && !tx.Date.IsZero()) {
		b.sendFailure(chatID, err)
		return nil
	}
	b.clearState(message.From.ID)

	text := "Transaksi tersimpan! ✅\n" + formatTransaction(tx)
	if err != nil {
		text = "Transaksi dicatat, tetapi gagal disimpan ke server. ⚠️\n" + formatTransaction(tx)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = b.getMainKeyboard()
	b.send(msg)
	return nil
}
