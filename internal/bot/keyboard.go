package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ivanoskov/keloladuit/internal/ledger"
	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/service"
)

const (
	btnIncome  = "💰 Pemasukan"
	btnExpense = "💸 Pengeluaran"
	btnReport  = "📊 Laporan"
	btnHistory = "📅 Riwayat"
	btnChart   = "📈 Grafik"
	btnProfile = "👤 Profil"
)

func (b *Bot) getMainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnIncome),
			tgbotapi.NewKeyboardButton(btnExpense),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnReport),
			tgbotapi.NewKeyboardButton(btnHistory),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnChart),
			tgbotapi.NewKeyboardButton(btnProfile),
		),
	)
}

func (b *Bot) getTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btnIncome, "type_"+string(model.Income)),
			tgbotapi.NewInlineKeyboardButtonData(btnExpense, "type_"+string(model.Expense)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Kembali", "action_back"),
		),
	)
}

func (b *Bot) getPaymentKeyboard() tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, method := range model.PaymentMethods {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(method, "pay_"+method))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔙 Kembali", "action_back"),
		),
	)
}

func (b *Bot) getFilterKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("semua", "filter_"+ledger.AllPayments),
	}
	for _, method := range model.PaymentMethods {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(method, "filter_"+method))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// getHistoryKeyboard offers the most recent months first, three per row
func (b *Bot) getHistoryKeyboard(cards []service.MonthCard) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i := len(cards) - 1; i >= 0 && len(rows) < 4; i-- {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(cards[i].Label, "month_"+cards[i].Month))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) getConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Hapus semua", "confirm_delete_account"),
			tgbotapi.NewInlineKeyboardButtonData("🔙 Batal", "action_back"),
		),
	)
}
