package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ivanoskov/keloladuit/internal/ledger"
	"github.com/ivanoskov/keloladuit/internal/logger"
	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/repository"
	"github.com/ivanoskov/keloladuit/internal/state"
	"github.com/ivanoskov/keloladuit/internal/validation"
)

const deleteConcurrency = 8

// Session is one user's live view. Every access to the aggregator holds mu;
// store calls are made without it.
type Session struct {
	tracker *Tracker
	log     *logger.Logger

	mu   sync.Mutex
	user *model.User
	agg  *ledger.Aggregator
}

func (s *Session) setUser(u *model.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// User returns the session owner
func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) uid() string {
	return s.User().ID
}

// Reload replaces the live view with the store's records
func (s *Session) Reload(ctx context.Context) error {
	t := s.tracker
	records, err := t.repo.ListTransactions(ctx, s.uid())
	if err != nil {
		return t.remoteFailure(ctx, s.log, "list", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.agg.Ingest(records); err != nil {
		return fmt.Errorf("ingest transactions: %w", err)
	}
	return nil
}

func (s *Session) applyReset(ctx context.Context) error {
	t := s.tracker
	uid := s.uid()
	last, err := state.LastResetMonth(ctx, t.state, uid)
	if err != nil {
		return err
	}

	s.mu.Lock()
	res := s.agg.ApplyMonthlyReset(t.opts.Clock(), last)
	s.mu.Unlock()

	if !res.Reset {
		return nil
	}
	t.metrics.MonthlyReset()
	s.log.InfoContext(ctx, "monthly reset applied", "month", res.LastResetMonth)
	return state.SaveLastResetMonth(ctx, t.state, uid, res.LastResetMonth)
}

// RecordNew validates and records a transaction according to the tracker's
// apply policy. Under the eager policy a store failure is returned wrapped in
// ErrRemote together with the locally recorded transaction.
func (s *Session) RecordNew(ctx context.Context, in validation.Transaction) (model.Transaction, error) {
	t := s.tracker
	in.Description = strings.TrimSpace(in.Description)
	in.Payment = strings.TrimSpace(in.Payment)
	if err := t.validator.Struct(in); err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	date, err := model.ParseDate(in.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	tx := model.Transaction{
		Date:        date,
		Description: in.Description,
		Type:        model.TransactionType(strings.ToLower(in.Type)),
		Payment:     in.Payment,
		Amount:      in.Amount,
		Month:       model.MonthKey(date),
	}
	uid := s.uid()

	if t.opts.Policy == PolicyConfirm {
		id, err := t.repo.CreateTransaction(ctx, uid, tx)
		if err != nil {
			return model.Transaction{}, t.remoteFailure(ctx, s.log, "create", err)
		}
		tx.ID = id
		s.mu.Lock()
		tx, err = s.agg.Insert(tx)
		s.mu.Unlock()
		if err != nil {
			return model.Transaction{}, err
		}
		t.metrics.TransactionRecorded(tx.Type)
		return tx, nil
	}

	s.mu.Lock()
	tx, ref, err := s.agg.RecordNew(tx)
	s.mu.Unlock()
	if err != nil {
		return model.Transaction{}, err
	}
	t.metrics.TransactionRecorded(tx.Type)

	id, err := t.repo.CreateTransaction(ctx, uid, tx)
	if err != nil {
		return tx, t.remoteFailure(ctx, s.log, "create", err)
	}
	s.mu.Lock()
	s.agg.AttachID(ref, id)
	s.mu.Unlock()
	tx.ID = id
	return tx, nil
}

// Delete removes a transaction by id, from the store first and then from the
// live view. A record the store still holds is deleted even when the live view
// no longer shows it, as after a monthly reset. The store reporting the id as
// already gone counts as success. removed reports whether either side held it.
func (s *Session) Delete(ctx context.Context, id string) (bool, error) {
	t := s.tracker
	if id == "" {
		return false, nil
	}

	err := t.repo.DeleteTransaction(ctx, s.uid(), id)
	storeRemoved := err == nil
	if errors.Is(err, repository.ErrNotFound) {
		err = nil
	}
	if err != nil && t.opts.Policy == PolicyConfirm {
		return false, t.remoteFailure(ctx, s.log, "delete", err)
	}

	s.mu.Lock()
	_, localRemoved := s.agg.Delete(id)
	s.mu.Unlock()
	removed := localRemoved || storeRemoved
	if removed {
		t.metrics.TransactionDeleted()
	}
	if err != nil {
		return removed, t.remoteFailure(ctx, s.log, "delete", err)
	}
	return removed, nil
}

type Dashboard struct {
	Month        string              `json:"month"`
	Label        string              `json:"label"`
	Payment      string              `json:"payment"`
	Summary      ledger.Summary      `json:"summary"`
	Transactions []model.Transaction `json:"transactions"`
	Insight      Insight             `json:"insight"`
}

// Dashboard returns the current month, optionally narrowed to one payment
// method. Totals cover the narrowed list; the insight covers the whole month.
func (s *Session) Dashboard(payment string) Dashboard {
	payment = strings.TrimSpace(payment)
	if payment == "" {
		payment = ledger.AllPayments
	}
	s.mu.Lock()
	month := s.agg.CurrentMonth()
	txs := s.agg.Filter(month, payment)
	s.mu.Unlock()

	summary := ledger.Summarize(txs)
	summary.Month = month
	return Dashboard{
		Month:        month,
		Label:        MonthLabel(month),
		Payment:      payment,
		Summary:      summary,
		Transactions: txs,
		Insight:      s.Insight(),
	}
}

type MonthCard struct {
	ledger.Summary
	Label  string        `json:"label"`
	Health ledger.Health `json:"health"`
}

// History returns summaries of every past month, oldest first
func (s *Session) History() []MonthCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	summaries := s.agg.History()
	cards := make([]MonthCard, 0, len(summaries))
	for _, sum := range summaries {
		cards = append(cards, MonthCard{
			Summary: sum,
			Label:   MonthLabel(sum.Month),
			Health:  s.agg.ClassifyHealth(sum.Month),
		})
	}
	return cards
}

type MonthDetail struct {
	MonthCard
	Transactions []model.Transaction `json:"transactions"`
}

// MonthDetail returns one month's totals and transactions
func (s *Session) MonthDetail(month string) (MonthDetail, error) {
	if err := s.tracker.validator.Struct(validation.MonthQuery{Month: month}); err != nil {
		return MonthDetail{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return MonthDetail{
		MonthCard: MonthCard{
			Summary: s.agg.ComputeMonthSummary(month),
			Label:   MonthLabel(month),
			Health:  s.agg.ClassifyHealth(month),
		},
		Transactions: s.agg.Month(month),
	}, nil
}

// Series returns the trailing monthly expense totals
func (s *Session) Series() []ledger.SeriesPoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.ComputeTrailingSeries(s.tracker.opts.TrailingPoints)
}

// MonthTotals returns the income and expense totals of one month
func (s *Session) MonthTotals(month string) ledger.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.ComputeMonthSummary(month)
}

// Health classifies the current month
func (s *Session) Health() ledger.Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agg.ClassifyHealth(s.agg.CurrentMonth())
}

type Insight struct {
	Month           string          `json:"month"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	TotalExpense    decimal.Decimal `json:"total_expense"`
	FavoritePayment string          `json:"favorite_payment"`
	Health          ledger.Health   `json:"health"`
	HealthLabel     string          `json:"health_label"`
	Overspending    bool            `json:"overspending"`
	Message         string          `json:"message"`
}

// Insight describes the current month in one sentence
func (s *Session) Insight() Insight {
	s.mu.Lock()
	month := s.agg.CurrentMonth()
	sum := s.agg.ComputeMonthSummary(month)
	health := s.agg.ClassifyHealth(month)
	s.mu.Unlock()

	in := Insight{
		Month:           month,
		TotalIncome:     sum.TotalIncome,
		TotalExpense:    sum.TotalExpense,
		FavoritePayment: sum.FavoritePayment,
		Health:          health,
		HealthLabel:     HealthLabel(health),
		Overspending:    sum.TotalExpense.GreaterThan(sum.TotalIncome),
	}
	switch {
	case sum.Count == 0:
		in.Message = msgNoData
	case in.Overspending:
		in.Message = msgOverspending
	default:
		in.Message = msgHealthy
	}
	return in
}

const defaultDisplayName = "Pengguna KelolaDuit"

type Profile struct {
	UID         string          `json:"uid"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	PhotoURL    string          `json:"photo_url"`
	JoinedAt    time.Time       `json:"joined_at,omitempty"`
	JoinedLabel string          `json:"joined_label"`
	Stats       ledger.Overview `json:"stats"`
}

// Profile combines the identity, the cached profile and ledger statistics
func (s *Session) Profile(ctx context.Context) (Profile, error) {
	user := s.User()
	cached, err := state.CachedProfile(ctx, s.tracker.state, user.ID)
	if err != nil {
		s.log.WarnContext(ctx, "cached profile unavailable", "error", err)
		cached = nil
	}
	if cached == nil {
		cached = &model.CachedProfile{}
	}

	p := Profile{
		UID:         user.ID,
		Name:        firstNonEmpty(user.DisplayName, cached.FullName, cached.DisplayName, defaultDisplayName),
		Email:       firstNonEmpty(user.Email, cached.Email),
		JoinedAt:    user.CreatedAt,
		JoinedLabel: DateLabel(user.CreatedAt),
	}
	p.PhotoURL = firstNonEmpty(user.PhotoURL, cached.PhotoURL, avatarURL(p.Name))

	s.mu.Lock()
	p.Stats = s.agg.Overview()
	s.mu.Unlock()
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func avatarURL(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=4f46e5&color=fff"
}

type StatementLine struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Payment     string `json:"payment"`
	Amount      string `json:"amount"`
}

type Statement struct {
	Month string          `json:"month"`
	Label string          `json:"label"`
	Owner string          `json:"owner"`
	Lines []StatementLine `json:"lines"`
	Total ledger.Summary  `json:"total"`
}

// Statement returns the current month as export lines
func (s *Session) Statement() Statement {
	s.mu.Lock()
	month := s.agg.CurrentMonth()
	txs := s.agg.Month(month)
	owner := s.user.Email
	s.mu.Unlock()

	st := Statement{
		Month: month,
		Label: MonthLabel(month),
		Owner: owner,
		Lines: make([]StatementLine, 0, len(txs)),
		Total: ledger.Summarize(txs),
	}
	st.Total.Month = month
	for _, tx := range txs {
		st.Lines = append(st.Lines, StatementLine{
			Date:        tx.Date.Format(model.DateLayout),
			Description: tx.Description,
			Payment:     tx.Payment,
			Amount:      FormatRupiah(tx.Amount),
		})
	}
	return st
}

// Text renders the statement as a plain document
func (st Statement) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Laporan Keuangan %s\n", st.Label)
	if st.Owner != "" {
		fmt.Fprintf(&b, "%s\n", st.Owner)
	}
	b.WriteString("\n")
	for _, l := range st.Lines {
		fmt.Fprintf(&b, "%s | %s | %s | %s\n", l.Date, l.Description, l.Payment, l.Amount)
	}
	fmt.Fprintf(&b, "\nPemasukan: %s\nPengeluaran: %s\nSaldo: %s\n",
		FormatRupiah(st.Total.TotalIncome), FormatRupiah(st.Total.TotalExpense), FormatRupiah(st.Total.Balance))
	return b.String()
}

// DeleteAccount removes every stored transaction of the user, their cached
// state and, when an account manager is configured, the account itself.
func (s *Session) DeleteAccount(ctx context.Context) error {
	t := s.tracker
	uid := s.uid()

	records, err := t.repo.ListTransactions(ctx, uid)
	if err != nil {
		return t.remoteFailure(ctx, s.log, "list", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteConcurrency)
	for _, rec := range records {
		id := rec.ID
		g.Go(func() error {
			err := t.repo.DeleteTransaction(gctx, uid, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return t.remoteFailure(ctx, s.log, "delete_account", err)
	}

	s.mu.Lock()
	s.agg = t.newAggregator()
	s.mu.Unlock()
	t.forget(uid)

	if err := state.Forget(ctx, t.state, uid); err != nil {
		s.log.WarnContext(ctx, "failed to clear local state", "error", err)
	}
	if t.accounts != nil {
		if err := t.accounts.DeleteUser(ctx, uid); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
	}
	s.log.InfoContext(ctx, "account deleted", "transactions", len(records))
	return nil
}
