package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ivanoskov/keloladuit/internal/identity"
	"github.com/ivanoskov/keloladuit/internal/model"
	"github.com/ivanoskov/keloladuit/internal/service"
	"github.com/ivanoskov/keloladuit/internal/validation"
)

type userResponse struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// remoteFailureResponse carries the locally applied result alongside the
// store error
type remoteFailureResponse struct {
	Error       string             `json:"error"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
	Deleted     bool               `json:"deleted,omitempty"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{UID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}

func (h *handler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	sess, err := h.tracker.SessionFor(r.Context(), identity.ContextIdentity{})
	if err != nil {
		writeError(w, r, h.log, err)
		return nil, false
	}
	return sess, true
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req validation.Registration
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	user, err := h.tracker.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req validation.Credentials
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Default().Struct(req); err != nil {
		writeError(w, r, h.log, fmt.Errorf("%w: %w", service.ErrValidation, err))
		return
	}
	token, user, err := h.signIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: toUserResponse(user)})
}

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Dashboard(r.URL.Query().Get("method")))
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.Reload(r.Context()); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Dashboard(""))
}

func (h *handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req validation.Transaction
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	tx, err := sess.RecordNew(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, tx)
	case errors.Is(err, service.ErrRemote) && !tx.Date.IsZero():
		writeJSON(w, http.StatusBadGateway, remoteFailureResponse{Error: err.Error(), Transaction: &tx})
	default:
		writeError(w, r, h.log, err)
	}
}

func (h *handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	removed, err := sess.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err != nil && removed:
		writeJSON(w, http.StatusBadGateway, remoteFailureResponse{Error: err.Error(), Deleted: true})
	case err != nil:
		writeError(w, r, h.log, err)
	case !removed:
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "transaction not found"})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.History())
}

func (h *handler) month(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	detail, err := sess.MonthDetail(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *handler) chart(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Series())
}

func (h *handler) chartImage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	img, err := h.charts.GenerateExpenseTrend(sess.Series())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writePNG(w, img)
}

// writePNG answers 204 when there was nothing to draw
func writePNG(w http.ResponseWriter, img []byte) {
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

func (h *handler) monthChartImage(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if err := validation.Default().Struct(validation.MonthQuery{Month: month}); err != nil {
		writeError(w, r, h.log, fmt.Errorf("%w: %w", service.ErrValidation, err))
		return
	}
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	img, err := h.charts.GenerateMonthTotals(sess.MonthTotals(month))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writePNG(w, img)
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	p, err := sess.Profile(r.Context())
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) export(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	st := sess.Statement()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="laporan-`+st.Month+`.txt"`)
	w.Write([]byte(st.Text()))
}

func (h *handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.DeleteAccount(r.Context()); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
