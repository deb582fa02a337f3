package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/go-social-client/internal/errors"
	"github.com/pribylovaa/go-social-client/internal/models"
)

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in models.Credentials
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	sess, err := h.Auth.Login(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sess)
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in models.Registration
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	sess, err := h.Auth.Register(r.Context(), in)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.Logout(r.Context()); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Session отдаёт текущую сессию; без входа — 200 с is_authenticated=false.
func (h *Handlers) Session(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Auth.Whoami())
}
