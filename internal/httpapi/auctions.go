package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/httperr"
	"github.com/goliatone/go-service-core/internal/auction"
)

// UserHeader carries the caller's user name, set by the gateway after
// authentication.
const UserHeader = "X-User-Name"

type Auctions struct {
	svc *auction.Service
}

func NewAuctions(svc *auction.Service) *Auctions {
	return &Auctions{svc: svc}
}

func (h *Auctions) Mount(r chi.Router, t *httperr.Translator) {
	r.Route("/auctions", func(r chi.Router) {
		r.Method(http.MethodGet, "/", t.Handle(h.list))
		r.Method(http.MethodPost, "/", t.Handle(h.create))
		r.Method(http.MethodGet, "/{id}", t.Handle(h.get))
		r.Method(http.MethodPut, "/{id}", t.Handle(h.update))
		r.Method(http.MethodDelete, "/{id}", t.Handle(h.delete))
	})
}

func (h *Auctions) list(w http.ResponseWriter, r *http.Request) error {
	auctions, err := h.svc.List(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, auctions)
}

func (h *Auctions) get(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

func (h *Auctions) create(w http.ResponseWriter, r *http.Request) error {
	seller := strings.TrimSpace(r.Header.Get(UserHeader))
	if seller == "" {
		return apperr.Unauthorized("Authentication is required to create an auction")
	}

	var in auction.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	a, err := h.svc.Create(r.Context(), in, seller)
	if err != nil {
		return err
	}
	w.Header().Set("Location", r.URL.Path+"/"+a.ID.String())
	return writeJSON(w, http.StatusCreated, a)
}

func (h *Auctions) update(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, "id")
	if err != nil {
		return err
	}
	var in auction.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	a, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

func (h *Auctions) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		return err
	}
	return writeJSON(w, http.StatusNoContent, nil)
}
