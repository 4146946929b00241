package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-service-core/apperr"
	"github.com/goliatone/go-service-core/httperr"
	"github.com/goliatone/go-service-core/internal/search"
	"github.com/shopspring/decimal"
)

type Items struct {
	svc *search.Service
}

func NewItems(svc *search.Service) *Items {
	return &Items{svc: svc}
}

func (h *Items) Mount(r chi.Router, t *httperr.Translator) {
	r.Route("/items", func(r chi.Router) {
		r.Method(http.MethodGet, "/", t.Handle(h.list))
		r.Method(http.MethodPost, "/", t.Handle(h.create))
		r.Method(http.MethodGet, "/search", t.Handle(h.search))
		r.Method(http.MethodPost, "/reindex", t.Handle(h.reindex))
		r.Method(http.MethodGet, "/source/{source}/{sourceId}", t.Handle(h.bySource))
		r.Method(http.MethodGet, "/{id}", t.Handle(h.get))
		r.Method(http.MethodPut, "/{id}", t.Handle(h.update))
		r.Method(http.MethodDelete, "/{id}", t.Handle(h.delete))
	})
}

func (h *Items) search(w http.ResponseWriter, r *http.Request) error {
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		return err
	}
	res, err := h.svc.Search(r.Context(), q)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// parseQuery reads the search parameters, reporting every malformed one at
// once.
func parseQuery(v url.Values) (search.Query, error) {
	fields := map[string][]string{}

	dec := func(name string) *decimal.Decimal {
		raw := strings.TrimSpace(v.Get(name))
		if raw == "" {
			return nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			fields[name] = append(fields[name], "must be a number")
			return nil
		}
		return &d
	}
	num := func(name string) int {
		raw := strings.TrimSpace(v.Get(name))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			fields[name] = append(fields[name], "must be a non-negative integer")
			return 0
		}
		return n
	}

	minPrice, maxPrice := dec("minPrice"), dec("maxPrice")
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		fields["minPrice"] = append(fields["minPrice"], "must not exceed maxPrice")
	}
	page, size := num("page"), num("pageSize")

	if len(fields) > 0 {
		return search.Query{}, apperr.Validation(fields)
	}

	return search.NewQuery(
		search.WithText(v.Get("q")),
		search.WithCategory(v.Get("category")),
		search.WithPriceRange(minPrice, maxPrice),
		search.WithStatus(v.Get("status")),
		search.WithSource(v.Get("source")),
		search.WithPage(page, size),
	), nil
}

func (h *Items) list(w http.ResponseWriter, r *http.Request) error {
	items, err := h.svc.List(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, items)
}

func (h *Items) get(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, "id")
	if err != nil {
		return err
	}
	item, err := h.svc.Get(r.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, item)
}

func (h *Items) bySource(w http.ResponseWriter, r *http.Request) error {
	sourceID, err := uuidParam(r, "sourceId")
	if err != nil {
		return err
	}
	item, err := h.svc.GetBySource(r.Context(), chi.URLParam(r, "source"), sourceID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, item)
}

func (h *Items) create(w http.ResponseWriter, r *http.Request) error {
	var in search.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	item, err := h.svc.Create(r.Context(), in)
	if err != nil {
		return err
	}
	w.Header().Set("Location", r.URL.Path+"/"+item.ID.String())
	return writeJSON(w, http.StatusCreated, item)
}

func (h *Items) update(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, "id")
	if err != nil {
		return err
	}
	var in search.UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		return err
	}
	item, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, item)
}

func (h *Items) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := uuidParam(r, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		return err
	}
	return writeJSON(w, http.StatusNoContent, nil)
}

func (h *Items) reindex(w http.ResponseWriter, r *http.Request) error {
	n, err := h.svc.Reindex(r.Context())
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]int{"reindexed": n})
}
