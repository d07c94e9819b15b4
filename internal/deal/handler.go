// AngelaMos | 2026
// handler.go

package deal

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/perkhub/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/deals", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{slugOrID}", h.Get)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ParseListParams(r.URL.Query())

	result, err := h.service.List(r.Context(), params)
	if err != nil {
		if errors.Is(err, ErrInvalidAccessLevel) {
			core.JSONError(w, InvalidAccessLevelError(string(params.AccessLevel)))
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	deals := make([]DealResponse, 0, len(result.Deals))
	for _, d := range result.Deals {
		deals = append(deals, ToDealResponse(d))
	}

	core.OK(w, ListResponse{
		Deals: deals,
		Pagination: Pagination{
			Total:   result.Total,
			Limit:   result.Limit,
			Skip:    result.Skip,
			HasMore: result.HasMore(),
		},
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Resolve(r.Context(), chi.URLParam(r, "slugOrID"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			core.JSONError(w, NotFoundError())
			return
		}
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, map[string]any{"deal": ToDealResponse(d)})
}
