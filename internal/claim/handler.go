// AngelaMos | 2026
// handler.go

package claim

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/perkhub/internal/core"
	"github.com/carterperez-dev/perkhub/internal/middleware"
)

const submittedMessage = "Deal claimed successfully"

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/claims", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Submit)
		r.Get("/me", h.ListMine)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/claims", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Put("/{claimID}/status", h.UpdateStatus)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	detail, err := h.service.Submit(r.Context(), userID, req.DealID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.Created(w, SubmitResponse{
		Claim:   ToClaimResponse(detail.Claim, detail.Deal),
		Message: submittedMessage,
	})
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	history, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, r, err)
		return
	}

	core.OK(w, ToHistoryResponse(history))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.ValidationFailed(w, err)
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), chi.URLParam(r, "claimID"), req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	core.OK(w, map[string]any{"claim": ToClaimResponse(updated, nil)})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := AppError(err); ok {
		core.JSONError(w, appErr)
		return
	}
	core.InternalServerError(w, r, err)
}
