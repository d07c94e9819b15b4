// AngelaMos | 2026
// dto.go

package claim

import (
	"time"

	"github.com/carterperez-dev/perkhub/internal/deal"
)

type SubmitRequest struct {
	DealID string `json:"dealId" validate:"required,min=1,max=200"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=approved rejected"`
}

type ClaimResponse struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	DealID    string        `json:"dealId"`
	Status    Status        `json:"status"`
	ClaimedAt time.Time     `json:"claimedAt"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Deal      *deal.Summary `json:"deal,omitempty"`
}

type SubmitResponse struct {
	Claim   ClaimResponse `json:"claim"`
	Message string        `json:"message"`
}

type HistoryResponse struct {
	Claims []ClaimResponse `json:"claims"`
	Stats  Stats           `json:"stats"`
}

func ToClaimResponse(c *Claim, d *deal.Summary) ClaimResponse {
	return ClaimResponse{
		ID:        c.ID,
		UserID:    c.UserID,
		DealID:    c.DealID,
		Status:    c.Status,
		ClaimedAt: c.ClaimedAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Deal:      d,
	}
}

func ToHistoryResponse(h *History) HistoryResponse {
	claims := make([]ClaimResponse, 0, len(h.Claims))
	for _, d := range h.Claims {
		claims = append(claims, ToClaimResponse(d.Claim, d.Deal))
	}
	return HistoryResponse{Claims: claims, Stats: h.Stats}
}
