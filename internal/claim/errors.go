// AngelaMos | 2026
// errors.go

package claim

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/carterperez-dev/perkhub/internal/core"
)

var (
	ErrDealNotFound         = errors.New("deal not found or no longer active")
	ErrVerificationRequired = errors.New("verification required")
	ErrDuplicateClaim       = errors.New("deal already claimed")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrInvalidStatus        = errors.New("invalid status")
)

const (
	CodeDealNotFound         = "DEAL_NOT_FOUND"
	CodeVerificationRequired = "VERIFICATION_REQUIRED"
	CodeDuplicateClaim       = "DUPLICATE_CLAIM"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeClaimNotFound        = "CLAIM_NOT_FOUND"
)

type VerificationRequiredError struct {
	DealSlug   string `json:"dealSlug"`
	DealTitle  string `json:"dealTitle"`
	IsVerified bool   `json:"isVerified"`
}

func (e *VerificationRequiredError) Error() string {
	return fmt.Sprintf("deal %q requires a verified account", e.DealSlug)
}

func (e *VerificationRequiredError) Unwrap() error {
	return ErrVerificationRequired
}

// DuplicateClaimError carries the existing claim when it could be read back.
// After a lost insert race the fields may be zero.
type DuplicateClaimError struct {
	ClaimID   string     `json:"claimId,omitempty"`
	Status    Status     `json:"status,omitempty"`
	ClaimedAt *time.Time `json:"claimedAt,omitempty"`
}

func (e *DuplicateClaimError) Error() string {
	if e.ClaimID == "" {
		return "deal already claimed"
	}
	return "deal already claimed as " + e.ClaimID
}

func (e *DuplicateClaimError) Unwrap() error {
	return ErrDuplicateClaim
}

func newDuplicate(existing *Claim) *DuplicateClaimError {
	if existing == nil {
		return &DuplicateClaimError{}
	}
	claimedAt := existing.ClaimedAt
	return &DuplicateClaimError{
		ClaimID:   existing.ID,
		Status:    existing.Status,
		ClaimedAt: &claimedAt,
	}
}

type InvalidTransitionError struct {
	From Status `json:"from"`
	To   Status `json:"to"`
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move claim from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// AppError maps an admission, query or review failure to its HTTP shape.
// ok is false for errors that should surface as internal errors.
func AppError(err error) (*core.AppError, bool) {
	var (
		verification *VerificationRequiredError
		duplicate    *DuplicateClaimError
		transition   *InvalidTransitionError
	)

	switch {
	case errors.Is(err, ErrDealNotFound):
		return core.NewAppError(err,
			"Deal not found or is no longer active",
			http.StatusNotFound,
			CodeDealNotFound,
		), true

	case errors.As(err, &verification):
		return core.NewAppError(err,
			"This deal requires a verified account. Please verify your email to claim locked deals.",
			http.StatusForbidden,
			CodeVerificationRequired,
		).WithDetails(verification), true

	case errors.As(err, &duplicate):
		appErr := core.NewAppError(err,
			"You have already claimed this deal",
			http.StatusConflict,
			CodeDuplicateClaim,
		)
		if duplicate.ClaimID != "" {
			appErr = appErr.WithDetails(duplicate)
		}
		return appErr, true

	case errors.As(err, &transition):
		return core.NewAppError(err,
			transition.Error(),
			http.StatusConflict,
			CodeInvalidTransition,
		).WithDetails(transition), true

	case errors.Is(err, ErrInvalidStatus):
		return core.ValidationError("status must be approved or rejected", nil), true

	case errors.Is(err, core.ErrNotFound):
		return core.NewAppError(err,
			"Claim not found",
			http.StatusNotFound,
			CodeClaimNotFound,
		), true
	}

	return nil, false
}
