// AngelaMos | 2026
// errors.go

package deal

import (
	"errors"
	"net/http"

	"github.com/carterperez-dev/perkhub/internal/core"
)

var (
	ErrNotFound           = errors.New("deal not found")
	ErrInvalidAccessLevel = errors.New("invalid access level")
)

const (
	CodeDealNotFound       = "DEAL_NOT_FOUND"
	CodeInvalidAccessLevel = "INVALID_ACCESS_LEVEL"
)

func NotFoundError() *core.AppError {
	return core.NewAppError(
		ErrNotFound,
		"Deal not found or is no longer active",
		http.StatusNotFound,
		CodeDealNotFound,
	)
}

func InvalidAccessLevelError(got string) *core.AppError {
	return core.NewAppError(
		ErrInvalidAccessLevel,
		"Invalid accessLevel. Must be 'public' or 'locked'",
		http.StatusBadRequest,
		CodeInvalidAccessLevel,
	).WithDetails(map[string]any{
		"accessLevel": got,
		"allowed":     []AccessLevel{AccessPublic, AccessLocked},
	})
}
