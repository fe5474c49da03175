package agent

import (
	"errors"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
)

// AsAppError maps store errors onto the API taxonomy. A rejection by the
// store is an ordinary validation failure for the caller.
func AsAppError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return internal.ErrAgentNotFound
	case errors.Is(err, ErrTypeNotFound):
		return internal.ErrAgentTypeNotFound
	case errors.Is(err, ErrRejected):
		return internal.NewValidationError(
			"the change was rejected because the agent's debt changed; reload and try again",
			internal.ErrCodeRejectedBySystem,
		).WithCause(err)
	}
	return internal.NewInternalError("agent store failure", err)
}
