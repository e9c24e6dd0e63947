package forecast

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is wrapped by every request validation failure.
var ErrInvalidRequest = errors.New("invalid forecast request")

// Horizon bounds, in days.
const (
	MinHorizon     = 7
	MaxHorizon     = 90
	DefaultHorizon = 30
)

// Request selects a model and how many days to forecast.
type Request struct {
	Model   Model `json:"model"`
	Horizon int   `json:"horizon"`
}

// Validate rejects unknown models and horizons outside [MinHorizon, MaxHorizon].
// The horizon is checked even when Model is None.
func (r Request) Validate() error {
	if !r.Model.Valid() {
		return fmt.Errorf("%w: unknown model %d", ErrInvalidRequest, int(r.Model))
	}
	if r.Horizon < MinHorizon || r.Horizon > MaxHorizon {
		return fmt.Errorf("%w: horizon %d outside [%d, %d]", ErrInvalidRequest, r.Horizon, MinHorizon, MaxHorizon)
	}
	return nil
}
