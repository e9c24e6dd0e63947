package forecast

import (
	"errors"
	"fmt"

	"github.com/sartorproj/plotcast/timeseries"
)

// ErrNotDense is returned by a strategy given a series with a missing day or
// a non-finite value.
var ErrNotDense = errors.New("series is not a dense daily series")

// ModelFitError reports a numerical failure inside a strategy: the optimizer
// hit its caps, a system was singular, the output was not finite, or the
// series was too short for the model order.
type ModelFitError struct {
	Model Model
	Err   error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("%s fit failed: %v", e.Model, e.Err)
}

func (e *ModelFitError) Unwrap() error {
	return e.Err
}

// checkDense rejects series the models cannot index by day.
func checkDense(model Model, series *timeseries.Series) error {
	if series == nil || !series.IsDense() {
		return &ModelFitError{Model: model, Err: ErrNotDense}
	}
	return nil
}
