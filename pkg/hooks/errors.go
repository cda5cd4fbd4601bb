package hooks

import (
	"fmt"

	"github.com/glorpus-work/multifetch/pkg/errors"
)

// ErrHookTypeEmpty is returned when a hook type is empty.
var ErrHookTypeEmpty = fmt.Errorf("hook type cannot be empty")

// ErrUnsupportedHookType is returned for a hook type that is neither post-download nor download-failed.
func ErrUnsupportedHookType(hookType string) error {
	return errors.Wrapf(errors.ErrHookLoad, "unsupported hook type: %s", hookType)
}
