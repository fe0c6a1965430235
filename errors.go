package ember

import "errors"

var (
	// ErrInvalidState is returned by SwitchState when the state exposes
	// neither a create nor an update callback.
	ErrInvalidState = errors.New("ember: invalid state: must provide Create or Update")

	// ErrInvalidFramerate is returned by SetFramerate for non-positive rates.
	ErrInvalidFramerate = errors.New("ember: framerate must be positive")

	// ErrAssetNotFound is returned by cache lookups for unknown keys.
	ErrAssetNotFound = errors.New("ember: asset not found")
)
