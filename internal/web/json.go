package web

import "github.com/sweeney/pedal-relay/internal/status"

// StatusJSON re-exports the status envelope so tests can decode the
// endpoint without importing two packages.
type StatusJSON = status.StatusJSON

func formatJSON(snap status.Snapshot) []byte {
	return status.FormatJSON(snap)
}
