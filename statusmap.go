package coingate

import "fmt"

// RemoteStatus is a CoinGate order status. The set is closed: only the six
// statuses below ever appear in callbacks that drive local transitions.
type RemoteStatus string

const (
	StatusPaid       RemoteStatus = "paid"
	StatusConfirming RemoteStatus = "confirming"
	StatusInvalid    RemoteStatus = "invalid"
	StatusExpired    RemoteStatus = "expired"
	StatusCanceled   RemoteStatus = "canceled"
	StatusRefunded   RemoteStatus = "refunded"
)

// StatusIgnore is the mapping sentinel meaning "take no action for this
// remote status".
const StatusIgnore = "ignore"

// RemoteStatuses returns the fixed set of remote statuses eligible for
// mapping, in display order.
func RemoteStatuses() []RemoteStatus {
	return []RemoteStatus{
		StatusPaid,
		StatusConfirming,
		StatusInvalid,
		StatusExpired,
		StatusCanceled,
		StatusRefunded,
	}
}

// ParseRemoteStatus validates a status string received from the processor.
func ParseRemoteStatus(s string) (RemoteStatus, error) {
	switch RemoteStatus(s) {
	case StatusPaid, StatusConfirming, StatusInvalid, StatusExpired, StatusCanceled, StatusRefunded:
		return RemoteStatus(s), nil
	}
	return "", fmt.Errorf("unknown remote status: %q", s)
}

// Title returns the human-readable label shown on the settings screen.
func (s RemoteStatus) Title() string {
	switch s {
	case StatusPaid:
		return "Paid"
	case StatusConfirming:
		return "Confirming"
	case StatusInvalid:
		return "Invalid"
	case StatusExpired:
		return "Expired"
	case StatusCanceled:
		return "Canceled"
	case StatusRefunded:
		return "Refunded"
	}
	return string(s)
}

// StatusMapping maps each remote status to a local order status, or to
// StatusIgnore. Absent keys behave the same as StatusIgnore.
type StatusMapping map[RemoteStatus]string

// DefaultStatusMapping returns the mapping applied when the operator has not
// recorded a choice: paid moves the order to processing, everything else is
// ignored.
func DefaultStatusMapping() StatusMapping {
	return StatusMapping{
		StatusPaid:       "processing",
		StatusConfirming: StatusIgnore,
		StatusInvalid:    StatusIgnore,
		StatusExpired:    StatusIgnore,
		StatusCanceled:   StatusIgnore,
		StatusRefunded:   StatusIgnore,
	}
}

// Resolve returns the local status configured for the given remote status.
// The second return is false when the status is unmapped, mapped to the
// empty string, or mapped to StatusIgnore — callers must treat all three as
// a no-op.
func (m StatusMapping) Resolve(status RemoteStatus) (string, bool) {
	local, ok := m[status]
	if !ok || local == "" || local == StatusIgnore {
		return "", false
	}
	return local, true
}

// clone returns a copy so stored settings cannot be mutated through shared
// map references.
func (m StatusMapping) clone() StatusMapping {
	out := make(StatusMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
