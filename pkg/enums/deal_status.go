package enums

import "fmt"

// DealStatus tracks the negotiation lifecycle of a deal.
type DealStatus string

const (
	DealStatusPending    DealStatus = "Pending"
	DealStatusInProgress DealStatus = "In Progress"
	DealStatusCompleted  DealStatus = "Completed"
	DealStatusCancelled  DealStatus = "Cancelled"
)

var validDealStatuses = []DealStatus{
	DealStatusPending,
	DealStatusInProgress,
	DealStatusCompleted,
	DealStatusCancelled,
}

// dealStatusEdges enumerates the legal transitions. Completed and
// Cancelled are terminal.
var dealStatusEdges = map[DealStatus][]DealStatus{
	DealStatusPending:    {DealStatusInProgress, DealStatusCancelled},
	DealStatusInProgress: {DealStatusCompleted, DealStatusCancelled},
}

// String implements fmt.Stringer.
func (s DealStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DealStatus.
func (s DealStatus) IsValid() bool {
	for _, candidate := range validDealStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves this status.
func (s DealStatus) IsTerminal() bool {
	return len(dealStatusEdges[s]) == 0 && s.IsValid()
}

// CanTransitionTo reports whether the (s, target) edge is legal.
func (s DealStatus) CanTransitionTo(target DealStatus) bool {
	for _, candidate := range dealStatusEdges[s] {
		if candidate == target {
			return true
		}
	}
	return false
}

// DealStatusValues returns every known status, in lifecycle order.
func DealStatusValues() []DealStatus {
	return append([]DealStatus(nil), validDealStatuses...)
}

// ParseDealStatus converts raw input into a DealStatus.
func ParseDealStatus(value string) (DealStatus, error) {
	for _, candidate := range validDealStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deal status %q", value)
}
