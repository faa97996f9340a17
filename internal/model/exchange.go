package model

import (
	"fmt"
	"time"
)

// ExchangeState represents the lifecycle phase of the exchange
type ExchangeState string

const (
	ExchangeStateOpen   ExchangeState = "open"   // Accepting registrations
	ExchangeStateClosed ExchangeState = "closed" // Matched, reveals allowed
)

// Exchange holds the singleton lifecycle state
type Exchange struct {
	State     ExchangeState
	MatchedAt *time.Time // nil while open
}

// NewExchange returns an exchange in the open state
func NewExchange() Exchange {
	return Exchange{State: ExchangeStateOpen}
}

// Clone returns a copy that shares no memory with e
func (e Exchange) Clone() Exchange {
	if e.MatchedAt != nil {
		at := *e.MatchedAt
		e.MatchedAt = &at
	}
	return e
}

// IsOpen reports whether registration is still accepted
func (e Exchange) IsOpen() bool {
	return e.State != ExchangeStateClosed
}

// ResetPolicy selects what a reset keeps
type ResetPolicy string

const (
	// ResetPolicyClearRoster deletes participants, exclusions and match data
	ResetPolicyClearRoster ResetPolicy = "clear_roster"
	// ResetPolicyKeepRoster keeps participants and exclusions, clearing only match data
	ResetPolicyKeepRoster ResetPolicy = "keep_roster"
)

// DefaultResetPolicy is used when no policy is configured
const DefaultResetPolicy = ResetPolicyClearRoster

// ParseResetPolicy converts a configuration value into a ResetPolicy
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch ResetPolicy(s) {
	case "":
		return DefaultResetPolicy, nil
	case ResetPolicyClearRoster, ResetPolicyKeepRoster:
		return ResetPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown reset policy %q", s)
	}
}
