package model

import (
	"fmt"
	"maps"
	"slices"
)

// AssignmentPair is one giver → recipient edge of an assignment
type AssignmentPair struct {
	Giver     string
	Recipient string
}

// Assignment is an immutable mapping from each giver to their recipient
type Assignment struct {
	recipients map[string]string
}

// NewAssignment copies the given giver → recipient mapping
func NewAssignment(recipients map[string]string) Assignment {
	return Assignment{recipients: maps.Clone(recipients)}
}

// Recipient returns the recipient drawn by giver
func (a Assignment) Recipient(giver string) (string, bool) {
	r, ok := a.recipients[giver]
	return r, ok
}

// Len returns the number of givers
func (a Assignment) Len() int {
	return len(a.recipients)
}

// Givers returns every giver, sorted
func (a Assignment) Givers() []string {
	return slices.Sorted(maps.Keys(a.recipients))
}

// Pairs returns every edge, sorted by giver
func (a Assignment) Pairs() []AssignmentPair {
	givers := a.Givers()
	pairs := make([]AssignmentPair, len(givers))
	for i, g := range givers {
		pairs[i] = AssignmentPair{Giver: g, Recipient: a.recipients[g]}
	}
	return pairs
}

// Validate checks that the assignment is a derangement of roster honoring exclusions
func (a Assignment) Validate(roster []string, exclusions ExclusionSet) error {
	if !a.Covers(roster) {
		return fmt.Errorf("%w: assignment does not cover the roster", ErrInvalidMatchInput)
	}
	received := make(map[string]bool, len(roster))
	for giver, recipient := range a.recipients {
		if giver == recipient {
			return fmt.Errorf("%w: %s drew themselves", ErrInvalidMatchInput, giver)
		}
		if exclusions.Excludes(giver, recipient) {
			return fmt.Errorf("%w: %s and %s are excluded", ErrInvalidMatchInput, giver, recipient)
		}
		if _, ok := a.recipients[recipient]; !ok {
			return fmt.Errorf("%w: %s is not a participant", ErrInvalidMatchInput, recipient)
		}
		if received[recipient] {
			return fmt.Errorf("%w: %s is drawn twice", ErrInvalidMatchInput, recipient)
		}
		received[recipient] = true
	}
	return nil
}

// Covers reports whether the givers are exactly the names in roster
func (a Assignment) Covers(roster []string) bool {
	if len(roster) != len(a.recipients) {
		return false
	}
	for _, name := range roster {
		if _, ok := a.recipients[name]; !ok {
			return false
		}
	}
	return true
}

// CheckCommit is run by storage backends inside their atomic section before
// persisting an assignment. It re-validates against the stored state.
func CheckCommit(ex Exchange, a Assignment, roster []string, exclusions ExclusionSet) error {
	if !ex.IsOpen() {
		return ErrAlreadyMatched
	}
	if !a.Covers(roster) {
		return ErrRosterChanged
	}
	for giver, recipient := range a.recipients {
		if exclusions.Excludes(giver, recipient) {
			return ErrExclusionsChanged
		}
	}
	return a.Validate(roster, exclusions)
}
