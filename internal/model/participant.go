package model

import (
	"cmp"
	"fmt"
	"slices"
	"time"
)

// Participant is a registered member of the exchange
type Participant struct {
	Name         string    // unique, case-sensitive
	Credential   string    // scheme-tagged credential, never the raw password
	Size         string    // free-form clothing size
	Recipient    string    // empty until matched
	Viewed       bool      // set the first time the participant reveals their recipient
	RegisteredAt time.Time
}

// Validate checks that the participant carries the fields required for registration
func (p *Participant) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidParticipant)
	case p.Credential == "":
		return fmt.Errorf("%w: password is required", ErrInvalidParticipant)
	case p.Size == "":
		return fmt.Errorf("%w: size is required", ErrInvalidParticipant)
	}
	return nil
}

// Clone returns a copy of the participant
func (p *Participant) Clone() *Participant {
	c := *p
	return &c
}

// SortParticipants orders participants by registration time, then by name
func SortParticipants(ps []*Participant) {
	slices.SortFunc(ps, func(a, b *Participant) int {
		if c := a.RegisteredAt.Compare(b.RegisteredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// ParticipantNames returns the names of the given participants in order
func ParticipantNames(ps []*Participant) []string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = p.Name
	}
	return names
}

// Reveal is the private view a participant gets of their own assignment
type Reveal struct {
	Giver         string
	Recipient     string
	RecipientSize string
	FirstView     bool // true if this reveal flipped the viewed flag
}
