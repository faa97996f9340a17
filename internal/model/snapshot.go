package model

import "time"

// Snapshot is the whole exchange as a single value. Backends that persist the
// exchange as one document (memory, DynamoDB) mutate it through these methods
// so the domain rules are applied identically.
type Snapshot struct {
	Exchange     Exchange
	Participants map[string]*Participant
	Exclusions   ExclusionSet
}

// NewSnapshot returns an empty, open exchange
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Exchange:     NewExchange(),
		Participants: make(map[string]*Participant),
		Exclusions:   NewExclusionSet(),
	}
}

// Clone returns a deep copy
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Exchange:     s.Exchange.Clone(),
		Participants: make(map[string]*Participant, len(s.Participants)),
		Exclusions:   s.Exclusions.Clone(),
	}
	for name, p := range s.Participants {
		c.Participants[name] = p.Clone()
	}
	return c
}

// Participant returns a copy of the named participant
func (s *Snapshot) Participant(name string) (*Participant, error) {
	p, ok := s.Participants[name]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return p.Clone(), nil
}

// ParticipantList returns copies of all participants in registration order
func (s *Snapshot) ParticipantList() []*Participant {
	out := make([]*Participant, 0, len(s.Participants))
	for _, p := range s.Participants {
		out = append(out, p.Clone())
	}
	SortParticipants(out)
	return out
}

// Roster returns the participant names in registration order
func (s *Snapshot) Roster() []string {
	return ParticipantNames(s.ParticipantList())
}

// AddParticipant registers p while the exchange is open
func (s *Snapshot) AddParticipant(p *Participant) error {
	if !s.Exchange.IsOpen() {
		return ErrRegistrationClosed
	}
	if _, exists := s.Participants[p.Name]; exists {
		return ErrDuplicateName
	}
	s.Participants[p.Name] = p.Clone()
	return nil
}

// RemoveParticipant deletes the named participant and every exclusion involving them
func (s *Snapshot) RemoveParticipant(name string) error {
	if !s.Exchange.IsOpen() {
		return ErrAlreadyMatched
	}
	if _, ok := s.Participants[name]; !ok {
		return ErrParticipantNotFound
	}
	delete(s.Participants, name)
	s.Exclusions.RemoveAll(name)
	return nil
}

// MarkViewed sets the viewed flag of the named participant and reports
// whether it was previously unset
func (s *Snapshot) MarkViewed(name string) (bool, error) {
	p, ok := s.Participants[name]
	if !ok {
		return false, ErrParticipantNotFound
	}
	if p.Viewed {
		return false, nil
	}
	p.Viewed = true
	return true, nil
}

// AddExclusion records pair; both participants must exist
func (s *Snapshot) AddExclusion(pair ExclusionPair) error {
	if !s.has(pair.A) || !s.has(pair.B) {
		return ErrParticipantNotFound
	}
	s.Exclusions.Add(pair.A, pair.B)
	return nil
}

// RemoveExclusion deletes pair if present
func (s *Snapshot) RemoveExclusion(pair ExclusionPair) {
	s.Exclusions.Remove(pair.A, pair.B)
}

// ApplyMatch stores the assignment and closes the exchange
func (s *Snapshot) ApplyMatch(a Assignment, at time.Time) error {
	if err := CheckCommit(s.Exchange, a, s.Roster(), s.Exclusions); err != nil {
		return err
	}
	for name, p := range s.Participants {
		p.Recipient, _ = a.Recipient(name)
		p.Viewed = false
	}
	s.Exchange.State = ExchangeStateClosed
	s.Exchange.MatchedAt = &at
	return nil
}

// Reset reopens the exchange according to policy
func (s *Snapshot) Reset(policy ResetPolicy) {
	s.Exchange = NewExchange()
	if policy == ResetPolicyKeepRoster {
		for _, p := range s.Participants {
			p.Recipient = ""
			p.Viewed = false
		}
		return
	}
	s.Participants = make(map[string]*Participant)
	s.Exclusions = NewExclusionSet()
}

func (s *Snapshot) has(name string) bool {
	_, ok := s.Participants[name]
	return ok
}
