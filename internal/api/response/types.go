package response

import (
	"time"

	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
)

// Exchange is the public view of the exchange
type Exchange struct {
	State            string     `json:"state"`
	MatchedAt        *time.Time `json:"matched_at,omitempty"`
	ParticipantCount int        `json:"participant_count"`
	Participants     []string   `json:"participants"`
}

// ExchangeFromModel builds the public exchange view
func ExchangeFromModel(ex *model.Exchange, participants []*model.Participant) Exchange {
	return Exchange{
		State:            string(ex.State),
		MatchedAt:        ex.MatchedAt,
		ParticipantCount: len(participants),
		Participants:     model.ParticipantNames(participants),
	}
}

// Participant is the public view of a newly registered participant
type Participant struct {
	Name         string    `json:"name"`
	Size         string    `json:"size"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ParticipantFromModel converts a model.Participant, omitting the credential
func ParticipantFromModel(p *model.Participant) Participant {
	return Participant{
		Name:         p.Name,
		Size:         p.Size,
		RegisteredAt: p.RegisteredAt,
	}
}

// AdminParticipant is the admin view of a participant. The recipient is never
// included; admins only see whether it has been viewed.
type AdminParticipant struct {
	Name         string    `json:"name"`
	Size         string    `json:"size"`
	Matched      bool      `json:"matched"`
	Viewed       bool      `json:"viewed"`
	RegisteredAt time.Time `json:"registered_at"`
}

// AdminParticipantsFromModel converts a participant list for admins
func AdminParticipantsFromModel(ps []*model.Participant) []AdminParticipant {
	out := make([]AdminParticipant, len(ps))
	for i, p := range ps {
		out[i] = AdminParticipant{
			Name:         p.Name,
			Size:         p.Size,
			Matched:      p.Recipient != "",
			Viewed:       p.Viewed,
			RegisteredAt: p.RegisteredAt,
		}
	}
	return out
}

// Exclusion is one excluded pair
type Exclusion struct {
	A string `json:"a"`
	B string `json:"b"`
}

// ExclusionsFromModel converts exclusion pairs
func ExclusionsFromModel(pairs []model.ExclusionPair) []Exclusion {
	out := make([]Exclusion, len(pairs))
	for i, p := range pairs {
		out[i] = Exclusion{A: p.A, B: p.B}
	}
	return out
}

// Reveal is a participant's own assignment
type Reveal struct {
	Name          string `json:"name"`
	Recipient     string `json:"recipient"`
	RecipientSize string `json:"recipient_size"`
	FirstView     bool   `json:"first_view"`
}

// RevealFromModel converts a model.Reveal
func RevealFromModel(r *model.Reveal) Reveal {
	return Reveal{
		Name:          r.Giver,
		Recipient:     r.Recipient,
		RecipientSize: r.RecipientSize,
		FirstView:     r.FirstView,
	}
}

// Match summarizes a completed match without exposing pairs
type Match struct {
	State        string    `json:"state"`
	MatchedAt    time.Time `json:"matched_at"`
	Participants int       `json:"participants"`
	Attempts     int       `json:"attempts"`
	Exact        bool      `json:"exact"`
}

// MatchFromResult converts an exchange.MatchResult
func MatchFromResult(r *exchange.MatchResult) Match {
	return Match{
		State:        string(model.ExchangeStateClosed),
		MatchedAt:    r.MatchedAt,
		Participants: r.Participants,
		Attempts:     r.Attempts,
		Exact:        r.Exact,
	}
}

// Feasibility reports whether the current roster can be matched
type Feasibility struct {
	Feasible bool `json:"feasible"`
}

// Reset reports the result of a reset
type Reset struct {
	State  string `json:"state"`
	Policy string `json:"policy"`
}

// AdminSession is the response for admin login
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminSessionFromSession converts an auth.Session
func AdminSessionFromSession(s *auth.Session) AdminSession {
	return AdminSession{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}
