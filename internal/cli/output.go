package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	case Exchange:
		o.printExchange(v)
	case Participant:
		fmt.Fprintf(o.w, "Registered: %s (size %s)\n", v.Name, v.Size)
	case RevealResult:
		o.printReveal(v)
	case AdminSession:
		fmt.Fprintf(o.w, "Logged in, session expires %s\n", v.ExpiresAt.Local().Format(time.DateTime))
	case []AdminParticipant:
		o.printAdminParticipants(v)
	case []Exclusion:
		o.printExclusions(v)
	case Feasibility:
		if v.Feasible {
			fmt.Fprintln(o.w, "Feasible: a valid match exists")
		} else {
			fmt.Fprintln(o.w, "Infeasible: the exclusions leave no valid match")
		}
	case MatchResult:
		fmt.Fprintf(o.w, "Matched %d participants at %s\n", v.Participants, v.MatchedAt.Local().Format(time.DateTime))
		fmt.Fprintf(o.w, "Attempts: %d (exact search: %t)\n", v.Attempts, v.Exact)
	case ResetResult:
		fmt.Fprintf(o.w, "Exchange reset (%s), state: %s\n", v.Policy, v.State)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

// Exchange response type
type Exchange struct {
	State            string     `json:"state"`
	MatchedAt        *time.Time `json:"matched_at,omitempty"`
	ParticipantCount int        `json:"participant_count"`
	Participants     []string   `json:"participants"`
}

// Participant response type
type Participant struct {
	Name         string    `json:"name"`
	Size         string    `json:"size"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RevealResult response type
type RevealResult struct {
	Name          string `json:"name"`
	Recipient     string `json:"recipient"`
	RecipientSize string `json:"recipient_size"`
	FirstView     bool   `json:"first_view"`
}

// AdminSession response type
type AdminSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AdminParticipant response type
type AdminParticipant struct {
	Name         string    `json:"name"`
	Size         string    `json:"size"`
	Matched      bool      `json:"matched"`
	Viewed       bool      `json:"viewed"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Exclusion response type
type Exclusion struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Feasibility response type
type Feasibility struct {
	Feasible bool `json:"feasible"`
}

// MatchResult response type
type MatchResult struct {
	State        string    `json:"state"`
	MatchedAt    time.Time `json:"matched_at"`
	Participants int       `json:"participants"`
	Attempts     int       `json:"attempts"`
	Exact        bool      `json:"exact"`
}

// ResetResult response type
type ResetResult struct {
	State  string `json:"state"`
	Policy string `json:"policy"`
}

func (o *Output) printExchange(e Exchange) {
	fmt.Fprintf(o.w, "State: %s\n", e.State)
	if e.MatchedAt != nil {
		fmt.Fprintf(o.w, "Matched at: %s\n", e.MatchedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(o.w, "Participants (%d):", e.ParticipantCount)
	if len(e.Participants) > 0 {
		fmt.Fprintf(o.w, " %s", strings.Join(e.Participants, ", "))
	}
	fmt.Fprintln(o.w)
}

func (o *Output) printReveal(r RevealResult) {
	fmt.Fprintf(o.w, "%s, your buddy is: %s\n", r.Name, r.Recipient)
	size := r.RecipientSize
	if size == "" {
		size = "-"
	}
	fmt.Fprintf(o.w, "Their size: %s\n", size)
}

func (o *Output) printAdminParticipants(ps []AdminParticipant) {
	fmt.Fprintf(o.w, "Participants (%d):\n", len(ps))
	for _, p := range ps {
		status := ""
		switch {
		case p.Viewed:
			status = " [viewed]"
		case p.Matched:
			status = " [not viewed]"
		}
		fmt.Fprintf(o.w, "  - %s (%s)%s\n", p.Name, p.Size, status)
	}
}

func (o *Output) printExclusions(es []Exclusion) {
	fmt.Fprintf(o.w, "Exclusions (%d):\n", len(es))
	for _, e := range es {
		fmt.Fprintf(o.w, "  - %s x %s\n", e.A, e.B)
	}
}
