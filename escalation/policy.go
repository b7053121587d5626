package escalation

import "strings"

type Reason string

const (
	ReasonNone           Reason = ""
	ReasonLowConfidence  Reason = "low_confidence"
	ReasonRequestedHuman Reason = "requested_human"
)

const DefaultThreshold = 0.5

// DefaultLexicon lists phrases that signal the customer wants a person.
// Matching is case-insensitive substring containment.
var DefaultLexicon = []string{
	"talk to human",
	"speak to agent",
	"real person",
	"support team",
	"escalate",
	"not helpful",
	"still need help",
	"manager",
	"supervisor",
	"complaint",
}

type Decision struct {
	Escalate bool
	Reason   Reason
}

// Policy is a pure function of confidence and message text.
type Policy struct {
	Threshold float64
	Lexicon   []string
}

// Evaluate escalates when confidence is below the threshold or the message
// names a lexicon phrase. An explicit request wins as the reported reason.
func (p Policy) Evaluate(confidence float64, message string) Decision {
	if p.requested(message) {
		return Decision{Escalate: true, Reason: ReasonRequestedHuman}
	}

	if confidence < p.Threshold {
		return Decision{Escalate: true, Reason: ReasonLowConfidence}
	}

	return Decision{}
}

func (p Policy) ShouldEscalate(confidence float64, message string) bool {
	return p.Evaluate(confidence, message).Escalate
}

func (p Policy) requested(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range p.Lexicon {
		if len(phrase) > 0 && strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

func NewPolicy(opts ...Option) Policy {
	options := NewOptions(opts...)

	return Policy{
		Threshold: options.Threshold,
		Lexicon:   options.Lexicon,
	}
}
