package model

import "fmt"

// LogicType identifies the reasoning strategy that produced an Inference.
// The set is closed: AllLogicTypes lists every member in pass order.
type LogicType int

const (
	LogicDeductive   LogicType = iota // General → specific (certain)
	LogicInductive                    // Specific → general (probable)
	LogicAbductive                    // Effect → cause (best explanation)
	LogicAnalogical                   // Similarity → transfer
	LogicStatistical                  // Data → probability
	LogicTemporal                     // Always/eventually
	LogicModal                        // Necessary/possible
)

// AllLogicTypes returns every LogicType in the fixed pass order.
func AllLogicTypes() []LogicType {
	return []LogicType{
		LogicDeductive,
		LogicInductive,
		LogicAbductive,
		LogicAnalogical,
		LogicStatistical,
		LogicTemporal,
		LogicModal,
	}
}

func (t LogicType) String() string {
	switch t {
	case LogicDeductive:
		return "deductive"
	case LogicInductive:
		return "inductive"
	case LogicAbductive:
		return "abductive"
	case LogicAnalogical:
		return "analogical"
	case LogicStatistical:
		return "statistical"
	case LogicTemporal:
		return "temporal"
	case LogicModal:
		return "modal"
	default:
		return fmt.Sprintf("logic(%d)", int(t))
	}
}

// MarshalText renders the type by name so reports stay readable.
func (t LogicType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a name written by MarshalText
func (t *LogicType) UnmarshalText(text []byte) error {
	for _, kind := range AllLogicTypes() {
		if kind.String() == string(text) {
			*t = kind
			return nil
		}
	}
	return fmt.Errorf("unknown logic type %q", text)
}

// Inference is one derived conclusion. Confidence semantics differ by Kind:
// deductive schemas are certain, everything else is an estimate, so
// confidences must not be compared across kinds.
type Inference struct {
	Kind        LogicType `json:"kind"`
	Method      string    `json:"method"` // e.g., "Modus Ponens"
	Premise     string    `json:"premise"`
	Observation string    `json:"observation"`
	Conclusion  string    `json:"conclusion"`
	Confidence  float64   `json:"confidence"` // [0,1]
	Formula     string    `json:"formula"`    // Symbolic notation
	Actionable  string    `json:"actionable,omitempty"`
}

// CertaintyLevel returns a short human label for the inference strength.
func (i Inference) CertaintyLevel() string {
	pct := int(i.Confidence * 100)
	switch i.Kind {
	case LogicDeductive:
		if i.Confidence >= 1.0 {
			return "Certain (100%)"
		}
		return fmt.Sprintf("Certain premises (%d%%)", pct)
	case LogicInductive:
		return fmt.Sprintf("Probable (%d%%)", pct)
	case LogicAbductive:
		return fmt.Sprintf("Most Likely (%d%%)", pct)
	case LogicAnalogical:
		return fmt.Sprintf("By Analogy (%d%%)", pct)
	case LogicStatistical:
		return fmt.Sprintf("Statistical (%d%%)", pct)
	case LogicTemporal:
		return fmt.Sprintf("Time-Based (%d%%)", pct)
	case LogicModal:
		if i.Confidence >= 0.99 {
			return "Necessary"
		}
		return "Possible"
	default:
		return fmt.Sprintf("Unknown (%d%%)", pct)
	}
}

// Confidence buckets of a Report.
const (
	CertainThreshold  = 0.95
	ProbableThreshold = 0.7
)

// Report aggregates one complete inference pass. It carries no wall-clock
// data so that two passes over the same store serialize identically.
type Report struct {
	Deductive   []Inference `json:"deductive"`
	Inductive   []Inference `json:"inductive"`
	Abductive   []Inference `json:"abductive"`
	Analogical  []Inference `json:"analogical"`
	Statistical []Inference `json:"statistical"`
	Temporal    []Inference `json:"temporal,omitempty"`
	Modal       []Inference `json:"modal,omitempty"`

	Total    int         `json:"total"`
	Certain  []Inference `json:"certain"`  // confidence >= 0.95
	Probable []Inference `json:"probable"` // [0.7, 0.95)
	Possible []Inference `json:"possible"` // < 0.7
}

// NewReport buckets per-kind results. Every LogicType must be handled here;
// an unknown kind is a programming error.
func NewReport(byKind map[LogicType][]Inference) Report {
	r := Report{
		Certain:  []Inference{},
		Probable: []Inference{},
		Possible: []Inference{},
	}
	for _, kind := range AllLogicTypes() {
		list := byKind[kind]
		switch kind {
		case LogicDeductive:
			r.Deductive = nonNil(list)
		case LogicInductive:
			r.Inductive = nonNil(list)
		case LogicAbductive:
			r.Abductive = nonNil(list)
		case LogicAnalogical:
			r.Analogical = nonNil(list)
		case LogicStatistical:
			r.Statistical = nonNil(list)
		case LogicTemporal:
			r.Temporal = list
		case LogicModal:
			r.Modal = list
		default:
			panic(fmt.Sprintf("report: unhandled logic type %v", kind))
		}
	}

	for _, inf := range r.All() {
		r.Total++
		switch {
		case inf.Confidence >= CertainThreshold:
			r.Certain = append(r.Certain, inf)
		case inf.Confidence >= ProbableThreshold:
			r.Probable = append(r.Probable, inf)
		default:
			r.Possible = append(r.Possible, inf)
		}
	}
	return r
}

// All returns every inference in pass order.
func (r Report) All() []Inference {
	var all []Inference
	all = append(all, r.Deductive...)
	all = append(all, r.Inductive...)
	all = append(all, r.Abductive...)
	all = append(all, r.Analogical...)
	all = append(all, r.Statistical...)
	all = append(all, r.Temporal...)
	all = append(all, r.Modal...)
	return all
}

// Empty reports whether the pass produced nothing (e.g., an empty store).
func (r Report) Empty() bool {
	return r.Total == 0
}

func nonNil(list []Inference) []Inference {
	if list == nil {
		return []Inference{}
	}
	return list
}

// Narrative is an optional LLM-written account of a Report.
// It is advisory only and never feeds back into decisions.
type Narrative struct {
	Enabled    bool     `json:"enabled"`
	Provider   string   `json:"provider,omitempty"`
	Model      string   `json:"model,omitempty"`
	Strict     bool     `json:"strict"`
	SummaryMD  string   `json:"summary_md,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	TokensUsed int      `json:"tokens_used,omitempty"`
}
