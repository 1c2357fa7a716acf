// Package triage classifies symptom descriptions into severity bands.
//
// Classification is a pure keyword rule engine with no I/O so emergency
// guidance is never gated on network availability. It always runs before
// any external model call.
package triage

import "strings"

// Severity is the coarse urgency band for a symptom description.
type Severity string

const (
	Emergency Severity = "EMERGENCY"
	Urgent    Severity = "URGENT"
	Routine   Severity = "ROUTINE"
)

// emergencyKeywords are checked first; any match wins immediately.
var emergencyKeywords = []string{
	"chest pain",
	"crushing chest",
	"can't breathe",
	"cannot breathe",
	"difficulty breathing",
	"trouble breathing",
	"shortness of breath",
	"stroke",
	"face drooping",
	"slurred speech",
	"heart attack",
	"severe bleeding",
	"bleeding heavily",
	"unconscious",
	"loss of consciousness",
	"passed out",
	"not breathing",
	"anaphylaxis",
	"throat swelling",
	"severe allergic reaction",
	"seizure",
	"convulsion",
	"choking",
	"poisoning",
	"overdose",
	"suicidal",
}

// urgentKeywords are checked only when no emergency keyword matched.
var urgentKeywords = []string{
	"high fever",
	"fever for days",
	"persistent fever",
	"vomiting blood",
	"coughing blood",
	"blood in stool",
	"blood in urine",
	"severe dizziness",
	"fainting",
	"vision loss",
	"blurred vision suddenly",
	"sudden vision",
	"confusion",
	"disoriented",
	"severe dehydration",
	"can't keep fluids down",
	"severe abdominal pain",
	"stiff neck",
	"worst headache",
}

// Classify maps a symptom description to a severity band. Emergency
// keywords take precedence over urgent ones; no match means routine.
// Matching is case-insensitive substring membership.
func Classify(symptoms string) Severity {
	lower := strings.ToLower(symptoms)

	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			return Emergency
		}
	}
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return Urgent
		}
	}
	return Routine
}
