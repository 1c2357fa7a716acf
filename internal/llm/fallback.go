package llm

import (
	"fmt"
	"strings"

	"github.com/carelink/backend/internal/knowledge"
)

// Disclaimer is appended exactly once to every response returned to a
// caller, whether it came from the model or a fallback template.
const Disclaimer = "Note: This assistant provides general health information and is not a substitute " +
	"for professional medical advice, diagnosis, or treatment. If you think you may have a medical " +
	"emergency, call your local emergency number immediately."

// EnsureDisclaimer makes text end with the medical disclaimer, exactly
// once. Copies the model placed mid-text are stripped before the single
// trailing one is appended. Idempotent.
func EnsureDisclaimer(text string) string {
	body := strings.TrimSpace(strings.ReplaceAll(text, Disclaimer, ""))
	if body == "" {
		return Disclaimer
	}
	return body + "\n\n" + Disclaimer
}

// symptomFamily is a canned, medically conservative template matched by
// keyword when the external model cannot respond.
type symptomFamily struct {
	keywords []string
	response string
}

var fallbackFamilies = []symptomFamily{
	{
		keywords: []string{"chest pain", "chest tightness", "pressure in chest"},
		response: "Chest pain should always be taken seriously. If the pain is crushing, spreads to " +
			"your arm, jaw or back, or comes with sweating, nausea or breathlessness, call emergency " +
			"services now. Do not drive yourself. If the pain has fully resolved and was brief, still " +
			"arrange an urgent review with a doctor today.",
	},
	{
		keywords: []string{"fever", "temperature", "chills"},
		response: "For fever: rest, drink fluids regularly, and consider paracetamol or ibuprofen as " +
			"directed on the packet. Seek medical care if the fever lasts more than three days, goes " +
			"above 39.4 C (103 F), or is accompanied by a stiff neck, rash, confusion, or difficulty " +
			"breathing.",
	},
	{
		keywords: []string{"headache", "migraine", "head pain"},
		response: "Most headaches respond to rest, hydration and over-the-counter pain relief. Seek " +
			"emergency care for a sudden, worst-ever headache, a headache after a head injury, or one " +
			"with fever and a stiff neck. See your doctor if headaches are becoming more frequent or " +
			"severe.",
	},
	{
		keywords: []string{"cough", "cold", "sore throat", "runny nose", "congestion"},
		response: "Colds and coughs are usually viral and settle within a week or two with rest and " +
			"fluids. See a doctor if you cough up blood, become breathless, or symptoms persist beyond " +
			"ten days. A pharmacist can advise on symptom relief in the meantime.",
	},
	{
		keywords: []string{"stomach", "abdominal", "nausea", "vomiting", "diarrhea"},
		response: "For an upset stomach, take small sips of fluid often and rest your digestion with " +
			"bland food. Seek urgent care for severe or worsening abdominal pain, blood in vomit or " +
			"stool, signs of dehydration, or pain concentrated in the lower right abdomen.",
	},
	{
		keywords: []string{"dizzy", "dizziness", "lightheaded", "faint"},
		response: "Dizziness often improves with sitting or lying down and drinking water. Seek urgent " +
			"care if it comes with chest pain, palpitations, slurred speech, weakness on one side, or " +
			"if you actually fainted.",
	},
	{
		keywords: []string{"rash", "itching", "hives", "allergy", "allergic"},
		response: "Mild rashes and hives often respond to antihistamines and avoiding the trigger. Call " +
			"emergency services immediately if there is swelling of the lips, tongue or throat, or any " +
			"difficulty breathing. See a doctor if a rash is spreading, painful, or blistering.",
	},
	{
		keywords: []string{"back pain", "joint pain", "muscle"},
		response: "Most muscle and back pain improves over days with gentle movement, heat, and " +
			"over-the-counter pain relief. Seek prompt care for pain after significant trauma, numbness " +
			"or weakness in the legs, or loss of bladder or bowel control.",
	},
}

// genericFallback is returned when no symptom family matches.
const genericFallback = "I'm currently unable to reach the medical assistant model, but here is some " +
	"general guidance. If your symptoms are severe, sudden, or rapidly worsening, call your local " +
	"emergency number. For symptoms that are uncomfortable but stable, book an appointment with your " +
	"primary care doctor. For minor complaints and medication questions, your local pharmacist can " +
	"often help right away. Please describe your symptoms in more detail and I will do my best to " +
	"point you to the right level of care."

// Fallback produces a helpful, non-empty response without calling the
// external model. The most recent user message is scanned for known
// symptom families; retrieved context is surfaced when available.
func Fallback(lastUserMessage string, retrieved []knowledge.Result) string {
	lower := strings.ToLower(lastUserMessage)

	var body string
	for _, fam := range fallbackFamilies {
		for _, kw := range fam.keywords {
			if strings.Contains(lower, kw) {
				body = fam.response
				break
			}
		}
		if body != "" {
			break
		}
	}
	if body == "" {
		body = genericFallback
	}

	if len(retrieved) > 0 {
		var b strings.Builder
		b.WriteString(body)
		b.WriteString("\n\nRelated information from your records and our library:")
		for _, r := range retrieved {
			fmt.Fprintf(&b, "\n- %s: %s", r.Topic, firstSentence(r.Content))
		}
		body = b.String()
	}

	return body
}

// firstSentence trims content to its first sentence for compact context.
func firstSentence(text string) string {
	if idx := strings.Index(text, ". "); idx > 0 {
		return text[:idx+1]
	}
	return text
}
