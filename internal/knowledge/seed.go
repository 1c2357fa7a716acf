package knowledge

import (
	"context"
	"fmt"

	"github.com/carelink/backend/internal/triage"
)

// seedEntry is a static corpus record loaded at startup.
type seedEntry struct {
	id       string
	topic    string
	content  string
	symptoms []string
	severity triage.Severity
}

var seedCorpus = []seedEntry{
	{
		id:    "fever",
		topic: "Fever",
		content: "A fever is a body temperature above 38.0 C (100.4 F). Most fevers in adults resolve " +
			"with rest and fluids within a few days. Paracetamol or ibuprofen can reduce discomfort. " +
			"Seek care if a fever lasts more than three days, exceeds 39.4 C (103 F), or comes with " +
			"a stiff neck, rash, confusion or trouble breathing.",
		symptoms: []string{"fever", "high temperature", "chills", "sweating", "body aches"},
		severity: triage.Routine,
	},
	{
		id:    "headache",
		topic: "Headache",
		content: "Tension headaches and dehydration are the most common causes of headache. Rest, " +
			"hydration and over-the-counter pain relief usually help. A sudden, worst-ever headache, " +
			"a headache with fever and stiff neck, or one following a head injury needs urgent assessment.",
		symptoms: []string{"headache", "migraine", "head pain", "pressure in head"},
		severity: triage.Routine,
	},
	{
		id:    "chest-pain",
		topic: "Chest pain",
		content: "Chest pain can signal a heart attack, especially when it is crushing, radiates to the " +
			"arm or jaw, or comes with sweating, nausea or breathlessness. Treat new chest pain as an " +
			"emergency: call emergency services immediately rather than waiting for it to pass.",
		symptoms: []string{"chest pain", "chest tightness", "pressure in chest", "pain radiating to arm"},
		severity: triage.Emergency,
	},
	{
		id:    "breathing",
		topic: "Breathing difficulty",
		content: "Sudden difficulty breathing, wheezing that does not respond to a usual inhaler, or " +
			"blue lips are emergencies. Gradual breathlessness on exertion should still be reviewed " +
			"promptly by a doctor, particularly with a history of heart or lung disease.",
		symptoms: []string{"shortness of breath", "difficulty breathing", "wheezing", "breathless"},
		severity: triage.Emergency,
	},
	{
		id:    "anemia",
		topic: "Anemia and low hemoglobin",
		content: "Hemoglobin below the reference range (roughly 13.0-17.0 g/dL for men, 12.0-15.5 g/dL " +
			"for women) indicates anemia. Common causes include iron deficiency, chronic disease and " +
			"blood loss. Mild anemia is usually investigated with iron studies and diet review; " +
			"discuss any low hemoglobin result with your doctor, and seek prompt care for dizziness, " +
			"breathlessness or a racing heart.",
		symptoms: []string{"low hemoglobin", "anemia", "fatigue", "pale skin", "tiredness", "weakness"},
		severity: triage.Routine,
	},
	{
		id:    "diabetes",
		topic: "Blood sugar and diabetes",
		content: "A fasting glucose of 7.0 mmol/L (126 mg/dL) or higher, or an HbA1c of 6.5% or higher, " +
			"suggests diabetes and should be confirmed with your doctor. Very high sugars with vomiting, " +
			"drowsiness or deep rapid breathing need emergency care.",
		symptoms: []string{"high blood sugar", "glucose", "hba1c", "excessive thirst", "frequent urination"},
		severity: triage.Routine,
	},
	{
		id:    "hypertension",
		topic: "High blood pressure",
		content: "Blood pressure persistently at or above 140/90 mmHg warrants review. Readings above " +
			"180/120 mmHg with headache, chest pain or vision changes are a hypertensive emergency. " +
			"Lifestyle measures and regular home monitoring help between appointments.",
		symptoms: []string{"high blood pressure", "hypertension", "bp reading"},
		severity: triage.Routine,
	},
	{
		id:    "stomach",
		topic: "Abdominal pain and digestion",
		content: "Most short-lived stomach upsets settle with fluids and bland food. Severe or localized " +
			"abdominal pain, especially in the lower right side, pain with fever, or black or bloody " +
			"stools need urgent medical assessment.",
		symptoms: []string{"stomach pain", "abdominal pain", "nausea", "vomiting", "diarrhea", "indigestion"},
		severity: triage.Urgent,
	},
	{
		id:    "cold-flu",
		topic: "Cold and flu",
		content: "Colds and flu are viral: rest, fluids and symptom relief are the mainstays, and " +
			"antibiotics do not help. See a doctor if symptoms last beyond ten days, breathing becomes " +
			"difficult, or a high fever persists despite medication.",
		symptoms: []string{"runny nose", "sore throat", "cough", "sneezing", "congestion", "flu"},
		severity: triage.Routine,
	},
	{
		id:    "allergy",
		topic: "Allergic reactions",
		content: "Mild allergies cause itching, sneezing or localized hives and respond to antihistamines. " +
			"Swelling of the lips, tongue or throat, widespread hives, or any breathing difficulty after " +
			"exposure is anaphylaxis: use an epinephrine auto-injector if available and call emergency " +
			"services.",
		symptoms: []string{"allergy", "hives", "itching", "swelling", "allergic reaction"},
		severity: triage.Urgent,
	},
	{
		id:    "cholesterol",
		topic: "Cholesterol results",
		content: "Total cholesterol above 5.2 mmol/L (200 mg/dL) or LDL above 3.4 mmol/L (130 mg/dL) is " +
			"raised. Raised cholesterol has no symptoms and is managed over months with diet, exercise " +
			"and sometimes statins; it is not an emergency but deserves a follow-up consultation.",
		symptoms: []string{"cholesterol", "ldl", "hdl", "lipid panel", "triglycerides"},
		severity: triage.Routine,
	},
	{
		id:    "mental-health",
		topic: "Low mood and anxiety",
		content: "Persistent low mood, anxiety or sleep disturbance for more than two weeks deserves a " +
			"conversation with a professional. Thoughts of self-harm are always an emergency: contact " +
			"a crisis line or emergency services immediately.",
		symptoms: []string{"anxiety", "depression", "low mood", "stress", "insomnia", "panic"},
		severity: triage.Routine,
	},
}

// SeedStore indexes the built-in medical corpus and seals the store.
func SeedStore(ctx context.Context, store *Store) error {
	for _, e := range seedCorpus {
		if err := store.Index(ctx, e.id, e.topic, e.content, e.symptoms, e.severity); err != nil {
			return fmt.Errorf("seed %s: %w", e.id, err)
		}
	}
	store.Seal()
	return nil
}
