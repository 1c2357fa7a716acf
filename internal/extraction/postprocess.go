package extraction

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Post-processing cleans extracted text and applies a small set of
// deterministic, best-effort corrections for OCR errors common in
// medical documents. The corrections are heuristic: they can in
// principle rewrite text that coincidentally matches the patterns, so
// they stay opt-in via configuration and bounded to digit-adjacent
// contexts.

var (
	crlfRe       = regexp.MustCompile(`\r\n?`)
	blankRunsRe  = regexp.MustCompile(`\n{3,}`)
	spaceRunsRe  = regexp.MustCompile(`[ \t]{2,}`)
	trailingWSRe = regexp.MustCompile(`[ \t]+\n`)

	// Character confusions, bounded to digit-adjacent positions. The
	// optional dot covers decimals like "9.O" -> "9.0".
	digitThenORe = regexp.MustCompile(`(\d\.?)[Oo]`)
	oThenDigitRe = regexp.MustCompile(`[Oo](\.?\d)`)
	digitThenLRe = regexp.MustCompile(`(\d\.?)[lI]`)
	lThenDigitRe = regexp.MustCompile(`[lI](\.?\d)`)

	// Lab units with stray spacing or casing, e.g. "mg / dl" or "MMOL/L".
	unitRe = regexp.MustCompile(`(?i)\b(mg|g|mmol|mcmol|umol|u|iu)\s*/\s*(dl|l)\b`)

	// Missing space between a value and its unit, e.g. "9.2g/dL".
	valueUnitRe = regexp.MustCompile(`(\d)(mg/dL|g/dL|mmol/L|mcmol/L|umol/L|U/L|IU/L)`)
)

// canonicalUnits maps lower-cased unit fragments to their standard form.
var canonicalUnits = map[string]string{
	"mg":    "mg",
	"g":     "g",
	"mmol":  "mmol",
	"mcmol": "mcmol",
	"umol":  "umol",
	"u":     "U",
	"iu":    "IU",
	"dl":    "dL",
	"l":     "L",
}

// Normalize cleans whitespace and Unicode artifacts in extracted text:
// NFKC normalization, uniform line endings, at most one blank line
// between paragraphs, and collapsed space runs.
func Normalize(text string) string {
	text = norm.NFKC.String(text)
	text = crlfRe.ReplaceAllString(text, "\n")
	text = trailingWSRe.ReplaceAllString(text, "\n")
	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	text = spaceRunsRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CorrectOCRErrors applies the digit-adjacent character corrections and
// lab-unit normalization. Best-effort only, never guaranteed correct.
func CorrectOCRErrors(text string) string {
	text = digitThenORe.ReplaceAllString(text, "${1}0")
	text = oThenDigitRe.ReplaceAllString(text, "0${1}")
	text = digitThenLRe.ReplaceAllString(text, "${1}1")
	text = lThenDigitRe.ReplaceAllString(text, "1${1}")

	text = unitRe.ReplaceAllStringFunc(text, func(m string) string {
		parts := unitRe.FindStringSubmatch(m)
		num := canonicalUnits[strings.ToLower(parts[1])]
		den := canonicalUnits[strings.ToLower(parts[2])]
		return num + "/" + den
	})
	text = valueUnitRe.ReplaceAllString(text, "${1} ${2}")
	return text
}

// labValueRe matches a lab-report line: analyte name, numeric value,
// unit. Used only to annotate the analysis summary, never to alter text.
var labValueRe = regexp.MustCompile(
	`(?i)\b(hemoglobin|haemoglobin|glucose|cholesterol|hba1c|ldl|hdl|triglycerides|` +
		`creatinine|urea|tsh|platelets?|wbc|rbc|vitamin\s+[a-z0-9]+|ferritin|sodium|potassium)\b` +
		`[^\n\d]{0,40}?(\d+(?:\.\d+)?)\s*(g/dL|mg/dL|mmol/L|mcmol/L|umol/L|U/L|IU/L|%|x10\^?\d*/?L?)?`,
)

var titleCaser = cases.Title(language.English)

// ScanLabValues finds recognizable lab measurements in extracted text.
// Returned lines feed the report analysis summary.
func ScanLabValues(text string) []string {
	matches := labValueRe.FindAllStringSubmatch(text, 20)
	var values []string
	seen := make(map[string]bool)
	for _, m := range matches {
		analyte := strings.ToLower(m[1])
		if seen[analyte] {
			continue
		}
		seen[analyte] = true

		line := fmt.Sprintf("%s: %s", titleCaser.String(analyte), m[2])
		if m[3] != "" {
			line += " " + m[3]
		}
		values = append(values, line)
	}
	return values
}
