package llm

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// MaxPromptChars caps the document text sent to the model.
const MaxPromptChars = 12000

// BuildSystemPrompt describes the fixed output schema. Key names match the
// canonical schema so little normalization is needed, but aliases are tolerated.
func BuildSystemPrompt() string {
	parts := []string{
		"You are an auto insurance declaration page parser. Return ONLY one JSON object.",
		"Use these keys when the coverage is present: BodilyInjury {PerPerson, PerAccident}, PropertyDamage {PerAccident}, " +
			"UninsuredMotorist {PerPerson, PerAccident}, ComprehensiveDeductible, CollisionDeductible, " +
			"PersonalInjuryProtection, MedicalPayments, RentalReimbursement {PerDay, MaxDays}.",
		"Drivers is a list of {FirstName, LastName} in document order.",
		"Vehicles is a list of {Year, Make, Model, VIN, GaragingZIP, PrimaryUse, AnnualMiles, OwnershipLength} in document order.",
		"Dollar amounts are whole numbers without currency symbols or separators.",
		"Omit any field that is not on the page. Never output null.",
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the filename hint and document text.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if filename := strings.TrimSpace(req.FilenameHint); filename != "" {
		b.WriteString("Filename: ")
		b.WriteString(filename)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(req.Text)
	b.WriteString("\nDeclaration page text:\n")
	if len(text) > MaxPromptChars {
		cut := MaxPromptChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		b.WriteString(text[:cut])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n\nReturn ONLY JSON that matches the provided schema.")
	return b.String()
}

// SchemaPrompt renders the coverage schema for providers that take it as an
// extra system message.
func SchemaPrompt() string {
	b, _ := json.MarshalIndent(BuildCoverageJSONSchema(), "", "  ")
	return "JSON Schema:\n" + string(b)
}
