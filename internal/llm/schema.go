package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/coverage-extractor/internal/coverage"
)

// BuildCoverageJSONSchema returns the normalized result shape as a JSON-Schema
// map. Unknown keys are allowed since the key normalizer keeps them.
func BuildCoverageJSONSchema() map[string]any {
	amount := map[string]any{"type": "integer", "minimum": 0}
	split := object(map[string]any{
		coverage.KeyPerPerson:   amount,
		coverage.KeyPerAccident: amount,
	})
	str := map[string]any{"type": "string"}

	props := map[string]any{
		coverage.KeyBodilyInjury:             split,
		coverage.KeyPropertyDamage:           object(map[string]any{coverage.KeyPerAccident: amount}),
		coverage.KeyUninsuredMotorist:        split,
		coverage.KeyComprehensiveDeductible:  amount,
		coverage.KeyCollisionDeductible:      amount,
		coverage.KeyPersonalInjuryProtection: amount,
		coverage.KeyMedicalPayments:          amount,
		coverage.KeyRentalReimbursement: object(map[string]any{
			coverage.KeyPerDay:  amount,
			coverage.KeyMaxDays: amount,
		}),
		coverage.KeyDrivers: map[string]any{
			"type": "array",
			"items": object(map[string]any{
				coverage.KeyFirstName: str,
				coverage.KeyLastName:  str,
			}),
		},
		coverage.KeyVehicles: map[string]any{
			"type": "array",
			"items": object(map[string]any{
				coverage.KeyYear:            map[string]any{"type": []string{"string", "integer"}},
				coverage.KeyMake:            str,
				coverage.KeyModel:           str,
				coverage.KeyVIN:             map[string]any{"type": []string{"string", "integer"}},
				coverage.KeyGaragingZIP:     map[string]any{"type": []string{"string", "integer"}},
				coverage.KeyPrimaryUse:      str,
				coverage.KeyAnnualMiles:     map[string]any{"type": []string{"string", "integer"}},
				coverage.KeyOwnershipLength: str,
			}),
		},
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

func object(props map[string]any) map[string]any {
	return map[string]any{"type": "object", "properties": props}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ValidateCoverage checks a normalized result against BuildCoverageJSONSchema.
func ValidateCoverage(res coverage.CoverageResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return ValidateJSONAgainstSchema(BuildCoverageJSONSchema(), b)
}
