// Package datatype holds the item completeness rules of each wizard step and
// a registry to look them up by name.
package datatype

import "github.com/fwojciec/wizard"

// Names of the built-in data types.
const (
	PotentialCauses       = "potential_causes"
	PotentialSymptoms     = "potential_symptoms"
	TherapeuticProperties = "therapeutic_properties"
	SuggestedOils         = "suggested_oils"
)

// Builtin returns the configs of the wizard steps.
func Builtin() []wizard.DataTypeConfig {
	return []wizard.DataTypeConfig{
		{
			Name:    PotentialCauses,
			IDField: "cause_id",
			Required: []wizard.FieldRule{
				{Name: "name_localized", MinLength: 3},
				{Name: "suggestion_localized", MinLength: 10},
				{Name: "explanation_localized", MinLength: 10},
			},
			Optional: []string{"relevancy", "cause_category"},
		},
		{
			Name:    PotentialSymptoms,
			IDField: "symptom_id",
			Required: []wizard.FieldRule{
				{Name: "name_localized", MinLength: 3},
				{Name: "suggestion_localized", MinLength: 10},
				{Name: "explanation_localized", MinLength: 10},
			},
			Optional: []string{"relevancy", "symptom_category"},
		},
		{
			Name:    TherapeuticProperties,
			IDField: "property_id",
			Required: []wizard.FieldRule{
				{Name: "property_name_localized", MinLength: 3},
				{Name: "description_contextual_localized", MinLength: 10},
			},
			Optional: []string{"relevancy_score", "addresses_cause_ids", "addresses_symptom_ids"},
		},
		{
			Name:    SuggestedOils,
			IDField: "property_id",
			Required: []wizard.FieldRule{
				{Name: "property_name_localized", MinLength: 3},
				{Name: "suggested_oils"},
			},
			Optional: []string{"description_contextual_localized"},
		},
	}
}
