// Package mcp exposes the course tutor over the Model Context Protocol.
package mcp

// AskUnitInput defines the input parameters for the ask_unit tool.
type AskUnitInput struct {
	// Unit is the course unit key to ground the answer in.
	Unit string `json:"unit" jsonschema:"required,description=The course unit key to answer from (see list_units)"`
	// Question is the student's question.
	Question string `json:"question" jsonschema:"required,description=The question to answer from the unit's material"`
	// Model optionally switches the generation model before answering.
	Model string `json:"model,omitempty" jsonschema:"description=Optional model identifier; switching models resets the conversation"`
}

// AskUnitOutput contains the generated answer.
type AskUnitOutput struct {
	// Answer is the complete generated answer text.
	Answer string `json:"answer"`
	// Unit is the unit key the answer was grounded in.
	Unit string `json:"unit"`
	// Model is the model that produced the answer.
	Model string `json:"model"`
	// Message carries informational context (e.g., out-of-scope notices).
	Message string `json:"message,omitempty"`
}

// ListUnitsInput defines the input for the list_units tool. No parameters.
type ListUnitsInput struct{}

// UnitInfo describes one catalog entry.
type UnitInfo struct {
	// Key identifies the unit for ask_unit.
	Key string `json:"key"`
	// Name is the unit's display name.
	Name string `json:"name"`
}

// ListUnitsOutput contains the unit catalog.
type ListUnitsOutput struct {
	// Units is all configured course units.
	Units []UnitInfo `json:"units"`
	// Count is the number of units.
	Count int `json:"count"`
}

// ResetSessionInput defines the input for the reset_session tool. No
// parameters.
type ResetSessionInput struct{}

// ResetSessionOutput acknowledges the reset.
type ResetSessionOutput struct {
	// Cleared is true once the conversation memory has been emptied.
	Cleared bool `json:"cleared"`
}
