// Package models defines flow type definitions to avoid circular imports.
package models

// StateType represents a specific state within the advisory conversation
type StateType string

// InputMode tells the client which input widget the next answer expects
type InputMode string

// Conversation states, in the order a complete conversation visits them.
const (
	StateStart           StateType = "START"
	StateAskLocation     StateType = "ASK_LOCATION"
	StateSelectState     StateType = "SELECT_STATE"
	StateSelectDistrict  StateType = "SELECT_DISTRICT"
	StateConfirmLocation StateType = "CONFIRM_LOCATION"
	StateAskSoil         StateType = "ASK_SOIL"
	StateAskSoilManual   StateType = "ASK_SOIL_MANUAL"
	StateAskSeason       StateType = "ASK_SEASON"
	StateAskArea         StateType = "ASK_AREA"
	StateAskIrrigation   StateType = "ASK_IRRIGATION"
	StateComplete        StateType = "COMPLETE"
)

// AllStates lists every conversation state.
var AllStates = []StateType{
	StateStart,
	StateAskLocation,
	StateSelectState,
	StateSelectDistrict,
	StateConfirmLocation,
	StateAskSoil,
	StateAskSoilManual,
	StateAskSeason,
	StateAskArea,
	StateAskIrrigation,
	StateComplete,
}

// IsValid reports whether s is one of the known conversation states.
func (s StateType) IsValid() bool {
	for _, known := range AllStates {
		if s == known {
			return true
		}
	}
	return false
}

// Input modes.
const (
	InputModeText     InputMode = "text"
	InputModeOptions  InputMode = "options"
	InputModeLocation InputMode = "location"
	InputModeNone     InputMode = "none"
)
