// Package gov models the mocked government-service backend: national
// ID validation, demo scenario mapping, and the simulated Absher-style
// operations the service screens call.
//
// Everything here is deterministic demo logic, not a real integration.
package gov

import "regexp"

// Saudi national IDs for citizens start with 1 and are ten digits.
var nationalIDPattern = regexp.MustCompile(`^1\d{9}$`)

// ValidateNationalID reports whether id is a well-formed citizen
// national ID.
func ValidateNationalID(id string) bool {
	return nationalIDPattern.MatchString(id)
}

// Scenario classifies the user experience presented after sign-in.
type Scenario string

const (
	// ScenarioSafeGate is the outside-KSA experience with privileges.
	ScenarioSafeGate Scenario = "safe_gate"

	// ScenarioInSaudi is the full active-services experience.
	ScenarioInSaudi Scenario = "in_saudi"

	// ScenarioElder is the simplified mode.
	ScenarioElder Scenario = "elder"

	// ScenarioGuest is the restricted fallback.
	ScenarioGuest Scenario = "guest"
)

// DetermineScenario maps a national ID to its demo scenario using the
// ID's last digit. Invalid IDs map to the guest scenario.
func DetermineScenario(id string) Scenario {
	if !ValidateNationalID(id) {
		return ScenarioGuest
	}
	switch id[len(id)-1] {
	case '0', '1', '2':
		return ScenarioSafeGate
	case '3', '4', '5', '6':
		return ScenarioInSaudi
	case '7', '8':
		return ScenarioElder
	default:
		return ScenarioGuest
	}
}
