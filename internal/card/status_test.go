package card

import "testing"

func TestStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusIdle, false},
		{StatusInFlight, true},
		{StatusSucceeded, false},
		{StatusFailed, false},
	}

	for _, test := range tests {
		if got := test.status.IsActive(); got != test.expected {
			t.Errorf("Status(%s).IsActive() = %v, expected %v", test.status, got, test.expected)
		}
	}
}

func TestStatus_IsFinished(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusIdle, false},
		{StatusInFlight, false},
		{StatusSucceeded, true},
		{StatusFailed, true},
	}

	for _, test := range tests {
		if got := test.status.IsFinished(); got != test.expected {
			t.Errorf("Status(%s).IsFinished() = %v, expected %v", test.status, got, test.expected)
		}
	}
}
