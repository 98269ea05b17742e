package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestKind_Valid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindAirport, true},
		{KindCustom, true},
		{KindCalculated, true},
		{Kind("vor"), false},
		{Kind(""), false},
	}

	for _, tt := range tests {
		if got := tt.kind.Valid(); got != tt.want {
			t.Errorf("Kind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestDisplayMode_String(t *testing.T) {
	tests := []struct {
		mode DisplayMode
		want string
	}{
		{ModePlanning, "planning"},
		{ModeEditing, "editing"},
		{ModePreview, "preview"},
		{ModeViewing, "viewing"},
		{DisplayMode(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("DisplayMode(%d).String() = %s, want %s", tt.mode, got, tt.want)
		}
	}
}

func TestDisplayMode_Editable(t *testing.T) {
	if !ModePlanning.Editable() || !ModeEditing.Editable() {
		t.Error("Planning and Editing should be editable")
	}
	if ModePreview.Editable() || ModeViewing.Editable() {
		t.Error("Preview and Viewing should not be editable")
	}
}

func TestWaypoint_HasAltitude(t *testing.T) {
	alt := 4500.0
	w := Waypoint{ID: "a", Kind: KindCalculated, Name: "TOC", Altitude: &alt}
	if !w.HasAltitude() {
		t.Error("Expected waypoint with altitude to report HasAltitude")
	}

	w.Altitude = nil
	if w.HasAltitude() {
		t.Error("Expected waypoint without altitude to report !HasAltitude")
	}
}

func TestLeg_JSONFieldNames(t *testing.T) {
	fuel := -5.0
	leg := Leg{
		Start:             Waypoint{ID: "a", Kind: KindAirport, Name: "KJFK"},
		End:               Waypoint{ID: "b", Kind: KindAirport, Name: "KBOS"},
		RemainingFuelGals: &fuel,
		StartTime:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(leg)
	if err != nil {
		t.Fatalf("Failed to marshal Leg: %v", err)
	}

	for _, field := range []string{"leg_start_point", "leg_end_point", "remaining_fuel_gals"} {
		if !strings.Contains(string(data), field) {
			t.Errorf("Expected JSON to contain %q, got %s", field, data)
		}
	}

	var decoded Leg
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal Leg: %v", err)
	}
	if decoded.RemainingFuelGals == nil || *decoded.RemainingFuelGals != fuel {
		t.Errorf("RemainingFuelGals mismatch: got %v, want %v", decoded.RemainingFuelGals, fuel)
	}
}

func TestWaypoint_OmitsEmptyOptionals(t *testing.T) {
	data, err := json.Marshal(Waypoint{ID: "a", Kind: KindCustom, Name: "Waypoint1"})
	if err != nil {
		t.Fatalf("Failed to marshal Waypoint: %v", err)
	}
	if strings.Contains(string(data), "altitude") || strings.Contains(string(data), "refuel") {
		t.Errorf("Expected altitude and refuel to be omitted, got %s", data)
	}
}
