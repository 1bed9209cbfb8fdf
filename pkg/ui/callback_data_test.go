package ui

import "testing"

func TestBuildAndParseEventCallbacks(t *testing.T) {
	cases := []struct {
		build func(uint) (string, error)
		kind  ActionKind
	}{
		{BuildDoneCallback, ActionDone},
		{BuildSkipCallback, ActionSkip},
		{BuildSeenCallback, ActionSeen},
		{BuildSnoozeMenuCallback, ActionSnoozeMenu},
		{BuildSnoozeBackCallback, ActionSnoozeBack},
	}

	for _, tc := range cases {
		data, err := tc.build(42)
		if err != nil {
			t.Fatalf("failed to build %s callback: %v", tc.kind, err)
		}
		action, err := ParseCallback(data)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", data, err)
		}
		if action.Kind != tc.kind || action.EventID != 42 {
			t.Fatalf("roundtrip mismatch for %s: got %+v", tc.kind, action)
		}
		if action.Minutes != 0 {
			t.Fatalf("expected no minutes on %s, got %d", tc.kind, action.Minutes)
		}
	}
}

func TestBuildAndParseSnoozeCallback(t *testing.T) {
	data, err := BuildSnoozeCallback(60, 7)
	if err != nil {
		t.Fatalf("failed to build snooze callback: %v", err)
	}
	if data != "rem:snooze:60:7" {
		t.Fatalf("unexpected snooze data: %q", data)
	}

	action, err := ParseCallback(data)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", data, err)
	}
	if action.Kind != ActionSnooze || action.EventID != 7 || action.Minutes != 60 {
		t.Fatalf("roundtrip mismatch: %+v", action)
	}
}

func TestBuildSnoozeCallbackRejectsNonPositiveMinutes(t *testing.T) {
	if _, err := BuildSnoozeCallback(0, 7); err == nil {
		t.Fatal("expected error for zero minutes")
	}
	if _, err := BuildSnoozeCallback(-15, 7); err == nil {
		t.Fatal("expected error for negative minutes")
	}
}

func TestParseCallbackRejectsMalformedData(t *testing.T) {
	cases := []string{
		"",
		"done:42",
		"other:done:42",
		"rem:",
		"rem:done",
		"rem:done:",
		"rem:done:zero",
		"rem:done:0",
		"rem:done:42:extra",
		"rem:unknown:42",
		"rem:snooze:42",
		"rem:snooze:abc:42",
		"rem:snooze:-15:42",
		"rem:snooze:60:0",
	}

	for _, data := range cases {
		if _, err := ParseCallback(data); err == nil {
			t.Fatalf("expected error for %q", data)
		}
	}
}

func TestParseCallbackRejectsOversizedData(t *testing.T) {
	data := CallbackPrefix + string(ActionDone) + ":1"
	for len(data) <= MaxCallbackDataLen {
		data += "0"
	}
	if _, err := ParseCallback(data); err == nil {
		t.Fatal("expected error for oversized data")
	}
}
