package cli

import (
	"errors"
	"testing"
)

func TestParseStatuses(t *testing.T) {
	wanted, err := parseStatuses("waiting, done")
	if err != nil {
		t.Fatalf("parseStatuses: %v", err)
	}
	if !wanted["waiting"] || !wanted["done"] || len(wanted) != 2 {
		t.Errorf("parsed set = %v", wanted)
	}
}

func TestParseStatusesNormalizesCase(t *testing.T) {
	wanted, err := parseStatuses("WORKING")
	if err != nil {
		t.Fatalf("parseStatuses: %v", err)
	}
	if !wanted["working"] {
		t.Errorf("parsed set = %v", wanted)
	}
}

func TestParseStatusesRejectsUnknown(t *testing.T) {
	_, err := parseStatuses("waiting,bogus")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("exit code = %d", exitErr.Code)
	}
	if exitErr.Message != "Invalid status: bogus" {
		t.Errorf("message = %q", exitErr.Message)
	}
}

func TestParseStatusesRejectsEmpty(t *testing.T) {
	for _, raw := range []string{"", " , "} {
		if _, err := parseStatuses(raw); err == nil {
			t.Errorf("parseStatuses(%q) accepted empty input", raw)
		}
	}
}
