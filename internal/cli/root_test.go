package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitErrorUnwrapsThroughWrapping(t *testing.T) {
	base := &ExitError{Code: 124, Message: "Timeout"}
	wrapped := fmt.Errorf("run feature-x: %w", base)

	var exitErr *ExitError
	if !errors.As(wrapped, &exitErr) {
		t.Fatal("errors.As failed to find ExitError")
	}
	if exitErr.Code != 124 || exitErr.Message != "Timeout" {
		t.Errorf("unexpected exit error: %+v", exitErr)
	}
}

func TestExitErrorMessage(t *testing.T) {
	err := &ExitError{Code: 1, Message: "No active agents"}
	if err.Error() != "No active agents" {
		t.Errorf("Error() = %q", err.Error())
	}
}
