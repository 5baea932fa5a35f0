package game

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsAreDistinct(t *testing.T) {
	errorList := []error{
		ErrNotEnoughPlayers,
		ErrGameAlreadyStarted,
		ErrNotRecruiting,
		ErrDuplicateName,
		ErrAlreadyJoined,
		ErrInvalidTarget,
		ErrIneligibleVoter,
		ErrNoNightAction,
		ErrNotYourTurn,
		ErrInvalidTransition,
	}

	for i := 0; i < len(errorList); i++ {
		for j := i + 1; j < len(errorList); j++ {
			if errors.Is(errorList[i], errorList[j]) {
				t.Errorf("Error %v should not be equal to %v", errorList[i], errorList[j])
			}
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	wrapped := fmt.Errorf("cannot start game: %w", ErrNotEnoughPlayers)
	if !errors.Is(wrapped, ErrNotEnoughPlayers) {
		t.Error("wrapped error should match ErrNotEnoughPlayers")
	}
	if errors.Is(wrapped, ErrGameAlreadyStarted) {
		t.Error("wrapped error should not match ErrGameAlreadyStarted")
	}
}
