package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestStepError(t *testing.T) {
	t.Parallel()

	at := AtStep(StepStore, "photo")

	t.Run("Wrap returns nil for nil error", func(t *testing.T) {
		t.Parallel()
		if result := at.Wrap(nil, "could not store image"); result != nil {
			t.Errorf("expected nil, got %v", result)
		}
	})

	t.Run("Wrap keeps step and subject", func(t *testing.T) {
		t.Parallel()
		baseErr := errors.New("database is locked")
		wrapped := at.Wrap(baseErr, "could not store image")

		var se *StepError
		if !errors.As(wrapped, &se) {
			t.Fatal("expected StepError type")
		}
		if se.Step != StepStore {
			t.Errorf("expected step 'store', got '%s'", se.Step)
		}
		if se.Subject != "photo" {
			t.Errorf("expected subject 'photo', got '%s'", se.Subject)
		}
		if !errors.Is(wrapped, baseErr) {
			t.Error("wrapped error should unwrap to base error")
		}
		if got := wrapped.Error(); got != "store photo: could not store image: database is locked" {
			t.Errorf("unexpected message %q", got)
		}
	})

	t.Run("Wrap does not mutate the template", func(t *testing.T) {
		t.Parallel()
		_ = at.Wrap(errors.New("first"), "one")
		if at.Cause != nil || at.Public != "" {
			t.Error("template should stay empty")
		}
	})

	t.Run("Wrapf formats message", func(t *testing.T) {
		t.Parallel()
		wrapped := AtStep(StepPublish, "").Wrapf(ErrNotFound, "could not publish %s", "Documents.zip")

		if got := PublicMessage(wrapped); got != "could not publish Documents.zip" {
			t.Errorf("expected 'could not publish Documents.zip', got '%s'", got)
		}
		if got := wrapped.Error(); got != "publish: could not publish Documents.zip: resource not found" {
			t.Errorf("unexpected message %q", got)
		}
		if !errors.Is(wrapped, ErrNotFound) {
			t.Error("wrapped error should match sentinel")
		}
	})
}

func TestPublicMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("plain failure"), "plain failure"},
		{"wrapped", AtStep(StepResolve, "abc").Wrap(errors.New("disk"), "could not load image"), "could not load image"},
		{
			"wrapped twice",
			fmt.Errorf("handler: %w", AtStep(StepResolve, "abc").Wrap(errors.New("disk"), "could not load image")),
			"could not load image",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PublicMessage(tt.err); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStepOf(t *testing.T) {
	t.Parallel()

	if step, ok := StepOf(fmt.Errorf("x: %w", AtStep(StepPublish, "k").Wrap(errors.New("boom"), "could not publish"))); !ok || step != StepPublish {
		t.Errorf("expected publish step, got %q %v", step, ok)
	}
	if _, ok := StepOf(errors.New("plain")); ok {
		t.Error("plain error should carry no step")
	}
}
