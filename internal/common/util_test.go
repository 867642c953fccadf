package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("secret1")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestSentinels_SurviveWrapping(t *testing.T) {
	err := fmt.Errorf("%w: title must be at least 3 characters", ErrValidation)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("wrapped validation error lost its kind: %v", err)
	}
	if errors.Is(err, ErrorNotFound) {
		t.Fatalf("validation error must not match not found")
	}
}
