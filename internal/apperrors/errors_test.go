package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOfWrapped(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("save: %w", &PersistError{Op: "save_config", Err: errors.New("boom")}), http.StatusBadGateway},
		{&InvalidInputError{Field: "mm", Value: "abc"}, http.StatusBadRequest},
		{&ValidationError{Fields: []string{"raw_mm_per_m"}}, http.StatusBadRequest},
		{fmt.Errorf("x: %w", &ConfigurationError{SoilType: "peat"}), http.StatusInternalServerError},
		{&NotFoundError{What: "block", Key: "A"}, http.StatusNotFound},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := StatusOf(c.err); got != c.want {
			t.Fatalf("StatusOf(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestPersistErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("record: %w", &PersistError{Op: "save_actual_irrigation", Block: "D2_Bay_1", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through %v", err)
	}
	var pe *PersistError
	if !errors.As(err, &pe) || pe.Block != "D2_Bay_1" {
		t.Fatalf("expected PersistError for D2_Bay_1, got %v", err)
	}
}
