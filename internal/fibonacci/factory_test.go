package fibonacci

import (
	"errors"
	"reflect"
	"testing"
)

func TestDefaultFactory(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()

	if got, want := f.List(), []string{EngineFastDoubling, EngineIterative}; !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	e, err := f.Get(EngineFastDoubling)
	if err != nil {
		t.Fatalf("Get(fast) error: %v", err)
	}
	if _, ok := e.(FastDoubling); !ok {
		t.Errorf("Get(fast) = %T, want FastDoubling", e)
	}

	if _, err := f.Get("matrix"); !errors.Is(err, ErrUnknownEngine) {
		t.Errorf("Get(matrix) error = %v, want ErrUnknownEngine", err)
	}
}

func TestDefaultFactory_Register(t *testing.T) {
	t.Parallel()
	f := NewDefaultFactory()
	f.Register("alias", Iterative{})

	e, err := f.Get("alias")
	if err != nil {
		t.Fatalf("Get(alias) error: %v", err)
	}
	if e.Compute(12) != Uint128From64(144) {
		t.Error("registered engine computes wrong value")
	}
	if len(f.List()) != 3 {
		t.Errorf("List() = %v, want 3 entries", f.List())
	}
}
