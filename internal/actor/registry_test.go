package actor_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/seantiz/vigil/internal/actor"
)

func TestRegistryRegisterAndList(t *testing.T) {
	reg := actor.NewRegistry()
	reg.Register("b", actor.Noop)
	reg.Register("a", actor.Noop)

	got := reg.List()
	if want := []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}

func TestRegistryResolve(t *testing.T) {
	reg := actor.NewRegistry()
	called := false
	reg.Register("mark", func(context.Context, *actor.Actor) error {
		called = true
		return nil
	})

	b, err := reg.Resolve("mark")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := b(context.Background(), actor.New("x", "mark", actor.Params{})); err != nil {
		t.Fatalf("behavior: %v", err)
	}
	if !called {
		t.Error("resolved behavior was not the registered one")
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	reg := actor.NewRegistry()

	_, err := reg.Resolve("missing")
	if !errors.Is(err, actor.ErrUnknownBehavior) {
		t.Errorf("Resolve error = %v, want ErrUnknownBehavior", err)
	}
}

func TestRegisterBuiltins(t *testing.T) {
	reg := actor.NewRegistry()
	actor.RegisterBuiltins(reg)

	want := []string{actor.BehaviorFail, actor.BehaviorNoop, actor.BehaviorSleep}
	if got := reg.List(); !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
}
