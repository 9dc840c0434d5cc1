package registry

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/scene"
)

type stubFeature struct {
	name     string
	interval int
}

func (s stubFeature) Keyframes(k *animator.Keyframes) error {
	return k.Add(s.name, s.interval, func(*animator.Frame) error { return nil })
}

func init() {
	Register("test-alpha", "Alpha", func(*scene.Env) (Feature, error) { return stubFeature{"alpha", 5}, nil })
	Register("test-beta", "Beta", func(*scene.Env) (Feature, error) { return stubFeature{"beta", 5}, nil })
	Register("test-broken", "Broken", func(*scene.Env) (Feature, error) { return nil, errors.New("no config") })
	Register("test-invalid", "Invalid", func(*scene.Env) (Feature, error) { return stubFeature{"bad", 0}, nil })
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate id")
		}
	}()
	Register("test-alpha", "Again", nil)
}

func TestListSortedWithTitles(t *testing.T) {
	list := List()
	for i := 1; i < len(list); i++ {
		if list[i-1].ID >= list[i].ID {
			t.Fatalf("List not sorted: %q before %q", list[i-1].ID, list[i].ID)
		}
	}
	found := false
	for _, info := range list {
		if info.ID == "test-beta" {
			found = info.Title == "Beta"
		}
	}
	if !found {
		t.Fatal("test-beta missing from List")
	}
	if !Exists("test-alpha") || Exists("test-missing") {
		t.Fatal("Exists mismatch")
	}
}

func TestComposeKeepsConfiguredOrder(t *testing.T) {
	k := animator.NewKeyframes()
	features, err := Compose([]string{"test-beta", "test-alpha"}, &scene.Env{}, k)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("features = %d", len(features))
	}
	entries := k.HandlersFor(5)
	if len(entries) != 2 || entries[0].Name != "beta" || entries[1].Name != "alpha" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestComposeErrors(t *testing.T) {
	tests := []struct {
		name   string
		ids    []string
		substr string
	}{
		{"unknown", []string{"test-missing"}, "unknown feature"},
		{"factory error", []string{"test-broken"}, "no config"},
		{"bad keyframe", []string{"test-invalid"}, "interval"},
		{"duplicate", []string{"test-alpha", "test-alpha"}, "twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.ids, &scene.Env{}, animator.NewKeyframes())
			if err == nil || !strings.Contains(err.Error(), tt.substr) {
				t.Fatalf("Compose error = %v, want %q", err, tt.substr)
			}
		})
	}
}
