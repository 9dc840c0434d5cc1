// Package registry provides a global registry of display features.
// Features register themselves in init() functions, so the application can
// compose them by id without knowing any of them.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/skyboard/internal/animator"
	"github.com/vovakirdan/skyboard/internal/scene"
)

// Feature contributes keyframes to the shared registry. It holds no
// knowledge of other features.
type Feature interface {
	// Keyframes adds the feature's handlers. It is called once, before the
	// scheduler starts.
	Keyframes(k *animator.Keyframes) error
}

// Info describes a registered feature.
type Info struct {
	ID    string
	Title string
}

// Factory creates a feature bound to the run environment.
type Factory func(env *scene.Env) (Feature, error)

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a feature factory. Panics if the id is already registered.
func Register(id, title string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: feature %q already registered", id))
	}
	factories[id] = f
	titles[id] = title
}

// List returns all registered features, sorted by id.
func List() []Info {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]Info, 0, len(factories))
	for id := range factories {
		result = append(result, Info{ID: id, Title: titles[id]})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}

// Exists checks if a feature with the given id is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Create instantiates a feature by id.
func Create(id string, env *scene.Env) (Feature, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("registry: unknown feature %q", id)
	}
	feat, err := f(env)
	if err != nil {
		return nil, fmt.Errorf("registry: create %q: %w", id, err)
	}
	return feat, nil
}

// Compose creates the features in ids order and lets each add its keyframes.
// Order matters: it fixes keyframe invocation order within a tick.
func Compose(ids []string, env *scene.Env, k *animator.Keyframes) ([]Feature, error) {
	seen := make(map[string]bool, len(ids))
	features := make([]Feature, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("registry: feature %q listed twice", id)
		}
		seen[id] = true

		feat, err := Create(id, env)
		if err != nil {
			return nil, err
		}
		if err := feat.Keyframes(k); err != nil {
			return nil, fmt.Errorf("registry: %q keyframes: %w", id, err)
		}
		features = append(features, feat)
	}
	return features, nil
}
