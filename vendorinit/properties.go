package vendorinit

import (
	"bytes"
	"fmt"
	"maps"
	"os/exec"
	"strings"
	"sync"
)

// Properties is a string key/value property service.
type Properties interface {
	// Get returns the value of key, or an empty string when it is not set.
	Get(key string) (string, error)
	Set(key, value string) error
}

// AndroidProperties talks to the Android property service through the getprop and
// setprop tools.
type AndroidProperties struct {
	Getprop string
	Setprop string
}

// NewAndroidProperties returns properties backed by getprop and setprop from PATH.
func NewAndroidProperties() *AndroidProperties {
	return &AndroidProperties{Getprop: "getprop", Setprop: "setprop"}
}

func (p *AndroidProperties) Get(key string) (string, error) {
	var stderr bytes.Buffer

	cmd := exec.Command(p.Getprop, key)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("getprop %s failed: %w: %s", key, err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimRight(string(out), "\r\n"), nil
}

func (p *AndroidProperties) Set(key, value string) error {
	out, err := exec.Command(p.Setprop, key, value).CombinedOutput()
	if err != nil {
		return fmt.Errorf("setprop %s failed: %w: %s", key, err, strings.TrimSpace(string(out)))
	}

	return nil
}

// MapProperties is an in-memory property store.
type MapProperties struct {
	mu    sync.Mutex
	props map[string]string
}

// NewMapProperties returns a store holding a copy of initial.
func NewMapProperties(initial map[string]string) *MapProperties {
	props := make(map[string]string, len(initial))
	maps.Copy(props, initial)

	return &MapProperties{props: props}
}

func (p *MapProperties) Get(key string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.props[key], nil
}

func (p *MapProperties) Set(key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.props[key] = value

	return nil
}

// Snapshot returns a copy of all properties.
func (p *MapProperties) Snapshot() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return maps.Clone(p.props)
}
