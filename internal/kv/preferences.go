package kv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var ErrUnknownPreference = errors.New("unknown preference")

const preferencePrefix = "pref:"

// preferenceDefaults is the allow-list of toggles and their initial values.
var preferenceDefaults = map[string]bool{
	"notifications": true,
	"weekly_digest": true,
	"dark_mode":     false,
	"share_data":    false,
}

// Preferences stores boolean user toggles under a fixed allow-list.
type Preferences struct {
	store Store
}

func NewPreferences(store Store) *Preferences {
	return &Preferences{store: store}
}

// PreferenceKeys returns the allowed preference names, sorted.
func PreferenceKeys() []string {
	keys := make([]string, 0, len(preferenceDefaults))
	for k := range preferenceDefaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the stored value of a toggle, or its default when unset.
func (p *Preferences) Get(ctx context.Context, name string) (bool, error) {
	def, ok := preferenceDefaults[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownPreference, name)
	}
	raw, err := p.store.Get(ctx, preferencePrefix+name)
	if errors.Is(err, ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return false, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, nil
	}
	return v, nil
}

func (p *Preferences) Set(ctx context.Context, name string, value bool) error {
	if _, ok := preferenceDefaults[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPreference, name)
	}
	return p.store.Set(ctx, preferencePrefix+name, strconv.FormatBool(value))
}

// All returns every toggle with its effective value.
func (p *Preferences) All(ctx context.Context) (map[string]bool, error) {
	out := make(map[string]bool, len(preferenceDefaults))
	for _, k := range PreferenceKeys() {
		v, err := p.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
