package store

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/forum/pkg/cryptox"
)

// Sealed encrypts selected values before they reach the wrapped KV.
// Values written before sealing was enabled are read back as is.
type Sealed struct {
	KV
	sealer *cryptox.Sealer
	keys   map[string]bool
}

// NewSealed seals the values of keys with sealer. With no keys given the
// two token keys are sealed.
func NewSealed(kv KV, sealer *cryptox.Sealer, keys ...string) *Sealed {
	if len(keys) == 0 {
		keys = []string{KeyToken, KeyRefreshToken}
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return &Sealed{KV: kv, sealer: sealer, keys: set}
}

func (s *Sealed) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	values, err := s.KV.Get(ctx, keys...)
	if err != nil {
		return nil, err
	}

	for k, v := range values {
		if !s.keys[k] || !cryptox.IsSealed(v) {
			continue
		}
		plain, err := s.sealer.Open(v)
		if err != nil {
			return nil, fmt.Errorf("open %s (was the session key changed? log out to reset): %w", k, err)
		}
		values[k] = plain
	}

	return values, nil
}

func (s *Sealed) Put(ctx context.Context, values map[string]string) error {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if s.keys[k] && v != "" {
			sealed, err := s.sealer.Seal(v)
			if err != nil {
				return fmt.Errorf("seal %s: %w", k, err)
			}
			v = sealed
		}
		out[k] = v
	}
	return s.KV.Put(ctx, out)
}
