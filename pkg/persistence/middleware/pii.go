package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/kinema/pkg/ports"
)

// Mask replaces the stored value of masked string inputs.
const Mask = "***"

type maskMiddleware struct {
	next     ports.SnapshotStore
	patterns []*regexp.Regexp
}

// NewMaskMiddleware creates a middleware that masks string inputs whose
// name matches one of the patterns before the snapshot is stored. The
// player keeps the real values; a restored session sees the mask.
func NewMaskMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: mask pattern %q: %v", domain.ErrInvalidParameter, p, err)
		}
		compiled[i] = re
	}
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &maskMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *maskMiddleware) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	// Clone so the caller's snapshot is left untouched.
	cloned := snap.Clone()
	for name, v := range cloned.Triggers {
		if v.Type == domain.TriggerString && m.matches(name) {
			cloned.Triggers[name] = domain.StringValue(Mask)
		}
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *maskMiddleware) matches(name string) bool {
	for _, p := range m.patterns {
		if p.MatchString(name) {
			return true
		}
	}
	return false
}

func (m *maskMiddleware) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *maskMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *maskMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
