// Package loam reads Kinema projects stored as Loam document repositories.
//
// A project mirrors the dotLottie v2 layout: state machines live under s/,
// themes under t/ and animations under a/. Each entry is a markdown
// document whose frontmatter is EntryMetadata and whose body is the payload.
package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/kinema/pkg/domain"
	"github.com/aretw0/loam"
)

var prefixes = map[domain.EntryKind]string{
	domain.EntryStateMachine: "s/",
	domain.EntryTheme:        "t/",
	domain.EntryAnimation:    "a/",
}

// Source adapts a Loam repository to ports.DefinitionSource.
type Source struct {
	Repo *loam.TypedRepository[EntryMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[EntryMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a read-only Loam repository at dir and wraps it.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[EntryMetadata](repo)), nil
}

func (s *Source) StateMachine(id string) ([]byte, error) {
	return s.read(domain.EntryStateMachine, id)
}

func (s *Source) Theme(id string) ([]byte, error) {
	return s.read(domain.EntryTheme, id)
}

func (s *Source) Animation(id string) ([]byte, error) {
	return s.read(domain.EntryAnimation, id)
}

func (s *Source) read(kind domain.EntryKind, id string) ([]byte, error) {
	doc, err := s.Repo.Get(context.Background(), prefixes[kind]+id)
	if err != nil {
		return nil, fmt.Errorf("%w: loam get failed for %s %q: %v", domain.ErrLoad, kind, id, err)
	}
	if doc.Data.Kind != "" && domain.EntryKind(doc.Data.Kind) != kind {
		return nil, fmt.Errorf("%w: %q is a %s, not a %s", domain.ErrLoad, id, doc.Data.Kind, kind)
	}
	body := unfence(doc.Content)
	if body == "" {
		return nil, fmt.Errorf("%w: %s %q has an empty body", domain.ErrLoad, kind, id)
	}
	return []byte(body), nil
}

// List returns the ids of every entry of kind, sorted.
func (s *Source) List(kind domain.EntryKind) ([]string, error) {
	prefix, ok := prefixes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown entry kind %q", domain.ErrInvalidParameter, kind)
	}
	docs, err := s.Repo.List(context.Background())
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	var ids []string
	for _, doc := range docs {
		rel := filepath.ToSlash(doc.ID)
		if !strings.HasPrefix(rel, prefix) {
			continue
		}
		id := trimExtension(strings.TrimPrefix(rel, prefix))
		if existing, dup := seen[id]; dup {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch implements ports.Watchable. Each change of a project document
// signals once; bursts are debounced by Loam.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := s.Repo.Watch(ctx, "**/*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- struct{}{}:
				default: // a reload is already pending
				}
			}
		}
	}()
	return ch, nil
}

// unfence strips a surrounding ```lang fence from a document body.
func unfence(body string) string {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, "```") {
		return body
	}
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return ""
	}
	body = strings.TrimSpace(body[nl+1:])
	return strings.TrimSpace(strings.TrimSuffix(body, "```"))
}

func trimExtension(id string) string {
	return strings.TrimSuffix(id, path.Ext(id))
}
