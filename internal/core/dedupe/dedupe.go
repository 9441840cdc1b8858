// Package dedupe resolves natural-key references to node identities so the
// same real-world entity is never stored twice.
package dedupe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

// Resolution is the outcome of resolving one reference.
type Resolution struct {
	UUID  string
	IsNew bool
}

type Resolver struct {
	NewID func() string
}

func NewResolver(newID func() string) *Resolver {
	return &Resolver{NewID: newID}
}

// Resolve looks up a node of kind by name and differentiator. An existing
// node's uuid always wins over proposedUUID. When nothing matches, the
// proposed uuid is returned with IsNew set, unless it is empty or already
// taken, in which case a fresh one is. Resolve never writes.
func (r *Resolver) Resolve(ctx context.Context, tx store.Tx, kind model.Kind, name, differentiator, proposedUUID string) (Resolution, error) {
	name, differentiator = strings.TrimSpace(name), strings.TrimSpace(differentiator)
	if name == "" {
		return Resolution{}, fmt.Errorf("dedupe: empty name for %s", kind)
	}

	existing, err := tx.FindNode(ctx, kind, name, differentiator)
	switch {
	case err == nil:
		return Resolution{UUID: existing.UUID}, nil
	case !errors.Is(err, store.ErrNotFound):
		return Resolution{}, fmt.Errorf("failed to look up %s %q: %w", kind, name, err)
	}

	id := strings.TrimSpace(proposedUUID)
	if id != "" {
		// A uuid already held by another node (typically a renamed
		// reference echoed back from an edit view) is not reused.
		_, err := tx.GetNode(ctx, id)
		switch {
		case err == nil:
			id = ""
		case !errors.Is(err, store.ErrNotFound):
			return Resolution{}, fmt.Errorf("failed to look up uuid %s: %w", id, err)
		}
	}
	if id == "" {
		id = r.NewID()
	}
	return Resolution{UUID: id, IsNew: true}, nil
}

type naturalKey struct {
	kind           model.Kind
	name           string
	differentiator string
}

// Scope resolves references for a single write and materialises new nodes
// as it goes, so every reference to one natural key in that write links to
// the same node.
type Scope struct {
	resolver *Resolver
	tx       store.Tx
	seen     map[naturalKey]string
}

func (r *Resolver) NewScope(tx store.Tx) *Scope {
	return &Scope{resolver: r, tx: tx, seen: make(map[naturalKey]string)}
}

// Ensure returns the uuid of the node for the natural key, creating a bare
// node when none exists yet.
func (s *Scope) Ensure(ctx context.Context, kind model.Kind, name, differentiator, proposedUUID string) (string, error) {
	key := naturalKey{kind, strings.TrimSpace(name), strings.TrimSpace(differentiator)}
	if id, ok := s.seen[key]; ok {
		return id, nil
	}

	res, err := s.resolver.Resolve(ctx, s.tx, kind, name, differentiator, proposedUUID)
	if err != nil {
		return "", err
	}
	if res.IsNew {
		node := store.Node{
			UUID:           res.UUID,
			Kind:           kind,
			Name:           key.name,
			Differentiator: key.differentiator,
			Props:          map[string]any{},
		}
		if err := s.tx.CreateNode(ctx, node); err != nil {
			return "", fmt.Errorf("failed to create %s %q: %w", kind, key.name, err)
		}
	}
	s.seen[key] = res.UUID
	return res.UUID, nil
}
