// Package persist writes entities and their outgoing edge sets. Every
// write replaces the subject's edge sets wholesale: edges of the replaced
// types are deleted and recreated in payload order.
package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/playbill/internal/apperror"
	"github.com/agenthands/playbill/internal/core/dedupe"
	"github.com/agenthands/playbill/internal/core/hierarchy"
	"github.com/agenthands/playbill/internal/core/model"
	"github.com/agenthands/playbill/internal/store"
)

const maxLength = 1000

const (
	msgTooShort   = "Value is too short"
	msgTooLong    = "Value is too long"
	msgDuplicated = "This item has been duplicated within the group"
)

type Persister struct {
	resolver *dedupe.Resolver
}

func New(resolver *dedupe.Resolver) *Persister {
	return &Persister{resolver: resolver}
}

// write carries the state of one create or update.
type write struct {
	tx       store.Tx
	scope    *dedupe.Scope
	kind     model.Kind
	uuid     string
	isUpdate bool
	errs     apperror.Collector
}

// begin establishes the subject uuid. On update the node must exist and be
// of kind; on create a client uuid is honoured unless already taken.
func (p *Persister) begin(ctx context.Context, tx store.Tx, kind model.Kind, uuid string, isUpdate bool) (*write, error) {
	w := &write{tx: tx, scope: p.resolver.NewScope(tx), kind: kind, isUpdate: isUpdate}
	uuid = strings.TrimSpace(uuid)

	if isUpdate {
		if _, err := requireNode(ctx, tx, kind, uuid); err != nil {
			return nil, err
		}
		w.uuid = uuid
		return w, nil
	}

	if uuid == "" {
		w.uuid = p.resolver.NewID()
		return w, nil
	}
	_, err := tx.GetNode(ctx, uuid)
	switch {
	case err == nil:
		w.errs.Add(apperror.KindDuplicateRecord, "uuid", "Value is already in use")
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}
	w.uuid = uuid
	return w, nil
}

// requireNode returns a not_found error unless uuid is a node of kind.
func requireNode(ctx context.Context, tx store.Tx, kind model.Kind, uuid string) (store.Node, error) {
	n, err := tx.GetNode(ctx, uuid)
	if errors.Is(err, store.ErrNotFound) || (err == nil && n.Kind != kind) {
		return store.Node{}, apperror.NotFound(kind, uuid)
	}
	return n, err
}

func (w *write) checkName(field, name string) {
	switch {
	case name == "":
		w.errs.Add(apperror.KindValidation, field, msgTooShort)
	case utf8.RuneCountInString(name) > maxLength:
		w.errs.Add(apperror.KindValidation, field, msgTooLong)
	}
}

func (w *write) checkOptional(field, value string) {
	if utf8.RuneCountInString(value) > maxLength {
		w.errs.Add(apperror.KindValidation, field, msgTooLong)
	}
}

// checkRef validates a soft reference at path; the name is only required
// when a differentiator was given.
func (w *write) checkRef(path string, ref model.Ref) {
	if ref.Name == "" && ref.Differentiator != "" {
		w.errs.Add(apperror.KindValidation, apperror.Join(path, "name"), msgTooShort)
	}
	w.checkOptional(apperror.Join(path, "name"), ref.Name)
	w.checkOptional(apperror.Join(path, "differentiator"), ref.Differentiator)
}

// checkUnique reports a natural-key collision with another node.
func (w *write) checkUnique(ctx context.Context, name, differentiator string) error {
	if name == "" {
		return nil
	}
	existing, err := w.tx.FindNode(ctx, w.kind, name, differentiator)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.UUID != w.uuid {
		msg := fmt.Sprintf("%s with this name and differentiator already exists", w.kind.Label())
		w.errs.Add(apperror.KindDuplicateRecord, "name", msg)
		w.errs.Add(apperror.KindDuplicateRecord, "differentiator", msg)
	}
	return nil
}

// markDuplicates flags every item whose key occurs more than once. Empty
// keys are ignored.
func (w *write) markDuplicates(keys []string, field func(i int) string) {
	counts := make(map[string]int, len(keys))
	for _, k := range keys {
		if k != "" {
			counts[k]++
		}
	}
	for i, k := range keys {
		if counts[k] > 1 {
			w.errs.Add(apperror.KindValidation, field(i), msgDuplicated)
		}
	}
}

func refKey(name, differentiator string) string {
	if name == "" {
		return ""
	}
	return name + "\x00" + differentiator
}

// saveSubject creates or overwrites the subject node and, on update,
// deletes its replaced outgoing edge sets.
func (w *write) saveSubject(ctx context.Context, name, differentiator string, props map[string]any, replaced ...model.EdgeType) error {
	node := store.Node{UUID: w.uuid, Kind: w.kind, Name: name, Differentiator: differentiator, Props: props}
	if !w.isUpdate {
		return w.tx.CreateNode(ctx, node)
	}
	if err := w.tx.UpdateNode(ctx, node); err != nil {
		return err
	}
	if len(replaced) == 0 {
		return nil
	}
	return w.tx.DeleteEdges(ctx, w.uuid, store.Outgoing, replaced...)
}

func (w *write) ensure(ctx context.Context, kind model.Kind, ref model.Ref) (string, error) {
	return w.scope.Ensure(ctx, kind, ref.Name, ref.Differentiator, ref.UUID)
}

// attachSub links child under the subject after validating the assignment.
// A violation is collected against field and no edge is created.
func (w *write) attachSub(ctx context.Context, h hierarchy.Hierarchy, field, child string, position int) error {
	v := hierarchy.NewValidator(h)
	res, err := v.ValidateAssignment(ctx, w.tx, w.uuid, child, hierarchy.RoleSub)
	if err != nil {
		return err
	}
	if kind, msg, bad := v.Violation(res); bad {
		w.errs.Add(kind, field, msg)
		return nil
	}
	return w.tx.CreateEdge(ctx, store.Edge{Type: h.Edge, From: w.uuid, To: child, Position: position})
}

func (w *write) link(ctx context.Context, edgeType model.EdgeType, to string, position int, props map[string]any) error {
	return w.tx.CreateEdge(ctx, store.Edge{Type: edgeType, From: w.uuid, To: to, Position: position, Props: props})
}

func setString(props map[string]any, key, value string) {
	if value != "" {
		props[key] = value
	}
}

func trimRef(r model.Ref) model.Ref {
	return model.Ref{
		UUID:           strings.TrimSpace(r.UUID),
		Name:           strings.TrimSpace(r.Name),
		Differentiator: strings.TrimSpace(r.Differentiator),
	}
}

// trimRefs trims every reference in place. Blank entries are kept so
// field paths keep matching the payload; writers skip them.
func trimRefs(refs []model.Ref) []model.Ref {
	for i := range refs {
		refs[i] = trimRef(refs[i])
	}
	return refs
}

func trimUUIDRefs(refs []model.UUIDRef) []model.UUIDRef {
	for i := range refs {
		refs[i].UUID = strings.TrimSpace(refs[i].UUID)
	}
	return refs
}

func refOf(n store.Node) model.Ref {
	return model.Ref{UUID: n.UUID, Name: n.Name, Differentiator: n.Differentiator}
}

func refsOf(rels []store.Relation) []model.Ref {
	refs := make([]model.Ref, len(rels))
	for i, r := range rels {
		refs[i] = refOf(r.Node)
	}
	return refs
}
