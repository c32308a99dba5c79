package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/storygraph/pkg/document"
	"github.com/aretw0/storygraph/pkg/domain"
)

// ReadUnit returns the raw text of a unit together with its parsed form or
// parse error. A parse error is not an error of ReadUnit: callers fall back
// to raw-text editing.
func (e *Engine) ReadUnit(ctx context.Context, id string) (domain.UnitDocument, error) {
	text, err := e.store.Read(ctx, id)
	if err != nil {
		return domain.UnitDocument{}, storeErr("read", id, err)
	}
	return document.ParseDocument(id, text), nil
}

// Connect points handle of source at target. The empty handle and "next"
// make source Linear; any other handle becomes a branch.
func (e *Engine) Connect(ctx context.Context, source, target, handle string) error {
	if err := domain.ValidateUnitID(target); err != nil {
		return err
	}
	return e.mutate(ctx, domain.OpConnect, source, handle, func(u *domain.StoryUnit) error {
		u.Exit.Connect(target, handle)
		return nil
	})
}

// Disconnect removes the edge leaving source through handle.
func (e *Engine) Disconnect(ctx context.Context, source, handle string) error {
	return e.mutate(ctx, domain.OpDisconnect, source, handle, func(u *domain.StoryUnit) error {
		return u.Exit.Disconnect(handle)
	})
}

// Restyle sets one visual field of the edge leaving source through handle.
func (e *Engine) Restyle(ctx context.Context, source, handle string, field domain.StyleField, value string) error {
	return e.mutate(ctx, domain.OpRestyle, source, handle, func(u *domain.StoryUnit) error {
		return u.Exit.Restyle(handle, field, value)
	})
}

// CreateUnit writes the new-unit template under id.
func (e *Engine) CreateUnit(ctx context.Context, id string) (err error) {
	n := 0
	defer func() { e.emit(ctx, domain.OpCreate, id, "", n, err) }()

	if err := domain.ValidateUnitID(id); err != nil {
		return err
	}

	_, err = e.store.Read(ctx, id)
	switch {
	case err == nil:
		return fmt.Errorf("create %q: %w", id, domain.ErrUnitExists)
	case !errors.Is(err, domain.ErrUnitNotFound):
		return storeErr("read", id, err)
	}

	text, err := document.TemplateText(id)
	if err != nil {
		return err
	}
	if err := e.store.Write(ctx, id, text); err != nil {
		return storeErr("write", id, err)
	}
	n = 1

	_, err = e.Refresh(ctx)
	return err
}

// SaveUnit replaces the text of a unit as is. The text does not need to
// parse; this is the raw editing path for broken documents.
func (e *Engine) SaveUnit(ctx context.Context, id, text string) (err error) {
	n := 0
	defer func() { e.emit(ctx, domain.OpSave, id, "", n, err) }()

	if err := domain.ValidateUnitID(id); err != nil {
		return err
	}
	if err := e.store.Write(ctx, id, text); err != nil {
		return storeErr("write", id, err)
	}
	n = 1

	_, err = e.Refresh(ctx)
	return err
}

// DeleteUnit removes a unit. References to it from other units are left
// dangling.
func (e *Engine) DeleteUnit(ctx context.Context, id string) (err error) {
	defer func() { e.emit(ctx, domain.OpDelete, id, "", 0, err) }()

	if err := e.store.Delete(ctx, id); err != nil {
		return storeErr("delete", id, err)
	}
	_, err = e.Refresh(ctx)
	return err
}

// mutate runs the load, edit, write and rebuild cycle on one unit.
func (e *Engine) mutate(ctx context.Context, op domain.Operation, id, handle string, edit func(*domain.StoryUnit) error) (err error) {
	n := 0
	defer func() { e.emit(ctx, op, id, handle, n, err) }()

	text, err := e.store.Read(ctx, id)
	if err != nil {
		return storeErr("read", id, err)
	}
	unit, err := document.Parse(id, text)
	if err != nil {
		return err
	}
	if err := edit(unit); err != nil {
		return err
	}

	out, err := document.Serialize(unit)
	if err != nil {
		return err
	}
	if err := e.store.Write(ctx, id, out); err != nil {
		return storeErr("write", id, err)
	}
	n = 1

	_, err = e.Refresh(ctx)
	return err
}
