package runtime

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/storygraph/pkg/document"
	"github.com/aretw0/storygraph/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Rename moves unit oldID to newID and repairs the references held by every
// other unit.
//
// Referencing units are rewritten concurrently and all writes settle before
// the store rename. A failed write is reported once every write has finished;
// nothing is rolled back and the store rename is not attempted. Units that do
// not parse are skipped. The renamed unit itself is not scanned, so a
// self-reference keeps pointing at oldID.
func (e *Engine) Rename(ctx context.Context, oldID, newID string) (err error) {
	n := 0
	defer func() { e.emit(ctx, domain.OpRename, oldID, "", n, err) }()

	if err := domain.ValidateUnitID(newID); err != nil {
		return err
	}
	if oldID == newID {
		return fmt.Errorf("%w: %q is already the unit id", domain.ErrInvalidUnitID, newID)
	}

	docs, err := e.readAll(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	if !slices.Contains(ids, oldID) {
		return storeErr("rename", oldID, domain.ErrUnitNotFound)
	}
	if slices.Contains(ids, newID) {
		return storeErr("rename", newID, domain.ErrUnitExists)
	}

	updates := make(map[string]string)
	for _, doc := range docs {
		if doc.ID == oldID {
			continue
		}
		if doc.ParseErr != nil {
			e.logger.WarnContext(ctx, "rename skips unparsable unit", "unit", doc.ID, "error", doc.ParseErr)
			continue
		}
		if !doc.Unit.Exit.Retarget(oldID, newID) {
			continue
		}
		text, err := document.Serialize(doc.Unit)
		if err != nil {
			return err
		}
		updates[doc.ID] = text
	}

	n, err = e.writeAll(ctx, updates)
	if err != nil {
		return err
	}

	if err := e.store.Rename(ctx, oldID, newID); err != nil {
		return storeErr("rename", oldID, err)
	}

	_, err = e.rebuild(ctx, e.carryPosition(oldID, newID))
	return err
}

// MoveUnit renames a unit in the store without repairing references to it.
// This is the raw store rename offered to clients that repair references
// themselves.
func (e *Engine) MoveUnit(ctx context.Context, oldID, newID string) (err error) {
	defer func() { e.emit(ctx, domain.OpMove, oldID, "", 0, err) }()

	if err := domain.ValidateUnitID(newID); err != nil {
		return err
	}
	if err := e.store.Rename(ctx, oldID, newID); err != nil {
		return storeErr("rename", oldID, err)
	}
	_, err = e.rebuild(ctx, e.carryPosition(oldID, newID))
	return err
}

// carryPosition returns the current layout with the position of oldID
// moved to newID.
func (e *Engine) carryPosition(oldID, newID string) map[string]domain.Position {
	positions := e.Graph().Positions()
	if pos, ok := positions[oldID]; ok {
		positions[newID] = pos
		delete(positions, oldID)
	}
	return positions
}

// writeAll writes every update concurrently and waits for all of them.
// It returns the number of successful writes and the first failure.
func (e *Engine) writeAll(ctx context.Context, updates map[string]string) (int, error) {
	results := make(chan error, len(updates))

	var g errgroup.Group
	for id, text := range updates {
		g.Go(func() error {
			err := e.store.Write(ctx, id, text)
			results <- err
			if err != nil {
				e.logger.ErrorContext(ctx, "reference repair failed", "unit", id, "error", err)
				return storeErr("write", id, err)
			}
			return nil
		})
	}
	err := g.Wait()
	close(results)

	ok := 0
	for r := range results {
		if r == nil {
			ok++
		}
	}
	return ok, err
}
