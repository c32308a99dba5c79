package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/storygraph/pkg/domain"
)

// docExt is the extension of the Loam documents holding units. The unit text
// is the markdown body; the front matter only records the unit id.
const docExt = ".md"

// unitMeta is the front matter of a unit document.
type unitMeta struct {
	Unit string `json:"unit" mapstructure:"unit"`
}

// Store implements ports.UnitStore on top of a Loam repository.
type Store struct {
	Repo  core.Repository
	typed *loam.TypedRepository[unitMeta]
}

// New wraps an initialized repository.
func New(repo core.Repository) *Store {
	return &Store{
		Repo:  repo,
		typed: loam.NewTypedRepository[unitMeta](repo),
	}
}

// Open initializes a Loam repository at path, without git versioning.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithForceTemp(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

func docID(id string) string {
	return id + docExt
}

func unitID(doc core.Document) string {
	if id, ok := doc.Metadata["unit"].(string); ok && id != "" {
		return id
	}
	return strings.TrimSuffix(filepath.ToSlash(doc.ID), filepath.Ext(doc.ID))
}

// List returns the sorted unit ids.
func (s *Store) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, unitID(doc))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) exists(ctx context.Context, id string) (bool, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id, nil
}

// Read returns the body of the unit document.
func (s *Store) Read(ctx context.Context, id string) (string, error) {
	doc, err := s.Repo.Get(ctx, docID(id))
	if err != nil {
		return "", s.classify(ctx, id, "get", err)
	}
	return doc.Content, nil
}

// Write saves the unit text as the document body.
func (s *Store) Write(ctx context.Context, id, text string) error {
	if err := domain.ValidateUnitID(id); err != nil {
		return err
	}
	err := s.Repo.Save(ctx, core.Document{
		ID:       docID(id),
		Content:  text,
		Metadata: core.Metadata{"unit": id},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", id, err)
	}
	return nil
}

// Delete removes the unit document.
func (s *Store) Delete(ctx context.Context, id string) error {
	found, err := s.exists(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return domain.ErrUnitNotFound
	}
	if err := s.Repo.Delete(ctx, docID(id)); err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", id, err)
	}
	return nil
}

// Rename copies the unit under newID and deletes the old document.
// Loam has no native move; a failure between the two steps leaves both.
func (s *Store) Rename(ctx context.Context, oldID, newID string) error {
	text, err := s.Read(ctx, oldID)
	if err != nil {
		return err
	}
	taken, err := s.exists(ctx, newID)
	if err != nil {
		return err
	}
	if taken {
		return domain.ErrUnitExists
	}
	if err := s.Write(ctx, newID, text); err != nil {
		return err
	}
	return s.Delete(ctx, oldID)
}

// classify maps a failed lookup to ErrUnitNotFound when the unit is absent.
func (s *Store) classify(ctx context.Context, id, op string, err error) error {
	found, listErr := s.exists(ctx, id)
	if listErr == nil && !found {
		return domain.ErrUnitNotFound
	}
	return fmt.Errorf("loam %s failed for %s: %w", op, id, err)
}

// Watch implements ports.Watchable.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.typed.Watch(ctx, "**/*"+docExt)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				id := strings.TrimSuffix(filepath.ToSlash(evt.ID), filepath.Ext(evt.ID))
				select {
				case ch <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
