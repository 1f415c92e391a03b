package stage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"gitlet/internal/storage"
)

const (
	additionPrefix = "addition"
	removalPrefix  = "removal"
)

// Area is the set of changes waiting for the next commit: files staged
// for addition (name -> blob id) and names staged for removal. Both live
// in the repository's badger DB.
type Area struct {
	additions *storage.BadgerStore
	removals  *storage.BadgerStore
}

func NewArea(db *badger.DB) *Area {
	return &Area{
		additions: storage.NewBadgerStore(db, additionPrefix),
		removals:  storage.NewBadgerStore(db, removalPrefix),
	}
}

// Add stages name at blobID, replacing any earlier staged version.
func (a *Area) Add(name, blobID string) error {
	if err := a.additions.Put(name, []byte(blobID)); err != nil {
		return fmt.Errorf("staging %s: %w", name, err)
	}
	return nil
}

// Unadd drops any staged addition for name.
func (a *Area) Unadd(name string) error {
	if err := a.additions.Remove(name); err != nil {
		return fmt.Errorf("unstaging %s: %w", name, err)
	}
	return nil
}

func (a *Area) MarkRemoved(name string) error {
	if err := a.removals.Put(name, nil); err != nil {
		return fmt.Errorf("staging removal of %s: %w", name, err)
	}
	return nil
}

func (a *Area) Unremove(name string) error {
	if err := a.removals.Remove(name); err != nil {
		return fmt.Errorf("unstaging removal of %s: %w", name, err)
	}
	return nil
}

// Addition returns the blob id staged for name.
func (a *Area) Addition(name string) (string, bool, error) {
	val, ok, err := a.additions.Value(name)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(val), true, nil
}

func (a *Area) IsStagedForAddition(name string) (bool, error) {
	return a.additions.Has(name)
}

func (a *Area) IsStagedForRemoval(name string) (bool, error) {
	return a.removals.Has(name)
}

// Additions returns a copy of every staged addition.
func (a *Area) Additions() (map[string]string, error) {
	entries, err := a.additions.Entries()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for name, id := range entries {
		out[name] = string(id)
	}
	return out, nil
}

// Removals returns the names staged for removal, sorted.
func (a *Area) Removals() ([]string, error) {
	return a.removals.Keys()
}

func (a *Area) IsEmpty() (bool, error) {
	adds, err := a.additions.Keys()
	if err != nil {
		return false, err
	}
	rms, err := a.removals.Keys()
	if err != nil {
		return false, err
	}
	return len(adds) == 0 && len(rms) == 0, nil
}

func (a *Area) Clear() error {
	if err := a.additions.Clear(); err != nil {
		return err
	}
	return a.removals.Clear()
}
