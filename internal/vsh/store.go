package vsh

import "vsh/internal/model"

// SnapshotStore persists named session snapshots. Names are unique: saving
// under an existing name replaces the stored snapshot.
type SnapshotStore interface {
	// Save stores s under s.Name, replacing any snapshot with that name.
	Save(s *model.Snapshot) error

	// Load returns the snapshot named name, or nil with a nil error when
	// there is none.
	Load(name string) (*model.Snapshot, error)

	// List returns every stored snapshot, newest first.
	List() ([]*model.SnapshotInfo, error)

	// Delete removes the snapshot named name. It returns ErrSnapshotNotFound
	// when there is none.
	Delete(name string) error

	// Close releases the store.
	Close() error
}
