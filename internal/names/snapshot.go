package names

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cashback-id/internal/types"
)

// snapshotFile is the on-disk layout: two arrays, written as a full snapshot
// on every mutation and read once per process lifetime.
type snapshotFile struct {
	Subdomains  []ownedEntry      `json:"subdomains"`
	Preferences []namedPreference `json:"preferences"`
}

type ownedEntry struct {
	OwnerKey string               `json:"ownerKey"`
	Entry    types.SubdomainEntry `json:"entry"`
}

type namedPreference struct {
	FullName    string            `json:"fullName"`
	Preferences types.Preferences `json:"preferences"`
}

// ensureLoadedLocked hydrates the in-memory maps from the snapshot file the
// first time any operation runs. A missing, unreadable, or malformed file is
// treated identically: the store starts empty. Never a hard failure.
func (s *Store) ensureLoadedLocked() {
	if s.loaded {
		return
	}
	s.loaded = true

	if s.snapshotPath == "" {
		return
	}

	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warn("Snapshot unreadable, starting with empty store")
		}
		return
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.WithError(err).Warn("Snapshot malformed, starting with empty store")
		return
	}

	for _, oe := range snap.Subdomains {
		owner := NormalizeOwnerKey(oe.OwnerKey)
		if owner == "" || oe.Entry.Label == "" {
			continue
		}
		s.entries[owner] = oe.Entry
		s.labels[NormalizeLabel(oe.Entry.Label)] = true
	}
	for _, np := range snap.Preferences {
		name := normalizeName(np.FullName)
		if name == "" {
			continue
		}
		prefs := np.Preferences
		s.prefs[name] = &prefs
	}

	s.logger.WithFields(map[string]interface{}{
		"subdomains":  len(s.entries),
		"preferences": len(s.prefs),
	}).Info("Subdomain store hydrated from snapshot")
}

// persistLocked re-serializes the entire current state to the snapshot file.
// Best-effort: a write failure (e.g. read-only filesystem) is logged and
// swallowed because the in-memory state remains authoritative.
func (s *Store) persistLocked() {
	if s.snapshotPath == "" {
		return
	}

	snap := snapshotFile{
		Subdomains:  make([]ownedEntry, 0, len(s.entries)),
		Preferences: make([]namedPreference, 0, len(s.prefs)),
	}
	for owner, entry := range s.entries {
		snap.Subdomains = append(snap.Subdomains, ownedEntry{OwnerKey: owner, Entry: entry})
	}
	for name, prefs := range s.prefs {
		snap.Preferences = append(snap.Preferences, namedPreference{FullName: name, Preferences: *prefs})
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.WithError(err).Warn("Failed to serialize snapshot")
		return
	}

	if dir := filepath.Dir(s.snapshotPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.logger.WithError(err).Warn("Failed to create snapshot directory")
			return
		}
	}
	if err := os.WriteFile(s.snapshotPath, data, 0o644); err != nil {
		s.logger.WithError(err).Warn("Failed to write snapshot")
	}
}
