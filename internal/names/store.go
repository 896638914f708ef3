// Package names implements the subdomain allocation store: the owner-to-entry
// map, the label uniqueness set, and the per-name preference records, with
// best-effort snapshot persistence.
//
// The store is the durable source of truth for allocations. On-chain
// registration is an eventually-consistent projection of it and is handled
// elsewhere; nothing in this package ever talks to the network.
package names

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cashback-id/internal/logging"
	"github.com/cashback-id/internal/types"
)

// Allocation failures. ErrLabelTaken signals "try a different value", not a
// malformed request.
var (
	ErrLabelTooShort = errors.New("label must be at least 3 characters after normalization")
	ErrLabelTaken    = errors.New("label already taken")
)

// minLabelLen is enforced after normalization; shorter preferred labels fail,
// they are never padded.
const minLabelLen = 3

// Store owns all mutable name-allocation state. All access goes through its
// methods; the check-then-allocate sequence in Claim is atomic with respect
// to concurrent claims.
//
// State is lazily hydrated from the snapshot file on first use and
// re-serialized in full on every mutation. Snapshot I/O failures are logged
// and swallowed: the in-memory state stays authoritative for the life of the
// process.
type Store struct {
	mu     sync.Mutex
	loaded bool

	parent       string
	snapshotPath string
	logger       *logging.Logger
	now          func() time.Time

	entries map[string]types.SubdomainEntry // owner key -> entry
	labels  map[string]bool                 // normalized label -> taken
	prefs   map[string]*types.Preferences   // full name -> merged record
}

// NewStore creates a store for the given parent namespace. snapshotPath may
// point to a missing file; it is created on first mutation. An empty
// snapshotPath disables persistence entirely.
func NewStore(parent, snapshotPath string, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Store{
		parent:       strings.ToLower(strings.TrimSpace(parent)),
		snapshotPath: snapshotPath,
		logger:       logger.WithField("component", "names"),
		now:          time.Now,
		entries:      make(map[string]types.SubdomainEntry),
		labels:       make(map[string]bool),
		prefs:        make(map[string]*types.Preferences),
	}
}

// ParentName returns the managed namespace suffix (e.g. "cashbackid.eth").
func (s *Store) ParentName() string {
	return s.parent
}

// FullName returns label + "." + parent.
func (s *Store) FullName(label string) string {
	return label + "." + s.parent
}

// NormalizeOwnerKey lowercases and trims an owner identity string.
func NormalizeOwnerKey(ownerKey string) string {
	return strings.ToLower(strings.TrimSpace(ownerKey))
}

// NormalizeLabel lowercases, trims, and strips every character outside
// [a-z0-9-_]. Two visually different inputs can collide after normalization;
// that is intentional collision-avoidance.
func NormalizeLabel(label string) string {
	lowered := strings.ToLower(strings.TrimSpace(label))
	var b strings.Builder
	b.Grow(len(lowered))
	for _, c := range lowered {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '_' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// GetEntry returns the entry allocated to ownerKey, if any.
func (s *Store) GetEntry(ownerKey string) (types.SubdomainEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	entry, ok := s.entries[NormalizeOwnerKey(ownerKey)]
	return entry, ok
}

// Claim allocates a name for ownerKey. If the owner already holds an entry
// it is returned unchanged: claiming twice is a no-op success, never an
// error. With a preferred label the normalized form must be free and at
// least 3 characters; without one a label is derived from the owner key and
// disambiguated with a numeric suffix, so derived claims cannot conflict.
func (s *Store) Claim(ownerKey, preferredLabel string) (types.SubdomainEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	owner := NormalizeOwnerKey(ownerKey)
	if existing, ok := s.entries[owner]; ok {
		return existing, nil
	}

	var label string
	if strings.TrimSpace(preferredLabel) != "" {
		label = NormalizeLabel(preferredLabel)
		if s.labels[label] {
			return types.SubdomainEntry{}, ErrLabelTaken
		}
	} else {
		label = s.deriveLabelLocked(owner)
	}
	if len(label) < minLabelLen {
		return types.SubdomainEntry{}, ErrLabelTooShort
	}

	entry := types.SubdomainEntry{
		FullName:  s.FullName(label),
		Label:     label,
		CreatedAt: s.now().UTC(),
	}
	s.entries[owner] = entry
	s.labels[label] = true
	s.persistLocked()
	return entry, nil
}

// IsLabelAvailable reports whether the normalized label is still free.
func (s *Store) IsLabelAvailable(label string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	return !s.labels[NormalizeLabel(label)]
}

// IsManagedName reports whether fullName is under the managed namespace AND
// its label was actually allocated, not just syntactically in-namespace.
func (s *Store) IsManagedName(fullName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	return s.isManagedLocked(normalizeName(fullName))
}

func (s *Store) isManagedLocked(name string) bool {
	suffix := "." + s.parent
	if !strings.HasSuffix(name, suffix) {
		return false
	}
	label := strings.TrimSuffix(name, suffix)
	return s.labels[label]
}

// GetPreferences returns the merged preference record for fullName. A record
// that was never written, or whose merged form is empty, is reported absent.
func (s *Store) GetPreferences(fullName string) (*types.Preferences, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	prefs, ok := s.prefs[normalizeName(fullName)]
	if !ok || prefs.IsEmpty() {
		return nil, false
	}
	return prefs.Clone(), true
}

// SetPreferences merges prefs into the record stored for fullName, creating
// it on first write. Writes to names outside the managed namespace are a
// silent no-op.
func (s *Store) SetPreferences(fullName string, prefs *types.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureLoadedLocked()

	name := normalizeName(fullName)
	if !strings.HasSuffix(name, "."+s.parent) {
		return
	}

	existing, ok := s.prefs[name]
	if !ok {
		existing = &types.Preferences{}
		s.prefs[name] = existing
	}
	existing.Merge(prefs)
	s.persistLocked()
}

// deriveLabelLocked derives a deterministic default label from the owner key
// via a rolling hash over its hex body, rendered base-36. The numeric-suffix
// loop runs inside the store lock, so derived labels self-disambiguate and
// never conflict.
func (s *Store) deriveLabelLocked(owner string) string {
	hex := strings.TrimPrefix(owner, "0x")
	var hash int32
	for _, c := range hex {
		hash = hash*31 + int32(c)
	}
	h := int64(hash)
	if h < 0 {
		h = -h
	}
	base := strconv.FormatInt(h, 36)
	if len(base) > 8 {
		base = base[:8]
	}

	label := base
	for n := 0; s.labels[label]; n++ {
		label = base + strconv.Itoa(n)
	}
	return label
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
