// Package clientsession caches issued credentials on the client side of the
// credential lifecycle. One Store exists per principal domain; a customer and
// a merchant session may be active on the same machine at the same time
// without ever touching each other's state.
package clientsession

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Domain tags a store with the principal domain it caches credentials for.
type Domain string

const (
	// DomainCustomer is the customer-side session store.
	DomainCustomer Domain = "customer"
	// DomainMerchant is the merchant-side session store.
	DomainMerchant Domain = "merchant"
)

// ErrEmptyToken is returned by Save when the issuance result carries no token.
var ErrEmptyToken = errors.New("issuance result carries no token")

// TokenInspector decodes the expiry of a token the caller already trusts.
// It intentionally matches the codec's unverified inspection: the store never
// makes trust decisions, it only caches a local expiry.
type TokenInspector interface {
	ExtractExpiry(token string) (time.Time, error)
}

// Identity is the display identity persisted alongside the credential.
type Identity struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
	MerchantUID string `json:"merchant_uid,omitempty"`
	Email       string `json:"email,omitempty"`
}

// IssuanceResult is the credential material handed to Save after a
// registration or login round-trip.
type IssuanceResult struct {
	Token        string
	RefreshToken string
	Identity     Identity
}

// state is the JSON document persisted per domain.
type state struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"` // Accepted but never exercised; no refresh flow exists.
	Identity     Identity  `json:"identity"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
}

// Store is a durable, mutex-guarded credential cache for one principal
// domain. The backing file is rehydrated lazily exactly once.
type Store struct {
	domain    Domain
	path      string
	inspector TokenInspector

	mu      sync.Mutex
	once    sync.Once
	current state
}

// NewStore creates a store for the domain, backed by a JSON file under dir.
func NewStore(domain Domain, dir string, inspector TokenInspector) *Store {
	return &Store{
		domain:    domain,
		path:      filepath.Join(dir, "session_"+string(domain)+".json"),
		inspector: inspector,
	}
}

// load rehydrates the persisted state. A missing or unreadable file simply
// leaves the store empty.
func (s *Store) load() {
	s.once.Do(func() {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return
		}

		var loaded state
		if err := json.Unmarshal(data, &loaded); err != nil {
			return
		}
		s.current = loaded
	})
}

// Save persists the credential, its derived expiry and the identity fields as
// one atomic write. An issuance result without a token is rejected.
func (s *Store) Save(result *IssuanceResult) error {
	if result == nil || result.Token == "" {
		return ErrEmptyToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	expiresAt, err := s.inspector.ExtractExpiry(result.Token)
	if err != nil {
		return errors.Wrap(err, "failed to derive token expiry")
	}

	next := state{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		Identity:     result.Identity,
		ExpiresAt:    expiresAt,
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.current = next

	return nil
}

// Valid reports whether a credential is present and not yet expired. A
// credential without an expiry claim is treated as non-expiring.
func (s *Store) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	if s.current.Token == "" {
		return false
	}
	if s.current.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Before(s.current.ExpiresAt)
}

// Token returns the cached credential, or an empty string when none is held.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	return s.current.Token
}

// Identity returns the cached display identity.
func (s *Store) Identity() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	return s.current.Identity
}

// Clear removes all persisted fields for this domain.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove session file")
	}
	s.current = state{}

	return nil
}

// persist writes the state to a temp file and renames it into place, so a
// reader never observes a partially written document.
func (s *Store) persist(next state) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode session state")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "failed to create session directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp session file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return errors.Wrap(err, "failed to write session state")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)

		return errors.Wrap(err, "failed to close temp session file")
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)

		return errors.Wrap(err, "failed to replace session file")
	}

	return nil
}

// Manager owns the two per-domain stores. It is constructed explicitly and
// injected; nothing in this package is process-global.
type Manager struct {
	customer *Store
	merchant *Store
}

// NewManager creates a manager with one store per principal domain, both
// backed by files under dir. The codec's TokenService satisfies the
// inspector interface.
func NewManager(dir string, inspector TokenInspector) *Manager {
	return &Manager{
		customer: NewStore(DomainCustomer, dir, inspector),
		merchant: NewStore(DomainMerchant, dir, inspector),
	}
}

// Customer returns the customer-domain store.
func (m *Manager) Customer() *Store {
	return m.customer
}

// Merchant returns the merchant-domain store.
func (m *Manager) Merchant() *Store {
	return m.merchant
}

// Teardown clears both stores.
func (m *Manager) Teardown() error {
	if err := m.customer.Clear(); err != nil {
		return err
	}

	return m.merchant.Clear()
}
