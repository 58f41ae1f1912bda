// Package session implements SessionState: the in-memory record of the one
// identity an engine instance currently has unlocked.
package session

import (
	"sync"

	"github.com/allisson/vaultcore/internal/vault/domain"
	"github.com/allisson/vaultcore/internal/vault/keyring"
)

// State holds everything the engine needs while a caller is authenticated:
// the keyring guarding the unlocked identity's key material, the session key
// used to wrap/unwrap it, the cached password (needed to re-seal the
// envelope on every secret mutation without re-deriving from scratch), and a
// private copy of the decrypted secrets map.
//
// A zero State is valid and unauthenticated.
type State struct {
	mu sync.Mutex

	client     *keyring.Keyring
	sessionKey domain.SessionKey
	id         domain.Identifier
	password   string
	secrets    map[string]string

	authenticated bool
}

// New returns an unauthenticated session.
func New() *State {
	return &State{}
}

// Establish installs a freshly authenticated session, destroying any prior
// one first. secrets is deep-copied so the caller's map can be mutated
// afterward without affecting the session.
func (s *State) Establish(client *keyring.Keyring, sessionKey domain.SessionKey, id domain.Identifier, password string, secrets map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearLocked()

	copied := make(map[string]string, len(secrets))
	for k, v := range secrets {
		copied[k] = v
	}

	s.client = client
	s.sessionKey = sessionKey
	s.id = id
	s.password = password
	s.secrets = copied
	s.authenticated = true
}

// Clear tears down the session: drops the keyring's handle, wipes the
// session key, and forgets the cached password and secrets. Idempotent and
// tolerant of the keyring having already dropped its handle.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *State) clearLocked() {
	if s.client != nil {
		s.client.Drop()
		s.client = nil
	}
	domain.Zero(s.sessionKey)
	s.sessionKey = nil
	s.password = ""
	s.secrets = nil
	s.id = ""
	s.authenticated = false
}

// IsAuthenticated reports whether a session is currently established.
func (s *State) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// GetID returns the authenticated identity's id.
func (s *State) GetID() (domain.Identifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return "", domain.ErrNotAuthenticated
	}
	return s.id, nil
}

// GetClient returns the keyring guarding the authenticated identity.
func (s *State) GetClient() (*keyring.Keyring, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return nil, domain.ErrNotAuthenticated
	}
	return s.client, nil
}

// GetSessionKey returns the authenticated session's derived key.
func (s *State) GetSessionKey() (domain.SessionKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return nil, domain.ErrNotAuthenticated
	}
	return s.sessionKey, nil
}

// GetPassword returns the authenticated session's cached password.
func (s *State) GetPassword() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return "", domain.ErrNotAuthenticated
	}
	return s.password, nil
}

// GetSecret returns the value stored under key, or ("", false, nil) if absent.
func (s *State) GetSecret(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return "", false, domain.ErrNotAuthenticated
	}
	v, ok := s.secrets[key]
	return v, ok, nil
}

// SetSecret sets key to value in the session's cache.
func (s *State) SetSecret(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return domain.ErrNotAuthenticated
	}
	s.secrets[key] = value
	return nil
}

// DeleteSecret removes key from the session's cache, if present.
func (s *State) DeleteSecret(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return domain.ErrNotAuthenticated
	}
	delete(s.secrets, key)
	return nil
}

// GetAllSecrets returns a copy of the session's cached secrets.
func (s *State) GetAllSecrets() (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated {
		return nil, domain.ErrNotAuthenticated
	}
	copied := make(map[string]string, len(s.secrets))
	for k, v := range s.secrets {
		copied[k] = v
	}
	return copied, nil
}
