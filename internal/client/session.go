package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/99designs/keyring"

	"propertystore/internal/authz"
)

// Keys the session is persisted under.
const (
	KeyAuthToken  = "authToken"
	KeyUsername   = "username"
	KeyUserRole   = "userRole"
	KeyClientData = "clientData"
)

var sessionKeys = []string{KeyAuthToken, KeyUsername, KeyUserRole, KeyClientData}

// SessionStore persists session values. Get of a missing key returns "" and
// no error.
type SessionStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// ClientData is what a logged in portal client keeps about itself.
type ClientData struct {
	Name string `json:"name"`
}

// State is a snapshot of the session.
type State struct {
	Token    string
	Username string
	Role     string
	Client   *ClientData
}

func (s State) Authenticated() bool { return s.Token != "" }

// Session owns the login state of one user. It is loaded from the store at
// start, replaced on login and cleared on logout or on any 401 answer.
type Session struct {
	store SessionStore
	api   *HTTPClient

	mu    sync.RWMutex
	state State
}

func NewSession(store SessionStore, api *HTTPClient) *Session {
	s := &Session{store: store, api: api}
	api.OnUnauthorized(s.forceLogout)
	return s
}

// Init loads the persisted session. Broken clientData is dropped.
func (s *Session) Init() error {
	var st State
	var err error
	if st.Token, err = s.store.Get(KeyAuthToken); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if st.Username, err = s.store.Get(KeyUsername); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if st.Role, err = s.store.Get(KeyUserRole); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	raw, err := s.store.Get(KeyClientData)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if raw != "" {
		var cd ClientData
		if json.Unmarshal([]byte(raw), &cd) == nil {
			st.Client = &cd
		}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.api.SetToken(st.Token)
	return nil
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Login signs a realtor in and persists the token.
func (s *Session) Login(ctx context.Context, username, password string) (State, error) {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		return State{}, err
	}
	st := State{Token: resp.Token, Username: resp.Username, Role: resp.Role}
	if err := s.replace(st); err != nil {
		return State{}, err
	}
	return st, nil
}

// ClientLogin signs a portal client in.
func (s *Session) ClientLogin(ctx context.Context, login, password string) (State, error) {
	resp, err := s.api.ClientLogin(ctx, login, password)
	if err != nil {
		return State{}, err
	}
	st := State{
		Token:    resp.Token,
		Username: login,
		Role:     authz.RoleClient,
		Client:   &ClientData{Name: resp.ClientName},
	}
	if err := s.replace(st); err != nil {
		return State{}, err
	}
	return st, nil
}

// Update changes the session in place and persists the result.
func (s *Session) Update(fn func(*State)) error {
	st := s.State()
	fn(&st)
	return s.replace(st)
}

// Logout forgets the token locally and in the store.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	s.api.SetToken("")

	var errs []error
	for _, k := range sessionKeys {
		if err := s.store.Delete(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Session) forceLogout() {
	_ = s.Logout()
}

func (s *Session) replace(st State) error {
	values := map[string]string{
		KeyAuthToken: st.Token,
		KeyUsername:  st.Username,
		KeyUserRole:  st.Role,
	}
	if st.Client != nil {
		b, err := json.Marshal(st.Client)
		if err != nil {
			return fmt.Errorf("encode client data: %w", err)
		}
		values[KeyClientData] = string(b)
	}
	for _, k := range sessionKeys {
		v, ok := values[k]
		var err error
		if ok && v != "" {
			err = s.store.Set(k, v)
		} else {
			err = s.store.Delete(k)
		}
		if err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	s.api.SetToken(st.Token)
	return nil
}

// KeyringStore keeps the session in the OS keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// OpenKeyringStore opens the keyring for service. fileDir is used by the
// encrypted file backend when no OS keyring is available.
func OpenKeyringStore(service, fileDir string) (*KeyringStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: service,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(service + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &KeyringStore{ring: ring}, nil
}

// NewKeyringStoreFrom wraps an already opened keyring.
func NewKeyringStoreFrom(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func (k *KeyringStore) Get(key string) (string, error) {
	item, err := k.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting %q: %w", key, err)
	}
	return string(item.Data), nil
}

func (k *KeyringStore) Set(key, value string) error {
	if err := k.ring.Set(keyring.Item{Key: key, Data: []byte(value)}); err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

func (k *KeyringStore) Delete(key string) error {
	err := k.ring.Remove(key)
	if err == nil || errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return fmt.Errorf("deleting %q: %w", key, err)
}
