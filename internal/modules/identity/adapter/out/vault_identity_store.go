package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"dsaboost/internal/modules/identity/domain"
	identityout "dsaboost/internal/modules/identity/port/out"
	apperrors "dsaboost/internal/platform/errors"
)

// VaultSessionStore keeps the signed-in session in <state>/auth.json.
type VaultSessionStore struct {
	path string
}

func NewVaultSessionStore(stateDir string) identityout.SessionStore {
	return &VaultSessionStore{path: filepath.Join(stateDir, "auth.json")}
}

func (s *VaultSessionStore) Load(_ context.Context) (domain.Identity, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Identity{}, apperrors.ErrNotFound
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("read auth session: %w", err)
	}
	identity := domain.Identity{}
	if err := json.Unmarshal(raw, &identity); err != nil {
		return domain.Identity{}, fmt.Errorf("decode auth session: %w", err)
	}
	if identity.UserID == "" {
		return domain.Identity{}, apperrors.ErrNotFound
	}
	return identity, nil
}

func (s *VaultSessionStore) Save(_ context.Context, identity domain.Identity) error {
	payload, err := json.MarshalIndent(identity, "", "  ")
	if err != nil {
		return fmt.Errorf("encode auth session: %w", err)
	}
	return writeFile(s.path, payload, 0o600)
}

func (s *VaultSessionStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove auth session: %w", err)
	}
	return nil
}

// YAMLPreferenceStore keeps every user's preferences in <state>/preferences.yaml.
type YAMLPreferenceStore struct {
	path string
	mu   sync.Mutex
}

func NewYAMLPreferenceStore(stateDir string) identityout.PreferenceStore {
	return &YAMLPreferenceStore{path: filepath.Join(stateDir, "preferences.yaml")}
}

func (s *YAMLPreferenceStore) Get(_ context.Context, userID string) (domain.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return domain.Preferences{}, err
	}
	prefs, ok := all[userID]
	if !ok {
		return domain.Preferences{}, apperrors.ErrNotFound
	}
	return prefs, nil
}

func (s *YAMLPreferenceStore) Save(_ context.Context, userID string, prefs domain.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return err
	}
	all[userID] = prefs
	payload, err := yaml.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return writeFile(s.path, payload, 0o644)
}

func (s *YAMLPreferenceStore) read() (map[string]domain.Preferences, error) {
	all := map[string]domain.Preferences{}
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if err := yaml.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return all, nil
}

func writeFile(path string, payload []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	if err := os.WriteFile(path, payload, perm); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
