package memory

import (
	"sync"

	"github.com/omarcs/lia-woocommerce/internal/core/domain"
	"github.com/omarcs/lia-woocommerce/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.SettingsLoader = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.SettingsLoader for testing.
type ConfigStore struct {
	mu       sync.RWMutex
	settings domain.Settings
}

// NewConfigStore creates a config store holding the given settings.
func NewConfigStore(settings domain.Settings) *ConfigStore {
	return &ConfigStore{settings: settings}
}

// Load returns the held settings.
func (s *ConfigStore) Load() (domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// Set replaces the held settings.
func (s *ConfigStore) Set(settings domain.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}
