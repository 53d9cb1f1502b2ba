package config

import (
	"fmt"
	"sort"
	"sync"
)

// Section is one named group of persisted settings.
type Section interface {
	ID() string
	Title() string
	Description() string
	Data() map[string]any
	SetData(data map[string]any) error
	Validate() error
	Reset()
}

// Manager binds sections to a Store.
type Manager struct {
	store    Store
	sections map[string]Section
	mu       sync.RWMutex
}

// NewManager creates a manager over store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// RegisterSection adds a section. IDs must be unique.
func (m *Manager) RegisterSection(section Section) error {
	if section == nil {
		return fmt.Errorf("section cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := section.ID()
	if _, exists := m.sections[id]; exists {
		return fmt.Errorf("section %q already registered", id)
	}
	m.sections[id] = section
	return nil
}

// Section returns the registered section with id.
func (m *Manager) Section(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sections[id]
	return s, ok
}

// LoadAll reads every registered section from the store. Sections with no
// stored data keep their defaults; sections with invalid stored data are
// reset and reported.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var firstErr error
	for _, id := range m.ids() {
		section := m.sections[id]
		data, err := m.store.GetSection(id)
		if err != nil {
			return fmt.Errorf("failed to read section %s: %w", id, err)
		}
		if len(data) == 0 {
			continue
		}
		err = section.SetData(data)
		if err == nil {
			err = section.Validate()
		}
		if err != nil {
			section.Reset()
			if firstErr == nil {
				firstErr = fmt.Errorf("section %s: %w", id, err)
			}
		}
	}
	return firstErr
}

// SaveAll validates and writes every registered section.
func (m *Manager) SaveAll() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.ids() {
		section := m.sections[id]
		if err := section.Validate(); err != nil {
			return fmt.Errorf("section %s: %w", id, err)
		}
		if err := m.store.SetSection(id, section.Data()); err != nil {
			return fmt.Errorf("failed to store section %s: %w", id, err)
		}
	}
	return m.store.Save()
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// ids must be called with mu held.
func (m *Manager) ids() []string {
	ids := make([]string, 0, len(m.sections))
	for id := range m.sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
