package services

import (
	"fmt"
	"sync"

	"github.com/pphilfre/stake-sub000/internal/models"
)

// SettingsStore holds per-game configuration. Reads are open; mutations
// require an admin capability minted by the AuthService. Settings live in
// memory for the process lifetime, seeded from the defaults table.
type SettingsStore struct {
	mu       sync.RWMutex
	settings map[models.GameType]models.GameSettings
	auth     *AuthService
}

func NewSettingsStore(auth *AuthService) *SettingsStore {
	s := &SettingsStore{
		settings: make(map[models.GameType]models.GameSettings),
		auth:     auth,
	}
	for _, gt := range models.AllGameTypes() {
		s.settings[gt] = models.DefaultSettings(gt)
	}
	return s
}

func (s *SettingsStore) Get(gameID models.GameType) (models.GameSettings, error) {
	if !gameID.Valid() {
		return models.GameSettings{}, fmt.Errorf("%w: unknown game type %q", ErrValidation, gameID)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	cfg, ok := s.settings[gameID]
	if !ok {
		return models.DefaultSettings(gameID), nil
	}
	return cfg, nil
}

// Update merges a partial change into the current record. The merged
// record is validated as a whole; on failure the prior record is kept.
func (s *SettingsStore) Update(gameID models.GameType, patch models.GameSettingsPatch, capability string) (models.GameSettings, error) {
	if err := s.auth.Verify(capability); err != nil {
		return models.GameSettings{}, err
	}
	if !gameID.Valid() {
		return models.GameSettings{}, fmt.Errorf("%w: unknown game type %q", ErrValidation, gameID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.settings[gameID]
	if patch.WinRate != nil {
		merged.WinRate = *patch.WinRate
	}
	if patch.HouseEdge != nil {
		merged.HouseEdge = *patch.HouseEdge
	}
	if patch.MinBet != nil {
		merged.MinBet = *patch.MinBet
	}
	if patch.MaxBet != nil {
		merged.MaxBet = *patch.MaxBet
	}
	if patch.MaxPayout != nil {
		merged.MaxPayout = *patch.MaxPayout
	}
	if patch.Enabled != nil {
		merged.Enabled = *patch.Enabled
	}

	if err := merged.Validate(); err != nil {
		return models.GameSettings{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	s.settings[gameID] = merged
	return merged, nil
}

func (s *SettingsStore) ResetToDefault(gameID models.GameType, capability string) (models.GameSettings, error) {
	if err := s.auth.Verify(capability); err != nil {
		return models.GameSettings{}, err
	}
	if !gameID.Valid() {
		return models.GameSettings{}, fmt.Errorf("%w: unknown game type %q", ErrValidation, gameID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	def := models.DefaultSettings(gameID)
	s.settings[gameID] = def
	return def, nil
}
