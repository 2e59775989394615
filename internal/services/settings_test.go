package services

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/pphilfre/stake-sub000/internal/models"
)

func newTestAuth(t *testing.T) (*AuthService, string) {
	t.Helper()
	auth := NewAuthService("4321", "test-secret")
	token, err := auth.AuthenticatePIN("4321")
	if err != nil {
		t.Fatalf("failed to mint capability: %v", err)
	}
	return auth, token
}

func floatPtr(v float64) *float64 { return &v }

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func boolPtr(v bool) *bool { return &v }

func TestSettingsDefaults(t *testing.T) {
	auth, _ := newTestAuth(t)
	store := NewSettingsStore(auth)

	for _, gt := range models.AllGameTypes() {
		cfg, err := store.Get(gt)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", gt, err)
		}
		if !cfg.Enabled {
			t.Errorf("%s should be enabled by default", gt)
		}
		if cfg.WinRate != 45 {
			t.Errorf("%s default win rate = %v, want 45", gt, cfg.WinRate)
		}
	}

	if _, err := store.Get("poker"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown game should fail validation, got %v", err)
	}
}

func TestSettingsUpdateValidation(t *testing.T) {
	auth, token := newTestAuth(t)

	tests := []struct {
		name  string
		patch models.GameSettingsPatch
	}{
		{"win rate too high", models.GameSettingsPatch{WinRate: floatPtr(200)}},
		{"win rate negative", models.GameSettingsPatch{WinRate: floatPtr(-1)}},
		{"house edge too high", models.GameSettingsPatch{HouseEdge: floatPtr(51)}},
		{"max below min", models.GameSettingsPatch{MinBet: decPtr(100), MaxBet: decPtr(50)}},
		{"zero min bet", models.GameSettingsPatch{MinBet: decPtr(0)}},
		{"zero max payout", models.GameSettingsPatch{MaxPayout: decPtr(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewSettingsStore(auth)
			before, _ := store.Get(models.GameTypeDice)

			_, err := store.Update(models.GameTypeDice, tt.patch, token)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Update() error = %v, want ErrValidation", err)
			}

			after, _ := store.Get(models.GameTypeDice)
			if after != before {
				t.Error("failed update mutated settings")
			}
		})
	}
}

func TestSettingsUpdateMerges(t *testing.T) {
	auth, token := newTestAuth(t)
	store := NewSettingsStore(auth)

	updated, err := store.Update(models.GameTypeRoulette, models.GameSettingsPatch{
		WinRate: floatPtr(30),
		Enabled: boolPtr(false),
	}, token)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.WinRate != 30 || updated.Enabled {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.HouseEdge != 3 {
		t.Errorf("untouched field changed: house edge %v", updated.HouseEdge)
	}

	// Mutations are immediately visible.
	current, _ := store.Get(models.GameTypeRoulette)
	if current.WinRate != 30 {
		t.Errorf("Get after Update = %v, want 30", current.WinRate)
	}
}

func TestSettingsUnauthorized(t *testing.T) {
	auth, _ := newTestAuth(t)
	store := NewSettingsStore(auth)

	_, err := store.Update(models.GameTypeDice, models.GameSettingsPatch{WinRate: floatPtr(10)}, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Update without capability = %v, want ErrUnauthorized", err)
	}

	_, err = store.Update(models.GameTypeDice, models.GameSettingsPatch{WinRate: floatPtr(10)}, "garbage-token")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Update with bad capability = %v, want ErrUnauthorized", err)
	}

	_, err = store.ResetToDefault(models.GameTypeDice, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Reset without capability = %v, want ErrUnauthorized", err)
	}
}

func TestSettingsReset(t *testing.T) {
	auth, token := newTestAuth(t)
	store := NewSettingsStore(auth)

	if _, err := store.Update(models.GameTypeMines, models.GameSettingsPatch{WinRate: floatPtr(99)}, token); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reset, err := store.ResetToDefault(models.GameTypeMines, token)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	def := models.DefaultSettings(models.GameTypeMines)
	if reset.WinRate != def.WinRate {
		t.Errorf("reset win rate = %v, want %v", reset.WinRate, def.WinRate)
	}
}
