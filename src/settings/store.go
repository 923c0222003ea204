package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pluto-lander/src/logger"
	"pluto-lander/src/models"
)

// -----------------------------------------------------------------------------
// Store persists user settings and the admin user as JSON files under the
// config directory. Read-mostly: values are cached in memory and reloaded
// on update.
// -----------------------------------------------------------------------------

const (
	settingsFileName = "settings.json"
	userFileName     = "user.json"

	DefaultUsername = "admin"
	defaultPassword = "pluto123"
)

type Store struct {
	Dir    string
	Logger *logger.Logger

	mu       sync.RWMutex
	settings models.MSettings
	user     models.MUser

	hashPassword func(string) string
}

// -----------------------------------------------------------------------------

// NewStore loads (or creates) the settings file under dir. hashPassword is
// injected so the store stays free of the auth package.
func NewStore(dir string, log *logger.Logger, hashPassword func(string) string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir '%s': %w", dir, err)
	}

	s := &Store{
		Dir:          dir,
		Logger:       log,
		hashPassword: hashPassword,
	}

	if err := s.loadSettings(); err != nil {
		return nil, err
	}
	return s, nil
}

// -----------------------------------------------------------------------------

// EnsureDefaultUser creates the default admin user if no user file exists.
func (s *Store) EnsureDefaultUser() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Dir, userFileName)
	if data, err := os.ReadFile(path); err == nil {
		return json.Unmarshal(data, &s.user)
	}

	s.user = models.MUser{
		Username:     DefaultUsername,
		PasswordHash: s.hashPassword(defaultPassword),
	}
	if err := s.writeUserLocked(); err != nil {
		return err
	}
	s.Logger.Warning("Default admin user created: %s / %s (CHANGE THIS!)", DefaultUsername, defaultPassword)
	return nil
}

// -----------------------------------------------------------------------------

// User returns the stored admin user.
func (s *Store) User() models.MUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// -----------------------------------------------------------------------------

// UpdatePassword replaces the admin password hash.
func (s *Store) UpdatePassword(newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user.PasswordHash = s.hashPassword(newPassword)
	return s.writeUserLocked()
}

// -----------------------------------------------------------------------------

// Current returns a copy of the stored settings.
func (s *Store) Current() models.MSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// -----------------------------------------------------------------------------

// Update applies a partial update and persists the result.
func (s *Store) Update(update models.MSettingsUpdate) (models.MSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if update.AlpacaAPIKey != nil {
		s.settings.AlpacaAPIKey = *update.AlpacaAPIKey
	}
	if update.AlpacaAPISecret != nil {
		s.settings.AlpacaAPISecret = *update.AlpacaAPISecret
	}
	if update.AlpacaPaper != nil {
		s.settings.AlpacaPaper = *update.AlpacaPaper
	}
	if update.NotifyEmail != nil {
		s.settings.NotifyEmail = *update.NotifyEmail
	}
	if update.NotifySMSNumber != nil {
		s.settings.NotifySMSNumber = *update.NotifySMSNumber
	}
	if update.DisplayTheme != nil {
		s.settings.DisplayTheme = *update.DisplayTheme
	}
	if update.DisplayLayout != nil {
		s.settings.DisplayLayout = *update.DisplayLayout
	}
	if update.WidgetBTCPrice != nil {
		s.settings.WidgetBTCPrice = *update.WidgetBTCPrice
	}
	if update.WidgetPortfolio != nil {
		s.settings.WidgetPortfolio = *update.WidgetPortfolio
	}
	if update.WidgetPositions != nil {
		s.settings.WidgetPositions = *update.WidgetPositions
	}
	if update.WidgetPnL != nil {
		s.settings.WidgetPnL = *update.WidgetPnL
	}
	if update.WidgetClock != nil {
		s.settings.WidgetClock = *update.WidgetClock
	}
	if update.WidgetAlerts != nil {
		s.settings.WidgetAlerts = *update.WidgetAlerts
	}

	if err := s.writeSettingsLocked(); err != nil {
		return models.MSettings{}, err
	}
	return s.settings, nil
}

// -----------------------------------------------------------------------------
// Internals
// -----------------------------------------------------------------------------

func (s *Store) loadSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Dir, settingsFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read settings file: %w", err)
		}
		s.settings = models.DefaultSettings()
		return s.writeSettingsLocked()
	}

	if err := json.Unmarshal(data, &s.settings); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *Store) writeSettingsLocked() error {
	s.settings.AlpacaAPIKeyMasked = MaskKey(s.settings.AlpacaAPIKey)
	s.settings.AlpacaAPISecretMasked = MaskSecret(s.settings.AlpacaAPISecret)

	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.Dir, settingsFileName), data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	s.Logger.Info("Settings saved")
	return nil
}

// -----------------------------------------------------------------------------

func (s *Store) writeUserLocked() error {
	data, err := json.Marshal(s.user)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, userFileName), data, 0600)
}

// -----------------------------------------------------------------------------
// Credential masking (first 4 of the key, last 4 of the secret)
// -----------------------------------------------------------------------------

func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) > 4 {
		return key[:4] + strings.Repeat("*", 8)
	}
	return "****"
}

func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) > 4 {
		return "****" + secret[len(secret)-4:]
	}
	return "****"
}
