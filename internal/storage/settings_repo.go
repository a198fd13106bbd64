package storage

import (
	"fmt"
	"strconv"

	"github.com/voicetimeapp/voicetime/internal/model"
)

// SettingsRepo provides operations for the Settings singleton.
type SettingsRepo struct {
	db *DB
}

// NewSettingsRepo creates a new settings repository.
func NewSettingsRepo(db *DB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get retrieves the settings, creating them with defaults if they don't
// exist.
func (r *SettingsRepo) Get() (*model.Settings, error) {
	settings := &model.Settings{}
	err := r.db.Get(model.KeySettings, settings)
	if err == nil {
		return settings, nil
	}

	if !IsErrKeyNotFound(err) {
		return nil, err
	}

	settings = model.DefaultSettings()
	if err := r.db.Set(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Update validates and stores the settings.
func (r *SettingsRepo) Update(settings *model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	settings.Key = model.KeySettings
	return r.db.Set(settings)
}

// SetValue sets a single settings field by key name. Used by the config
// command surface.
func (r *SettingsRepo) SetValue(key, value string) error {
	settings, err := r.Get()
	if err != nil {
		return err
	}

	switch key {
	case "notification_interval":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", value, err)
		}
		settings.NotificationInterval = n
	case "notification_enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", value, err)
		}
		settings.NotificationEnabled = b
	case "notification_start_hour":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid hour %q: %w", value, err)
		}
		settings.NotificationStart = n
	case "notification_end_hour":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid hour %q: %w", value, err)
		}
		settings.NotificationEnd = n
	case "api_key":
		settings.APIKey = value
	case "max_recording_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		settings.MaxRecordingSeconds = n
	default:
		return fmt.Errorf("unknown settings key: %s", key)
	}

	return r.Update(settings)
}

// GetValue returns a single settings field by key name.
func (r *SettingsRepo) GetValue(key string) (string, error) {
	settings, err := r.Get()
	if err != nil {
		return "", err
	}

	switch key {
	case "notification_interval":
		return strconv.Itoa(settings.NotificationInterval), nil
	case "notification_enabled":
		return strconv.FormatBool(settings.NotificationEnabled), nil
	case "notification_start_hour":
		return strconv.Itoa(settings.NotificationStart), nil
	case "notification_end_hour":
		return strconv.Itoa(settings.NotificationEnd), nil
	case "api_key":
		if settings.APIKey == "" {
			return "", nil
		}
		return "(set)", nil // never echo the secret back
	case "max_recording_seconds":
		return strconv.Itoa(settings.MaxRecordingSeconds), nil
	case "last_check_in_time":
		if settings.LastCheckInTime == nil {
			return "", nil
		}
		return strconv.FormatInt(*settings.LastCheckInTime, 10), nil
	default:
		return "", fmt.Errorf("unknown settings key: %s", key)
	}
}

// CheckIn persists the last check-in anchor. Callers must sequence this
// strictly after entry persistence so a crash cannot advance the clock
// without a matching record.
func (r *SettingsRepo) CheckIn(recordedAt int64) error {
	settings, err := r.Get()
	if err != nil {
		return err
	}
	settings.LastCheckInTime = &recordedAt
	return r.db.Set(settings)
}
