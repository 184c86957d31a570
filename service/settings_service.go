package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"harvester/config"
	"harvester/models"
)

// Persisted setting keys. Values are stored as strings; role lists are
// comma-separated IDs.
const (
	settingKeyBonusActive     = "bonus_active"
	settingKeyDefaultUserCut  = "default_user_cut"
	settingKeyDefaultGuildCut = "default_guild_cut"
	settingKeyRegion          = "region"
	settingKeyAdminRoles      = "admin_roles"
	settingKeyOfficerRoles    = "officer_roles"
	settingKeyUserRoles       = "user_roles"
)

const settingsPersistTimeout = 5 * time.Second

type settingsService struct {
	repo SettingsRepository
	cfg  *config.Config

	mu              sync.RWMutex
	bonusActive     bool
	defaultUserCut  *int64
	defaultGuildCut int64
	region          string
	adminRoles      []int64
	officerRoles    []int64
	userRoles       []int64
}

// NewSettingsService creates the settings cache seeded with the configured
// defaults. Call Load to overlay persisted values.
func NewSettingsService(repo SettingsRepository, cfg *config.Config) SettingsService {
	return &settingsService{
		repo:            repo,
		cfg:             cfg,
		defaultGuildCut: cfg.DefaultGuildCutPercent,
	}
}

// Load overlays persisted settings onto the in-memory defaults. A failed
// load is logged and leaves the defaults in place so startup can proceed.
func (s *settingsService) Load(ctx context.Context) error {
	rows, err := s.repo.GetAll(ctx)
	if err != nil {
		log.WithError(err).Warn("Failed to load persisted settings, keeping defaults")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		switch row.Key {
		case settingKeyBonusActive:
			s.bonusActive = row.Value == "true"
		case settingKeyDefaultUserCut:
			if v, err := strconv.ParseInt(row.Value, 10, 64); err == nil && v >= 0 && v <= 100 {
				cut := v
				s.defaultUserCut = &cut
			}
		case settingKeyDefaultGuildCut:
			if v, err := strconv.ParseInt(row.Value, 10, 64); err == nil && v >= 0 && v <= 100 {
				s.defaultGuildCut = v
			}
		case settingKeyRegion:
			s.region = row.Value
		case settingKeyAdminRoles:
			s.adminRoles = parseRoleIDs(row.Value)
		case settingKeyOfficerRoles:
			s.officerRoles = parseRoleIDs(row.Value)
		case settingKeyUserRoles:
			s.userRoles = parseRoleIDs(row.Value)
		default:
			log.WithField("key", row.Key).Debug("Ignoring unknown persisted setting")
		}
	}

	return nil
}

// ActiveRate returns the conversion rate for the current regime
func (s *settingsService) ActiveRate() models.Rate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bonusActive {
		return s.cfg.BonusSandPerMelange
	}
	return s.cfg.SandPerMelange
}

func (s *settingsService) BonusActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bonusActive
}

func (s *settingsService) DefaultUserCutPercent() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.defaultUserCut == nil {
		return 0, false
	}
	return *s.defaultUserCut, true
}

func (s *settingsService) DefaultGuildCutPercent() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaultGuildCut
}

func (s *settingsService) Region() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.region
}

func (s *settingsService) AdminRoleIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.adminRoles...)
}

func (s *settingsService) OfficerRoleIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.officerRoles...)
}

func (s *settingsService) UserRoleIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int64(nil), s.userRoles...)
}

// SetBonusActive flips the conversion regime. The change is visible to
// readers immediately; persistence happens in the background.
func (s *settingsService) SetBonusActive(ctx context.Context, active bool) error {
	s.mu.Lock()
	s.bonusActive = active
	s.mu.Unlock()

	s.persist(settingKeyBonusActive, strconv.FormatBool(active), "whether the bonus conversion rate is active")
	return nil
}

func (s *settingsService) SetDefaultUserCutPercent(ctx context.Context, percent *int64) error {
	if percent != nil && (*percent < 0 || *percent > 100) {
		return &ValidationError{Field: "default_user_cut", Reason: "must be between 0 and 100"}
	}

	s.mu.Lock()
	if percent == nil {
		s.defaultUserCut = nil
	} else {
		cut := *percent
		s.defaultUserCut = &cut
	}
	s.mu.Unlock()

	value := ""
	if percent != nil {
		value = strconv.FormatInt(*percent, 10)
	}
	s.persist(settingKeyDefaultUserCut, value, "default per-user cut percentage for percentage splits")
	return nil
}

func (s *settingsService) SetDefaultGuildCutPercent(ctx context.Context, percent int64) error {
	if percent < 0 || percent > 100 {
		return &ValidationError{Field: "default_guild_cut", Reason: "must be between 0 and 100"}
	}

	s.mu.Lock()
	s.defaultGuildCut = percent
	s.mu.Unlock()

	s.persist(settingKeyDefaultGuildCut, strconv.FormatInt(percent, 10), "default guild cut percentage for harvester splits")
	return nil
}

func (s *settingsService) SetRegion(ctx context.Context, region string) error {
	region = strings.TrimSpace(region)
	if region == "" {
		return &ValidationError{Field: "region", Reason: "must not be empty"}
	}

	s.mu.Lock()
	s.region = region
	s.mu.Unlock()

	s.persist(settingKeyRegion, region, "deployment region label")
	return nil
}

func (s *settingsService) SetRoleIDs(ctx context.Context, level RoleLevel, roleIDs []int64) error {
	var key, description string
	switch level {
	case RoleLevelAdmin:
		key, description = settingKeyAdminRoles, "role IDs granted admin access"
	case RoleLevelOfficer:
		key, description = settingKeyOfficerRoles, "role IDs granted officer access"
	case RoleLevelUser:
		key, description = settingKeyUserRoles, "role IDs granted user access"
	default:
		return &ValidationError{Field: "level", Reason: fmt.Sprintf("unknown role level %q", level)}
	}

	ids := append([]int64(nil), roleIDs...)

	s.mu.Lock()
	switch level {
	case RoleLevelAdmin:
		s.adminRoles = ids
	case RoleLevelOfficer:
		s.officerRoles = ids
	case RoleLevelUser:
		s.userRoles = ids
	}
	s.mu.Unlock()

	s.persist(key, formatRoleIDs(ids), description)
	return nil
}

// persist writes a setting row in the background. Persistence failures are
// logged, not surfaced; the in-memory value stays authoritative for this
// process and the write is retried the next time the setting changes.
func (s *settingsService) persist(key, value, description string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), settingsPersistTimeout)
		defer cancel()

		if err := s.repo.Upsert(ctx, key, value, description); err != nil {
			log.WithError(err).WithField("key", key).Error("Failed to persist setting")
		}
	}()
}

func parseRoleIDs(value string) []int64 {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			log.WithField("value", part).Warn("Skipping malformed role ID in persisted settings")
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func formatRoleIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
