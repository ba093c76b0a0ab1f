package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"mindbridge.app/companion/internal/wellness"
)

type Account struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// IdentityProvider creates accounts. Implementations own credential storage.
// DeleteAccount undoes a CreateAccount whose registration could not be
// completed.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string) (Account, error)
	DeleteAccount(ctx context.Context, accountID int64) error
}

// PreferenceStore keeps one payload per account and replaces it on save.
type PreferenceStore interface {
	SavePreferences(ctx context.Context, accountID int64, payload []byte) error
}

type RegistrationForm struct {
	Email    string
	Password string
	Profile  wellness.Profile
}

// Validate only checks that the required fields are present.
func (f RegistrationForm) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"email", f.Email},
		{"password", f.Password},
		{"exerciseFrequency", f.Profile.ExerciseFrequency},
		{"sleepSchedule", f.Profile.SleepSchedule},
		{"stressLevel", f.Profile.StressLevel},
		{"meditationFrequency", f.Profile.MeditationFrequency},
	}
	for _, field := range required {
		if field.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, field.name)
		}
	}
	return nil
}

type Registration struct {
	Account Account          `json:"account"`
	Profile wellness.Profile `json:"profile"`
	Notice  wellness.Notice  `json:"notice"`
}

type RegistrationService struct {
	identity IdentityProvider
	prefs    PreferenceStore
	logger   zerolog.Logger
}

func NewRegistrationService(identity IdentityProvider, prefs PreferenceStore, logger zerolog.Logger) *RegistrationService {
	return &RegistrationService{
		identity: identity,
		prefs:    prefs,
		logger:   logger.With().Str("component", "registration").Logger(),
	}
}

// Register creates the account, then persists the submitted profile. Any
// failure after validation is reported as ErrRegistrationFailed without
// detail; the cause is only logged. An account whose profile could not be
// stored is removed again so the email stays free.
func (s *RegistrationService) Register(ctx context.Context, form RegistrationForm) (*Registration, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	account, err := s.identity.CreateAccount(ctx, form.Email, form.Password)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Account creation failed")
		return nil, ErrRegistrationFailed
	}

	payload, err := json.Marshal(form.Profile)
	if err == nil {
		err = s.prefs.SavePreferences(ctx, account.ID, payload)
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("account_id", account.ID).Msg("Failed to store preferences")
		s.rollback(ctx, account.ID)
		return nil, ErrRegistrationFailed
	}

	s.logger.Info().Int64("account_id", account.ID).Msg("Account registered")
	return &Registration{
		Account: account,
		Profile: form.Profile,
		Notice:  wellness.Welcome(form.Profile),
	}, nil
}

func (s *RegistrationService) rollback(ctx context.Context, accountID int64) {
	if err := s.identity.DeleteAccount(context.WithoutCancel(ctx), accountID); err != nil {
		s.logger.Error().Err(err).Int64("account_id", accountID).Msg("Failed to remove incomplete account")
	}
}
