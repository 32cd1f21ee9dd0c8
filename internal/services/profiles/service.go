package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/ivankudzin/matefinder/internal/domain/enums"
	"github.com/ivankudzin/matefinder/internal/domain/rules"
	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
)

var ErrInvalidGender = errors.New("unsupported gender value")

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error)
	Create(ctx context.Context, profile pgrepo.NewProfile) error
	UpdateField(ctx context.Context, userID int64, field enums.ProfileField, value any) (bool, error)
}

type Service struct {
	store       ProfileStore
	adminUserID int64
}

func NewService(store ProfileStore, adminUserID int64) *Service {
	return &Service{
		store:       store,
		adminUserID: adminUserID,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error) {
	if s.store == nil {
		return pgrepo.ProfileRecord{}, fmt.Errorf("profile store is not configured")
	}
	return s.store.Get(ctx, userID)
}

func (s *Service) Exists(ctx context.Context, userID int64) (bool, error) {
	_, err := s.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Create persists a fully collected profile. Field values are assumed to have
// passed validation step by step during the dialogue; gender is re-checked
// because it arrives through a callback payload.
func (s *Service) Create(ctx context.Context, userID int64, name string, age int, gender enums.Gender, bio string, photoID *string) error {
	if s.store == nil {
		return fmt.Errorf("profile store is not configured")
	}
	if !gender.Valid() {
		return ErrInvalidGender
	}

	return s.store.Create(ctx, pgrepo.NewProfile{
		UserID:  userID,
		Name:    name,
		Age:     age,
		Gender:  gender,
		Bio:     bio,
		PhotoID: photoID,
		IsAdmin: userID == s.adminUserID,
	})
}

func (s *Service) SetName(ctx context.Context, userID int64, input string) (string, error) {
	name, err := rules.ValidateName(input)
	if err != nil {
		return "", err
	}
	if err := s.update(ctx, userID, enums.ProfileFieldName, name); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Service) SetAge(ctx context.Context, userID int64, input string) (int, error) {
	age, err := rules.ParseAge(input)
	if err != nil {
		return 0, err
	}
	if err := s.update(ctx, userID, enums.ProfileFieldAge, age); err != nil {
		return 0, err
	}
	return age, nil
}

func (s *Service) SetGender(ctx context.Context, userID int64, gender enums.Gender) error {
	if !gender.Valid() {
		return ErrInvalidGender
	}
	return s.update(ctx, userID, enums.ProfileFieldGender, string(gender))
}

func (s *Service) SetBio(ctx context.Context, userID int64, input string) (string, error) {
	bio, err := rules.ValidateBio(input)
	if err != nil {
		return "", err
	}
	if err := s.update(ctx, userID, enums.ProfileFieldBio, bio); err != nil {
		return "", err
	}
	return bio, nil
}

// SetPhoto stores a new photo reference, or clears it when photoID is nil.
func (s *Service) SetPhoto(ctx context.Context, userID int64, photoID *string) error {
	return s.update(ctx, userID, enums.ProfileFieldPhoto, photoID)
}

func (s *Service) update(ctx context.Context, userID int64, field enums.ProfileField, value any) error {
	if s.store == nil {
		return fmt.Errorf("profile store is not configured")
	}

	changed, err := s.store.UpdateField(ctx, userID, field, value)
	if err != nil {
		return err
	}
	if !changed {
		return pgrepo.ErrProfileNotFound
	}
	return nil
}
