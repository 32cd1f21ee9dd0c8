package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/ivankudzin/matefinder/internal/domain/enums"
	"github.com/ivankudzin/matefinder/internal/domain/rules"
	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
)

type fakeStore struct {
	profiles map[int64]pgrepo.ProfileRecord
	updates  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: make(map[int64]pgrepo.ProfileRecord)}
}

func (f *fakeStore) Get(_ context.Context, userID int64) (pgrepo.ProfileRecord, error) {
	rec, ok := f.profiles[userID]
	if !ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
	}
	return rec, nil
}

func (f *fakeStore) Create(_ context.Context, profile pgrepo.NewProfile) error {
	if _, ok := f.profiles[profile.UserID]; ok {
		return pgrepo.ErrProfileExists
	}
	f.profiles[profile.UserID] = pgrepo.ProfileRecord{
		UserID:  profile.UserID,
		Name:    profile.Name,
		Age:     profile.Age,
		Gender:  profile.Gender,
		Bio:     profile.Bio,
		PhotoID: profile.PhotoID,
		IsAdmin: profile.IsAdmin,
	}
	return nil
}

func (f *fakeStore) UpdateField(_ context.Context, userID int64, field enums.ProfileField, value any) (bool, error) {
	rec, ok := f.profiles[userID]
	if !ok {
		return false, nil
	}

	f.updates = append(f.updates, string(field))
	switch field {
	case enums.ProfileFieldName:
		rec.Name = value.(string)
	case enums.ProfileFieldAge:
		rec.Age = value.(int)
	case enums.ProfileFieldGender:
		rec.Gender = enums.Gender(value.(string))
	case enums.ProfileFieldBio:
		rec.Bio = value.(string)
	case enums.ProfileFieldPhoto:
		if value == nil {
			rec.PhotoID = nil
		} else {
			rec.PhotoID = value.(*string)
		}
	default:
		return false, errors.New("unexpected field")
	}
	f.profiles[userID] = rec
	return true, nil
}

func TestCreateDerivesAdminFlag(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 999)

	if err := svc.Create(context.Background(), 999, "Root", 30, enums.GenderOther, "", nil); err != nil {
		t.Fatalf("create admin profile: %v", err)
	}
	if err := svc.Create(context.Background(), 101, "Ann", 25, enums.GenderFemale, "hi", nil); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	if !store.profiles[999].IsAdmin {
		t.Fatalf("admin identity must carry the admin flag")
	}
	if store.profiles[101].IsAdmin {
		t.Fatalf("regular identity must not carry the admin flag")
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, 999)

	if err := svc.Create(context.Background(), 101, "Ann", 25, enums.GenderFemale, "hi", nil); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	err := svc.Create(context.Background(), 101, "Ann", 25, enums.GenderFemale, "hi", nil)
	if !errors.Is(err, pgrepo.ErrProfileExists) {
		t.Fatalf("expected ErrProfileExists, got %v", err)
	}
}

func TestCreateRejectsInvalidGender(t *testing.T) {
	svc := NewService(newFakeStore(), 999)

	err := svc.Create(context.Background(), 101, "Ann", 25, enums.Gender("Robot"), "", nil)
	if !errors.Is(err, ErrInvalidGender) {
		t.Fatalf("expected ErrInvalidGender, got %v", err)
	}
}

func TestSetNameValidatesBeforeWriting(t *testing.T) {
	store := newFakeStore()
	store.profiles[101] = pgrepo.ProfileRecord{UserID: 101, Name: "Ann"}
	svc := NewService(store, 999)

	if _, err := svc.SetName(context.Background(), 101, "A"); !errors.Is(err, rules.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if len(store.updates) != 0 {
		t.Fatalf("invalid input must not reach the store, got updates %v", store.updates)
	}

	name, err := svc.SetName(context.Background(), 101, "  Anna  ")
	if err != nil {
		t.Fatalf("set name: %v", err)
	}
	if name != "Anna" {
		t.Fatalf("unexpected normalized name: %q", name)
	}
	if store.profiles[101].Name != "Anna" {
		t.Fatalf("name not persisted: %q", store.profiles[101].Name)
	}
}

func TestSetAgeParsesAndPersists(t *testing.T) {
	store := newFakeStore()
	store.profiles[101] = pgrepo.ProfileRecord{UserID: 101}
	svc := NewService(store, 999)

	if _, err := svc.SetAge(context.Background(), 101, "17"); !errors.Is(err, rules.ErrInvalidAge) {
		t.Fatalf("expected ErrInvalidAge, got %v", err)
	}

	age, err := svc.SetAge(context.Background(), 101, "25")
	if err != nil {
		t.Fatalf("set age: %v", err)
	}
	if age != 25 || store.profiles[101].Age != 25 {
		t.Fatalf("age not persisted: got %d, stored %d", age, store.profiles[101].Age)
	}
}

func TestSetPhotoClearsOnNil(t *testing.T) {
	store := newFakeStore()
	photo := "file-abc"
	store.profiles[101] = pgrepo.ProfileRecord{UserID: 101, PhotoID: &photo}
	svc := NewService(store, 999)

	if err := svc.SetPhoto(context.Background(), 101, nil); err != nil {
		t.Fatalf("clear photo: %v", err)
	}
	if store.profiles[101].PhotoID != nil {
		t.Fatalf("photo must be cleared")
	}
}

func TestUpdateMissingProfileReturnsNotFound(t *testing.T) {
	svc := NewService(newFakeStore(), 999)

	if _, err := svc.SetName(context.Background(), 404, "Anna"); !errors.Is(err, pgrepo.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
