package dialog

import (
	"sync"
	"testing"

	"github.com/ivankudzin/matefinder/internal/domain/enums"
)

func TestStoreLazyState(t *testing.T) {
	store := NewStore()

	if got := store.Step(101); got != StepNone {
		t.Fatalf("fresh user must have no step, got %q", got)
	}
	if got := store.Draft(101); got != (Draft{}) {
		t.Fatalf("fresh user must have an empty draft, got %+v", got)
	}
	if got := store.LastCandidate(101); got != 0 {
		t.Fatalf("fresh user must have no last candidate, got %d", got)
	}
}

func TestStoreAccumulatesDraftAcrossSteps(t *testing.T) {
	store := NewStore()

	store.SetStep(101, StepName)
	store.UpdateDraft(101, func(d *Draft) { d.Name = "Ann" })
	store.SetStep(101, StepAge)
	store.UpdateDraft(101, func(d *Draft) { d.Age = 25 })
	store.SetStep(101, StepGender)
	store.UpdateDraft(101, func(d *Draft) { d.Gender = enums.GenderFemale })

	if got := store.Step(101); got != StepGender {
		t.Fatalf("unexpected step: %q", got)
	}

	draft := store.Draft(101)
	if draft.Name != "Ann" || draft.Age != 25 || draft.Gender != enums.GenderFemale {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestStoreClearDropsEverything(t *testing.T) {
	store := NewStore()

	store.SetStep(101, StepBio)
	store.UpdateDraft(101, func(d *Draft) { d.Bio = "hi" })
	store.SetLastCandidate(101, 202)

	store.Clear(101)

	if got := store.Step(101); got != StepNone {
		t.Fatalf("step must be cleared, got %q", got)
	}
	if got := store.Draft(101); got != (Draft{}) {
		t.Fatalf("draft must be cleared, got %+v", got)
	}
	if got := store.LastCandidate(101); got != 0 {
		t.Fatalf("last candidate must be cleared, got %d", got)
	}
}

func TestStoreIsolatesUsers(t *testing.T) {
	store := NewStore()

	store.SetStep(101, StepName)
	store.SetStep(202, StepPhoto)
	store.Clear(101)

	if got := store.Step(202); got != StepPhoto {
		t.Fatalf("clearing one user must not affect another, got %q", got)
	}
}

func TestStoreConcurrentDistinctUsers(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := int64(1); i <= 100; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			store.SetStep(userID, StepName)
			store.UpdateDraft(userID, func(d *Draft) { d.Age = int(userID) })
			store.SetLastCandidate(userID, userID+1000)
		}(i)
	}
	wg.Wait()

	for i := int64(1); i <= 100; i++ {
		if got := store.Draft(i).Age; got != int(i) {
			t.Fatalf("user %d draft age corrupted: got %d", i, got)
		}
		if got := store.LastCandidate(i); got != i+1000 {
			t.Fatalf("user %d last candidate corrupted: got %d", i, got)
		}
	}
}
