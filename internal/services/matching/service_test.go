package matching

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/ivankudzin/matefinder/internal/domain/enums"
	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
)

type pair [2]int64

type memStore struct {
	profiles map[int64]pgrepo.ProfileRecord
	pending  map[pair]bool
	skips    map[pair]bool
	blocks   map[pair]bool
	reports  []pair
	partners map[int64]int64
	chats    int
}

func newMemStore(userIDs ...int64) *memStore {
	m := &memStore{
		profiles: make(map[int64]pgrepo.ProfileRecord),
		pending:  make(map[pair]bool),
		skips:    make(map[pair]bool),
		blocks:   make(map[pair]bool),
		partners: make(map[int64]int64),
	}
	for _, id := range userIDs {
		m.profiles[id] = pgrepo.ProfileRecord{UserID: id, Name: "User", Age: 25, Gender: enums.GenderOther}
	}
	return m
}

func (m *memStore) Get(_ context.Context, userID int64) (pgrepo.ProfileRecord, error) {
	rec, ok := m.profiles[userID]
	if !ok {
		return pgrepo.ProfileRecord{}, pgrepo.ErrProfileNotFound
	}
	if partnerID, ok := m.partners[userID]; ok {
		rec.PartnerID = &partnerID
	}
	return rec, nil
}

func (m *memStore) Skip(_ context.Context, userID, targetID int64) error {
	m.skips[pair{userID, targetID}] = true
	return nil
}

func (m *memStore) NextCandidate(_ context.Context, userID int64) (pgrepo.ProfileRecord, error) {
	ids := make([]int64, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if id == userID {
			continue
		}
		if _, partnered := m.partners[id]; partnered {
			continue
		}
		if m.skips[pair{userID, id}] {
			continue
		}
		if m.blocks[pair{userID, id}] || m.blocks[pair{id, userID}] {
			continue
		}
		reported := false
		for _, rep := range m.reports {
			if rep[0] == userID && rep[1] == id {
				reported = true
				break
			}
		}
		if reported {
			continue
		}
		return m.profiles[id], nil
	}

	return pgrepo.ProfileRecord{}, pgrepo.ErrNoCandidate
}

func (m *memStore) Add(_ context.Context, likerID, likedID int64) error {
	m.pending[pair{likerID, likedID}] = true
	return nil
}

func (m *memStore) Exists(_ context.Context, likerID, likedID int64) (bool, error) {
	return m.pending[pair{likerID, likedID}], nil
}

func (m *memStore) RemovePair(_ context.Context, userID, targetID int64) error {
	delete(m.pending, pair{userID, targetID})
	delete(m.pending, pair{targetID, userID})
	return nil
}

func (m *memStore) Pair(_ context.Context, userID, targetID int64) error {
	if _, ok := m.partners[userID]; ok {
		return pgrepo.ErrAlreadyPaired
	}
	if _, ok := m.partners[targetID]; ok {
		return pgrepo.ErrAlreadyPaired
	}
	delete(m.pending, pair{userID, targetID})
	delete(m.pending, pair{targetID, userID})
	m.partners[userID] = targetID
	m.partners[targetID] = userID
	m.chats++
	return nil
}

func (m *memStore) End(_ context.Context, userID int64) (int64, error) {
	partnerID, ok := m.partners[userID]
	if !ok {
		return 0, pgrepo.ErrNotInChat
	}
	delete(m.partners, userID)
	delete(m.partners, partnerID)
	m.chats--
	return partnerID, nil
}

func (m *memStore) Partner(_ context.Context, userID int64) (int64, error) {
	partnerID, ok := m.partners[userID]
	if !ok {
		return 0, pgrepo.ErrNotInChat
	}
	return partnerID, nil
}

func (m *memStore) AddReport(_ context.Context, reporterID, reportedID int64, _ string) error {
	m.reports = append(m.reports, pair{reporterID, reportedID})
	return nil
}

func (m *memStore) AddBlock(_ context.Context, userID, blockedID int64) error {
	m.blocks[pair{userID, blockedID}] = true
	return nil
}

type limiterStub struct {
	allowed    bool
	retryAfter int64
	calls      int
}

func (l *limiterStub) AllowLike(_ context.Context, _ int64) (int64, bool, error) {
	l.calls++
	return l.retryAfter, l.allowed, nil
}

func newTestService(store *memStore, limiter RateLimiter) *Service {
	return NewService(Dependencies{
		Profiles:    store,
		Feed:        store,
		Likes:       store,
		Chats:       store,
		Moderation:  store,
		RateLimiter: limiter,
	})
}

func (m *memStore) assertPartnerSymmetry(t *testing.T) {
	t.Helper()
	for a, b := range m.partners {
		if m.partners[b] != a {
			t.Fatalf("partner pointers are not symmetric: %d->%d but %d->%d", a, b, b, m.partners[b])
		}
	}
}

func TestLikeWithoutReverseRecordsPendingLike(t *testing.T) {
	store := newMemStore(101, 202)
	svc := newTestService(store, nil)

	outcome, err := svc.Like(context.Background(), 101, 202)
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if outcome.Matched {
		t.Fatalf("one-sided like must not create a match")
	}
	if !store.pending[pair{101, 202}] {
		t.Fatalf("pending like (101,202) must exist")
	}
	if store.chats != 0 {
		t.Fatalf("no chat must be created, got %d", store.chats)
	}
}

func TestMutualLikeCreatesChatAndConsumesPendingPair(t *testing.T) {
	store := newMemStore(101, 202)
	svc := newTestService(store, nil)

	if _, err := svc.Like(context.Background(), 202, 101); err != nil {
		t.Fatalf("first like: %v", err)
	}
	outcome, err := svc.Like(context.Background(), 101, 202)
	if err != nil {
		t.Fatalf("reciprocal like: %v", err)
	}

	if !outcome.Matched {
		t.Fatalf("reciprocal like must create a match")
	}
	if store.pending[pair{101, 202}] || store.pending[pair{202, 101}] {
		t.Fatalf("pending likes must be consumed on match")
	}
	if store.chats != 1 {
		t.Fatalf("exactly one chat must exist, got %d", store.chats)
	}
	if store.partners[101] != 202 || store.partners[202] != 101 {
		t.Fatalf("partner pointers must link both users: %v", store.partners)
	}
	store.assertPartnerSymmetry(t)
}

func TestStaleLikeCannotBreakActiveChat(t *testing.T) {
	store := newMemStore(101, 202, 303)
	svc := newTestService(store, nil)

	// 101 liked 202 while browsing, then matched with 303. 202 still has
	// 101's old candidate card on screen and taps Like.
	if _, err := svc.Like(context.Background(), 101, 202); err != nil {
		t.Fatalf("first like: %v", err)
	}
	if err := store.Pair(context.Background(), 101, 303); err != nil {
		t.Fatalf("pair: %v", err)
	}

	outcome, err := svc.Like(context.Background(), 202, 101)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("stale like must be rejected, got outcome=%+v err=%v", outcome, err)
	}
	if store.partners[101] != 303 || store.partners[303] != 101 {
		t.Fatalf("existing chat must be untouched: %v", store.partners)
	}
	if _, ok := store.partners[202]; ok {
		t.Fatalf("stale liker must not end up in a chat: %v", store.partners)
	}
	store.assertPartnerSymmetry(t)
}

func TestLikeWhileInChatRejected(t *testing.T) {
	store := newMemStore(101, 202, 303)
	svc := newTestService(store, nil)
	if err := store.Pair(context.Background(), 101, 303); err != nil {
		t.Fatalf("pair: %v", err)
	}

	if _, err := svc.Like(context.Background(), 101, 202); !errors.Is(err, ErrValidation) {
		t.Fatalf("like from inside a chat must be rejected, got %v", err)
	}
	if store.pending[pair{101, 202}] {
		t.Fatalf("rejected like must not be recorded")
	}
	store.assertPartnerSymmetry(t)
}

func TestLikeRespectsRateGate(t *testing.T) {
	store := newMemStore(101, 202)
	limiter := &limiterStub{allowed: false, retryAfter: 30}
	svc := newTestService(store, limiter)

	_, err := svc.Like(context.Background(), 101, 202)
	tooFast, ok := IsTooFast(err)
	if !ok {
		t.Fatalf("expected TooFastError, got %v", err)
	}
	if tooFast.RetryAfterSec != 30 {
		t.Fatalf("unexpected retry_after: %d", tooFast.RetryAfterSec)
	}
	if len(store.pending) != 0 || store.chats != 0 {
		t.Fatalf("a rate-limited like must leave no stored effects")
	}
}

func TestLikeUnknownTargetFails(t *testing.T) {
	store := newMemStore(101)
	svc := newTestService(store, nil)

	_, err := svc.Like(context.Background(), 101, 404)
	if !errors.Is(err, pgrepo.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestLikeSelfRejected(t *testing.T) {
	svc := newTestService(newMemStore(101), nil)

	if _, err := svc.Like(context.Background(), 101, 101); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSkipPermanentlyExcludesCandidate(t *testing.T) {
	store := newMemStore(101, 202)
	svc := newTestService(store, nil)

	candidate, err := svc.NextCandidate(context.Background(), 101)
	if err != nil {
		t.Fatalf("next candidate: %v", err)
	}
	if candidate.UserID != 202 {
		t.Fatalf("unexpected candidate: %d", candidate.UserID)
	}

	if err := svc.Skip(context.Background(), 101, 202); err != nil {
		t.Fatalf("skip: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.NextCandidate(context.Background(), 101); !errors.Is(err, ErrNoCandidates) {
			t.Fatalf("skipped candidate must stay excluded, got %v", err)
		}
	}
}

func TestNextCandidateExcludesPartneredProfiles(t *testing.T) {
	store := newMemStore(101, 202, 303)
	store.partners[202] = 303
	store.partners[303] = 202
	svc := newTestService(store, nil)

	if _, err := svc.NextCandidate(context.Background(), 101); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("partnered profiles must not be offered, got %v", err)
	}
}

func TestUndecidedCandidateStaysEligible(t *testing.T) {
	store := newMemStore(101, 202)
	svc := newTestService(store, nil)

	for i := 0; i < 3; i++ {
		candidate, err := svc.NextCandidate(context.Background(), 101)
		if err != nil {
			t.Fatalf("draw #%d: %v", i+1, err)
		}
		if candidate.UserID != 202 {
			t.Fatalf("draw #%d: unexpected candidate %d", i+1, candidate.UserID)
		}
	}
}

func TestStopEndsChatAndReturnsPartner(t *testing.T) {
	store := newMemStore(101, 202)
	svc := newTestService(store, nil)
	_ = store.Pair(context.Background(), 101, 202)

	partnerID, err := svc.Stop(context.Background(), 101)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if partnerID != 202 {
		t.Fatalf("unexpected partner: %d", partnerID)
	}
	if len(store.partners) != 0 {
		t.Fatalf("partner pointers must be cleared: %v", store.partners)
	}
	store.assertPartnerSymmetry(t)
}

func TestStopWithoutChatHasNoSideEffects(t *testing.T) {
	store := newMemStore(101)
	svc := newTestService(store, nil)

	if _, err := svc.Stop(context.Background(), 101); !errors.Is(err, ErrNotInChat) {
		t.Fatalf("expected ErrNotInChat, got %v", err)
	}
	if store.chats != 0 || len(store.partners) != 0 {
		t.Fatalf("stop without a chat must not touch state")
	}
}

func TestSkipPartnerRecordsSkipAndEndsChat(t *testing.T) {
	store := newMemStore(101, 202)
	svc := newTestService(store, nil)
	_ = store.Pair(context.Background(), 101, 202)

	partnerID, err := svc.SkipPartner(context.Background(), 101)
	if err != nil {
		t.Fatalf("skip partner: %v", err)
	}
	if partnerID != 202 {
		t.Fatalf("unexpected partner: %d", partnerID)
	}
	if !store.skips[pair{101, 202}] {
		t.Fatalf("skip record must be written")
	}
	if len(store.partners) != 0 {
		t.Fatalf("chat must be torn down")
	}
}

func TestReportBlocksAndTearsDown(t *testing.T) {
	store := newMemStore(101, 202)
	svc := newTestService(store, nil)
	_ = store.Pair(context.Background(), 101, 202)

	partnerID, err := svc.Report(context.Background(), 101, "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if partnerID != 202 {
		t.Fatalf("unexpected reported partner: %d", partnerID)
	}

	if len(store.reports) != 1 || store.reports[0] != (pair{101, 202}) {
		t.Fatalf("exactly one report must be recorded: %v", store.reports)
	}
	if !store.blocks[pair{101, 202}] {
		t.Fatalf("block record must be written")
	}
	if _, ok := store.partners[101]; ok {
		t.Fatalf("reporter must have no partner after reporting")
	}
	if store.pending[pair{101, 202}] || store.pending[pair{202, 101}] {
		t.Fatalf("pending likes between the pair must be purged")
	}

	// Block relation excludes the reported party in both directions.
	if _, err := svc.NextCandidate(context.Background(), 101); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("reported party must never be offered again to reporter")
	}
	if _, err := svc.NextCandidate(context.Background(), 202); !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("reporter must never be offered to the reported party")
	}
}

func TestReportWithoutChatFails(t *testing.T) {
	store := newMemStore(101)
	svc := newTestService(store, nil)

	if _, err := svc.Report(context.Background(), 101, ""); !errors.Is(err, ErrNotInChat) {
		t.Fatalf("expected ErrNotInChat, got %v", err)
	}
	if len(store.reports) != 0 || len(store.blocks) != 0 {
		t.Fatalf("report without a chat must not write records")
	}
}
