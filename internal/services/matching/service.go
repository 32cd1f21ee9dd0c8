package matching

import (
	"context"
	"errors"
	"fmt"

	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
)

// ReportReasonDefault is recorded when a user reports their current partner
// through the one-tap report command.
const ReportReasonDefault = "Inappropriate behavior"

var (
	ErrValidation   = errors.New("validation error")
	ErrNoCandidates = errors.New("no candidates available")
	ErrNotInChat    = errors.New("not currently in a chat")
)

// TooFastError is returned when the like rate gate rejects an action. Nothing
// is recorded in that case.
type TooFastError struct {
	RetryAfterSec int64
}

func (e TooFastError) Error() string {
	return fmt.Sprintf("too many likes, retry after %ds", e.RetryAfterSec)
}

func IsTooFast(err error) (TooFastError, bool) {
	var tooFast TooFastError
	if errors.As(err, &tooFast) {
		return tooFast, true
	}
	return TooFastError{}, false
}

type ProfileStore interface {
	Get(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error)
}

type FeedStore interface {
	Skip(ctx context.Context, userID, targetID int64) error
	NextCandidate(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error)
}

type LikeStore interface {
	Add(ctx context.Context, likerID, likedID int64) error
	Exists(ctx context.Context, likerID, likedID int64) (bool, error)
	RemovePair(ctx context.Context, userID, targetID int64) error
}

// ChatStore pairs and tears down chats atomically. Pair consumes the pending
// likes between the two users as part of the same transaction.
type ChatStore interface {
	Pair(ctx context.Context, userID, targetID int64) error
	End(ctx context.Context, userID int64) (int64, error)
	Partner(ctx context.Context, userID int64) (int64, error)
}

type ModerationStore interface {
	AddReport(ctx context.Context, reporterID, reportedID int64, reason string) error
	AddBlock(ctx context.Context, userID, blockedID int64) error
}

type RateLimiter interface {
	AllowLike(ctx context.Context, userID int64) (int64, bool, error)
}

type Dependencies struct {
	Profiles    ProfileStore
	Feed        FeedStore
	Likes       LikeStore
	Chats       ChatStore
	Moderation  ModerationStore
	RateLimiter RateLimiter
}

type LikeOutcome struct {
	Matched bool
}

type Service struct {
	profiles    ProfileStore
	feed        FeedStore
	likes       LikeStore
	chats       ChatStore
	moderation  ModerationStore
	rateLimiter RateLimiter
}

func NewService(deps Dependencies) *Service {
	return &Service{
		profiles:    deps.Profiles,
		feed:        deps.Feed,
		likes:       deps.Likes,
		chats:       deps.Chats,
		moderation:  deps.Moderation,
		rateLimiter: deps.RateLimiter,
	}
}

func (s *Service) NextCandidate(ctx context.Context, userID int64) (pgrepo.ProfileRecord, error) {
	if userID <= 0 {
		return pgrepo.ProfileRecord{}, ErrValidation
	}
	if s.feed == nil {
		return pgrepo.ProfileRecord{}, fmt.Errorf("matching dependencies are not configured")
	}

	candidate, err := s.feed.NextCandidate(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrNoCandidate) {
			return pgrepo.ProfileRecord{}, ErrNoCandidates
		}
		return pgrepo.ProfileRecord{}, err
	}

	return candidate, nil
}

// Like records interest in the target. When the target has already liked the
// acting user the pending pair is consumed and both users are paired into a
// chat; otherwise a one-directional pending like is stored.
func (s *Service) Like(ctx context.Context, userID, targetID int64) (LikeOutcome, error) {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return LikeOutcome{}, ErrValidation
	}
	if s.profiles == nil || s.likes == nil || s.chats == nil {
		return LikeOutcome{}, fmt.Errorf("matching dependencies are not configured")
	}

	target, err := s.profiles.Get(ctx, targetID)
	if err != nil {
		return LikeOutcome{}, err
	}
	// A like arriving from a stale candidate card must not pair against a
	// user whose chat started in the meantime.
	if target.PartnerID != nil {
		return LikeOutcome{}, ErrValidation
	}
	if _, err := s.chats.Partner(ctx, userID); err == nil {
		return LikeOutcome{}, ErrValidation
	} else if !errors.Is(err, pgrepo.ErrNotInChat) {
		return LikeOutcome{}, mapChatErr(err)
	}

	if s.rateLimiter != nil {
		retryAfter, allowed, err := s.rateLimiter.AllowLike(ctx, userID)
		if err != nil {
			return LikeOutcome{}, fmt.Errorf("apply like rate gate: %w", err)
		}
		if !allowed {
			return LikeOutcome{}, TooFastError{RetryAfterSec: retryAfter}
		}
	}

	reverseLiked, err := s.likes.Exists(ctx, targetID, userID)
	if err != nil {
		return LikeOutcome{}, err
	}

	if reverseLiked {
		if err := s.chats.Pair(ctx, userID, targetID); err != nil {
			if errors.Is(err, pgrepo.ErrAlreadyPaired) {
				return LikeOutcome{}, ErrValidation
			}
			return LikeOutcome{}, err
		}
		return LikeOutcome{Matched: true}, nil
	}

	if err := s.likes.Add(ctx, userID, targetID); err != nil {
		return LikeOutcome{}, err
	}

	return LikeOutcome{}, nil
}

// Skip permanently removes the target from the user's future candidate draws.
func (s *Service) Skip(ctx context.Context, userID, targetID int64) error {
	if userID <= 0 || targetID <= 0 || userID == targetID {
		return ErrValidation
	}
	if s.feed == nil {
		return fmt.Errorf("matching dependencies are not configured")
	}

	return s.feed.Skip(ctx, userID, targetID)
}

// SkipPartner skips the current partner and tears down the chat, returning
// the former partner so they can be notified.
func (s *Service) SkipPartner(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	if s.feed == nil || s.chats == nil {
		return 0, fmt.Errorf("matching dependencies are not configured")
	}

	partnerID, err := s.Partner(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.feed.Skip(ctx, userID, partnerID); err != nil {
		return 0, err
	}

	if _, err := s.chats.End(ctx, userID); err != nil {
		return 0, mapChatErr(err)
	}

	return partnerID, nil
}

// Stop ends the user's active chat. ErrNotInChat with no side effects when
// there is none.
func (s *Service) Stop(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	if s.chats == nil {
		return 0, fmt.Errorf("matching dependencies are not configured")
	}

	partnerID, err := s.chats.End(ctx, userID)
	if err != nil {
		return 0, mapChatErr(err)
	}

	return partnerID, nil
}

// Report records a report against the current partner, blocks them in both
// directions and tears down the chat. The reported party is not notified.
func (s *Service) Report(ctx context.Context, userID int64, reason string) (int64, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	if s.chats == nil || s.moderation == nil {
		return 0, fmt.Errorf("matching dependencies are not configured")
	}
	if reason == "" {
		reason = ReportReasonDefault
	}

	partnerID, err := s.Partner(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := s.moderation.AddReport(ctx, userID, partnerID, reason); err != nil {
		return 0, err
	}
	if err := s.moderation.AddBlock(ctx, userID, partnerID); err != nil {
		return 0, err
	}
	if s.likes != nil {
		if err := s.likes.RemovePair(ctx, userID, partnerID); err != nil {
			return 0, err
		}
	}

	if _, err := s.chats.End(ctx, userID); err != nil {
		return 0, mapChatErr(err)
	}

	return partnerID, nil
}

func (s *Service) Partner(ctx context.Context, userID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrValidation
	}
	if s.chats == nil {
		return 0, fmt.Errorf("matching dependencies are not configured")
	}

	partnerID, err := s.chats.Partner(ctx, userID)
	if err != nil {
		return 0, mapChatErr(err)
	}

	return partnerID, nil
}

func mapChatErr(err error) error {
	if errors.Is(err, pgrepo.ErrNotInChat) {
		return ErrNotInChat
	}
	return err
}
