package botapp

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/matefinder/internal/domain/enums"
	"github.com/ivankudzin/matefinder/internal/domain/rules"
	tginfra "github.com/ivankudzin/matefinder/internal/infra/telegram"
	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
	"github.com/ivankudzin/matefinder/internal/services/dialog"
	matchingsvc "github.com/ivankudzin/matefinder/internal/services/matching"
	profilessvc "github.com/ivankudzin/matefinder/internal/services/profiles"
)

// Sender is the slice of the Telegram client the router needs. Satisfied by
// *telegram.Bot.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTextWithKeyboard(ctx context.Context, chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, keyboard *tgbotapi.InlineKeyboardMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
	AnswerCallbackAlert(ctx context.Context, callbackID, text string) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
	EditMessageTextWithKeyboard(ctx context.Context, chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	ClearReplyMarkup(ctx context.Context, chatID int64, messageID int) error
}

type StatsReader interface {
	Get(ctx context.Context) (pgrepo.Stats, error)
}

type RouterDependencies struct {
	Sender      Sender
	Dialog      *dialog.Store
	Profiles    *profilessvc.Service
	Matching    *matchingsvc.Service
	Stats       StatsReader
	AdminUserID int64
	Logger      *zap.Logger
}

// Router turns decoded Telegram updates into service calls and replies. All
// state between messages lives in the dialog store, keyed by user id.
type Router struct {
	sender      Sender
	dialog      *dialog.Store
	profiles    *profilessvc.Service
	matching    *matchingsvc.Service
	stats       StatsReader
	adminUserID int64
	logger      *zap.Logger
}

func NewRouter(deps RouterDependencies) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		sender:      deps.Sender,
		dialog:      deps.Dialog,
		profiles:    deps.Profiles,
		matching:    deps.Matching,
		stats:       deps.Stats,
		adminUserID: deps.AdminUserID,
		logger:      logger,
	}
}

func (r *Router) HandleCommand(ctx context.Context, update tginfra.CommandUpdate) error {
	switch strings.ToLower(strings.TrimSpace(update.Command)) {
	case "start":
		return r.handleStart(ctx, update)
	case "profile":
		return r.handleProfile(ctx, update)
	case "edit":
		return r.handleEdit(ctx, update)
	case "find":
		return r.handleFind(ctx, update)
	case "stop":
		return r.handleStop(ctx, update)
	case "skip":
		return r.handleSkip(ctx, update)
	case "report":
		return r.handleReport(ctx, update)
	case "help":
		return r.sender.SendText(ctx, update.ChatID, msgHelp)
	case "cancel":
		r.dialog.Clear(update.UserID)
		return r.sender.SendText(ctx, update.ChatID, msgCancelled)
	case "admin":
		return r.handleAdmin(ctx, update)
	case "broadcast":
		if update.UserID != r.adminUserID {
			return r.sender.SendText(ctx, update.ChatID, msgNoPermission)
		}
		return r.sender.SendText(ctx, update.ChatID, msgBroadcastPending)
	default:
		return nil
	}
}

func (r *Router) handleStart(ctx context.Context, update tginfra.CommandUpdate) error {
	rec, err := r.profiles.Get(ctx, update.UserID)
	if err == nil {
		return r.sender.SendText(ctx, update.ChatID, welcomeBackText(rec.Name))
	}
	if !errors.Is(err, pgrepo.ErrProfileNotFound) {
		return err
	}

	r.dialog.Clear(update.UserID)
	r.dialog.SetStep(update.UserID, dialog.StepName)
	return r.sender.SendText(ctx, update.ChatID, msgWelcomeNew)
}

func (r *Router) handleProfile(ctx context.Context, update tginfra.CommandUpdate) error {
	rec, err := r.profiles.Get(ctx, update.UserID)
	if errors.Is(err, pgrepo.ErrProfileNotFound) {
		return r.sender.SendText(ctx, update.ChatID, msgStartFirst)
	}
	if err != nil {
		return err
	}

	keyboard := profileEditKeyboard()
	if rec.PhotoID != nil {
		if err := r.sender.SendPhoto(ctx, update.ChatID, *rec.PhotoID, profileText(rec), &keyboard); err == nil {
			return nil
		}
		// stale file id, fall back to text
	}
	return r.sender.SendTextWithKeyboard(ctx, update.ChatID, profileText(rec), keyboard)
}

func (r *Router) handleEdit(ctx context.Context, update tginfra.CommandUpdate) error {
	exists, err := r.profiles.Exists(ctx, update.UserID)
	if err != nil {
		return err
	}
	if !exists {
		return r.sender.SendText(ctx, update.ChatID, msgStartFirst)
	}
	return r.sender.SendTextWithKeyboard(ctx, update.ChatID, msgEditPrompt, profileEditKeyboard())
}

func (r *Router) handleFind(ctx context.Context, update tginfra.CommandUpdate) error {
	exists, err := r.profiles.Exists(ctx, update.UserID)
	if err != nil {
		return err
	}
	if !exists {
		return r.sender.SendText(ctx, update.ChatID, msgStartFirst)
	}

	if _, err := r.matching.Partner(ctx, update.UserID); err == nil {
		return r.sender.SendText(ctx, update.ChatID, msgAlreadyInChat)
	} else if !errors.Is(err, matchingsvc.ErrNotInChat) {
		return err
	}

	found, err := r.showNextCandidate(ctx, update.ChatID, update.UserID)
	if err != nil {
		return err
	}
	if !found {
		return r.sender.SendText(ctx, update.ChatID, msgNoCandidates)
	}
	return nil
}

func (r *Router) handleStop(ctx context.Context, update tginfra.CommandUpdate) error {
	partnerID, err := r.matching.Stop(ctx, update.UserID)
	if errors.Is(err, matchingsvc.ErrNotInChat) {
		return r.sender.SendText(ctx, update.ChatID, msgNotInChat)
	}
	if err != nil {
		return err
	}

	if err := r.sender.SendText(ctx, update.ChatID, msgChatEnded); err != nil {
		return err
	}
	r.notify(ctx, partnerID, msgPartnerEnded)
	return nil
}

// handleSkip doubles as the photo-step escape hatch: during profile creation
// it finalizes the profile without a photo, during a photo edit it removes
// the photo, and otherwise it skips the current chat partner.
func (r *Router) handleSkip(ctx context.Context, update tginfra.CommandUpdate) error {
	if r.dialog.Step(update.UserID) == dialog.StepPhoto {
		exists, err := r.profiles.Exists(ctx, update.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return r.finishCreation(ctx, update.ChatID, update.UserID, nil)
		}
		if err := r.profiles.SetPhoto(ctx, update.UserID, nil); err != nil {
			return err
		}
		r.dialog.Clear(update.UserID)
		return r.sender.SendText(ctx, update.ChatID, msgPhotoRemoved)
	}

	partnerID, err := r.matching.SkipPartner(ctx, update.UserID)
	if errors.Is(err, matchingsvc.ErrNotInChat) {
		return r.sender.SendText(ctx, update.ChatID, msgNotInChat)
	}
	if err != nil {
		return err
	}

	if err := r.sender.SendText(ctx, update.ChatID, msgSkippedPartner); err != nil {
		return err
	}
	r.notify(ctx, partnerID, msgPartnerSkipped)
	return nil
}

func (r *Router) handleReport(ctx context.Context, update tginfra.CommandUpdate) error {
	_, err := r.matching.Report(ctx, update.UserID, matchingsvc.ReportReasonDefault)
	if errors.Is(err, matchingsvc.ErrNotInChat) {
		return r.sender.SendText(ctx, update.ChatID, msgNotInChat)
	}
	if err != nil {
		return err
	}
	// The reported party gets no notification.
	return r.sender.SendText(ctx, update.ChatID, msgReported)
}

func (r *Router) handleAdmin(ctx context.Context, update tginfra.CommandUpdate) error {
	if update.UserID != r.adminUserID {
		return r.sender.SendText(ctx, update.ChatID, msgNoPermission)
	}
	stats, err := r.stats.Get(ctx)
	if err != nil {
		return err
	}
	return r.sender.SendTextWithKeyboard(ctx, update.ChatID, adminPanelText(stats), adminKeyboard())
}

func (r *Router) HandleText(ctx context.Context, update tginfra.TextUpdate) error {
	switch r.dialog.Step(update.UserID) {
	case dialog.StepName:
		return r.handleNameInput(ctx, update)
	case dialog.StepAge:
		return r.handleAgeInput(ctx, update)
	case dialog.StepGender:
		// gender comes in through the inline keyboard, re-offer it
		return r.sender.SendTextWithKeyboard(ctx, update.ChatID, msgGenderPrompt, genderKeyboard())
	case dialog.StepBio:
		return r.handleBioInput(ctx, update)
	case dialog.StepPhoto:
		return r.sender.SendText(ctx, update.ChatID, msgBadPhoto)
	default:
		return r.relayText(ctx, update)
	}
}

func (r *Router) handleNameInput(ctx context.Context, update tginfra.TextUpdate) error {
	exists, err := r.profiles.Exists(ctx, update.UserID)
	if err != nil {
		return err
	}

	if exists {
		name, err := r.profiles.SetName(ctx, update.UserID, update.Text)
		if errors.Is(err, rules.ErrInvalidName) {
			return r.sender.SendText(ctx, update.ChatID, msgBadName)
		}
		if err != nil {
			return err
		}
		r.dialog.Clear(update.UserID)
		return r.sender.SendText(ctx, update.ChatID, nameUpdatedText(name))
	}

	name, err := rules.ValidateName(update.Text)
	if err != nil {
		return r.sender.SendText(ctx, update.ChatID, msgBadName)
	}
	r.dialog.UpdateDraft(update.UserID, func(d *dialog.Draft) { d.Name = name })
	r.dialog.SetStep(update.UserID, dialog.StepAge)
	return r.sender.SendText(ctx, update.ChatID, msgAskAge)
}

func (r *Router) handleAgeInput(ctx context.Context, update tginfra.TextUpdate) error {
	exists, err := r.profiles.Exists(ctx, update.UserID)
	if err != nil {
		return err
	}

	if exists {
		age, err := r.profiles.SetAge(ctx, update.UserID, update.Text)
		if errors.Is(err, rules.ErrInvalidAge) {
			return r.sender.SendText(ctx, update.ChatID, msgBadAge)
		}
		if err != nil {
			return err
		}
		r.dialog.Clear(update.UserID)
		return r.sender.SendText(ctx, update.ChatID, ageUpdatedText(age))
	}

	age, err := rules.ParseAge(update.Text)
	if err != nil {
		return r.sender.SendText(ctx, update.ChatID, msgBadAge)
	}
	r.dialog.UpdateDraft(update.UserID, func(d *dialog.Draft) { d.Age = age })
	r.dialog.SetStep(update.UserID, dialog.StepGender)
	return r.sender.SendTextWithKeyboard(ctx, update.ChatID, msgAskGender, genderKeyboard())
}

func (r *Router) handleBioInput(ctx context.Context, update tginfra.TextUpdate) error {
	exists, err := r.profiles.Exists(ctx, update.UserID)
	if err != nil {
		return err
	}

	if exists {
		_, err := r.profiles.SetBio(ctx, update.UserID, update.Text)
		if errors.Is(err, rules.ErrInvalidBio) {
			return r.sender.SendText(ctx, update.ChatID, msgBadBio)
		}
		if err != nil {
			return err
		}
		r.dialog.Clear(update.UserID)
		return r.sender.SendText(ctx, update.ChatID, msgBioUpdated)
	}

	bio, err := rules.ValidateBio(update.Text)
	if err != nil {
		return r.sender.SendText(ctx, update.ChatID, msgBadBio)
	}
	r.dialog.UpdateDraft(update.UserID, func(d *dialog.Draft) { d.Bio = bio })
	r.dialog.SetStep(update.UserID, dialog.StepPhoto)
	return r.sender.SendText(ctx, update.ChatID, msgAskPhoto)
}

func (r *Router) relayText(ctx context.Context, update tginfra.TextUpdate) error {
	partnerID, err := r.matching.Partner(ctx, update.UserID)
	if errors.Is(err, matchingsvc.ErrNotInChat) {
		return r.sender.SendText(ctx, update.ChatID, msgNotInChatRelay)
	}
	if err != nil {
		return err
	}

	if err := r.sender.SendText(ctx, partnerID, relayText(update.Text)); err != nil {
		r.logger.Warn("relay text failed", zap.Error(err), zap.Int64("partner_id", partnerID))
		return r.sender.SendText(ctx, update.ChatID, msgRelayFailed)
	}
	return nil
}

func (r *Router) HandlePhoto(ctx context.Context, update tginfra.PhotoUpdate) error {
	if r.dialog.Step(update.UserID) == dialog.StepPhoto {
		exists, err := r.profiles.Exists(ctx, update.UserID)
		if err != nil {
			return err
		}
		if !exists {
			fileID := update.FileID
			return r.finishCreation(ctx, update.ChatID, update.UserID, &fileID)
		}

		fileID := update.FileID
		if err := r.profiles.SetPhoto(ctx, update.UserID, &fileID); err != nil {
			return err
		}
		r.dialog.Clear(update.UserID)
		return r.sender.SendText(ctx, update.ChatID, msgPhotoUpdated)
	}

	partnerID, err := r.matching.Partner(ctx, update.UserID)
	if errors.Is(err, matchingsvc.ErrNotInChat) {
		return r.sender.SendText(ctx, update.ChatID, msgNotInChatRelay)
	}
	if err != nil {
		return err
	}

	if err := r.sender.SendPhoto(ctx, partnerID, update.FileID, msgRelayedPhoto, nil); err != nil {
		r.logger.Warn("relay photo failed", zap.Error(err), zap.Int64("partner_id", partnerID))
		return r.sender.SendText(ctx, update.ChatID, msgPhotoRelayFault)
	}
	return nil
}

func (r *Router) finishCreation(ctx context.Context, chatID, userID int64, photoID *string) error {
	draft := r.dialog.Draft(userID)
	err := r.profiles.Create(ctx, userID, draft.Name, draft.Age, draft.Gender, draft.Bio, photoID)
	r.dialog.Clear(userID)
	if err != nil {
		r.logger.Warn("profile creation failed", zap.Error(err), zap.Int64("user_id", userID))
		return r.sender.SendText(ctx, chatID, msgCreateFailed)
	}

	rec, err := r.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}
	if rec.PhotoID != nil {
		if err := r.sender.SendPhoto(ctx, chatID, *rec.PhotoID, profileCreatedText(rec), nil); err == nil {
			return nil
		}
	}
	return r.sender.SendText(ctx, chatID, profileCreatedText(rec))
}

func (r *Router) HandleCallback(ctx context.Context, update tginfra.CallbackUpdate) error {
	action := ParseCallback(update.Data)
	switch action.Kind {
	case CallbackGender:
		return r.handleGenderCallback(ctx, update, action.Gender)
	case CallbackEdit:
		return r.handleEditCallback(ctx, update, action.Field)
	case CallbackLike:
		return r.handleLikeCallback(ctx, update, action.TargetID)
	case CallbackSkip:
		return r.handleSkipCallback(ctx, update, action.TargetID)
	case CallbackAdminStats:
		if update.UserID != r.adminUserID {
			return r.sender.AnswerCallbackAlert(ctx, update.CallbackID, msgNoPermissionToast)
		}
		stats, err := r.stats.Get(ctx)
		if err != nil {
			return err
		}
		if err := r.sender.SendText(ctx, update.ChatID, adminStatsText(stats)); err != nil {
			return err
		}
		return r.sender.AnswerCallback(ctx, update.CallbackID, "")
	case CallbackAdminBroadcast:
		if update.UserID != r.adminUserID {
			return r.sender.AnswerCallbackAlert(ctx, update.CallbackID, msgNoPermissionToast)
		}
		if err := r.sender.SendText(ctx, update.ChatID, msgBroadcastStub); err != nil {
			return err
		}
		return r.sender.AnswerCallback(ctx, update.CallbackID, "")
	default:
		// keep the client from showing a perpetual spinner
		return r.sender.AnswerCallback(ctx, update.CallbackID, "")
	}
}

func (r *Router) handleGenderCallback(ctx context.Context, update tginfra.CallbackUpdate, gender enums.Gender) error {
	exists, err := r.profiles.Exists(ctx, update.UserID)
	if err != nil {
		return err
	}

	if exists {
		if err := r.profiles.SetGender(ctx, update.UserID, gender); err != nil {
			return err
		}
		r.dialog.Clear(update.UserID)
		if err := r.sender.EditMessageText(ctx, update.ChatID, update.MessageID, genderUpdatedText(string(gender))); err != nil {
			if err := r.sender.SendText(ctx, update.ChatID, genderUpdatedText(string(gender))); err != nil {
				return err
			}
		}
		return r.sender.AnswerCallback(ctx, update.CallbackID, "")
	}

	r.dialog.UpdateDraft(update.UserID, func(d *dialog.Draft) { d.Gender = gender })
	r.dialog.SetStep(update.UserID, dialog.StepBio)
	if err := r.sender.EditMessageText(ctx, update.ChatID, update.MessageID, genderSetText(string(gender))); err != nil {
		if err := r.sender.SendText(ctx, update.ChatID, genderSetText(string(gender))); err != nil {
			return err
		}
	}
	return r.sender.AnswerCallback(ctx, update.CallbackID, "")
}

func (r *Router) handleEditCallback(ctx context.Context, update tginfra.CallbackUpdate, field enums.ProfileField) error {
	var step dialog.Step
	var prompt string
	switch field {
	case enums.ProfileFieldName:
		step, prompt = dialog.StepName, msgEditNamePrmpt
	case enums.ProfileFieldAge:
		step, prompt = dialog.StepAge, msgEditAgePrompt
	case enums.ProfileFieldGender:
		step, prompt = dialog.StepGender, msgGenderPrompt
	case enums.ProfileFieldBio:
		step, prompt = dialog.StepBio, msgEditBioPrompt
	case enums.ProfileFieldPhoto:
		step, prompt = dialog.StepPhoto, msgEditPhotoAsk
	default:
		return r.sender.AnswerCallback(ctx, update.CallbackID, "")
	}

	if field == enums.ProfileFieldGender {
		if err := r.sender.EditMessageTextWithKeyboard(ctx, update.ChatID, update.MessageID, prompt, genderKeyboard()); err != nil {
			if err := r.sender.SendTextWithKeyboard(ctx, update.ChatID, prompt, genderKeyboard()); err != nil {
				return err
			}
		}
	} else {
		if err := r.sender.EditMessageText(ctx, update.ChatID, update.MessageID, prompt); err != nil {
			if err := r.sender.SendText(ctx, update.ChatID, prompt); err != nil {
				return err
			}
		}
	}

	r.dialog.SetStep(update.UserID, step)
	return r.sender.AnswerCallback(ctx, update.CallbackID, "")
}

func (r *Router) handleLikeCallback(ctx context.Context, update tginfra.CallbackUpdate, targetID int64) error {
	outcome, err := r.matching.Like(ctx, update.UserID, targetID)
	if tooFast, ok := matchingsvc.IsTooFast(err); ok {
		return r.sender.AnswerCallbackAlert(ctx, update.CallbackID, tooFastToast(tooFast.RetryAfterSec))
	}
	if errors.Is(err, pgrepo.ErrProfileNotFound) || errors.Is(err, matchingsvc.ErrValidation) {
		return r.sender.AnswerCallback(ctx, update.CallbackID, msgBadCandidate)
	}
	if err != nil {
		return err
	}

	if err := r.sender.ClearReplyMarkup(ctx, update.ChatID, update.MessageID); err != nil {
		r.logger.Debug("clear reply markup failed", zap.Error(err))
	}

	if outcome.Matched {
		if err := r.sender.AnswerCallback(ctx, update.CallbackID, msgMatchToast); err != nil {
			return err
		}
		r.notify(ctx, targetID, msgMatchNotify)
		return nil
	}

	if err := r.sender.AnswerCallback(ctx, update.CallbackID, msgLikedToast); err != nil {
		return err
	}
	return r.continueBrowsing(ctx, update.ChatID, update.UserID)
}

func (r *Router) handleSkipCallback(ctx context.Context, update tginfra.CallbackUpdate, targetID int64) error {
	err := r.matching.Skip(ctx, update.UserID, targetID)
	if errors.Is(err, matchingsvc.ErrValidation) {
		return r.sender.AnswerCallback(ctx, update.CallbackID, msgBadCandidate)
	}
	if err != nil {
		return err
	}

	if err := r.sender.AnswerCallback(ctx, update.CallbackID, msgSkippedToast); err != nil {
		return err
	}
	if err := r.sender.ClearReplyMarkup(ctx, update.ChatID, update.MessageID); err != nil {
		r.logger.Debug("clear reply markup failed", zap.Error(err))
	}
	return r.continueBrowsing(ctx, update.ChatID, update.UserID)
}

func (r *Router) continueBrowsing(ctx context.Context, chatID, userID int64) error {
	found, err := r.showNextCandidate(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !found {
		r.dialog.Clear(userID)
		return r.sender.SendText(ctx, chatID, msgNoMoreFeed)
	}
	return nil
}

func (r *Router) showNextCandidate(ctx context.Context, chatID, userID int64) (bool, error) {
	candidate, err := r.matching.NextCandidate(ctx, userID)
	if errors.Is(err, matchingsvc.ErrNoCandidates) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	r.dialog.SetLastCandidate(userID, candidate.UserID)

	keyboard := likeSkipKeyboard(candidate.UserID)
	if candidate.PhotoID != nil {
		if err := r.sender.SendPhoto(ctx, chatID, *candidate.PhotoID, candidateText(candidate), &keyboard); err == nil {
			return true, nil
		}
	}
	return true, r.sender.SendTextWithKeyboard(ctx, chatID, candidateText(candidate), keyboard)
}

// notify delivers a best-effort message to the other side of a chat. The
// partner may have blocked the bot, which must not fail the current update.
func (r *Router) notify(ctx context.Context, userID int64, text string) {
	if err := r.sender.SendText(ctx, userID, text); err != nil {
		r.logger.Warn("partner notification failed", zap.Error(err), zap.Int64("user_id", userID))
	}
}
