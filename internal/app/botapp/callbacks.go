package botapp

import (
	"strconv"
	"strings"

	"github.com/ivankudzin/matefinder/internal/domain/enums"
)

type CallbackKind string

const (
	CallbackUnknown        CallbackKind = ""
	CallbackGender         CallbackKind = "gender"
	CallbackEdit           CallbackKind = "edit"
	CallbackLike           CallbackKind = "like"
	CallbackSkip           CallbackKind = "skip"
	CallbackAdminStats     CallbackKind = "admin_stats"
	CallbackAdminBroadcast CallbackKind = "admin_broadcast"
)

// CallbackAction is the decoded form of an inline button payload. The raw
// string is parsed once at the transport boundary; handlers switch on Kind
// and read only the fields that kind carries.
type CallbackAction struct {
	Kind     CallbackKind
	Gender   enums.Gender
	Field    enums.ProfileField
	TargetID int64
}

func ParseCallback(data string) CallbackAction {
	data = strings.TrimSpace(data)

	switch data {
	case "admin_stats":
		return CallbackAction{Kind: CallbackAdminStats}
	case "admin_broadcast":
		return CallbackAction{Kind: CallbackAdminBroadcast}
	}

	if rest, ok := strings.CutPrefix(data, "gender_"); ok {
		var gender enums.Gender
		switch rest {
		case "male":
			gender = enums.GenderMale
		case "female":
			gender = enums.GenderFemale
		case "other":
			gender = enums.GenderOther
		default:
			return CallbackAction{}
		}
		return CallbackAction{Kind: CallbackGender, Gender: gender}
	}

	if rest, ok := strings.CutPrefix(data, "edit_"); ok {
		var field enums.ProfileField
		switch rest {
		case "name":
			field = enums.ProfileFieldName
		case "age":
			field = enums.ProfileFieldAge
		case "gender":
			field = enums.ProfileFieldGender
		case "bio":
			field = enums.ProfileFieldBio
		case "photo":
			field = enums.ProfileFieldPhoto
		default:
			return CallbackAction{}
		}
		return CallbackAction{Kind: CallbackEdit, Field: field}
	}

	if rest, ok := strings.CutPrefix(data, "like_user_"); ok {
		if id := parseTargetID(rest); id > 0 {
			return CallbackAction{Kind: CallbackLike, TargetID: id}
		}
		return CallbackAction{}
	}

	if rest, ok := strings.CutPrefix(data, "skip_user_"); ok {
		if id := parseTargetID(rest); id > 0 {
			return CallbackAction{Kind: CallbackSkip, TargetID: id}
		}
		return CallbackAction{}
	}

	return CallbackAction{}
}

func parseTargetID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// Inline button payload builders, the inverse of ParseCallback.

func likeCallbackData(targetID int64) string {
	return "like_user_" + strconv.FormatInt(targetID, 10)
}

func skipCallbackData(targetID int64) string {
	return "skip_user_" + strconv.FormatInt(targetID, 10)
}
