package enums

// ProfileField is the closed set of user profile columns that may be updated
// one at a time after the profile exists.
type ProfileField string

const (
	ProfileFieldName    ProfileField = "name"
	ProfileFieldAge     ProfileField = "age"
	ProfileFieldGender  ProfileField = "gender"
	ProfileFieldBio     ProfileField = "bio"
	ProfileFieldPhoto   ProfileField = "photo_id"
	ProfileFieldPartner ProfileField = "current_partner_id"
)

func (f ProfileField) Valid() bool {
	switch f {
	case ProfileFieldName, ProfileFieldAge, ProfileFieldGender, ProfileFieldBio, ProfileFieldPhoto, ProfileFieldPartner:
		return true
	default:
		return false
	}
}
