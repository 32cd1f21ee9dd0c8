package botapp

import (
	"fmt"
	"strings"

	pgrepo "github.com/ivankudzin/matefinder/internal/repo/postgres"
)

const (
	msgWelcomeNew = "🎉 Welcome to MateFinder!\n\nLet's create your profile. First, please tell me your name:"

	msgStartFirst = "❌ Please start the bot first with /start"

	msgEditPrompt = "✏️ Edit Profile\n\nSelect what you'd like to edit:"

	msgAlreadyInChat = "❌ You're already in a chat! Use /stop to end it first."
	msgNoCandidates  = "😔 No profiles to show right now. Please try again later."
	msgNoMoreFeed    = "No more profiles available now."

	msgChatEnded       = "✅ Chat ended successfully!"
	msgPartnerEnded    = "💔 Your chat partner has ended the conversation.\n\nUse /find to search for a new match!"
	msgPartnerSkipped  = "⏭️ Your chat partner has skipped to find someone else.\n\nUse /find to search for a new match!"
	msgSkippedPartner  = "⏭️ Skipped current partner. Use /find to search for a new match!"
	msgNotInChat       = "❌ You're not currently in a chat."
	msgNotInChatRelay  = "❌ You're not currently in a chat.\n🔍 Use /find to search for a match!"
	msgRelayFailed     = "❌ Failed to send message. Your partner may have left the chat."
	msgPhotoRelayFault = "❌ Failed to forward photo."

	msgReported = "🚨 User reported and blocked!\nThe chat has ended and you won't match with this user again.\nUse /find to search for a new match."

	msgMatchToast = "🎉 It's a Match! Say hello!"
	msgMatchNotify = "🎉 It's a Match! You both liked each other. Say hello!\n" +
		"💬 Send any message to chat.\n" +
		"🚫 Use /stop to end the chat\n" +
		"⏭️ Use /skip to find a new partner\n" +
		"🚨 Use /report to report inappropriate behavior"
	msgLikedToast   = "Liked! We'll notify you if it's a match."
	msgSkippedToast = "Skipped."
	msgBadCandidate = "Invalid candidate."

	msgHelp = "🤖 MateFinder Bot Commands\n\n" +
		"🔸 /start - Start the bot and create profile\n" +
		"🔸 /profile - View your current profile\n" +
		"🔸 /edit - Edit your profile\n" +
		"🔸 /find - Browse profiles and match\n" +
		"🔸 /stop - End current chat\n" +
		"🔸 /skip - Skip current partner in chat or profile\n" +
		"🔸 /report - Report inappropriate behavior\n" +
		"🔸 /cancel - Cancel any ongoing action\n" +
		"🔸 /help - Show this help message"

	msgCancelled = "❌ Action cancelled."

	msgNoPermission      = "❌ You don't have permission to use this command."
	msgNoPermissionToast = "No permission"
	msgBroadcastPending  = "📢 Please send the message you want to broadcast to all users. (Not implemented)"
	msgBroadcastStub     = "📢 Broadcast: (not implemented)"

	msgAskAge    = "✅ Name set. Please enter your age (18-100):"
	msgAskGender = "✅ Age set. Please select your gender:"
	msgAskPhoto  = "Would you like to add a profile picture?\nSend me a photo."

	msgBadName  = "❌ Name must be between 2 and 50 characters. Please try again:"
	msgBadAge   = "❌ Please enter a valid number for age (18-100):"
	msgBadBio   = "❌ Bio must be less than 500 characters. Please try again:"
	msgBadPhoto = "❌ Please send a photo or type /skip."

	msgBioUpdated    = "✅ Bio updated!"
	msgPhotoUpdated  = "✅ Photo updated!"
	msgPhotoRemoved  = "✅ Photo removed!"
	msgGenderPrompt  = "Please select your gender:"
	msgCreateFailed  = "❌ Failed to create profile. Please try again with /start"
	msgRelayedPhoto  = "(Photo from your chat partner)"
	msgEditNamePrmpt = "Please enter your new name:"
	msgEditAgePrompt = "Please enter your new age:"
	msgEditBioPrompt = "Please enter your new bio:"
	msgEditPhotoAsk  = "Send your new profile picture or /skip to remove."
)

func welcomeBackText(name string) string {
	return fmt.Sprintf("👋 Welcome back, %s!\n\n🔸 Use /find to start searching for a match\n🔸 Use /profile to view your profile\n🔸 Use /help to see all commands", name)
}

func profileText(rec pgrepo.ProfileRecord) string {
	return fmt.Sprintf(
		"👤 Your Profile\n\n📛 Name: %s\n🎂 Age: %d\n⚧️ Gender: %s\n📝 Bio: %s\n\n📅 Joined: %s",
		rec.Name, rec.Age, rec.Gender, rec.Bio, rec.CreatedAt.Format("2006-01-02"),
	)
}

func candidateText(rec pgrepo.ProfileRecord) string {
	return fmt.Sprintf(
		"📛 Name: %s\n🎂 Age: %d\n⚧️ Gender: %s\n📝 Bio: %s\n\nLike or skip:",
		rec.Name, rec.Age, rec.Gender, rec.Bio,
	)
}

func profileCreatedText(rec pgrepo.ProfileRecord) string {
	lines := []string{
		"🎉 Profile created successfully!",
		"",
		"📛 Name: " + rec.Name,
		fmt.Sprintf("🎂 Age: %d", rec.Age),
		fmt.Sprintf("⚧️ Gender: %s", rec.Gender),
		"📝 Bio: " + rec.Bio,
	}
	if rec.PhotoID != nil {
		lines = append(lines, "🖼️ Photo: [see above]")
	}
	lines = append(lines, "", "🔍 Use /find to start looking for matches!\n✏️ Use /edit to modify your profile anytime.")
	return strings.Join(lines, "\n")
}

func nameUpdatedText(name string) string {
	return "✅ Name updated to: " + name
}

func ageUpdatedText(age int) string {
	return fmt.Sprintf("✅ Age updated to: %d", age)
}

func genderSetText(gender string) string {
	return fmt.Sprintf("✅ Gender set to: %s\n\nNow, please enter a short bio about yourself:", gender)
}

func genderUpdatedText(gender string) string {
	return "✅ Gender updated to: " + gender
}

func adminPanelText(stats pgrepo.Stats) string {
	return fmt.Sprintf(
		"🔧 Admin Panel\n\n👥 Total Users: %d\n💬 Active Chats: %d\n🚨 Total Reports: %d",
		stats.TotalProfiles, stats.ActiveChats, stats.TotalReports,
	)
}

func adminStatsText(stats pgrepo.Stats) string {
	return fmt.Sprintf("👥 %d users, %d active chats, %d reports", stats.TotalProfiles, stats.ActiveChats, stats.TotalReports)
}

func relayText(text string) string {
	return "💬 " + text
}

func tooFastToast(retryAfterSec int64) string {
	return fmt.Sprintf("Too many likes. Try again in %d seconds.", retryAfterSec)
}
