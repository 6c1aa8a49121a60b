package core

// messages.go collects every user-visible string in one place so the bot's
// voice can be tweaked without touching handler logic.

const (
	MsgWelcomeNewFmt = "👋 Welcome to MatruRaksha AI!\n\n" +
		"It looks like you haven't registered yet.\n\n" +
		"🆔 Your Telegram Chat ID: `%s`\n\n" +
		"Tap the button below to register as a new mother or use /register."

	MsgNoProfileLinked = "It looks like no mother profile is linked to this chat yet. Use /register to create one."

	MsgEnterName     = "Please enter your full name:"
	MsgEnterAge      = "Please enter your age (or type 'skip')."
	MsgEnterPhone    = "Please enter your phone number (or type 'skip')."
	MsgEnterDueDate  = "Please enter your due date in YYYY-MM-DD (or 'skip')."
	MsgEnterLocation = "Please enter your city/location (or 'skip')."
	MsgEnterGravida  = "Please enter gravida (number of pregnancies, or 'skip')."
	MsgEnterParity   = "Please enter parity (number of births, or 'skip')."
	MsgEnterBMI      = "Please enter BMI (e.g., 22.5, or 'skip')."

	MsgChooseLanguage  = "Choose your preferred language: English, Hindi, or Marathi. You can type the language name."
	MsgInvalidLanguage = "Please choose a valid language: English, Hindi, or Marathi."

	MsgProcessingRegistration   = "Processing your registration..."
	MsgRegistrationSaved        = "✅ Registration saved! Loading your dashboard..."
	MsgRegistrationFailed       = "⚠️ Could not save registration right now. Please try again later."
	MsgRegistrationCancelled    = "Registration cancelled. You can start again anytime with /start."
	MsgRegistrationNotConfirmed = "Registration not confirmed. You can update details or restart with /start."
	MsgFinishRegistrationFirst  = "Finish registration first or send /cancel."
	MsgNothingToCancel          = "No registration in progress. Use /start to see your dashboard."

	MsgProfileNotFound    = "⚠️ Could not find that profile. Please try again."
	MsgNoActiveProfile    = "⚠️ No active mother profile. Please register first."
	MsgNoProfileForUpload = "⚠️ No mother profile found. Use /register to add one before uploading reports."
	MsgStartUnavailable   = "⚠️ Something went wrong loading your profiles. Please try /start again."

	MsgUploadHint         = "Upload a PDF/image as a message."
	MsgSendDocument       = "Please send a PDF or image to upload."
	MsgUnsupportedFileFmt = "❌ Unsupported file type: %s. Please upload PDF or image files."
	MsgUploadReceivedFmt  = "📄 Received *%s*\n⏳ Uploading to your health records..."
	MsgUploadError        = "❌ Error uploading document. Please try again."
	MsgUploadedBackground = "✅ Document uploaded!\n\nAnalysis will continue in the background. Check back in a minute."

	MsgSummaryUnavailable = "⚠️ Unable to fetch latest summary right now. Please try again later."
	MsgNoDocumentsYet     = "📎 No documents uploaded yet."
	MsgSummaryClosing     = "💬 Ask me anything for personalized guidance based on these records."

	MsgRegisterPrompt = "Tap below to start the maternal profile registration flow."
	MsgFallbackHelp   = "I'm here to help. Use the menu buttons or type /start."

	MsgDashboardFooter = "Use the buttons below to view your health summary, upload documents, or switch between registered mothers."
)

// Button labels.
const (
	BtnHealthReports   = "📄 Health Reports"
	BtnSwitchProfiles  = "🔁 Switch Profiles"
	BtnUploadDocuments = "📎 Upload Documents"
	BtnRegisterAnother = "🆕 Register Another Mother"
	BtnHideProfiles    = "❌ Hide Profiles"
	BtnRegisterMother  = "🆕 Register Mother"
)

// Defaults applied to a finalized draft before persistence.
const (
	DefaultName  = "Unknown"
	DefaultPhone = "0000000000"
)
