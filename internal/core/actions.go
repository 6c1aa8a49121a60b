package core

import "strings"

// ActionKind enumerates every UI action the bot understands. Inbound callback
// payloads are parsed into this closed set at the protocol edge; handlers
// switch exhaustively over it instead of inspecting strings.
type ActionKind int

const (
	ActionShowSummary ActionKind = iota
	ActionOpenSwitch
	ActionCloseSwitch
	ActionUploadHint
	ActionBeginRegistration
	ActionSwitchProfile
	ActionConfirmRegistration
)

// Action is one tagged UI action. ProfileID is set for ActionSwitchProfile;
// Confirmed for ActionConfirmRegistration.
type Action struct {
	Kind      ActionKind
	ProfileID string
	Confirmed bool
}

// EventKind tags an inbound chat event.
type EventKind int

const (
	EventStart EventKind = iota
	EventText
	EventCallback
	EventDocument
	EventCancel
)

// Attachment is a platform file reference. For photos the transport adapter
// has already selected the largest variant.
type Attachment struct {
	FileID   string
	FileName string
	Photo    bool
}

// Event is one normalized inbound event for a session. MessageID, when set,
// identifies the message whose button triggered the event, so the handler
// can edit it in place instead of sending a new one.
type Event struct {
	SessionKey string
	Kind       EventKind
	MessageID  string
	Text       string
	Action     *Action
	Attachment *Attachment
}

// Callback payload vocabulary shared between the menu builders and the
// inbound parser.
const (
	CallbackSummary       = "action_summary"
	CallbackOpenSwitch    = "action_open_switch"
	CallbackCloseSwitch   = "action_close_switch"
	CallbackUploadHint    = "action_upload_hint"
	CallbackRegister      = "action_register"
	CallbackRegisterNew   = "register_new"
	CallbackSwitchPrefix  = "switch_mother_"
	CallbackConfirmPrefix = "confirm_"
	CallbackLangPrefix    = "lang_"
)

// confirmTokens is the legacy affirmative vocabulary, retained only as
// inbound normalization; internally confirmation is a boolean action.
var confirmTokens = map[string]bool{
	"yes": true, "accept": true, "ok": true, "confirm": true, "y": true,
}

// ParseCallback maps a raw callback payload to an Action. Language payloads
// (lang_*) are not actions — they are wizard input and flow through the text
// path — so they return false here, as does anything unrecognized.
func ParseCallback(data string) (Action, bool) {
	switch data {
	case CallbackSummary:
		return Action{Kind: ActionShowSummary}, true
	case CallbackOpenSwitch:
		return Action{Kind: ActionOpenSwitch}, true
	case CallbackCloseSwitch:
		return Action{Kind: ActionCloseSwitch}, true
	case CallbackUploadHint:
		return Action{Kind: ActionUploadHint}, true
	case CallbackRegister, CallbackRegisterNew:
		return Action{Kind: ActionBeginRegistration}, true
	}
	if id, ok := strings.CutPrefix(data, CallbackSwitchPrefix); ok && id != "" {
		return Action{Kind: ActionSwitchProfile, ProfileID: id}, true
	}
	if tok, ok := strings.CutPrefix(data, CallbackConfirmPrefix); ok {
		return Action{Kind: ActionConfirmRegistration, Confirmed: confirmTokens[strings.ToLower(tok)]}, true
	}
	return Action{}, false
}
