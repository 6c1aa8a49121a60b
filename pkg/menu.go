package pkg

// ParseMode selects the markup dialect for an outbound message.
type ParseMode string

const (
	ModePlain    ParseMode = ""
	ModeMarkdown ParseMode = "Markdown"
	ModeHTML     ParseMode = "HTML"
)

// Button is one inline keyboard button. Data is the opaque callback payload
// delivered back when the button is pressed.
type Button struct {
	Label string
	Data  string
}

// Menu is an inline keyboard: rows of buttons attached to a message.
type Menu struct {
	Rows [][]Button
}
