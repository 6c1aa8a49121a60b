package pkg

import (
	"encoding/json"
	"time"
)

// LanguageCode is the closed set of supported interface languages.
type LanguageCode string

const (
	LangEnglish LanguageCode = "en"
	LangHindi   LanguageCode = "hi"
	LangMarathi LanguageCode = "mr"
)

// Profile represents one registered mother. A chat session may own several
// profiles; profiles are created at registration completion and are read-only
// afterwards from the bot's perspective.
type Profile struct {
	ID                string       `json:"id"`
	SessionKey        string       `json:"telegram_chat_id"`
	Name              string       `json:"name"`
	Age               *int         `json:"age,omitempty"`
	Phone             string       `json:"phone"`
	DueDate           *string      `json:"due_date,omitempty"`
	Location          *string      `json:"location,omitempty"`
	Gravida           *int         `json:"gravida,omitempty"`
	Parity            *int         `json:"parity,omitempty"`
	BMI               *float64     `json:"bmi,omitempty"`
	PreferredLanguage LanguageCode `json:"preferred_language"`
	CreatedAt         time.Time    `json:"created_at"`
}

// RegistrationPayload is the finalized wizard output sent to the registration
// API (and, on fallback, written directly to the store). Fields the user
// skipped are nil; name, phone and language carry their documented defaults.
type RegistrationPayload struct {
	Name              string   `json:"name"`
	Age               *int     `json:"age"`
	Phone             string   `json:"phone"`
	DueDate           *string  `json:"due_date"`
	Location          *string  `json:"location"`
	Gravida           *int     `json:"gravida"`
	Parity            *int     `json:"parity"`
	BMI               *float64 `json:"bmi"`
	PreferredLanguage string   `json:"preferred_language"`
	SessionKey        string   `json:"telegram_chat_id"`
}

// AnalysisStatus tracks the lifecycle of a report analysis. The bot only ever
// sets "processing"; later transitions belong to the analysis backend.
type AnalysisStatus string

const (
	AnalysisProcessing AnalysisStatus = "processing"
	AnalysisDone       AnalysisStatus = "done"
	AnalysisFailed     AnalysisStatus = "failed"
)

// UploadRecord is the stored metadata for one uploaded medical report.
type UploadRecord struct {
	ID              string         `json:"id"`
	ProfileID       string         `json:"mother_id"`
	SessionKey      string         `json:"telegram_chat_id"`
	FileName        string         `json:"file_name"`
	FileType        string         `json:"file_type"`
	FileURL         string         `json:"file_url"`
	UploadedAt      time.Time      `json:"uploaded_at"`
	AnalysisStatus  AnalysisStatus `json:"analysis_status"`
	AnalysisSummary *string        `json:"analysis_summary,omitempty"`
}

// TimelineEvent is one entry of the remote summary's recent_timeline. The
// backend is loose about field names, so all known aliases are decoded.
type TimelineEvent struct {
	EventDate    string `json:"event_date"`
	Date         string `json:"date"`
	CreatedAt    string `json:"created_at"`
	Summary      string `json:"summary"`
	EventSummary string `json:"event_summary"`
}

// When returns the first populated date alias.
func (e TimelineEvent) When() string {
	if e.EventDate != "" {
		return e.EventDate
	}
	if e.Date != "" {
		return e.Date
	}
	return e.CreatedAt
}

// Text returns the first populated summary alias, defaulting to "Update".
func (e TimelineEvent) Text() string {
	if e.Summary != "" {
		return e.Summary
	}
	if e.EventSummary != "" {
		return e.EventSummary
	}
	return "Update"
}

// KeyMemory is one key/value note from the remote summary.
type KeyMemory struct {
	MemoryKey   string `json:"memory_key"`
	MemoryValue string `json:"memory_value"`
}

// StringList decodes a JSON value that may be either a single string or an
// array of strings. The summary backend emits both shapes.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = StringList(many)
	return nil
}

// SummaryOverview is the nested "summary" object of the remote payload.
type SummaryOverview struct {
	Recommendations StringList `json:"recommendations"`
	RiskFlags       StringList `json:"risk_flags"`
	Risks           StringList `json:"risks"`
}

// Flags returns risk_flags, falling back to the legacy "risks" alias.
func (o SummaryOverview) Flags() StringList {
	if len(o.RiskFlags) > 0 {
		return o.RiskFlags
	}
	return o.Risks
}

// SummaryPayload is the remote summary API response body.
type SummaryPayload struct {
	RecentTimeline []TimelineEvent  `json:"recent_timeline"`
	KeyMemories    []KeyMemory      `json:"key_memories"`
	Overview       *SummaryOverview `json:"summary"`
}

// AnalyzeRequest is the body POSTed to the report analysis endpoint.
type AnalyzeRequest struct {
	MotherID string `json:"mother_id"`
	ReportID string `json:"report_id"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type"`
}

// AnalysisResult is the analysis endpoint's response on success.
type AnalysisResult struct {
	RiskLevel string   `json:"risk_level"`
	Concerns  []string `json:"concerns"`
}
