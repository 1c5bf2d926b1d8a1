package model

// Setting is a raw key/value row. Application code uses AppSettings instead.
type Setting struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Key   string `json:"key" gorm:"column:key;uniqueIndex;size:191;not null"`
	Value string `json:"value" gorm:"type:text;not null"`
}

// SettingKeyOpenAIAPIKey stores the AI provider credential.
const SettingKeyOpenAIAPIKey = "openai_api_key"

// SettingKeyRegistrations counts every registration ever made. It never
// decreases, so deleting users does not reopen admin seats.
const SettingKeyRegistrations = "registrations_total"

// AppSettings is the typed view over the settings table.
type AppSettings struct {
	OpenAIAPIKey string
}
