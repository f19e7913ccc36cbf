// Package config loads all process configuration once at startup.
// Components receive the resulting value through their constructors and
// never read the environment themselves.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Default path where the deployment mounts the Google service-account key.
// When the file is absent the GOOGLE_APPLICATION_CREDENTIALS fallback is used.
const secretMountPath = "/etc/secrets/google-credentials.json"

// Config holds every credential and knob the bot needs. It is built once in
// main and treated as read-only afterwards.
type Config struct {
	Port string

	// Meta webhook subscription handshake.
	VerifyToken string

	// Ledger (Google Sheets).
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string

	// Optional BigQuery mirror of the ledger. Disabled unless both are set.
	BigQueryProject string
	BigQueryDataset string

	// Extraction (Gemini).
	GeminiAPIKey string
	GeminiModel  string

	// Twilio — primary WhatsApp sender when all three are set.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	// Meta Cloud API — fallback WhatsApp sender.
	WhatsAppToken   string
	WhatsAppPhoneID string

	// Insert the missing Brazilian mobile "9" on the Meta send path.
	FixBrazilMobile bool
}

// Load reads a .env file when present and then the environment.
func Load() Config {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Port: getEnv("PORT", "5000"),

		VerifyToken: os.Getenv("VERIFY_TOKEN"),

		SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
		SheetName:       getEnv("SHEET_NAME", "Gastos"),
		CredentialsFile: credentialsFile(),

		BigQueryProject: os.Getenv("BQ_PROJECT"),
		BigQueryDataset: os.Getenv("BQ_DATASET"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFrom:       os.Getenv("TWILIO_WHATSAPP_FROM"),

		WhatsAppToken:   os.Getenv("WHATSAPP_TOKEN"),
		WhatsAppPhoneID: os.Getenv("WHATSAPP_PHONE_ID"),

		FixBrazilMobile: getEnv("PHONE_FIX_BR_MOBILE", "true") != "false",
	}
}

// TwilioConfigured reports whether the primary sender has every credential
// it needs.
func (c Config) TwilioConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
}

// MetaConfigured reports whether the fallback sender is usable.
func (c Config) MetaConfigured() bool {
	return c.WhatsAppToken != "" && c.WhatsAppPhoneID != ""
}

// MirrorConfigured reports whether the BigQuery ledger mirror is enabled.
func (c Config) MirrorConfigured() bool {
	return c.BigQueryProject != "" && c.BigQueryDataset != ""
}

func credentialsFile() string {
	if _, err := os.Stat(secretMountPath); err == nil {
		return secretMountPath
	}
	return os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
