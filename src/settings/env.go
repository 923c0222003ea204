package settings

import (
	"os"
	"strconv"
)

// -----------------------------------------------------------------------------
// AppSecrets holds process-level secrets read from the environment
// (populated from a .env file by the entrypoint). Separate from the
// user-editable settings.json.
// -----------------------------------------------------------------------------

type AppSecrets struct {
	SecretKey    string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMSProvider  string
	SMSAPIKey    string
}

// -----------------------------------------------------------------------------

// SecretsFromEnv reads AppSecrets from the current environment.
func SecretsFromEnv() AppSecrets {
	port := 587
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			port = p
		}
	}

	secretKey := os.Getenv("SECRET_KEY")
	if secretKey == "" {
		secretKey = "CHANGE_ME_SUPER_SECRET"
	}

	return AppSecrets{
		SecretKey:    secretKey,
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     port,
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),
		SMSProvider:  os.Getenv("SMS_PROVIDER"),
		SMSAPIKey:    os.Getenv("SMS_API_KEY"),
	}
}
