package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
	"github.com/dmitrijs2005/authkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	Addr          string `json:"addr"`
	DatabaseDSN   string `json:"database_dsn"`
	PublicBaseURL string `json:"public_base_url"`

	AccessSecret  string `json:"access_secret"`
	RefreshSecret string `json:"refresh_secret"`
	VerifySecret  string `json:"verify_secret"`

	AccessTokenValidityDuration       timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      timex.Duration `json:"refresh_token_validity_duration"`
	VerificationTokenValidityDuration timex.Duration `json:"verification_token_validity_duration"`
	PasswordResetValidityDuration     timex.Duration `json:"password_reset_validity_duration"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUser     string `json:"smtp_user"`
	SMTPPassword string `json:"smtp_password"`
	MailFrom     string `json:"mail_from"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.Addr = c.Addr
	config.DatabaseDSN = c.DatabaseDSN
	config.PublicBaseURL = c.PublicBaseURL
	config.AccessSecret = c.AccessSecret
	config.RefreshSecret = c.RefreshSecret
	config.VerifySecret = c.VerifySecret
	config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	config.VerificationTokenValidityDuration = c.VerificationTokenValidityDuration.Duration
	config.PasswordResetValidityDuration = c.PasswordResetValidityDuration.Duration
	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUser = c.SMTPUser
	config.SMTPPassword = c.SMTPPassword
	config.MailFrom = c.MailFrom
}
