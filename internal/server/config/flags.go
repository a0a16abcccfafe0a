package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5900")
//	-d string   PostgreSQL DSN
//	-u string   public base URL for links in outbound emails
//	-s string   access-token HMAC secret
//	-r string   refresh-token HMAC secret
//	-v string   verification-token HMAC secret
//	-t int      access token validity, minutes
//	-f int      refresh token validity, minutes
//	-k int      verification token validity, minutes
//	-p int      password-reset secret validity, minutes
//	-m string   SMTP host
//	-o int      SMTP port
//	-l string   SMTP user
//	-w string   SMTP password
//	-e string   From address for outbound mail
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers in minutes and then converted
//     to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-u", "-s", "-r", "-v", "-t", "-f", "-k", "-p", "-m", "-o", "-l", "-w", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PublicBaseURL, "u", config.PublicBaseURL, "public base URL")
	fs.StringVar(&config.AccessSecret, "s", config.AccessSecret, "access token secret")
	fs.StringVar(&config.RefreshSecret, "r", config.RefreshSecret, "refresh token secret")
	fs.StringVar(&config.VerifySecret, "v", config.VerifySecret, "verification token secret")

	accessValidity := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshValidity := fs.Int("f", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	verificationValidity := fs.Int("k", int(config.VerificationTokenValidityDuration.Minutes()), "verification_token_validity_duration (in minutes)")
	resetValidity := fs.Int("p", int(config.PasswordResetValidityDuration.Minutes()), "password_reset_validity_duration (in minutes)")

	fs.StringVar(&config.SMTPHost, "m", config.SMTPHost, "SMTP host")
	fs.IntVar(&config.SMTPPort, "o", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUser, "l", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "w", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.MailFrom, "e", config.MailFrom, "mail From address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessValidity) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshValidity) * time.Minute
	config.VerificationTokenValidityDuration = time.Duration(*verificationValidity) * time.Minute
	config.PasswordResetValidityDuration = time.Duration(*resetValidity) * time.Minute
}
