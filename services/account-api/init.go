package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/Tolpa-999/PerfumBackend/pkg/apihelpers"
	"github.com/Tolpa-999/PerfumBackend/pkg/db"
	emailsending "github.com/Tolpa-999/PerfumBackend/pkg/messaging/email-sending"
	emailtemplates "github.com/Tolpa-999/PerfumBackend/pkg/messaging/email-templates"
	smtpclient "github.com/Tolpa-999/PerfumBackend/pkg/messaging/smtp-client"
	usermanagement "github.com/Tolpa-999/PerfumBackend/pkg/user-management"
	"github.com/Tolpa-999/PerfumBackend/pkg/user-management/pwhash"
	"github.com/Tolpa-999/PerfumBackend/pkg/utils"

	userDB "github.com/Tolpa-999/PerfumBackend/pkg/db/account-user"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_ACCOUNT_USER_DB_USERNAME = "ACCOUNT_USER_DB_USERNAME"
	ENV_ACCOUNT_USER_DB_PASSWORD = "ACCOUNT_USER_DB_PASSWORD"

	ENV_ACCOUNT_USER_JWT_SIGN_KEY = "ACCOUNT_USER_JWT_SIGN_KEY"

	ENV_SMTP_USERNAME = "SMTP_USERNAME"
	ENV_SMTP_PASSWORD = "SMTP_PASSWORD"
)

type AccountApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`

		// Mutual TLS configs
		MTLS struct {
			Use              bool                        `json:"use" yaml:"use"`
			CertificatePaths apihelpers.CertificatePaths `json:"certificate_paths" yaml:"certificate_paths"`
		} `json:"mtls" yaml:"mtls"`
	} `json:"gin_config" yaml:"gin_config"`

	// user management configs
	UserManagementConfig struct {
		JWTSignKey string `json:"jwt_sign_key" yaml:"jwt_sign_key"`

		AccessTokenTTL       string `json:"access_token_ttl" yaml:"access_token_ttl"`
		RefreshTokenTTL      string `json:"refresh_token_ttl" yaml:"refresh_token_ttl"`
		VerificationTokenTTL string `json:"verification_token_ttl" yaml:"verification_token_ttl"`
		ResetTokenTTL        string `json:"reset_token_ttl" yaml:"reset_token_ttl"`

		MaxLoginAttempts int64  `json:"max_login_attempts" yaml:"max_login_attempts"`
		LockDuration     string `json:"lock_duration" yaml:"lock_duration"`

		PWHashingCost int `json:"pw_hashing_cost" yaml:"pw_hashing_cost"`

		UseSecureCookie bool `json:"use_secure_cookie" yaml:"use_secure_cookie"`
	} `json:"user_management_config" yaml:"user_management_config"`

	// DB configs
	DBConfigs struct {
		AccountUserDB db.DBConfigYaml `json:"account_user_db" yaml:"account_user_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// Outgoing email configs
	EmailConfigs struct {
		SmtpServers          smtpclient.SmtpServerList `json:"smtp_servers" yaml:"smtp_servers"`
		TemplateOverrideDir  string                    `json:"template_override_dir" yaml:"template_override_dir"`
		EmailVerificationURL string                    `json:"email_verification_url" yaml:"email_verification_url"`
		PasswordResetURL     string                    `json:"password_reset_url" yaml:"password_reset_url"`
	} `json:"email_configs" yaml:"email_configs"`
}

var (
	conf AccountApiConfig

	accountUserDBService *userDB.AccountUserDBService
	userService          *usermanagement.Service

	refreshTokenTTL time.Duration
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(conf.Logging)

	// Override secrets from environment variables
	secretsOverride()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	if conf.UserManagementConfig.PWHashingCost > 0 {
		pwhash.InitHashingCost(conf.UserManagementConfig.PWHashingCost)
	}

	initUserService()
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_ACCOUNT_USER_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.AccountUserDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_ACCOUNT_USER_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.AccountUserDB.Password = dbPassword
	}

	if jwtSignKey := os.Getenv(ENV_ACCOUNT_USER_JWT_SIGN_KEY); jwtSignKey != "" {
		conf.UserManagementConfig.JWTSignKey = jwtSignKey
	}

	if smtpUsername := os.Getenv(ENV_SMTP_USERNAME); smtpUsername != "" {
		for i := range conf.EmailConfigs.SmtpServers.Servers {
			conf.EmailConfigs.SmtpServers.Servers[i].SetUsername(smtpUsername)
		}
	}

	if smtpPassword := os.Getenv(ENV_SMTP_PASSWORD); smtpPassword != "" {
		for i := range conf.EmailConfigs.SmtpServers.Servers {
			conf.EmailConfigs.SmtpServers.Servers[i].SetPassword(smtpPassword)
		}
	}
}

func initDBs() {
	var err error
	accountUserDBService, err = userDB.NewAccountUserDBService(db.DBConfigFromYamlObj(conf.DBConfigs.AccountUserDB))
	if err != nil {
		slog.Error("Error connecting to Account User DB", slog.String("error", err.Error()))
		panic(err)
	}
}

func initUserService() {
	if conf.UserManagementConfig.JWTSignKey == "" {
		panic("JWT sign key not set")
	}

	ttls := usermanagement.TokenTTLs{
		AccessToken:       parseTTL(conf.UserManagementConfig.AccessTokenTTL),
		RefreshToken:      parseTTL(conf.UserManagementConfig.RefreshTokenTTL),
		VerificationToken: parseTTL(conf.UserManagementConfig.VerificationTokenTTL),
		ResetToken:        parseTTL(conf.UserManagementConfig.ResetTokenTTL),
	}
	if ttls.RefreshToken <= 0 {
		ttls.RefreshToken = usermanagement.DEFAULT_REFRESH_TOKEN_TTL
	}

	if err := emailtemplates.CheckAllTemplatesParsable(conf.EmailConfigs.TemplateOverrideDir); err != nil {
		panic(err)
	}

	smtpClients, err := smtpclient.NewSmtpClients(conf.EmailConfigs.SmtpServers)
	if err != nil {
		slog.Error("Error setting up SMTP clients", slog.String("error", err.Error()))
		panic(err)
	}

	emailSender := emailsending.NewEmailSender(smtpClients, emailsending.EmailSenderConfig{
		TemplateOverrideDir: conf.EmailConfigs.TemplateOverrideDir,
		LinkValidity: map[string]time.Duration{
			emailtemplates.MESSAGE_TYPE_EMAIL_VERIFICATION: ttls.VerificationToken,
			emailtemplates.MESSAGE_TYPE_PASSWORD_RESET:     ttls.ResetToken,
		},
	})

	userService = usermanagement.NewService(
		accountUserDBService,
		emailSender,
		usermanagement.ServiceConfig{
			TokenSignKey: conf.UserManagementConfig.JWTSignKey,
			TTLs:         ttls,
			Lockout: usermanagement.LockoutConfig{
				MaxLoginAttempts: conf.UserManagementConfig.MaxLoginAttempts,
				LockDuration:     parseTTL(conf.UserManagementConfig.LockDuration),
			},
			EmailVerificationURL: conf.EmailConfigs.EmailVerificationURL,
			PasswordResetURL:     conf.EmailConfigs.PasswordResetURL,
		},
	)

	refreshTokenTTL = ttls.RefreshToken
}

// parseTTL returns zero for an unset value so the service falls back to
// its defaults; a malformed value is a config error and panics.
func parseTTL(value string) time.Duration {
	if value == "" {
		return 0
	}
	d, err := utils.ParseDurationString(value)
	if err != nil {
		panic(err)
	}
	return d
}
