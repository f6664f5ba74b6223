package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Tolpa-999/PerfumBackend/pkg/db"
	"github.com/Tolpa-999/PerfumBackend/pkg/utils"

	userDB "github.com/Tolpa-999/PerfumBackend/pkg/db/account-user"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_ACCOUNT_USER_DB_USERNAME = "ACCOUNT_USER_DB_USERNAME"
	ENV_ACCOUNT_USER_DB_PASSWORD = "ACCOUNT_USER_DB_PASSWORD"
)

type config struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// DB configs
	DBConfigs struct {
		AccountUserDB db.DBConfigYaml `json:"account_user_db" yaml:"account_user_db"`
	} `json:"db_configs" yaml:"db_configs"`

	CleanupConfig struct {
		// grace period after the verification window closed before an
		// unverified account is removed
		DeleteUnverifiedUsersAfter time.Duration `json:"delete_unverified_users_after" yaml:"delete_unverified_users_after"`
	} `json:"cleanup_config" yaml:"cleanup_config"`
}

var (
	conf config

	accountUserDBService *userDB.AccountUserDBService
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
	accountUserDBService, err = userDB.NewAccountUserDBService(db.DBConfigFromYamlObj(conf.DBConfigs.AccountUserDB))
	if err != nil {
		panic(err)
	}
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_ACCOUNT_USER_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.AccountUserDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_ACCOUNT_USER_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.AccountUserDB.Password = dbPassword
	}
}
