package config

// EnvPrefix is passed to envconfig; individual fields carry full names.
const EnvPrefix = "CARTLOOM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CARTLOOM_DB_DSN"
	EnvDBHost = "CARTLOOM_DB_HOST"
	EnvDBUser = "CARTLOOM_DB_USER"
	EnvDBName = "CARTLOOM_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
