package config

const EnvPrefix = "SEEDER"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var validDrivers = []string{DriverMongo, DriverPostgres, DriverSQLite, DriverMemory}

const (
	EnvAppEnv      = "SEEDER_APP_ENV"
	EnvLogLevel    = "SEEDER_LOG_LEVEL"
	EnvStoreDriver = "SEEDER_STORE_DRIVER"
	EnvMongoURI    = "SEEDER_MONGO_URI"
	EnvMongoDB     = "SEEDER_MONGO_DB"
	EnvDBDSN       = "SEEDER_DB_DSN"
	EnvDBHost      = "SEEDER_DB_HOST"
	EnvDBUser      = "SEEDER_DB_USER"
	EnvDBName      = "SEEDER_DB_NAME"
	EnvSQLitePath  = "SEEDER_SQLITE_PATH"
	EnvOrders      = "SEEDER_ORDERS"
	EnvReviews     = "SEEDER_REVIEWS"
	EnvBatchSize   = "SEEDER_BATCH_SIZE"
	EnvWindowStart = "SEEDER_WINDOW_START"
	EnvWindowEnd   = "SEEDER_WINDOW_END"
	EnvRandomSeed  = "SEEDER_RANDOM_SEED"
	EnvMaxItems    = "SEEDER_MAX_ITEMS"
	EnvRedisURL    = "SEEDER_REDIS_URL"
	EnvBcryptCost  = "SEEDER_BCRYPT_COST"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
