package domain

const (
	DefaultBaseURL              = "https://api.toolbelt.dev/v1"
	DefaultEntityID             = "default"
	DefaultCacheDirName         = ".toolbelt"
	DefaultOutputDirName        = "outputs"
	DefaultUserDataFileName     = "user_data.db"
	DefaultRemoteTimeoutSeconds = 30
	DefaultMetricsListenAddress = "127.0.0.1:9464"

	EnvAPIKey   = "TOOLBELT_API_KEY"
	EnvBaseURL  = "TOOLBELT_BASE_URL"
	EnvEntityID = "TOOLBELT_ENTITY_ID"
	EnvCacheDir = "TOOLBELT_CACHE_DIR"
)
