package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "TUBEBOOST"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv            = "TUBEBOOST_APP_ENV"
	EnvWooBaseURL        = "TUBEBOOST_WOOCOMMERCE_BASE_URL"
	EnvWooConsumerKey    = "TUBEBOOST_WOOCOMMERCE_CONSUMER_KEY"
	EnvWooConsumerSecret = "TUBEBOOST_WOOCOMMERCE_CONSUMER_SECRET"
)
