package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv              = "DASH_APP_ENV"
	EnvPort                = "DASH_APP_PORT"
	EnvRedisURL            = "DASH_REDIS_URL"
	EnvEventStoreEndpoint  = "DASH_EVENT_STORE_ENDPOINT"
	EnvHistoricalMinDate   = "DASH_HISTORICAL_MIN_DATE"
	EnvHistoricalLiveStart = "DASH_HISTORICAL_LIVE_START"
	EnvHistoricalCutover   = "DASH_HISTORICAL_CUTOVER"
)
