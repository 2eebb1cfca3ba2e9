package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var loadConfigOnce sync.Once
var configInstance AppConfig

func LoadConfig() AppConfig {
	loadConfigOnce.Do(func() {
		viper.SetEnvPrefix("shopfloor_console")
		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.SetConfigName("console")
		viper.AddConfigPath("config")
		viper.AddConfigPath("/config")
		if err := viper.ReadInConfig(); err != nil {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
		viper.SetDefault("backend.timeout", "30s")
		viper.SetDefault("server.addr", ":3000")
		viper.SetDefault("cache.kind", "ristretto")
		viper.SetDefault("operator.poll_interval", "15s")
		viper.SetDefault("refresh.dashboard_schedule", "@every 1m")
		viper.SetDefault("refresh.analytics_schedule", "@every 5m")
		viper.SetDefault("storage.path", "shopfloor-console.db")
		viper.SetDefault("dashboard.default_timezone", "UTC")
		configInstance = AppConfig{
			General: GeneralConfig{
				LogLevel: viper.GetString("general.log_level"),
			},
			Backend: BackendConfig{
				BaseURL: viper.GetString("backend.base_url"),
				Timeout: viper.GetDuration("backend.timeout"),
			},
			Server: ServerConfig{
				Addr:           viper.GetString("server.addr"),
				AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
			},
			Cache: CacheConfig{
				Kind: viper.GetString("cache.kind"),
				Redis: RedisConfig{
					Addr:     viper.GetString("cache.redis.addr"),
					Password: viper.GetString("cache.redis.password"),
					DB:       viper.GetInt("cache.redis.db"),
				},
			},
			Operator: OperatorConfig{
				PollInterval: viper.GetDuration("operator.poll_interval"),
				Machines:     viper.GetStringSlice("operator.machines"),
			},
			Refresh: RefreshConfig{
				DashboardSchedule: viper.GetString("refresh.dashboard_schedule"),
				AnalyticsSchedule: viper.GetString("refresh.analytics_schedule"),
			},
			MQTTClient: MQTTClientConfig{
				Enabled:  viper.GetBool("mqtt_client.enabled"),
				Broker:   viper.GetString("mqtt_client.broker"),
				ClientID: viper.GetString("mqtt_client.client_id"),
				Username: viper.GetString("mqtt_client.username"),
				Password: viper.GetString("mqtt_client.password"),
			},
			Storage: StorageConfig{
				Path: viper.GetString("storage.path"),
			},
			Dashboard: DashboardConfig{
				DefaultTimezone: viper.GetString("dashboard.default_timezone"),
			},
		}
	})

	return configInstance
}

type AppConfig struct {
	General    GeneralConfig
	Backend    BackendConfig
	Server     ServerConfig
	Cache      CacheConfig
	Operator   OperatorConfig
	Refresh    RefreshConfig
	MQTTClient MQTTClientConfig
	Storage    StorageConfig
	Dashboard  DashboardConfig
}

type GeneralConfig struct {
	LogLevel string
}

// BackendConfig points the console at the scheduling backend it fronts.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

type CacheConfig struct {
	Kind  string
	Redis RedisConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// OperatorConfig lists the machines this kiosk instance serves and how
// often their queues are re-polled.
type OperatorConfig struct {
	PollInterval time.Duration
	Machines     []string
}

type RefreshConfig struct {
	DashboardSchedule string
	AnalyticsSchedule string
}

type MQTTClientConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
}

type StorageConfig struct {
	Path string
}

type DashboardConfig struct {
	DefaultTimezone string
}
