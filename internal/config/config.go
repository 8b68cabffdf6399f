package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Bidding  BiddingConfig  `mapstructure:"bidding"`
	Leader   LeaderConfig   `mapstructure:"leader"`
	Instance InstanceConfig `mapstructure:"instance"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type RealtimeConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// BiddingConfig carries the engine tunables. The cache TTL and both
// extension durations are policy knobs, not hard constants.
type BiddingConfig struct {
	CacheTTL           time.Duration `mapstructure:"cache_ttl"`
	ExtensionThreshold time.Duration `mapstructure:"extension_threshold"`
	ExtensionWindow    time.Duration `mapstructure:"extension_window"`
	MaxExtensions      int           `mapstructure:"max_extensions"`
	LockWait           time.Duration `mapstructure:"lock_wait"`
	CommitRetries      int           `mapstructure:"commit_retries"`
}

type LeaderConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("realtime.port", 8081)
	viper.SetDefault("realtime.host", "0.0.0.0")
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("mysql.dsn", "auction_user:auction_pass@tcp(localhost:3306)/auction_db?parseTime=true")
	viper.SetDefault("mysql.max_open_conns", 25)
	viper.SetDefault("mysql.max_idle_conns", 10)
	viper.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("bidding.cache_ttl", time.Hour)
	viper.SetDefault("bidding.extension_threshold", 5*time.Minute)
	viper.SetDefault("bidding.extension_window", 5*time.Minute)
	viper.SetDefault("bidding.max_extensions", 12)
	viper.SetDefault("bidding.lock_wait", 2*time.Second)
	viper.SetDefault("bidding.commit_retries", 3)
	viper.SetDefault("leader.ttl", 30*time.Second)
	viper.SetDefault("instance.id", "gateway-1")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/auction-platform/")

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.host", "SERVER_HOST")
	viper.BindEnv("realtime.port", "REALTIME_PORT")
	viper.BindEnv("realtime.host", "REALTIME_HOST")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.max_open_conns", "MYSQL_MAX_OPEN_CONNS")
	viper.BindEnv("mysql.max_idle_conns", "MYSQL_MAX_IDLE_CONNS")
	viper.BindEnv("mysql.conn_max_lifetime", "MYSQL_CONN_MAX_LIFETIME")
	viper.BindEnv("bidding.cache_ttl", "BIDDING_CACHE_TTL")
	viper.BindEnv("bidding.extension_threshold", "BIDDING_EXTENSION_THRESHOLD")
	viper.BindEnv("bidding.extension_window", "BIDDING_EXTENSION_WINDOW")
	viper.BindEnv("bidding.max_extensions", "BIDDING_MAX_EXTENSIONS")
	viper.BindEnv("bidding.lock_wait", "BIDDING_LOCK_WAIT")
	viper.BindEnv("bidding.commit_retries", "BIDDING_COMMIT_RETRIES")
	viper.BindEnv("leader.ttl", "LEADER_TTL")
	viper.BindEnv("instance.id", "INSTANCE_ID")

	// Config file is optional; defaults and env vars cover everything.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
