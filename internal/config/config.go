package config

import (
	pkgconfig "github.com/K-digital-backend-bootcamp/multi-fc-chat-service/pkg/config"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	Partitions int    `mapstructure:"partitions"`
}

type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenDuration int    `mapstructure:"token_duration"` // hours
	Issuer        string
}

type CacheConfig struct {
	RoomPrefix string `mapstructure:"room_prefix"`
	RoomTTL    int    `mapstructure:"room_ttl"` // seconds
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8084)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "chat_service")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/chat.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.partitions", 4)
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.token_duration", 24)
	v.SetDefault("auth.issuer", "chat-service")
	v.SetDefault("cache.room_prefix", "chat:room")
	v.SetDefault("cache.room_ttl", 300)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("database.max_idle_conns", "DB_MAX_IDLE_CONNS")
	v.BindEnv("database.max_open_conns", "DB_MAX_OPEN_CONNS")
	v.BindEnv("database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.partitions", "KAFKA_PARTITIONS")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_duration", "JWT_TOKEN_DURATION")
	v.BindEnv("auth.issuer", "JWT_ISSUER")
	v.BindEnv("cache.room_prefix", "CACHE_ROOM_PREFIX")
	v.BindEnv("cache.room_ttl", "CACHE_ROOM_TTL")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.pretty", "LOG_PRETTY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
