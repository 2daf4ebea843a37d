// Ininicializing common application configuration
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Rabbit    RabbitConfig    `mapstructure:"rabbit"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

type ServerConfig struct {
	AppVersion  string        `mapstructure:"app_version"`
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Env         string        `mapstructure:"environment"`
	Mode        string        `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// Настройки пула соединений
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	Enabled  bool   `mapstructure:"enabled"`
}

type RabbitConfig struct {
	URL       string `mapstructure:"url"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	QueueName string `mapstructure:"queue_name"`
}

type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// SchedulerConfig holds the cadences of the recurring tasks. AlertInterval and
// CountdownInterval run independently.
type SchedulerConfig struct {
	AlertInterval     time.Duration `mapstructure:"alert_interval"`
	CountdownInterval time.Duration `mapstructure:"countdown_interval"`
	SnapshotRefresh   time.Duration `mapstructure:"snapshot_refresh"`
	Tolerance         time.Duration `mapstructure:"tolerance"`
}

type NotifyConfig struct {
	BannerTTL       time.Duration `mapstructure:"banner_ttl"`
	NativeTimeout   time.Duration `mapstructure:"native_timeout"`
	NativeRetries   int           `mapstructure:"native_retries"`
	Audio           string        `mapstructure:"audio"`  // "bell" or "none"
	Broker          string        `mapstructure:"broker"` // "rabbitmq", "kafka", both comma separated, or "none"
	PersistNotified bool          `mapstructure:"persist_notified"`
	NotifiedTTL     time.Duration `mapstructure:"notified_ttl"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	viperInstance.SetEnvPrefix("showcaller")
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperInstance.AutomaticEnv()

	setDefaults(viperInstance)

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects a firing window that a tick can step over. The window
// around a trigger is 2*Tolerance wide and must be wider than AlertInterval.
func (c *SchedulerConfig) Validate() error {
	if c.AlertInterval <= 0 {
		return fmt.Errorf("scheduler.alert_interval must be positive, got %s", c.AlertInterval)
	}
	if 2*c.Tolerance <= c.AlertInterval {
		return fmt.Errorf("scheduler.tolerance %s is too small for alert_interval %s: calls could be missed",
			c.Tolerance, c.AlertInterval)
	}
	return nil
}

// setDefaults устанавливает значения по умолчанию
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.app_version", "1.0.0")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "showcaller")
	v.SetDefault("database.dbname", "showcaller")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.pool_timeout", 4*time.Second)

	v.SetDefault("telegram.enabled", false)

	v.SetDefault("rabbit.queue_name", "show_calls")
	v.SetDefault("kafka.topic", "show-calls")

	v.SetDefault("scheduler.alert_interval", 5*time.Second)
	v.SetDefault("scheduler.countdown_interval", 60*time.Second)
	v.SetDefault("scheduler.snapshot_refresh", 15*time.Second)
	v.SetDefault("scheduler.tolerance", 60*time.Second)

	v.SetDefault("notify.banner_ttl", 5*time.Second)
	v.SetDefault("notify.native_timeout", 10*time.Second)
	v.SetDefault("notify.native_retries", 2)
	v.SetDefault("notify.audio", "bell")
	v.SetDefault("notify.broker", "none")
	v.SetDefault("notify.persist_notified", false)
	v.SetDefault("notify.notified_ttl", 24*time.Hour)
}

// DSN возвращает строку для подключения к БД
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// AMQPURL returns the explicit URL or builds one from the parts.
func (c *RabbitConfig) AMQPURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", c.Username, c.Password, c.Host, c.Port)
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
