package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SMSUnconfiguredSID is the placeholder account SID that switches SMS into simulation mode.
const SMSUnconfiguredSID = "YOUR_TWILIO_SID"

// Config holds application level configuration loaded from file and environment.
type Config struct {
	Server struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"server"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
	Database struct {
		Driver string `mapstructure:"driver"`
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
		Required  bool   `mapstructure:"required"`
	} `mapstructure:"auth"`
	Bootstrap struct {
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Role     string `mapstructure:"role"`
	} `mapstructure:"bootstrap"`
	Mail struct {
		Host     string        `mapstructure:"host"`
		Port     int           `mapstructure:"port"`
		Username string        `mapstructure:"username"`
		Password string        `mapstructure:"password"`
		From     string        `mapstructure:"from"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"mail"`
	SMS struct {
		AccountSID string        `mapstructure:"account_sid"`
		AuthToken  string        `mapstructure:"auth_token"`
		From       string        `mapstructure:"from"`
		Timeout    time.Duration `mapstructure:"timeout"`
	} `mapstructure:"sms"`
	Archive struct {
		Bucket    string `mapstructure:"bucket"`
		QueueName string `mapstructure:"queue_name"`
		Region    string `mapstructure:"region"`
		Endpoint  string `mapstructure:"endpoint"`
	} `mapstructure:"archive"`
	Events struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"events"`
	Swagger struct {
		Host string `mapstructure:"host"`
	} `mapstructure:"swagger"`
}

// SMSConfigured reports whether real SMS credentials were supplied.
func (c *Config) SMSConfigured() bool {
	return c.SMS.AccountSID != "" && c.SMS.AccountSID != SMSUnconfiguredSID
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "" || c.Server.Env == "development"
}

var keys = []string{
	"server.port", "server.env",
	"log.level",
	"database.driver", "database.dsn",
	"redis.addr", "redis.password", "redis.db",
	"auth.jwt_secret", "auth.required",
	"bootstrap.username", "bootstrap.password", "bootstrap.role",
	"mail.host", "mail.port", "mail.username", "mail.password", "mail.from", "mail.timeout",
	"sms.account_sid", "sms.auth_token", "sms.from", "sms.timeout",
	"archive.bucket", "archive.queue_name", "archive.region", "archive.endpoint",
	"events.brokers", "events.topic",
	"swagger.host",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "user:password@tcp(localhost:3306)/medscan_pro?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.jwt_secret", "change-me")
	v.SetDefault("auth.required", false)
	v.SetDefault("bootstrap.username", "admin")
	v.SetDefault("bootstrap.password", "1234")
	v.SetDefault("bootstrap.role", "Chief MD")
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.timeout", 15*time.Second)
	v.SetDefault("sms.account_sid", SMSUnconfiguredSID)
	v.SetDefault("sms.auth_token", "YOUR_TWILIO_AUTH_TOKEN")
	v.SetDefault("sms.from", "+1234567890")
	v.SetDefault("sms.timeout", 15*time.Second)
	v.SetDefault("events.topic", "medscan.audit")
}

// Load builds Config from config.yaml (optional) and MEDSCAN_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MEDSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Comma separated env values are not split by Unmarshal.
	if len(cfg.Events.Brokers) == 1 && strings.Contains(cfg.Events.Brokers[0], ",") {
		cfg.Events.Brokers = strings.Split(cfg.Events.Brokers[0], ",")
	}
	return cfg, nil
}
