package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me"

type MySQL struct {
	User            string
	Password        string
	Host            string
	Port            string
	Database        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

type Config struct {
	Env           string
	Port          string
	MySQL         MySQL
	RedisHost     string
	CacheTTL      time.Duration
	RabbitMQURL   string
	Exchange      string
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminEmail    string
	AdminPassword string
	CORSOrigin    string
	MaxImageBytes int64
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: no .env file loaded, relying on process environment")
	}

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnv("PORT", "3000"),
		MySQL: MySQL{
			User:            getEnv("MYSQL_USER", "root"),
			Password:        os.Getenv("MYSQL_PASSWORD"),
			Host:            getEnv("MYSQL_HOST", "127.0.0.1"),
			Port:            getEnv("MYSQL_PORT", "3306"),
			Database:        getEnv("MYSQL_DATABASE", "storefront"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			DialTimeout:     getDuration("DB_DIAL_TIMEOUT", 10*time.Second),
			ReadTimeout:     getDuration("DB_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDuration("DB_WRITE_TIMEOUT", 30*time.Second),
		},
		RedisHost:     os.Getenv("REDIS_HOST"),
		CacheTTL:      getDuration("CACHE_TTL", time.Minute),
		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		Exchange:      getEnv("RABBITMQ_EXCHANGE", "storefront.exchange"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		TokenTTL:      getDuration("TOKEN_TTL", 24*time.Hour),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@ecommerce.com"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		CORSOrigin:    getEnv("CORS_ORIGIN", "*"),
		MaxImageBytes: int64(getInt("MAX_IMAGE_BYTES", 5<<20)),
	}
}

// Validate rejects settings that are only acceptable on a developer machine.
func (c Config) Validate() error {
	if c.Env != "dev" && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set to a non-default value when APP_ENV is not dev")
	}
	return nil
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %d", k, v, d)
		return d
	}
	return n
}

func getDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, using %s", k, v, d)
		return d
	}
	return dur
}
