package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"` // local | dev | prod
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	Session    SessionConfig    `yaml:"session"`
	CSRF       CSRFConfig       `yaml:"csrf"`
	JWT        JWTConfig        `yaml:"jwt"`
	Admin      AdminConfig      `yaml:"admin"`
	Redis      RedisConfig      `yaml:"redis"`
	AMQP       AMQPConfig       `yaml:"amqp"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Crypto     CryptoConfig     `yaml:"crypto"`
	Migrations MigrationsConfig `yaml:"migrations"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env:"DB_NAME" env-required:"true"`
}

// DSN собирает строку подключения; extra добавляется к параметрам запроса
func (d DatabaseConfig) DSN(extra string) string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
	if extra != "" {
		dsn += "&" + extra
	}
	return dsn
}

// SessionConfig настройка cookie сессии
type SessionConfig struct {
	Name         string `yaml:"name" env-default:"ld_session"`
	MaxAge       int    `yaml:"max_age" env-default:"604800"` // секунды
	CookieSecure bool   `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
	Secret       string `yaml:"-" env:"SESSION_SECRET" env-required:"true"`
}

type CSRFConfig struct {
	Enabled bool   `yaml:"enabled" env-default:"true"`
	Key     string `yaml:"-" env:"CSRF_KEY"` // 32 байта
}

// JWTConfig настройка jwt
type JWTConfig struct {
	Secret   string `yaml:"-" env:"JWT_SECRET" env-required:"true"`
	TokenTTL int    `yaml:"token_ttl" env-default:"60"` // минуты
}

// AdminConfig - учетка администратора, создается при старте, если ее нет
type AdminConfig struct {
	Username string `yaml:"username" env-default:"admin"`
	Password string `yaml:"-" env:"ADMIN_PASSWORD"`
}

// RedisConfig - пустой адрес означает хранение сессии в cookie
type RedisConfig struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

// AMQPConfig - пустой url отключает публикацию событий
type AMQPConfig struct {
	URL      string `yaml:"url" env:"AMQP_URL"`
	Exchange string `yaml:"exchange" env-default:"shop.events"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"5"`
}

type CryptoConfig struct {
	IntentTTL time.Duration `yaml:"intent_ttl" env-default:"30m"`
}

type MigrationsConfig struct {
	Path  string `yaml:"path" env-default:"./migrations"`
	Table string `yaml:"table" env-default:"migrations"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	// .env необязателен, переменные могут прийти из окружения
	_ = godotenv.Load()

	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	return MustLoadByPath(configPath)
}

// fetchConfigPath читает -config; флаги команды должны быть объявлены до вызова MustLoad
func fetchConfigPath() string {
	var path string

	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

func MustLoadByPath(configPath string) *Config {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}
