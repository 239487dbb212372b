package config

import (
	"flag"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	DatabaseDSN string `env:"DATABASE_URI"`

	// HTTP
	BaseURL     string        `env:"BASE_URL"`
	EnableHTTPS bool          `env:"ENABLE_HTTPS"`
	AuthSecret  string        `env:"AUTH_SECRET"`
	CSRFKey     string        `env:"CSRF_KEY"` // произвольная строка, ключ — её sha256; пусто — защита выключена
	SessionTTL  time.Duration `env:"SESSION_TTL"`

	// Ключ шифрования полей (первый заданный источник побеждает)
	VaultKey           string `env:"VAULT_KEY"`
	VaultKeyPassphrase string `env:"VAULT_KEY_PASSPHRASE"`
	VaultKeySalt       string `env:"VAULT_KEY_SALT"`
	VaultKeyFile       string `env:"VAULT_KEY_FILE"`

	// Пароли и восстановление
	BcryptCost        int           `env:"BCRYPT_COST"`
	RecoveryTTL       time.Duration `env:"RECOVERY_TTL"`
	RequiredQuestions int           `env:"REQUIRED_QUESTIONS"`

	// Пересылка событий в NATS (пусто — только журнал)
	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres:// или путь SQLite)")
	flag.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "адрес сервера host:port")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "secure-cookie и схема https")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.CSRFKey, "csrf-key", cfg.CSRFKey, "секрет CSRF-защиты (любая строка, ключ берётся как sha256); пусто — выключено")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "время жизни сессии")
	flag.StringVar(&cfg.VaultKey, "vault-key", cfg.VaultKey, "ключ шифрования полей (hex/base64, 32 байта)")
	flag.StringVar(&cfg.VaultKeyFile, "vault-key-file", cfg.VaultKeyFile, "файл с ключом шифрования (создаётся при отсутствии)")
	flag.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "стоимость bcrypt")
	flag.DurationVar(&cfg.RecoveryTTL, "recovery-ttl", cfg.RecoveryTTL, "время жизни допуска на сброс пароля")
	flag.IntVar(&cfg.RequiredQuestions, "questions", cfg.RequiredQuestions, "количество секретных вопросов при регистрации")

	flag.StringVar(&cfg.NATSURL, "nats", cfg.NATSURL, "адрес NATS для событий хранилища")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]*:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8080"
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.RecoveryTTL <= 0 {
		cfg.RecoveryTTL = 10 * time.Minute
	}
	if cfg.RequiredQuestions <= 0 {
		cfg.RequiredQuestions = 3
	}
	if cfg.NATSSubject == "" {
		cfg.NATSSubject = "mypass.events"
	}
	if cfg.VaultKey == "" && cfg.VaultKeyPassphrase == "" && cfg.VaultKeyFile == "" {
		cfg.VaultKeyFile = "mypass.key"
	}

	return cfg
}
