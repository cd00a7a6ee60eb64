package buildCFG

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"eventnest/internal/mailer"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

type AuthConfig struct {
	JWTSecret string
}

type StorageConfig struct {
	CertificatesDir string
	FrontendURL     string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	host := cfg.GetString("database.host")
	port := cfg.GetString("database.port")
	user := cfg.GetString("database.user")
	password := cfg.GetString("database.password")
	name := cfg.GetString("database.name")
	sslmode := cfg.GetString("database.sslmode")

	if host == "" || user == "" || name == "" {
		return "", nil, nil, fmt.Errorf("database config is incomplete (host/user/name required)")
	}
	if port == "" {
		port = "5432"
	}
	if sslmode == "" {
		sslmode = "disable"
	}

	masterDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, name, sslmode)

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.GetInt("database.max_open_conns"),
		MaxIdleConns:    cfg.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: time.Duration(cfg.GetInt("database.conn_max_lifetime_sec")) * time.Second,
	}

	log.Info().Str("host", host).Str("database", name).Msg("database config loaded")
	return masterDSN, nil, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (*RabbitConfig, error) {
	url := cfg.GetString("rabbit.url")
	if url == "" {
		return nil, fmt.Errorf("rabbit.url is required")
	}

	exchange := cfg.GetString("rabbit.exchange")
	if exchange == "" {
		exchange = "eventnest.notifications"
	}
	queue := cfg.GetString("rabbit.queue")
	if queue == "" {
		queue = "eventnest.notifications.mail"
	}

	log.Info().Str("exchange", exchange).Str("queue", queue).Msg("rabbit config loaded")
	return &RabbitConfig{Url: url, Exchange: exchange, Queue: queue}, nil
}

func BuildAuthConfig(cfg *config.Config) (*AuthConfig, error) {
	secret := cfg.GetString("auth.jwt_secret")
	if secret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	return &AuthConfig{JWTSecret: secret}, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) (mailer.Config, error) {
	host := cfg.GetString("smtp.host")
	if host == "" {
		return mailer.Config{}, fmt.Errorf("smtp.host is required")
	}

	port := cfg.GetInt("smtp.port")
	if port == 0 {
		port = 587
	}

	from := cfg.GetString("smtp.from")
	if from == "" {
		from = cfg.GetString("smtp.username")
	}

	log.Info().Str("host", host).Int("port", port).Msg("smtp config loaded")
	return mailer.Config{
		Host:        host,
		Port:        port,
		Username:    cfg.GetString("smtp.username"),
		Password:    cfg.GetString("smtp.password"),
		From:        from,
		FrontendURL: cfg.GetString("app.frontend_url"),
	}, nil
}

func BuildStorageConfig(cfg *config.Config) StorageConfig {
	dir := cfg.GetString("storage.certificates_dir")
	if dir == "" {
		dir = "./certificates"
	}

	frontend := cfg.GetString("app.frontend_url")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}

	return StorageConfig{CertificatesDir: dir, FrontendURL: frontend}
}
