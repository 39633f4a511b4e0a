package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Режимы хранения ключей
const (
	ModeDatabase = "database"
	ModeFile     = "file"
	ModeMemory   = "in-memory"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress    string `json:"server_address"`
	BaseURL          string `json:"base_url"`
	FileStoragePath  string `json:"file_storage_path"`
	DatabaseDSN      string `json:"database_dsn"`
	PgMigrationsPath string `json:"pg_migrations_path"`
	ProviderURL      string `json:"provider_url"`
	TransferListURL  string `json:"transfer_list_url"`
	DefaultAPIKey    string `json:"default_api_key"`
	AuthSecret       string `json:"auth_secret"`
	GRPCAddress      string `json:"grpc_address"`
	EnableHTTPS      bool   `json:"enable_https"`
	TLSCertPath      string `json:"tls_cert_path"`
	TLSKeyPath       string `json:"tls_key_path"`
	// Подписки и лента релизов
	PatternStoragePath string        `json:"pattern_storage_path"`
	RSSURL             string        `json:"rss_url"`
	FeedStatePath      string        `json:"feed_state_path"`
	CheckInterval      time.Duration `json:"-"`
	FailureInterval    time.Duration `json:"-"`
	InboxSize          int           `json:"inbox_size"`
	Mode               string        `json:"-"`
}

// NewConfig инициализирует конфигурацию на основе аргументов командной строки
func NewConfig() *Config {
	cfg, err := Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Printf("Ошибка разбора аргументов: %v", err)
	}

	log.Printf("Инициализация конфигурации: ServerAddress=%s", cfg.ServerAddress)
	log.Printf("Инициализация конфигурации: BaseURL=%s", cfg.BaseURL)
	log.Printf("Инициализация конфигурации: ProviderURL=%s", cfg.ProviderURL)
	log.Printf("Инициализация конфигурации: GRPCAddress=%s", cfg.GRPCAddress)
	log.Printf("Инициализация конфигурации: RSSURL=%s", cfg.RSSURL)
	log.Printf("Инициализация конфигурации: Mode=%s", cfg.Mode)
	log.Printf("Инициализация конфигурации: EnableHTTPS=%v", cfg.EnableHTTPS)

	// Проверка корректности конфигурации
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Ошибка конфигурации: %v\n", err)
	}

	return cfg
}

// Load собирает конфигурацию: значения по умолчанию, JSON-файл, переменные окружения (.env), флаги.
// Чем правее источник, тем выше приоритет.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	v := viper.New()
	v.SetDefault("SERVER_ADDRESS", "localhost:8080") // Значения по умолчанию
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("FILE_STORAGE_PATH", "keys.json")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("PG_MIGRATIONS_PATH", "internal/migrations")
	v.SetDefault("PROVIDER_URL", "https://www.premiumize.me")
	v.SetDefault("TRANSFER_LIST_URL", "")
	v.SetDefault("DEFAULT_API_KEY", "")
	v.SetDefault("AUTH_SECRET", "")
	v.SetDefault("GRPC_ADDRESS", "")
	v.SetDefault("ENABLE_HTTPS", false)
	v.SetDefault("TLS_CERT_PATH", "cert.pem")
	v.SetDefault("TLS_KEY_PATH", "key.pem")
	v.SetDefault("PATTERN_STORAGE_PATH", "patterns.json")
	v.SetDefault("RSS_URL", "")
	v.SetDefault("FEED_STATE_PATH", "last.txt")
	v.SetDefault("CHECK_INTERVAL", "60")
	v.SetDefault("FAILURE_INTERVAL", "180")
	v.SetDefault("INBOX_SIZE", 50)

	v.AutomaticEnv()
	v.AllowEmptyEnv(true) // FILE_STORAGE_PATH="" включает режим in-memory

	// Читаем .env, если есть (не переопределяет переменные окружения!)
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // Ошибку игнорируем, если файла нет

	// Определяем флаги, но НЕ задаем в них значения по умолчанию
	serverAddress := fs.String("a", "", "server address")
	baseURL := fs.String("b", "", "base URL")
	fileStoragePath := fs.String("f", "", "file storage path (JSON lines)")
	databaseDSN := fs.String("d", "", "PostgreSQL DSN")
	providerURL := fs.String("p", "", "transfer provider URL")
	grpcAddress := fs.String("g", "", "gRPC server address")
	enableHTTPS := fs.Bool("s", false, "enable HTTPS")
	tlsCertPath := fs.String("cert", "", "path to TLS certificate")
	tlsKeyPath := fs.String("key", "", "path to TLS key")
	rssURL := fs.String("r", "", "RSS feed URL")
	configPath := fs.String("c", "", "path to JSON config file")
	fs.StringVar(configPath, "config", "", "path to JSON config file")

	parseErr := fs.Parse(args)

	// Загружаем JSON-конфигурацию (если указана)
	if *configPath == "" {
		*configPath = v.GetString("CONFIG")
	}

	type rawJSON Config
	jsonCfg := &rawJSON{}
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Printf("Не удалось прочитать JSON-файл конфигурации %q: %v", *configPath, err)
		} else if err := json.Unmarshal(data, jsonCfg); err != nil {
			log.Printf("Ошибка разбора JSON-файла конфигурации: %v", err)
		}
	}

	cfg := &Config{
		ServerAddress:    v.GetString("SERVER_ADDRESS"),
		BaseURL:          v.GetString("BASE_URL"),
		FileStoragePath:  v.GetString("FILE_STORAGE_PATH"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		PgMigrationsPath: v.GetString("PG_MIGRATIONS_PATH"),
		ProviderURL:      v.GetString("PROVIDER_URL"),
		TLSCertPath:      v.GetString("TLS_CERT_PATH"),
		TLSKeyPath:       v.GetString("TLS_KEY_PATH"),

		PatternStoragePath: v.GetString("PATTERN_STORAGE_PATH"),
		RSSURL:             v.GetString("RSS_URL"),
		FeedStatePath:      v.GetString("FEED_STATE_PATH"),
		InboxSize:          v.GetInt("INBOX_SIZE"),
	}

	// JSON перекрывает значения по умолчанию
	fromJSON := func(val string, target *string) {
		if val != "" {
			*target = val
		}
	}
	fromJSON(jsonCfg.ServerAddress, &cfg.ServerAddress)
	fromJSON(jsonCfg.BaseURL, &cfg.BaseURL)
	fromJSON(jsonCfg.FileStoragePath, &cfg.FileStoragePath)
	fromJSON(jsonCfg.DatabaseDSN, &cfg.DatabaseDSN)
	fromJSON(jsonCfg.PgMigrationsPath, &cfg.PgMigrationsPath)
	fromJSON(jsonCfg.ProviderURL, &cfg.ProviderURL)
	fromJSON(jsonCfg.TransferListURL, &cfg.TransferListURL)
	fromJSON(jsonCfg.DefaultAPIKey, &cfg.DefaultAPIKey)
	fromJSON(jsonCfg.AuthSecret, &cfg.AuthSecret)
	fromJSON(jsonCfg.GRPCAddress, &cfg.GRPCAddress)
	fromJSON(jsonCfg.TLSCertPath, &cfg.TLSCertPath)
	fromJSON(jsonCfg.TLSKeyPath, &cfg.TLSKeyPath)
	fromJSON(jsonCfg.PatternStoragePath, &cfg.PatternStoragePath)
	fromJSON(jsonCfg.RSSURL, &cfg.RSSURL)
	fromJSON(jsonCfg.FeedStatePath, &cfg.FeedStatePath)
	if jsonCfg.InboxSize > 0 {
		cfg.InboxSize = jsonCfg.InboxSize
	}
	cfg.EnableHTTPS = jsonCfg.EnableHTTPS

	// Если переменные окружения (или .env) заданы, они имеют приоритет над JSON
	isSet := func(env string) bool {
		_, ok := os.LookupEnv(env)
		return ok || v.InConfig(env)
	}
	override := func(env string, target *string) {
		if val, ok := os.LookupEnv(env); ok {
			*target = val
		} else if v.InConfig(env) {
			*target = v.GetString(env)
		}
	}
	override("SERVER_ADDRESS", &cfg.ServerAddress)
	override("BASE_URL", &cfg.BaseURL)
	override("FILE_STORAGE_PATH", &cfg.FileStoragePath)
	override("DATABASE_DSN", &cfg.DatabaseDSN)
	override("PG_MIGRATIONS_PATH", &cfg.PgMigrationsPath)
	override("PROVIDER_URL", &cfg.ProviderURL)
	override("TRANSFER_LIST_URL", &cfg.TransferListURL)
	override("DEFAULT_API_KEY", &cfg.DefaultAPIKey)
	override("AUTH_SECRET", &cfg.AuthSecret)
	override("GRPC_ADDRESS", &cfg.GRPCAddress)
	override("TLS_CERT_PATH", &cfg.TLSCertPath)
	override("TLS_KEY_PATH", &cfg.TLSKeyPath)
	override("PATTERN_STORAGE_PATH", &cfg.PatternStoragePath)
	override("RSS_URL", &cfg.RSSURL)
	override("FEED_STATE_PATH", &cfg.FeedStatePath)
	if isSet("ENABLE_HTTPS") {
		cfg.EnableHTTPS = v.GetBool("ENABLE_HTTPS")
	}
	if isSet("INBOX_SIZE") {
		cfg.InboxSize = v.GetInt("INBOX_SIZE")
	}

	var durErr error
	if cfg.CheckInterval, durErr = parseInterval(v.GetString("CHECK_INTERVAL")); durErr != nil {
		log.Printf("Некорректный CHECK_INTERVAL: %v", durErr)
		cfg.CheckInterval = time.Minute
	}
	if cfg.FailureInterval, durErr = parseInterval(v.GetString("FAILURE_INTERVAL")); durErr != nil {
		log.Printf("Некорректный FAILURE_INTERVAL: %v", durErr)
		cfg.FailureInterval = 3 * time.Minute
	}

	// Флаги имеют высший приоритет
	if *serverAddress != "" {
		cfg.ServerAddress = *serverAddress
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *fileStoragePath != "" {
		cfg.FileStoragePath = *fileStoragePath
	}
	if *databaseDSN != "" {
		cfg.DatabaseDSN = *databaseDSN
	}
	if *providerURL != "" {
		cfg.ProviderURL = *providerURL
	}
	if *grpcAddress != "" {
		cfg.GRPCAddress = *grpcAddress
	}

	// Включаем TLS
	if *enableHTTPS {
		cfg.EnableHTTPS = true
	}
	if *tlsCertPath != "" {
		cfg.TLSCertPath = *tlsCertPath
	}
	if *tlsKeyPath != "" {
		cfg.TLSKeyPath = *tlsKeyPath
	}
	if *rssURL != "" {
		cfg.RSSURL = *rssURL
	}

	cfg.ProviderURL = strings.TrimSuffix(cfg.ProviderURL, "/")
	if cfg.TransferListURL == "" {
		cfg.TransferListURL = cfg.ProviderURL + "/transfers"
	}

	// Определяем режим работы
	if cfg.DatabaseDSN != "" {
		cfg.Mode = ModeDatabase
	} else if cfg.FileStoragePath != "" {
		cfg.Mode = ModeFile
	} else {
		cfg.Mode = ModeMemory
	}

	return cfg, parseErr
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if err := checkURL("базовый URL", cfg.BaseURL); err != nil {
		return err
	}
	if err := checkURL("URL провайдера", cfg.ProviderURL); err != nil {
		return err
	}
	if err := checkURL("URL списка трансферов", cfg.TransferListURL); err != nil {
		return err
	}
	if cfg.RSSURL != "" {
		if err := checkURL("URL ленты", cfg.RSSURL); err != nil {
			return err
		}
		if cfg.CheckInterval <= 0 || cfg.FailureInterval <= 0 {
			return fmt.Errorf("интервалы опроса ленты должны быть положительными")
		}
	}
	if cfg.EnableHTTPS && (cfg.TLSCertPath == "" || cfg.TLSKeyPath == "") {
		return fmt.Errorf("для HTTPS нужны сертификат и ключ")
	}
	return nil
}

func checkURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s не может быть пустым", name)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s некорректен: %q", name, raw)
	}
	return nil
}

// parseInterval принимает число секунд ("60") или длительность Go ("1m30s").
func parseInterval(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(raw)
}
