package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	S3         S3Config
	Log        LogConfig
	Parser     ParserConfig
	CORS       CORSConfig
	Extraction ExtractionConfig
	OCR        OCRConfig
	Payment    PaymentConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM claim parser provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds LLM payment-claim parser settings with multi-provider support.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order, skipping empty slots.
func (p *ParserConfig) Providers() []*ParserProviderConfig {
	var out []*ParserProviderConfig
	for _, c := range []*ParserProviderConfig{&p.Primary, &p.Secondary, &p.Tertiary} {
		if c.Provider != "" {
			out = append(out, c)
		}
	}
	return out
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxBodyMB    int64         `mapstructure:"max_body_mb"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	// MaxIdleTime closes pooled connections idle longer than this.
	MaxIdleTime time.Duration `mapstructure:"max_idle_time"`

	// MigrationsURL is the golang-migrate source URL used by cmd/migrate.
	MigrationsURL string `mapstructure:"migrations_url"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// RedisConfig holds settings for the optional distributed payment lock.
// An empty Addr selects the in-process lock.
type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
	LockPrefix string        `mapstructure:"lock_prefix"`
}

// JWTConfig holds settings for verifying admin bearer tokens.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings for the payment proof archive.
// An empty Bucket disables archiving.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ExtractionConfig holds document text extraction thresholds and budgets.
type ExtractionConfig struct {
	PDFMinChars        int     `mapstructure:"pdf_min_chars"`
	MinTextChars       int     `mapstructure:"min_text_chars"`
	MinAlnumRatio      float64 `mapstructure:"min_alnum_ratio"`
	MinBatchChars      int     `mapstructure:"min_batch_chars"`
	FileTimeoutSecs    int     `mapstructure:"file_timeout_secs"`
	RequestTimeoutSecs int     `mapstructure:"request_timeout_secs"`
	Concurrency        int     `mapstructure:"concurrency"`
	MaxFiles           int     `mapstructure:"max_files"`
}

// FileTimeout returns the per-file extraction budget.
func (e *ExtractionConfig) FileTimeout() time.Duration {
	return time.Duration(e.FileTimeoutSecs) * time.Second
}

// RequestTimeout returns the whole-request extraction budget.
func (e *ExtractionConfig) RequestTimeout() time.Duration {
	return time.Duration(e.RequestTimeoutSecs) * time.Second
}

// OCRConfig holds tesseract and pdftoppm settings.
type OCRConfig struct {
	Tesseract     string  `mapstructure:"tesseract"`
	Pdftoppm      string  `mapstructure:"pdftoppm"`
	Language      string  `mapstructure:"language"`
	PSM           int     `mapstructure:"psm"`
	OEM           int     `mapstructure:"oem"`
	TessdataDir   string  `mapstructure:"tessdata_dir"`
	DPI           int     `mapstructure:"dpi"`
	MaxPages      int     `mapstructure:"max_pages"`
	TimeoutSecs   int     `mapstructure:"timeout_secs"`
	MaxDimension  int     `mapstructure:"max_dimension"`
	RenderPDFs    bool    `mapstructure:"render_pdfs"`
	ContrastBoost float64 `mapstructure:"contrast_boost"`
	SharpenSigma  float64 `mapstructure:"sharpen_sigma"`
}

// Timeout returns the hard per-call OCR budget.
func (o *OCRConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSecs) * time.Second
}

// PaymentConfig holds the business rules for payment proof verification.
type PaymentConfig struct {
	AcceptedReceivers  []string `mapstructure:"accepted_receivers"`
	MinimumAmount      float64  `mapstructure:"minimum_amount"`
	TransactionPrefix  string   `mapstructure:"transaction_prefix"`
	Currency           string   `mapstructure:"currency"`
	BankName           string   `mapstructure:"bank_name"`
	ProofKeyPrefix     string   `mapstructure:"proof_key_prefix"`
	ExtractTimeoutSecs int      `mapstructure:"extract_timeout_secs"`
}

// ExtractTimeout returns the budget for extracting a claim from a payment image.
func (p *PaymentConfig) ExtractTimeout() time.Duration {
	return time.Duration(p.ExtractTimeoutSecs) * time.Second
}

// Load reads configuration from environment variables with the CVERVE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CVERVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "35s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_body_mb", 25)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "cverve")
	v.SetDefault("db.password", "cverve_secret")
	v.SetDefault("db.name", "cverve")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 1)
	v.SetDefault("db.max_idle_time", "30s")
	v.SetDefault("db.migrations_url", "file://db/migrations")

	// Redis defaults (empty addr = in-process lock)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", "30s")
	v.SetDefault("redis.lock_prefix", "cverve:payment-lock:")

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "cverve")

	// S3 defaults (empty bucket = archive disabled)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Extraction defaults
	v.SetDefault("extraction.pdf_min_chars", 50)
	v.SetDefault("extraction.min_text_chars", 10)
	v.SetDefault("extraction.min_alnum_ratio", 0.3)
	v.SetDefault("extraction.min_batch_chars", 0)
	v.SetDefault("extraction.file_timeout_secs", 20)
	v.SetDefault("extraction.request_timeout_secs", 28)
	v.SetDefault("extraction.concurrency", 1)
	v.SetDefault("extraction.max_files", 10)

	// OCR defaults
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.psm", 6)
	v.SetDefault("ocr.oem", 1)
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 5)
	v.SetDefault("ocr.timeout_secs", 20)
	v.SetDefault("ocr.max_dimension", 2000)
	v.SetDefault("ocr.render_pdfs", false)
	v.SetDefault("ocr.contrast_boost", 20)
	v.SetDefault("ocr.sharpen_sigma", 1.0)

	// Payment defaults
	v.SetDefault("payment.accepted_receivers", "yilak abay,yilak abay abebe")
	v.SetDefault("payment.minimum_amount", 30)
	v.SetDefault("payment.transaction_prefix", "FT")
	v.SetDefault("payment.currency", "ETB")
	v.SetDefault("payment.bank_name", "CBE (Commercial Bank of Ethiopia)")
	v.SetDefault("payment.proof_key_prefix", "payments/proofs")
	v.SetDefault("payment.extract_timeout_secs", 25)

	// Parser defaults
	v.SetDefault("parser.primary.provider", "openai")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "deepseek-vl")
	v.SetDefault("parser.primary.endpoint", "https://api.deepseek.com/v1/chat/completions")
	v.SetDefault("parser.primary.max_retries", 1)
	v.SetDefault("parser.primary.timeout_secs", 20)
	for _, slot := range []string{"secondary", "tertiary"} {
		v.SetDefault("parser."+slot+".provider", "")
		v.SetDefault("parser."+slot+".api_key", "")
		v.SetDefault("parser."+slot+".default_model", "")
		v.SetDefault("parser."+slot+".endpoint", "")
		v.SetDefault("parser."+slot+".max_retries", 1)
		v.SetDefault("parser."+slot+".timeout_secs", 20)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "CVERVE_SERVER_PORT",
		"server.read_timeout":             "CVERVE_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "CVERVE_SERVER_WRITE_TIMEOUT",
		"server.environment":              "CVERVE_SERVER_ENVIRONMENT",
		"server.max_body_mb":              "CVERVE_SERVER_MAX_BODY_MB",
		"db.host":                         "CVERVE_DB_HOST",
		"db.port":                         "CVERVE_DB_PORT",
		"db.user":                         "CVERVE_DB_USER",
		"db.password":                     "CVERVE_DB_PASSWORD",
		"db.name":                         "CVERVE_DB_NAME",
		"db.sslmode":                      "CVERVE_DB_SSLMODE",
		"db.max_open":                     "CVERVE_DB_MAX_OPEN",
		"db.max_idle":                     "CVERVE_DB_MAX_IDLE",
		"db.max_idle_time":                "CVERVE_DB_MAX_IDLE_TIME",
		"db.migrations_url":               "CVERVE_DB_MIGRATIONS_URL",
		"redis.addr":                      "CVERVE_REDIS_ADDR",
		"redis.password":                  "CVERVE_REDIS_PASSWORD",
		"redis.db":                        "CVERVE_REDIS_DB",
		"redis.lock_ttl":                  "CVERVE_REDIS_LOCK_TTL",
		"redis.lock_prefix":               "CVERVE_REDIS_LOCK_PREFIX",
		"jwt.secret":                      "CVERVE_JWT_SECRET",
		"jwt.issuer":                      "CVERVE_JWT_ISSUER",
		"s3.region":                       "CVERVE_S3_REGION",
		"s3.bucket":                       "CVERVE_S3_BUCKET",
		"s3.endpoint":                     "CVERVE_S3_ENDPOINT",
		"s3.access_key":                   "CVERVE_S3_ACCESS_KEY",
		"s3.secret_key":                   "CVERVE_S3_SECRET_KEY",
		"log.level":                       "CVERVE_LOG_LEVEL",
		"log.format":                      "CVERVE_LOG_FORMAT",
		"cors.allowed_origins":            "CVERVE_CORS_ALLOWED_ORIGINS",
		"extraction.pdf_min_chars":        "CVERVE_EXTRACTION_PDF_MIN_CHARS",
		"extraction.min_text_chars":       "CVERVE_EXTRACTION_MIN_TEXT_CHARS",
		"extraction.min_alnum_ratio":      "CVERVE_EXTRACTION_MIN_ALNUM_RATIO",
		"extraction.min_batch_chars":      "CVERVE_EXTRACTION_MIN_BATCH_CHARS",
		"extraction.file_timeout_secs":    "CVERVE_EXTRACTION_FILE_TIMEOUT_SECS",
		"extraction.request_timeout_secs": "CVERVE_EXTRACTION_REQUEST_TIMEOUT_SECS",
		"extraction.concurrency":          "CVERVE_EXTRACTION_CONCURRENCY",
		"extraction.max_files":            "CVERVE_EXTRACTION_MAX_FILES",
		"ocr.tesseract":                   "CVERVE_OCR_TESSERACT",
		"ocr.pdftoppm":                    "CVERVE_OCR_PDFTOPPM",
		"ocr.language":                    "CVERVE_OCR_LANGUAGE",
		"ocr.psm":                         "CVERVE_OCR_PSM",
		"ocr.oem":                         "CVERVE_OCR_OEM",
		"ocr.tessdata_dir":                "CVERVE_OCR_TESSDATA_DIR",
		"ocr.dpi":                         "CVERVE_OCR_DPI",
		"ocr.max_pages":                   "CVERVE_OCR_MAX_PAGES",
		"ocr.timeout_secs":                "CVERVE_OCR_TIMEOUT_SECS",
		"ocr.max_dimension":               "CVERVE_OCR_MAX_DIMENSION",
		"ocr.render_pdfs":                 "CVERVE_OCR_RENDER_PDFS",
		"ocr.contrast_boost":              "CVERVE_OCR_CONTRAST_BOOST",
		"ocr.sharpen_sigma":               "CVERVE_OCR_SHARPEN_SIGMA",
		"payment.accepted_receivers":      "CVERVE_PAYMENT_ACCEPTED_RECEIVERS",
		"payment.minimum_amount":          "CVERVE_PAYMENT_MINIMUM_AMOUNT",
		"payment.transaction_prefix":      "CVERVE_PAYMENT_TRANSACTION_PREFIX",
		"payment.currency":                "CVERVE_PAYMENT_CURRENCY",
		"payment.bank_name":               "CVERVE_PAYMENT_BANK_NAME",
		"payment.proof_key_prefix":        "CVERVE_PAYMENT_PROOF_KEY_PREFIX",
		"payment.extract_timeout_secs":    "CVERVE_PAYMENT_EXTRACT_TIMEOUT_SECS",
	}
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "endpoint", "max_retries", "timeout_secs"} {
			key := "parser." + slot + "." + field
			envBindings[key] = "CVERVE_PARSER_" + strings.ToUpper(slot) + "_" + strings.ToUpper(field)
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CVERVE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CVERVE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxBodyMB:    v.GetInt64("server.max_body_mb"),
	}
	cfg.DB = DBConfig{
		Host:        v.GetString("db.host"),
		Port:        v.GetInt("db.port"),
		User:        v.GetString("db.user"),
		Password:    v.GetString("db.password"),
		Name:        v.GetString("db.name"),
		SSLMode:     v.GetString("db.sslmode"),
		MaxOpen:     v.GetInt("db.max_open"),
		MaxIdle:     v.GetInt("db.max_idle"),
		MaxIdleTime: v.GetDuration("db.max_idle_time"),

		MigrationsURL: v.GetString("db.migrations_url"),
	}
	cfg.Redis = RedisConfig{
		Addr:       v.GetString("redis.addr"),
		Password:   v.GetString("redis.password"),
		DB:         v.GetInt("redis.db"),
		LockTTL:    v.GetDuration("redis.lock_ttl"),
		LockPrefix: v.GetString("redis.lock_prefix"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.Extraction = ExtractionConfig{
		PDFMinChars:        v.GetInt("extraction.pdf_min_chars"),
		MinTextChars:       v.GetInt("extraction.min_text_chars"),
		MinAlnumRatio:      v.GetFloat64("extraction.min_alnum_ratio"),
		MinBatchChars:      v.GetInt("extraction.min_batch_chars"),
		FileTimeoutSecs:    v.GetInt("extraction.file_timeout_secs"),
		RequestTimeoutSecs: v.GetInt("extraction.request_timeout_secs"),
		Concurrency:        v.GetInt("extraction.concurrency"),
		MaxFiles:           v.GetInt("extraction.max_files"),
	}
	cfg.OCR = OCRConfig{
		Tesseract:     v.GetString("ocr.tesseract"),
		Pdftoppm:      v.GetString("ocr.pdftoppm"),
		Language:      v.GetString("ocr.language"),
		PSM:           v.GetInt("ocr.psm"),
		OEM:           v.GetInt("ocr.oem"),
		TessdataDir:   v.GetString("ocr.tessdata_dir"),
		DPI:           v.GetInt("ocr.dpi"),
		MaxPages:      v.GetInt("ocr.max_pages"),
		TimeoutSecs:   v.GetInt("ocr.timeout_secs"),
		MaxDimension:  v.GetInt("ocr.max_dimension"),
		RenderPDFs:    v.GetBool("ocr.render_pdfs"),
		ContrastBoost: v.GetFloat64("ocr.contrast_boost"),
		SharpenSigma:  v.GetFloat64("ocr.sharpen_sigma"),
	}

	var receivers []string
	for _, r := range splitList(v.GetString("payment.accepted_receivers")) {
		receivers = append(receivers, strings.ToLower(r))
	}
	cfg.Payment = PaymentConfig{
		AcceptedReceivers:  receivers,
		MinimumAmount:      v.GetFloat64("payment.minimum_amount"),
		TransactionPrefix:  v.GetString("payment.transaction_prefix"),
		Currency:           v.GetString("payment.currency"),
		BankName:           v.GetString("payment.bank_name"),
		ProofKeyPrefix:     v.GetString("payment.proof_key_prefix"),
		ExtractTimeoutSecs: v.GetInt("payment.extract_timeout_secs"),
	}

	cfg.Parser = ParserConfig{
		Primary:   providerConfig(v, "primary"),
		Secondary: providerConfig(v, "secondary"),
		Tertiary:  providerConfig(v, "tertiary"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func providerConfig(v *viper.Viper, slot string) ParserProviderConfig {
	prefix := "parser." + slot + "."
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		Endpoint:     v.GetString(prefix + "endpoint"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

func (c *Config) validate() error {
	if c.Extraction.FileTimeoutSecs <= 0 || c.Extraction.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("extraction timeouts must be positive")
	}
	if c.Extraction.FileTimeoutSecs > c.Extraction.RequestTimeoutSecs {
		return fmt.Errorf("extraction.file_timeout_secs (%d) exceeds extraction.request_timeout_secs (%d)",
			c.Extraction.FileTimeoutSecs, c.Extraction.RequestTimeoutSecs)
	}
	if c.OCR.TimeoutSecs <= 0 {
		return fmt.Errorf("ocr.timeout_secs must be positive")
	}
	if c.Payment.TransactionPrefix == "" {
		return fmt.Errorf("payment.transaction_prefix is required")
	}
	if len(c.Payment.AcceptedReceivers) == 0 {
		return fmt.Errorf("payment.accepted_receivers is required")
	}
	if c.Payment.MinimumAmount <= 0 {
		return fmt.Errorf("payment.minimum_amount must be positive, got %v", c.Payment.MinimumAmount)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
