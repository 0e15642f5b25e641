package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vfg2006/keitaro-sync/internal/domain"
)

// ErrMissingConfig indica que uma configuração obrigatória não foi definida
var ErrMissingConfig = errors.New("configuração obrigatória ausente")

type Config struct {
	App         App         `mapstructure:",squash"`
	Server      Server      `mapstructure:",squash"`
	Database    Database    `mapstructure:",squash"`
	Keitaro     Keitaro     `mapstructure:",squash"`
	KeitaroSync KeitaroSync `mapstructure:",squash"`
	Auth        Auth        `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Enabled bool   `mapstructure:"http_enabled"`
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
}

type Database struct {
	DSN string `mapstructure:"database_url"`
}

type Keitaro struct {
	URL                  string `mapstructure:"keitaro_url"`
	APIKey               string `mapstructure:"keitaro_api_key"`
	Timezone             string `mapstructure:"keitaro_timezone"`
	ReportTimeoutSeconds int    `mapstructure:"keitaro_report_timeout_seconds"`
	LookupTimeoutSeconds int    `mapstructure:"keitaro_lookup_timeout_seconds"`
	PageLimit            int    `mapstructure:"keitaro_page_limit"`
	MaxPages             int    `mapstructure:"keitaro_max_pages"`
}

type KeitaroSync struct {
	IntervalSeconds int                  `mapstructure:"sync_interval"`
	CronSchedule    string               `mapstructure:"sync_cron"`
	RawCampaignIDs  string               `mapstructure:"campaign_ids"`
	RawMode         string               `mapstructure:"sync_mode"`
	LookbackDays    int                  `mapstructure:"sync_lookback_days"`
	RawPolicy       string               `mapstructure:"sync_failure_policy"`
	CampaignIDs     []int64              `mapstructure:"-"`
	Mode            domain.SyncMode      `mapstructure:"-"`
	FailurePolicy   domain.FailurePolicy `mapstructure:"-"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ENABLED", true)
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "8000")

	// Sem default: DATABASE_URL e KEITARO_API_KEY são obrigatórios
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("KEITARO_API_KEY", "")

	v.SetDefault("KEITARO_URL", "https://kt.dmnd.team")
	v.SetDefault("KEITARO_TIMEZONE", "UTC")
	v.SetDefault("KEITARO_REPORT_TIMEOUT_SECONDS", 60)
	v.SetDefault("KEITARO_LOOKUP_TIMEOUT_SECONDS", 30)
	v.SetDefault("KEITARO_PAGE_LIMIT", 1000)
	v.SetDefault("KEITARO_MAX_PAGES", 50)

	v.SetDefault("SYNC_INTERVAL", 300) // 5 minutos
	v.SetDefault("SYNC_CRON", "")
	v.SetDefault("CAMPAIGN_IDS", "12")
	v.SetDefault("SYNC_MODE", string(domain.SyncModeDaily))
	v.SetDefault("SYNC_LOOKBACK_DAYS", 0) // 0 = padrão do modo (30 daily, 7 events)
	v.SetDefault("SYNC_FAILURE_POLICY", string(domain.FailurePolicyAbort))

	v.SetDefault("AUTH_SECRET", "")

	v.SetDefault("LOG_LEVEL", "info")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	v := viper.New()
	SetDefaults(v)

	v.SetConfigType("env")
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		logrus.Debug("Usando apenas variáveis de ambiente (viper não conseguiu ler .env): ", err)
	}

	return Load(v)
}

// Load monta a configuração a partir de uma instância do viper já preenchida
func Load(v *viper.Viper) (*Config, error) {
	config := &Config{}

	err := v.Unmarshal(config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, fmt.Errorf("erro ao decodificar configuração: %w", err)
	}

	config.Keitaro.URL = strings.TrimRight(config.Keitaro.URL, "/")

	config.KeitaroSync.CampaignIDs, err = ParseCampaignIDs(config.KeitaroSync.RawCampaignIDs)
	if err != nil {
		return nil, err
	}

	config.KeitaroSync.Mode, err = domain.ParseSyncMode(config.KeitaroSync.RawMode)
	if err != nil {
		return nil, err
	}

	config.KeitaroSync.FailurePolicy, err = domain.ParseFailurePolicy(config.KeitaroSync.RawPolicy)
	if err != nil {
		return nil, err
	}

	if config.KeitaroSync.LookbackDays <= 0 {
		config.KeitaroSync.LookbackDays = config.KeitaroSync.Mode.DefaultLookbackDays()
	}

	if config.KeitaroSync.IntervalSeconds <= 0 {
		return nil, fmt.Errorf("SYNC_INTERVAL deve ser positivo, recebido %d", config.KeitaroSync.IntervalSeconds)
	}

	if _, err := time.LoadLocation(config.Keitaro.Timezone); err != nil {
		return nil, fmt.Errorf("KEITARO_TIMEZONE inválido %q: %w", config.Keitaro.Timezone, err)
	}

	return config, nil
}

// Validate verifica as configurações sem as quais o serviço não pode rodar
func (c *Config) Validate() error {
	var missing []string

	if c.Keitaro.APIKey == "" {
		missing = append(missing, "KEITARO_API_KEY")
	}
	if c.Database.DSN == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}

	return nil
}

func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.KeitaroSync.IntervalSeconds) * time.Second
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Keitaro.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseCampaignIDs converte a lista separada por vírgulas, ignorando itens vazios
func ParseCampaignIDs(raw string) ([]int64, error) {
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("CAMPAIGN_IDS contém um id inválido %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado de:", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando apenas variáveis de ambiente")
}
