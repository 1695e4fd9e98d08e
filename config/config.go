package config

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Email     EmailConfig     `mapstructure:"email"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig 存储配置
// Driver: mysql / sqlite / memory
type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	DBName     string `mapstructure:"dbname"`
	Charset    string `mapstructure:"charset"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// SheetsConfig Google Sheets 同步配置
type SheetsConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	CredentialsJSON string        `mapstructure:"credentials_json"`
	UsersRange      string        `mapstructure:"users_range"`
	ExpensesRange   string        `mapstructure:"expenses_range"`
	TimeoutSeconds  int           `mapstructure:"timeout_seconds"`
	Timeout         time.Duration `mapstructure:"-"`
}

// AdminConfig 管理员账号配置
// PasswordHash 优先；只配置 Password 时启动阶段会计算 bcrypt 哈希，明文不落盘
type AdminConfig struct {
	Email        string `mapstructure:"email"`
	Name         string `mapstructure:"name"`
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"`
}

// CurrencyConfig 货币显示配置
type CurrencyConfig struct {
	Locale string `mapstructure:"locale"`
	Symbol string `mapstructure:"symbol"`
}

// RateLimitConfig 登录限流配置
type RateLimitConfig struct {
	LoginAttempts      int           `mapstructure:"login_attempts"`
	LoginWindowSeconds int           `mapstructure:"login_window_seconds"`
	LoginWindow        time.Duration `mapstructure:"-"`
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}
	log.Println("已加载内置默认配置")

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Printf("警告: 无法读取指定配置文件 %s: %v", configPath, err)
		} else {
			log.Printf("已合并外部配置文件: %s", configPath)
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/financeiro")
		externalViper.AddConfigPath("$HOME/.financeiro")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Printf("警告: 合并外部配置失败: %v", err)
			} else {
				log.Printf("已合并外部配置文件: %s", externalViper.ConfigFileUsed())
			}
		}
	}

	// 3. 环境变量覆盖，如 FINANCEIRO_DATABASE_DRIVER=sqlite
	v.SetEnvPrefix("FINANCEIRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyDefaults(&cfg)

	GlobalConfig = &cfg

	return &cfg, nil
}

// applyDefaults 补齐派生字段与缺省值
func applyDefaults(cfg *Config) {
	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 24
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireHours) * time.Hour

	if cfg.Sheets.TimeoutSeconds <= 0 {
		cfg.Sheets.TimeoutSeconds = 15
	}
	cfg.Sheets.Timeout = time.Duration(cfg.Sheets.TimeoutSeconds) * time.Second
	if cfg.Sheets.UsersRange == "" {
		cfg.Sheets.UsersRange = "Usuarios!A:H"
	}
	if cfg.Sheets.ExpensesRange == "" {
		cfg.Sheets.ExpensesRange = "Gastos!A:H"
	}

	if cfg.RateLimit.LoginAttempts <= 0 {
		cfg.RateLimit.LoginAttempts = 10
	}
	if cfg.RateLimit.LoginWindowSeconds <= 0 {
		cfg.RateLimit.LoginWindowSeconds = 60
	}
	cfg.RateLimit.LoginWindow = time.Duration(cfg.RateLimit.LoginWindowSeconds) * time.Second

	if cfg.Currency.Locale == "" {
		cfg.Currency.Locale = "pt-BR"
	}
	if cfg.Currency.Symbol == "" {
		cfg.Currency.Symbol = "R$"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "memory"
	}
	cfg.Admin.Email = strings.ToLower(strings.TrimSpace(cfg.Admin.Email))
}

// MustLoadConfig 加载配置，失败则 panic
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}
	return cfg
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("配置未初始化，请先调用 LoadConfig")
	}
	return GlobalConfig
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	log.Printf("当前配置:")
	log.Printf("  服务器: %s (模式: %s)", GlobalConfig.Server.Port, GlobalConfig.Server.Mode)
	switch GlobalConfig.Database.Driver {
	case "mysql":
		log.Printf("  存储: mysql %s@%s:%s/%s",
			GlobalConfig.Database.Username,
			GlobalConfig.Database.Host,
			GlobalConfig.Database.Port,
			GlobalConfig.Database.DBName)
	case "sqlite":
		log.Printf("  存储: sqlite %s", GlobalConfig.Database.SQLitePath)
	default:
		log.Printf("  存储: %s", GlobalConfig.Database.Driver)
	}
	log.Printf("  邮件服务: %v", GlobalConfig.Email.Enabled)
	log.Printf("  表格同步: %v", GlobalConfig.Sheets.Enabled)
	log.Printf("  货币: %s (%s)", GlobalConfig.Currency.Symbol, GlobalConfig.Currency.Locale)
}
