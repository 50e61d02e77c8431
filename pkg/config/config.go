package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GatewayConfig 账本网关配置
type GatewayConfig struct {
	BaseURL       string        // 网关地址
	ModuleAddress string        // 市场合约模块地址（0x 开头）
	Timeout       time.Duration // 单次请求超时
}

// WalletConfig 钱包配置
type WalletConfig struct {
	PrivateKey     string // 十六进制私钥（优先级低于 secretstore）
	SecretStore    string // secretstore 数据目录（badger）
	SecretKeyName  string // secretstore 中私钥条目的键名
}

// ServerConfig 控制面服务器配置
type ServerConfig struct {
	Addr            string        // 监听地址（如 :8787）
	MetricsAddr     string        // expvar 调试地址（可选）
	DBPath          string        // 活动日志 sqlite 路径
	RefreshInterval time.Duration // 后台目录刷新间隔
}

// Config 应用配置
type Config struct {
	Gateway  GatewayConfig
	Wallet   WalletConfig
	Server   ServerConfig
	DataDir  string // 快照等本地数据目录
	LogLevel string // 日志级别
	LogFile  string // 日志文件路径（可选）
}

// configFile 配置文件结构（YAML）
type configFile struct {
	Gateway struct {
		BaseURL        string `yaml:"base_url"`
		ModuleAddress  string `yaml:"module_address"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"gateway"`
	Wallet struct {
		PrivateKey    string `yaml:"private_key"`
		SecretStore   string `yaml:"secret_store"`
		SecretKeyName string `yaml:"secret_key_name"`
	} `yaml:"wallet"`
	Server struct {
		Addr                   string `yaml:"addr"`
		MetricsAddr            string `yaml:"metrics_addr"`
		DBPath                 string `yaml:"db_path"`
		RefreshIntervalSeconds int    `yaml:"refresh_interval_seconds"`
	} `yaml:"server"`
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

var (
	globalConfig   *Config
	configFilePath string
)

// SetConfigPath 设置配置文件路径
func SetConfigPath(path string) {
	configFilePath = path
}

// Load 加载配置（优先级：环境变量 > 配置文件 > 默认值）
func Load() (*Config, error) {
	return LoadFromFile(configFilePath)
}

// LoadFromFile 从指定文件加载配置
func LoadFromFile(filePath string) (*Config, error) {
	// .env 仅用于本地开发，不存在时静默忽略
	_ = godotenv.Load()

	var cf configFile
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, &cf); err != nil {
			return nil, fmt.Errorf("解析配置文件失败 %s: %w", filePath, err)
		}
	}

	cfg := &Config{
		Gateway: GatewayConfig{
			BaseURL:       getEnv("GOMARKET_GATEWAY_URL", cf.Gateway.BaseURL),
			ModuleAddress: getEnv("GOMARKET_MODULE_ADDRESS", cf.Gateway.ModuleAddress),
			Timeout:       time.Duration(parseIntEnv("GOMARKET_GATEWAY_TIMEOUT_SECONDS", orInt(cf.Gateway.TimeoutSeconds, 30))) * time.Second,
		},
		Wallet: WalletConfig{
			PrivateKey:    getEnv("GOMARKET_WALLET_PRIVATE_KEY", cf.Wallet.PrivateKey),
			SecretStore:   getEnv("GOMARKET_SECRET_STORE", cf.Wallet.SecretStore),
			SecretKeyName: getEnv("GOMARKET_SECRET_KEY_NAME", orStr(cf.Wallet.SecretKeyName, "wallet_private_key")),
		},
		Server: ServerConfig{
			Addr:            getEnv("GOMARKET_SERVER_ADDR", orStr(cf.Server.Addr, ":8787")),
			MetricsAddr:     getEnv("GOMARKET_METRICS_ADDR", cf.Server.MetricsAddr),
			DBPath:          getEnv("GOMARKET_DB_PATH", orStr(cf.Server.DBPath, "data/gomarket.db")),
			RefreshInterval: time.Duration(parseIntEnv("GOMARKET_REFRESH_INTERVAL_SECONDS", orInt(cf.Server.RefreshIntervalSeconds, 30))) * time.Second,
		},
		DataDir:  getEnv("GOMARKET_DATA_DIR", orStr(cf.DataDir, "data")),
		LogLevel: getEnv("GOMARKET_LOG_LEVEL", orStr(cf.LogLevel, "info")),
		LogFile:  getEnv("GOMARKET_LOG_FILE", cf.LogFile),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	globalConfig = cfg
	configFilePath = filePath
	return cfg, nil
}

// Get 获取全局配置（如果已加载）
func Get() *Config {
	return globalConfig
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("GOMARKET_GATEWAY_URL 未配置")
	}
	if c.Gateway.ModuleAddress == "" {
		return fmt.Errorf("GOMARKET_MODULE_ADDRESS 未配置")
	}
	if !strings.HasPrefix(c.Gateway.ModuleAddress, "0x") {
		return fmt.Errorf("模块地址必须以 0x 开头: %s", c.Gateway.ModuleAddress)
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv 解析整数环境变量
func parseIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func orStr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
