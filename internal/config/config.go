package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	App      AppConfig      `mapstructure:"app"`      // 应用配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Paths    PathsConfig    `mapstructure:"paths"`    // 输入输出目录
	Output   OutputConfig   `mapstructure:"output"`   // 落盘产物配置
	Webhook  WebhookConfig  `mapstructure:"webhook"`  // 通知回调配置
	Database DatabaseConfig `mapstructure:"database"` // 快照库配置（可选）
	Server   ServerConfig   `mapstructure:"server"`   // HTTP服务配置（serve模式）
	Storage  StorageConfig  `mapstructure:"storage"`  // S3兼容存储（可选）
	Prefixes PrefixConfig   `mapstructure:"prefixes"` // 各报表文件名前缀
	Catalog  CatalogConfig  `mapstructure:"catalog"`  // SKU/渠道/映射表，缺省用内置值
}

// AppConfig 应用配置
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
	File   string `mapstructure:"file"`   // 额外写入的日志文件，空则只输出stdout
}

// PathsConfig 输入输出目录
type PathsConfig struct {
	InputDir  string `mapstructure:"input_dir"`
	OutputDir string `mapstructure:"output_dir"`
}

// OutputConfig 落盘产物配置
type OutputConfig struct {
	SaveJSON          bool   `mapstructure:"save_json"`
	SaveXLSX          bool   `mapstructure:"save_xlsx"`
	CombinedInventory string `mapstructure:"combined_inventory"` // 历史库存合并文件名（不含扩展名）
}

// WebhookConfig 通知回调配置
type WebhookConfig struct {
	URL     string `mapstructure:"url"`
	Timeout int    `mapstructure:"timeout"` // 请求超时（秒）
	Proxy   string `mapstructure:"proxy"`
}

// DatabaseConfig 快照库配置，DSN为空则不落库
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// StorageConfig S3兼容对象存储，Bucket为空则不上传
type StorageConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Prefix       string `mapstructure:"prefix"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// PrefixConfig 各报表的文件名前缀，文件名形如 prefix + YYYY-MM-DD + ".csv"
type PrefixConfig struct {
	FBA             string `mapstructure:"fba"`
	AWD             string `mapstructure:"awd"`
	FlexportLevels  string `mapstructure:"flexport_levels"`
	FlexportOrders  string `mapstructure:"flexport_orders"`
	FlexportInbound string `mapstructure:"flexport_inbound"`
	WalmartSales    string `mapstructure:"walmart_sales"`
	WFSInventory    string `mapstructure:"wfs_inventory"`
	AmazonSales     string `mapstructure:"amazon_sales"`
	WalmartItems    string `mapstructure:"walmart_items"`
	TikTokOrders    string `mapstructure:"tiktok_orders"`
	ShopifySales    string `mapstructure:"shopify_sales"`
}

// CatalogConfig YAML中的目录配置，字段为空时回落到 DefaultCatalog。
// 映射表用列表而不是 map：viper 会把 map 的键转成小写，SKU 区分大小写。
type CatalogConfig struct {
	SKUOrder          []string       `mapstructure:"sku_order"`
	AmazonSKUs        []string       `mapstructure:"amazon_skus"`
	InventoryChannels []string       `mapstructure:"inventory_channels"`
	SalesChannels     []string       `mapstructure:"sales_channels"`
	FlexportItems     []ItemMapping  `mapstructure:"flexport_items"`
	AmazonBundles     []MappingEntry `mapstructure:"amazon_bundles"`
	WalmartBundles    []MappingEntry `mapstructure:"walmart_bundles"`
	TikTokBundles     []MappingEntry `mapstructure:"tiktok_bundles"`
	ShopifyBundles    []MappingEntry `mapstructure:"shopify_bundles"`
}

// MappingEntry 外部标识 → 内部SKU列表（长度>1即组合装）
type MappingEntry struct {
	Key  string   `mapstructure:"key"`
	SKUs []string `mapstructure:"skus"`
}

// ItemMapping Flexport 商品编码 → 内部SKU
type ItemMapping struct {
	Item string `mapstructure:"item"`
	SKU  string `mapstructure:"sku"`
}

// LoadConfig 加载配置文件（默认 config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig(path string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "inventory-sync")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("paths.input_dir", "input")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("output.save_json", true)
	v.SetDefault("output.combined_inventory", "combined_inventory_report")
	v.SetDefault("webhook.timeout", 60)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("prefixes.fba", "FBA_report_")
	v.SetDefault("prefixes.awd", "AWD_report_")
	v.SetDefault("prefixes.flexport_levels", "Flexport_levels_")
	v.SetDefault("prefixes.flexport_orders", "Flexport_orders_")
	v.SetDefault("prefixes.flexport_inbound", "Flexport_inbound_")
	v.SetDefault("prefixes.walmart_sales", "Walmart_sales_")
	v.SetDefault("prefixes.wfs_inventory", "WFS_inventory_")
	v.SetDefault("prefixes.amazon_sales", "Amazon_sales_")
	v.SetDefault("prefixes.walmart_items", "Walmart_items_")
	v.SetDefault("prefixes.tiktok_orders", "TikTok_orders_")
	v.SetDefault("prefixes.shopify_sales", "Shopify_sales_")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("WEBHOOK_URL"); v != "" {
		cfg.Webhook.URL = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("INPUT_DIR"); v != "" {
		cfg.Paths.InputDir = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Paths.OutputDir = v
	}
}
