// internal/adapter/adapter.go
package adapter

import (
	"github.com/sirupsen/logrus"

	"InventorySync/internal/config"
	"InventorySync/internal/interfaces"
	"InventorySync/internal/model"
	"InventorySync/internal/utils/reportfile"
)

// Deps 解析器共享依赖（只读）
type Deps struct {
	Logger   *logrus.Logger
	Catalog  *config.Catalog
	Loader   *reportfile.Loader
	Prefixes config.PrefixConfig
}

// NewDeps 组装解析器依赖
func NewDeps(logger *logrus.Logger, catalog *config.Catalog, prefixes config.PrefixConfig) *Deps {
	return &Deps{
		Logger:   logger,
		Catalog:  catalog,
		Loader:   reportfile.NewLoader(logger),
		Prefixes: prefixes,
	}
}

// Factory 渠道解析器工厂函数签名
type Factory func(deps *Deps) interfaces.ChannelParser

// LogMissingSKUs 诊断：主SKU中本来源未出现的（仅告警）
func LogMissingSKUs(deps *Deps, source string, rows []model.Row) {
	present := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		present[r.SKU] = struct{}{}
	}
	var missing []string
	for _, sku := range deps.Catalog.SKUOrder() {
		if _, ok := present[sku]; !ok {
			missing = append(missing, sku)
		}
	}
	if len(missing) == 0 {
		return
	}
	deps.Logger.WithFields(logrus.Fields{
		"source":  source,
		"count":   len(missing),
		"missing": missing,
	}).Warn("主SKU未在来源中出现")
}
