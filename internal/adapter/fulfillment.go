package adapter

import (
	"strings"
)

// NormalizeAmazonSKU Amazon 库存报表（FBA/AWD）的原始SKU：
// 先按白名单过滤，再去掉尾缀 "s"（3001s → 3001）
func NormalizeAmazonSKU(deps *Deps, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if !deps.Catalog.AmazonAllowed(raw) {
		return "", false
	}
	return strings.TrimSuffix(raw, "s"), true
}
