package port

import (
	"context"

	"hlsnap/internal/domain/model"
)

// MarketSource 行情元数据与动态上下文的访问接口
type MarketSource interface {
	Name() string
	// MetaAndAssetContexts returns the static asset descriptors and the
	// per-asset live state. The two slices are joined by asset name.
	MetaAndAssetContexts(ctx context.Context) ([]model.AssetMeta, []model.AssetContext, error)
}
