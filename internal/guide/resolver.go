package guide

import (
	"strings"

	"github.com/giftguide-next/internal/storefront"
)

// variantKeySeparator 变体索引键的连接符，与店铺端变体标题格式一致
const variantKeySeparator = " / "

// VariantIndex 规格值组合到变体的只读索引
// 每次商品加载后重建一次，之后不再修改。
type VariantIndex map[string]*storefront.Variant

// BuildVariantIndex 预计算规格值组合索引
// 键为变体规格值按商品规格顺序以 " / " 连接的字符串。
func BuildVariantIndex(product *storefront.Product) VariantIndex {
	if product == nil {
		return VariantIndex{}
	}
	index := make(VariantIndex, len(product.Variants))
	for i := range product.Variants {
		v := &product.Variants[i]
		index[strings.Join(v.Options, variantKeySeparator)] = v
	}
	return index
}

// ResolveVariant 根据当前已选规格解析唯一可购买变体
// 纯函数：相同输入恒定返回相同结果。
//   - 无规格商品：返回第一个可售变体，否则 nil；
//   - 任一规格未选：nil（选择不完整，禁止下单而不是猜测）；
//   - 组合完整但无对应变体：nil（无效组合）。
// 匹配按位置精确比较字符串，不做大小写归一（商品数据定义规范写法）。
func ResolveVariant(product *storefront.Product, index VariantIndex, selection map[string]string) *storefront.Variant {
	if product == nil {
		return nil
	}
	if len(product.Options) == 0 {
		return product.FirstAvailableVariant()
	}

	keys := make([]string, 0, len(product.Options))
	for _, opt := range product.Options {
		value, ok := selection[opt.Name]
		if !ok || value == "" {
			return nil
		}
		keys = append(keys, value)
	}
	return index[strings.Join(keys, variantKeySeparator)]
}
