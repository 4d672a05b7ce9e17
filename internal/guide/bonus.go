package guide

import (
	"strings"

	"github.com/giftguide-next/internal/storefront"
)

// BonusRule 自动加购触发规则（页面加载时读取一次，整个生命周期不变）
type BonusRule struct {
	TriggerA    string
	TriggerB    string
	BonusHandle string
}

// BonusDecision 触发评估结果
type BonusDecision struct {
	Fire        bool
	BonusHandle string
}

// NewBonusRule 创建触发规则；两个触发值或 bonus handle 缺失时返回 nil（未配置规则）
func NewBonusRule(triggerA, triggerB, bonusHandle string) *BonusRule {
	triggerA = strings.TrimSpace(triggerA)
	triggerB = strings.TrimSpace(triggerB)
	bonusHandle = strings.TrimSpace(bonusHandle)
	if triggerA == "" || triggerB == "" || bonusHandle == "" {
		return nil
	}
	return &BonusRule{TriggerA: triggerA, TriggerB: triggerB, BonusHandle: bonusHandle}
}

// Evaluate 评估是否触发自动加购，无副作用
// 每个规格的生效值取 selection 中的已选值，缺失时回退到变体对应位置的规格值。
// 所有生效值与两个触发值统一小写并去除首尾空白后，按无序集合判断：
// 两个触发值都出现在生效值集合中才触发（与规格位置无关，允许来自不同规格）。
func (r *BonusRule) Evaluate(product *storefront.Product, variant *storefront.Variant, selection map[string]string) BonusDecision {
	if r == nil || product == nil || variant == nil {
		return BonusDecision{}
	}
	triggerA := normalizeOptionValue(r.TriggerA)
	triggerB := normalizeOptionValue(r.TriggerB)
	if triggerA == "" || triggerB == "" || r.BonusHandle == "" {
		return BonusDecision{}
	}

	effective := make(map[string]struct{}, len(product.Options))
	for i, opt := range product.Options {
		value := selection[opt.Name]
		if value == "" && i < len(variant.Options) {
			value = variant.Options[i]
		}
		effective[normalizeOptionValue(value)] = struct{}{}
	}

	if _, ok := effective[triggerA]; !ok {
		return BonusDecision{}
	}
	if _, ok := effective[triggerB]; !ok {
		return BonusDecision{}
	}
	return BonusDecision{Fire: true, BonusHandle: r.BonusHandle}
}

func normalizeOptionValue(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
