package guide

import (
	"sync"
	"time"

	"github.com/giftguide-next/internal/constants"
	"github.com/giftguide-next/internal/storefront"
)

// Session 一次打开的礼品指南弹窗会话
// 状态机：closed → loading → ready → submitting → (closed | ready+error)。
// 除 Generation 外的字段仅在持有锁时读写；I/O 在锁外进行，
// 完成后用发起时的 Generation 判断结果是否已过期。
type Session struct {
	sync.Mutex

	ID        string
	State     string
	ErrorCode string

	Handle    string
	Product   *storefront.Product
	Index     VariantIndex
	Selection map[string]string
	Quantity  int

	// Generation 单调递增的会话代号，关闭或重新加载都会令在途 I/O 失效
	Generation uint64
	UpdatedAt  time.Time
}

// NewSession 创建关闭状态的会话
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		State:     constants.SessionStateClosed,
		Selection: map[string]string{},
		Quantity:  1,
		UpdatedAt: time.Now(),
	}
}

// BeginLoading 进入加载状态并返回本次加载的代号
// 丢弃上一件商品的全部状态；之前发起的 I/O 完成时将因代号不匹配被丢弃。
func (s *Session) BeginLoading(handle string) uint64 {
	s.Generation++
	s.State = constants.SessionStateLoading
	s.ErrorCode = constants.SessionErrorNone
	s.Handle = handle
	s.Product = nil
	s.Index = nil
	s.Selection = map[string]string{}
	s.Quantity = 1
	s.touch()
	return s.Generation
}

// CompleteLoad 商品拉取成功，进入就绪状态
// generation 与当前代号不一致说明会话已关闭或被新的加载取代，结果作废。
func (s *Session) CompleteLoad(generation uint64, product *storefront.Product) error {
	if generation != s.Generation || s.State != constants.SessionStateLoading {
		return ErrSessionStale
	}
	s.State = constants.SessionStateReady
	s.ErrorCode = constants.SessionErrorNone
	s.Product = product
	s.Index = BuildVariantIndex(product)
	s.Selection = map[string]string{}
	s.Quantity = 1
	s.touch()
	return nil
}

// FailLoad 商品拉取失败，回到关闭状态（不展示半成品界面）
func (s *Session) FailLoad(generation uint64) error {
	if generation != s.Generation || s.State != constants.SessionStateLoading {
		return ErrSessionStale
	}
	s.State = constants.SessionStateClosed
	s.ErrorCode = constants.SessionErrorLoadFailed
	s.Product = nil
	s.Index = nil
	s.touch()
	return nil
}

// SelectValue 选择某个规格的值（单选：新值替换旧值，不同规格互不影响）
func (s *Session) SelectValue(option, value string) error {
	if s.State != constants.SessionStateReady {
		return ErrSessionNotReady
	}
	opt := s.findOption(option)
	if opt == nil {
		return ErrUnknownOption
	}
	if !containsValue(opt.Values, value) {
		return ErrUnknownOptionValue
	}
	s.Selection[opt.Name] = value
	s.ErrorCode = constants.SessionErrorNone
	s.touch()
	return nil
}

// SetQuantity 设置数量，最小为 1（非法输入一律取 1）
func (s *Session) SetQuantity(quantity int) error {
	if s.State != constants.SessionStateReady {
		return ErrSessionNotReady
	}
	s.Quantity = clampQuantity(quantity)
	s.touch()
	return nil
}

// Resolve 按当前选择解析变体
func (s *Session) Resolve() *storefront.Variant {
	return ResolveVariant(s.Product, s.Index, s.Selection)
}

// BeginSubmit 进入提交状态并返回要加购的变体
// 解析不到变体时不触达购物车服务，保持就绪状态并标记行内错误。
func (s *Session) BeginSubmit(quantity int) (*storefront.Variant, error) {
	if s.State != constants.SessionStateReady {
		return nil, ErrSessionNotReady
	}
	if quantity != 0 {
		s.Quantity = clampQuantity(quantity)
	}
	if s.Quantity < 1 {
		s.Quantity = 1
	}
	variant := s.Resolve()
	if variant == nil {
		s.ErrorCode = constants.SessionErrorNoVariant
		s.touch()
		return nil, ErrNoPurchasableVariant
	}
	s.State = constants.SessionStateSubmitting
	s.ErrorCode = constants.SessionErrorNone
	s.touch()
	return variant, nil
}

// FailSubmit 主商品加购失败：回到就绪状态，保留当前选择供重试
func (s *Session) FailSubmit(generation uint64) error {
	if generation != s.Generation || s.State != constants.SessionStateSubmitting {
		return ErrSessionStale
	}
	s.State = constants.SessionStateReady
	s.ErrorCode = constants.SessionErrorAddFailed
	s.touch()
	return nil
}

// CompleteSubmit 主商品加购成功（不论自动加购结果），会话关闭
func (s *Session) CompleteSubmit(generation uint64) error {
	if generation != s.Generation || s.State != constants.SessionStateSubmitting {
		return ErrSessionStale
	}
	s.close()
	return nil
}

// Dismiss 用户主动关闭：无条件回到关闭状态，丢弃选择与可见错误
func (s *Session) Dismiss() {
	s.close()
}

// Expired 判断会话是否闲置超期
func (s *Session) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(s.UpdatedAt) > ttl
}

func (s *Session) close() {
	s.Generation++
	s.State = constants.SessionStateClosed
	s.ErrorCode = constants.SessionErrorNone
	s.Handle = ""
	s.Product = nil
	s.Index = nil
	s.Selection = map[string]string{}
	s.Quantity = 1
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now()
}

func (s *Session) findOption(name string) *storefront.Option {
	if s.Product == nil {
		return nil
	}
	for i := range s.Product.Options {
		if s.Product.Options[i].Name == name {
			return &s.Product.Options[i]
		}
	}
	return nil
}

func containsValue(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func clampQuantity(quantity int) int {
	if quantity < 1 {
		return 1
	}
	return quantity
}
