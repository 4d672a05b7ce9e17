package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/giftguide-next/internal/constants"
	"github.com/giftguide-next/internal/guide"
	"github.com/giftguide-next/internal/models"
	"github.com/giftguide-next/internal/storefront"
)

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]*storefront.Product
	failures map[string]error
	fetches  []string
}

func (c *fakeCatalog) FetchProduct(ctx context.Context, handle string) (*storefront.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches = append(c.fetches, handle)
	if err, ok := c.failures[handle]; ok {
		return nil, err
	}
	product, ok := c.products[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storefront.ErrProductNotFound, handle)
	}
	clone := *product
	return &clone, nil
}

type fakeCart struct {
	mu    sync.Mutex
	adds  []storefront.AddToCartInput
	fails int // 前 N 次调用返回失败
}

func (c *fakeCart) AddToCart(ctx context.Context, input storefront.AddToCartInput) (*storefront.LineItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fails > 0 {
		c.fails--
		return nil, fmt.Errorf("%w: status=422", storefront.ErrCartAddFailed)
	}
	c.adds = append(c.adds, input)
	return &storefront.LineItem{ID: input.VariantID, Quantity: input.Quantity}, nil
}

type memorySubmissionRepo struct {
	mu          sync.Mutex
	submissions []models.Submission
}

func (r *memorySubmissionRepo) Create(submission *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions = append(r.submissions, *submission)
	return nil
}

func (r *memorySubmissionRepo) ListRecent(limit int) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Submission, len(r.submissions))
	copy(out, r.submissions)
	return out, nil
}

func (r *memorySubmissionRepo) CountByHandle(handle string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, s := range r.submissions {
		if s.ProductHandle == handle {
			count++
		}
	}
	return count, nil
}

func newGuideProduct() *storefront.Product {
	return &storefront.Product{
		Handle:        "graphic-shirt",
		Title:         "Graphic Shirt",
		Price:         2500,
		PriceCurrency: "USD",
		Options: []storefront.Option{
			{Name: "Style", Values: []string{"Tee", "Hoodie"}},
			{Name: "Print", Values: []string{"Tote", "Plain"}},
		},
		Variants: []storefront.Variant{
			{ID: 11, Options: []string{"Tee", "Tote"}, Price: 2500, Available: true},
			{ID: 12, Options: []string{"Tee", "Plain"}, Price: 2500, Available: true},
			{ID: 13, Options: []string{"Hoodie", "Tote"}, Price: 4500, Available: true},
			{ID: 14, Options: []string{"Hoodie", "Plain"}, Price: 4500, Available: false},
		},
	}
}

func newBonusProduct() *storefront.Product {
	return &storefront.Product{
		Handle:        "bonus-pin",
		Title:         "Bonus Pin",
		Price:         0,
		PriceCurrency: "USD",
		Variants: []storefront.Variant{
			{ID: 91, Price: 0, Available: false},
			{ID: 92, Price: 0, Available: true},
		},
	}
}

type guideFixture struct {
	service *GuideService
	catalog *fakeCatalog
	cart    *fakeCart
	repo    *memorySubmissionRepo
}

func newGuideFixture(t *testing.T, rule *guide.BonusRule) *guideFixture {
	t.Helper()

	catalog := &fakeCatalog{
		products: map[string]*storefront.Product{
			"graphic-shirt": newGuideProduct(),
			"bonus-pin":     newBonusProduct(),
		},
		failures: map[string]error{},
	}
	cart := &fakeCart{}
	repo := &memorySubmissionRepo{}
	submitLog := NewSubmissionService(repo, nil)
	sessions := guide.NewManager(time.Minute, 100)

	return &guideFixture{
		service: NewGuideService(catalog, cart, rule, sessions, submitLog, ""),
		catalog: catalog,
		cart:    cart,
		repo:    repo,
	}
}

func openReadySession(t *testing.T, f *guideFixture) string {
	t.Helper()

	view, err := f.service.OpenSession(context.Background(), "graphic-shirt")
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	if view.State != constants.SessionStateReady {
		t.Fatalf("expected ready state after open, got %q", view.State)
	}
	return view.ID
}

func TestOpenSession_EmptyHandleIsRejected(t *testing.T) {
	f := newGuideFixture(t, nil)

	if _, err := f.service.OpenSession(context.Background(), "  "); !errors.Is(err, ErrHandleRequired) {
		t.Fatalf("expected handle required error, got %v", err)
	}
	if len(f.catalog.fetches) != 0 {
		t.Fatalf("expected no catalog fetch without handle, got %v", f.catalog.fetches)
	}
}

func TestOpenSession_LoadFailureRemovesSession(t *testing.T) {
	f := newGuideFixture(t, nil)
	f.catalog.failures["graphic-shirt"] = fmt.Errorf("%w: status=500", storefront.ErrProductNotFound)

	if _, err := f.service.OpenSession(context.Background(), "graphic-shirt"); !errors.Is(err, ErrProductLoadFailed) {
		t.Fatalf("expected product load failed error, got %v", err)
	}
}

func TestOpenSession_ViewShowsProductAndBasePrice(t *testing.T) {
	f := newGuideFixture(t, nil)

	view, err := f.service.OpenSession(context.Background(), "graphic-shirt")
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	if view.Product == nil || view.Product.Title != "Graphic Shirt" {
		t.Fatalf("expected product in view, got %+v", view.Product)
	}
	if view.Variant != nil {
		t.Fatalf("expected no resolved variant before selection, got %+v", view.Variant)
	}
	if view.DisplayPrice.String() != "25.00" {
		t.Fatalf("expected base display price 25.00, got %s", view.DisplayPrice)
	}
	if view.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", view.Quantity)
	}
}

func TestSelectOption_ResolvesVariantAndUpdatesPrice(t *testing.T) {
	f := newGuideFixture(t, nil)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Hoodie"); err != nil {
		t.Fatalf("select style failed: %v", err)
	}
	view, err := f.service.SelectOption(id, "Print", "Tote")
	if err != nil {
		t.Fatalf("select print failed: %v", err)
	}
	if view.Variant == nil || view.Variant.ID != 13 {
		t.Fatalf("expected resolved variant 13, got %+v", view.Variant)
	}
	if !view.Purchasable {
		t.Fatalf("expected purchasable variant")
	}
	if view.DisplayPrice.String() != "45.00" {
		t.Fatalf("expected variant display price 45.00, got %s", view.DisplayPrice)
	}
}

func TestSelectOption_InvalidValueRejected(t *testing.T) {
	f := newGuideFixture(t, nil)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Jacket"); !errors.Is(err, ErrOptionInvalid) {
		t.Fatalf("expected option invalid error, got %v", err)
	}
	if _, err := f.service.SelectOption(id, "Fabric", "Cotton"); !errors.Is(err, ErrOptionInvalid) {
		t.Fatalf("expected option invalid error for unknown option, got %v", err)
	}
}

func TestSubmit_AddsMainItemAndRedirects(t *testing.T) {
	f := newGuideFixture(t, nil)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Tee"); err != nil {
		t.Fatalf("select style failed: %v", err)
	}
	if _, err := f.service.SelectOption(id, "Print", "Plain"); err != nil {
		t.Fatalf("select print failed: %v", err)
	}

	result, err := f.service.Submit(context.Background(), id, 3)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.VariantID != 12 || result.Quantity != 3 {
		t.Fatalf("unexpected submit result: %+v", result)
	}
	if result.BonusFired || result.BonusAdded {
		t.Fatalf("expected no bonus without a rule, got %+v", result)
	}
	if result.Redirect != constants.CartRoute {
		t.Fatalf("expected redirect to %s, got %q", constants.CartRoute, result.Redirect)
	}
	if len(f.cart.adds) != 1 {
		t.Fatalf("expected single cart add, got %d", len(f.cart.adds))
	}
	add := f.cart.adds[0]
	if add.VariantID != 12 || add.Quantity != 3 || len(add.Properties) != 0 {
		t.Fatalf("unexpected main cart add: %+v", add)
	}

	// 提交成功后会话销毁
	if _, err := f.service.GetSession(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session removed after submit, got %v", err)
	}
}

func TestSubmit_WithoutResolvedVariantFails(t *testing.T) {
	f := newGuideFixture(t, nil)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Tee"); err != nil {
		t.Fatalf("select style failed: %v", err)
	}

	if _, err := f.service.Submit(context.Background(), id, 0); !errors.Is(err, ErrNoPurchasableVariant) {
		t.Fatalf("expected no purchasable variant error, got %v", err)
	}
	if len(f.cart.adds) != 0 {
		t.Fatalf("expected no cart add, got %v", f.cart.adds)
	}

	view, err := f.service.GetSession(id)
	if err != nil {
		t.Fatalf("expected session kept for retry: %v", err)
	}
	if view.State != constants.SessionStateReady {
		t.Fatalf("expected ready state, got %q", view.State)
	}
	if view.ErrorCode != constants.SessionErrorNoVariant {
		t.Fatalf("expected no_variant error code, got %q", view.ErrorCode)
	}
}

func TestSubmit_MainAddFailureKeepsSessionAndSkipsBonus(t *testing.T) {
	rule := guide.NewBonusRule("tee", "tote", "bonus-pin")
	f := newGuideFixture(t, rule)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Tee"); err != nil {
		t.Fatalf("select style failed: %v", err)
	}
	if _, err := f.service.SelectOption(id, "Print", "Tote"); err != nil {
		t.Fatalf("select print failed: %v", err)
	}
	f.cart.fails = 1

	if _, err := f.service.Submit(context.Background(), id, 0); !errors.Is(err, ErrCartAddFailed) {
		t.Fatalf("expected cart add failed error, got %v", err)
	}
	if len(f.cart.adds) != 0 {
		t.Fatalf("expected no successful add, got %v", f.cart.adds)
	}
	for _, handle := range f.catalog.fetches {
		if handle == "bonus-pin" {
			t.Fatalf("bonus product must not be fetched when main add fails")
		}
	}

	view, err := f.service.GetSession(id)
	if err != nil {
		t.Fatalf("expected session kept for retry: %v", err)
	}
	if view.State != constants.SessionStateReady {
		t.Fatalf("expected ready state for retry, got %q", view.State)
	}
	if view.ErrorCode != constants.SessionErrorAddFailed {
		t.Fatalf("expected add_failed error code, got %q", view.ErrorCode)
	}
	if view.Selection["Print"] != "Tote" {
		t.Fatalf("expected selection preserved, got %v", view.Selection)
	}

	// 重试成功
	f.cart.fails = 0
	result, err := f.service.Submit(context.Background(), id, 0)
	if err != nil {
		t.Fatalf("retry submit failed: %v", err)
	}
	if result.VariantID != 11 {
		t.Fatalf("expected variant 11 on retry, got %d", result.VariantID)
	}
}

func TestSubmit_BonusAddedAfterMainSuccess(t *testing.T) {
	rule := guide.NewBonusRule("Tee", "Tote", "bonus-pin")
	f := newGuideFixture(t, rule)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Tee"); err != nil {
		t.Fatalf("select style failed: %v", err)
	}
	if _, err := f.service.SelectOption(id, "Print", "Tote"); err != nil {
		t.Fatalf("select print failed: %v", err)
	}

	result, err := f.service.Submit(context.Background(), id, 2)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if !result.BonusFired || !result.BonusAdded {
		t.Fatalf("expected bonus fired and added, got %+v", result)
	}
	if len(f.cart.adds) != 2 {
		t.Fatalf("expected main and bonus cart adds, got %d", len(f.cart.adds))
	}

	main := f.cart.adds[0]
	if main.VariantID != 11 || main.Quantity != 2 {
		t.Fatalf("unexpected main add: %+v", main)
	}
	bonus := f.cart.adds[1]
	if bonus.VariantID != 92 {
		t.Fatalf("expected first available bonus variant 92, got %d", bonus.VariantID)
	}
	if bonus.Quantity != 1 {
		t.Fatalf("expected bonus quantity fixed at 1, got %d", bonus.Quantity)
	}
	if bonus.Properties[constants.AutoAddedPropertyKey] != constants.AutoAddedPropertyValue {
		t.Fatalf("expected auto added marker on bonus, got %v", bonus.Properties)
	}
}

func TestSubmit_BonusNotFiredForNonTriggerSelection(t *testing.T) {
	rule := guide.NewBonusRule("tee", "tote", "bonus-pin")
	f := newGuideFixture(t, rule)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Tee"); err != nil {
		t.Fatalf("select style failed: %v", err)
	}
	if _, err := f.service.SelectOption(id, "Print", "Plain"); err != nil {
		t.Fatalf("select print failed: %v", err)
	}

	result, err := f.service.Submit(context.Background(), id, 0)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.BonusFired || result.BonusAdded {
		t.Fatalf("expected no bonus for Tee+Plain, got %+v", result)
	}
	if len(f.cart.adds) != 1 {
		t.Fatalf("expected only main cart add, got %d", len(f.cart.adds))
	}
}

func TestSubmit_BonusFetchFailureDoesNotFailSubmit(t *testing.T) {
	rule := guide.NewBonusRule("tee", "tote", "bonus-pin")
	f := newGuideFixture(t, rule)
	f.catalog.failures["bonus-pin"] = fmt.Errorf("%w: status=404", storefront.ErrProductNotFound)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Tee"); err != nil {
		t.Fatalf("select style failed: %v", err)
	}
	if _, err := f.service.SelectOption(id, "Print", "Tote"); err != nil {
		t.Fatalf("select print failed: %v", err)
	}

	result, err := f.service.Submit(context.Background(), id, 0)
	if err != nil {
		t.Fatalf("submit must succeed despite bonus failure: %v", err)
	}
	if !result.BonusFired {
		t.Fatalf("expected bonus fired, got %+v", result)
	}
	if result.BonusAdded {
		t.Fatalf("expected bonus not added when fetch fails")
	}
	if result.Redirect != constants.CartRoute {
		t.Fatalf("expected redirect preserved, got %q", result.Redirect)
	}
}

func TestSubmit_OptionlessProductUsesFirstAvailable(t *testing.T) {
	f := newGuideFixture(t, nil)
	f.catalog.products["gift-card"] = &storefront.Product{
		Handle:        "gift-card",
		Title:         "Gift Card",
		Price:         5000,
		PriceCurrency: "USD",
		Variants: []storefront.Variant{
			{ID: 51, Price: 5000, Available: false},
			{ID: 52, Price: 5000, Available: true},
		},
	}

	view, err := f.service.OpenSession(context.Background(), "gift-card")
	if err != nil {
		t.Fatalf("open session failed: %v", err)
	}
	result, err := f.service.Submit(context.Background(), view.ID, 0)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if result.VariantID != 52 {
		t.Fatalf("expected first available variant 52, got %d", result.VariantID)
	}
	if result.Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %d", result.Quantity)
	}
}

func TestSubmit_RecordsSubmission(t *testing.T) {
	rule := guide.NewBonusRule("tee", "tote", "bonus-pin")
	f := newGuideFixture(t, rule)
	id := openReadySession(t, f)

	if _, err := f.service.SelectOption(id, "Style", "Tee"); err != nil {
		t.Fatalf("select style failed: %v", err)
	}
	if _, err := f.service.SelectOption(id, "Print", "Tote"); err != nil {
		t.Fatalf("select print failed: %v", err)
	}
	if _, err := f.service.Submit(context.Background(), id, 2); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	submissions, err := f.repo.ListRecent(10)
	if err != nil {
		t.Fatalf("list submissions failed: %v", err)
	}
	if len(submissions) != 1 {
		t.Fatalf("expected one submission record, got %d", len(submissions))
	}
	record := submissions[0]
	if record.SessionID != id {
		t.Fatalf("expected session id %s, got %s", id, record.SessionID)
	}
	if record.ProductHandle != "graphic-shirt" || record.VariantID != 11 || record.Quantity != 2 {
		t.Fatalf("unexpected submission record: %+v", record)
	}
	if record.UnitPrice.String() != "25.00" {
		t.Fatalf("expected unit price 25.00, got %s", record.UnitPrice)
	}
	if !record.BonusFired || !record.BonusAdded || record.BonusHandle != "bonus-pin" {
		t.Fatalf("unexpected bonus fields: %+v", record)
	}
}

func TestDismissSession_RemovesSession(t *testing.T) {
	f := newGuideFixture(t, nil)
	id := openReadySession(t, f)

	if err := f.service.DismissSession(id); err != nil {
		t.Fatalf("dismiss session failed: %v", err)
	}
	if _, err := f.service.GetSession(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session gone after dismiss, got %v", err)
	}
	if err := f.service.DismissSession(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected not found on double dismiss, got %v", err)
	}
}

func TestConfig_ReflectsRuleAndCartURL(t *testing.T) {
	f := newGuideFixture(t, nil)
	cfg := f.service.Config()
	if cfg.BonusConfigured {
		t.Fatalf("expected bonus not configured without a rule")
	}
	if cfg.CartURL != constants.CartRoute {
		t.Fatalf("expected default cart url %s, got %q", constants.CartRoute, cfg.CartURL)
	}

	withRule := newGuideFixture(t, guide.NewBonusRule("a", "b", "c"))
	if !withRule.service.Config().BonusConfigured {
		t.Fatalf("expected bonus configured with a rule")
	}
}
