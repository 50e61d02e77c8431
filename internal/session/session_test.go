package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/betbot/gomarket/internal/domain"
	"github.com/betbot/gomarket/internal/errclass"
	"github.com/betbot/gomarket/ledger/types"
)

// fakeGateway 可编程的账本只读视图
type fakeGateway struct {
	mu sync.Mutex

	products       []types.Product
	purchases      []types.Purchase
	sellerProducts []types.Product
	downloadLink   string

	catalogErr   error
	purchasesErr error
	sellerErr    error
	linkErr      error

	catalogCalls int
	callerCalls  int
	linkCalls    int
}

func (g *fakeGateway) GetAvailableProducts(_ context.Context) ([]types.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.catalogCalls++
	if g.catalogErr != nil {
		return nil, g.catalogErr
	}
	return g.products, nil
}

func (g *fakeGateway) GetUserPurchases(_ context.Context, _ string) ([]types.Purchase, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.callerCalls++
	if g.purchasesErr != nil {
		return nil, g.purchasesErr
	}
	return g.purchases, nil
}

func (g *fakeGateway) GetSellerProducts(_ context.Context, _ string) ([]types.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sellerErr != nil {
		return nil, g.sellerErr
	}
	return g.sellerProducts, nil
}

func (g *fakeGateway) GetDownloadLink(_ context.Context, _, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.linkCalls++
	if g.linkErr != nil {
		return "", g.linkErr
	}
	return g.downloadLink, nil
}

// fakeWallet 可编程的签名提供方
type fakeWallet struct {
	connected bool
	account   string

	submitErr   error
	submitCalls int
	lastPayload *types.EntryPayload
}

func (w *fakeWallet) Connected() bool          { return w.connected }
func (w *fakeWallet) Account() (string, bool)  { return w.account, w.account != "" }
func (w *fakeWallet) SignAndSubmit(_ context.Context, payload *types.EntryPayload) (*types.TransactionResult, error) {
	w.submitCalls++
	w.lastPayload = payload
	if w.submitErr != nil {
		return nil, w.submitErr
	}
	return &types.TransactionResult{Hash: "0xhash", Success: true}, nil
}

func wireProduct(id, name, price, seller string) types.Product {
	return types.Product{
		ID:           id,
		Name:         name,
		Description:  "desc",
		Price:        price,
		DownloadLink: "https://example.com/" + id,
		Seller:       seller,
		IsAvailable:  true,
	}
}

func newTestSession(gw *fakeGateway, w *fakeWallet) *Session {
	return New(Config{
		Gateway:       gw,
		Wallet:        w,
		ModuleAddress: "0xmarket",
	})
}

func TestLoadCatalog(t *testing.T) {
	gw := &fakeGateway{products: []types.Product{
		wireProduct("1", "电子书", "550000000", "0xseller"),
		wireProduct("2", "模板", "100000000", "0xseller"),
	}}
	s := newTestSession(gw, &fakeWallet{connected: true, account: "0xbuyer"})

	if err := s.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("LoadCatalog 报错: %v", err)
	}
	products := s.Products()
	if len(products) != 2 {
		t.Fatalf("商品数 got=%d want=2", len(products))
	}
	if products[0].Price != 550_000_000 {
		t.Fatalf("价格解析 got=%d want=550000000", products[0].Price)
	}
	if s.Loading() {
		t.Fatal("加载结束后 Loading 仍为 true")
	}
}

// 目录读失败是软失败：集合被整体替换为空，不保留半旧数据
func TestLoadCatalogFailureClearsProducts(t *testing.T) {
	gw := &fakeGateway{products: []types.Product{wireProduct("1", "电子书", "100", "0xs")}}
	s := newTestSession(gw, &fakeWallet{connected: true, account: "0xbuyer"})

	if err := s.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("首次加载报错: %v", err)
	}
	gw.mu.Lock()
	gw.catalogErr = errors.New("dial tcp: connection refused")
	gw.mu.Unlock()

	err := s.LoadCatalog(context.Background())
	if err == nil {
		t.Fatal("期望报错")
	}
	var ce *errclass.ClassifiedError
	if !errors.As(err, &ce) || ce.Code != "NETWORK_ERROR" {
		t.Fatalf("错误分类 got=%v want=NETWORK_ERROR", err)
	}
	if got := len(s.Products()); got != 0 {
		t.Fatalf("失败后应提交空集合，实际保留 %d 件", got)
	}
}

// 调用者数据的两路请求独立失败：失败一路保持原值，成功一路照常提交
func TestLoadCallerDataPartialFailure(t *testing.T) {
	gw := &fakeGateway{
		purchases: []types.Purchase{{
			ProductID: "1", Buyer: "0xbuyer", Seller: "0xs", PricePaid: "100", Timestamp: "1700000000",
		}},
		sellerProducts: []types.Product{wireProduct("9", "我的商品", "100", "0xbuyer")},
	}
	s := newTestSession(gw, &fakeWallet{connected: true, account: "0xbuyer"})

	if err := s.LoadCallerData(context.Background()); err != nil {
		t.Fatalf("首次加载报错: %v", err)
	}
	if len(s.Purchases()) != 1 || len(s.SellerProducts()) != 1 {
		t.Fatal("首次加载未提交两个集合")
	}

	// 购买记录一路故障，上架列表一路返回新数据
	gw.mu.Lock()
	gw.purchasesErr = errors.New("request timed out")
	gw.sellerProducts = []types.Product{
		wireProduct("9", "我的商品", "100", "0xbuyer"),
		wireProduct("10", "新商品", "200", "0xbuyer"),
	}
	gw.mu.Unlock()

	err := s.LoadCallerData(context.Background())
	if err == nil {
		t.Fatal("期望返回首个失败")
	}
	if got := len(s.Purchases()); got != 1 {
		t.Fatalf("失败一路应保持原值 got=%d want=1", got)
	}
	if got := len(s.SellerProducts()); got != 2 {
		t.Fatalf("成功一路应照常提交 got=%d want=2", got)
	}
}

// 钱包未就绪时调用者数据加载是显式空操作
func TestLoadCallerDataNotReady(t *testing.T) {
	gw := &fakeGateway{}
	s := newTestSession(gw, &fakeWallet{connected: true, account: ""})

	if err := s.LoadCallerData(context.Background()); err != nil {
		t.Fatalf("未就绪时应返回 nil: %v", err)
	}
	gw.mu.Lock()
	calls := gw.callerCalls
	gw.mu.Unlock()
	if calls != 0 {
		t.Fatalf("未就绪时不应触网 got=%d", calls)
	}
}

// 账户加载中的提交被前置拦截：不调签名器，也不触发刷新
func TestPurchaseRejectedWhileAccountLoading(t *testing.T) {
	gw := &fakeGateway{}
	w := &fakeWallet{connected: true, account: ""}
	s := newTestSession(gw, w)

	err := s.PurchaseProduct(context.Background(), "1")
	if err == nil {
		t.Fatal("期望报错")
	}
	var ce *errclass.ClassifiedError
	if !errors.As(err, &ce) || ce.Code != "WALLET_ACCOUNT_LOADING" {
		t.Fatalf("错误码 got=%v want=WALLET_ACCOUNT_LOADING", err)
	}
	if w.submitCalls != 0 {
		t.Fatalf("不应调用签名器 got=%d", w.submitCalls)
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.catalogCalls != 0 || gw.callerCalls != 0 {
		t.Fatal("被拦截的提交不应触发刷新")
	}
}

func TestPurchaseRejectedWhenDisconnected(t *testing.T) {
	s := newTestSession(&fakeGateway{}, &fakeWallet{connected: false})
	err := s.PurchaseProduct(context.Background(), "1")
	var ce *errclass.ClassifiedError
	if !errors.As(err, &ce) || ce.Code != "WALLET_NOT_CONNECTED" {
		t.Fatalf("错误码 got=%v want=WALLET_NOT_CONNECTED", err)
	}
}

// 上架成功：草稿清空、成功通知、各触发一次目录和调用者数据刷新
func TestAddProduct(t *testing.T) {
	gw := &fakeGateway{}
	w := &fakeWallet{connected: true, account: "0xseller"}
	s := newTestSession(gw, w)

	s.SetDraft(domain.ProductDraft{
		Name:         "电子书",
		Description:  "一本好书",
		Price:        "5.50",
		DownloadLink: "https://example.com/book",
	})
	if err := s.AddProduct(context.Background()); err != nil {
		t.Fatalf("AddProduct 报错: %v", err)
	}

	if w.submitCalls != 1 {
		t.Fatalf("签名提交次数 got=%d want=1", w.submitCalls)
	}
	// 价格以最小单位字符串入参
	args := w.lastPayload.Arguments
	if len(args) != 4 || args[2] != "550000000" {
		t.Fatalf("载荷参数错误: %v", args)
	}
	if d := s.Draft(); d.IsComplete() {
		t.Fatal("成功后草稿应清空")
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.catalogCalls != 1 || gw.callerCalls != 1 {
		t.Fatalf("刷新次数 catalog=%d caller=%d want=1/1", gw.catalogCalls, gw.callerCalls)
	}
}

// 上架失败时草稿保留，用户可直接重试
func TestAddProductFailureKeepsDraft(t *testing.T) {
	gw := &fakeGateway{}
	w := &fakeWallet{connected: true, account: "0xseller", submitErr: errors.New("EUNAUTHORIZED")}
	s := newTestSession(gw, w)

	draft := domain.ProductDraft{Name: "a", Description: "b", Price: "1", DownloadLink: "c"}
	s.SetDraft(draft)

	err := s.AddProduct(context.Background())
	var ce *errclass.ClassifiedError
	if !errors.As(err, &ce) || ce.Code != "UNAUTHORIZED" {
		t.Fatalf("错误码 got=%v want=UNAUTHORIZED", err)
	}
	if s.Draft() != draft {
		t.Fatal("失败后草稿应保留")
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.catalogCalls != 0 {
		t.Fatal("失败的提交不应触发刷新")
	}
}

func TestAddProductValidation(t *testing.T) {
	w := &fakeWallet{connected: true, account: "0xseller"}
	s := newTestSession(&fakeGateway{}, w)

	// 必填字段缺失
	s.SetDraft(domain.ProductDraft{Name: "a"})
	err := s.AddProduct(context.Background())
	var ce *errclass.ClassifiedError
	if !errors.As(err, &ce) || ce.Code != "EMPTY_FIELDS" {
		t.Fatalf("got=%v want=EMPTY_FIELDS", err)
	}

	// 价格无法解析
	s.SetDraft(domain.ProductDraft{Name: "a", Description: "b", Price: "abc", DownloadLink: "c"})
	err = s.AddProduct(context.Background())
	if !errors.As(err, &ce) || ce.Code != "INVALID_PRICE" {
		t.Fatalf("got=%v want=INVALID_PRICE", err)
	}
	if w.submitCalls != 0 {
		t.Fatal("本地校验失败不应触达签名器")
	}
}

// 购买成功：弹窗携带提交前查到的商品名和价格，超时后自动关闭
func TestPurchaseModalLifecycle(t *testing.T) {
	gw := &fakeGateway{products: []types.Product{wireProduct("1", "电子书", "550000000", "0xs")}}
	w := &fakeWallet{connected: true, account: "0xbuyer"}
	s := New(Config{
		Gateway:       gw,
		Wallet:        w,
		ModuleAddress: "0xmarket",
		ModalTimeout:  30 * time.Millisecond,
	})
	if err := s.LoadCatalog(context.Background()); err != nil {
		t.Fatalf("LoadCatalog 报错: %v", err)
	}

	if err := s.PurchaseProduct(context.Background(), "1"); err != nil {
		t.Fatalf("PurchaseProduct 报错: %v", err)
	}
	modal := s.PurchaseModalState()
	if !modal.IsOpen || modal.ProductName != "电子书" || modal.Price != "5.50" {
		t.Fatalf("弹窗状态错误: %+v", modal)
	}

	// 超时后自动关闭
	deadline := time.Now().Add(time.Second)
	for s.PurchaseModalState().IsOpen {
		if time.Now().After(deadline) {
			t.Fatal("购买弹窗未自动关闭")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGetDownloadLink(t *testing.T) {
	gw := &fakeGateway{downloadLink: "https://example.com/file"}
	s := newTestSession(gw, &fakeWallet{connected: true, account: "0xbuyer"})

	if err := s.GetDownloadLink(context.Background(), "1"); err != nil {
		t.Fatalf("GetDownloadLink 报错: %v", err)
	}
	modal := s.DownloadModalState()
	if !modal.IsOpen || modal.DownloadLink != "https://example.com/file" {
		t.Fatalf("下载弹窗状态错误: %+v", modal)
	}

	// 下载弹窗需要显式关闭
	s.CloseDownloadModal()
	if s.DownloadModalState().IsOpen {
		t.Fatal("显式关闭后弹窗仍打开")
	}

	// 第二次命中缓存，不再触网
	if err := s.GetDownloadLink(context.Background(), "1"); err != nil {
		t.Fatalf("二次获取报错: %v", err)
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	if gw.linkCalls != 1 {
		t.Fatalf("缓存未命中: linkCalls=%d want=1", gw.linkCalls)
	}
}

// 空链接：通知错误但不报错、不弹窗（远端把"未购买"表达为空值而非中止）
func TestGetDownloadLinkEmpty(t *testing.T) {
	gw := &fakeGateway{downloadLink: ""}
	s := newTestSession(gw, &fakeWallet{connected: true, account: "0xbuyer"})

	if err := s.GetDownloadLink(context.Background(), "1"); err != nil {
		t.Fatalf("空链接不应返回错误: %v", err)
	}
	if s.DownloadModalState().IsOpen {
		t.Fatal("空链接不应弹窗")
	}
	notifications := s.Notifications()
	if len(notifications) == 0 {
		t.Fatal("空链接应产生错误通知")
	}
}

func TestDerivedState(t *testing.T) {
	gw := &fakeGateway{
		products: []types.Product{
			wireProduct("1", "电子书", "100", "0xseller"),
			wireProduct("2", "模板", "200", "0xbuyer"),
		},
		purchases: []types.Purchase{{
			ProductID: "1", Buyer: "0xbuyer", Seller: "0xseller", PricePaid: "100", Timestamp: "1700000000",
		}},
	}
	s := newTestSession(gw, &fakeWallet{connected: true, account: "0xbuyer"})
	if err := s.LoadCatalog(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadCallerData(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !s.HasPurchased("1") {
		t.Fatal("HasPurchased(1) 应为 true")
	}
	if s.HasPurchased("2") {
		t.Fatal("HasPurchased(2) 应为 false")
	}
	products := s.Products()
	if !IsOwnProduct(products[1], s.Account()) {
		t.Fatal("IsOwnProduct 应识别自己上架的商品")
	}
	if IsOwnProduct(products[0], s.Account()) {
		t.Fatal("IsOwnProduct 误报")
	}
}

// 通知按上限截断，保留最近的
func TestNotificationCap(t *testing.T) {
	s := newTestSession(&fakeGateway{}, &fakeWallet{})
	for i := 0; i < maxNotifications+10; i++ {
		s.notifySuccess("ok")
	}
	if got := len(s.Notifications()); got != maxNotifications {
		t.Fatalf("通知条数 got=%d want=%d", got, maxNotifications)
	}
}
