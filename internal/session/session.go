package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/betbot/gomarket/internal/domain"
	"github.com/betbot/gomarket/internal/errclass"
	"github.com/betbot/gomarket/internal/events"
	"github.com/betbot/gomarket/ledger/types"
	"github.com/betbot/gomarket/ledger/wallet"
	"github.com/betbot/gomarket/pkg/cache"
	"github.com/betbot/gomarket/pkg/logger"
	"github.com/betbot/gomarket/pkg/persistence"
	"github.com/betbot/gomarket/pkg/sigchan"
)

// Gateway 账本只读视图（由 ledger/client 实现）
type Gateway interface {
	GetAvailableProducts(ctx context.Context) ([]types.Product, error)
	GetSellerProducts(ctx context.Context, seller string) ([]types.Product, error)
	GetUserPurchases(ctx context.Context, buyer string) ([]types.Purchase, error)
	GetDownloadLink(ctx context.Context, buyer, productID string) (string, error)
}

// maxNotifications 保留的最近通知条数
const maxNotifications = 50

// defaultPurchaseModalTimeout 购买成功弹窗自动关闭时间
const defaultPurchaseModalTimeout = 4 * time.Second

// defaultLinkCacheTTL 下载链接缓存时长
const defaultLinkCacheTTL = 5 * time.Minute

// Config 会话配置
type Config struct {
	Gateway       Gateway
	Wallet        wallet.Provider
	ModuleAddress string
	Snapshot      persistence.Store // 可选：离线快照存储
	ModalTimeout  time.Duration     // 0 时使用默认值
	LinkCacheTTL  time.Duration     // 0 时使用默认值
}

// Session 市场客户端会话：编排核心的显式上下文对象
// 不使用进程级单例，多个独立会话可以共存并单独测试
//
// 三个集合只由读路径整体替换，写路径只触发读路径、从不直接改写；
// loading 标志是咨询性的，界面应据此禁用操作入口，但核心不强制互斥
type Session struct {
	gw     Gateway
	wallet wallet.Provider
	module string

	mu             sync.RWMutex
	products       []domain.Product
	purchases      []domain.Purchase
	sellerProducts []domain.Product
	draft          domain.ProductDraft
	downloadModal  DownloadModal
	purchaseModal  PurchaseModal
	notifications  []events.Notification

	inflight atomic.Int32 // 进行中的加载/提交计数

	purchaseModalTimer *time.Timer
	modalTimeout       time.Duration

	linkCache *cache.TTLCache[string, string]
	snapshot  persistence.Store

	changed *sigchan.Chan
}

// New 创建会话
func New(cfg Config) *Session {
	modalTimeout := cfg.ModalTimeout
	if modalTimeout <= 0 {
		modalTimeout = defaultPurchaseModalTimeout
	}
	linkTTL := cfg.LinkCacheTTL
	if linkTTL <= 0 {
		linkTTL = defaultLinkCacheTTL
	}
	return &Session{
		gw:           cfg.Gateway,
		wallet:       cfg.Wallet,
		module:       cfg.ModuleAddress,
		modalTimeout: modalTimeout,
		linkCache:    cache.NewTTLCache[string, string](linkTTL),
		snapshot:     cfg.Snapshot,
		changed:      sigchan.New(1),
	}
}

// Changed 状态变化信号（供界面 select 监听）
func (s *Session) Changed() <-chan struct{} {
	return s.changed.C()
}

// Loading 是否有进行中的加载或提交（咨询性标志）
func (s *Session) Loading() bool {
	return s.inflight.Load() > 0
}

// Readiness 当前钱包就绪状态（每次观察重新推导）
func (s *Session) Readiness() wallet.Status {
	return wallet.ProviderReadiness(s.wallet)
}

// Account 当前账户地址（未就绪时为空）
func (s *Session) Account() string {
	if s.wallet == nil {
		return ""
	}
	account, _ := s.wallet.Account()
	return account
}

// Draft 当前草稿的副本
func (s *Session) Draft() domain.ProductDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// SetDraft 替换草稿
func (s *Session) SetDraft(draft domain.ProductDraft) {
	s.mu.Lock()
	s.draft = draft
	s.mu.Unlock()
	s.changed.Emit()
}

// ResetDraft 清空草稿（界面重置时调用）
func (s *Session) ResetDraft() {
	s.mu.Lock()
	s.draft.Reset()
	s.mu.Unlock()
	s.changed.Emit()
}

// beginWork / endWork 维护咨询性 loading 计数
func (s *Session) beginWork() {
	s.inflight.Add(1)
	s.changed.Emit()
}

func (s *Session) endWork() {
	s.inflight.Add(-1)
	s.changed.Emit()
}

// precheckReady 交易前置检查：未就绪时直接拒绝，不触网
// disconnected 与 loading 的提示文案不同，但都禁止提交
func (s *Session) precheckReady() (string, *errclass.ClassifiedError) {
	switch wallet.ProviderReadiness(s.wallet) {
	case wallet.StatusDisconnected:
		return "", errclass.WalletNotConnected()
	case wallet.StatusLoading:
		return "", errclass.AccountLoading()
	}
	account, _ := s.wallet.Account()
	return account, nil
}

// notify 追加通知并发出变化信号
func (s *Session) notify(n events.Notification) {
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}
	s.mu.Unlock()
	s.changed.Emit()
}

// notifyError 分类错误 → 错误通知
func (s *Session) notifyError(ce *errclass.ClassifiedError) {
	logger.WithField("code", ce.Code).Warnf("操作失败: %s (raw=%s)", ce.Message, ce.Raw)
	s.notify(events.FromClassified(ce))
}

// notifySuccess 成功通知
func (s *Session) notifySuccess(message string) {
	s.notify(events.NewNotification("成功", message, events.SeveritySuccess))
}

// Notifications 最近通知的副本
func (s *Session) Notifications() []events.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]events.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
