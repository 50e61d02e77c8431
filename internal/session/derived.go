package session

import (
	"github.com/betbot/gomarket/internal/domain"
	"github.com/betbot/gomarket/internal/events"
	"github.com/betbot/gomarket/ledger/types"
	"github.com/betbot/gomarket/ledger/wallet"
)

// FormatPrice 最小单位 → 两位小数展示字符串（不可逆，见 types.ParseDisplayPrice）
func FormatPrice(units uint64) string {
	return types.FormatPrice(units)
}

// HasPurchased 调用者是否已购买指定商品（对缓存购买记录的成员测试）
func (s *Session) HasPurchased(productID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.purchases {
		if p.ProductID == productID {
			return true
		}
	}
	return false
}

// IsOwnProduct 商品是否由指定地址上架（seller 身份相等）
func IsOwnProduct(p domain.Product, callerAddress string) bool {
	return callerAddress != "" && p.Seller == callerAddress
}

// Products 目录集合的副本
func (s *Session) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Purchases 调用者购买记录的副本
func (s *Session) Purchases() []domain.Purchase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Purchase, len(s.purchases))
	copy(out, s.purchases)
	return out
}

// SellerProducts 调用者上架商品的副本
func (s *Session) SellerProducts() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.sellerProducts))
	copy(out, s.sellerProducts)
	return out
}

// Snapshot 面向界面的完整派生视图（一次持锁拷贝，保证内部一致）
type Snapshot struct {
	Products       []domain.Product      `json:"products"`
	Purchases      []domain.Purchase     `json:"purchases"`
	SellerProducts []domain.Product      `json:"seller_products"`
	Loading        bool                  `json:"loading"`
	Readiness      wallet.Status         `json:"readiness"`
	Account        string                `json:"account"`
	Draft          domain.ProductDraft   `json:"draft"`
	DownloadModal  DownloadModal         `json:"download_modal"`
	PurchaseModal  PurchaseModal         `json:"purchase_modal"`
	Notifications  []events.Notification `json:"notifications"`
}

// Snapshot 当前会话状态快照
func (s *Session) Snapshot() Snapshot {
	readiness := s.Readiness()
	account := s.Account()
	loading := s.Loading()

	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Products:       make([]domain.Product, len(s.products)),
		Purchases:      make([]domain.Purchase, len(s.purchases)),
		SellerProducts: make([]domain.Product, len(s.sellerProducts)),
		Loading:        loading,
		Readiness:      readiness,
		Account:        account,
		Draft:          s.draft,
		DownloadModal:  s.downloadModal,
		PurchaseModal:  s.purchaseModal,
		Notifications:  make([]events.Notification, len(s.notifications)),
	}
	copy(snap.Products, s.products)
	copy(snap.Purchases, s.purchases)
	copy(snap.SellerProducts, s.sellerProducts)
	copy(snap.Notifications, s.notifications)
	return snap
}
