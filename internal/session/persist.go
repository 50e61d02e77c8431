package session

import (
	"errors"

	"github.com/betbot/gomarket/internal/domain"
	"github.com/betbot/gomarket/internal/metrics"
	"github.com/betbot/gomarket/pkg/logger"
	"github.com/betbot/gomarket/pkg/persistence"
)

// storedSnapshot 落盘的集合快照
// 只存集合本身：loading/弹窗/通知是瞬态，不跨进程存活
type storedSnapshot struct {
	Products       []domain.Product  `json:"products"`
	Purchases      []domain.Purchase `json:"purchases"`
	SellerProducts []domain.Product  `json:"seller_products"`
}

// SaveSnapshot 把当前集合写入快照存储（未配置存储时为空操作）
func (s *Session) SaveSnapshot() error {
	if s.snapshot == nil {
		return nil
	}

	s.mu.RLock()
	stored := storedSnapshot{
		Products:       append([]domain.Product(nil), s.products...),
		Purchases:      append([]domain.Purchase(nil), s.purchases...),
		SellerProducts: append([]domain.Product(nil), s.sellerProducts...),
	}
	s.mu.RUnlock()

	if err := s.snapshot.Save(stored); err != nil {
		return err
	}
	metrics.SnapshotSaves.Add(1)
	return nil
}

// RestoreSnapshot 启动时恢复上次的集合，首轮加载完成前界面先显示缓存数据
// 快照不存在不算错误
func (s *Session) RestoreSnapshot() error {
	if s.snapshot == nil {
		return nil
	}

	var stored storedSnapshot
	if err := s.snapshot.Load(&stored); err != nil {
		if errors.Is(err, persistence.ErrNotExists) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	if stored.Products != nil {
		s.products = stored.Products
	}
	if stored.Purchases != nil {
		s.purchases = stored.Purchases
	}
	if stored.SellerProducts != nil {
		s.sellerProducts = stored.SellerProducts
	}
	s.mu.Unlock()
	s.changed.Emit()

	metrics.SnapshotLoads.Add(1)
	logger.Debugf("已恢复本地快照: %d 商品 / %d 购买记录", len(stored.Products), len(stored.Purchases))
	return nil
}
