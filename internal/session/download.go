package session

import (
	"context"

	"github.com/betbot/gomarket/internal/errclass"
	"github.com/betbot/gomarket/internal/events"
)

// GetDownloadLink 获取已购商品的下载链接并弹出下载弹窗
// 链接按 (buyer, product) 做 TTL 缓存，减少重复视图调用
func (s *Session) GetDownloadLink(ctx context.Context, productID string) error {
	account, cerr := s.precheckReady()
	if cerr != nil {
		s.notifyError(cerr)
		return cerr
	}

	cacheKey := account + "/" + productID

	link, ok := s.linkCache.Get(cacheKey)
	if !ok {
		var err error
		link, err = s.gw.GetDownloadLink(ctx, account, productID)
		if err != nil {
			ce := errclass.Classify(err)
			s.notifyError(ce)
			return ce
		}
		if link != "" {
			s.linkCache.Set(cacheKey, link, 0)
		}
	}

	if link == "" {
		s.notify(events.NewNotification("下载不可用", "下载链接不存在或尚未购买该商品", events.SeverityError))
		return nil
	}

	productName, _ := s.lookupProductName(productID)
	s.stageDownloadModal(link, productName)
	return nil
}

// lookupProductName 从两个商品集合中查名称
func (s *Session) lookupProductName(productID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == productID {
			return p.Name, true
		}
	}
	for _, p := range s.sellerProducts {
		if p.ID == productID {
			return p.Name, true
		}
	}
	return "商品 #" + productID, false
}
