package session

import "time"

// DownloadModal 下载成功弹窗状态（需要用户显式关闭）
type DownloadModal struct {
	IsOpen       bool   `json:"is_open"`
	DownloadLink string `json:"download_link"`
	ProductName  string `json:"product_name"`
}

// PurchaseModal 购买成功庆祝弹窗状态（超时自动关闭）
type PurchaseModal struct {
	IsOpen      bool   `json:"is_open"`
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
}

// stageDownloadModal 打开下载弹窗（同类弹窗同一时刻只有一个打开）
func (s *Session) stageDownloadModal(link, productName string) {
	s.mu.Lock()
	s.downloadModal = DownloadModal{IsOpen: true, DownloadLink: link, ProductName: productName}
	s.mu.Unlock()
	s.changed.Emit()
}

// stagePurchaseModal 打开购买庆祝弹窗并启动自动关闭定时器
func (s *Session) stagePurchaseModal(productName, price string) {
	s.mu.Lock()
	s.purchaseModal = PurchaseModal{IsOpen: true, ProductName: productName, Price: price}
	if s.purchaseModalTimer != nil {
		s.purchaseModalTimer.Stop()
	}
	s.purchaseModalTimer = time.AfterFunc(s.modalTimeout, s.ClosePurchaseModal)
	s.mu.Unlock()
	s.changed.Emit()
}

// DownloadModalState 返回当前下载弹窗状态
func (s *Session) DownloadModalState() DownloadModal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.downloadModal
}

// PurchaseModalState 返回当前购买弹窗状态
func (s *Session) PurchaseModalState() PurchaseModal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.purchaseModal
}

// CloseDownloadModal 关闭下载弹窗
func (s *Session) CloseDownloadModal() {
	s.mu.Lock()
	s.downloadModal = DownloadModal{}
	s.mu.Unlock()
	s.changed.Emit()
}

// ClosePurchaseModal 关闭购买弹窗（显式关闭或定时器触发）
func (s *Session) ClosePurchaseModal() {
	s.mu.Lock()
	s.purchaseModal = PurchaseModal{}
	if s.purchaseModalTimer != nil {
		s.purchaseModalTimer.Stop()
		s.purchaseModalTimer = nil
	}
	s.mu.Unlock()
	s.changed.Emit()
}
