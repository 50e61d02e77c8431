package session

import (
	"context"
	"sync"

	"github.com/betbot/gomarket/internal/domain"
	"github.com/betbot/gomarket/internal/errclass"
	"github.com/betbot/gomarket/internal/metrics"
	"github.com/betbot/gomarket/pkg/logger"
	"github.com/betbot/gomarket/ledger/wallet"
)

// LoadCatalog 全量拉取可售商品（无需调用者身份）
// 读路径失败是软失败：提交空集合并通知，绝不留下半更新状态
func (s *Session) LoadCatalog(ctx context.Context) error {
	s.beginWork()
	defer s.endWork()

	metrics.CatalogLoads.Add(1)

	wireProducts, err := s.gw.GetAvailableProducts(ctx)
	if err != nil {
		ce := errclass.Classify(err)
		s.notifyError(ce)
		s.setProducts([]domain.Product{})
		return ce
	}
	products, err := domain.ProductsFromWire(wireProducts)
	if err != nil {
		ce := errclass.Classify(err)
		s.notifyError(ce)
		s.setProducts([]domain.Product{})
		return ce
	}

	s.setProducts(products)
	logger.Debugf("目录已刷新: %d 件商品", len(products))
	return nil
}

// LoadCallerData 拉取调用者的购买记录和上架商品
// 两个请求并发执行、独立失败：一边失败不影响另一边提交，
// 失败一边的集合保持原值（不清空），避免瞬时故障丢掉有效缓存
func (s *Session) LoadCallerData(ctx context.Context) error {
	if wallet.ProviderReadiness(s.wallet) != wallet.StatusReady {
		return nil
	}
	account, _ := s.wallet.Account()

	s.beginWork()
	defer s.endWork()

	metrics.CallerLoads.Add(1)

	var (
		wg            sync.WaitGroup
		purchasesErr  error
		sellerErr     error
		purchases     []domain.Purchase
		sellerProduct []domain.Product
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		wire, err := s.gw.GetUserPurchases(ctx, account)
		if err != nil {
			purchasesErr = err
			return
		}
		purchases, purchasesErr = domain.PurchasesFromWire(wire)
	}()
	go func() {
		defer wg.Done()
		wire, err := s.gw.GetSellerProducts(ctx, account)
		if err != nil {
			sellerErr = err
			return
		}
		sellerProduct, sellerErr = domain.ProductsFromWire(wire)
	}()
	wg.Wait()

	var firstErr *errclass.ClassifiedError
	if purchasesErr != nil {
		ce := errclass.Classify(purchasesErr)
		s.notifyError(ce)
		firstErr = ce
	} else {
		s.setPurchases(purchases)
	}
	if sellerErr != nil {
		ce := errclass.Classify(sellerErr)
		s.notifyError(ce)
		if firstErr == nil {
			firstErr = ce
		}
	} else {
		s.setSellerProducts(sellerProduct)
	}

	if firstErr != nil {
		return firstErr
	}
	return nil
}

// refreshAfterMutation 提交成功后的刷新：显式顺序组合，先目录后调用者数据
// 每次成功的变更都会各触发一次，确保本地视图从权威源重新推导而非猜测
func (s *Session) refreshAfterMutation(ctx context.Context) {
	metrics.RefreshRuns.Add(1)
	// 刷新失败各自软处理（已在读路径内部分类并通知），不影响已提交的变更结果
	_ = s.LoadCatalog(ctx)
	_ = s.LoadCallerData(ctx)
}

// 集合整体替换（唯一的写入口，由读路径独占）

func (s *Session) setProducts(products []domain.Product) {
	s.mu.Lock()
	s.products = products
	s.mu.Unlock()
	s.changed.Emit()
}

func (s *Session) setPurchases(purchases []domain.Purchase) {
	s.mu.Lock()
	s.purchases = purchases
	s.mu.Unlock()
	s.changed.Emit()
}

func (s *Session) setSellerProducts(products []domain.Product) {
	s.mu.Lock()
	s.sellerProducts = products
	s.mu.Unlock()
	s.changed.Emit()
}
