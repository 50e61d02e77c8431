package session

import (
	"context"

	"github.com/betbot/gomarket/internal/errclass"
	"github.com/betbot/gomarket/ledger/types"
	"github.com/betbot/gomarket/pkg/logger"
)

// AddProduct 上架新商品（使用当前草稿）
// 协议：前置检查（不触网）→ 构造载荷 → 签名提交并等待落账 → 成功后刷新、清空草稿
// 失败时草稿保留，用户可以直接重试而无需重新输入
func (s *Session) AddProduct(ctx context.Context) error {
	account, cerr := s.precheckReady()
	if cerr != nil {
		s.notifyError(cerr)
		return cerr
	}

	draft := s.Draft()
	if !draft.IsComplete() {
		cerr := errclass.EmptyFields()
		s.notifyError(cerr)
		return cerr
	}
	priceUnits, err := types.ParseDisplayPrice(draft.Price)
	if err != nil {
		cerr := errclass.InvalidPrice(draft.Price)
		s.notifyError(cerr)
		return cerr
	}

	// 参数顺序与远端函数签名逐位对应，是线上契约
	payload := types.NewEntryPayload(s.module, types.EntryAddProduct,
		draft.Name, draft.Description, types.FormatUnits(priceUnits), draft.DownloadLink)

	s.beginWork()
	defer s.endWork()

	if _, err := s.wallet.SignAndSubmit(ctx, payload); err != nil {
		ce := errclass.Classify(err)
		s.notifyError(ce)
		return ce
	}

	logger.WithField("seller", account).Infof("商品已上架: %s", draft.Name)
	s.ResetDraft()
	s.notifySuccess("商品上架成功！")
	s.refreshAfterMutation(ctx)
	return nil
}

// PurchaseProduct 购买商品
// 成功后弹出庆祝弹窗（商品名 + 实付价格），再触发刷新
func (s *Session) PurchaseProduct(ctx context.Context, productID string) error {
	account, cerr := s.precheckReady()
	if cerr != nil {
		s.notifyError(cerr)
		return cerr
	}

	// 提交前从缓存副本取弹窗需要的商品信息
	productName, price := s.lookupProduct(productID)

	payload := types.NewEntryPayload(s.module, types.EntryPurchaseProduct, productID)

	s.beginWork()
	defer s.endWork()

	if _, err := s.wallet.SignAndSubmit(ctx, payload); err != nil {
		ce := errclass.Classify(err)
		s.notifyError(ce)
		return ce
	}

	logger.WithField("buyer", account).Infof("购买成功: %s (%s)", productName, price)
	s.stagePurchaseModal(productName, price)
	s.refreshAfterMutation(ctx)
	return nil
}

// ToggleAvailability 切换商品可售状态（仅卖家本人，由远端校验）
func (s *Session) ToggleAvailability(ctx context.Context, productID string) error {
	_, cerr := s.precheckReady()
	if cerr != nil {
		s.notifyError(cerr)
		return cerr
	}

	payload := types.NewEntryPayload(s.module, types.EntryToggleProductAvailability, productID)

	s.beginWork()
	defer s.endWork()

	if _, err := s.wallet.SignAndSubmit(ctx, payload); err != nil {
		ce := errclass.Classify(err)
		s.notifyError(ce)
		return ce
	}

	s.notifySuccess("商品可售状态已更新！")
	s.refreshAfterMutation(ctx)
	return nil
}

// lookupProduct 从缓存集合中查商品名和展示价格（查不到时给出兜底文案）
func (s *Session) lookupProduct(productID string) (name, price string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.products {
		if p.ID == productID {
			return p.Name, p.DisplayPrice()
		}
	}
	for _, p := range s.sellerProducts {
		if p.ID == productID {
			return p.Name, p.DisplayPrice()
		}
	}
	return "商品 #" + productID, "0.00"
}
