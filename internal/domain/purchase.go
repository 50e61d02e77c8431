package domain

import "github.com/betbot/gomarket/ledger/types"

// Purchase 购买记录领域模型
// 每个 (buyer, product_id) 至多一条，且一旦存在永不消失（无退款模型）
type Purchase struct {
	ProductID string // 商品 ID
	Buyer     string // 买家地址
	Seller    string // 卖家地址
	PricePaid uint64 // 实付价格（最小单位）
	Timestamp int64  // 购买时间（秒级 Unix 时间戳）
}

// PurchaseFromWire 链上购买记录 → 领域模型
func PurchaseFromWire(w types.Purchase) (Purchase, error) {
	paid, err := types.ParseUnits(w.PricePaid)
	if err != nil {
		return Purchase{}, err
	}
	ts, err := types.ParseUnits(w.Timestamp)
	if err != nil {
		return Purchase{}, err
	}
	return Purchase{
		ProductID: w.ProductID,
		Buyer:     w.Buyer,
		Seller:    w.Seller,
		PricePaid: paid,
		Timestamp: int64(ts),
	}, nil
}

// PurchasesFromWire 批量转换
func PurchasesFromWire(ws []types.Purchase) ([]Purchase, error) {
	purchases := make([]Purchase, 0, len(ws))
	for _, w := range ws {
		p, err := PurchaseFromWire(w)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, nil
}
