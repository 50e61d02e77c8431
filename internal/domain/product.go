package domain

import (
	"strings"

	"github.com/betbot/gomarket/ledger/types"
)

// Product 商品领域模型
// 权威数据在链上，本地只是只读缓存副本；ID 上架后不可变
type Product struct {
	ID           string // 全局唯一商品 ID
	Name         string // 商品名称
	Description  string // 商品描述
	Price        uint64 // 价格（最小单位，10^8 = 1 展示单位）
	DownloadLink string // 下载链接
	Seller       string // 卖家账户地址
	IsAvailable  bool   // 是否可售（只有卖家能切换）
}

// DisplayPrice 两位小数的展示价格
func (p Product) DisplayPrice() string {
	return types.FormatPrice(p.Price)
}

// ProductFromWire 链上商品 → 领域模型
func ProductFromWire(w types.Product) (Product, error) {
	price, err := types.ParseUnits(w.Price)
	if err != nil {
		return Product{}, err
	}
	return Product{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		Price:        price,
		DownloadLink: w.DownloadLink,
		Seller:       w.Seller,
		IsAvailable:  w.IsAvailable,
	}, nil
}

// ProductsFromWire 批量转换
func ProductsFromWire(ws []types.Product) ([]Product, error) {
	products := make([]Product, 0, len(ws))
	for _, w := range ws {
		p, err := ProductFromWire(w)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// ProductDraft 卖家正在编辑的新商品（仅存在于客户端，提交成功后丢弃）
// Price 为展示单位十进制字符串，提交时才换算为最小单位
type ProductDraft struct {
	Name         string
	Description  string
	Price        string
	DownloadLink string
}

// IsComplete 所有必填字段均非空
func (d ProductDraft) IsComplete() bool {
	return strings.TrimSpace(d.Name) != "" &&
		strings.TrimSpace(d.Description) != "" &&
		strings.TrimSpace(d.Price) != "" &&
		strings.TrimSpace(d.DownloadLink) != ""
}

// Reset 清空草稿
func (d *ProductDraft) Reset() {
	*d = ProductDraft{}
}
