package types

import "fmt"

// ModuleName 链上市场合约的模块名
const ModuleName = "digital_marketplace"

// 视图函数名（只读，无需签名）
const (
	ViewGetAvailableProducts = "get_available_products"
	ViewGetSellerProducts    = "get_seller_products"
	ViewGetUserPurchases     = "get_user_purchases"
	ViewGetDownloadLink      = "get_download_link"
)

// 入口函数名（状态变更，需要签名交易）
const (
	EntryAddProduct                = "add_product"
	EntryPurchaseProduct           = "purchase_product"
	EntryToggleProductAvailability = "toggle_product_availability"
)

// FunctionID 拼接完整函数路径：<module-address>::digital_marketplace::<name>
func FunctionID(moduleAddress, name string) string {
	return fmt.Sprintf("%s::%s::%s", moduleAddress, ModuleName, name)
}

// ViewRequest 视图调用请求体
// 参数顺序是链上函数签名的一部分，不能调整
type ViewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// EntryPayload 入口函数调用载荷
// 参数顺序同样是链上约定，构造时必须与远端函数签名逐位对应
type EntryPayload struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []any    `json:"arguments"`
}

// NewEntryPayload 创建入口函数载荷
func NewEntryPayload(moduleAddress, name string, args ...any) *EntryPayload {
	if args == nil {
		args = []any{}
	}
	return &EntryPayload{
		Type:          "entry_function_payload",
		Function:      FunctionID(moduleAddress, name),
		TypeArguments: []string{},
		Arguments:     args,
	}
}

// SignedTransaction 已签名交易
// Nonce 用于防止重复广播（远端以 (sender, nonce) 去重）
type SignedTransaction struct {
	Sender    string        `json:"sender"`
	Nonce     uint64        `json:"nonce"`
	Payload   *EntryPayload `json:"payload"`
	PublicKey string        `json:"public_key"`
	Signature string        `json:"signature"`
}

// PendingTransaction 广播后返回的交易句柄
type PendingTransaction struct {
	Hash string `json:"hash"`
}

// TransactionResult 交易最终执行结果
// Success 为 false 时 VMStatus 携带远端中止信息（如 EPRODUCT_NOT_FOUND）
type TransactionResult struct {
	Hash      string `json:"hash"`
	Success   bool   `json:"success"`
	VMStatus  string `json:"vm_status"`
	Timestamp string `json:"timestamp"`
}

// Product 链上商品（远端为权威数据，客户端只持有只读副本）
// u64 字段按远端 JSON 约定编码为十进制字符串
type Product struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Price        string `json:"price"`
	DownloadLink string `json:"download_link"`
	Seller       string `json:"seller"`
	IsAvailable  bool   `json:"is_available"`
}

// Purchase 链上购买记录（每个 (buyer, product_id) 至多一条）
type Purchase struct {
	ProductID string `json:"product_id"`
	Buyer     string `json:"buyer"`
	Seller    string `json:"seller"`
	PricePaid string `json:"price_paid"`
	Timestamp string `json:"timestamp"`
}
