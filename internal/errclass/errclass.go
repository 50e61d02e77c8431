package errclass

import (
	"errors"
	"fmt"
	"strings"
)

// Category 错误大类
type Category string

const (
	CategoryNetwork    Category = "NETWORK"    // 传输/连接故障
	CategoryWallet     Category = "WALLET"     // 签名提供方不可用或拒签
	CategoryContract   Category = "CONTRACT"   // 远端业务规则拒绝
	CategoryValidation Category = "VALIDATION" // 本地校验失败，未触达远端
	CategoryUnknown    Category = "UNKNOWN"    // 无法识别的失败形态
)

// ClassifiedError 分类后的错误：唯一允许呈现给界面的失败形态
type ClassifiedError struct {
	Code     string   // 枚举码（如 PRODUCT_NOT_FOUND）
	Message  string   // 面向用户的提示文案
	Category Category // 大类
	Raw      string   // 原始错误文案（仅用于日志）
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("[%s/%s] %s", e.Category, e.Code, e.Message)
}

// rule 失败形态匹配规则：按顺序求值，首个命中生效
type rule struct {
	match    func(msg string) bool
	code     string
	category Category
	message  string
}

// contains 子串匹配（不区分大小写）
func contains(tokens ...string) func(string) bool {
	return func(msg string) bool {
		lower := strings.ToLower(msg)
		for _, t := range tokens {
			if strings.Contains(lower, strings.ToLower(t)) {
				return true
			}
		}
		return false
	}
}

// rules 是与远端系统的集成契约：远端中止词汇变化时只改这张表
// 顺序即优先级：网络 > 钱包 > 已知合约中止码 > 合约未部署 > 未知
var rules = []rule{
	{
		match:    contains("network", "fetch", "dial tcp", "connection refused", "no such host", "timeout", "timed out"),
		code:     "NETWORK_ERROR",
		category: CategoryNetwork,
		message:  "网络连接异常，请检查网络后重试",
	},
	{
		match:    contains("wallet", "signature", "sign"),
		code:     "WALLET_ERROR",
		category: CategoryWallet,
		message:  "钱包异常，请确认钱包已连接且余额充足",
	},
	{
		match:    contains("EPRODUCT_NOT_FOUND"),
		code:     "PRODUCT_NOT_FOUND",
		category: CategoryContract,
		message:  "商品不存在，可能已被下架",
	},
	{
		match:    contains("EINSUFFICIENT_BALANCE"),
		code:     "INSUFFICIENT_BALANCE",
		category: CategoryContract,
		message:  "余额不足，无法完成本次交易",
	},
	{
		match:    contains("EPRODUCT_NOT_AVAILABLE"),
		code:     "PRODUCT_UNAVAILABLE",
		category: CategoryContract,
		message:  "该商品当前不可购买",
	},
	{
		match:    contains("EALREADY_PURCHASED"),
		code:     "ALREADY_PURCHASED",
		category: CategoryContract,
		message:  "你已购买过该商品",
	},
	{
		match:    contains("EUNAUTHORIZED"),
		code:     "UNAUTHORIZED",
		category: CategoryContract,
		message:  "没有权限执行此操作",
	},
	{
		match:    contains("MODULE_NOT_FOUND", "FUNCTION_NOT_FOUND"),
		code:     "CONTRACT_NOT_DEPLOYED",
		category: CategoryContract,
		message:  "未找到市场合约，请检查模块地址配置",
	},
}

// Classify 把任意失败映射为分类错误（纯函数，首个匹配规则生效）
func Classify(err error) *ClassifiedError {
	msg := "Unknown error occurred"
	if err != nil {
		msg = err.Error()
	}

	// 已分类的错误原样返回，避免二次分类丢失信息
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce
	}

	for _, r := range rules {
		if r.match(msg) {
			return &ClassifiedError{
				Code:     r.code,
				Message:  r.message,
				Category: r.category,
				Raw:      msg,
			}
		}
	}
	return &ClassifiedError{
		Code:     "UNKNOWN_ERROR",
		Message:  "发生未知错误，请稍后重试",
		Category: CategoryUnknown,
		Raw:      msg,
	}
}

// 本地前置校验失败（永远不会触达远端）

// WalletNotConnected 钱包未连接
func WalletNotConnected() *ClassifiedError {
	return &ClassifiedError{
		Code:     "WALLET_NOT_CONNECTED",
		Message:  "请先连接钱包",
		Category: CategoryWallet,
	}
}

// AccountLoading 已连接但账户尚未就绪
func AccountLoading() *ClassifiedError {
	return &ClassifiedError{
		Code:     "WALLET_ACCOUNT_LOADING",
		Message:  "账户加载中，请稍候再试",
		Category: CategoryWallet,
	}
}

// EmptyFields 草稿必填字段缺失
func EmptyFields() *ClassifiedError {
	return &ClassifiedError{
		Code:     "EMPTY_FIELDS",
		Message:  "请填写全部必填字段",
		Category: CategoryValidation,
	}
}

// InvalidPrice 价格输入无法解析
func InvalidPrice(raw string) *ClassifiedError {
	return &ClassifiedError{
		Code:     "INVALID_PRICE",
		Message:  "价格格式无效，请输入非负十进制数",
		Category: CategoryValidation,
		Raw:      raw,
	}
}
