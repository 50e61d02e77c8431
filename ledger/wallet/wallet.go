package wallet

import (
	"context"

	"github.com/betbot/gomarket/ledger/types"
)

// Provider 签名能力抽象
// 对上层而言钱包是不透明的：可能不可用、可能拒签、可能在广播后被远端拒绝
type Provider interface {
	// Connected 钱包是否已连接
	Connected() bool
	// Account 当前账户地址；连接后账户可能短暂缺失
	Account() (string, bool)
	// SignAndSubmit 签名并广播入口函数调用，等待落账结果
	// 调用会阻塞到交易提交或被拒绝为止（共识延迟有上界但不确定）
	SignAndSubmit(ctx context.Context, payload *types.EntryPayload) (*types.TransactionResult, error)
}

// Broadcaster 交易广播通道（由网关客户端实现）
type Broadcaster interface {
	SubmitTransaction(ctx context.Context, tx *types.SignedTransaction) (*types.PendingTransaction, error)
	WaitForTransaction(ctx context.Context, hash string) (*types.TransactionResult, error)
}
