package wallet

// Status 钱包就绪状态（三态）
// loading 与 disconnected 都禁止发起交易，区别只在提示文案
type Status string

const (
	StatusDisconnected Status = "disconnected" // 未连接
	StatusLoading      Status = "loading"      // 已连接但账户尚未就绪（连接后的短暂过渡态）
	StatusReady        Status = "ready"        // 可以发起交易
)

// Readiness 从原始信号推导就绪状态（纯函数，每次观察重新计算）
func Readiness(connected bool, account string) Status {
	if !connected {
		return StatusDisconnected
	}
	if account == "" {
		return StatusLoading
	}
	return StatusReady
}

// ProviderReadiness 从签名提供方推导就绪状态
func ProviderReadiness(p Provider) Status {
	if p == nil {
		return StatusDisconnected
	}
	account, _ := p.Account()
	return Readiness(p.Connected(), account)
}
