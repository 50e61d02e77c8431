package client

import (
	"strings"
	"time"

	"github.com/betbot/gomarket/pkg/ratelimit"
)

// Config 网关客户端配置
type Config struct {
	BaseURL       string        // 网关地址（如 https://fullnode.example.com）
	ModuleAddress string        // 市场合约的模块地址（0x 开头）
	Timeout       time.Duration // 单次请求超时
}

// Client 账本网关客户端
// 视图调用只读无副作用；交易提交需经钱包签名后广播
type Client struct {
	http        *httpClient
	module      string
	rateLimiter *ratelimit.Manager
}

// NewClient 创建新的网关客户端
func NewClient(cfg Config) *Client {
	return &Client{
		http:        newHTTPClient(cfg.BaseURL, cfg.Timeout),
		module:      strings.TrimSpace(cfg.ModuleAddress),
		rateLimiter: ratelimit.NewManager(),
	}
}

// ModuleAddress 获取模块地址
func (c *Client) ModuleAddress() string {
	return c.module
}
