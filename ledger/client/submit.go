package client

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/betbot/gomarket/internal/metrics"
	"github.com/betbot/gomarket/ledger/types"
	"github.com/betbot/gomarket/pkg/ratelimit"
)

const (
	submitEndpoint = "/v1/transactions"
	txByHashPath   = "/v1/transactions/by_hash/"

	// 交易确认轮询参数：共识延迟有上界但不确定
	commitPollInterval = 500 * time.Millisecond
	commitWaitTimeout  = 60 * time.Second
)

// SubmitTransaction 广播已签名交易，返回交易句柄
func (c *Client) SubmitTransaction(ctx context.Context, tx *types.SignedTransaction) (*types.PendingTransaction, error) {
	if err := c.rateLimiter.Wait(ctx, ratelimit.CategorySubmit); err != nil {
		return nil, err
	}

	metrics.TxSubmitted.Add(1)
	var pending types.PendingTransaction
	if err := c.http.postJSON(ctx, submitEndpoint, tx, &pending); err != nil {
		metrics.TxFailed.Add(1)
		return nil, errors.Wrap(err, "交易广播失败")
	}
	if pending.Hash == "" {
		metrics.TxFailed.Add(1)
		return nil, errors.New("交易广播失败: 网关未返回交易哈希")
	}
	return &pending, nil
}

// WaitForTransaction 轮询直到交易落账（成功或被拒绝）
// 返回 err == nil 且 Success == false 的情况不存在：远端拒绝会转成带 vm_status 的错误，
// 以便上层分类器能看到原始中止文案
func (c *Client) WaitForTransaction(ctx context.Context, hash string) (*types.TransactionResult, error) {
	deadline := time.Now().Add(commitWaitTimeout)

	for {
		if err := c.rateLimiter.Wait(ctx, ratelimit.CategorySubmit); err != nil {
			return nil, err
		}

		var result types.TransactionResult
		err := c.http.getJSON(ctx, txByHashPath+hash, &result)
		switch {
		case err == nil && result.Hash != "":
			if !result.Success {
				metrics.TxFailed.Add(1)
				return nil, errors.Errorf("交易被拒绝: %s", result.VMStatus)
			}
			metrics.TxCommitted.Add(1)
			return &result, nil
		case err != nil && !isNotFound(err):
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, errors.Errorf("等待交易确认超时: %s", hash)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(commitPollInterval):
		}
	}
}

// isNotFound 交易尚未可见（仍在内存池或尚未同步）
// decodeResponse 把状态码嵌在消息文本里
func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "网关返回 404")
}
