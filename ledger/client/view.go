package client

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/betbot/gomarket/internal/metrics"
	"github.com/betbot/gomarket/ledger/types"
	"github.com/betbot/gomarket/pkg/ratelimit"
)

// viewEndpoint 视图调用端点（POST，JSON 返回值数组）
const viewEndpoint = "/v1/view"

// view 执行一次视图调用，把首个返回值解码到 out
// 远端按函数声明顺序返回值数组；本合约所有视图函数只有一个返回值
func (c *Client) view(ctx context.Context, name string, args []any, out any) error {
	if err := c.rateLimiter.Wait(ctx, ratelimit.CategoryView); err != nil {
		return err
	}
	if args == nil {
		args = []any{}
	}

	req := types.ViewRequest{
		Function:      types.FunctionID(c.module, name),
		TypeArguments: []string{},
		Arguments:     args,
	}

	metrics.ViewCalls.Add(1)
	var results []json.RawMessage
	if err := c.http.postJSON(ctx, viewEndpoint, req, &results); err != nil {
		metrics.ViewErrors.Add(1)
		return errors.Wrapf(err, "视图调用 %s 失败", name)
	}
	if len(results) == 0 {
		metrics.ViewErrors.Add(1)
		return errors.Errorf("视图调用 %s 返回空结果", name)
	}
	if out != nil {
		if err := json.Unmarshal(results[0], out); err != nil {
			metrics.ViewErrors.Add(1)
			return errors.Wrapf(err, "视图调用 %s 返回值解析失败", name)
		}
	}
	return nil
}

// GetAvailableProducts 获取全部可售商品（无需调用者身份）
func (c *Client) GetAvailableProducts(ctx context.Context) ([]types.Product, error) {
	var products []types.Product
	if err := c.view(ctx, types.ViewGetAvailableProducts, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetSellerProducts 获取指定卖家的全部上架商品
func (c *Client) GetSellerProducts(ctx context.Context, seller string) ([]types.Product, error) {
	var products []types.Product
	if err := c.view(ctx, types.ViewGetSellerProducts, []any{seller}, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetUserPurchases 获取指定买家的全部购买记录
func (c *Client) GetUserPurchases(ctx context.Context, buyer string) ([]types.Purchase, error) {
	var purchases []types.Purchase
	if err := c.view(ctx, types.ViewGetUserPurchases, []any{buyer}, &purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// GetDownloadLink 获取下载链接；未购买或链接未设置时返回空字符串
func (c *Client) GetDownloadLink(ctx context.Context, buyer, productID string) (string, error) {
	var link *string
	if err := c.view(ctx, types.ViewGetDownloadLink, []any{buyer, productID}, &link); err != nil {
		return "", err
	}
	if link == nil {
		return "", nil
	}
	return *link, nil
}
