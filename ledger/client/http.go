package client

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// httpClient 网关 HTTP 封装
// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY, http_proxy, https_proxy）
// 注意：不配置自动重试 —— 每次用户动作只允许一次提交尝试，重试由用户重新发起
type httpClient struct {
	client *resty.Client
}

func newHTTPClient(host string, timeout time.Duration) *httpClient {
	if strings.HasSuffix(host, "/") {
		host = host[:len(host)-1]
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout)

	return &httpClient{client: c}
}

// newRequest 仅设置本次请求的默认 Header（不要再改 client 级 Header）
func (h *httpClient) newRequest(ctx context.Context) *resty.Request {
	r := h.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("Content-Type", "application/json")
	r.SetHeader("User-Agent", "gomarket-client")
	return r
}

// postJSON 执行 POST 并把响应解码到 out
func (h *httpClient) postJSON(ctx context.Context, endpoint string, body any, out any) error {
	resp, err := h.newRequest(ctx).SetBody(body).Post(endpoint)
	return decodeResponse(resp, err, out)
}

// getJSON 执行 GET 并把响应解码到 out
func (h *httpClient) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := h.newRequest(ctx).Get(endpoint)
	return decodeResponse(resp, err, out)
}

// remoteError 远端网关返回的错误结构
type remoteError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// decodeResponse 统一处理响应：非 2xx 时提取远端错误消息（分类器依赖原始文案）
func decodeResponse(resp *resty.Response, err error, out any) error {
	if err != nil {
		return errors.Wrap(err, "网关请求失败")
	}
	if !resp.IsSuccess() {
		var re remoteError
		if jsonErr := json.Unmarshal(resp.Body(), &re); jsonErr == nil && re.Message != "" {
			return errors.Errorf("网关返回 %d: %s %s", resp.StatusCode(), re.ErrorCode, re.Message)
		}
		return errors.Errorf("网关返回 %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return errors.Wrap(err, "响应解析失败")
		}
	}
	return nil
}
