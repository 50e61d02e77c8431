package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/betbot/gomarket/ledger/types"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:       srv.URL,
		ModuleAddress: "0xmarket",
		Timeout:       5 * time.Second,
	})
}

func TestGetAvailableProducts(t *testing.T) {
	var gotReq types.ViewRequest
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/view", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		// 远端按函数声明顺序返回值数组，首个元素是商品列表
		_ = json.NewEncoder(w).Encode([]any{[]types.Product{
			{ID: "1", Name: "电子书", Price: "550000000", Seller: "0xseller", IsAvailable: true},
		}})
	}))

	products, err := c.GetAvailableProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "550000000", products[0].Price)
	require.Equal(t, "0xmarket::digital_marketplace::get_available_products", gotReq.Function)
	require.Empty(t, gotReq.Arguments)
}

func TestGetDownloadLinkNull(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 远端把"未购买/链接未设置"表达为 null 而非错误
		_, _ = w.Write([]byte(`[null]`))
	}))

	link, err := c.GetDownloadLink(context.Background(), "0xbuyer", "1")
	require.NoError(t, err)
	require.Empty(t, link)
}

// 非 2xx 响应必须保留远端错误文案，分类器依赖其中的中止码子串
func TestViewErrorKeepsRemoteMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error_code": "vm_error",
			"message":    "Move abort: EPRODUCT_NOT_FOUND(0x1)",
		})
	}))

	_, err := c.GetAvailableProducts(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "EPRODUCT_NOT_FOUND")
}

func TestSubmitAndWait(t *testing.T) {
	var polls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/transactions":
			var tx types.SignedTransaction
			require.NoError(t, json.NewDecoder(r.Body).Decode(&tx))
			require.Equal(t, "0xsender", tx.Sender)
			_ = json.NewEncoder(w).Encode(types.PendingTransaction{Hash: "0xhash"})

		case r.Method == http.MethodGet && r.URL.Path == "/v1/transactions/by_hash/0xhash":
			// 首次轮询时交易尚不可见
			if polls.Add(1) == 1 {
				w.WriteHeader(http.StatusNotFound)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "transaction not found"})
				return
			}
			_ = json.NewEncoder(w).Encode(types.TransactionResult{
				Hash: "0xhash", Success: true, Timestamp: "1700000000",
			})

		default:
			t.Fatalf("意外请求: %s %s", r.Method, r.URL.Path)
		}
	}))

	pending, err := c.SubmitTransaction(context.Background(), &types.SignedTransaction{Sender: "0xsender"})
	require.NoError(t, err)
	require.Equal(t, "0xhash", pending.Hash)

	result, err := c.WaitForTransaction(context.Background(), pending.Hash)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.GreaterOrEqual(t, polls.Load(), int32(2))
}

// 落账但被拒绝：转成携带 vm_status 的错误，而不是 Success=false 的结果
func TestWaitForTransactionRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.TransactionResult{
			Hash: "0xhash", Success: false, VMStatus: "Move abort: EINSUFFICIENT_BALANCE",
		})
	}))

	_, err := c.WaitForTransaction(context.Background(), "0xhash")
	require.Error(t, err)
	require.Contains(t, err.Error(), "EINSUFFICIENT_BALANCE")
}

func TestSubmitWithoutHash(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := c.SubmitTransaction(context.Background(), &types.SignedTransaction{})
	require.Error(t, err)
}
