package wallet

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/betbot/gomarket/ledger/types"
)

// LocalWallet 本地私钥钱包
// 持有 secp256k1 私钥，对入口函数载荷做 keccak256 摘要签名后经网关广播
type LocalWallet struct {
	key         *ecdsa.PrivateKey
	address     string
	broadcaster Broadcaster
	lastNonce   atomic.Uint64
}

// NewLocalWallet 从十六进制私钥创建本地钱包
func NewLocalWallet(privateKeyHex string, broadcaster Broadcaster) (*LocalWallet, error) {
	keyHex := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, errors.Wrap(err, "私钥解析失败")
	}
	return &LocalWallet{
		key:         key,
		address:     strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex()),
		broadcaster: broadcaster,
	}, nil
}

// Connected 本地钱包加载成功即视为已连接
func (w *LocalWallet) Connected() bool {
	return w != nil && w.key != nil
}

// Account 当前账户地址
func (w *LocalWallet) Account() (string, bool) {
	if w == nil || w.key == nil {
		return "", false
	}
	return w.address, true
}

// nextNonce 单调递增 nonce，远端以 (sender, nonce) 去重
func (w *LocalWallet) nextNonce() uint64 {
	for {
		now := uint64(time.Now().UnixNano())
		last := w.lastNonce.Load()
		if now <= last {
			now = last + 1
		}
		if w.lastNonce.CompareAndSwap(last, now) {
			return now
		}
	}
}

// signingMessage 签名消息的规范化编码
type signingMessage struct {
	Sender  string              `json:"sender"`
	Nonce   uint64              `json:"nonce"`
	Payload *types.EntryPayload `json:"payload"`
}

// SignAndSubmit 签名并广播，等待交易落账
func (w *LocalWallet) SignAndSubmit(ctx context.Context, payload *types.EntryPayload) (*types.TransactionResult, error) {
	if w == nil || w.key == nil {
		return nil, errors.New("wallet not connected: 私钥未加载")
	}
	if w.broadcaster == nil {
		return nil, errors.New("wallet not connected: 广播通道未配置")
	}
	if payload == nil {
		return nil, errors.New("签名载荷为空")
	}

	nonce := w.nextNonce()
	msg, err := json.Marshal(signingMessage{Sender: w.address, Nonce: nonce, Payload: payload})
	if err != nil {
		return nil, errors.Wrap(err, "签名消息编码失败")
	}

	sig, err := crypto.Sign(crypto.Keccak256(msg), w.key)
	if err != nil {
		return nil, errors.Wrap(err, "signature: 签名失败")
	}

	tx := &types.SignedTransaction{
		Sender:    w.address,
		Nonce:     nonce,
		Payload:   payload,
		PublicKey: hex.EncodeToString(crypto.FromECDSAPub(&w.key.PublicKey)),
		Signature: hex.EncodeToString(sig),
	}

	pending, err := w.broadcaster.SubmitTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	return w.broadcaster.WaitForTransaction(ctx, pending.Hash)
}
