package wallet

import (
	"fmt"
	"os"

	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"

	"github.com/betbot/gomarket/pkg/secretstore"
)

// MasterKeyEnv secretstore 加密主密钥的环境变量名（32 字节，hex 或 base64）
const MasterKeyEnv = "GOMARKET_MASTER_KEY"

// DefaultDerivationPath 助记词默认派生路径
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// LoadPrivateKeyHex 解析私钥来源：优先 secretstore，其次明文配置
// storePath 为空时直接返回明文私钥（仅建议开发环境使用）
func LoadPrivateKeyHex(storePath, keyName, plainKey string) (string, error) {
	if storePath == "" {
		if plainKey == "" {
			return "", fmt.Errorf("未配置钱包私钥（secretstore 与明文配置均为空）")
		}
		return plainKey, nil
	}

	masterKey, err := secretstore.ParseKey(os.Getenv(MasterKeyEnv))
	if err != nil {
		return "", fmt.Errorf("解析 %s 失败: %w", MasterKeyEnv, err)
	}

	store, err := secretstore.Open(secretstore.OpenOptions{
		Path:          storePath,
		EncryptionKey: masterKey,
		ReadOnly:      true,
	})
	if err != nil {
		return "", fmt.Errorf("打开 secretstore 失败: %w", err)
	}
	defer store.Close()

	keyHex, found, err := store.GetString(keyName)
	if err != nil {
		return "", err
	}
	if !found || keyHex == "" {
		return "", fmt.Errorf("secretstore 中不存在私钥条目: %s", keyName)
	}
	return keyHex, nil
}

// DeriveFromMnemonic 从 BIP-39 助记词派生十六进制私钥
func DeriveFromMnemonic(mnemonic, derivationPath string) (string, error) {
	if derivationPath == "" {
		derivationPath = DefaultDerivationPath
	}
	w, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return "", fmt.Errorf("invalid mnemonic: %w", err)
	}
	path, err := hdwallet.ParseDerivationPath(derivationPath)
	if err != nil {
		return "", fmt.Errorf("invalid derivation path: %w", err)
	}
	acct, err := w.Derive(path, false)
	if err != nil {
		return "", fmt.Errorf("derive failed: %w", err)
	}
	pk, err := w.PrivateKeyHex(acct)
	if err != nil {
		return "", fmt.Errorf("private key failed: %w", err)
	}
	return pk, nil
}
