package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/betbot/gomarket/ledger/wallet"
	"github.com/betbot/gomarket/pkg/secretstore"
)

func main() {
	var (
		storePath = flag.String("store", getenv("GOMARKET_SECRET_STORE", "data/secrets"), "secretstore 数据目录")
		keyName   = flag.String("key", getenv("GOMARKET_SECRET_KEY_NAME", "wallet_private_key"), "私钥在 secretstore 中的键名")
		path      = flag.String("path", wallet.DefaultDerivationPath, "助记词派生路径")
		mnemonic  = flag.Bool("mnemonic", false, "从 BIP-39 助记词派生私钥（默认直接输入十六进制私钥）")
		force     = flag.Bool("force", false, "键已存在时覆盖")
	)
	flag.Parse()

	masterKey, err := secretstore.ParseKey(os.Getenv(wallet.MasterKeyEnv))
	if err != nil {
		fatal(fmt.Errorf("%s: %w", wallet.MasterKeyEnv, err))
	}

	if err := os.MkdirAll(filepath.Dir(*storePath), 0o755); err != nil {
		fatal(fmt.Errorf("mkdir: %w", err))
	}

	var keyHex string
	if *mnemonic {
		fmt.Fprintln(os.Stderr, "请输入助记词（12/15/18/21/24 个单词），输入完成后回车：")
		mn := readLine()
		if mn == "" {
			fatal(errors.New("助记词为空"))
		}
		keyHex, err = wallet.DeriveFromMnemonic(mn, *path)
		if err != nil {
			fatal(err)
		}
	} else {
		fmt.Fprintln(os.Stderr, "请输入十六进制私钥（可带 0x 前缀），输入完成后回车：")
		keyHex = strings.TrimPrefix(readLine(), "0x")
		if keyHex == "" {
			fatal(errors.New("私钥为空"))
		}
	}

	// 入库前先验证私钥有效，并打印对应地址
	priv, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		fatal(fmt.Errorf("私钥无效: %w", err))
	}
	addr := strings.ToLower(crypto.PubkeyToAddress(priv.PublicKey).Hex())

	store, err := secretstore.Open(secretstore.OpenOptions{
		Path:          *storePath,
		EncryptionKey: masterKey,
	})
	if err != nil {
		fatal(fmt.Errorf("打开 secretstore 失败: %w", err))
	}
	defer store.Close()

	if _, found, err := store.GetString(*keyName); err != nil {
		fatal(err)
	} else if found && !*force {
		fatal(fmt.Errorf("键已存在: %s（使用 -force 覆盖）", *keyName))
	}

	if err := store.SetString(*keyName, keyHex); err != nil {
		fatal(err)
	}

	fmt.Fprintf(os.Stderr, "已写入 %s/%s\n", *storePath, *keyName)
	fmt.Fprintf(os.Stderr, "钱包地址: %s\n", addr)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func readLine() string {
	br := bufio.NewReader(os.Stdin)
	s, _ := br.ReadString('\n')
	return strings.TrimSpace(s)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
