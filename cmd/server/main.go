package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/betbot/gomarket/internal/controlplane/server"
	"github.com/betbot/gomarket/internal/metrics"
	"github.com/betbot/gomarket/internal/session"
	"github.com/betbot/gomarket/ledger/client"
	"github.com/betbot/gomarket/ledger/wallet"
	"github.com/betbot/gomarket/pkg/config"
	"github.com/betbot/gomarket/pkg/logger"
	"github.com/betbot/gomarket/pkg/persistence"
	"github.com/betbot/gomarket/pkg/shutdown"
)

func main() {
	cfgPath := flag.String("config", "", "YAML 配置文件路径（可选，环境变量优先）")
	flag.Parse()

	cfg, err := config.LoadFromFile(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "加载配置失败:", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "初始化日志失败:", err)
		os.Exit(1)
	}

	gw := client.NewClient(client.Config{
		BaseURL:       cfg.Gateway.BaseURL,
		ModuleAddress: cfg.Gateway.ModuleAddress,
		Timeout:       cfg.Gateway.Timeout,
	})

	keyHex, err := wallet.LoadPrivateKeyHex(cfg.Wallet.SecretStore, cfg.Wallet.SecretKeyName, cfg.Wallet.PrivateKey)
	if err != nil {
		logger.Errorf("加载钱包私钥失败: %v", err)
		os.Exit(1)
	}
	w, err := wallet.NewLocalWallet(keyHex, gw)
	if err != nil {
		logger.Errorf("初始化钱包失败: %v", err)
		os.Exit(1)
	}
	account, _ := w.Account()
	logger.Infof("钱包已就绪: %s", account)

	store := persistence.NewJSONFileService(cfg.DataDir).NewStore("session", account, "snapshot")
	sess := session.New(session.Config{
		Gateway:       gw,
		Wallet:        w,
		ModuleAddress: cfg.Gateway.ModuleAddress,
		Snapshot:      store,
	})
	if err := sess.RestoreSnapshot(); err != nil {
		logger.Warnf("恢复本地快照失败: %v", err)
	}

	// 初始加载：目录 + 调用者数据（钱包就绪即触发）
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	_ = sess.LoadCatalog(startCtx)
	_ = sess.LoadCallerData(startCtx)
	startCancel()

	metricsServer := metrics.NewServer(cfg.Server.MetricsAddr)
	metricsServer.Start()

	cp, err := server.New(server.Config{
		DBPath:          cfg.Server.DBPath,
		RefreshInterval: cfg.Server.RefreshInterval,
	}, sess)
	if err != nil {
		logger.Errorf("初始化控制面失败: %v", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           cp.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	mgr := shutdown.NewManager()
	mgr.OnShutdown(func(ctx context.Context) {
		_ = httpServer.Shutdown(ctx)
	})
	mgr.OnShutdown(func(ctx context.Context) {
		_ = cp.Close()
	})
	mgr.OnShutdown(func(ctx context.Context) {
		if err := sess.SaveSnapshot(); err != nil {
			logger.Warnf("保存本地快照失败: %v", err)
		}
	})
	mgr.OnShutdown(func(ctx context.Context) {
		metricsServer.Stop(ctx)
	})

	go func() {
		logger.Infof("控制面监听于 %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("HTTP 服务器退出: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("收到退出信号，开始关闭")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	mgr.Shutdown(ctx)
}
