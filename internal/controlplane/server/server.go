package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"github.com/betbot/gomarket/internal/session"
	"github.com/betbot/gomarket/pkg/logger"
)

// Config 控制面服务器配置
type Config struct {
	DBPath          string        // 活动日志 sqlite 路径
	RefreshInterval time.Duration // 后台目录刷新间隔（0 表示关闭）
}

// Server 市场会话的控制面：JSON API + WebSocket 状态流 + 活动日志
type Server struct {
	cfg  Config
	db   *sql.DB
	sess *session.Session
	hub  *streamHub

	bgCancel func()
	bgWG     sync.WaitGroup
}

// New 创建控制面服务器
func New(cfg Config, sess *session.Session) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	if sess == nil {
		return nil, errors.New("session is required")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite：单连接更稳定
	db.SetMaxIdleConns(1)

	s := &Server{cfg: cfg, db: db, sess: sess, hub: newStreamHub(sess)}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.startBackground()
	return s, nil
}

// Close 停止后台任务并关闭资源
func (s *Server) Close() error {
	if s.bgCancel != nil {
		s.bgCancel()
		s.bgWG.Wait()
	}
	s.hub.closeAll()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Router 构建 gin 路由
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api")
	api.GET("/snapshot", s.handleSnapshot)
	api.GET("/catalog", s.handleCatalog)
	api.GET("/purchases", s.handlePurchases)
	api.GET("/listings", s.handleListings)
	api.GET("/notifications", s.handleNotifications)
	api.GET("/activity", s.handleActivityList)
	api.GET("/stream", s.handleStream)

	api.POST("/refresh", s.handleRefresh)
	api.POST("/products", s.handleAddProduct)
	api.POST("/products/:productID/purchase", s.handlePurchaseProduct)
	api.POST("/products/:productID/toggle", s.handleToggleAvailability)
	api.GET("/products/:productID/download", s.handleDownloadLink)
	api.POST("/modals/download/close", s.handleCloseDownloadModal)
	api.POST("/modals/purchase/close", s.handleClosePurchaseModal)

	return r
}

// startBackground 启动后台任务：定期目录刷新 + 状态流广播
func (s *Server) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(2)
	go func() {
		defer s.bgWG.Done()
		s.refreshLoop(ctx)
	}()
	go func() {
		defer s.bgWG.Done()
		s.hub.broadcastLoop(ctx)
	}()
}

// refreshLoop 定期从权威源重拉目录与调用者数据
func (s *Server) refreshLoop(ctx context.Context) {
	if s.cfg.RefreshInterval <= 0 {
		return
	}
	t := time.NewTicker(s.cfg.RefreshInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.sess.LoadCatalog(ctx); err != nil {
				logger.Debugf("后台目录刷新失败: %v", err)
			}
			_ = s.sess.LoadCallerData(ctx)
		}
	}
}
