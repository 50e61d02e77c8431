package metrics

import (
	"context"
	"expvar"
	"net/http"
	"time"

	"github.com/betbot/gomarket/pkg/logger"
)

// Server expvar 调试服务器
// 暴露 /debug/vars，供运维观察计数器
type Server struct {
	srv *http.Server
}

// NewServer 创建调试服务器（addr 为空则不启动）
func NewServer(addr string) *Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/debug/vars", expvar.Handler())
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start 后台启动
func (s *Server) Start() {
	if s == nil {
		return
	}
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warnf("指标服务器退出: %v", err)
		}
	}()
}

// Stop 优雅停止
func (s *Server) Stop(ctx context.Context) {
	if s == nil {
		return
	}
	_ = s.srv.Shutdown(ctx)
}
