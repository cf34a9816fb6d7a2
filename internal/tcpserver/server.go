// Package tcpserver 承载对 HF 的字节链路。生产形态里这层是 RFCOMM，
// 这里用 TCP 仿真：建链、读写循环、连接数与接入速率限制。链路建立后
// 交给上层处理器，之后本包只搬运字节。
package tcpserver

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/lanwave/hfp-ag/internal/config"
)

// Server TCP 链路层
type Server struct {
	cfg     cfgpkg.TCPConfig
	logger  *zap.Logger
	ln      net.Listener
	wg      sync.WaitGroup
	stopC   chan struct{}
	handler func(*ConnContext)

	limiter     *ConnectionLimiter
	rateLimiter *AcceptRateLimiter
	nextConnID  uint64
	activeConns atomic.Int64

	// 可选指标回调
	onAccept    func()
	onRecvBytes func(n int)
	onSendBytes func(n int)
}

// New 创建 TCP 链路层
func New(cfg cfgpkg.TCPConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cfg: cfg, logger: logger, stopC: make(chan struct{})}
	if cfg.MaxConnections > 0 {
		s.limiter = NewConnectionLimiter(cfg.MaxConnections)
	}
	if cfg.AcceptRate > 0 {
		s.rateLimiter = NewAcceptRateLimiter(cfg.AcceptRate, cfg.AcceptBurst)
	}
	return s
}

// SetHandler 设置新链路处理回调。回调在读循环启动前调用，
// 处理器应在其中安装 OnRead 再返回。
func (s *Server) SetHandler(h func(*ConnContext)) { s.handler = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept func(), onRecvBytes, onSendBytes func(int)) {
	s.onAccept, s.onRecvBytes, s.onSendBytes = onAccept, onRecvBytes, onSendBytes
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.logger.Info("TCP 链路层已监听", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				// 短暂错误等待后重试
				time.Sleep(50 * time.Millisecond)
				continue
			}
			if s.rateLimiter != nil && !s.rateLimiter.Allow() {
				s.logger.Warn("接入速率超限，拒绝链路",
					zap.String("remote", conn.RemoteAddr().String()))
				_ = conn.Close()
				continue
			}
			if s.limiter != nil && !s.limiter.TryAcquire() {
				s.logger.Warn("连接数超限，拒绝链路",
					zap.String("remote", conn.RemoteAddr().String()),
					zap.Int("max", s.limiter.MaxConnections()))
				_ = conn.Close()
				continue
			}
			if s.onAccept != nil {
				s.onAccept()
			}

			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				if s.limiter != nil {
					defer s.limiter.Release()
				}
				s.activeConns.Add(1)
				defer s.activeConns.Add(-1)

				cc := newConnContext(s, c)
				if s.handler != nil {
					s.handler(cc)
				}
				cc.run()
			}(conn)
		}
	}()
	return nil
}

// Addr 返回实际监听地址，未启动时为 nil
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveConnections 当前在线链路数
func (s *Server) ActiveConnections() int { return int(s.activeConns.Load()) }

// MaxConnections 配置的链路数上限，0 表示不限
func (s *Server) MaxConnections() int { return s.cfg.MaxConnections }

// LimiterStats 连接数限流统计，未启用时为 nil
func (s *Server) LimiterStats() *LimiterStats {
	if s.limiter == nil {
		return nil
	}
	st := s.limiter.Stats()
	return &st
}

// RateLimiterStats 接入速率限流统计，未启用时为 nil
func (s *Server) RateLimiterStats() *RateLimiterStats {
	if s.rateLimiter == nil {
		return nil
	}
	st := s.rateLimiter.Stats()
	return &st
}

// Shutdown 优雅关闭监听并等待连接退出
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopC)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
