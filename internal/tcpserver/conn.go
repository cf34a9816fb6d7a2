package tcpserver

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// ErrConnClosed 链路已关闭，写入被拒绝
var ErrConnClosed = errors.New("tcpserver: connection closed")

// ErrWriteQueueFull 写队列在超时内未腾出空间
var ErrWriteQueueFull = errors.New("tcpserver: write queue timeout")

// ConnContext 为每条链路提供读/写循环与回调能力。
// 写走带缓冲的单写者队列，Write 的调用次序即落到 socket 的字节次序。
// writeC 永不 close：关闭经由 closing 通道广播，Write 与写循环都在
// select 里监听它，上层处理 goroutine 与读循环的拆链竞争不会撞上
// 向已关闭通道发送。
type ConnContext struct {
	s         *Server
	c         net.Conn
	id        uint64
	writeC    chan []byte
	closing   chan struct{}
	closeOnce sync.Once
	onRead    func([]byte)
	doneC     chan struct{}
}

func newConnContext(s *Server, c net.Conn) *ConnContext {
	return &ConnContext{
		s:       s,
		c:       c,
		id:      atomic.AddUint64(&s.nextConnID, 1),
		writeC:  make(chan []byte, 128),
		closing: make(chan struct{}),
		doneC:   make(chan struct{}),
	}
}

// ID 返回连接ID（单进程唯一递增）
func (cc *ConnContext) ID() uint64 { return cc.id }

// RemoteAddr 返回远端地址
func (cc *ConnContext) RemoteAddr() net.Addr { return cc.c.RemoteAddr() }

// SetOnRead 安装读取回调（收到上行原始字节时触发）。
// 回调复用内部缓冲区，接收方须自行复制。
func (cc *ConnContext) SetOnRead(h func([]byte)) { cc.onRead = h }

// Write 异步写入，受写队列与写超时影响
func (cc *ConnContext) Write(b []byte) error {
	select {
	case <-cc.closing:
		return ErrConnClosed
	default:
	}
	// 复制一份，避免调用方复用底层切片
	dup := make([]byte, len(b))
	copy(dup, b)
	to := cc.s.cfg.WriteTimeout
	if to <= 0 {
		to = 5 * time.Second
	}
	timer := time.NewTimer(to)
	defer timer.Stop()
	select {
	case cc.writeC <- dup:
		return nil
	case <-cc.closing:
		return ErrConnClosed
	case <-timer.C:
		return ErrWriteQueueFull
	}
}

// Close 标记关闭并断开底层连接，可安全地并发/重复调用
func (cc *ConnContext) Close() error {
	cc.closeOnce.Do(func() { close(cc.closing) })
	return cc.c.Close()
}

// run 启动读/写循环，阻塞直至连接结束
func (cc *ConnContext) run() {
	defer cc.Close()
	if cc.s.cfg.ReadTimeout > 0 {
		_ = cc.c.SetReadDeadline(time.Now().Add(cc.s.cfg.ReadTimeout))
	}

	// 写循环
	doneW := make(chan struct{})
	go func() {
		defer close(doneW)
		for {
			select {
			case msg := <-cc.writeC:
				if cc.s.cfg.WriteTimeout > 0 {
					_ = cc.c.SetWriteDeadline(time.Now().Add(cc.s.cfg.WriteTimeout))
				}
				n, err := cc.c.Write(msg)
				if n > 0 && cc.s.onSendBytes != nil {
					cc.s.onSendBytes(n)
				}
				if err != nil {
					return
				}
			case <-cc.closing:
				return
			}
		}
	}()

	// 读循环
	buf := make([]byte, 4096)
	for {
		n, err := cc.c.Read(buf)
		if n > 0 {
			if cc.s.onRecvBytes != nil {
				cc.s.onRecvBytes(n)
			}
			if cc.onRead != nil {
				cc.onRead(buf[:n])
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				// 读超时只界定单次等待，刷新 deadline 继续
				if cc.s.cfg.ReadTimeout > 0 {
					_ = cc.c.SetReadDeadline(time.Now().Add(cc.s.cfg.ReadTimeout))
				}
				continue
			}
			break
		}
	}
	_ = cc.Close()
	// 等待写循环退出
	<-doneW
	// 广播关闭
	select {
	case <-cc.doneC:
	default:
		close(cc.doneC)
	}
}

// Done 返回连接关闭通知通道
func (cc *ConnContext) Done() <-chan struct{} { return cc.doneC }
