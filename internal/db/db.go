package db

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/oxidb"
)

const (
	dialTimeout              = 5 * time.Second
	DefaultKeepaliveInterval = 10 * time.Second
)

// conn is one pool slot. A client replaced by reconnect stays open until its
// last borrower releases it.
type conn struct {
	client  *oxidb.Client
	refs    int
	retired bool
}

// Pool is a round-robin connection pool for OxiDB with auto-reconnect.
// It is created once at startup and handed to every repository that needs it.
type Pool struct {
	host      string
	port      int
	clients   []*conn
	mu        []sync.Mutex
	idx       uint64
	interval  time.Duration
	log       *zap.Logger
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewPool creates a pool of size OxiDB connections. Any failed dial closes
// the connections opened so far.
func NewPool(host string, port, size int, keepalive time.Duration, log *zap.Logger) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	if keepalive <= 0 {
		keepalive = DefaultKeepaliveInterval
	}
	p := &Pool{
		host:     host,
		port:     port,
		clients:  make([]*conn, size),
		mu:       make([]sync.Mutex, size),
		interval: keepalive,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		c, err := oxidb.Connect(host, port, dialTimeout)
		if err != nil {
			close(p.done)
			p.Close()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = &conn{client: c}
	}
	go p.keepalive()
	return p, nil
}

// Acquire borrows the next client in round-robin order. The caller must call
// release when its request is done.
func (p *Pool) Acquire() (client *oxidb.Client, release func()) {
	n := atomic.AddUint64(&p.idx, 1)
	return p.acquireAt(int(n % uint64(len(p.clients))))
}

func (p *Pool) acquireAt(i int) (*oxidb.Client, func()) {
	p.mu[i].Lock()
	cn := p.clients[i]
	cn.refs++
	p.mu[i].Unlock()

	var once sync.Once
	return cn.client, func() {
		once.Do(func() {
			p.mu[i].Lock()
			defer p.mu[i].Unlock()
			cn.refs--
			if cn.retired && cn.refs == 0 {
				cn.client.Close()
			}
		})
	}
}

// Ping checks every connection once.
func (p *Pool) Ping(ctx context.Context) error {
	for i := range p.clients {
		c, release := p.acquireAt(i)
		_, err := c.Ping(ctx)
		release()
		if err != nil {
			return fmt.Errorf("pool: ping client %d: %w", i, err)
		}
	}
	return nil
}

// reconnect replaces a broken client at index i.
func (p *Pool) reconnect(i int) {
	c, err := oxidb.Connect(p.host, p.port, dialTimeout)
	if err != nil {
		p.log.Warn("pool: reconnect failed", zap.Int("client", i), zap.Error(err))
		return
	}
	p.mu[i].Lock()
	defer p.mu[i].Unlock()
	old := p.clients[i]
	if old.refs == 0 {
		old.client.Close()
	} else {
		old.retired = true
	}
	p.clients[i] = &conn{client: c}
	p.log.Info("pool: client reconnected", zap.Int("client", i))
}

func (p *Pool) keepalive() {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			for i := range p.clients {
				ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
				c, release := p.acquireAt(i)
				_, err := c.Ping(ctx)
				release()
				cancel()
				if err != nil {
					p.log.Warn("pool: ping failed, reconnecting", zap.Int("client", i), zap.Error(err))
					p.reconnect(i)
				}
			}
		}
	}
}

// Close stops the keepalive loop and closes all connections.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		<-p.done
		for i := range p.clients {
			p.mu[i].Lock()
			if cn := p.clients[i]; cn != nil {
				cn.client.Close()
			}
			p.mu[i].Unlock()
		}
	})
}
