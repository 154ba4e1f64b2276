//go:build linux

package ws

import (
	"errors"
	"net"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// pollBatch caps how many readiness events a single Ready call collects.
const pollBatch = 256

var errPollerClosed = errors.New("ws: poller closed")

// Poller multiplexes read readiness across every client socket through a
// single epoll descriptor. One event loop goroutine serves the whole server
// instead of a goroutine per connection.
type Poller struct {
	epfd    int
	mu      sync.RWMutex
	watched map[int]net.Conn
	events  []unix.EpollEvent
	closed  bool
}

func NewPoller() (*Poller, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &Poller{
		epfd:    epfd,
		watched: make(map[int]net.Conn),
		events:  make([]unix.EpollEvent, pollBatch),
	}, nil
}

// Watch adds the connection's socket to the epoll interest list. The poller
// reports the socket when it has bytes to read or the peer hangs up.
func (p *Poller) Watch(conn net.Conn) error {
	fd := socketFD(conn)
	event := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLHUP, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, syscall.EPOLL_CTL_ADD, fd, &event); err != nil {
		return err
	}

	p.mu.Lock()
	p.watched[fd] = conn
	p.mu.Unlock()
	return nil
}

// Unwatch drops the connection's socket from the interest list.
func (p *Poller) Unwatch(conn net.Conn) error {
	fd := socketFD(conn)
	if err := unix.EpollCtl(p.epfd, syscall.EPOLL_CTL_DEL, fd, nil); err != nil {
		return err
	}

	p.mu.Lock()
	delete(p.watched, fd)
	p.mu.Unlock()
	return nil
}

// Ready blocks until at least one watched socket is readable and returns
// those connections. A socket unwatched between wakeup and lookup is skipped.
func (p *Poller) Ready() ([]net.Conn, error) {
	n, err := unix.EpollWait(p.epfd, p.events, -1)
	if err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, errPollerClosed
	}

	ready := make([]net.Conn, 0, n)
	for _, ev := range p.events[:n] {
		if conn, ok := p.watched[int(ev.Fd)]; ok {
			ready = append(ready, conn)
		}
	}
	return ready, nil
}

func (p *Poller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.watched = nil
	return unix.Close(p.epfd)
}

// socketFD digs the raw file descriptor out of a net.Conn without duplicating
// it the way File() would, so the fd stays valid for epoll registration.
func socketFD(conn net.Conn) int {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return -1
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return -1
	}

	fd := -1
	_ = raw.Control(func(sfd uintptr) { fd = int(sfd) })
	return fd
}
