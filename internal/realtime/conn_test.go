package realtime

import (
	"io"
	"sync"
)

// frame is one websocket message seen by fakeConn.
type frame struct {
	kind int
	data []byte
	err  error
}

// fakeConn replays scripted reads, then reports EOF. Writes are recorded.
type fakeConn struct {
	mu      sync.Mutex
	reads   []frame
	written []frame
	closes  int
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.reads) == 0 {
		return 0, nil, io.EOF
	}
	next := c.reads[0]
	c.reads = c.reads[1:]
	return next.kind, next.data, next.err
}

func (c *fakeConn) WriteMessage(kind int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, frame{kind: kind, data: append([]byte(nil), data...)})
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *fakeConn) Written() []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]frame(nil), c.written...)
}

func (c *fakeConn) Closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}
