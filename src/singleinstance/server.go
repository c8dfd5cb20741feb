package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"screen-pds/src/action"
)

const (
	pingRequest   = "PING\n"
	pongResponse  = "PONG\n"
	actionPrefix  = "ACTION "
	okResponse    = "OK\n"
	errorResponse = "ERROR\n"
)

// Poster receives actions forwarded by later launches.
type Poster interface {
	Post(a action.Action) bool
}

// Serve answers PING probes and forwards ACTION requests to p until ctx is
// cancelled or the guard is released.
func (g *Guard) Serve(ctx context.Context, p Poster) error {
	go func() {
		<-ctx.Done()
		_ = g.Release()
	}()
	for {
		c, err := g.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		g.handle(c, p)
	}
}

func (g *Guard) handle(c net.Conn, p Poster) {
	defer c.Close()
	remote := c.RemoteAddr().String()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	line, _ := bufio.NewReader(c).ReadString('\n')
	bw := bufio.NewWriter(c)
	defer bw.Flush()

	if line == pingRequest {
		_, _ = bw.WriteString(pongResponse)
		return
	}
	if !strings.HasPrefix(line, actionPrefix) {
		log.Printf("singleinstance: unknown request %q from %s", line, remote)
		_, _ = bw.WriteString(errorResponse + "unknown request")
		return
	}
	a, err := action.Parse(strings.TrimPrefix(line, actionPrefix))
	if err != nil {
		_, _ = bw.WriteString(errorResponse + err.Error())
		return
	}
	log.Printf("singleinstance: %s forwarded from %s", a, remote)
	if p == nil || !p.Post(a) {
		_, _ = bw.WriteString(errorResponse + "busy, please retry")
		return
	}
	_, _ = bw.WriteString(okResponse)
}
