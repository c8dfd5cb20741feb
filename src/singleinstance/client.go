package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"screen-pds/src/action"
)

// Forward sends a to the resident instance of appName. delegated is false
// when no resident answers the probe.
func Forward(ctx context.Context, appName string, a action.Action) (delegated bool, err error) {
	timeout := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			timeout = d
		}
	}
	addr := Address(appName)
	if !ping(addr, timeout) {
		return false, nil
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false, nil
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(actionPrefix + a.String() + "\n"); err != nil {
		return true, err
	}
	if err := w.Flush(); err != nil {
		return true, err
	}
	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		return true, err
	}
	switch status {
	case okResponse:
		return true, nil
	case errorResponse:
		msg, _ := io.ReadAll(br)
		return true, errors.New(string(msg))
	default:
		return true, errors.New("unexpected response from resident")
	}
}

// Running reports whether a resident answers on appName's port.
func Running(appName string) bool {
	return ping(Address(appName), 300*time.Millisecond)
}

func ping(addr string, timeout time.Duration) bool {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	w := bufio.NewWriter(conn)
	if _, err := w.WriteString(pingRequest); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
