// Package singleinstance keeps one resident process per user session. The
// resident owns a deterministic loopback port; later launches forward their
// requested action to it instead of registering a second set of hotkeys.
package singleinstance

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"net"
	"os"
	"strconv"
)

// ErrAlreadyRunning indicates another instance already holds the port.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	residentHost = "127.0.0.1"
	minPort      = 20000
	maxPort      = 39999

	// PortEnvVar overrides the derived port, mainly for tests and for running
	// two differently configured copies side by side.
	PortEnvVar = "SINGLEINSTANCE_PORT"
)

// Guard holds the single instance lock.
type Guard struct {
	listener net.Listener
	address  string
	port     int
}

// Acquire binds the port derived from appName.
func Acquire(appName string) (*Guard, error) {
	port := PortFor(appName)
	address := net.JoinHostPort(residentHost, strconv.Itoa(port))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Printf("singleinstance: failed to bind %s: %v", address, err)
		return nil, ErrAlreadyRunning
	}
	log.Printf("singleinstance: listening on %s", address)
	return &Guard{listener: listener, address: address, port: port}, nil
}

// Release frees the lock. Safe on a nil guard.
func (g *Guard) Release() error {
	if g == nil || g.listener == nil {
		return nil
	}
	return g.listener.Close()
}

// Address returns the bound address.
func (g *Guard) Address() string {
	if g == nil {
		return ""
	}
	return g.address
}

// Port returns the bound port (0 for a nil guard).
func (g *Guard) Port() int {
	if g == nil {
		return 0
	}
	return g.port
}

// PortFor hashes appName into [20000, 39999] unless PortEnvVar is set to a
// valid port.
func PortFor(appName string) int {
	if v := os.Getenv(PortEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1024 && n <= 65535 {
			return n
		}
		log.Printf("singleinstance: ignoring invalid %s=%q", PortEnvVar, v)
	}
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}

// Address returns the loopback address the resident of appName listens on.
func Address(appName string) string {
	return net.JoinHostPort(residentHost, fmt.Sprint(PortFor(appName)))
}
