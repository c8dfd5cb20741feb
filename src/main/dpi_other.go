//go:build !windows

package main

import (
	"log"

	"screen-pds/src/screenshot"
)

func enableDPIAwareness() {}

func logMonitorConfiguration() {
	b, err := screenshot.GetDisplayBounds()
	if err != nil {
		log.Printf("MONITOR: %v", err)
		return
	}
	log.Printf("MONITOR: Primary screen - x:%d y:%d w:%d h:%d", b.Min.X, b.Min.Y, b.Dx(), b.Dy())
}
