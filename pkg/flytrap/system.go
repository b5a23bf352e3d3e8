// system.go captures runtime, OS and process state at error time.

package flytrap

import (
	"os"
	"runtime"
	"strings"
	"time"
)

// RuntimeDetails returns the Go runtime identifier and the operating system
// identifier of the current process, e.g. "go 1.25.4" and
// "linux 6.8.0-45-generic (amd64)".
func RuntimeDetails() (runtimeName, osName string) {
	runtimeName = "go " + strings.TrimPrefix(runtime.Version(), "go")

	osName = runtime.GOOS
	if release := kernelRelease(); release != "" {
		osName += " " + release
	}
	osName += " (" + runtime.GOARCH + ")"

	return runtimeName, osName
}

// Environment resolves the EnvironmentInfo for one report. A nil request
// yields an empty IP.
func Environment(req Request) EnvironmentInfo {
	rt, osName := RuntimeDetails()
	return EnvironmentInfo{
		Runtime: rt,
		OS:      osName,
		IP:      ResolveIP(req),
	}
}

// ResolveIP returns the client address of req, or "" when req is nil.
func ResolveIP(req Request) string {
	if req == nil {
		return ""
	}
	return req.ClientIP()
}

// CaptureSystemState captures process metrics at the current moment.
// The startTime parameter is used to calculate process uptime.
func CaptureSystemState(startTime time.Time) *SystemState {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	hostname, _ := os.Hostname() // empty hostname is acceptable

	uptimeMs := time.Since(startTime).Milliseconds()
	if uptimeMs < 0 {
		uptimeMs = 0
	}

	return &SystemState{
		MemoryBytes:    int64(memStats.Alloc),
		GoroutineCount: runtime.NumGoroutine(),
		UptimeMs:       uptimeMs,
		HostName:       hostname,
	}
}
