package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ericogr/biogenesis/internal/constants"
)

// probeURL targets the health route on the configured listen port.
func probeURL(addr string) string {
	if addr == "" {
		addr = ":8080"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + constants.RouteHealth
}

func main() {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(probeURL(os.Getenv(constants.EnvListenAddr)))
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	os.Exit(0)
}
