// Command mavlink-gw relays MAVLink v1/v2 frames between any number of
// endpoints — TCP, UDP, or serial — broadcasting each frame received on one
// endpoint out to every other, the way mavlink-router or MAVProxy sit
// between a flight controller link and several ground-station consumers.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/tellurian-uas/gomavlink/dialect"
	"github.com/tellurian-uas/gomavlink/frame"
	"github.com/tellurian-uas/gomavlink/internal/hub"
	"github.com/tellurian-uas/gomavlink/internal/metrics"
)

func main() {
	cfg, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("mavlink-gw %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if cfg == nil {
		os.Exit(2)
	}
	l := setupLogger(cfg.logFormat, cfg.logLevel)

	protocolVersion := frame.V2
	if cfg.protocolVersion == "v1" {
		protocolVersion = frame.V1
	}
	cat := dialect.Common{}

	h := hub.New()
	h.OutBufSize = cfg.hubBuffer
	switch cfg.hubPolicy {
	case "kick":
		h.Policy = hub.PolicyKick
	default:
		h.Policy = hub.PolicyDrop
	}
	l.Info("build_info", "version", version, "commit", commit, "date", date)
	l.Info("relay_config", "policy", cfg.hubPolicy, "buffer", cfg.hubBuffer, "protocol", cfg.protocolVersion, "endpoints", cfg.endpoints)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	startMetricsLogger(ctx, cfg.logMetricsEvery, l, &wg)

	r := newRelay(h, l)

	var publisher *heartbeatPublisher
	if cfg.redisAddr != "" {
		p, err := newHeartbeatPublisher(cfg.redisAddr, l)
		if err != nil {
			l.Error("redis_connect_error", "error", err)
		} else {
			publisher = p
			r.onHeatbit = func(f frame.Frame) { publisher.publish(cfg.redisChannel, f) }
			defer publisher.Close()
		}
	}

	dialed := 0
	for _, addr := range cfg.endpoints {
		if _, err := r.dialEndpoint(ctx, addr, protocolVersion, cat, cfg.hubBuffer, &wg); err != nil {
			l.Error("endpoint_dial_error", "endpoint", addr, "error", err)
			continue
		}
		dialed++
	}
	if dialed < 2 {
		l.Error("insufficient_endpoints", "dialed", dialed, "configured", len(cfg.endpoints))
		cancel()
		wg.Wait()
		os.Exit(1)
	}

	if cfg.mdnsEnable {
		go func() {
			addr, ok := firstTCPInPort(cfg.endpoints)
			if !ok {
				l.Warn("mdns_skip_no_tcpin")
				return
			}
			port := 0
			if _, p, err := net.SplitHostPort(addr); err == nil {
				if pn, perr := strconv.Atoi(p); perr == nil {
					port = pn
				}
			}
			if port == 0 {
				l.Warn("mdns_skip_no_port", "addr", addr)
				return
			}
			cleanup, err := startMDNS(ctx, cfg, port)
			if err != nil {
				l.Warn("mdns_start_failed", "error", err)
				return
			}
			l.Info("mdns_started", "service", mdnsServiceType, "port", port)
			<-ctx.Done()
			cleanup()
		}()
	}

	metrics.SetReadinessFunc(func() bool { return ctx.Err() == nil && h.Count() > 0 })
	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		srvHTTP := metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = srvHTTP.Shutdown(context.Background()) }()
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	l.Info("shutdown_signal", "signal", s.String())
	cancel()
	wg.Wait()
}
