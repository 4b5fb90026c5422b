package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// endpointList accumulates repeated -endpoint flags into an ordered slice.
type endpointList []string

func (e *endpointList) String() string { return strings.Join(*e, ",") }
func (e *endpointList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return errors.New("empty endpoint address")
	}
	*e = append(*e, v)
	return nil
}

type appConfig struct {
	endpoints       []string
	protocolVersion string
	logFormat       string
	logLevel        string
	metricsAddr     string
	hubBuffer       int
	hubPolicy       string
	logMetricsEvery time.Duration
	mdnsEnable      bool
	mdnsName        string
	redisAddr       string
	redisChannel    string
}

func parseFlags() (*appConfig, bool) {
	cfg := &appConfig{}
	var endpoints endpointList
	flag.Var(&endpoints, "endpoint", "MAVLink endpoint address (tcpin:/tcpout:/udpin:/udpout:/serial:); may be repeated")
	protocolVersion := flag.String("protocol", "v2", "MAVLink wire protocol: v1|v2")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	hubBuf := flag.Int("hub-buffer", 512, "Per-endpoint relay buffer (frames)")
	hubPolicy := flag.String("hub-policy", "drop", "Backpressure policy: drop|kick")
	logMetricsEvery := flag.Duration("log-metrics-interval", 0, "If >0, periodically log metrics counters (for non-Prometheus setups)")
	mdnsEnable := flag.Bool("mdns-enable", false, "Enable mDNS advertisement of this gateway")
	mdnsName := flag.String("mdns-name", "", "mDNS instance name (default mavlink-gw-<hostname>)")
	redisAddr := flag.String("redis-addr", "", "Redis address for HEARTBEAT publish (e.g., localhost:6379); empty disables")
	redisChannel := flag.String("redis-channel", "mavlink.heartbeat", "Redis pub/sub channel for decoded HEARTBEATs")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })

	cfg.endpoints = []string(endpoints)
	cfg.protocolVersion = *protocolVersion
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.hubBuffer = *hubBuf
	cfg.hubPolicy = *hubPolicy
	cfg.logMetricsEvery = *logMetricsEvery
	cfg.mdnsEnable = *mdnsEnable
	cfg.mdnsName = *mdnsName
	cfg.redisAddr = *redisAddr
	cfg.redisChannel = *redisChannel

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

// validate performs basic semantic validation of the parsed configuration.
// It does not attempt to dial endpoints – only checks values/ranges.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if len(c.endpoints) < 2 {
		return fmt.Errorf("at least two -endpoint addresses are required to relay between them, got %d", len(c.endpoints))
	}
	switch c.protocolVersion {
	case "v1", "v2":
	default:
		return fmt.Errorf("invalid protocol: %s", c.protocolVersion)
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	switch c.hubPolicy {
	case "drop", "kick":
	default:
		return fmt.Errorf("invalid hub-policy: %s", c.hubPolicy)
	}
	if c.hubBuffer <= 0 {
		return fmt.Errorf("hub-buffer must be > 0 (got %d)", c.hubBuffer)
	}
	if c.logMetricsEvery < 0 {
		return fmt.Errorf("log-metrics-interval must be >= 0")
	}
	return nil
}

// applyEnvOverrides maps MAVLINK_GW_* environment variables to config fields
// unless the corresponding flag was explicitly set (flag wins). Endpoints
// are overridden as a whole, comma-separated list, only when -endpoint was
// never passed at all.
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }

	if _, ok := set["endpoint"]; !ok {
		if v, ok := get("MAVLINK_GW_ENDPOINTS"); ok && v != "" {
			var list []string
			for _, e := range strings.Split(v, ",") {
				if e = strings.TrimSpace(e); e != "" {
					list = append(list, e)
				}
			}
			if len(list) > 0 {
				c.endpoints = list
			}
		}
	}
	if _, ok := set["protocol"]; !ok {
		if v, ok := get("MAVLINK_GW_PROTOCOL"); ok && v != "" {
			c.protocolVersion = v
		}
	}
	if _, ok := set["log-format"]; !ok {
		if v, ok := get("MAVLINK_GW_LOG_FORMAT"); ok && v != "" {
			c.logFormat = v
		}
	}
	if _, ok := set["log-level"]; !ok {
		if v, ok := get("MAVLINK_GW_LOG_LEVEL"); ok && v != "" {
			c.logLevel = v
		}
	}
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("MAVLINK_GW_METRICS"); ok {
			c.metricsAddr = v
		}
	}
	if _, ok := set["hub-buffer"]; !ok {
		if v, ok := get("MAVLINK_GW_HUB_BUFFER"); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.hubBuffer = n
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVLINK_GW_HUB_BUFFER: %w", err)
			}
		}
	}
	if _, ok := set["hub-policy"]; !ok {
		if v, ok := get("MAVLINK_GW_HUB_POLICY"); ok && v != "" {
			c.hubPolicy = v
		}
	}
	if _, ok := set["mdns-enable"]; !ok {
		if v, ok := get("MAVLINK_GW_MDNS_ENABLE"); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				c.mdnsEnable = true
			case "0", "false", "no", "off":
				c.mdnsEnable = false
			}
		}
	}
	if _, ok := set["mdns-name"]; !ok {
		if v, ok := get("MAVLINK_GW_MDNS_NAME"); ok && v != "" {
			c.mdnsName = v
		}
	}
	if _, ok := set["redis-addr"]; !ok {
		if v, ok := get("MAVLINK_GW_REDIS_ADDR"); ok {
			c.redisAddr = v
		}
	}
	if _, ok := set["redis-channel"]; !ok {
		if v, ok := get("MAVLINK_GW_REDIS_CHANNEL"); ok && v != "" {
			c.redisChannel = v
		}
	}
	if _, ok := set["log-metrics-interval"]; !ok {
		if v, ok := get("MAVLINK_GW_LOG_METRICS_INTERVAL"); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil && d >= 0 {
				c.logMetricsEvery = d
			} else if err != nil && firstErr == nil {
				firstErr = fmt.Errorf("invalid MAVLINK_GW_LOG_METRICS_INTERVAL: %w", err)
			}
		}
	}
	return firstErr
}
