package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// typeLimits is a flag.Value collecting "TYPE:N" pairs.
type typeLimits map[string]int

func (l typeLimits) String() string {
	parts := make([]string, 0, len(l))
	for k, v := range l {
		parts = append(parts, k+":"+strconv.Itoa(v))
	}
	return strings.Join(parts, ",")
}

func (l typeLimits) Set(s string) error {
	for _, pair := range strings.Split(s, ",") {
		typeID, n, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok || typeID == "" {
			return fmt.Errorf("need limit in a form `TYPE:N`, got %q", pair)
		}
		limit, err := strconv.Atoi(n)
		if err != nil {
			return err
		}
		l[typeID] = limit
	}
	return nil
}

// ParseFlags parses configuration flags from args.
//
// Flags:
//
//	-a diagnostics server address in format [host]:[port]
//	-api platform REST base URL
//	-pipeline platform push websocket URL
//	-d database DSN
//	-c/-config json file path with configs
//	-master-key secret the credential key is derived from
//	-user-agent User-Agent header value
//	-log-dir directory for the logs file
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-total-per-minute global task cap per minute
//	-type-per-minute per-type task caps (e.g., "LIST_FRIENDS:15")
//	-concurrent-types one in-flight task per type instead of FIFO
//	-status-poll-interval polling fallback check interval
//	-stale-after age after which the current user is re-fetched
//	-watchdog-interval pipeline watchdog interval
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("go-vrc-link", flag.ContinueOnError)

	var diagnosticsAddress NetAddress
	var apiAddress, pipelineAddress string
	var databaseDSN string
	var jsonConfigPath string
	var masterKey, userAgent, logDir string
	var requestTimeout time.Duration
	var totalPerMinute int
	typePerMinute := typeLimits{}
	var concurrentTypes bool
	var statusPollInterval, staleAfter, watchdogInterval time.Duration

	fs.Var(&diagnosticsAddress, "a", "Diagnostics net address host:port")
	fs.StringVar(&apiAddress, "api", "", "Platform REST base URL")
	fs.StringVar(&pipelineAddress, "pipeline", "", "Platform pipeline websocket URL")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&masterKey, "master-key", "", "Master secret for remembered credentials")
	fs.StringVar(&userAgent, "user-agent", "", "User-Agent header value")
	fs.StringVar(&logDir, "log-dir", "", "Directory for the logs file")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.IntVar(&totalPerMinute, "total-per-minute", 0, "Global task cap per minute")
	fs.Var(typePerMinute, "type-per-minute", "Per-type task caps (e.g., LIST_FRIENDS:15,UPDATE_STATUS:5)")
	fs.BoolVar(&concurrentTypes, "concurrent-types", false, "Run one task per type concurrently")
	fs.DurationVar(&statusPollInterval, "status-poll-interval", 0, "Polling fallback check interval")
	fs.DurationVar(&staleAfter, "stale-after", 0, "Age after which the current user is re-fetched")
	fs.DurationVar(&watchdogInterval, "watchdog-interval", 0, "Pipeline watchdog interval")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			UserAgent: userAgent,
			MasterKey: masterKey,
			LogDir:    logDir,
		},
		Adapter: Adapter{
			APIAddress:      apiAddress,
			PipelineAddress: pipelineAddress,
			RequestTimeout:  requestTimeout,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Queue: Queue{
			TotalPerMinute:  totalPerMinute,
			ConcurrentTypes: concurrentTypes,
		},
		Workers: Workers{
			StatusPollInterval: statusPollInterval,
			StaleAfter:         staleAfter,
			WatchdogInterval:   watchdogInterval,
		},
		Server: Server{
			DiagnosticsAddress: diagnosticsAddress.String(),
		},
		JSONFilePath: jsonConfigPath,
	}
	if len(typePerMinute) > 0 {
		cfg.Queue.TypePerMinute = typePerMinute
	}

	return cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost"
// or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	host, portStr, found := strings.Cut(s, ":")
	if !found || strings.Contains(portStr, ":") {
		return errors.New("need address in a form `host:port`")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be between 1 and 65535")
	}

	if host != "localhost" && host != "" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
