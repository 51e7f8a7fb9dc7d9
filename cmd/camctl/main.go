// Command camctl is an interactive CamLink camera controller.
//
// camctl connects to a telemetry bridge, tracks the camera accessory's
// heartbeat, and drives recording from the command line.
//
// Usage:
//
//	camctl [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-addr string        Bridge address (host:port); skips discovery
//	-system int         Target system ID (with -addr)
//	-component int      Target component ID (with -addr, default 154)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//	-events string      Write protocol events to a CBOR log file
//	-reject-pending     Reject requests for channels with a pending request
//
// Examples:
//
//	# Discover a bridge on the local network and connect
//	camctl
//
//	# Connect to a known bridge
//	camctl -addr 192.168.1.50:5760 -system 1
//
//	# Capture a protocol event log for later inspection
//	camctl -addr 192.168.1.50:5760 -system 1 -events flight.cborlog
//
// Interactive Commands:
//
//	status        - Show accessory status and link state
//	start         - Start video recording
//	stop          - Stop video recording
//	set <cmd> <v> - Send a raw set-request
//	get <cmd>     - Send a raw get-request
//	quit          - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/camlink-project/camlink-go/pkg/camera"
	"github.com/camlink-project/camlink-go/pkg/connection"
	"github.com/camlink-project/camlink-go/pkg/discovery"
	"github.com/camlink-project/camlink-go/pkg/log"
	"github.com/camlink-project/camlink-go/pkg/transport"
	"github.com/camlink-project/camlink-go/pkg/version"
	"github.com/camlink-project/camlink-go/pkg/wire"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Configuration file path (YAML)")

	cfg := DefaultConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "Bridge address (host:port); skips discovery")
	flag.UintVar(&cfg.SystemID, "system", cfg.SystemID, "Target system ID (with -addr)")
	flag.UintVar(&cfg.ComponentID, "component", cfg.ComponentID, "Target component ID (with -addr)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.EventLog, "events", cfg.EventLog, "Write protocol events to a CBOR log file")
	flag.BoolVar(&cfg.RejectPending, "reject-pending", cfg.RejectPending, "Reject requests for channels with a pending request")
	flag.Parse()

	if configPath != "" {
		fileCfg := DefaultConfig()
		if err := fileCfg.LoadFile(configPath); err != nil {
			stdlog.Fatalf("Failed to load config: %v", err)
		}
		// Flags win over the file: start from the file values, then re-apply
		// only the flags the user actually set.
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		cfg.Merge(fileCfg, set)
	}

	slogger := newSlogger(cfg.LogLevel)
	slog.SetDefault(slogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	target, addr, err := resolveBridge(ctx, cfg)
	if err != nil {
		stdlog.Fatalf("Failed to resolve bridge: %v", err)
	}
	slogger.Info("bridge resolved", "addr", addr,
		"system", target.TargetSystem(), "component", target.TargetComponent())

	protoLogger, closeLogger, err := buildProtocolLogger(cfg, slogger)
	if err != nil {
		stdlog.Fatalf("Failed to open event log: %v", err)
	}
	defer closeLogger()

	ctl := &controller{
		addr:     addr,
		slogger:  slogger,
		protoLog: protoLogger,
	}

	ctl.linkMgr = connection.NewManager(ctl.dial)
	ctl.linkMgr.OnLinkUp(ctl.handleLinkUp)
	ctl.linkMgr.OnReconnecting(func(attempt int, delay time.Duration) {
		slogger.Info("reconnecting", "attempt", attempt, "delay", delay)
	})
	ctl.linkMgr.StartReconnectLoop()

	pending := camera.OverwritePending
	if cfg.RejectPending {
		pending = camera.RejectPending
	}
	session, err := camera.NewSession(camera.Config{
		Sender:  ctl, // forwards to the current connection
		Target:  target,
		Pending: pending,
		Logger:  protoLogger,
		LinkID:  addr,
	})
	if err != nil {
		stdlog.Fatalf("Failed to create session: %v", err)
	}
	defer session.Close()
	ctl.session = session

	session.OnStatusChange(func(status wire.Status) {
		slogger.Info("accessory status", "status", status.String())
	})
	session.OnSequenceFailure(func(reason string) {
		slogger.Warn("recording sequence failed", "reason", reason)
	})

	if err := ctl.linkMgr.Connect(ctx); err != nil {
		stdlog.Fatalf("Failed to connect to bridge: %v", err)
	}

	ic, err := newInteractive(ctl)
	if err != nil {
		stdlog.Fatalf("Failed to start interactive mode: %v", err)
	}
	// Route slog through readline so log lines do not clobber the prompt.
	slog.SetDefault(slog.New(slog.NewTextHandler(ic.Stdout(), &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))
	go ic.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slogger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}

	cancel()
	ctl.closeConn()
	ctl.linkMgr.Close()
}

// controller owns the live connection and glues the link manager, transport,
// and camera session together.
type controller struct {
	addr     string
	slogger  *slog.Logger
	protoLog log.Logger

	linkMgr *connection.Manager
	session *camera.Session

	// conn is written by dial on the reconnect-loop goroutine and read from
	// the readline goroutine and session continuations.
	conn atomic.Pointer[transport.Conn]
}

// dial establishes a fresh framed connection to the bridge.
// Called by the link manager on connect and on every reconnection attempt.
func (c *controller) dial(ctx context.Context) error {
	d := net.Dialer{}
	nc, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return err
	}

	conn := transport.NewConn(nc, c.session, transport.ConnConfig{
		Logger: c.protoLog,
	})
	conn.SetCloseCallback(func(err error) {
		if err != nil {
			c.slogger.Warn("link closed", "error", err)
		}
		c.linkMgr.NotifyLinkLost()
	})

	c.conn.Store(conn)
	go func() { _ = conn.Run(context.Background()) }()

	return nil
}

// handleLinkUp maps link manager transitions onto camera session link events.
func (c *controller) handleLinkUp(restored bool) {
	if conn := c.conn.Load(); conn != nil {
		_ = c.session.SetSender(conn)
	}
	if restored {
		c.session.HandleLinkEvent(camera.LinkRestored)
		c.slogger.Info("link restored")
	} else {
		c.session.HandleLinkEvent(camera.LinkEstablished)
		c.slogger.Info("link established")
	}
}

// Send implements camera.Sender by forwarding to the current connection.
func (c *controller) Send(data []byte) error {
	conn := c.conn.Load()
	if conn == nil {
		return transport.ErrConnClosed
	}
	return conn.Send(data)
}

func (c *controller) closeConn() {
	if conn := c.conn.Load(); conn != nil {
		_ = conn.Close()
	}
}

// resolveBridge returns target addressing and the bridge network address,
// from flags or via mDNS discovery.
func resolveBridge(ctx context.Context, cfg *Config) (camera.TargetSource, string, error) {
	if cfg.Addr != "" {
		return staticTarget{
			system:    uint8(cfg.SystemID),
			component: uint8(cfg.ComponentID),
		}, cfg.Addr, nil
	}

	browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{})
	svc, err := browser.FindFirst(ctx, discovery.BrowseTimeout)
	if err != nil {
		return nil, "", fmt.Errorf("no bridge found: %w", err)
	}
	if !version.CompatibleWith(svc.Version) {
		return nil, "", fmt.Errorf("bridge %s speaks incompatible version %s (this build: %s)",
			svc.InstanceName, svc.Version, version.Current)
	}
	if len(svc.Addresses) == 0 {
		return nil, "", fmt.Errorf("bridge %s advertised no addresses", svc.InstanceName)
	}

	addr := net.JoinHostPort(svc.Addresses[0], fmt.Sprintf("%d", svc.Port))
	return svc, addr, nil
}

// staticTarget is a fixed TargetSource built from flags.
type staticTarget struct {
	system    uint8
	component uint8
}

func (t staticTarget) TargetSystem() uint8    { return t.system }
func (t staticTarget) TargetComponent() uint8 { return t.component }

// buildProtocolLogger assembles the protocol event logger from config:
// slog for the console, plus an optional CBOR file log.
func buildProtocolLogger(cfg *Config, slogger *slog.Logger) (log.Logger, func(), error) {
	console := log.NewSlogAdapter(slogger)

	if cfg.EventLog == "" {
		return console, func() {}, nil
	}

	fileLog, err := log.NewFileLogger(cfg.EventLog)
	if err != nil {
		return nil, nil, err
	}
	return log.NewMultiLogger(console, fileLog), func() { _ = fileLog.Close() }, nil
}

func newSlogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
