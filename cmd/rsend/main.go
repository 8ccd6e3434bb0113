// Command rsend transfers a file to a running rrecv over the reliable UDP
// protocol implemented by pkg/rudp.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/therealutkarshpriyadarshi/rudp/pkg/config"
	"github.com/therealutkarshpriyadarshi/rudp/pkg/resolve"
	"github.com/therealutkarshpriyadarshi/rudp/pkg/rudp"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file overriding protocol defaults")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
		showBar    = flag.Bool("progress", true, "show a transfer progress bar")
	)
	flag.Parse()

	if flag.NArg() != 4 {
		fmt.Fprintln(os.Stderr, "usage: rsend [--config FILE] [--verbose] [--progress=BOOL] <receiver_hostname> <receiver_port> <filename_to_xfer> <bytes_to_xfer>")
		os.Exit(2)
	}
	host := flag.Arg(0)
	port, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "rsend: invalid port %q: %v\n", flag.Arg(1), err)
		os.Exit(2)
	}
	filename := flag.Arg(2)
	bytesToXfer, err := strconv.ParseInt(flag.Arg(3), 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rsend: invalid byte count %q: %v\n", flag.Arg(3), err)
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rsend: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(*verbose, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rsend: building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, cfg, host, port, filename, bytesToXfer, *showBar); err != nil {
		log.Error("transfer failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, cfg config.Config, host string, port int, filename string, bytesToXfer int64, showBar bool) error {
	resolver := resolve.Resolver{Server: cfg.DNSServer}
	ip, err := resolver.Resolve(host)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", host, err)
	}
	peerAddr := &net.UDPAddr{IP: ip, Port: port}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return fmt.Errorf("opening socket: %w", err)
	}
	defer conn.Close()

	ep := rudp.NewEndpoint(conn)
	if err := ep.TuneBuffers(); err != nil {
		log.Debug("socket buffer tuning unavailable", zap.Error(err))
	}

	localPort := uint16(ep.LocalAddr().Port)
	remotePort := uint16(port)

	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()

	rconn, err := rudp.DialSetup(ep, peerAddr, localPort, remotePort, cfg.Timeout(), log)
	if err != nil {
		return fmt.Errorf("setting up connection: %w", err)
	}
	rconn.TeardownRetries = cfg.TeardownRetries
	rconn.MaxWindowSize = cfg.MaxWindowSize

	var bar *progressbar.ProgressBar
	if showBar {
		bar = progressbar.DefaultBytes(bytesToXfer, fmt.Sprintf("sending %s", filename))
	}

	sender := rudp.NewSender(rconn, log, bar)
	if err := sender.Send(f, bytesToXfer); err != nil {
		return fmt.Errorf("sending: %w", err)
	}

	log.Info("transfer complete", zap.String("file", filename), zap.Int64("bytes", bytesToXfer))
	return nil
}

func buildLogger(verbose bool, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "" // timestamps add noise to interactive transfer output
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return cfg.Build()
	}
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	return cfg.Build()
}
