// Command rrecv listens on a UDP port and writes an incoming file
// transferred over the reliable UDP protocol implemented by pkg/rudp.
package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/therealutkarshpriyadarshi/rudp/pkg/config"
	"github.com/therealutkarshpriyadarshi/rudp/pkg/rudp"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file overriding protocol defaults")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: rrecv [--config FILE] [--verbose] <udp_port> <filename_to_write>")
		os.Exit(2)
	}
	port, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "rrecv: invalid port %q: %v\n", flag.Arg(0), err)
		os.Exit(2)
	}
	filename := flag.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rrecv: %v\n", err)
		os.Exit(1)
	}

	log, err := buildLogger(*verbose, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rrecv: building logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log, cfg, port, filename); err != nil {
		log.Error("transfer failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, cfg config.Config, port int, filename string) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: port})
	if err != nil {
		return fmt.Errorf("binding to port %d: %w", port, err)
	}
	defer conn.Close()

	ep := rudp.NewEndpoint(conn)
	if err := ep.TuneBuffers(); err != nil {
		log.Debug("socket buffer tuning unavailable", zap.Error(err))
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filename, err)
	}
	defer f.Close()

	rconn, err := rudp.AcceptSetup(ep, uint16(port), log, cfg.Timeout())
	if err != nil {
		return fmt.Errorf("accepting connection: %w", err)
	}
	rconn.TeardownRetries = cfg.TeardownRetries

	receiver := rudp.NewReceiver(rconn, f, log)
	if err := receiver.Run(); err != nil {
		return fmt.Errorf("receiving: %w", err)
	}

	log.Info("transfer complete", zap.String("file", filename))
	return nil
}

func buildLogger(verbose bool, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		return cfg.Build()
	}
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	return cfg.Build()
}
