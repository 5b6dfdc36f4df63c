package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/cjeanneret/photobooth/internal/booth"
	"github.com/cjeanneret/photobooth/internal/config"
	"github.com/cjeanneret/photobooth/internal/debug"
	"github.com/cjeanneret/photobooth/internal/hw/gpio"
	"github.com/cjeanneret/photobooth/internal/mqtt"
	"github.com/cjeanneret/photobooth/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	debugLevel := flag.Int("debug_level", 0, "override debug level (1-4); 0 = use config")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := config.ValidateConfigPath(*cfgPath); err != nil {
		log.Fatalf("invalid config path: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	if err := validateCLIOverrides(*debugLevel); err != nil {
		log.Fatalf("invalid CLI override: %v", err)
	}
	applyOverrides(cfg, *debugLevel, webPort.port())

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	deps := devices{gpio: gpioDriver}

	if cfg.MQTT != nil {
		debug.Step(2, "Connecting to MQTT broker")
		client, err := mqtt.Connect(*cfg.MQTT)
		if err != nil {
			log.Fatalf("connect MQTT failed: %v", err)
		}
		defer client.Close()
		deps.bus = client
	}

	var broadcaster *web.StatusBroadcaster
	if cfg.UsesWeb() || cfg.Defaults.WebPort > 0 {
		broadcaster = web.NewStatusBroadcaster()
		deps.webTrigger, deps.webDisplay = webDevices(cfg, broadcaster)
		if cfg.Defaults.WebPort == 0 {
			debug.Warn("web devices are configured but no web port is set; they will not be reachable")
		}
	}

	debug.Step(3, "Starting booth")
	orch := booth.NewOrchestrator(newBringUp(cfg, deps))
	if err := orch.Start(); err != nil {
		log.Fatalf("start booth failed: %v", err)
	}
	defer orch.Stop()

	debug.Summary(fmt.Sprintf("Booth ready: %d camera(s), %d display(s), %d trigger(s)",
		len(orch.Cameras()), len(orch.Displays()), len(orch.Triggers())))

	if port := cfg.Defaults.WebPort; port > 0 {
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))
		srv := web.NewServer(fmt.Sprintf(":%d", port), broadcaster, orch, deps.webTrigger, deps.webDisplay)
		if err := srv.Run(ctx); err != nil {
			log.Printf("web server: %v", err)
		}
		return
	}

	<-ctx.Done()
	debug.Info("Shutting down")
}

// validateCLIOverrides checks the CLI overrides. Zero means "use config".
func validateCLIOverrides(debugLevel int) error {
	if debugLevel < 0 || debugLevel > debug.LevelTrace {
		return fmt.Errorf("debug_level must be between 0 and %d, got %d", debug.LevelTrace, debugLevel)
	}
	return nil
}

// applyOverrides mutates cfg with CLI overrides. Only non-zero values are applied.
func applyOverrides(cfg *config.Config, debugLevel, webPort int) {
	if debugLevel > 0 {
		cfg.Defaults.DebugLevel = debugLevel
	}
	if webPort > 0 {
		cfg.Defaults.WebPort = webPort
	}
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
