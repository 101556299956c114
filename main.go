package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/Getabako/instagram-workflow-template/internal/app"
	"github.com/Getabako/instagram-workflow-template/internal/config"
	"github.com/Getabako/instagram-workflow-template/internal/display"
	"github.com/Getabako/instagram-workflow-template/internal/render"
	"github.com/Getabako/instagram-workflow-template/internal/state"
	"github.com/Getabako/instagram-workflow-template/internal/upload"
	"github.com/Getabako/instagram-workflow-template/internal/watcher"
	"github.com/Getabako/instagram-workflow-template/internal/web"
)

const envStdioLog = "CAROUSEL_STDIO_LOG"

func main() {
	// Flags
	configPath := flag.String("config", "config.yaml", "pipeline configuration file (optional)")
	debug := flag.Bool("debug", false, "also write the log to ./carousel-debug.log")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	noUpload := flag.Bool("no-upload", false, "compose only; skip uploads and the bulk-post file")
	watch := flag.Bool("watch", false, "watch the images folder and compose backgrounds as they arrive")
	fbDevice := flag.String("fb", "", "show composed slides on this framebuffer device, e.g. "+display.DefaultDevice)
	serve := flag.Bool("serve", false, "run the preview server and keep it up after the batch")
	flag.Parse()

	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logOut io.Writer = os.Stderr
	if *debug {
		f, err := os.OpenFile("./carousel-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logOut = io.MultiWriter(os.Stderr, f)
		} else {
			fmt.Println("debug log open error:", err)
		}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := app.NewFileLogger(logOut)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("main", "%v", err)
		os.Exit(2)
	}

	fonts, warnings := cfg.FontRegistry()
	for _, w := range warnings {
		logger.Errorf("fonts", "%v", w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := state.NewStore()
	compositor := render.NewCompositor(render.NewColorSelector(nil), fonts)
	if *debug {
		compositor.Logger = logger
	}

	var uploader *upload.Client
	if !*noUpload {
		uploader = upload.NewClient(cfg.Upload.URL, cfg.Upload.Password, cfg.Upload.Timeout)
		if !uploader.Enabled() {
			logger.Infof("main", "no upload endpoint configured (%s); composing only", config.EnvUploadURL)
		}
	}

	pipeline := app.NewPipeline(cfg, compositor, uploader, store)
	pipeline.Logger = logger

	if *fbDevice != "" {
		fb, err := display.Open(*fbDevice)
		if err != nil {
			logger.Errorf("fb", "open %s: %v", *fbDevice, err)
		} else {
			fb.Logger = logger
			defer fb.Close()
			pipeline.Display = fb
		}
	}

	var server web.Server
	if *serve {
		srvCfg, err := web.DefaultServerConfigFromEnv(":8080")
		if err != nil {
			logger.Errorf("main", "server config: %v", err)
			os.Exit(2)
		}
		if srvCfg.StaticDir == "" {
			srvCfg.StaticDir = cfg.Paths.Composed
		}
		httpServer := web.NewHTTPServer(srvCfg, web.APIV1Deps{Compositor: compositor, Store: store})
		httpServer.Logger = logger
		server = httpServer
	}

	a := app.New(store, pipeline, server)
	a.Logger = logger
	a.Serve = *serve

	if *watch {
		w, err := watcher.New(cfg.Paths.Images)
		if err != nil {
			logger.Errorf("main", "%v", err)
			os.Exit(1)
		}
		w.Logger = logger
		a.Watcher = w
	}

	if pipeline.Display != nil {
		// F4 on the kiosk keyboard stops watch/serve mode.
		display.WatchKey(ctx, logger, display.KeyF4, func() { a.Exit(nil) })
	}

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("main", "%v", err)
		os.Exit(1)
	}
}
