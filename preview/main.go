// Command preview serves the compose API for trying captions against
// backgrounds without running the batch pipeline.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/Getabako/instagram-workflow-template/internal/app"
	"github.com/Getabako/instagram-workflow-template/internal/config"
	"github.com/Getabako/instagram-workflow-template/internal/render"
	"github.com/Getabako/instagram-workflow-template/internal/state"
	"github.com/Getabako/instagram-workflow-template/internal/web"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", defaults.StaticDir, "serve this directory at / (optional); also configurable via "+web.EnvStaticDir)
	configPath := flag.String("config", "config.yaml", "pipeline configuration file, used for fonts")
	flag.Parse()

	if !*devMode {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := app.NewFileLogger(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	fonts, warnings := cfg.FontRegistry()
	for _, w := range warnings {
		logger.Errorf("fonts", "%v", w)
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	compositor := render.NewCompositor(render.NewColorSelector(nil), fonts)
	server := web.NewHTTPServer(
		web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode, StaticDir: *staticDir},
		web.APIV1Deps{Compositor: compositor, Store: state.NewStore()},
	)
	server.Logger = logger

	if err := server.Start(processCtx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}

	fmt.Println("Carousel preview listening on", server.ListenAddr())
	fmt.Println("API: http://" + displayAddr(server.ListenAddr()) + "/api/v1/")

	<-processCtx.Done()
	_ = server.Stop()
}

func displayAddr(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if len(addr) > 5 && addr[:5] == "[::]:" {
		return "127.0.0.1" + addr[4:]
	}
	return addr
}
