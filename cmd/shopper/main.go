package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/shop"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	baseURL := flag.String("base-url", "", "serve all four services from one base URL (e.g. the fake shop)")
	ephemeral := flag.Bool("ephemeral", false, "keep the session in memory only")
	metricsAddr := flag.String("metrics-addr", "", "expose prometheus metrics on this address while running")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: shopper [flags] [command [args...]]\n\nWithout a command, commands are read from stdin.\n\n%s\nflags:\n", usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.NewDefault("shopper").WithError(err).Fatal("failed to load config")
	}
	if *baseURL != "" {
		cfg.UseBaseURL(*baseURL)
	}
	log := logger.New("shopper", cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []shop.Option
	opts = append(opts, shop.WithLogger(log))
	if *ephemeral {
		opts = append(opts, shop.WithBackend(session.NewMemoryBackend("")))
	}

	s, err := shop.New(ctx, cfg, opts...)
	if err != nil {
		log.WithError(err).Fatal("failed to start storefront")
	}
	defer s.Close()

	if *metricsAddr != "" {
		srv := &http.Server{
			Addr:              *metricsAddr,
			Handler:           promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server error")
			}
		}()
		defer srv.Close()
	}

	c := newCLI(s, os.Stdout)

	if flag.NArg() > 0 {
		if err := c.run(ctx, flag.Args()); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			s.Close()
			os.Exit(1)
		}
		return
	}

	fmt.Printf("view: %s (type help for commands)\n", s.Router.Current())
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("%s> ", s.Router.Current())
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return
		}
		if err := c.run(ctx, args); err != nil {
			fmt.Println("error:", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
