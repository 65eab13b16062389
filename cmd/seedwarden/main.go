package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"seedwarden/internal/config"
	"seedwarden/internal/enforcer"
	"seedwarden/internal/log"
	"seedwarden/internal/qbit"
	"seedwarden/internal/telemetry"
	"seedwarden/internal/web"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "seedwarden",
	Short: "Enforce per-rule share limits on qBittorrent torrents",
	Long: "seedwarden periodically inspects the torrents of a qBittorrent\n" +
		"instance and applies seed ratio and seeding time limits according\n" +
		"to an ordered rule list.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the configuration YAML file")
	_ = rootCmd.MarkFlagRequired("config")
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.LogLevel != "" {
		log.SetLevel(log.LogLevel(cfg.LogLevel))
	}

	ruleset, err := cfg.Compile()
	if err != nil {
		return err
	}

	telemetry.Init()
	telemetry.RulesLoaded.Set(float64(ruleset.Len()))

	log.Info("main").Int("rules", ruleset.Len()).Msg("Loaded configuration")
	for i, rule := range ruleset.Rules {
		log.Info("main").Int("rule", i+1).Msg(rule.String())
	}

	client, err := qbit.New(cfg.Server)
	if err != nil {
		return err
	}

	loginCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = client.Login(loginCtx)
	cancel()
	if err != nil {
		if !qbit.IsMissingCredentials(err) {
			return err
		}
		log.Info("main").Msg("No credentials configured, assuming the server needs no auth")
	}

	manager := enforcer.New(client, ruleset, cfg.Server.Poll)
	manager.Start()
	defer manager.Stop()

	var srv *web.Server
	if cfg.Listen != "" {
		srv = web.New(cfg.Listen, manager)
		go func() {
			if err := srv.Start(); err != nil {
				log.Fatal("main").Err(err).Msg("Status server failed")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("main").Str("signal", sig.String()).Msg("Shutting down")

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			log.Warn("main").Err(err).Msg("Error stopping status server")
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("main").Err(err).Msg("Fatal error")
		os.Exit(1)
	}
}
