// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"q2map/config"
	"q2map/filesystem"
)

var (
	cfg config.Config

	flagBaseDir  string
	flagGame     string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "q2map",
	Short: `q2map inspects Quake 2 maps.`,
	Long: `q2map loads IBSP version 38 maps, validates them and runs point
contents and box trace queries against them. Maps are searched in the game
directories and their pak files first, then as plain paths.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(".env")
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("basedir") {
			c.BaseDir = flagBaseDir
		}
		if cmd.Flags().Changed("game") {
			c.Game = flagGame
		}
		if cmd.Flags().Changed("loglevel") {
			c.LogLevel = flagLogLevel
		}
		cfg = c
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: cfg.Level()})))
		filesystem.UseBaseDir(cfg.BaseDir)
		if cfg.Game != "" {
			filesystem.UseGameDir(cfg.Game)
		}
		slog.Debug("Search path", slog.Any("paths", filesystem.SearchPaths()))
		return nil
	},
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseDir, "basedir", ".", "directory holding "+filesystem.BaseGame)
	rootCmd.PersistentFlags().StringVar(&flagGame, "game", "", "mod directory searched before "+filesystem.BaseGame)
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "loglevel", "info", "debug, info, warn or error")

	rootCmd.AddCommand(lumpsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(entitiesCmd)
	rootCmd.AddCommand(contentsCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(benchCmd)
}
