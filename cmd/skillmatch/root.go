package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/madcourses/skillmatch/internal/config"
	logpkg "github.com/madcourses/skillmatch/internal/logger"
	"github.com/madcourses/skillmatch/internal/version"
)

var (
	globalEnv    string
	globalCfg    config.Config
	globalLogger *zap.Logger
)

var (
	envFlag        string
	configPathFlag string
	logLevelFlag   string
)

var rootCmd = &cobra.Command{
	Use:           "skillmatch",
	Short:         "Match skill phrases to university courses",
	Long:          "Semantic matching of free-text skills against an embedded course catalog.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		globalEnv = envFlag
		if globalEnv == "" {
			globalEnv = config.GetEnv()
		}

		var err error
		if configPathFlag != "" {
			globalCfg, err = config.LoadFile(configPathFlag)
		} else {
			globalCfg, err = config.Load(globalEnv)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := globalCfg.Logging.Level
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		globalLogger, err = logpkg.NewLogger(globalEnv, level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if globalLogger != nil {
			_ = globalLogger.Sync()
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "skillmatch %s (commit %s, built %s)\n",
			version.Version, version.Commit, version.Date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "environment name, selects config/<env>.yaml (default $ENV or local)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", "", "explicit config file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "override logging.level")
	rootCmd.AddCommand(versionCmd)
}
