package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JdotSiv/homebrew/internal/app"
	"github.com/JdotSiv/homebrew/internal/config"
	"github.com/JdotSiv/homebrew/internal/domain"
	"github.com/JdotSiv/homebrew/internal/manifest"
	"github.com/JdotSiv/homebrew/internal/strategies"
	"github.com/JdotSiv/homebrew/internal/tools"
	"github.com/JdotSiv/homebrew/internal/utils"
	"github.com/JdotSiv/homebrew/pkg/version"
)

var (
	cfgFile string
	verbose bool

	// Resource flags shared by fetch/stage/clear
	flagName      string
	flagVersion   string
	flagStrategy  string
	flagBranch    string
	flagTag       string
	flagRevision  string
	flagRevisions string
	flagMirrors   []string
	flagManifest  string
	flagDest      string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "brewfetch",
	Short: "Fetch and cache software resources for building",
	Long: `brewfetch resolves a declared software resource (a URL plus version or
revision metadata) into a locally cached artifact and stages it into a
build directory, ready for downstream build steps.

It selects a retrieval mechanism from the URL or an explicit strategy
token: plain HTTP(S) archive download with resume and mirror fallback,
or a git/svn/hg/bzr/cvs/fossil checkout kept up to date incrementally.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.brewfetch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows external tool output)")
	rootCmd.PersistentFlags().String("cache-root", "", "Cache root directory")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("cache.root", rootCmd.PersistentFlags().Lookup("cache-root"))

	for _, cmd := range []*cobra.Command{fetchCmd, stageCmd, clearCmd} {
		cmd.Flags().StringVar(&flagName, "name", "", "Resource name (defaults to the URL basename)")
		cmd.Flags().StringVar(&flagVersion, "resource-version", "", "Resource version")
		cmd.Flags().StringVar(&flagStrategy, "strategy", "", "Explicit strategy token (git, svn, hg, bzr, cvs, fossil, curl, ssl3, post, nounzip, ...)")
		cmd.Flags().StringVar(&flagBranch, "branch", "", "Branch to check out (VCS)")
		cmd.Flags().StringVar(&flagTag, "tag", "", "Tag to check out (VCS)")
		cmd.Flags().StringVar(&flagRevision, "revision", "", "Revision to check out (VCS)")
		cmd.Flags().StringVar(&flagRevisions, "revisions", "", "Trunk and per-external revisions, \"rev,ext=rev\" (svn)")
		cmd.Flags().StringSliceVar(&flagMirrors, "mirror", nil, "Mirror URL, repeatable")
	}
	fetchCmd.Flags().StringVar(&flagManifest, "manifest", "", "Fetch every resource in a manifest file")
	stageCmd.Flags().StringVar(&flagDest, "dest", ".", "Directory to stage into")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(stageCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// setup loads configuration and builds the orchestrator.
func setup() (*app.Orchestrator, *utils.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Verbose: cfg.Verbose || verbose,
	})

	deps := strategies.NewDependencies(cfg, logger)
	return app.NewOrchestrator(deps), logger, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// resourceFromFlags builds a resource descriptor from the URL argument
// and the shared resource flags.
func resourceFromFlags(url string) *domain.Resource {
	specs := make(map[string]string)
	if flagBranch != "" {
		specs[domain.SpecBranch] = flagBranch
	}
	if flagTag != "" {
		specs[domain.SpecTag] = flagTag
	}
	if flagRevision != "" {
		specs[domain.SpecRevision] = flagRevision
	}
	if flagRevisions != "" {
		specs[domain.SpecRevisions] = flagRevisions
	}

	name := flagName
	if name == "" {
		name = domain.Basename(url)
	}

	return &domain.Resource{
		Name:    name,
		URL:     url,
		Version: flagVersion,
		Specs:   specs,
		Mirrors: flagMirrors,
	}
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Download a resource into the cache",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orchestrator, logger, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		if flagManifest != "" {
			return fetchManifest(ctx, orchestrator, logger)
		}

		if len(args) == 0 {
			return cmd.Help()
		}
		_, err = orchestrator.Fetch(ctx, resourceFromFlags(args[0]), flagStrategy)
		return err
	},
}

func fetchManifest(ctx context.Context, orchestrator *app.Orchestrator, logger *utils.Logger) error {
	cfg, err := manifest.NewLoader().Load(flagManifest)
	if err != nil {
		return err
	}

	var failed int
	for i := range cfg.Resources {
		entry := &cfg.Resources[i]
		if _, err := orchestrator.Fetch(ctx, entry.Resource(), entry.Strategy); err != nil {
			if !cfg.Options.ContinueOnError {
				return err
			}
			failed++
			logger.Error().Err(err).Str("resource", entry.Name).Msg("fetch failed, continuing")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d resources failed", failed, len(cfg.Resources))
	}
	return nil
}

var stageCmd = &cobra.Command{
	Use:   "stage [url]",
	Short: "Fetch a resource and unpack it into a build directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orchestrator, _, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		dir, err := orchestrator.FetchAndStage(ctx, resourceFromFlags(args[0]), flagStrategy, flagDest)
		if err != nil {
			return err
		}
		fmt.Println(dir)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear [url]",
	Short: "Remove a resource's cache entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orchestrator, _, err := setup()
		if err != nil {
			return err
		}
		return orchestrator.Clear(resourceFromFlags(args[0]), flagStrategy)
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect [url]",
	Short: "Show which strategy a URL resolves to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := app.DetectStrategy(args[0], "")
		if err != nil {
			return err
		}
		fmt.Println(string(typ))
		return nil
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check which external tools are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := []string{
			"git", "svn", "hg", "bzr", "cvs", "fossil",
			"tar", "unzip", "xz", "lzip", "xar", "unrar", "7zr",
		}

		var missing []string
		for _, name := range names {
			path := tools.Locate(name)
			if path == "" {
				missing = append(missing, name)
				fmt.Printf("  %-8s MISSING\n", name)
				continue
			}
			fmt.Printf("  %-8s %s\n", name, path)
		}

		if len(missing) > 0 {
			fmt.Printf("\nMissing tools are only needed for their protocols: %s\n",
				strings.Join(missing, ", "))
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Full())
	},
}
