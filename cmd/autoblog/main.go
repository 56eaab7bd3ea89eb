// Command autoblog runs the blog generator and its control panel.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringen/autoblog"
	"github.com/eringen/autoblog/generate"
	"github.com/eringen/autoblog/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var configPath string

func main() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}
	logger.Init()

	rootCmd := &cobra.Command{
		Use:   "autoblog",
		Short: "Generate SEO blog pages from trending headlines",
		Long: `autoblog fetches trending headlines, asks a language model for keywords
and an article per headline, and writes each article as a static HTML page.

Generated pages are recorded in SQLite and can be previewed, bundled and
archived from the password-protected control panel started by "serve".`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(demoCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(bundleCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openApp() (*autoblog.App, error) {
	cfg, err := autoblog.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	app := autoblog.New(cfg)
	if err := app.Open(); err != nil {
		return nil, err
	}
	return app, nil
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the control panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := autoblog.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			app := autoblog.New(cfg)
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- app.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.Echo.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func generateCmd() *cobra.Command {
	var provider, model string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate posts from the current trending topics",
		Long: `Fetch trending topics and generate a post for each one not processed before.

Keys are read from the environment: NEWSAPI_KEY for the NewsAPI source and
LLM_API_KEY (or GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY for the
selected provider) for the model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			if provider != "" {
				app.Config.Provider = provider
			}
			if model != "" {
				app.Config.Model = model
			}
			rc := autoblog.RunConfigFromEnv(app.Config)
			if err := rc.Validate(app.Config.TrendSource); err != nil {
				return err
			}

			ctx := cmd.Context()
			src, err := autoblog.DefaultSourceFactory(app.Config, rc)
			if err != nil {
				return err
			}
			gen, err := autoblog.DefaultGeneratorFactory(ctx, rc)
			if err != nil {
				return err
			}
			if closer, ok := gen.(io.Closer); ok {
				defer closer.Close()
			}
			if g, ok := gen.(*generate.Generator); ok {
				fmt.Printf("Generating with %s (%s) from %s\n", rc.Provider, g.Model(), src.Name())
			}

			report, err := app.Pipeline.Run(ctx, src, gen, func(done, total int, res autoblog.TopicResult) {
				line := fmt.Sprintf("[%d/%d] %-7s %s", done, total, res.Status, res.Topic)
				if res.Filename != "" {
					line += " -> " + res.Filename
				}
				if res.Err != nil {
					line += ": " + res.Err.Error()
				}
				fmt.Println(line)
			})
			if err != nil {
				return err
			}
			if report.FetchErr != nil {
				fmt.Fprintf(os.Stderr, "Error fetching trends: %v\n", report.FetchErr)
			}
			fmt.Printf("created %d, skipped %d, failed %d\n",
				report.Count(autoblog.StatusCreated),
				report.Count(autoblog.StatusSkipped),
				report.Count(autoblog.StatusFailed))
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, openai, anthropic)")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name (default per provider)")
	return cmd
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Generate the demo posts without calling any API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := autoblog.GenerateDemo(cmd.Context(), app.Publisher)
			for _, res := range report.Results {
				if res.Status == autoblog.StatusCreated {
					fmt.Printf("Created demo blog: %s\n", res.Filename)
				}
			}
			return err
		},
	}
}

func modelsCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models available to the configured API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := autoblog.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Provider = provider
			}
			rc := autoblog.RunConfigFromEnv(cfg)
			if rc.LLMAPIKey == "" {
				return errors.New("no model API key set")
			}
			models, err := autoblog.DefaultModelLister(cmd.Context(), rc.Provider, rc.LLMAPIKey)
			if err != nil {
				return err
			}
			for _, m := range models {
				fmt.Println(m)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, openai, anthropic)")
	return cmd
}

func listCmd() *cobra.Command {
	var downloaded, available bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			filter := autoblog.AllPosts
			switch {
			case downloaded && available:
				return errors.New("--downloaded and --available are exclusive")
			case downloaded:
				filter = autoblog.OnlyDownloaded
			case available:
				filter = autoblog.OnlyAvailable
			}
			posts, err := app.Archive.List(filter)
			if err != nil {
				return err
			}
			for _, p := range posts {
				mark := " "
				if p.Downloaded {
					mark = "*"
				}
				fmt.Printf("%4d %s %s  %s (%s)\n", p.ID, mark, p.CreatedDate, p.Title, p.Filename)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&downloaded, "downloaded", false, "Only downloaded posts")
	cmd.Flags().BoolVar(&available, "available", false, "Only posts not yet downloaded")
	return cmd
}

func bundleCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "bundle [id...]",
		Short: "Zip posts by id and mark them downloaded",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid id %q", arg)
				}
				ids = append(ids, id)
			}

			app, err := openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			buf, included, err := app.Archive.Download(ids)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d files to %s\n", len(included), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "blogs.zip", "Output zip path")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the autoblog version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("autoblog %s\n", version)
		},
	}
}
