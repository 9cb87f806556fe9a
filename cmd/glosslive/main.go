// Command glosslive translates Korean/Japanese transcripts through a
// glossary-protected pipeline and keeps a searchable session history.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaguanLabs/glosslive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	c := &cli{stdin: stdin, stdout: stdout, stderr: stderr}
	root := c.rootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// cli carries the I/O streams and the test seams shared by every command.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// provider and logger replace the configured ones when set.
	provider glosslive.TranslationProvider
	logger   *zap.SugaredLogger

	flags globalFlags
}

type globalFlags struct {
	envFile    string
	translator string
	glossary   string
	historyDir string
	redisURL   string
	logLevel   string
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   glosslive.Name,
		Short: glosslive.Description,
		Long: `glosslive translates live transcripts between Korean and Japanese.

Glossary terms are swapped for inline placeholders before the text goes to
the translation service and restored afterwards, so company-specific
vocabulary always comes back exactly as written in the glossary.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	pf.StringVar(&c.flags.translator, "translator", "", "translation backend: deepl, openai or mock (default: TRANSLATOR)")
	pf.StringVar(&c.flags.glossary, "glossary", "", "glossary JSON file (default: GLOSSARY_PATH)")
	pf.StringVar(&c.flags.historyDir, "history-dir", "", "history directory (default: HISTORY_DIR)")
	pf.StringVar(&c.flags.redisURL, "redis-url", "", "store cache and history in Redis (default: REDIS_URL)")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: LOG_LEVEL)")

	root.AddCommand(
		c.serveCommand(),
		c.listenCommand(),
		c.translateCommand(),
		c.historyCommand(),
		c.versionCommand(),
	)
	return root
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := glosslive.BuildVersion()
			fmt.Fprintf(c.stdout, "%s %s\n", info.Name, info.Version)
			if info.Commit != "" {
				fmt.Fprintf(c.stdout, "  commit:  %s\n", info.Commit)
			}
			if info.BuildDate != "" {
				fmt.Fprintf(c.stdout, "  built:   %s\n", info.BuildDate)
			}
			fmt.Fprintf(c.stdout, "  go:      %s\n", info.GoVersion)
		},
	}
}
