package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphypad/internal/server"
	"github.com/matzehuels/graphypad/pkg/cache"
	"github.com/matzehuels/graphypad/pkg/dataset"
	"github.com/matzehuels/graphypad/pkg/upload"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr      string
	timeout   time.Duration
	maxUpload int
	noCache   bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and browser front end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("addr") {
				c.Config.Server.Addr = opts.addr
			}
			if flags.Changed("timeout") {
				c.Config.Server.RequestTimeout.Duration = opts.timeout
			}
			if flags.Changed("max-upload") {
				c.Config.Server.MaxUploadMB = opts.maxUpload
			}
			if err := c.Config.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd, opts.noCache)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout")
	cmd.Flags().IntVar(&opts.maxUpload, "max-upload", 0, "upload limit in MB")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, noCache bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	// Uploads share the render cache backend; without one they live in memory.
	store := runner.Cache
	if _, isNull := store.(*cache.NullCache); isNull {
		store = cache.NewMemoryCache(cache.DefaultCleanupInterval)
		defer store.Close()
	}
	uploads := upload.NewStore(store, upload.WithTTL(c.Config.Upload.TTL.Duration))

	srv := server.New(runner, uploads, logger,
		server.WithRequestTimeout(c.Config.Server.RequestTimeout.Duration),
		server.WithMaxUploadBytes(c.Config.MaxUploadBytes()),
	)

	printInfo("Serving on %s", StyleLink.Render(displayURL(c.Config.Server.Addr)))
	printKeyValue("Cache", c.cacheBackendName(noCache))
	printKeyValue("DPI", StyleNumber.Render(dataset.FormatNumber(c.Config.Render.DPI)))
	return srv.Run(ctx, c.Config.Server.Addr)
}

// displayURL turns a listen address into a clickable URL.
func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
