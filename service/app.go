package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"postapp/app/mail"
	"postapp/app/routes"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAppServer(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&c.addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// runAppServer serves the blog until ctx is cancelled.
func (c *cli) runAppServer(ctx context.Context) error {
	if c.addr != "" {
		c.cfg.Server.Addr = c.addr
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	sender, err := mail.New(c.cfg.MailOptions(), c.logger)
	if err != nil {
		return err
	}

	var templates fs.FS
	if c.cfg.Templates.Dir != "" {
		templates = os.DirFS(c.cfg.Templates.Dir)
	}

	router, err := routes.SetupRoutes(routes.Options{
		Store:        store,
		Sender:       sender,
		Logger:       c.logger,
		Templates:    templates,
		StaticDir:    c.cfg.Server.StaticDir,
		BaseURL:      c.cfg.Site.BaseURL,
		MailFrom:     c.cfg.Mail.From,
		PageSize:     c.cfg.Blog.PageSize,
		SimilarLimit: c.cfg.Blog.SimilarLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	c.logger.Info("starting blog service",
		zap.String("addr", c.cfg.Server.Addr),
		zap.String("store", store.Driver),
		zap.String("mail", c.cfg.Mail.Backend))

	if err := routes.StartServer(ctx, c.cfg.Server.Addr, router, c.cfg.GetShutdownTimeout()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	c.logger.Info("blog service stopped")
	return nil
}
