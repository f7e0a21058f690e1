// Package service implements the postapp command line.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"postapp/app/config"
	"postapp/app/models"
	"postapp/app/repositories"
	"postapp/app/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewRootCommand builds the postapp command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:               "postapp",
		Short:             "A small blog with tags, comments and e-mail sharing",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRun: c.teardown,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "postapp.yaml", "Config file")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Environment file loaded before the config")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level (overrides logging.level)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.dbCommand())
	root.AddCommand(c.postCommand())
	root.AddCommand(c.commentCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "postapp version %s\n", Version)
		},
	})
	return root
}

// Execute runs the command line until it finishes or the process is signalled.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func (c *cli) dbCommand() *cobra.Command {
	var yes bool

	db := &cobra.Command{
		Use:   "db",
		Short: "Manage the blog database",
	}
	db.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	db.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Initialize a new empty database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.initDb(cmd)
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove every post, comment and tag",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.clean(cmd, yes)
			},
		},
		&cobra.Command{
			Use:   "backup [file]",
			Short: "Create a backup of the database (badger only)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				file := ""
				if len(args) == 1 {
					file = args[0]
				}
				return c.backup(cmd, file)
			},
		},
		&cobra.Command{
			Use:   "restore <file>",
			Short: "Restore the database from a backup (badger only)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.restore(cmd, args[0], yes)
			},
		},
	)
	return db
}

// initDb creates the badger directory or the SQL schema.
func (c *cli) initDb(cmd *cobra.Command) error {
	if c.isBadger() && c.badgerExists() {
		fmt.Fprintln(cmd.OutOrStdout(), "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}

	store, err := c.openStore()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := store.Close(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Database initialized successfully")
	return nil
}

// clean removes the badger directory, or empties the SQL tables.
func (c *cli) clean(cmd *cobra.Command, yes bool) error {
	out := cmd.OutOrStdout()
	if c.isBadger() && !c.badgerExists() {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}

	if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}

	if c.isBadger() {
		if err := repositories.RemoveBadger(c.cfg.Store.Path); err != nil {
			return fmt.Errorf("failed to clean database: %w", err)
		}
	} else {
		store, err := c.openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clean database: %w", err)
		}
	}

	c.logger.Info("database cleaned", zap.String("driver", c.cfg.Store.Driver))
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// backup writes a badger backup to file, or to a timestamped file under
// the backups directory next to the database.
func (c *cli) backup(cmd *cobra.Command, file string) error {
	if !c.isBadger() {
		return fmt.Errorf("backup: %w (use the database's own tools for %s)", repositories.ErrUnsupported, c.cfg.Store.Driver)
	}
	if !c.badgerExists() {
		fmt.Fprintln(cmd.OutOrStdout(), "No database exists to backup")
		return nil
	}

	if file == "" {
		backupDir := filepath.Join(filepath.Dir(c.cfg.Store.Path), "backups")
		file = filepath.Join(backupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Database backed up successfully to %s\n", file)
	return nil
}

// restore replaces the badger database with the contents of a backup.
func (c *cli) restore(cmd *cobra.Command, file string, yes bool) (err error) {
	out := cmd.OutOrStdout()
	if !c.isBadger() {
		return fmt.Errorf("restore: %w (use the database's own tools for %s)", repositories.ErrUnsupported, c.cfg.Store.Driver)
	}

	fi, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("backup file does not exist: %s", file)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", file)
	}

	if c.badgerExists() {
		if !yes && !confirm(cmd, "Existing database found. Do you want to replace it?") {
			fmt.Fprintln(out, "Operation cancelled")
			return nil
		}
		if err := repositories.RemoveBadger(c.cfg.Store.Path); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	// badger panics on some malformed backups
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to restore database: %v", r)
		}
	}()
	if err := store.Restore(f); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}

	fmt.Fprintln(out, "Database restored successfully")
	return nil
}

type postFlags struct {
	title   string
	slug    string
	body    string
	tags    []string
	status  string
	publish string
	limit   int
}

func (c *cli) postCommand() *cobra.Command {
	var f postFlags

	post := &cobra.Command{
		Use:   "post",
		Short: "Author and inspect posts",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.createPost(cmd, f)
		},
	}
	create.Flags().StringVar(&f.title, "title", "", "Post title (required)")
	create.Flags().StringVar(&f.slug, "slug", "", "URL slug (required)")
	create.Flags().StringVar(&f.body, "body", "", "Post body (required)")
	create.Flags().StringSliceVar(&f.tags, "tags", nil, "Comma separated tag names")
	create.Flags().StringVar(&f.status, "status", "draft", "draft or published")
	create.Flags().StringVar(&f.publish, "publish", "", "Publish time, RFC 3339 or YYYY-MM-DD (default now)")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("slug")
	_ = create.MarkFlagRequired("body")

	list := &cobra.Command{
		Use:   "list",
		Short: "List posts of any status, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.listPosts(cmd, f.limit)
		},
	}
	list.Flags().IntVar(&f.limit, "limit", 0, "Maximum number of posts (0 lists all)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a post with all of its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.showPost(cmd, args[0])
		},
	}

	publish := &cobra.Command{
		Use:   "publish <id>",
		Short: "Make a post visible to readers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setPostStatus(cmd, args[0], models.StatusPublished)
		},
	}

	unpublish := &cobra.Command{
		Use:   "unpublish <id>",
		Short: "Turn a post back into a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setPostStatus(cmd, args[0], models.StatusDraft)
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post and its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.deletePost(cmd, args[0], yes)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	post.AddCommand(create, list, show, publish, unpublish, del)
	return post
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func (c *cli) openServices() (*repositories.Store, *services.PostService, *services.CommentService, error) {
	store, err := c.openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	return store,
		services.NewPostService(store.Posts, store.Comments, store.Tags),
		services.NewCommentService(store.Comments, store.Posts),
		nil
}

func (c *cli) showPost(cmd *cobra.Command, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	store, postService, _, err := c.openServices()
	if err != nil {
		return err
	}
	defer store.Close()

	post, err := postService.GetPost(id)
	if err != nil {
		return fmt.Errorf("post %d: %w", id, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", post.ID, post.Status, post.AbsoluteURL(), post.Title)
	if len(post.Tags) > 0 {
		fmt.Fprintf(out, "tags: %s\n", strings.Join(post.Tags, ", "))
	}
	fmt.Fprintf(out, "%d comment(s)\n", len(post.Comments))
	for _, comment := range post.Comments {
		printComment(out, comment)
	}
	return nil
}

func (c *cli) setPostStatus(cmd *cobra.Command, arg string, status models.Status) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	store, postService, _, err := c.openServices()
	if err != nil {
		return err
	}
	defer store.Close()

	post, err := postService.SetStatus(id, status)
	if err != nil {
		return fmt.Errorf("post %d: %w", id, err)
	}

	c.logger.Info("post status changed", zap.Int("id", post.ID), zap.String("status", string(post.Status)))
	if post.IsPublished() {
		fmt.Fprintf(cmd.OutOrStdout(), "Published post %d at %s\n", post.ID, post.AbsoluteURL())
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Post %d is now a draft\n", post.ID)
	}
	return nil
}

func (c *cli) deletePost(cmd *cobra.Command, arg string, yes bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	if !yes && !confirm(cmd, fmt.Sprintf("Delete post %d and all its comments?", id)) {
		fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled")
		return nil
	}

	store, postService, _, err := c.openServices()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := postService.DeletePost(id); err != nil {
		return fmt.Errorf("post %d: %w", id, err)
	}
	c.logger.Info("post deleted", zap.Int("id", id))
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted post %d\n", id)
	return nil
}

func printComment(w io.Writer, comment *models.Comment) {
	state := "visible"
	if !comment.Active {
		state = "hidden"
	}
	fmt.Fprintf(w, "%d\t%s\t%s\t%s <%s>\t%s\n",
		comment.ID, state, comment.Created.Format("2006-01-02 15:04"), comment.Name, comment.Email, comment.Body)
}

func (c *cli) commentCommand() *cobra.Command {
	comment := &cobra.Command{
		Use:   "comment",
		Short: "Moderate reader comments",
	}

	var activeOnly bool
	list := &cobra.Command{
		Use:   "list <post_id>",
		Short: "List the comments on a post, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.listComments(cmd, args[0], activeOnly)
		},
	}
	list.Flags().BoolVar(&activeOnly, "active", false, "Only list visible comments")

	hide := &cobra.Command{
		Use:   "hide <id>",
		Short: "Hide a comment from readers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setCommentActive(cmd, args[0], false)
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Make a hidden comment visible again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setCommentActive(cmd, args[0], true)
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a comment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.deleteComment(cmd, args[0])
		},
	}

	comment.AddCommand(list, hide, show, del)
	return comment
}

func (c *cli) listComments(cmd *cobra.Command, arg string, activeOnly bool) error {
	postID, err := parseID(arg)
	if err != nil {
		return err
	}
	store, _, commentService, err := c.openServices()
	if err != nil {
		return err
	}
	defer store.Close()

	comments, err := commentService.ListPostComments(postID)
	if err != nil {
		return err
	}
	if activeOnly {
		if comments, err = commentService.ActiveComments(postID); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if len(comments) == 0 {
		fmt.Fprintln(out, "No comments")
		return nil
	}
	for _, comment := range comments {
		printComment(out, comment)
	}
	return nil
}

func (c *cli) setCommentActive(cmd *cobra.Command, arg string, active bool) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	store, _, commentService, err := c.openServices()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := commentService.SetActive(id, active); err != nil {
		return fmt.Errorf("comment %d: %w", id, err)
	}

	state := "hidden"
	if active {
		state = "visible"
	}
	c.logger.Info("comment moderated", zap.Int("id", id), zap.Bool("active", active))
	fmt.Fprintf(cmd.OutOrStdout(), "Comment %d is now %s\n", id, state)
	return nil
}

func (c *cli) deleteComment(cmd *cobra.Command, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	store, _, commentService, err := c.openServices()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := commentService.DeleteComment(id); err != nil {
		return fmt.Errorf("comment %d: %w", id, err)
	}
	c.logger.Info("comment deleted", zap.Int("id", id))
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted comment %d\n", id)
	return nil
}

func (c *cli) configCommand() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(c.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", c.configPath)
			}
			if err := config.DefaultConfig().Save(c.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", c.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	cfg.AddCommand(initCmd)
	return cfg
}

func parseStatus(s string) (models.Status, error) {
	switch strings.ToLower(s) {
	case "draft", "df", "":
		return models.StatusDraft, nil
	case "published", "pb":
		return models.StatusPublished, nil
	}
	return "", fmt.Errorf("invalid status %q (valid: draft, published)", s)
}

func parsePublish(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid publish time %q", s)
	}
	return t, nil
}

func (c *cli) createPost(cmd *cobra.Command, f postFlags) error {
	status, err := parseStatus(f.status)
	if err != nil {
		return err
	}
	publish, err := parsePublish(f.publish)
	if err != nil {
		return err
	}

	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	post := &models.Post{
		Title:   f.title,
		Slug:    f.slug,
		Body:    f.body,
		Status:  status,
		Publish: publish,
		Tags:    f.tags,
	}
	postService := services.NewPostService(store.Posts, store.Comments, store.Tags)
	if err := postService.CreatePost(post); err != nil {
		return err
	}

	c.logger.Info("post created", zap.Int("id", post.ID), zap.String("slug", post.Slug))
	fmt.Fprintf(cmd.OutOrStdout(), "Created post %d at %s\n", post.ID, post.AbsoluteURL())
	return nil
}

func (c *cli) listPosts(cmd *cobra.Command, limit int) error {
	store, err := c.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if limit <= 0 {
		limit = -1
	}
	postService := services.NewPostService(store.Posts, store.Comments, store.Tags)
	posts, err := postService.ListAll(limit, 0)
	if err != nil {
		return fmt.Errorf("failed to list posts: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts")
		return nil
	}
	for _, post := range posts {
		fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n",
			post.ID, post.Status, post.Publish.Format("2006-01-02"), post.AbsoluteURL(), post.Title)
	}
	return nil
}
