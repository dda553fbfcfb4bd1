package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"yatube/app/config"
	"yatube/app/services"
)

const helpText = `Usage: yatube <command> [arguments]

Commands:
  serve                                      Run the web server
  init                                       Initialize a new empty database
  clean                                      Delete every post, comment, follow, group and user
  backup                                     Create a backup of the Badger database
  restore <file>                             Restore the Badger database from a backup
  createuser <username> <password>           Create a user
  deleteuser <username>                      Delete a user with their posts, comments and follows
  creategroup <slug> <title> [description]   Create a group
  deletegroup <slug>                         Delete a group; its posts stay without a group
  deletepost <id>                            Delete a post with its comments
  help                                       Display this help message
  version                                    Show version information

Settings are read from the environment and an optional .env file
(PORT, DATA_DIR, DATABASE_URL, SECRET_KEY, ...).`

// PrintHelp prints the command overview.
func PrintHelp() {
	fmt.Println(helpText)
}

// HandleCommand runs one subcommand and returns the process exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		PrintHelp()
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		PrintHelp()
		return 0
	case "serve":
		return withConfig(serve)
	case "clean":
		return withConfig(clean)
	case "init":
		return withConfig(initDb)
	case "backup":
		return withConfig(backup)
	case "restore":
		if len(rest) < 1 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return withConfig(func(cfg config.Config) int { return restore(cfg, rest[0]) })
	case "createuser":
		if len(rest) != 2 {
			fmt.Println("Usage: yatube createuser <username> <password>")
			return 1
		}
		return withConfig(func(cfg config.Config) int { return createUser(cfg, rest[0], rest[1]) })
	case "deleteuser":
		if len(rest) != 1 {
			fmt.Println("Usage: yatube deleteuser <username>")
			return 1
		}
		return withConfig(func(cfg config.Config) int { return deleteUser(cfg, rest[0]) })
	case "creategroup":
		if len(rest) < 2 {
			fmt.Println("Usage: yatube creategroup <slug> <title> [description]")
			return 1
		}
		description := strings.Join(rest[2:], " ")
		if description == "" {
			description = rest[1]
		}
		return withConfig(func(cfg config.Config) int { return createGroup(cfg, rest[0], rest[1], description) })
	case "deletegroup":
		if len(rest) != 1 {
			fmt.Println("Usage: yatube deletegroup <slug>")
			return 1
		}
		return withConfig(func(cfg config.Config) int { return deleteGroup(cfg, rest[0]) })
	case "deletepost":
		if len(rest) != 1 {
			fmt.Println("Usage: yatube deletepost <id>")
			return 1
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil || id < 1 {
			fmt.Printf("Error: invalid post id %q\n", rest[0])
			return 1
		}
		return withConfig(func(cfg config.Config) int { return deletePost(cfg, id) })
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		PrintHelp()
		return 1
	}
}

func withConfig(run func(config.Config) int) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return 1
	}
	return run(cfg)
}

func serve(cfg config.Config) int {
	logger := newLogger(os.Stderr, cfg.Debug)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RunAppServer(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		return 1
	}
	return 0
}

func confirm(prompt string) bool {
	fmt.Print(prompt + " [y/N] ")
	var response string
	fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

// clean removes all data: the Badger directory, or every Postgres row.
func clean(cfg config.Config) int {
	if cfg.DatabaseURL == "" {
		if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
			fmt.Println("Database is already clean (does not exist)")
			return 0
		}
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}

	if cfg.DatabaseURL != "" {
		b, err := openBackend(context.Background(), cfg)
		if err != nil {
			fmt.Printf("Failed to open database: %v\n", err)
			return 1
		}
		defer b.Close()
		if err := b.pg.Truncate(context.Background()); err != nil {
			fmt.Printf("Failed to clean database: %v\n", err)
			return 1
		}
	} else if err := os.RemoveAll(cfg.DataDir); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb creates an empty database. For Postgres this applies the schema.
func initDb(cfg config.Config) int {
	if cfg.DatabaseURL == "" {
		if _, err := os.Stat(cfg.DataDir); err == nil {
			fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
			return 0
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			fmt.Printf("Failed to create database directory: %v\n", err)
			return 1
		}
	}

	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	if err := b.Close(); err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	fmt.Println("Database initialized successfully")
	return 0
}

func backupDir(cfg config.Config) string {
	return filepath.Join(filepath.Dir(filepath.Clean(cfg.DataDir)), "backups")
}

// backup writes a full Badger backup next to the data directory.
func backup(cfg config.Config) int {
	if cfg.DatabaseURL != "" {
		fmt.Println("Backups cover the Badger store only; use pg_dump for PostgreSQL")
		return 1
	}
	if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	dir := backupDir(cfg)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer b.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := b.badger.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}
	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the Badger database with the contents of backupFile.
func restore(cfg config.Config, backupFile string) int {
	if cfg.DatabaseURL != "" {
		fmt.Println("Restore covers the Badger store only; use pg_restore for PostgreSQL")
		return 1
	}
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(cfg.DataDir); err == nil {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	b, err := openBackend(context.Background(), cfg)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer b.Close()

	load := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return b.badger.Restore(f)
	}
	if err := load(); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// withServices opens the configured store for a one-off command.
func withServices(cfg config.Config, run func(context.Context, *services.Services) error) error {
	ctx := context.Background()
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	return run(ctx, services.New(b.store, services.Options{PageSize: cfg.PageSize}))
}

// printCommandError prints err and any per-field messages it carries.
func printCommandError(action string, err error) int {
	fmt.Printf("Failed to %s: %v\n", action, err)
	fields := services.FieldErrorsOf(err)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %s\n", name, fields[name])
	}
	return 1
}

func createUser(cfg config.Config, username, password string) int {
	err := withServices(cfg, func(ctx context.Context, svc *services.Services) error {
		user, err := svc.Users.Register(ctx, username, password)
		if err != nil {
			return err
		}
		fmt.Printf("User %s created (id %d)\n", user.Username, user.ID)
		return nil
	})
	if err != nil {
		return printCommandError("create user", err)
	}
	return 0
}

func deleteUser(cfg config.Config, username string) int {
	err := withServices(cfg, func(ctx context.Context, svc *services.Services) error {
		user, err := svc.Users.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if err := svc.Users.Delete(ctx, user.ID); err != nil {
			return err
		}
		fmt.Printf("User %s deleted\n", user.Username)
		return nil
	})
	if err != nil {
		return printCommandError("delete user", err)
	}
	return 0
}

func createGroup(cfg config.Config, slug, title, description string) int {
	err := withServices(cfg, func(ctx context.Context, svc *services.Services) error {
		group, err := svc.Groups.CreateGroup(ctx, title, slug, description)
		if err != nil {
			return err
		}
		fmt.Printf("Group %s created (id %d)\n", group.Slug, group.ID)
		return nil
	})
	if err != nil {
		return printCommandError("create group", err)
	}
	return 0
}

func deleteGroup(cfg config.Config, slug string) int {
	err := withServices(cfg, func(ctx context.Context, svc *services.Services) error {
		if err := svc.Groups.DeleteGroup(ctx, slug); err != nil {
			return err
		}
		fmt.Printf("Group %s deleted\n", slug)
		return nil
	})
	if err != nil {
		return printCommandError("delete group", err)
	}
	return 0
}

func deletePost(cfg config.Config, id int) int {
	err := withServices(cfg, func(ctx context.Context, svc *services.Services) error {
		if err := svc.Posts.DeletePost(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Post %d deleted\n", id)
		return nil
	})
	if err != nil {
		return printCommandError("delete post", err)
	}
	return 0
}
