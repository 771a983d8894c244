package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/rokbattles/mailcore/internal/batch"
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/config"
	"github.com/rokbattles/mailcore/internal/debug"
	"github.com/rokbattles/mailcore/internal/dispatch"
	"github.com/rokbattles/mailcore/internal/version"
	"github.com/rokbattles/mailcore/internal/watcher"
)

func main() {
	app := &cli.App{
		Name:    "mailcore",
		Usage:   "Operator CLI for the mail binary codec, extraction pipeline, and desktop watcher",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable component-tagged debug logging to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug") {
				debug.EnableDebug = "true"
				debug.SetDebugOutput(os.Stderr)
			}
			return nil
		},
		Commands: []*cli.Command{
			decodeCommand(),
			processCommand(),
			batchCommand(),
			watchCommand(),
			reprocessCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "mailcore: %v\n", err)
		os.Exit(1)
	}
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a raw mail file and print its JSON form",
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "lossless",
				Usage: "Decode with the lossless (round-trippable) form instead of the lossy extraction view",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write JSON to this file instead of stdout",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("usage: mailcore decode <input>")
			}
			data, err := os.ReadFile(c.Args().First())
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			var value interface{}
			if c.Bool("lossless") {
				value, err = codec.DecodeLossless(data)
			} else {
				value, err = codec.Decode(data)
			}
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			buf, err := json.MarshalIndent(value, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal json: %w", err)
			}
			return writeOutput(c.String("output"), buf)
		},
	}
}

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Run the dispatcher against a single mail file",
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory to write the raw/processed JSON files into",
				Value:   ".",
			},
			&cli.BoolFlag{
				Name:  "raw-only",
				Usage: "Write only the raw decoded JSON, skipping extraction",
			},
			&cli.BoolFlag{
				Name:  "json-input",
				Usage: "Treat input as a previously-decoded JSON tree instead of raw bytes",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("usage: mailcore process <input>")
			}
			inputPath := c.Args().First()
			data, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			format := dispatch.Binary
			if c.Bool("json-input") {
				format = dispatch.JSON
			}

			result, err := dispatch.Process(inputPath, data, c.String("output-dir"), c.Bool("raw-only"), format)
			if err != nil {
				return err
			}

			fmt.Printf("id=%s kind=%s known=%v\n", result.ID, result.Kind, result.Known)
			fmt.Printf("  raw:        %s\n", result.Paths.Raw)
			if result.Paths.Processed != "" {
				fmt.Printf("  processed:  %s\n", result.Paths.Processed)
			}
			if result.Paths.ProcessedV2 != "" {
				fmt.Printf("  processed2: %s\n", result.Paths.ProcessedV2)
			}
			return nil
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:      "batch",
		Usage:     "Run the dispatcher against every eligible file in a directory",
		ArgsUsage: "<input-dir>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory to write the raw/processed JSON files into",
				Value:   ".",
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"c"},
				Usage:   "Number of files to decode concurrently",
				Value:   config.Default().Batch.Concurrency,
			},
			&cli.BoolFlag{
				Name:  "raw-only",
				Usage: "Write only the raw decoded JSON for each file, skipping extraction",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return errors.New("usage: mailcore batch <input-dir>")
			}

			summary, err := batch.Run(c.Context, batch.Job{
				InputDir:    c.Args().First(),
				OutputDir:   c.String("output-dir"),
				RawOnly:     c.Bool("raw-only"),
				Concurrency: c.Int("concurrency"),
			})

			fmt.Printf("processed=%d skipped=%d failed=%d\n", summary.Processed, summary.Skipped, summary.Failed)
			return err
		},
	}
}

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run the desktop directory watcher and upload loop",
		Flags: watchStateFlags(),
		Action: func(c *cli.Context) error {
			w, err := newWatcherFromContext(c)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				sig := <-sigCh
				debug.LogWatch("received signal %v, shutting down\n", sig)
				cancel()
			}()

			return w.Run(ctx)
		},
		Subcommands: []*cli.Command{
			{
				Name:      "add-dir",
				Usage:     "Add one or more directories to the watched set",
				ArgsUsage: "<dir>...",
				Flags:     watchStateFlags(),
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return errors.New("usage: mailcore watch add-dir <dir>...")
					}
					w, err := newWatcherFromContext(c)
					if err != nil {
						return err
					}
					dirs, err := w.AddDir(c.Args().Slice())
					if err != nil {
						return err
					}
					return printDirs(dirs)
				},
			},
			{
				Name:      "remove-dir",
				Usage:     "Remove a directory from the watched set",
				ArgsUsage: "<dir>",
				Flags:     watchStateFlags(),
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return errors.New("usage: mailcore watch remove-dir <dir>")
					}
					w, err := newWatcherFromContext(c)
					if err != nil {
						return err
					}
					dirs, err := w.RemoveDir(c.Args().First())
					if err != nil {
						return err
					}
					return printDirs(dirs)
				},
			},
			{
				Name:  "list-dirs",
				Usage: "List the directories currently watched",
				Flags: watchStateFlags(),
				Action: func(c *cli.Context) error {
					w, err := newWatcherFromContext(c)
					if err != nil {
						return err
					}
					dirs, err := w.ListDirs()
					if err != nil {
						return err
					}
					return printDirs(dirs)
				},
			},
		},
	}
}

func reprocessCommand() *cli.Command {
	return &cli.Command{
		Name:  "reprocess",
		Usage: "Clear the processed-file store so every tracked file is re-uploaded",
		Flags: watchStateFlags(),
		Action: func(c *cli.Context) error {
			w, err := newWatcherFromContext(c)
			if err != nil {
				return err
			}
			return w.ReprocessAll()
		},
	}
}

func watchStateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "state-dir",
			Usage: "Directory holding the processed/upload-queue stores",
			Value: ".",
		},
		&cli.StringFlag{
			Name:  "dirs-file",
			Usage: "Path to the watched-directory list",
			Value: "dirs.json",
		},
		&cli.StringFlag{
			Name:  "ingress-url",
			Usage: "Upload ingress endpoint (overrides the default)",
		},
	}
}

func newWatcherFromContext(c *cli.Context) (*watcher.Watcher, error) {
	cfg := config.Default()
	if url := c.String("ingress-url"); url != "" {
		cfg.Upload.IngressURL = url
	}

	stateDir := c.String("state-dir")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	dirsPath := c.String("dirs-file")
	if !filepath.IsAbs(dirsPath) {
		dirsPath = filepath.Join(stateDir, dirsPath)
	}

	return watcher.New(cfg, stateDir, dirsPath)
}

func printDirs(dirs []string) error {
	if len(dirs) == 0 {
		fmt.Println("(no directories watched)")
		return nil
	}
	for _, d := range dirs {
		fmt.Println(d)
	}
	return nil
}

func writeOutput(path string, buf []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(append(buf, '\n'))
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return os.WriteFile(path, buf, 0o644)
}
