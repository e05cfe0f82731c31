// Command vidclient uploads videos to a video store and resolves playback
// locators by id.
//
//	vidclient upload -file clip.mp4 -title "Demo" -description "First take"
//	vidclient play -id 3f0c...
//	vidclient list
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/romariotrain/video-stream/internal/app"
	"github.com/romariotrain/video-stream/internal/config"
)

const usage = `usage: vidclient <command> [flags]

commands:
  upload  -file PATH -title TEXT -description TEXT
  play    -id VIDEO_ID
  list
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 2
	}
	logger := app.NewConsoleLogger("vidclient", cfg.LogLevel, stderr)

	var cmd func(ctx context.Context, env *env) error
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)

	switch args[0] {
	case "upload":
		path := fs.String("file", "", "video file to upload")
		title := fs.String("title", "", "video title")
		desc := fs.String("description", "", "video description")
		cmd = func(ctx context.Context, e *env) error { return runUpload(ctx, e, *path, *title, *desc) }
	case "play":
		id := fs.String("id", "", "video id")
		cmd = func(ctx context.Context, e *env) error { return runPlay(ctx, e, *id) }
	case "list":
		cmd = runList
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	e, err := newEnv(cfg, logger, stdout)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	return app.Run("vidclient", logger, func(ctx context.Context) error {
		return cmd(ctx, e)
	})
}
