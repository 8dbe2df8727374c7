package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/df07/go-progressive-pathtracer/pkg/log"
	"github.com/df07/go-progressive-pathtracer/web/server"
)

var serveFlags struct {
	viewportFlags
	port int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a live preview of the render in the browser",
	Long: `Start rendering a scene and serve the converging image over HTTP. The page
streams progress, lets you switch scenes and change render settings, which
restart accumulation.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveFlags.register(serveCmd)
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 8080, "Port to serve on")
}

func runServe(cmd *cobra.Command, args []string) error {
	console := server.NewConsole(log.New("viewport"), 100)
	viewport, err := serveFlags.newViewport(console)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		viewport.Run(ctx, 10*time.Millisecond)
	}()

	srv := server.NewServer(viewport, server.Options{SceneID: serveFlags.scene, Console: console})
	errs := make(chan error, 1)
	go func() {
		errs <- srv.Start(fmt.Sprintf(":%d", serveFlags.port))
	}()
	logger.Noticef("Visit http://localhost:%d to watch the render", serveFlags.port)

	select {
	case <-ctx.Done():
	case err = <-errs:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	<-done
	return err
}
