package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/flo-mic/allmeta/internal/mirror"
)

// Serve exposes the local repository's catalog jars as a Maven mirror
// until interrupted.
func Serve(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.StringP("config", "c", "", "Catalog file (default: ./allmeta.yaml, else the built-in catalog)")
	listen := fs.StringP("listen", "l", ":8765", "Address to listen on")
	verbose := fs.BoolP("verbose", "v", false, "Log every request at debug level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, _, err := loadCatalog(*cfgPath)
	if err != nil {
		return err
	}
	local, err := localRepository(cfg)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", *listen)
	if err != nil {
		return err
	}

	ctx, cancel := interruptible()
	defer cancel()

	logger := newLogger(stderr, *verbose)
	token := os.Getenv("ALLMETA_SERVE_TOKEN")
	logger.Info("allmeta mirror starting", "listen", ln.Addr().String(), "local", local, "auth", token != "")

	m := mirror.New(local, cfg.InstrumentationRevision, cfg.Pairs(), logger)
	return serveMirror(ctx, ln, m.Handler(token), stdout)
}

// serveMirror runs handler on ln until ctx is done, then drains
// in-flight downloads.
func serveMirror(ctx context.Context, ln net.Listener, handler http.Handler, stdout io.Writer) error {
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	fmt.Fprintf(stdout, "[allmeta] Serving mirror on http://%s\n", ln.Addr())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
