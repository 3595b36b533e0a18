// Command catalogctl browses the Rifakat catalog the way the storefront
// does and runs the admin dashboard operations against the catalog API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kaifgrit/Rifakat/internal/admin"
	"github.com/kaifgrit/Rifakat/internal/storefront"
	pkgconfig "github.com/kaifgrit/Rifakat/pkg/config"
	apperrors "github.com/kaifgrit/Rifakat/pkg/errors"
	"github.com/kaifgrit/Rifakat/pkg/httpclient"
	"github.com/kaifgrit/Rifakat/pkg/logger"
)

const serviceName = "catalogctl"

type config struct {
	APIURL     string `env:"CATALOG_API_URL" envDefault:"http://localhost:5000"`
	TokenFile  string `env:"CATALOGCTL_TOKEN_FILE"`
	Password   string `env:"CATALOGCTL_PASSWORD"`
	OrderPhone string `env:"ORDER_PHONE" envDefault:"919050211616"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"warn"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", message(err))
		os.Exit(1)
	}
}

// message prefers the API's user-facing message over the wrapped chain.
func message(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if len(appErr.Details) > 0 {
			msg += ": " + strings.Join(appErr.Details, "; ")
		}
		return msg
	}
	return err.Error()
}

// parseFlags parses args into fs. -h prints usage and is not an error.
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cfg config
	if err := pkgconfig.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.TokenFile == "" {
		path, err := admin.DefaultTokenPath()
		if err != nil {
			return err
		}
		cfg.TokenFile = path
	}

	log := logger.NewText(serviceName, cfg.LogLevel, stderr)
	cli := newCLI(cfg, log, admin.NewFileTokenStore(cfg.TokenFile), stdin, stdout)
	return cli.dispatch(ctx, args)
}

type cli struct {
	cfg    config
	logger *slog.Logger
	shop   *storefront.Client
	admin  *admin.Client
	opener storefront.Opener
	stdin  io.Reader
	stdout io.Writer
}

func newCLI(cfg config, log *slog.Logger, tokens admin.TokenStore, stdin io.Reader, stdout io.Writer) *cli {
	doer := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("catalog-api"),
		log,
	)
	return &cli{
		cfg:    cfg,
		logger: log,
		shop:   storefront.NewClient(cfg.APIURL, doer),
		admin:  admin.NewClient(cfg.APIURL, doer, tokens, log),
		opener: printOpener{w: stdout},
		stdin:  stdin,
		stdout: stdout,
	}
}

const usage = `usage: catalogctl <command> [flags] [args]

storefront:
  browse <page> [-brand a,b] [-sort key]   category page view
  order <product-id> [-color n] [-size s] [-open]
                                           print the WhatsApp order link

admin:
  login [-u username]                      password from CATALOGCTL_PASSWORD or stdin
  logout
  products [-category c] [-search q]
  delete <product-id>
  batch-delete <product-id>...
`

func (c *cli) dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.stdout, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "browse":
		return c.browse(ctx, rest)
	case "order":
		return c.order(ctx, rest)
	case "login":
		return c.login(ctx, rest)
	case "logout":
		if err := c.admin.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(c.stdout, "Logged out.")
		return nil
	case "products":
		return c.products(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	case "batch-delete":
		return c.batchDelete(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}
