package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adamwoolhether/apiclient"
	"github.com/adamwoolhether/apiclient/client"
	"github.com/adamwoolhether/apiclient/config"
)

var (
	ErrInvalidJSON   = errors.New("data is not valid JSON")
	ErrInvalidTarget = errors.New("download target must be PATH=DEST")
)

// responseError is the error kind for non-2xx responses.
type responseError struct {
	msg string
}

func (e *responseError) Error() string { return e.msg }

func newResponseError(message string) *responseError {
	return &responseError{msg: message}
}

type apiClient = client.Client[*responseError]

// app holds the persistent flags shared by every subcommand.
type app struct {
	configPath string
	envFile    string
	baseURL    string
	token      string
	timeout    time.Duration
	userAgent  string
	debug      bool

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "apicall",
		Short:         "Send requests to an HTTP API",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML config file")
	pf.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded into the environment when present")
	pf.StringVar(&a.baseURL, "base-url", "", "API base url (overrides APICLIENT_BASE_URL)")
	pf.StringVar(&a.token, "token", "", "Authorization header value, sent verbatim")
	pf.DurationVar(&a.timeout, "timeout", 0, "overall request timeout")
	pf.StringVar(&a.userAgent, "user-agent", "", "User-Agent header")
	pf.BoolVar(&a.debug, "debug", false, "log every exchange to stderr")

	cmd.AddCommand(
		a.getCmd(),
		a.bodyCmd(http.MethodPost),
		a.bodyCmd(http.MethodPut),
		a.bodyCmd(http.MethodPatch),
		a.deleteCmd(),
		a.uploadCmd(),
		a.downloadCmd(),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading env file: %w", err)
		}
	}

	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return nil
}

// client builds a client from the config file and environment, overlaid by flags.
func (a *app) client() (*apiClient, error) {
	cfg, err := config.Parse(a.configPath)
	if err != nil {
		return nil, err
	}

	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.token != "" {
		cfg.Token = a.token
	}
	if a.timeout > 0 {
		cfg.Timeout = a.timeout
	}
	if a.userAgent != "" {
		cfg.UserAgent = a.userAgent
	}

	return apiclient.NewFromConfig(cfg, newResponseError, client.WithLogger(a.logger))
}

func (a *app) getCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "GET a path and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()

			if asJSON {
				out, err := client.Get[json.RawMessage](cmd.Context(), c, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			rc, err := c.GetAsStream(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer rc.Close()

			if _, err := io.Copy(cmd.OutOrStdout(), rc); err != nil {
				return fmt.Errorf("writing response: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "decode the response as JSON and pretty print it")

	return cmd
}

// bodyVerbs are the helpers behind one of post, put or patch.
type bodyVerbs struct {
	text  func(c *apiClient, ctx context.Context, path, body, contentType string) (string, error)
	typed func(ctx context.Context, c *apiClient, path string, in any) (json.RawMessage, error)
	fire  func(c *apiClient, ctx context.Context, path string, in any) error
}

var verbs = map[string]bodyVerbs{
	http.MethodPost: {
		text:  (*apiClient).PostAsString,
		typed: client.Post[json.RawMessage, *responseError],
		fire:  (*apiClient).Post,
	},
	http.MethodPut: {
		text:  (*apiClient).PutAsString,
		typed: client.Put[json.RawMessage, *responseError],
		fire:  (*apiClient).Put,
	},
	http.MethodPatch: {
		text:  (*apiClient).PatchAsString,
		typed: client.Patch[json.RawMessage, *responseError],
		fire:  (*apiClient).Patch,
	},
}

func (a *app) bodyCmd(method string) *cobra.Command {
	var (
		data        string
		contentType string
		asJSON      bool
		discard     bool
	)

	v := verbs[method]
	name := strings.ToLower(method)

	cmd := &cobra.Command{
		Use:   name + " PATH",
		Short: fmt.Sprintf("%s a body to a path and print the response", method),
		Long: fmt.Sprintf(`%s a body to a path and print the response.

--data takes the body inline, from a file with @FILE, or from stdin with -.
With --json the body is sent as application/json and the response is
decoded and pretty printed; --discard ignores the response instead.`, method),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if discard && !asJSON {
				return errors.New("--discard requires --json")
			}

			payload, err := readData(cmd.InOrStdin(), data)
			if err != nil {
				return err
			}

			var in any
			if asJSON && payload != "" {
				if !json.Valid([]byte(payload)) {
					return ErrInvalidJSON
				}
				in = json.RawMessage(payload)
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()

			switch {
			case discard:
				return v.fire(c, ctx, args[0], in)
			case asJSON:
				out, err := v.typed(ctx, c, args[0], in)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			default:
				text, err := v.text(c, ctx, args[0], payload, contentType)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&data, "data", "d", "", "request body, @FILE or - for stdin")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type of a text body (default text/plain)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "send and receive JSON")
	cmd.Flags().BoolVar(&discard, "discard", false, "ignore the response body")
	cmd.MarkFlagsMutuallyExclusive("json", "content-type")

	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "delete PATH",
		Short: "DELETE a path and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()

			if asJSON {
				out, err := client.Delete[json.RawMessage](cmd.Context(), c, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			text, err := c.DeleteAsString(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "decode the response as JSON and pretty print it")

	return cmd
}

func (a *app) uploadCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "upload PATH FILE",
		Short: "Upload a file as multipart form data",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("opening upload: %w", err)
			}
			defer f.Close()

			if name == "" {
				name = filepath.Base(args[1])
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.PostFile(cmd.Context(), args[0], f, name); err != nil {
				return err
			}

			a.logger.Info("uploaded", "path", args[0], "file", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "file name sent to the server (default: base name of FILE)")

	return cmd
}

// target is one PATH=DEST download.
type target struct {
	path string
	dest string
}

func parseTargets(args []string) ([]target, error) {
	targets := make([]target, 0, len(args))
	for _, arg := range args {
		path, dest, ok := strings.Cut(arg, "=")
		if !ok || path == "" || dest == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTarget, arg)
		}
		targets = append(targets, target{path: path, dest: dest})
	}

	return targets, nil
}

func (a *app) downloadCmd() *cobra.Command {
	var (
		concurrency  int
		checksum     string
		skipExisting bool
		progress     bool
	)

	cmd := &cobra.Command{
		Use:   "download PATH=DEST...",
		Short: "Download paths to local files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := parseTargets(args)
			if err != nil {
				return err
			}
			if checksum != "" && len(targets) != 1 {
				return errors.New("--sha256 applies to a single target")
			}
			if concurrency < 1 {
				return fmt.Errorf("concurrency[%d] must be at least 1", concurrency)
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			defer c.Close()

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)

			for _, t := range targets {
				g.Go(func() error {
					var opts []client.DownloadOption
					if checksum != "" {
						opts = append(opts, client.WithChecksum(sha256.New(), checksum))
					}
					if skipExisting {
						opts = append(opts, client.WithSkipExisting())
					}
					if progress {
						opts = append(opts, client.WithProgress())
					}

					if err := c.Download(ctx, t.path, t.dest, opts...); err != nil {
						return err
					}

					a.logger.Info("downloaded", "path", t.path, "dest", t.dest)
					return nil
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 4, "maximum parallel downloads")
	cmd.Flags().StringVar(&checksum, "sha256", "", "expected hex SHA-256 of a single download")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip targets whose destination exists")
	cmd.Flags().BoolVar(&progress, "progress", false, "log transfer progress")

	return cmd
}

func readData(stdin io.Reader, data string) (string, error) {
	switch {
	case data == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return "", fmt.Errorf("reading data file: %w", err)
		}
		return string(b), nil
	default:
		return data, nil
	}
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("formatting response: %w", err)
	}
	buf.WriteByte('\n')

	_, err := buf.WriteTo(w)
	return err
}
