package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-resumeform/internal/config"
	"github.com/goliatone/go-resumeform/internal/service/httpclient"
	"github.com/goliatone/go-resumeform/pkg/builder"
	"github.com/goliatone/go-resumeform/pkg/catalog"
	"github.com/goliatone/go-resumeform/pkg/render"
	"github.com/goliatone/go-resumeform/pkg/renderers/tui"
	"github.com/goliatone/go-resumeform/pkg/renderers/vanilla"
	"github.com/goliatone/go-resumeform/pkg/service"
	"github.com/goliatone/go-resumeform/pkg/submission"
)

const usage = `Usage: resumeform [-config file] [-env file] <command> [flags]

Commands:
  build      fill a resume form in the terminal and submit it
  html       render a form as HTML
  list       list saved resumes
  delete     delete a saved resume
  download   download the PDF of a saved resume
  schema     print the request payload schema of a resume type
  lint       validate a directory of form definitions
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("resumeform: %v", err)
	}
}

// app carries what every command needs once configuration is resolved.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *catalog.Catalog
	stdout  io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("resumeform", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configFile := global.String("config", "", "YAML configuration file")
	envFile := global.String("env", "", "dotenv file (defaults to ./.env when present)")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	if cmd == "lint" {
		return runLint(rest, stdout)
	}

	cfg, err := config.Load(config.Sources{File: *configFile, EnvFile: *envFile})
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	a := &app{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		stdout: stdout,
	}
	if a.catalog, err = loadCatalog(cfg.CatalogDir); err != nil {
		return err
	}

	switch cmd {
	case "build":
		return a.build(ctx, rest)
	case "html":
		return a.html(ctx, rest)
	case "list":
		return a.list(ctx)
	case "delete":
		return a.remove(ctx, rest)
	case "download":
		return a.download(ctx, rest)
	case "schema":
		return a.schema(rest)
	default:
		global.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default()
	}
	c, err := catalog.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", dir, err)
	}
	return c, nil
}

func (a *app) service() (service.Service, error) {
	return httpclient.New(a.cfg.ServiceURL,
		httpclient.WithToken(a.cfg.Token),
		httpclient.WithTimeout(a.cfg.Timeout),
		httpclient.WithLogger(a.logger),
	)
}

func (a *app) session(svc service.Service) (*builder.Session, error) {
	return builder.New(svc,
		builder.WithCatalog(a.catalog),
		builder.WithLogger(a.logger),
		builder.WithSubmissionOptions(submission.WithContractCheck(a.cfg.ContractCheck)),
	)
}

func (a *app) build(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	resumeType := fs.String("type", catalog.TypeFresher, "resume type: "+strings.Join(a.catalog.Types(), ", "))
	editID := fs.String("edit", "", "id of a saved resume to edit")
	preview := fs.String("preview", "", "write an HTML preview of the result to this file")
	download := fs.Bool("download", false, "download the generated PDF into the output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := a.service()
	if err != nil {
		return err
	}
	sess, err := a.session(svc)
	if err != nil {
		return err
	}
	if *editID != "" {
		err = sess.LoadForEdit(ctx, *editID)
	} else {
		err = sess.SelectType(*resumeType)
	}
	if err != nil {
		return err
	}

	r, err := tui.New(tui.WithLogger(a.logger), tui.WithTheme(tui.Theme{ErrorPrefix: "! "}))
	if err != nil {
		return err
	}
	result, err := r.Run(ctx, sess)
	if err != nil {
		return err
	}

	if *preview != "" {
		html, err := vanilla.New(vanilla.WithInlineStylesheet(true))
		if err != nil {
			return err
		}
		out, err := html.RenderPreview(ctx, result.Document)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*preview, out, 0o644); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		fmt.Fprintf(a.stdout, "Preview written to %s\n", *preview)
	}
	if *download {
		path, err := sess.DownloadResult(ctx, a.cfg.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "PDF saved to %s\n", path)
	}
	return nil
}

func (a *app) html(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("html", flag.ContinueOnError)
	resumeType := fs.String("type", catalog.TypeFresher, "resume type")
	output := fs.String("output", "", "output file (stdout if empty)")
	action := fs.String("action", "", "form action URL")
	templates := fs.String("templates", "", "directory overriding the built-in templates")
	inlineCSS := fs.Bool("css", false, "inline the default stylesheet")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := a.session(nil)
	if err != nil {
		return err
	}
	if err := sess.SelectType(*resumeType); err != nil {
		return err
	}
	r, err := vanilla.New(vanilla.WithTemplatesDir(*templates), vanilla.WithInlineStylesheet(*inlineCSS))
	if err != nil {
		return err
	}
	form, _ := sess.Form()
	out, err := r.Render(ctx, render.Page{
		Form:    form,
		Widgets: sess.Widgets(),
		Errors:  sess.Errors(),
		Options: render.RenderOptions{
			Action: *action,
			Hidden: map[string]string{submission.ResumeTypeKey: form.Type},
		},
	})
	if err != nil {
		return err
	}

	if *output == "" {
		_, err := a.stdout.Write(out)
		return err
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(a.stdout, "Form written to %s\n", *output)
	return nil
}

func (a *app) list(ctx context.Context) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	docs, err := builder.NewDashboard(svc, a.logger).List(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(a.stdout, "No resumes yet")
		return nil
	}

	w := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tCREATED\tPDF")
	for _, doc := range docs {
		created := "-"
		if doc.CreatedAt != nil {
			created = doc.CreatedAt.Format("2006-01-02")
		}
		pdf := "no"
		if doc.HasArtifact() {
			pdf = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", doc.ID, doc.DisplayName(), orDash(doc.ResumeType), created, pdf)
	}
	return w.Flush()
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("delete: expected exactly one resume id")
	}
	svc, err := a.service()
	if err != nil {
		return err
	}
	if err := builder.NewDashboard(svc, a.logger).Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted %s\n", args[0])
	return nil
}

func (a *app) download(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ContinueOnError)
	dir := fs.String("dir", a.cfg.OutputDir, "directory to save the PDF in")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("download: expected exactly one resume id")
	}

	svc, err := a.service()
	if err != nil {
		return err
	}
	d := builder.NewDashboard(svc, a.logger)
	doc, err := d.Get(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	path, err := d.Download(ctx, doc, *dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "PDF saved to %s\n", path)
	return nil
}

func (a *app) schema(args []string) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	resumeType := fs.String("type", catalog.TypeFresher, "resume type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	form, ok := a.catalog.Form(*resumeType)
	if !ok {
		return fmt.Errorf("%w: %q", builder.ErrUnknownType, *resumeType)
	}
	data, err := json.MarshalIndent(catalog.PayloadSchema(form), "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	_, err = fmt.Fprintln(a.stdout, string(data))
	return err
}

// runLint loads every directory given (default: the working directory) as a
// catalog and reports the resume types found or the first schema error.
func runLint(args []string, stdout io.Writer) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var failed []string
	for _, dir := range paths {
		c, err := catalog.LoadFS(os.DirFS(dir))
		if err == nil && c.Empty() {
			err = errors.New("no resume types found")
		}
		if err != nil {
			fmt.Fprintf(stdout, "%s: %v\n", filepath.Clean(dir), err)
			failed = append(failed, dir)
			continue
		}
		types := c.Types()
		sort.Strings(types)
		fmt.Fprintf(stdout, "%s: ok (%s)\n", filepath.Clean(dir), strings.Join(types, ", "))
	}
	if len(failed) > 0 {
		return fmt.Errorf("lint: %d of %d catalogs invalid", len(failed), len(paths))
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
