// Package convert implements the batch pipeline: enumerate CAS exports in the
// input directory, map every document onto one shared NIF graph and serialize
// the accumulated corpus once at the end.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/archive"
	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/cas"
	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/common"
	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/config"
	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/nif"
	"github.com/rocky2397/gerbil-uima-cas-to-nif-tel/state"
)

func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		src = env.Cfg.Conversion.Source
	}
	if len(src) == 0 {
		return errors.New("no source has been specified")
	}
	src, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		dst = env.Cfg.Conversion.Destination
	}
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	format, err := common.ParseOutputFmt(cmd.String("to"))
	if err != nil {
		log.Warn("Unknown output format requested, switching to turtle", zap.Error(err))
		format = common.OutputFmtTurtle
	}

	env.Overwrite = cmd.Bool("overwrite")

	uriTmpl, err := parseURITemplate(env.Cfg.Conversion.DocumentURITemplate)
	if err != nil {
		return fmt.Errorf("unable to parse document URI template: %w", err)
	}

	log.Info("Processing starting",
		zap.String("source", src), zap.String("destination", dst), zap.Stringer("format", format))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	graph := nif.NewGraph()
	builder := &nif.Builder{Language: env.Cfg.Conversion.Language}

	fi, err := os.Stat(src)
	switch {
	case err != nil:
		return fmt.Errorf("unable to access source: %w", err)
	case fi.Mode().IsRegular() && strings.EqualFold(filepath.Ext(src), ".zip"):
		err = processArchive(ctx, src, uriTmpl, builder, graph, log)
	case fi.IsDir():
		err = processDir(ctx, src, uriTmpl, builder, graph, log)
	default:
		err = fmt.Errorf("source is neither a directory nor a zip archive: %s", src)
	}
	if err != nil {
		return err
	}

	log.Info("Graph accumulated", zap.Int("triples", graph.Len()))
	if graph.Len() == 0 {
		log.Warn("No data was added to the graph, the output file will be empty")
	}

	out := filepath.Join(dst, outputName(&env.Cfg.Conversion, format))
	if err := writeCorpus(graph, out, format, env.Overwrite, log); err != nil {
		return err
	}
	env.Rpt.Store("result"+format.Ext(), out)
	return nil
}

// processDir runs every recognized export in the directory through the graph
// builder. A failure to load or convert one file never stops the batch; only
// an unreadable directory or cancellation does.
func processDir(ctx context.Context, dir string, uriTmpl *template.Template, b *nif.Builder, g *nif.Graph, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("unable to read input directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	// human order, so doc2 is processed before doc10
	sort.Sort(natural.StringSlice(names))
	log.Info("Files found", zap.String("dir", dir), zap.Int("count", len(names)))

	count := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !cas.Recognized(name) {
			log.Info("Skipping file, not recognized as CAS export", zap.String("file", name))
			continue
		}
		count++
		if err := processDocument(filepath.Join(dir, name), uriTmpl, b, g, log); err != nil {
			log.Error("Unable to process file", zap.String("file", name), zap.Error(err))
		}
	}
	if count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return nil
}

// processArchive is processDir for a zipped export bundle: recognized entries
// are converted in natural order, one bad entry never stops the batch.
func processArchive(ctx context.Context, src string, uriTmpl *template.Template, b *nif.Builder, g *nif.Graph, log *zap.Logger) error {
	log.Info("Reading zipped bundle", zap.String("archive", src))

	return archive.Walk(src, cas.Recognized, func(name string, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := processEntry(name, r, uriTmpl, b, g, log); err != nil {
			log.Error("Unable to process archive entry", zap.String("entry", name), zap.Error(err))
		}
		return nil
	})
}

func processEntry(name string, r io.Reader, uriTmpl *template.Template, b *nif.Builder, g *nif.Graph, log *zap.Logger) (rerr error) {
	log.Info("Processing", zap.String("entry", name))
	defer func() {
		if rec := recover(); rec != nil {
			rerr = fmt.Errorf("conversion panic: %v\n%s", rec, debug.Stack())
		}
	}()

	doc, err := cas.Decode(name, r)
	if err != nil {
		return err
	}

	documentURL, err := expandDocumentURI(uriTmpl, name)
	if err != nil {
		return err
	}

	b.BuildDocumentGraph(doc, documentURL, g, log)
	return nil
}

// processDocument converts a single export file. A panic while converting is
// contained inside processEntry and treated as that file's failure so the
// rest of the batch proceeds.
func processDocument(path string, uriTmpl *template.Template, b *nif.Builder, g *nif.Graph, log *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return processEntry(filepath.Base(path), f, uriTmpl, b, g, log)
}

func outputName(conf *config.ConversionConfig, format common.OutputFmt) string {
	if len(conf.OutputName) == 0 {
		return "corpus" + format.Ext()
	}
	return config.CleanFileName(conf.OutputName)
}

// writeCorpus serializes the accumulated graph. This is the only failure that
// matters for the run as a whole: without the output file the entire batch
// produced nothing usable.
func writeCorpus(g *nif.Graph, out string, format common.OutputFmt, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(out); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", out)
		}
		log.Warn("Overwriting existing file", zap.String("file", out))
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("unable to create output file %s: %w", out, err)
	}

	switch format {
	case common.OutputFmtNtriples:
		err = nif.WriteNTriples(f, g)
	default:
		err = nif.WriteTurtle(f, g)
	}
	err = multierr.Append(err, f.Close())
	if err != nil {
		return fmt.Errorf("unable to serialize corpus to %s: %w", out, err)
	}

	log.Info("Corpus successfully saved", zap.String("file", out), zap.Int("triples", g.Len()))
	return nil
}
