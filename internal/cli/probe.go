package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/biasprobe/internal/input"
	"github.com/ppiankov/biasprobe/internal/report"
	"github.com/ppiankov/biasprobe/pkg/counterfactual"
	"github.com/ppiankov/biasprobe/pkg/predict"
	"github.com/ppiankov/biasprobe/pkg/textrep"
)

var (
	probeLabels      string
	probeLang        string
	probeConcepts    []string
	probeFiles       []string
	probeMaxSamples  int
	probeMaxPerText  int
	probeNoFunctions bool
	probePositive    []int
	probeWorkers     int

	probePredictor     string
	probeModel         string
	probeEndpoint      string
	probePositiveLabel string
	probeRPS           float64

	probeAnnotator    string
	probeAnnotatorURL string

	probeCacheDir string
	probeNoCache  bool

	probeOut     string
	probeJSONOut string
	probeTop     int
	probeTimeout time.Duration
)

// probeCmd represents the probe command
var probeCmd = &cobra.Command{
	Use:   "probe <texts-file>",
	Short: "Probe a classifier with counterfactual keyword swaps",
	Long: `Probe runs the counterfactual bias detection loop:
- Load texts from a file (plain text or HTML)
- Find protected-concept keywords and generate keyword-swapped variants
- Score originals and variants through the selected predictor
- Aggregate the signed probability shifts per keyword

Example:
  biasprobe probe texts.txt --predictor openai --model gpt-4o-mini
  biasprobe probe reviews.txt --concepts gender --max-samples 200 --out result.bin
  biasprobe probe page.html --predictor remote --endpoint http://localhost:8000/score`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	// Sampling flags
	probeCmd.Flags().StringVar(&probeLabels, "labels", "", "labels file aligned with the texts file")
	probeCmd.Flags().StringVar(&probeLang, "lang", "en", "concept language")
	probeCmd.Flags().StringSliceVar(&probeConcepts, "concepts", nil, "restrict the probe to these concepts")
	probeCmd.Flags().StringSliceVar(&probeFiles, "file", nil, "extra concept YAML file (repeatable)")
	probeCmd.Flags().IntVar(&probeMaxSamples, "max-samples", 0, "global sample budget, spread over detected texts (0 = unlimited)")
	probeCmd.Flags().IntVar(&probeMaxPerText, "max-samples-per-text", 0, "sample cap per keyword occurrence, baseline included (0 = unlimited)")
	probeCmd.Flags().BoolVar(&probeNoFunctions, "no-function-match", false, "allow substitutes with mismatched grammatical functions")
	probeCmd.Flags().IntSliceVar(&probePositive, "positive-classes", nil, "class indices forming the positive probability (default: class 1 of a binary vector)")
	probeCmd.Flags().IntVar(&probeWorkers, "workers", 1, "concurrent keyword scoring workers")

	// Predictor flags
	probeCmd.Flags().StringVar(&probePredictor, "predictor", "openai", "predictor kind (openai, remote, constant)")
	probeCmd.Flags().StringVar(&probeModel, "model", "", "model name for the openai predictor")
	probeCmd.Flags().StringVar(&probeEndpoint, "endpoint", "", "score endpoint URL for the remote predictor")
	probeCmd.Flags().StringVar(&probePositiveLabel, "positive-label", "", "class description the openai predictor scores for (default: toxic)")
	probeCmd.Flags().Float64Var(&probeRPS, "rps", 0, "predictor request rate limit (0 = predictor default)")

	// Annotator flags
	probeCmd.Flags().StringVar(&probeAnnotator, "annotator", "simple", "annotator kind (simple, remote)")
	probeCmd.Flags().StringVar(&probeAnnotatorURL, "annotator-url", "", "annotation service URL for the remote annotator")

	// Cache flags
	probeCmd.Flags().StringVar(&probeCacheDir, "cache-dir", "", "persist prediction cache entries in this directory")
	probeCmd.Flags().BoolVar(&probeNoCache, "no-cache", false, "disable prediction caching")

	// Output flags
	probeCmd.Flags().StringVar(&probeOut, "out", "", "save the full result to this path")
	probeCmd.Flags().StringVar(&probeJSONOut, "json", "", "export score tables as JSON to this path")
	probeCmd.Flags().IntVar(&probeTop, "top", 10, "keyword rows in the shift table (0 = hide)")
	probeCmd.Flags().DurationVar(&probeTimeout, "timeout", 5*time.Minute, "overall probe timeout")
}

func runProbe(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	logger := newLogger()

	texts, err := input.ReadTexts(file)
	if err != nil {
		return fmt.Errorf("load texts: %w", err)
	}
	if len(texts) == 0 {
		return fmt.Errorf("no texts found in %s", file)
	}

	var labels []string
	if probeLabels != "" {
		labels, err = input.ReadLabels(probeLabels)
		if err != nil {
			return fmt.Errorf("load labels: %w", err)
		}
	}

	registry, err := loadRegistry(probeLang, probeFiles)
	if err != nil {
		return err
	}

	annotator, err := buildAnnotator()
	if err != nil {
		return err
	}

	predictor, err := buildPredictor()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Probing: %s\n", file)
		fmt.Fprintf(os.Stderr, "Texts: %d\n", len(texts))
		fmt.Fprintf(os.Stderr, "Concepts: %d\n", registry.Len())
		fmt.Fprintf(os.Stderr, "Predictor: %s\n", probePredictor)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", probeTimeout)
		fmt.Fprintln(os.Stderr)
	}

	detector, err := counterfactual.New(counterfactual.Options{
		Lang:      probeLang,
		Annotator: annotator,
		Registry:  registry,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("build detector: %w", err)
	}

	opts := counterfactual.DefaultProcessOptions()
	opts.Labels = labels
	opts.Concepts = probeConcepts
	opts.MaxSamples = probeMaxSamples
	opts.MaxSamplesPerText = probeMaxPerText
	opts.RespectFunction = !probeNoFunctions
	opts.PositiveClasses = probePositive
	opts.Workers = probeWorkers

	result, err := detector.Process(ctx, texts, predictor, opts)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}

	if verbose {
		total := 0
		for _, cr := range result.ConceptResults {
			total += len(cr.Samples)
		}
		fmt.Fprintf(os.Stderr, "✓ Scored %d samples across %d concepts\n\n", total, len(result.ConceptResults))
	}

	renderer := report.NewRenderer()
	renderer.RenderSummary(os.Stdout, result)
	if probeTop > 0 && len(result.ConceptResults) > 0 {
		fmt.Println()
		renderer.RenderKeywords(os.Stdout, result, probeTop)
	}

	if probeOut != "" {
		// A failed save does not fail the run.
		if err := result.Save(probeOut); err != nil {
			logger.Warn("could not save result", "path", probeOut, "error", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote result: %s\n", probeOut)
		}
	}
	if probeJSONOut != "" {
		if err := renderer.RenderJSON(result, probeJSONOut); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", probeJSONOut)
		}
	}

	return nil
}

// newLogger builds the run logger; --verbose lowers the level to debug.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func buildAnnotator() (textrep.Annotator, error) {
	switch strings.ToLower(probeAnnotator) {
	case "", "simple":
		return textrep.NewSimpleAnnotator(), nil

	case "remote":
		if probeAnnotatorURL == "" {
			return nil, fmt.Errorf("--annotator-url is required with the remote annotator")
		}
		cfg := textrep.DefaultRemoteConfig()
		cfg.URL = probeAnnotatorURL
		return textrep.NewRemoteAnnotator(cfg)

	default:
		return nil, fmt.Errorf("unknown annotator: %s (supported: simple, remote)", probeAnnotator)
	}
}

func buildPredictor() (predict.Predictor, error) {
	kind := strings.ToLower(probePredictor)
	cfg := predict.Config{Kind: kind}
	namespace := kind

	switch kind {
	case "openai":
		oc := predict.DefaultOpenAIConfig()
		oc.APIKey = os.Getenv("OPENAI_API_KEY")
		if oc.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
		if probeModel != "" {
			oc.Model = probeModel
		}
		if probePositiveLabel != "" {
			oc.PositiveLabel = probePositiveLabel
		}
		if probeRPS > 0 {
			oc.RequestsPerSecond = probeRPS
		}
		cfg.OpenAI = oc
		namespace = "openai:" + oc.Model + ":" + oc.PositiveLabel

	case "remote":
		if probeEndpoint == "" {
			return nil, fmt.Errorf("--endpoint is required with the remote predictor")
		}
		rc := predict.DefaultRemoteConfig()
		rc.URL = probeEndpoint
		if probeRPS > 0 {
			rc.RequestsPerSecond = probeRPS
		}
		cfg.Remote = rc
		namespace = "remote:" + rc.URL
	}

	predictor, err := predict.New(cfg)
	if err != nil {
		return nil, err
	}

	// The constant predictor never reaches a network; caching it buys nothing.
	if probeNoCache || kind == "constant" {
		return predictor, nil
	}

	cacheCfg := predict.DefaultCacheConfig()
	cacheCfg.Namespace = namespace
	cacheCfg.Dir = probeCacheDir
	return predict.NewCached(predictor, cacheCfg), nil
}
