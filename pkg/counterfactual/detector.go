package counterfactual

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/biasprobe/pkg/concepts"
	"github.com/ppiankov/biasprobe/pkg/predict"
	"github.com/ppiankov/biasprobe/pkg/textrep"
)

// Options configures a Detector. Zero values select working defaults.
type Options struct {
	Lang      string             // concept language, default "en"
	Annotator textrep.Annotator  // default: the simple rule annotator
	Registry  *concepts.Registry // default: builtin concepts for Lang
	Logger    *slog.Logger       // default: slog.Default()
}

// Detector generates counterfactual samples from texts and scores them
// against a predictor.
type Detector struct {
	lang      string
	annotator textrep.Annotator
	registry  *concepts.Registry
	logger    *slog.Logger
}

// New creates a Detector. Without an explicit registry the builtin concepts
// for the language are loaded; an unknown language starts empty so callers
// can register their own concepts.
func New(opts Options) (*Detector, error) {
	lang := opts.Lang
	if lang == "" {
		lang = "en"
	}

	registry := opts.Registry
	if registry == nil {
		var err error
		registry, err = concepts.Builtin(lang)
		if err != nil {
			return nil, fmt.Errorf("load builtin concepts: %w", err)
		}
	}

	annotator := opts.Annotator
	if annotator == nil {
		annotator = textrep.NewSimpleAnnotator()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Detector{
		lang:      lang,
		annotator: annotator,
		registry:  registry,
		logger:    logger,
	}, nil
}

// RegisterConcept adds a caller-defined concept to the detector.
func (d *Detector) RegisterConcept(c *concepts.Concept) error {
	return d.registry.Register(c)
}

// Concepts returns the registered concepts in registration order.
func (d *Detector) Concepts() []*concepts.Concept {
	return d.registry.Concepts()
}

// ProcessOptions tunes one Process run.
type ProcessOptions struct {
	Labels            []string // optional, aligned with the texts
	Concepts          []string // restrict the run to these concept names
	MaxSamples        int      // global sample budget, spread over detected texts; 0 = unlimited
	MaxSamplesPerText int      // cap per keyword occurrence, baseline included; 0 = unlimited
	RespectFunction   bool     // restrict substitutes to function-compatible keywords
	PositiveClasses   []int    // class indices that make up the positive probability
	Workers           int      // parallel keyword scoring; <= 1 scores sequentially
}

// DefaultProcessOptions returns the standard settings: function matching on,
// no caps, binary positive class.
func DefaultProcessOptions() ProcessOptions {
	return ProcessOptions{RespectFunction: true}
}

// Process runs the full probe: annotate the texts, generate counterfactual
// samples per concept, score them through the predictor and aggregate the
// score tables. Failures scoped to a keyword or concept are logged and
// skipped; the returned result covers everything that worked.
func (d *Detector) Process(ctx context.Context, texts []string, predictor predict.Predictor, opts ProcessOptions) (*DetectionResult, error) {
	// 1. Validate arguments before any annotation or prediction work.
	if len(texts) == 0 {
		return nil, fmt.Errorf("texts must be given")
	}
	if predictor == nil {
		return nil, fmt.Errorf("a predictor must be given")
	}
	if len(opts.Labels) > 0 && len(opts.Labels) != len(texts) {
		return nil, fmt.Errorf("labels must align with texts: %d labels for %d texts", len(opts.Labels), len(texts))
	}
	if opts.MaxSamples < 0 {
		return nil, fmt.Errorf("max samples must be positive when given, got %d", opts.MaxSamples)
	}
	if opts.MaxSamplesPerText < 0 {
		return nil, fmt.Errorf("max samples per text must be positive when given, got %d", opts.MaxSamplesPerText)
	}
	consider, err := d.considered(opts.Concepts)
	if err != nil {
		return nil, err
	}

	// 2. Annotate every text once.
	reps, err := d.annotator.Annotate(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("annotate texts: %w", err)
	}
	if len(reps) != len(texts) {
		return nil, fmt.Errorf("annotator returned %d representations for %d texts", len(reps), len(texts))
	}

	// 3. Keep the texts containing at least one considered concept keyword.
	sources := detectSources(consider, reps, opts.Labels)
	if len(sources) == 0 {
		d.logger.Warn("no concept keywords found in any text", "texts", len(texts), "concepts", len(consider))
		return d.newResult(nil), nil
	}

	// 4. Convert the global budget into a per-occurrence cap. When both caps
	// are set the global budget wins.
	perText := opts.MaxSamplesPerText
	if opts.MaxSamples > 0 {
		if opts.MaxSamplesPerText > 0 {
			d.logger.Warn("both sample caps set, the global budget wins",
				"max_samples", opts.MaxSamples, "max_samples_per_text", opts.MaxSamplesPerText)
		}
		perText = opts.MaxSamples/len(sources) + 1
	}

	// 5. Generate, score and aggregate per concept.
	calc := &scoreCalculator{predictor: predictor, positive: opts.PositiveClasses}
	var results []*ConceptResult

	for _, c := range consider {
		d.logger.Info("processing concept", "concept", c.Name)

		samples, originals := extractSamples(c, sources, perText, opts.RespectFunction)
		if len(samples) == 0 {
			d.logger.Warn("no samples generated, skipping concept", "concept", c.Name)
			continue
		}
		d.logger.Info("generated samples", "concept", c.Name, "samples", len(samples), "original_texts", originals)

		scores, errs := calc.scoreConcept(ctx, c, samples, opts.Workers)

		table := NewScoreTable()
		for i, kw := range c.Keywords {
			if errs[i] != nil {
				d.logger.Warn("scoring keyword failed, omitting", "concept", c.Name, "keyword", kw.Text, "error", errs[i])
				continue
			}
			if scores[i] == nil {
				d.logger.Debug("keyword has no samples", "concept", c.Name, "keyword", kw.Text)
				continue
			}
			attachScores(samples, kw.Text, scores[i])
			table.Append(kw.Text, scores[i])
		}

		omitted := table.DropDuplicates()
		results = append(results, &ConceptResult{
			Concept:         c.Name,
			Scores:          table,
			OmittedKeywords: omitted,
			Samples:         samples,
		})
		d.logger.Info("concept done", "concept", c.Name, "keywords", table.Len(), "omitted", len(omitted))
	}

	return d.newResult(results), nil
}

// considered resolves the concept filter against the registry. Every
// requested name must exist so typos fail before any prediction work; the
// registration order is preserved.
func (d *Detector) considered(filter []string) ([]*concepts.Concept, error) {
	all := d.registry.Concepts()
	if len(filter) == 0 {
		return all, nil
	}

	keep := make(map[string]bool, len(filter))
	for _, name := range filter {
		if _, err := d.registry.Get(name); err != nil {
			return nil, fmt.Errorf("concept filter: %w", err)
		}
		keep[name] = true
	}

	var out []*concepts.Concept
	for _, c := range all {
		if keep[c.Name] {
			out = append(out, c)
		}
	}
	return out, nil
}

// detectSources pairs the representations containing at least one considered
// concept keyword with their labels.
func detectSources(consider []*concepts.Concept, reps []*textrep.TextRepresentation, labels []string) []sourceText {
	var out []sourceText
	for i, rep := range reps {
		found := false
		for _, c := range consider {
			if hasOccurrence(c, rep) {
				found = true
				break
			}
		}
		if !found {
			continue
		}

		src := sourceText{rep: rep}
		if len(labels) > 0 {
			src.label = labels[i]
		}
		out = append(out, src)
	}
	return out
}

func (d *Detector) newResult(results []*ConceptResult) *DetectionResult {
	return &DetectionResult{
		RunID:          uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		Lang:           d.lang,
		ConceptResults: results,
	}
}
