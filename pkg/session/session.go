// Package session owns all state for one page session: the loaded tables,
// per-resource readiness, and the plotted word set the similarity engine
// ranks against. Nothing lives at package scope; a Session is created at
// page/process start and discarded with it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kittclouds/kotomap/pkg/coords"
	"github.com/kittclouds/kotomap/pkg/embed"
	"github.com/kittclouds/kotomap/pkg/lexicon"
	"github.com/kittclouds/kotomap/pkg/loader"
	"github.com/kittclouds/kotomap/pkg/tokenize"
	"github.com/kittclouds/kotomap/pkg/vocab"
)

// Errors surfaced to the run/select handlers.
var (
	ErrInsufficientInput = errors.New("fewer than 2 plottable words")
	ErrNoPlot            = errors.New("no plot to select from")
	ErrSelectionRange    = errors.New("selection index out of range")
)

// Default asset names, matching the static bundle layout.
const (
	DefaultVocabAsset     = "vocab.json"
	DefaultCoordsAsset    = "coords.csv"
	DefaultEmbeddingAsset = "embeddings.bin"
)

// Config wires a Session to its asset source.
type Config struct {
	// Source fetches raw asset bytes. Required.
	Source loader.Source

	// Dim is the embedding width. Defaults to embed.DefaultDim.
	Dim int

	// TopK bounds ranked neighbor lists. Defaults to embed.DefaultTopK.
	TopK int

	// BuildTimeout bounds tokenizer construction. Defaults to
	// tokenize.DefaultBuildTimeout.
	BuildTimeout time.Duration

	// Analyzer overrides the kagome tokenizer. Mainly for tests.
	Analyzer tokenize.Analyzer

	// Asset names within the source. Defaults above.
	VocabAsset     string
	CoordsAsset    string
	EmbeddingAsset string
}

func (c *Config) applyDefaults() {
	if c.Dim <= 0 {
		c.Dim = embed.DefaultDim
	}
	if c.TopK <= 0 {
		c.TopK = embed.DefaultTopK
	}
	if c.BuildTimeout <= 0 {
		c.BuildTimeout = tokenize.DefaultBuildTimeout
	}
	if c.VocabAsset == "" {
		c.VocabAsset = DefaultVocabAsset
	}
	if c.CoordsAsset == "" {
		c.CoordsAsset = DefaultCoordsAsset
	}
	if c.EmbeddingAsset == "" {
		c.EmbeddingAsset = DefaultEmbeddingAsset
	}
}

// PlotPoint is one scatter point: a plotted word and its 2-D position.
type PlotPoint struct {
	Word string  `json:"word"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Session is the per-page state container. One run or selection at a
// time; the mutex backs up the caller's own serialization.
type Session struct {
	cfg Config

	mu sync.Mutex

	analyzer tokenize.Analyzer
	fallback *lexicon.Scanner

	vocab  *vocab.Vocabulary
	coords *coords.Table
	engine *embed.Engine

	resTokenizer  *loader.Resource
	resVocab      *loader.Resource
	resCoords     *loader.Resource
	resEmbeddings *loader.Resource
	group         *loader.Group

	plotted []string
	points  []PlotPoint
}

// New creates a session with nothing loaded. Resources materialize on
// first use: vocabulary + coordinates + tokenizer on the first run, the
// embedding table on the first selection.
func New(cfg Config) *Session {
	cfg.applyDefaults()
	s := &Session{cfg: cfg, analyzer: cfg.Analyzer}

	s.resVocab = loader.NewResource("vocabulary", s.loadVocab)
	s.resCoords = loader.NewResource("coordinates", s.loadCoords)
	s.resTokenizer = loader.NewResource("tokenizer", s.loadTokenizer)
	s.resEmbeddings = loader.NewResource("embeddings", s.loadEmbeddings)
	s.group = loader.NewGroup(s.resTokenizer, s.resVocab, s.resCoords, s.resEmbeddings)

	return s
}

func (s *Session) loadVocab(ctx context.Context) error {
	data, err := s.cfg.Source.Fetch(ctx, s.cfg.VocabAsset)
	if err != nil {
		return err
	}
	v, err := vocab.FromJSON(data)
	if err != nil {
		return err
	}
	s.vocab = v
	return nil
}

func (s *Session) loadCoords(ctx context.Context) error {
	data, err := s.cfg.Source.Fetch(ctx, s.cfg.CoordsAsset)
	if err != nil {
		return err
	}
	t, err := coords.Parse(data)
	if err != nil {
		return err
	}
	s.coords = t
	return nil
}

func (s *Session) loadTokenizer(ctx context.Context) error {
	if s.analyzer != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.BuildTimeout)
	defer cancel()

	k, err := tokenize.NewKagome(ctx)
	if err != nil {
		return err
	}
	s.analyzer = k
	return nil
}

// loadEmbeddings materializes the vocabulary (if not yet loaded) together
// with the embedding table, then validates the pairing. On any failure
// the engine stays nil and the resource rewinds; nothing partial survives.
func (s *Session) loadEmbeddings(ctx context.Context) error {
	if err := s.resVocab.Ensure(ctx); err != nil {
		return err
	}

	data, err := s.cfg.Source.Fetch(ctx, s.cfg.EmbeddingAsset)
	if err != nil {
		return err
	}

	table, err := embed.FromBytes(data, s.vocab.Len(), s.cfg.Dim)
	if err != nil {
		return err
	}

	engine, err := embed.NewEngine(table, s.vocab)
	if err != nil {
		return err
	}
	s.engine = engine
	return nil
}

// SelectPlottable filters a word list down to words present in BOTH the
// coordinate table and the vocabulary index. Requiring both trades plot
// completeness for guaranteed interactivity: every drawn point can answer
// a similarity query. Fewer than 2 survivors is ErrInsufficientInput —
// the minimum for a meaningful scatter and for ranking to have a candidate.
func SelectPlottable(words []string, tbl *coords.Table, v *vocab.Vocabulary) ([]string, []coords.Point, error) {
	kept := make([]string, 0, len(words))
	points := make([]coords.Point, 0, len(words))

	for _, w := range words {
		pt, ok := tbl.Lookup(w)
		if !ok {
			continue
		}
		if !v.Contains(w) {
			continue
		}
		kept = append(kept, w)
		points = append(points, pt)
	}

	if len(kept) < 2 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInsufficientInput, len(kept))
	}
	return kept, points, nil
}

// Run tokenizes text and replaces the plotted word set. Returns the plot
// points in token order. On any error the previous plot survives intact.
func (s *Session) Run(ctx context.Context, text string, opts tokenize.Options) ([]PlotPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resVocab.Ensure(ctx); err != nil {
		return nil, err
	}
	if err := s.resCoords.Ensure(ctx); err != nil {
		return nil, err
	}

	analyzer, err := s.ensureAnalyzer(ctx)
	if err != nil {
		return nil, err
	}

	words := tokenize.Words(analyzer, text, opts)

	kept, pts, err := SelectPlottable(words, s.coords, s.vocab)
	if err != nil {
		return nil, err
	}

	points := make([]PlotPoint, len(kept))
	for i, w := range kept {
		points[i] = PlotPoint{Word: w, X: pts[i].X, Y: pts[i].Y}
	}

	s.plotted = kept
	s.points = points
	return points, nil
}

// ensureAnalyzer prefers the morphological tokenizer but falls back to
// scanning the text for vocabulary words when construction fails; a run
// can still plot without morphology, just without base-form folding.
func (s *Session) ensureAnalyzer(ctx context.Context) (tokenize.Analyzer, error) {
	if err := s.resTokenizer.Ensure(ctx); err == nil {
		return s.analyzer, nil
	} else if s.vocab == nil {
		return nil, err
	}

	if s.fallback == nil {
		scanner, err := lexicon.Compile(s.vocab.Words())
		if err != nil {
			return nil, err
		}
		s.fallback = scanner
	}
	return s.fallback, nil
}

// Select ranks the plotted set against the point at index, ensuring the
// embedding table first. index addresses the list the last Run returned.
func (s *Session) Select(ctx context.Context, index int) (string, []embed.Neighbor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.plotted) == 0 {
		return "", nil, ErrNoPlot
	}
	if index < 0 || index >= len(s.plotted) {
		return "", nil, fmt.Errorf("%w: %d not in [0,%d)", ErrSelectionRange, index, len(s.plotted))
	}

	word := s.plotted[index]
	neighbors, err := s.similarLocked(ctx, word)
	if err != nil {
		return "", nil, err
	}
	return word, neighbors, nil
}

// SimilarTo ranks the plotted set against an arbitrary plotted word.
func (s *Session) SimilarTo(ctx context.Context, word string) ([]embed.Neighbor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.similarLocked(ctx, word)
}

func (s *Session) similarLocked(ctx context.Context, word string) ([]embed.Neighbor, error) {
	if err := s.resEmbeddings.Ensure(ctx); err != nil {
		return nil, err
	}
	return s.engine.TopSimilar(word, s.plotted, s.cfg.TopK)
}

// Engine exposes the similarity engine once embeddings are loaded; nil
// before that. Used by the neighbor-index builder.
func (s *Session) Engine() *embed.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// EnsureAssets warms the run-path resources (vocabulary, coordinates,
// analyzer) ahead of the first run. The embedding table stays lazy.
func (s *Session) EnsureAssets(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.resVocab.Ensure(ctx); err != nil {
		return err
	}
	if err := s.resCoords.Ensure(ctx); err != nil {
		return err
	}
	_, err := s.ensureAnalyzer(ctx)
	return err
}

// EnsureEmbeddings loads vocabulary + embedding table ahead of need.
func (s *Session) EnsureEmbeddings(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resEmbeddings.Ensure(ctx)
}

// Vocabulary exposes the loaded vocabulary; nil before the first run.
func (s *Session) Vocabulary() *vocab.Vocabulary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vocab
}

// Plotted returns a copy of the current plotted word set.
func (s *Session) Plotted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.plotted))
	copy(out, s.plotted)
	return out
}

// Status reports per-resource readiness for the status line.
func (s *Session) Status() map[string]string {
	return s.group.Status()
}
