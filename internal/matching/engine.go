package matching

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"matching-workers/internal/common/errors"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/models"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"
)

// Skip reasons reported to the Recorder.
const (
	SkipMissingID    = "missing_id"
	SkipDuplicateID  = "duplicate_id"
	SkipScoringPanic = "scoring_failed"
)

// Recorder receives ranking telemetry.
type Recorder interface {
	CandidateSkipped(reason string)
	RankingFinished(outcome string, scored, returned int, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) CandidateSkipped(string) {}
func (nopRecorder) RankingFinished(string, int, int, time.Duration) {}

// Engine scores and ranks candidates against one job. It holds only
// read-only tables and is safe for concurrent use.
type Engine struct {
	tables      Tables
	resolver    *LocationResolver
	skills      *SkillEvaluator
	cultural    *CulturalEvaluator
	logger      logger.Logger
	recorder    Recorder
	tracer      trace.Tracer
	clock       func() time.Time
	slowRanking time.Duration
}

type EngineOption func(*Engine)

func WithLogger(log logger.Logger) EngineOption {
	return func(e *Engine) { e.logger = log }
}

func WithRecorder(r Recorder) EngineOption {
	return func(e *Engine) { e.recorder = r }
}

func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) { e.tracer = t }
}

// WithClock replaces time.Now for MatchScore timestamps.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// WithSlowRankingThreshold sets the duration after which a ranking is
// logged at warn level.
func WithSlowRankingThreshold(d time.Duration) EngineOption {
	return func(e *Engine) { e.slowRanking = d }
}

func NewEngine(tables Tables, opts ...EngineOption) (*Engine, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	frozen := tables.Clone()

	e := &Engine{
		tables:      frozen,
		resolver:    NewLocationResolver(frozen.Regions),
		skills:      NewSkillEvaluator(frozen.Certifications),
		cultural:    NewCulturalEvaluator(frozen.Languages),
		logger:      logger.NewNoOpLogger(),
		recorder:    nopRecorder{},
		tracer:      noop.NewTracerProvider().Tracer("matching"),
		clock:       time.Now,
		slowRanking: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Tables returns a copy of the active reference tables.
func (e *Engine) Tables() Tables {
	return e.tables.Clone()
}

func (e *Engine) Resolver() *LocationResolver {
	return e.resolver
}

// ValidateJob checks the fields every ranking needs.
func ValidateJob(job models.JobRequest) error {
	var missing []string
	if strings.TrimSpace(job.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(job.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return errors.NewInvalidJobRequestError("missing required fields: " + strings.Join(missing, ", "))
	}
	level := models.ExperienceLevel(strings.ToLower(strings.TrimSpace(string(job.ExperienceLevel))))
	if level != "" && !level.IsValid() {
		return errors.NewInvalidJobRequestError(fmt.Sprintf("unknown experienceLevel %q", job.ExperienceLevel))
	}
	return nil
}

// Score computes the boosted score of a single pair.
func (e *Engine) Score(job models.JobRequest, worker models.WorkerProfile) (models.MatchScore, error) {
	if err := ValidateJob(job); err != nil {
		return models.MatchScore{}, err
	}
	job = sanitizeJob(job)
	score, _ := e.scorePair(job, e.resolver.Resolve(job.Location), sanitizeWorker(worker))
	score.Timestamp = e.clock().UTC()
	return score, nil
}

// scorePair returns the boosted score and the worker's resolved region.
// job and worker must already be sanitized.
func (e *Engine) scorePair(job models.JobRequest, jobLoc ResolvedLocation, worker models.WorkerProfile) (models.MatchScore, string) {
	workerLoc := e.resolver.Resolve(worker.Location)

	score := Aggregate(map[models.Category]models.CategoryScore{
		models.CategoryLocation:    e.resolver.LocationScore(jobLoc, workerLoc),
		models.CategorySkills:      e.skills.Score(job, worker),
		models.CategoryPricing:     PricingScore(job, worker),
		models.CategoryReliability: ReliabilityScore(worker),
		models.CategoryCultural:    e.cultural.Score(jobLoc, workerLoc, worker),
	})
	ApplyBoost(&score, Boost(job, worker))

	return score, workerLoc.Region
}

type scored struct {
	index int
	ok    bool
	match models.Match
	key   string
}

// FindBestMatches ranks candidates for job. An empty result is not an
// error. On cancellation the whole call fails with MATCHING_TIMEOUT.
func (e *Engine) FindBestMatches(ctx context.Context, job models.JobRequest, candidates []models.WorkerProfile, opts Options) ([]models.Match, error) {
	started := time.Now()

	ctx, span := e.tracer.Start(ctx, "matching.FindBestMatches", trace.WithAttributes(
		attribute.String("job.category", job.Category),
		attribute.Int("candidates", len(candidates)),
	))
	defer span.End()

	if err := opts.Validate(); err != nil {
		e.finish(span, "invalid", 0, 0, started, err)
		return nil, err
	}
	if err := ValidateJob(job); err != nil {
		e.finish(span, "invalid", 0, 0, started, err)
		return nil, err
	}

	log := e.logger.WithFields(map[string]interface{}{
		"jobId":       job.ID,
		"jobCategory": job.Category,
	})
	log.Info("ranking candidates", map[string]interface{}{
		"candidateCount": len(candidates),
		"minimumScore":   opts.MinimumScore,
		"maxResults":     opts.MaxResults,
	})

	job = sanitizeJob(job)
	jobLoc := e.resolver.Resolve(job.Location)
	timestamp := e.clock().UTC()

	eligible := e.eligible(candidates, log)
	results := make([]scored, len(eligible))

	limit := opts.Concurrency
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, idx := range eligible {
		if gctx.Err() != nil {
			break
		}
		i, idx, worker := i, idx, candidates[idx]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.scoreCandidate(job, jobLoc, worker, idx, timestamp, log)
			return nil
		})
	}
	waitErr := g.Wait()

	if err := ctx.Err(); err != nil || waitErr != nil {
		if err == nil {
			err = waitErr
		}
		timeoutErr := errors.NewMatchingTimeoutError(err)
		e.finish(span, "timeout", 0, 0, started, timeoutErr)
		log.Warn("ranking aborted", map[string]interface{}{"error": err.Error()})
		return nil, timeoutErr
	}

	ranked, scoredCount := qualify(results, opts.MinimumScore)

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].match.MatchScore.TotalScore > ranked[b].match.MatchScore.TotalScore
	})

	matches := make([]models.Match, len(ranked))
	keys := make([]string, len(ranked))
	for i, r := range ranked {
		matches[i], keys[i] = r.match, r.key
	}

	penalized := ApplyDiversity(matches, keys)

	final := make([]models.Match, 0, min(len(matches), opts.MaxResults))
	for _, m := range matches {
		if len(final) == opts.MaxResults {
			break
		}
		if m.MatchScore.TotalScore < opts.MinimumScore {
			continue
		}
		m.Reasoning, m.Recommendations = Explain(m.MatchScore)
		final = append(final, m)
	}

	elapsed := time.Since(started)
	fields := map[string]interface{}{
		"scored":     scoredCount,
		"qualified":  len(matches),
		"penalized":  penalized,
		"returned":   len(final),
		"durationMs": elapsed.Milliseconds(),
	}
	log.Info("ranking complete", fields)
	if e.slowRanking > 0 && elapsed > e.slowRanking {
		log.Warn("slow ranking", fields)
	}

	span.SetAttributes(attribute.Int("matches", len(final)))
	e.finish(span, "ok", scoredCount, len(final), started, nil)
	return final, nil
}

// eligible returns the indexes of candidates that can be scored, dropping
// records without an id and repeated ids.
func (e *Engine) eligible(candidates []models.WorkerProfile, log logger.Logger) []int {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]int, 0, len(candidates))
	for i, c := range candidates {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			log.Warn("skipping candidate", map[string]interface{}{"index": i, "reason": SkipMissingID})
			e.recorder.CandidateSkipped(SkipMissingID)
			continue
		}
		if _, dup := seen[id]; dup {
			log.Warn("skipping candidate", map[string]interface{}{"workerId": id, "reason": SkipDuplicateID})
			e.recorder.CandidateSkipped(SkipDuplicateID)
			continue
		}
		seen[id] = struct{}{}
		out = append(out, i)
	}
	return out
}

func (e *Engine) scoreCandidate(job models.JobRequest, jobLoc ResolvedLocation, worker models.WorkerProfile, index int, ts time.Time, log logger.Logger) (res scored) {
	res.index = index
	defer func() {
		if r := recover(); r != nil {
			stdErr := errors.NewCandidateScoringFailedError(worker.ID, r)
			log.Warn("skipping candidate", map[string]interface{}{
				"workerId": worker.ID,
				"reason":   SkipScoringPanic,
				"error":    stdErr.Details,
			})
			e.recorder.CandidateSkipped(SkipScoringPanic)
			res = scored{index: index}
		}
	}()

	score, region := e.scorePair(job, jobLoc, sanitizeWorker(worker))
	score.Timestamp = ts

	return scored{
		index: index,
		ok:    true,
		match: models.Match{Worker: worker, MatchScore: score},
		key:   DiversityKey(region, worker),
	}
}

// qualify keeps scored candidates whose unboosted score reaches minimum,
// preserving input order. It also returns how many were scored at all.
func qualify(results []scored, minimum float64) ([]scored, int) {
	kept := make([]scored, 0, len(results))
	count := 0
	for _, r := range results {
		if !r.ok {
			continue
		}
		count++
		if r.match.MatchScore.BaseScore >= minimum {
			kept = append(kept, r)
		}
	}
	return kept, count
}

func (e *Engine) finish(span trace.Span, outcome string, scored, returned int, started time.Time, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	e.recorder.RankingFinished(outcome, scored, returned, time.Since(started))
}
