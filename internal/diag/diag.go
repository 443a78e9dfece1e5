// Package diag implements the sequential diagnostic runner.
//
// The runner probes the environment, the embedding and LLM services, the
// optional backend engines, the pipeline registry and the on-disk knowledge
// bases, in that fixed order. Every probe is isolated: failures become report
// entries and never propagate, so a broken collaborator can't stop the run.
package diag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/deeptutor/ragdoctor/internal/config"
	"github.com/deeptutor/ragdoctor/internal/embedder"
	"github.com/deeptutor/ragdoctor/internal/engine"
	"github.com/deeptutor/ragdoctor/internal/kb"
	"github.com/deeptutor/ragdoctor/internal/llm"
	"github.com/deeptutor/ragdoctor/internal/metrics"
	"github.com/deeptutor/ragdoctor/internal/pipeline"
	"github.com/deeptutor/ragdoctor/internal/rag"
)

// Status classifies one check's outcome.
type Status string

// Check outcomes.
const (
	StatusOK   Status = "ok"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Check names, in run order.
const (
	CheckEnvironment    = "environment"
	CheckEmbedding      = "embedding_service"
	CheckLLM            = "llm_service"
	CheckPipelines      = "pipelines"
	CheckKnowledgeBases = "knowledge_bases"
	CheckSearchTest     = "search_test"
)

// optionalEngines are probed by name; an engine missing from the registry
// was not compiled into this build.
var optionalEngines = []string{"raganything", "lightrag"}

// engineCheckName returns the report key for an engine probe.
func engineCheckName(name string) string { return name + "_engine" }

// testQuery is the fixed question used by the live search test.
const testQuery = "What is the main topic?"

// CheckResult is one check's outcome.
type CheckResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Report collects everything one diagnostic run observed.
type Report struct {
	RunID          string            `json:"run_id"`
	StartedAt      time.Time         `json:"started_at"`
	Checks         []CheckResult     `json:"checks"`
	Pipelines      map[string]string `json:"pipelines"`
	KnowledgeBases []kb.Entry        `json:"knowledge_bases"`
	UsableKBs      []string          `json:"usable_kbs"`
	SearchTested   bool              `json:"search_tested"`
}

func (r *Report) add(name string, status Status, message string) {
	r.Checks = append(r.Checks, CheckResult{Name: name, Status: status, Message: message})
}

// StatusOf returns the recorded status for a check name, or "" if absent.
func (r *Report) StatusOf(name string) Status {
	for _, c := range r.Checks {
		if c.Name == name {
			return c.Status
		}
	}
	return ""
}

// Failed reports whether any check failed.
func (r *Report) Failed() bool {
	for _, c := range r.Checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

// Runner executes the checks and prints the report.
type Runner struct {
	cfg        *config.Config
	reg        *pipeline.Registry
	pr         *Printer
	logger     *slog.Logger
	skipSearch bool
}

// NewRunner creates a Runner printing to w.
func NewRunner(cfg *config.Config, reg *pipeline.Registry, w io.Writer, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, reg: reg, pr: NewPrinter(w), logger: logger}
}

// SkipSearch disables the live search test.
func (r *Runner) SkipSearch() { r.skipSearch = true }

// Run executes every check in order and returns the report. It never returns
// an error: each check's failure is folded into the report.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Pipelines: map[string]string{},
	}

	r.pr.Title("\nDeepTutor RAG pipeline diagnostics")
	r.pr.Plain("run %s", report.RunID)

	r.check(ctx, report, CheckEnvironment, r.checkEnvironment)
	r.check(ctx, report, CheckEmbedding, r.checkEmbedding)
	r.check(ctx, report, CheckLLM, r.checkLLM)
	for _, name := range optionalEngines {
		name := name
		r.check(ctx, report, engineCheckName(name), func(ctx context.Context, rep *Report) (Status, string) {
			return r.checkEngine(ctx, name)
		})
	}
	r.check(ctx, report, CheckPipelines, r.checkPipelines)
	r.check(ctx, report, CheckKnowledgeBases, r.checkKnowledgeBases)

	r.printSummary(report)
	r.printRecommendations(report)
	r.liveSearch(ctx, report)

	return report
}

// check runs one probe, converting panics into failed results so the runner
// always completes.
func (r *Runner) check(ctx context.Context, report *Report, name string, fn func(context.Context, *Report) (Status, string)) {
	metrics.Inc(metrics.ChecksTotal)
	defer func() {
		if p := recover(); p != nil {
			metrics.Inc(metrics.CheckFailures)
			msg := fmt.Sprintf("panic: %v", p)
			r.logger.Error("check panicked", "check", name, "panic", p)
			r.pr.Error("%s: %s", name, msg)
			report.add(name, StatusFail, msg)
		}
	}()

	status, msg := fn(ctx, report)
	if status == StatusFail {
		metrics.Inc(metrics.CheckFailures)
	}
	report.add(name, status, msg)
}

// envProbes is the fixed variable list the environment check reports on.
var envProbes = []struct {
	Name    string
	Default string
}{
	{"RAG_PROVIDER", config.DefaultProvider},
	{"OPENAI_API_KEY", ""},
	{"OPENAI_BASE_URL", ""},
	{"LLM_MODEL", ""},
	{"EMBEDDING_MODEL", ""},
}

func (r *Runner) checkEnvironment(_ context.Context, _ *Report) (Status, string) {
	r.pr.Header("Environment variables")

	set := 0
	for _, e := range envProbes {
		value := os.Getenv(e.Name)
		if value == "" {
			value = e.Default
		}
		if value == "" {
			r.pr.Warning("%s: not set", e.Name)
			continue
		}
		set++
		if strings.Contains(e.Name, "KEY") {
			value = config.MaskKey(value)
		}
		r.pr.Success("%s: %s", e.Name, value)
	}

	msg := fmt.Sprintf("%d of %d variables set", set, len(envProbes))
	if set < len(envProbes) {
		return StatusWarn, msg
	}
	return StatusOK, msg
}

func (r *Runner) checkEmbedding(_ context.Context, _ *Report) (Status, string) {
	r.pr.Header("Embedding service")

	emb, err := embedder.NewFromConfig(r.cfg, r.logger)
	if err != nil {
		r.pr.Error("embedding service error: %v", err)
		return StatusFail, err.Error()
	}

	r.pr.Success("embedding client available")
	r.pr.Info("model: %s", emb.Model())
	r.pr.Info("base URL: %s", truncateURL(r.embeddingBaseURL()))
	return StatusOK, "model " + emb.Model()
}

func (r *Runner) checkLLM(_ context.Context, _ *Report) (Status, string) {
	r.pr.Header("LLM service")

	gen, err := llm.NewFromConfig(r.cfg, r.logger)
	if err != nil {
		r.pr.Error("LLM service error: %v", err)
		return StatusFail, err.Error()
	}

	r.pr.Success("LLM configuration available")
	r.pr.Info("model: %s", gen.Model())
	r.pr.Info("base URL: %s", truncateURL(r.llmBaseURL()))
	return StatusOK, "model " + gen.Model()
}

func (r *Runner) checkEngine(ctx context.Context, name string) (Status, string) {
	r.pr.Header(name + " engine")

	if !engine.Registered(name) {
		r.pr.Error("engine %s is not compiled into this build", name)
		return StatusFail, "not compiled in"
	}

	eng, err := engine.Open(name, r.cfg, r.logger)
	if err != nil {
		r.pr.Error("engine %s construction failed: %v", name, err)
		return StatusFail, err.Error()
	}
	defer func() { _ = eng.Close() }()

	if err := eng.Ready(ctx); err != nil {
		r.pr.Error("engine %s not ready: %v", name, err)
		r.pr.Info("pipelines depending on %s will be unavailable", name)
		return StatusFail, err.Error()
	}

	r.pr.Success("engine %s is ready", name)
	r.pr.Info("%s", eng.Describe())
	if counter, ok := eng.(engine.Counter); ok {
		if n, err := counter.PassageCount(ctx); err == nil {
			r.pr.Info("%d passages indexed", n)
		}
	}
	return StatusOK, "ready"
}

func (r *Runner) checkPipelines(_ context.Context, report *Report) (Status, string) {
	r.pr.Header("Pipeline availability")

	descs := r.reg.List()
	r.pr.Info("%d pipelines registered", len(descs))
	if len(descs) == 0 {
		return StatusWarn, "no pipelines registered"
	}

	available := 0
	for _, d := range descs {
		r.pr.Item(d.ID, d.Name)
		r.pr.Plain("  %s", d.Description)

		pl, err := r.reg.Get(d.ID, r.cfg, r.logger)
		if err != nil {
			metrics.Inc(metrics.PipelineFailures)
			r.pr.Error("pipeline construction failed: %v", err)
			report.Pipelines[d.ID] = "error: " + err.Error()
			continue
		}

		r.pr.Success("pipeline instance created")
		if cl, ok := pl.(pipeline.ComponentLister); ok {
			for _, c := range cl.Components() {
				r.pr.Info("%s: %s", c.Role, c.Name)
			}
		}
		report.Pipelines[d.ID] = "available"
		available++
	}

	msg := fmt.Sprintf("%d of %d pipelines available", available, len(descs))
	switch {
	case available == 0:
		return StatusFail, msg
	case available < len(descs):
		return StatusWarn, msg
	default:
		return StatusOK, msg
	}
}

func (r *Runner) checkKnowledgeBases(_ context.Context, report *Report) (Status, string) {
	r.pr.Header("Knowledge bases")

	root := r.cfg.Data.KnowledgeBaseRoot()
	if _, err := os.Stat(root); err != nil {
		r.pr.Warning("knowledge base directory does not exist: %s", root)
		return StatusWarn, "directory missing"
	}

	entries, err := kb.Scan(root)
	if err != nil {
		r.pr.Error("scanning knowledge bases: %v", err)
		return StatusFail, err.Error()
	}

	for _, e := range entries {
		if e.Empty() {
			r.pr.Warning("%s: empty knowledge base", e.Name)
			continue
		}
		r.pr.Success("%s: %s", e.Name, strings.Join(e.Markers, ", "))
		if slices.Contains(e.Markers, kb.MarkerNumberedItems) {
			if items, err := kb.LoadNumberedItems(e.Path); err == nil {
				r.pr.Info("%s: %d numbered items", e.Name, len(items))
			}
		}
	}

	report.KnowledgeBases = entries
	report.UsableKBs = kb.Usable(entries)
	if len(report.UsableKBs) == 0 {
		r.pr.Warning("no initialized knowledge bases found")
		return StatusWarn, "no usable knowledge bases"
	}
	return StatusOK, fmt.Sprintf("%d usable knowledge bases", len(report.UsableKBs))
}

func (r *Runner) printSummary(report *Report) {
	r.pr.Header("Summary")

	for _, c := range report.Checks {
		switch c.Status {
		case StatusOK:
			r.pr.Success("%s: %s", c.Name, c.Message)
		case StatusWarn:
			r.pr.Warning("%s: %s", c.Name, c.Message)
		default:
			r.pr.Error("%s: %s", c.Name, c.Message)
		}
	}
}

// liveSearch issues one real query when there is something to query: at
// least one usable knowledge base and a ready raganything engine.
func (r *Runner) liveSearch(ctx context.Context, report *Report) {
	if r.skipSearch {
		return
	}
	if len(report.UsableKBs) == 0 || report.StatusOf(engineCheckName("raganything")) != StatusOK {
		return
	}

	r.pr.Header("Search test")

	kbName := report.UsableKBs[0]
	r.pr.Info("using knowledge base: %s", kbName)

	res, err := rag.Search(ctx, r.reg, r.cfg, r.logger, rag.Request{
		Query:    testQuery,
		KBName:   kbName,
		Mode:     "naive",
		Provider: r.cfg.Provider,
	})
	report.SearchTested = true
	switch {
	case err != nil:
		r.pr.Error("search failed: %v", err)
		report.add(CheckSearchTest, StatusFail, err.Error())
	case res.Answer == "":
		r.pr.Warning("search returned an empty answer")
		report.add(CheckSearchTest, StatusWarn, "empty answer")
	default:
		r.pr.Success("search succeeded, answer length %d chars", len(res.Answer))
		report.add(CheckSearchTest, StatusOK, fmt.Sprintf("%d chars", len(res.Answer)))
	}
}

// embeddingBaseURL returns the endpoint the configured embedding provider
// talks to.
func (r *Runner) embeddingBaseURL() string {
	if r.cfg.Embedding.Provider == "ollama" {
		return r.cfg.Ollama.BaseURL
	}
	return r.cfg.OpenAI.BaseURL
}

// llmBaseURL returns the endpoint the configured LLM provider talks to.
func (r *Runner) llmBaseURL() string {
	if r.cfg.LLM.Provider == "anthropic" {
		return "https://api.anthropic.com"
	}
	return r.cfg.OpenAI.BaseURL
}

// truncateURL shortens long endpoint URLs for single-line display.
func truncateURL(s string) string {
	const max = 50
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
