package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sdorra/adguard-rewrite-sync/internal/adguard"
	"github.com/sdorra/adguard-rewrite-sync/internal/config"
	"github.com/sdorra/adguard-rewrite-sync/internal/metrics"
)

type Engine interface {
	Reconcile(ctx context.Context) Outcome
}

// ClientFactory builds an API client for one server. The engine constructs
// a fresh client per server per pass, so credentials are not held beyond it.
type ClientFactory func(server config.Server) adguard.Client

type engine struct {
	newClient ClientFactory
	servers   []config.Server
	rewrites  []adguard.Rewrite
	state     string
	dryRun    bool
	metrics   *metrics.Metrics
}

func NewEngine(newClient ClientFactory, cfg *config.Config, metrics *metrics.Metrics) *engine {
	return &engine{
		newClient: newClient,
		servers:   cfg.Servers,
		rewrites:  cfg.Rewrites,
		state:     cfg.State,
		dryRun:    cfg.DryRun,
		metrics:   metrics,
	}
}

// Reconcile converges every configured server toward the desired rewrite
// set. Servers are processed sequentially in configured order. A failed
// list skips that server only; a failed mutation skips that rule only.
// Rewrites on the server that are not in the desired set are never touched.
func (e *engine) Reconcile(ctx context.Context) Outcome {
	out := Outcome{}

	for _, server := range e.servers {
		client := e.newClient(server)

		// Snapshot is taken once, before any mutation for this server.
		current, err := client.List(ctx)
		if err != nil {
			slog.Error("Failed to list rewrites", "server", server, "error", err)
			out.Errors = append(out.Errors, fmt.Sprintf("error listing rewrites for server %s: %v", server.URL, err))
			continue
		}
		slog.Debug("Fetched current rewrites", "server", server, "count", len(current))

		switch e.state {
		case config.StatePresent:
			e.ensurePresent(ctx, client, server, current, &out)
		case config.StateAbsent:
			e.ensureAbsent(ctx, client, server, current, &out)
		}
	}

	return out
}

func (e *engine) ensurePresent(ctx context.Context, client adguard.Client, server config.Server, current []adguard.Rewrite, out *Outcome) {
	for _, rule := range e.rewrites {
		if contains(current, rule) {
			slog.Debug("Rewrite already present", "server", server, "rule", rule.String())
			continue
		}

		if e.dryRun {
			slog.Info("Dry run - would add rewrite", "server", server, "rule", rule.String())
			out.Changed = true
			continue
		}

		if err := client.Add(ctx, rule); err != nil {
			slog.Error("Failed to add rewrite", "server", server, "rule", rule.String(), "error", err)
			e.metrics.IncRewriteOperation("add", server.URL, false)
			out.Errors = append(out.Errors, fmt.Sprintf("error adding rewrite %s to server %s: %v", rule, server.URL, err))
			continue
		}

		slog.Info("Added rewrite", "server", server, "rule", rule.String())
		e.metrics.IncRewriteOperation("add", server.URL, true)
		out.Changed = true
	}
}

func (e *engine) ensureAbsent(ctx context.Context, client adguard.Client, server config.Server, current []adguard.Rewrite, out *Outcome) {
	for _, rule := range e.rewrites {
		if !contains(current, rule) {
			slog.Debug("Rewrite already absent", "server", server, "rule", rule.String())
			continue
		}

		if e.dryRun {
			slog.Info("Dry run - would delete rewrite", "server", server, "rule", rule.String())
			out.Changed = true
			continue
		}

		if err := client.Delete(ctx, rule); err != nil {
			slog.Error("Failed to delete rewrite", "server", server, "rule", rule.String(), "error", err)
			e.metrics.IncRewriteOperation("delete", server.URL, false)
			out.Errors = append(out.Errors, fmt.Sprintf("error deleting rewrite %s from server %s: %v", rule, server.URL, err))
			continue
		}

		slog.Info("Deleted rewrite", "server", server, "rule", rule.String())
		e.metrics.IncRewriteOperation("delete", server.URL, true)
		out.Changed = true
	}
}

// contains reports an exact structural match, both fields equal.
func contains(rules []adguard.Rewrite, rule adguard.Rewrite) bool {
	for _, r := range rules {
		if r.Equal(rule) {
			return true
		}
	}
	return false
}
