package engine

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
	"github.com/ethereum/glados/pkg/repository"
	"github.com/ethereum/glados/pkg/validator"
)

var tracer = otel.Tracer("github.com/ethereum/glados/pkg/engine")

// ContentFetcher is the subset of a Portal client handle an Audit Task
// needs: fetching content, and identifying the node it is bound to so
// the dispatching audit row can be attributed correctly.
type ContentFetcher interface {
	GetContent(ctx context.Context, content entity.ContentKey) ([]byte, *entity.Trace, error)
	NodeID() [32]byte
	Info() entity.Client
}

// Task is the Audit Task (C7): it drives a single dispatched content key
// through fetch, validation, and persistence against one client handle.
type Task struct {
	repo          repository.Repository
	client        ContentFetcher
	work          entity.AuditTask
	check         *validator.Validator
	logger        zerolog.Logger
	correlationID string
}

// NewTask builds a Task for a single dispatched unit of work. Each task is
// assigned a correlation id, carried through its logs and its execution
// span, so a single dispatched unit of work can be traced end to end
// across the fetch, validate, and persist steps.
func NewTask(repo repository.Repository, client ContentFetcher, work entity.AuditTask, check *validator.Validator, logger zerolog.Logger) *Task {
	correlationID := uuid.NewString()
	return &Task{
		repo:          repo,
		client:        client,
		work:          work,
		check:         check,
		correlationID: correlationID,
		logger: log.WithContentKey(logger, hex.EncodeToString(work.Content.KeyBytes)).
			With().Str("correlation_id", correlationID).Logger(),
	}
}

// Run executes the state machine described in spec.md §4.7 to completion.
// It never returns an error: every fault is logged and the task abandons
// at the point of failure, per the step-by-step failure semantics.
func (t *Task) Run(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "engine.Task.Run", trace.WithAttributes(
		attribute.String("correlation_id", t.correlationID),
		attribute.String("strategy", t.work.Strategy.Key()),
	))
	defer span.End()

	strategyKey := t.work.Strategy.Key()

	clientRow, err := t.repo.GetOrCreateClient(ctx, t.client.Info().VersionString)
	if err != nil {
		t.logger.Warn().Err(err).Msg("resolve client row, abandoning audit")
		return
	}
	nodeRow, err := t.repo.GetOrCreateNode(ctx, t.client.NodeID())
	if err != nil {
		t.logger.Warn().Err(err).Msg("resolve node row, abandoning audit")
		return
	}

	audit, err := t.repo.CreatePendingAudit(ctx, t.work.Content.ID, clientRow.ID, nodeRow.ID, t.work.Strategy)
	if err != nil {
		t.logger.Warn().Err(err).Msg("create pending audit, abandoning")
		return
	}
	logger := log.WithAuditID(t.logger, audit.ID)

	result, trace := t.fetchAndValidate(ctx, logger)
	metrics.AuditResultsTotal.WithLabelValues(strategyKey, result.String()).Inc()

	traceJSON := t.serializeTrace(result, trace, logger)

	if _, err := t.repo.RecordAuditResult(ctx, audit.ID, result, traceJSON); err != nil {
		logger.Warn().Err(err).Msg("record audit result, audit remains pending")
		return
	}

	if err := t.repo.UpsertAuditLatest(ctx, t.work.Content.ID, audit.ID); err != nil {
		logger.Warn().Err(err).Msg("upsert audit latest pointer")
	}

	if trace != nil {
		t.recordTransferFailures(ctx, audit.ID, *trace, logger)
	}
}

// fetchAndValidate invokes the Portal client and, for bytes returned
// without a transport-level fault, runs the Validator over them.
func (t *Task) fetchAndValidate(ctx context.Context, logger zerolog.Logger) (entity.AuditResult, *entity.Trace) {
	raw, trace, err := t.client.GetContent(ctx, t.work.Content)
	if err == nil {
		result, verr := t.check.Validate(ctx, t.work.Content, raw)
		if verr != nil {
			logger.Warn().Err(verr).Msg("validate content")
			return entity.AuditErrored, trace
		}
		return result, trace
	}

	if glerr.Is(err, glerr.KindContentNotFound) {
		return entity.AuditFailure, trace
	}

	logger.Debug().Err(err).Msg("fetch content")
	return entity.AuditErrored, nil
}

// serializeTrace applies the trace-serialization policy: a trace is
// persisted only when non-empty and either the result is not Success or
// the trace recorded at least one per-hop failure.
func (t *Task) serializeTrace(result entity.AuditResult, trace *entity.Trace, logger zerolog.Logger) []byte {
	if trace == nil || trace.IsEmpty() {
		return nil
	}
	if result == entity.AuditSuccess && !trace.HasFailures() {
		return nil
	}
	traceJSON, err := json.Marshal(trace)
	if err != nil {
		logger.Warn().Err(err).Msg("marshal trace, persisting without it")
		return nil
	}
	return traceJSON
}

// recordTransferFailures resolves and persists the per-hop failures a
// trace recorded. A failure entry with no matching metadata ENR, or an
// unrecognized failure kind, is logged and skipped; the remaining
// entries are still persisted.
func (t *Task) recordTransferFailures(ctx context.Context, auditID int64, trace entity.Trace, logger zerolog.Logger) {
	if len(trace.Failures) == 0 {
		return
	}

	inputs := make([]repository.TransferFailureInput, 0, len(trace.Failures))
	for nodeIDHex, failure := range trace.Failures {
		kind, ok := entity.ParseFailureKind(failure.FailureKind)
		if !ok {
			logger.Warn().Str("failure.kind", failure.FailureKind).Msg("unrecognized transfer failure kind, skipping")
			continue
		}

		nodeID, err := decodeNodeIDHex(nodeIDHex)
		if err != nil {
			logger.Warn().Str("node.id", nodeIDHex).Err(err).Msg("decode sender node id, skipping")
			continue
		}

		meta, ok := trace.Metadata[nodeIDHex]
		if !ok || meta.Enr == "" {
			logger.Warn().Str("node.id", nodeIDHex).Msg("no enr metadata for failing sender, skipping")
			continue
		}

		inputs = append(inputs, repository.TransferFailureInput{
			SenderNodeID: nodeID,
			SenderEnrSeq: placeholderEnrSequence(meta.Enr),
			SenderEnrRaw: []byte(meta.Enr),
			Kind:         kind,
		})
		metrics.TransferFailuresTotal.WithLabelValues(kind.String()).Inc()
	}

	if len(inputs) == 0 {
		return
	}
	if err := t.repo.InsertTransferFailures(ctx, auditID, inputs); err != nil {
		logger.Warn().Err(err).Msg("insert transfer failures, audit result stands")
	}
}

func decodeNodeIDHex(s string) ([32]byte, error) {
	var nodeID [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nodeID, err
	}
	if len(raw) != 32 {
		return nodeID, fmt.Errorf("node id %q: expected 32 bytes, got %d", s, len(raw))
	}
	copy(nodeID[:], raw)
	return nodeID, nil
}

// placeholderEnrSequence derives a stable sequence number from the raw
// ENR string. A real sequence number lives inside the ENR's RLP
// encoding; decoding that is out of scope here (see DESIGN.md), so a
// deterministic hash stands in, which is sufficient to let
// GetOrCreateEnr distinguish one ENR payload for a node from another.
func placeholderEnrSequence(enr string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(enr))
	return h.Sum64()
}
