// Package ledger serves product ledgers: it resolves the product, loads its
// stock events from the store and folds them with the FIFO reconstructor.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopledger/backend/internal/domain/catalog"
	"github.com/shopledger/backend/internal/domain/ledger"
	"github.com/shopledger/backend/internal/domain/shared"
	"github.com/shopledger/backend/internal/domain/shared/strategy"
	"github.com/shopledger/backend/internal/infrastructure/logger"
	"github.com/shopledger/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/shopledger/backend/internal/application/ledger"

// Ledger source names used in logs and span attributes
const (
	sourceReceipts = "stock_receipts"
	sourceSales    = "sales"
	sourceReturns  = "sales_returns"
)

// ReturnPolicyProvider resolves return policies by name.
// *strategy.StrategyRegistry satisfies it.
type ReturnPolicyProvider interface {
	GetReturnPolicy(name string) (ledger.ReturnPolicy, error)
	ListReturnPolicies() []string
	GetDefault(strategyType strategy.StrategyType) string
}

// Exporter renders a ledger into a downloadable document
type Exporter interface {
	Export(l ledger.Ledger) ([]byte, error)
	ContentType() string
	FileExtension() string
}

// Sources bundles the read ports a ledger is built from. Suppliers is
// optional; when set, a supplier filter must name a known supplier.
type Sources struct {
	Products  catalog.ProductRepository
	Suppliers catalog.SupplierRepository
	Receipts  ledger.ReceiptReader
	Sales     ledger.SaleReader
	Returns   ledger.ReturnReader
}

// LedgerService computes product ledgers on demand
type LedgerService struct {
	sources      Sources
	policies     ReturnPolicyProvider
	exporter     Exporter
	tracer       trace.Tracer
	metrics      *telemetry.LedgerMetrics
	logger       *zap.Logger
	fetchTimeout time.Duration
}

// Option configures a LedgerService
type Option func(*LedgerService)

// WithExporter sets the document exporter used by ExportProductLedger
func WithExporter(e Exporter) Option {
	return func(s *LedgerService) {
		s.exporter = e
	}
}

// WithTracer overrides the tracer taken from the global provider
func WithTracer(t trace.Tracer) Option {
	return func(s *LedgerService) {
		s.tracer = t
	}
}

// WithMetrics sets the ledger metrics recorder
func WithMetrics(m *telemetry.LedgerMetrics) Option {
	return func(s *LedgerService) {
		s.metrics = m
	}
}

// WithLogger sets the fallback logger for calls whose context carries none
func WithLogger(l *zap.Logger) Option {
	return func(s *LedgerService) {
		s.logger = l
	}
}

// WithFetchTimeout bounds the time spent loading sources. Zero means no bound
// beyond the caller's context.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *LedgerService) {
		s.fetchTimeout = d
	}
}

// NewLedgerService creates a LedgerService
func NewLedgerService(sources Sources, policies ReturnPolicyProvider, opts ...Option) *LedgerService {
	s := &LedgerService{
		sources:  sources,
		policies: policies,
		tracer:   otel.Tracer(tracerName),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetProductLedger reconstructs the ledger of the product named by q.
// No ledger is returned unless every source loaded.
func (s *LedgerService) GetProductLedger(ctx context.Context, q ProductLedgerQuery) (result *ProductLedgerResult, err error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "ledger.GetProductLedger")
	defer span.End()

	// Caller-supplied names stay out of metric labels until resolved
	policyName := "unresolved"
	defer func() {
		s.metrics.RecordComputation(ctx, policyName, outcomeOf(err), time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	name := strings.TrimSpace(q.ProductName)
	if name == "" {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Product name is required")
	}

	policy, err := s.resolvePolicy(q.ReturnPolicy)
	if err != nil {
		return nil, err
	}
	policyName = policy.Name()
	span.SetAttributes(telemetry.AttrReturnPolicy.String(policyName))

	product, err := s.sources.Products.FindByNormalizedName(ctx, catalog.NormalizeName(name))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf(`Product "%s" not found`, name))
		}
		s.log(ctx).Error("Failed to resolve product", zap.String("product", name), zap.Error(err))
		return nil, upstreamError(err)
	}
	span.SetAttributes(telemetry.AttrProductID.String(product.ID.String()))

	if err := s.checkSupplier(ctx, q.SupplierID); err != nil {
		return nil, err
	}

	filter := ledger.ReceiptFilter{ProductID: product.ID, SupplierID: q.SupplierID}
	receipts, sales, returns, err := s.fetch(ctx, filter)
	if err != nil {
		var fe *fetchError
		source := ""
		if errors.As(err, &fe) {
			source = fe.source
		}
		s.log(ctx).Error("Failed to load ledger sources",
			zap.String("product_id", product.ID.String()),
			zap.String("source", source),
			zap.Error(err),
		)
		return nil, upstreamError(err)
	}

	l := ledger.NewReconstructor(policy).Reconstruct(product.Name, receipts, sales, returns)

	shortfalls := l.ShortfallRows()
	s.metrics.RecordShortfall(ctx, shortfalls)
	span.SetAttributes(
		telemetry.AttrRowCount.Int(len(l.Rows)),
		telemetry.AttrCurrentStock.Int64(l.CurrentStock),
	)

	log := s.log(ctx).With(zap.String("product_id", product.ID.String()))
	if shortfalls > 0 {
		log.Warn("Ledger contains sales without matching stock", zap.Int("shortfall_rows", shortfalls))
	}
	log.Debug("Ledger reconstructed",
		zap.Int("rows", len(l.Rows)),
		zap.Int64("current_stock", l.CurrentStock),
		zap.String("return_policy", policyName),
	)

	return &ProductLedgerResult{
		ProductID:    product.ID,
		ReturnPolicy: policyName,
		Ledger:       l,
	}, nil
}

// ExportProductLedger reconstructs the ledger and renders it with the
// configured exporter.
func (s *LedgerService) ExportProductLedger(ctx context.Context, q ProductLedgerQuery) (*LedgerExport, error) {
	if s.exporter == nil {
		return nil, errors.New("ledger export is not configured")
	}

	result, err := s.GetProductLedger(ctx, q)
	if err != nil {
		return nil, err
	}

	content, err := s.exporter.Export(result.Ledger)
	if err != nil {
		return nil, fmt.Errorf("export ledger: %w", err)
	}

	return &LedgerExport{
		FileName:    exportFileName(result.Ledger.Product, s.exporter.FileExtension()),
		ContentType: s.exporter.ContentType(),
		Content:     content,
	}, nil
}

// ListReturnPolicies describes the registered return policies
func (s *LedgerService) ListReturnPolicies() []ReturnPolicyInfo {
	def := s.policies.GetDefault(strategy.StrategyTypeReturnPolicy)
	names := s.policies.ListReturnPolicies()

	out := make([]ReturnPolicyInfo, 0, len(names))
	for _, name := range names {
		p, err := s.policies.GetReturnPolicy(name)
		if err != nil {
			continue
		}
		out = append(out, ReturnPolicyInfo{
			Name:        name,
			Description: p.Description(),
			Default:     name == def,
		})
	}
	return out
}

// log prefers the request-scoped logger carried by ctx
func (s *LedgerService) log(ctx context.Context) *logger.ContextLogger {
	return logger.WithLogger(ctx, logger.FromContextOr(ctx, s.logger))
}

func (s *LedgerService) checkSupplier(ctx context.Context, id *uuid.UUID) error {
	if id == nil || s.sources.Suppliers == nil {
		return nil
	}
	if _, err := s.sources.Suppliers.FindByID(ctx, *id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf(`Supplier "%s" not found`, id))
		}
		s.log(ctx).Error("Failed to resolve supplier", zap.String("supplier_id", id.String()), zap.Error(err))
		return upstreamError(err)
	}
	return nil
}

func (s *LedgerService) resolvePolicy(name string) (ledger.ReturnPolicy, error) {
	policy, err := s.policies.GetReturnPolicy(name)
	if err == nil {
		return policy, nil
	}
	if name != "" && errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code,
			fmt.Sprintf("Unknown return policy %q", name))
	}
	return nil, fmt.Errorf("resolve return policy: %w", err)
}

// fetchError tags a load failure with the source it came from
type fetchError struct {
	source string
	err    error
}

func (e *fetchError) Error() string { return e.source + ": " + e.err.Error() }
func (e *fetchError) Unwrap() error { return e.err }

// fetch loads the three sources concurrently. The first failure cancels
// the other loads.
func (s *LedgerService) fetch(ctx context.Context, filter ledger.ReceiptFilter) (
	receipts []ledger.StockReceipt,
	sales []ledger.SaleLine,
	returns []ledger.ReturnLine,
	err error,
) {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if receipts, err = s.sources.Receipts.ListReceipts(gctx, filter); err != nil {
			return &fetchError{source: sourceReceipts, err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if sales, err = s.sources.Sales.ListSaleLines(gctx, filter.ProductID, ledger.LedgerStatuses()); err != nil {
			return &fetchError{source: sourceSales, err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if returns, err = s.sources.Returns.ListReturnLines(gctx, filter.ProductID); err != nil {
			return &fetchError{source: sourceReturns, err: err}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return receipts, sales, returns, nil
}

// upstreamError hides a store failure behind UPSTREAM_FAILURE, keeping an
// open breaker distinguishable as SERVICE_UNAVAILABLE.
func upstreamError(err error) error {
	if errors.Is(err, shared.ErrUnavailable) {
		return shared.WrapDomainError(shared.ErrUnavailable.Code, shared.ErrUnavailable.Message, err)
	}
	return shared.WrapDomainError(shared.ErrUpstreamFailure.Code, shared.ErrUpstreamFailure.Message, err)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, shared.ErrNotFound):
		return telemetry.OutcomeNotFound
	case errors.Is(err, shared.ErrInvalidInput):
		return telemetry.OutcomeInvalid
	default:
		return telemetry.OutcomeError
	}
}

// exportFileName builds "<slug>-ledger.<ext>" from a product name
func exportFileName(product, ext string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(product) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "product"
	}
	return slug + "-ledger." + ext
}
