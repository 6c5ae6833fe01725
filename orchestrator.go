// Package payconf drives a payment gateway sandbox through its full
// transaction lifecycle and reports whether the sandbox behaved as
// documented. A run walks health check, method discovery, tokenization,
// submission, polling, settlement, and optional refund; a flag-armed
// cancellation task races the settlement path over a one-shot handoff.
package payconf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"payconf/diag"
	"payconf/event"
	"payconf/expectation"
	"payconf/gateway"
	"payconf/input"
	"payconf/lock"
	"payconf/metrics"
	"payconf/store"
	"payconf/tracing"
)

// Gateway is the typed endpoint surface the orchestrator drives. Satisfied
// by *gateway.API; tests substitute a scripted implementation.
type Gateway interface {
	Monitor(ctx context.Context) (*gateway.MonitorResponse, error)
	PaymentMethods(ctx context.Context, currency string) (*gateway.PaymentMethodsResponse, error)
	CreatePaymentHandle(ctx context.Context, req *gateway.PaymentHandleRequest) (*gateway.PaymentHandleResponse, error)
	SubmitPayment(ctx context.Context, req *gateway.PaymentRequest) (*gateway.PaymentResponse, error)
	GetPayment(ctx context.Context, id string) (*gateway.PaymentResponse, error)
	CancelPayment(ctx context.Context, id string) (*gateway.PaymentResponse, error)
	Settle(ctx context.Context, paymentID string, req *gateway.SettlementRequest) (*gateway.SettlementResponse, error)
	Refund(ctx context.Context, settlementID string, req *gateway.RefundRequest) (*gateway.RefundResponse, error)
	GetRefund(ctx context.Context, id string) (*gateway.RefundResponse, error)
}

var _ Gateway = (*gateway.API)(nil)

// Orchestrator executes conformance runs. All collaborators beyond the
// gateway are optional and default to no-op or in-memory implementations.
type Orchestrator struct {
	gw         Gateway
	classifier *Classifier
	bus        event.EventBus
	metrics    metrics.Metrics
	tracer     tracing.Tracer
	locker     lock.Locker
	traces     diag.TraceStore
	runs       store.RunStore
	inputs     input.Provider
	cfg        Config
}

// OrchestratorOption configures the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClassifier sets the error classifier.
func WithClassifier(classifier *Classifier) OrchestratorOption {
	return func(o *Orchestrator) {
		o.classifier = classifier
	}
}

// WithEventBus sets the event bus for lifecycle events.
func WithEventBus(bus event.EventBus) OrchestratorOption {
	return func(o *Orchestrator) {
		o.bus = bus
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m metrics.Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer tracing.Tracer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.tracer = tracer
	}
}

// WithLocker enables the sandbox account lock. Without a locker, runs are
// not serialized.
func WithLocker(locker lock.Locker) OrchestratorOption {
	return func(o *Orchestrator) {
		o.locker = locker
	}
}

// WithTraceStore sets the sink for diagnostic traces.
func WithTraceStore(traces diag.TraceStore) OrchestratorOption {
	return func(o *Orchestrator) {
		o.traces = traces
	}
}

// WithRunStore enables run history persistence. A persistence failure is
// reported as a warning, never as a run failure.
func WithRunStore(runs store.RunStore) OrchestratorOption {
	return func(o *Orchestrator) {
		o.runs = runs
	}
}

// WithInputProvider sets the tokenization input source.
func WithInputProvider(provider input.Provider) OrchestratorOption {
	return func(o *Orchestrator) {
		o.inputs = provider
	}
}

// WithConfig replaces the run configuration.
func WithConfig(cfg Config) OrchestratorOption {
	return func(o *Orchestrator) {
		o.cfg = cfg
	}
}

// NewOrchestrator creates an orchestrator over the given gateway.
func NewOrchestrator(gw Gateway, opts ...OrchestratorOption) (*Orchestrator, error) {
	if gw == nil {
		return nil, fmt.Errorf("%w: gateway cannot be nil", ErrInvalidConfig)
	}

	o := &Orchestrator{
		gw:         gw,
		classifier: NewClassifier(expectation.Builtin()),
		bus:        event.NewNoOpEventBus(),
		metrics:    &metrics.NoopMetrics{},
		tracer:     &tracing.NoopTracer{},
		traces:     diag.NewMemoryStore(64),
		inputs:     input.NewStaticProvider(),
		cfg:        DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// run is the mutable state of one executing run. The mutex guards every
// report field the settlement and cancellation tasks both touch.
type run struct {
	mu      sync.Mutex
	id      string
	session *Session
	report  *RunReport
	state   RunState
	fatal   error
}

// transitionMain advances the main-branch state. The cancellation branch is
// tracked in the report's Cancellation block, not here.
func (r *run) transitionMain(to RunState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !ValidateRunTransition(r.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidRunState, r.state, to)
	}
	r.state = to
	r.report.MainState = to
	return nil
}

func (r *run) warn(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Warnings = append(r.report.Warnings, fmt.Sprintf(format, args...))
}

func (r *run) addExpectation(outcome ExpectationOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.report.Expectations = append(r.report.Expectations, outcome)
}

// setFatal records the first fatal error; later ones are demoted to
// warnings so the report stays readable.
func (r *run) setFatal(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fatal == nil {
		r.fatal = err
		return
	}
	r.report.Warnings = append(r.report.Warnings, fmt.Sprintf("subsequent failure: %v", err))
}

func (r *run) fatalErr() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fatal
}

func (r *run) markCancellation(mutate func(c *Cancellation)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mutate(&r.report.Cancellation)
}

// Run executes one conformance run and always returns a report, failed or
// not. The returned error is non-nil exactly when the run ended FAILED.
func (o *Orchestrator) Run(ctx context.Context, session *Session) (*RunReport, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: session cannot be nil", ErrInvalidConfig)
	}

	runID := uuid.New().String()
	r := &run{
		id:      runID,
		session: session,
		state:   StateInit,
		report: &RunReport{
			RunID:       runID,
			Currency:    session.Currency(),
			AmountMinor: session.AmountMinor(),
			MerchantRef: session.MerchantRef(),
			StartedAt:   time.Now(),
			MainState:   StateInit,
		},
	}

	ctx, span := o.tracer.StartRun(ctx, runID, session.Currency(), session.AmountMinor())
	defer span.End()

	o.metrics.RunStarted(session.Currency())
	o.publish(ctx, event.NewEvent(event.EventRunStarted).
		WithRunID(runID).
		WithMerchantRef(session.MerchantRef()).
		WithData("currency", session.Currency()).
		WithData("amount_minor", session.AmountMinor()))

	if o.locker != nil {
		handle, err := o.locker.Acquire(ctx, session.AccountID(), o.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, lock.ErrLockHeld) {
				err = fmt.Errorf("%w: account %s", ErrAccountLocked, session.AccountID())
			}
			return o.finish(ctx, r, span, err)
		}
		defer func() {
			if rerr := handle.Release(context.WithoutCancel(ctx)); rerr != nil {
				r.warn("account lock release: %v", rerr)
			}
		}()
	}

	if err := o.preparePayment(ctx, r); err != nil {
		return o.finish(ctx, r, span, err)
	}

	// Post-submission phase: the settlement task owns the main branch, the
	// cancellation task races it through the one-shot handoff.
	handoff := NewHandoff()
	armed := session.CancelRequested() && o.cfg.InCancelBucket(session.AmountMinor())
	r.markCancellation(func(c *Cancellation) { c.Armed = armed })

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		o.settlementTask(ctx, r, handoff)
	}()
	if armed {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.cancelTask(ctx, r, handoff)
		}()
	}
	wg.Wait()

	return o.finish(ctx, r, span, r.fatalErr())
}

// preparePayment walks the sequential stages up to and including payment
// submission.
func (o *Orchestrator) preparePayment(ctx context.Context, r *run) error {
	session := r.session

	if err := o.stage(ctx, r, "health_check", func(ctx context.Context) error {
		mon, err := o.gw.Monitor(ctx)
		if err != nil {
			return o.classifyFailure(ctx, r, "health_check", err)
		}
		if mon.Status == "" {
			return fmt.Errorf("%w: monitor status", ErrMissingField)
		}
		return r.transitionMain(StateHealthOK)
	}); err != nil {
		return err
	}

	if err := o.stage(ctx, r, "list_methods", func(ctx context.Context) error {
		methods, err := o.gw.PaymentMethods(ctx, session.Currency())
		if err != nil {
			return o.classifyFailure(ctx, r, "list_methods", err)
		}
		for _, m := range methods.PaymentMethods {
			r.report.PaymentMethods = append(r.report.PaymentMethods, m.PaymentMethod)
		}
		if len(r.report.PaymentMethods) == 0 {
			r.warn("no payment methods advertised for %s", session.Currency())
		}
		return r.transitionMain(StateMethodsListed)
	}); err != nil {
		return err
	}

	var token string
	if err := o.stage(ctx, r, "create_handle", func(ctx context.Context) error {
		inputs, err := o.inputs.Inputs(ctx)
		if err != nil {
			return fmt.Errorf("collect inputs: %w", err)
		}
		handle, err := o.gw.CreatePaymentHandle(ctx, &gateway.PaymentHandleRequest{
			MerchantRefNum:  session.MerchantRef(),
			TransactionType: "PAYMENT",
			AmountMinor:     session.AmountMinor(),
			AccountID:       session.AccountID(),
			Card:            inputs.Card,
			Profile:         inputs.Profile,
			PaymentType:     "CARD",
			CurrencyCode:    session.Currency(),
			CustomerIP:      inputs.CustomerIP,
			BillingDetails:  inputs.Billing,
			ReturnLinks:     returnLinks(),
		})
		if err != nil {
			return o.classifyFailure(ctx, r, "create_handle", err)
		}
		if handle.PaymentHandleToken == "" {
			return fmt.Errorf("%w: payment handle token", ErrMissingField)
		}
		token = handle.PaymentHandleToken
		return r.transitionMain(StateHandleCreated)
	}); err != nil {
		return err
	}

	return o.stage(ctx, r, "submit_payment", func(ctx context.Context) error {
		payment, err := o.gw.SubmitPayment(ctx, &gateway.PaymentRequest{
			MerchantRefNum:     session.MerchantRef(),
			AmountMinor:        session.AmountMinor(),
			CurrencyCode:       session.Currency(),
			PaymentHandleToken: token,
		})
		if err != nil {
			return o.classifyFailure(ctx, r, "submit_payment", err)
		}
		if payment.ID == "" {
			return fmt.Errorf("%w: payment id", ErrMissingField)
		}
		r.report.Transaction = &Transaction{
			ID:          payment.ID,
			Status:      TxStatus(payment.Status),
			AmountMinor: session.AmountMinor(),
			Currency:    session.Currency(),
		}
		return r.transitionMain(StateSubmitted)
	})
}

// settlementTask owns the main branch after submission: it publishes the
// transaction identifier, waits for a terminal payment status, settles, and
// optionally refunds. The transaction record is mutated only here.
func (o *Orchestrator) settlementTask(ctx context.Context, r *run, handoff *Handoff) {
	tx := r.report.Transaction

	// Arm the cancellation task before anything can block.
	handoff.Publish(tx.ID)

	result, err := o.pollStatus(ctx, r, "poll_payment", func(ctx context.Context) (TxStatus, error) {
		payment, err := o.gw.GetPayment(ctx, tx.ID)
		if err != nil {
			return "", err
		}
		return TxStatus(payment.Status), nil
	})
	if err != nil {
		r.setFatal(o.classifyFailure(ctx, r, "poll_payment", err))
		return
	}
	if result.Outcome != "" {
		tx.Status = result.Outcome
	}
	if result.Exhausted() {
		// Soft timeout: the run still ends DONE.
		o.metrics.PollExhausted("payment")
		o.publish(ctx, event.NewEvent(event.EventPollExhausted).
			WithRunID(r.id).WithStage("poll_payment").
			WithData("attempts", result.Attempts))
		if terr := r.transitionMain(StateTimedOut); terr != nil {
			r.setFatal(terr)
			return
		}
		r.warn("payment polling exhausted after %d attempts, last status %s", result.Attempts, tx.Status)
		return
	}

	switch tx.Status {
	case TxStatusCompleted:
		if terr := r.transitionMain(StateCompleted); terr != nil {
			r.setFatal(terr)
			return
		}
		o.settle(ctx, r, tx)
	case TxStatusCancelled:
		// The cancellation task won the race. Nothing to settle.
	default:
		r.setFatal(fmt.Errorf("%w: payment %s ended %s", ErrRunFailed, tx.ID, tx.Status))
	}
}

// settle creates the settlement and runs the inconsistency safety valve.
// Settlement is always attempted after a completed payment; the refund only
// when requested and the settlement came back whole.
func (o *Orchestrator) settle(ctx context.Context, r *run, tx *Transaction) {
	session := r.session

	var settlement *Settlement
	if err := o.stage(ctx, r, "settlement", func(ctx context.Context) error {
		resp, err := o.gw.Settle(ctx, tx.ID, &gateway.SettlementRequest{
			MerchantRefNum: session.MerchantRef(),
			DupCheck:       true,
			AmountMinor:    session.AmountMinor(),
		})
		if err != nil {
			return o.classifyFailure(ctx, r, "settlement", err)
		}
		settlement = &Settlement{
			ID:                resp.ID,
			Status:            TxStatus(resp.Status),
			AvailableToRefund: resp.AvailableToRefund,
		}
		if resp.TxnTime != "" {
			if t, perr := time.Parse(time.RFC3339, resp.TxnTime); perr == nil {
				settlement.TxnTime = t
			}
		}
		r.report.Settlement = settlement
		return r.transitionMain(StateSettled)
	}); err != nil {
		r.setFatal(err)
		return
	}

	if settlement.Inconsistent(session.AmountMinor()) {
		o.metrics.SettlementInconsistent()
		o.publish(ctx, event.NewEvent(event.EventSettlementInconsistent).
			WithRunID(r.id).
			WithData("status", string(settlement.Status)).
			WithData("available_to_refund", settlement.AvailableToRefund).
			WithData("requested", session.AmountMinor()))
		r.warn("inconsistent settlement: status=%s availableToRefund=%d requested=%d",
			settlement.Status, settlement.AvailableToRefund, session.AmountMinor())
		o.defensiveCancel(ctx, r, tx.ID)
		return
	}

	if session.RefundRequested() {
		o.refund(ctx, r, settlement)
	}
}

// refund creates a refund against the settlement and polls it to a terminal
// status. Exhaustion here is a warning like any other poll.
func (o *Orchestrator) refund(ctx context.Context, r *run, settlement *Settlement) {
	session := r.session

	var refund *Refund
	if err := o.stage(ctx, r, "refund", func(ctx context.Context) error {
		resp, err := o.gw.Refund(ctx, settlement.ID, &gateway.RefundRequest{
			MerchantRefNum: session.MerchantRef(),
			DupCheck:       true,
			AmountMinor:    session.AmountMinor(),
		})
		if err != nil {
			return o.classifyFailure(ctx, r, "refund", err)
		}
		refund = &Refund{ID: resp.ID, Status: TxStatus(resp.Status)}
		r.report.Refund = refund
		return r.transitionMain(StateRefunded)
	}); err != nil {
		r.setFatal(err)
		return
	}

	if isTerminalTxStatus(refund.Status) {
		return
	}

	result, err := o.pollStatus(ctx, r, "poll_refund", func(ctx context.Context) (TxStatus, error) {
		resp, err := o.gw.GetRefund(ctx, refund.ID)
		if err != nil {
			return "", err
		}
		return TxStatus(resp.Status), nil
	})
	if err != nil {
		r.setFatal(o.classifyFailure(ctx, r, "poll_refund", err))
		return
	}
	if result.Outcome != "" {
		refund.Status = result.Outcome
	}
	if result.Exhausted() {
		o.metrics.PollExhausted("refund")
		o.publish(ctx, event.NewEvent(event.EventPollExhausted).
			WithRunID(r.id).WithStage("poll_refund").
			WithData("attempts", result.Attempts))
		r.warn("refund polling exhausted after %d attempts, last status %s", result.Attempts, refund.Status)
	}
}

// cancelTask is the operator-armed cancellation race. It reads the
// transaction identifier through the handoff and nowhere else, requests
// cancellation, and records the outcome. Losing the race is not a failure.
func (o *Orchestrator) cancelTask(ctx context.Context, r *run, handoff *Handoff) {
	txID, err := handoff.Await(ctx)
	if err != nil {
		r.warn("cancellation task: %v", err)
		return
	}

	r.markCancellation(func(c *Cancellation) { c.Requested = true })
	o.metrics.CancelRequested("flag")
	o.publish(ctx, event.NewEvent(event.EventCancelRequested).
		WithRunID(r.id).WithData("trigger", "flag"))

	resp, err := o.gw.CancelPayment(ctx, txID)
	if err != nil {
		note := o.declineNote(err)
		r.markCancellation(func(c *Cancellation) { c.Note = note })
		r.warn("cancellation declined: %s", note)
		return
	}

	if TxStatus(resp.Status) == TxStatusCancelled {
		r.markCancellation(func(c *Cancellation) { c.Acknowledged = true })
		o.metrics.CancelAcknowledged("flag")
		o.publish(ctx, event.NewEvent(event.EventCancelAcknowledged).
			WithRunID(r.id).WithData("trigger", "flag"))
		return
	}
	note := fmt.Sprintf("gateway returned status %s", resp.Status)
	r.markCancellation(func(c *Cancellation) { c.Note = note })
	r.warn("cancellation not acknowledged: %s", note)
}

// defensiveCancel fires on an inconsistent settlement, unconditionally: the
// cancel flag and the amount bucket do not gate it. Its failure is a
// warning; the run already carries the inconsistency.
func (o *Orchestrator) defensiveCancel(ctx context.Context, r *run, txID string) {
	r.markCancellation(func(c *Cancellation) {
		c.Defensive = true
		c.Requested = true
	})
	o.metrics.CancelRequested("defensive")
	o.publish(ctx, event.NewEvent(event.EventCancelRequested).
		WithRunID(r.id).WithData("trigger", "defensive"))

	resp, err := o.gw.CancelPayment(ctx, txID)
	if err != nil {
		note := o.declineNote(err)
		r.markCancellation(func(c *Cancellation) { c.Note = note })
		r.warn("defensive cancellation declined: %s", note)
		return
	}
	if TxStatus(resp.Status) == TxStatusCancelled {
		r.markCancellation(func(c *Cancellation) { c.Acknowledged = true })
		o.metrics.CancelAcknowledged("defensive")
		o.publish(ctx, event.NewEvent(event.EventCancelAcknowledged).
			WithRunID(r.id).WithData("trigger", "defensive"))
		return
	}
	note := fmt.Sprintf("gateway returned status %s", resp.Status)
	r.markCancellation(func(c *Cancellation) { c.Note = note })
	r.warn("defensive cancellation not acknowledged: %s", note)
}

// pollStatus runs a bounded status poll over one remote object.
func (o *Orchestrator) pollStatus(ctx context.Context, r *run, target string, fetch func(context.Context) (TxStatus, error)) (PollResult[TxStatus], error) {
	poller := NewPoller(o.cfg.PollAttempts, o.cfg.PollInterval,
		WithOnAttempt[TxStatus](func(attempt int) {
			o.metrics.PollAttempt(target)
			o.publish(ctx, event.NewEvent(event.EventPollAttempt).
				WithRunID(r.id).WithStage(target).
				WithData("attempt", attempt))
		}))
	return poller.Poll(ctx, fetch, isTerminalTxStatus)
}

// isTerminalTxStatus reports whether a remote status admits no further
// transitions.
func isTerminalTxStatus(status TxStatus) bool {
	switch status {
	case TxStatusCompleted, TxStatusFailed, TxStatusCancelled:
		return true
	default:
		return false
	}
}

// stage wraps one lifecycle stage with tracing, metrics, and events.
func (o *Orchestrator) stage(ctx context.Context, r *run, name string, fn func(context.Context) error) error {
	ctx, span := o.tracer.StartStage(ctx, r.id, name)
	defer span.End()

	start := time.Now()
	o.metrics.StageStarted(name)
	o.publish(ctx, event.NewEvent(event.EventStageStarted).WithRunID(r.id).WithStage(name))

	if err := fn(ctx); err != nil {
		span.SetError(err)
		o.metrics.StageFailed(name, reasonOf(err))
		o.publish(ctx, event.NewEvent(event.EventStageFailed).
			WithRunID(r.id).WithStage(name).WithError(err))
		return err
	}

	o.metrics.StageCompleted(name, time.Since(start))
	o.publish(ctx, event.NewEvent(event.EventStageCompleted).WithRunID(r.id).WithStage(name))
	return nil
}

// classifyFailure turns a gateway call error into the run's fatal error.
// Structured error bodies are classified and checked against the
// expectation registry; unparsable bodies are escalated by persisting a
// diagnostic trace and failing with its location.
func (o *Orchestrator) classifyFailure(ctx context.Context, r *run, stage string, err error) error {
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) {
		// Transport or internal failure: fatal as-is.
		return err
	}

	classified, cerr := o.classifier.ClassifyAPIError(apiErr)
	if cerr != nil {
		trace := &diag.Trace{
			RunID:        r.id,
			Stage:        stage,
			Method:       apiErr.Method,
			Path:         apiErr.Path,
			StatusCode:   apiErr.StatusCode,
			RequestBody:  json.RawMessage(apiErr.RequestBody),
			ResponseBody: string(apiErr.Body),
			Note:         cerr.Error(),
			Timestamp:    time.Now(),
		}
		location, serr := o.traces.Save(context.WithoutCancel(ctx), trace)
		if serr != nil {
			return fmt.Errorf("%w: trace persistence failed: %v (classification: %v)", ErrDiagnosticTrace, serr, cerr)
		}
		return fmt.Errorf("%w: %s", ErrDiagnosticTrace, location)
	}

	outcome := o.classifier.CheckExpectation(classified.Code, classified.Message)
	r.addExpectation(outcome)
	if !outcome.Known || !outcome.Match {
		r.warn("expectation drift for code %s: expected %q, observed %q",
			outcome.Code, outcome.Expected, outcome.Observed)
		o.publish(ctx, event.NewEvent(event.EventExpectationMismatch).
			WithRunID(r.id).WithStage(stage).
			WithData("code", outcome.Code).
			WithData("expected", outcome.Expected).
			WithData("observed", outcome.Observed))
	}

	if classified.Advisory() {
		o.publish(ctx, event.NewEvent(event.EventAlertWarning).
			WithRunID(r.id).WithStage(stage).
			WithData("code", classified.Code).
			WithData("message", classified.Message))
		return fmt.Errorf("%s: bank referral advisory (code %s): %s: %w",
			stage, classified.Code, classified.Message, ErrRunFailed)
	}
	return fmt.Errorf("%s: gateway declined (code %s): %s: %w",
		stage, classified.Code, classified.Message, ErrRunFailed)
}

// declineNote renders a cancellation decline as a short report note.
func (o *Orchestrator) declineNote(err error) string {
	var apiErr *gateway.APIError
	if !errors.As(err, &apiErr) {
		return err.Error()
	}
	classified, cerr := o.classifier.ClassifyAPIError(apiErr)
	if cerr != nil {
		return fmt.Sprintf("status %d, unparsable body", apiErr.StatusCode)
	}
	return fmt.Sprintf("code %s: %s", classified.Code, classified.Message)
}

// finish seals the report, emits the terminal observations, and persists
// the run record.
func (o *Orchestrator) finish(ctx context.Context, r *run, span tracing.Span, err error) (*RunReport, error) {
	report := r.report
	report.Duration = time.Since(report.StartedAt)

	if err != nil {
		report.FinalState = StateFailed
		report.Failure = err.Error()
		span.SetError(err)
		o.metrics.RunFailed(report.Currency, reasonOf(err))
		o.publish(ctx, event.NewEvent(event.EventRunFailed).
			WithRunID(r.id).WithMerchantRef(report.MerchantRef).WithError(err))
	} else {
		report.FinalState = StateDone
		o.metrics.RunCompleted(report.Currency, string(report.FinalState), report.Duration)
		o.publish(ctx, event.NewEvent(event.EventRunCompleted).
			WithRunID(r.id).WithMerchantRef(report.MerchantRef).
			WithData("main_state", string(report.MainState)).
			WithData("duration", report.Duration.String()))
	}

	o.persist(context.WithoutCancel(ctx), r)
	return report, err
}

// persist writes the run record when a store is configured. Persistence
// failures never change the run's outcome.
func (o *Orchestrator) persist(ctx context.Context, r *run) {
	if o.runs == nil {
		return
	}
	raw, err := json.Marshal(r.report)
	if err != nil {
		r.warn("run record not persisted: %v", err)
		return
	}
	record := &store.RunRecord{
		RunID:       r.id,
		Currency:    r.report.Currency,
		AmountMinor: r.report.AmountMinor,
		MerchantRef: r.report.MerchantRef,
		FinalState:  string(r.report.FinalState),
		Report:      raw,
		DurationMS:  r.report.Duration.Milliseconds(),
	}
	if err := o.runs.SaveRun(ctx, record); err != nil {
		r.warn("run record not persisted: %v", err)
	}
}

func (o *Orchestrator) publish(ctx context.Context, e event.Event) {
	_ = o.bus.Publish(ctx, e)
}

// reasonOf maps an error to a low-cardinality metrics label.
func reasonOf(err error) string {
	var apiErr *gateway.APIError
	var transportErr *gateway.TransportError
	switch {
	case errors.Is(err, ErrDiagnosticTrace):
		return "unparsable_error"
	case errors.Is(err, ErrAccountLocked):
		return "account_locked"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.As(err, &apiErr), errors.Is(err, ErrRunFailed):
		return "gateway_error"
	case errors.As(err, &transportErr):
		return "transport"
	default:
		return "internal"
	}
}

// returnLinks is the fixed redirect triple attached to every payment handle.
// The sandbox requires all three rels even for a non-interactive flow.
func returnLinks() []gateway.ReturnLink {
	return []gateway.ReturnLink{
		{Rel: "on_completed", Href: "https://example.com/completed", Method: "GET"},
		{Rel: "on_failed", Href: "https://example.com/failed", Method: "GET"},
		{Rel: "default", Href: "https://example.com/return", Method: "GET"},
	}
}
