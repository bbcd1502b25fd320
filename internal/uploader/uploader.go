// Package uploader implements the uploader task (spec §4.G, component H):
// the periodic cycle that drains the node's buffered observations to the
// ingestion endpoint.
//
// The original firmware's wifi/uploader.rs and wifi/http.rs ran a much
// simpler fixed loop (stop sniffing, send once, fixed delays, start
// sniffing again); this version implements the distilled spec's retry,
// DNS-failure-escalation, and outcome-classification redesign on top of
// that same stop/settle/send/start skeleton.
package uploader

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/daugt/trailsense-edge/internal/dedup"
	"github.com/daugt/trailsense-edge/internal/fingerprintbuf"
	"github.com/daugt/trailsense-edge/internal/netstack"
	"github.com/daugt/trailsense-edge/internal/packagebuf"
	"github.com/daugt/trailsense-edge/internal/radio"
	"github.com/daugt/trailsense-edge/internal/wifinet"
	"github.com/daugt/trailsense-edge/internal/xlog"
)

// Configuration constants from spec §4.G.
const (
	Period                = 20 * time.Second
	ConnectTimeout        = 15 * time.Second
	SendTimeout           = 30 * time.Second
	RetryDelay            = 500 * time.Millisecond
	RadioSettleDelay      = 5 * time.Second
	SendAttempts          = 2
	DNSReconnectThreshold = 2
)

// Outcome classifies the result of a single POST attempt (spec §6).
type Outcome int

const (
	Success Outcome = iota
	Failure
	DnsFailure
	Timeout
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case DnsFailure:
		return "dns_failure"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// record is one uploaded package, field order matches spec §6's wire
// format ("age_in_seconds, count, node_id" — not semantic, but test
// fixtures on the receiving end rely on it).
type record struct {
	AgeInSeconds uint64 `json:"age_in_seconds"`
	Count        uint32 `json:"count"`
	NodeID       string `json:"node_id"`
}

// Recorder observes completed upload cycles for telemetry.
type Recorder interface {
	CycleOutcome(outcome string)
	PackagesUploaded(n int)
	DNSFailure()
}

type noopRecorder struct{}

func (noopRecorder) CycleOutcome(string)  {}
func (noopRecorder) PackagesUploaded(int) {}
func (noopRecorder) DNSFailure()          {}

// Uploader runs the periodic upload cycle.
type Uploader struct {
	baseURL  string
	nodeID   string
	client   *http.Client
	tracer   trace.Tracer
	rec      Recorder

	wifiCtx      *netstack.WifiCtx
	fingerprints *fingerprintbuf.Buffer
	packages     *packagebuf.Buffer
	radioCmds    chan<- radio.Cmd
	controlCmds  chan<- wifinet.ControlCmd

	sleep func(ctx context.Context, d time.Duration)

	consecutiveDNSFailures int
}

// Deps bundles the collaborators an Uploader needs, to keep New's
// signature manageable as the component grows.
type Deps struct {
	BaseURL      string
	NodeID       string
	WifiCtx      *netstack.WifiCtx
	Fingerprints *fingerprintbuf.Buffer
	Packages     *packagebuf.Buffer
	RadioCmds    chan<- radio.Cmd
	ControlCmds  chan<- wifinet.ControlCmd
	Verifier     TLSVerifier
	Tracer       trace.Tracer
	Recorder     Recorder

	// Transport overrides the base http.RoundTripper (still wrapped in
	// otelhttp for span propagation). Tests use this to stub transport
	// errors without touching the real network; production callers leave
	// it nil.
	Transport http.RoundTripper
}

// New builds an Uploader from deps. A nil Verifier defaults to
// InsecureVerifier; a nil Recorder is replaced with a no-op.
func New(deps Deps) *Uploader {
	verifier := deps.Verifier
	if verifier == nil {
		verifier = InsecureVerifier{}
	}
	rec := deps.Recorder
	if rec == nil {
		rec = noopRecorder{}
	}

	var tlsCfg *tls.Config
	if deps.WifiCtx != nil {
		tlsCfg = verifier.ClientTLSConfig(deps.WifiCtx.TLSSeed)
	} else {
		tlsCfg = verifier.ClientTLSConfig(0)
	}

	var base http.RoundTripper = &http.Transport{TLSClientConfig: tlsCfg}
	if deps.Transport != nil {
		base = deps.Transport
	}
	client := &http.Client{
		Transport: otelhttp.NewTransport(base),
		Timeout:   SendTimeout,
	}

	return &Uploader{
		baseURL:      deps.BaseURL,
		nodeID:       deps.NodeID,
		client:       client,
		tracer:       deps.Tracer,
		rec:          rec,
		wifiCtx:      deps.WifiCtx,
		fingerprints: deps.Fingerprints,
		packages:     deps.Packages,
		radioCmds:    deps.RadioCmds,
		controlCmds:  deps.ControlCmds,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run drives the upload cycle until ctx is cancelled.
func (u *Uploader) Run(ctx context.Context) {
	for {
		u.sleep(ctx, Period)
		if ctx.Err() != nil {
			return
		}
		u.cycle(ctx)
	}
}

func (u *Uploader) cycle(ctx context.Context) {
	ctx, span := u.tracer.Start(ctx, "uploader.cycle")
	defer span.End()

	if err := u.waitForLink(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "link not ready")
		u.rec.CycleOutcome("link_timeout")
		return
	}

	snap := u.fingerprints.Snapshot()
	k := dedup.CountDistinct(snap)
	u.packages.Push(k)
	u.fingerprints.Drain()

	u.sendRadioCmd(ctx, radio.StopSniffing)
	u.sleep(ctx, RadioSettleDelay)
	if ctx.Err() != nil {
		return
	}

	success, dnsFailureObserved := u.sendWithRetries(ctx)

	if dnsFailureObserved {
		u.consecutiveDNSFailures++
		u.rec.DNSFailure()
		if u.consecutiveDNSFailures >= DNSReconnectThreshold {
			u.sendControlCmd(ctx, wifinet.Reconnect)
			u.consecutiveDNSFailures = 0
		}
	} else {
		// Also resets on a plain (non-DNS) Failure or Success, not just on
		// success as spec §4.G step 6 literally says: only a DNS failure
		// should extend the streak.
		u.consecutiveDNSFailures = 0
	}

	u.sendRadioCmd(ctx, radio.StartSniffing)

	if success {
		u.rec.CycleOutcome("success")
	} else {
		u.rec.CycleOutcome("failure")
	}
}

func (u *Uploader) waitForLink(ctx context.Context) error {
	ctx, span := u.tracer.Start(ctx, "wait-for-link")
	defer span.End()

	if u.wifiCtx == nil || u.wifiCtx.Link == nil {
		return netstack.ErrLinkTimeout
	}
	return netstack.WaitForLink(ctx, u.wifiCtx.Link, ConnectTimeout)
}

// sendWithRetries attempts up to SendAttempts POSTs, draining the package
// buffer only on a confirmed success. It reports whether the upload
// ultimately succeeded and whether any attempt failed due to DNS.
func (u *Uploader) sendWithRetries(ctx context.Context) (success bool, dnsFailureObserved bool) {
	for attempt := 0; attempt < SendAttempts; attempt++ {
		packages := u.packages.SnapshotWithAge()

		outcome, err := u.postAttempt(ctx, packages)
		switch outcome {
		case Success:
			u.packages.Drain()
			u.rec.PackagesUploaded(len(packages))
			return true, dnsFailureObserved
		case DnsFailure:
			dnsFailureObserved = true
			xlog.Warnf("uploader: dns failure on attempt %d: %v", attempt+1, err)
		default:
			xlog.Warnf("uploader: attempt %d failed (%s): %v", attempt+1, outcome, err)
		}

		if attempt < SendAttempts-1 {
			u.sleep(ctx, RetryDelay)
			if ctx.Err() != nil {
				return false, dnsFailureObserved
			}
		}
	}
	return false, dnsFailureObserved
}

func (u *Uploader) postAttempt(ctx context.Context, packages []packagebuf.Entity) (Outcome, error) {
	ctx, span := u.tracer.Start(ctx, "post-attempt")
	defer span.End()

	records := make([]record, len(packages))
	for i, p := range packages {
		records[i] = record{
			AgeInSeconds: p.AgeInSeconds,
			Count:        p.Count,
			NodeID:       u.nodeID,
		}
	}

	body, err := json.Marshal(records)
	if err != nil {
		span.RecordError(err)
		return Failure, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/ingest", bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		return Failure, err
	}
	req.Header.Set("Content-Type", "application/json")

	span.SetAttributes(attribute.Int("upload.package_count", len(records)))

	resp, err := u.client.Do(req)
	if err != nil {
		outcome := classifyTransportError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome.String())
		return outcome, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Success, nil
	}

	span.SetStatus(codes.Error, fmt.Sprintf("http status %d", resp.StatusCode))
	return Failure, fmt.Errorf("unexpected status %d", resp.StatusCode)
}

// classifyTransportError maps a client.Do error to an Outcome per spec §6:
// a DNS resolution failure anywhere in the error chain is DnsFailure; a
// timeout is its own Timeout outcome (retried like Failure, but not counted
// toward the DNS-reconnect threshold); anything else is Failure.
func classifyTransportError(err error) Outcome {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return DnsFailure
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return Timeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}

	return Failure
}

func (u *Uploader) sendRadioCmd(ctx context.Context, cmd radio.Cmd) {
	select {
	case u.radioCmds <- cmd:
	case <-ctx.Done():
	}
}

func (u *Uploader) sendControlCmd(ctx context.Context, cmd wifinet.ControlCmd) {
	select {
	case u.controlCmds <- cmd:
	case <-ctx.Done():
	}
}
