package health

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/mcp"
)

// DefaultTimeout bounds a probe from spawn to answer.
const DefaultTimeout = 5 * time.Second

// ProtocolVersion is the MCP revision announced in the handshake.
const ProtocolVersion = "2025-11-05"

// InitializeRequest is the single line written to every probed server.
const InitializeRequest = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"` +
	ProtocolVersion + `","capabilities":{},"clientInfo":{"name":"mcpm","version":"1.1.0"}}}` + "\n"

const (
	readChunk      = 8192
	stderrLimit    = 4096
	waitDelay      = time.Second
	msgUnsupported = "unsupported transport"
	msgNotFound    = "command not found: "
)

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the logger used for spawn and outcome records.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithEnviron replaces the base environment that server env maps are
// layered over. The default is os.Environ.
func WithEnviron(fn func() []string) Option {
	return func(p *Prober) {
		if fn != nil {
			p.environ = fn
		}
	}
}

// WithConcurrency caps how many probes CheckServers runs at once.
// Zero means no limit.
func WithConcurrency(n int) Option {
	return func(p *Prober) {
		p.limit = n
	}
}

// Prober runs initialize handshakes against stdio servers.
type Prober struct {
	timeout time.Duration
	logger  *slog.Logger
	environ func() []string
	limit   int
}

// NewProber creates a Prober with the fixed default deadline.
func NewProber(opts ...Option) *Prober {
	p := &Prober{
		timeout: DefaultTimeout,
		logger:  logging.NewDiscard(),
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout returns the probe deadline.
func (p *Prober) Timeout() time.Duration { return p.timeout }

// Check probes srv and blocks until it resolves. Non-stdio servers fail
// immediately without spawning anything.
func (p *Prober) Check(ctx context.Context, srv mcp.Server) mcp.HealthStatus {
	if !srv.Transport.Probeable() {
		return mcp.Failed(msgUnsupported)
	}

	start := time.Now()
	status := p.probe(ctx, srv.Transport.Command, srv.Transport.Args, srv.Env)
	p.logger.Debug("probe finished",
		"server", srv.Key().String(),
		"state", status.State.String(),
		"latency", time.Since(start).Round(time.Millisecond),
	)
	return status
}

// Result probes srv and addresses the outcome to slot index.
func (p *Prober) Result(ctx context.Context, index int, srv mcp.Server) mcp.HealthResult {
	status := p.Check(ctx, srv)
	return mcp.HealthResult{
		Index:     index,
		Key:       srv.Key(),
		Status:    status,
		CheckedAt: time.Now(),
	}
}

// Spawn probes srv in the background and pushes the result to q.
func (p *Prober) Spawn(ctx context.Context, index int, srv mcp.Server, q *Queue) {
	go func() {
		q.Push(p.Result(ctx, index, srv))
	}()
}

// CheckAll marks every probeable slot of r as Checking and spawns one
// probe per slot. It returns the number of probes started.
func (p *Prober) CheckAll(ctx context.Context, r *mcp.DiscoveryResult, q *Queue) int {
	n := 0
	for _, i := range r.Probeable() {
		if r.MarkChecking(i) {
			p.Spawn(ctx, i, r.Servers[i], q)
			n++
		}
	}
	return n
}

// CheckServers probes every server concurrently and returns the results
// in input order.
func (p *Prober) CheckServers(ctx context.Context, servers []mcp.Server) []mcp.HealthResult {
	out := make([]mcp.HealthResult, len(servers))
	var g errgroup.Group
	if p.limit > 0 {
		g.SetLimit(p.limit)
	}
	for i, srv := range servers {
		g.Go(func() error {
			out[i] = p.Result(ctx, i, srv)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

type readOutcome struct {
	status mcp.HealthStatus
	err    error
}

// probe runs one handshake. The child is always killed and reaped before
// it returns.
func (p *Prober) probe(ctx context.Context, command string, args []string, env map[string]string) mcp.HealthStatus {
	cmd := exec.Command(command, args...)
	cmd.Env = p.environ()
	for _, k := range mcp.SortedKeys(env) {
		cmd.Env = append(cmd.Env, k+"="+env[k])
	}
	cmd.WaitDelay = waitDelay
	isolate(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return mcp.Failed(err.Error())
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return mcp.Failed(err.Error())
	}
	stderr := &tailBuffer{limit: stderrLimit}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return mcp.Failed(msgNotFound + command)
		}
		return mcp.Failed(err.Error())
	}
	deadline := time.NewTimer(p.timeout)
	defer deadline.Stop()

	p.logger.Debug("probe spawned", "command", command, "args", args, "pid", cmd.Process.Pid)

	// stdin stays open until the child is reaped; EOF makes many servers
	// exit before answering.
	if _, err := io.WriteString(stdin, InitializeRequest); err != nil {
		p.logger.Debug("writing initialize request", "pid", cmd.Process.Pid, "error", err)
	}

	outcome := make(chan readOutcome, 1)
	go readAnswer(stdout, outcome)

	var status mcp.HealthStatus
	select {
	case o := <-outcome:
		if o.err != nil {
			status = mcp.Failed(o.err.Error())
		} else {
			status = o.status
		}
	case <-deadline.C:
		status = mcp.TimedOut()
	case <-ctx.Done():
		status = mcp.Failed(ctx.Err().Error())
	}

	kill(cmd)
	waitErr := cmd.Wait()
	if tail := stderr.String(); tail != "" || waitErr != nil {
		p.logger.Debug("probe reaped", "pid", cmd.Process.Pid, "exit", waitErr, "stderr", tail)
	}
	return status
}

// readAnswer accumulates stdout until an answer parses or the stream ends.
func readAnswer(r io.Reader, out chan<- readOutcome) {
	var buf []byte
	chunk := make([]byte, readChunk)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if status, ok := parseResponse(buf); ok {
				out <- readOutcome{status: status}
				return
			}
		}
		if errors.Is(err, io.EOF) {
			out <- readOutcome{status: unanswered(buf)}
			return
		}
		if err != nil {
			out <- readOutcome{err: err}
			return
		}
	}
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
