package spacy

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/poiesic/conceptmap/annotate"
	"github.com/poiesic/conceptmap/core"
)

// process is a running worker with its pipes.
type process struct {
	stdin  io.WriteCloser
	stdout io.Reader
	stop   func() error
}

// startFunc starts the worker script with the given interpreter.
type startFunc func(ctx context.Context, python, script string) (*process, error)

func startProcess(_ context.Context, python, script string) (*process, error) {
	// The worker outlives the request that loaded it, so it is not tied to ctx.
	cmd := exec.Command(python, script)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("start process: %w", err)
	}

	return &process{
		stdin:  stdin,
		stdout: stdout,
		stop: func() error {
			stdin.Close()
			if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
				return err
			}
			cmd.Wait()
			return nil
		},
	}, nil
}

type workerConfig struct {
	Model string `json:"model"`
}

type workerStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type workerRequest struct {
	Text string `json:"text"`
}

type workerToken struct {
	Text     string `json:"text"`
	POS      string `json:"pos"`
	Head     int    `json:"head"`
	Sentence int    `json:"sent"`
}

type workerResponse struct {
	Tokens []workerToken `json:"tokens"`
	Error  string        `json:"error,omitempty"`
}

const errModelNotFound = "model_not_found"

// worker implements annotate.Model over one process.
type worker struct {
	proc    *process
	scanner *bufio.Scanner
	logger  *slog.Logger

	mu     sync.Mutex
	closed bool
}

// newWorker sends the configuration line and waits for readiness.
func newWorker(proc *process, model string, logger *slog.Logger) (*worker, error) {
	w := &worker{
		proc:    proc,
		scanner: bufio.NewScanner(proc.stdout),
		logger:  logger,
	}
	w.scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if err := w.send(workerConfig{Model: model}); err != nil {
		return nil, fmt.Errorf("send config: %w", err)
	}

	var status workerStatus
	if err := w.receive(&status); err != nil {
		return nil, fmt.Errorf("read ready message: %w", err)
	}

	switch {
	case status.Status == "ready":
		logger.Debug("spacy worker ready")
		return w, nil
	case status.Error == errModelNotFound:
		return nil, fmt.Errorf("%w: %s", annotate.ErrModelMissing, model)
	case status.Error != "":
		return nil, fmt.Errorf("spacy worker: %s", status.Error)
	default:
		return nil, fmt.Errorf("unexpected startup status: %q", status.Status)
	}
}

// Annotate sends text to the worker and converts its reply.
func (w *worker) Annotate(ctx context.Context, text string) ([]core.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, errors.New("spacy worker closed")
	}

	if err := w.send(workerRequest{Text: text}); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	var resp workerResponse
	if err := w.receive(&resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("python error: %s", resp.Error)
	}

	tokens := make([]core.Token, len(resp.Tokens))
	for i, t := range resp.Tokens {
		tokens[i] = core.Token{
			Text:     t.Text,
			POS:      core.ParsePOS(t.POS),
			Sentence: t.Sentence,
			Head:     t.Head,
		}
	}
	return tokens, nil
}

// Close stops the worker process.
func (w *worker) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.logger.Debug("stopping spacy worker")
	return w.proc.stop()
}

func (w *worker) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.proc.stdin.Write(append(data, '\n'))
	return err
}

func (w *worker) receive(v any) error {
	if !w.scanner.Scan() {
		if err := w.scanner.Err(); err != nil {
			return fmt.Errorf("read stdout: %w", err)
		}
		return errors.New("stdout closed")
	}
	if err := json.Unmarshal(w.scanner.Bytes(), v); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
