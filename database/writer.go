package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/safing/portstore/log"
)

// WriteFunc is executed by the writer within a write transaction. Returning
// an error discards all changes made to the transaction.
type WriteFunc func(tx *WriteTx) error

// WriteResult is the future outcome of a submitted write.
type WriteResult struct {
	done chan struct{}
	err  error
}

func newWriteResult() *WriteResult {
	return &WriteResult{
		done: make(chan struct{}),
	}
}

func failedWriteResult(err error) *WriteResult {
	res := newWriteResult()
	res.finish(err)
	return res
}

func (res *WriteResult) finish(err error) {
	res.err = err
	close(res.done)
}

// Done is closed when the write has been committed or has failed.
func (res *WriteResult) Done() <-chan struct{} {
	return res.done
}

// Err returns the outcome of the write. It must only be called after Done is closed.
func (res *WriteResult) Err() error {
	select {
	case <-res.done:
		return res.err
	default:
		return nil
	}
}

// Wait waits for the write to finish. If ctx ends first, ErrTimeout is
// returned; the write itself is not cancelled and may still be committed.
func (res *WriteResult) Wait(ctx context.Context) error {
	select {
	case <-res.done:
		return res.err
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
	}
}

type writeRequest struct {
	op     string
	fn     WriteFunc
	result *WriteResult
}

// Submit queues fn for execution by the writer and returns its future result.
// Writes are executed and committed in submission order.
func (m *Manager) Submit(fn WriteFunc) *WriteResult {
	return m.submit(opCustom, fn)
}

func (m *Manager) submit(op string, fn WriteFunc) *WriteResult {
	m.submitLock.RLock()
	defer m.submitLock.RUnlock()

	if m.closed.IsSet() {
		return failedWriteResult(ErrShuttingDown)
	}

	req := &writeRequest{
		op:     op,
		fn:     fn,
		result: newWriteResult(),
	}
	m.queue <- req
	return req.result
}

// wait waits for the result, bounded by the configured write timeout.
func (m *Manager) wait(res *WriteResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.WriteTimeout)
	defer cancel()

	return res.Wait(ctx)
}

func (m *Manager) writer() {
	defer close(m.writerDone)

	for req := range m.queue {
		started := time.Now()
		err := m.execute(req)
		m.metrics.write(req.op, started, err)
		if err != nil && !errors.Is(err, ErrNotFound) {
			log.Warningf("database: %s: %s write failed: %s", m.opts.StoreName, req.op, err)
		}
		req.result.finish(err)
	}
}

func (m *Manager) execute(req *writeRequest) (err error) {
	tx := newWriteTx(m)

	defer func() {
		if panicked := recover(); panicked != nil {
			err = fmt.Errorf("%w: %v", ErrWritePanic, panicked)
		}
	}()

	if err := req.fn(tx); err != nil {
		return err
	}
	return tx.commit()
}
