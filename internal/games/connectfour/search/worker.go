package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/duel-arcade/internal/games/connectfour/board"
)

var (
	// ErrWorkerBusy is returned when a search is requested while one is pending.
	ErrWorkerBusy = errors.New("search: worker busy")
	// ErrWorkerClosed is returned after Close.
	ErrWorkerClosed = errors.New("search: worker closed")
)

// MoveRequest is the message sent to the worker. It is a self-contained
// value: the board travels in its wire form and nothing is shared with the
// caller.
type MoveRequest struct {
	Board         [][]int  `json:"boardMap"`
	Locked        []bool   `json:"locked,omitempty"`
	ColumnIDs     []string `json:"columnIds"`
	AIPiece       int      `json:"aiPiece"`
	OpponentPiece int      `json:"opponentPiece"`
	Depth         int      `json:"depth"`
}

// MoveResponse is the single reply to a MoveRequest. Err is set when the
// request could not be searched; BestColumnID is then empty.
type MoveResponse struct {
	BestColumnID string `json:"bestColumnId"`
	Err          error  `json:"-"`
}

// NewRequest captures a board for the worker.
func NewRequest(b *board.Board, ai, opp board.Cell, depth int) MoveRequest {
	locked := make([]bool, board.Columns)
	for col := range locked {
		locked[col] = b.Locked(col)
	}
	return MoveRequest{
		Board:         b.Encode(),
		Locked:        locked,
		ColumnIDs:     board.ColumnIDs(),
		AIPiece:       int(ai),
		OpponentPiece: int(opp),
		Depth:         depth,
	}
}

// Solve runs a request synchronously. The worker calls it on its own
// goroutine.
func Solve(req MoveRequest) MoveResponse {
	if len(req.ColumnIDs) != board.Columns {
		return MoveResponse{Err: fmt.Errorf("search: want %d column ids, got %d", board.Columns, len(req.ColumnIDs))}
	}
	b, err := board.Decode(req.Board)
	if err != nil {
		return MoveResponse{Err: fmt.Errorf("search: %w", err)}
	}
	for col, locked := range req.Locked {
		if locked {
			b.Lock(col)
		}
	}
	depth := req.Depth
	if depth <= 0 {
		depth = DefaultDepth
	}

	col := Root(&b, depth, board.Cell(req.AIPiece), board.Cell(req.OpponentPiece))
	if col < 0 {
		return MoveResponse{Err: errors.New("search: no playable column")}
	}
	return MoveResponse{BestColumnID: req.ColumnIDs[col]}
}

type job struct {
	ctx   context.Context
	req   MoveRequest
	reply chan MoveResponse
}

// Worker runs searches one at a time on a dedicated goroutine. A search in
// progress cannot be cancelled; its reply is still delivered and callers drop
// it if they no longer care.
type Worker struct {
	jobs chan job
	done chan struct{}
	log  *log.Logger

	mu      sync.Mutex
	pending bool
	closed  bool
}

// NewWorker starts a worker goroutine.
func NewWorker(logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	w := &Worker{
		jobs: make(chan job, 1),
		done: make(chan struct{}),
		log:  logger,
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	for j := range w.jobs {
		var resp MoveResponse
		if err := j.ctx.Err(); err != nil {
			resp = MoveResponse{Err: err}
		} else {
			start := time.Now()
			resp = Solve(j.req)
			w.log.Debug("search finished", "column", resp.BestColumnID, "depth", j.req.Depth, "elapsed", time.Since(start), "err", resp.Err)
		}

		w.mu.Lock()
		w.pending = false
		w.mu.Unlock()
		j.reply <- resp
	}
}

// Search queues a request. The returned channel receives exactly one
// response. Only one search may be pending at a time.
func (w *Worker) Search(ctx context.Context, req MoveRequest) (<-chan MoveResponse, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch {
	case w.closed:
		return nil, ErrWorkerClosed
	case w.pending:
		return nil, ErrWorkerBusy
	}

	reply := make(chan MoveResponse, 1)
	select {
	case w.jobs <- job{ctx: ctx, req: req, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	w.pending = true
	return reply, nil
}

// Pending reports whether a search is in progress.
func (w *Worker) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Close stops accepting requests. A running search finishes and its reply is
// delivered. Close is idempotent.
func (w *Worker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.jobs)
}

// Done is closed once the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
