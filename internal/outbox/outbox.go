// Package outbox persists mutations that could not reach the remote
// backend so they can be replayed in order once connectivity returns.
package outbox

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/peterbourgon/diskv/v3"
	"github.com/rs/zerolog/log"
)

// OpKind describes what the replayer should do with the payload.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpUpdate OpKind = "update"
	OpUpsert OpKind = "upsert"
	OpDelete OpKind = "delete"
	OpReset  OpKind = "reset"
)

// Op is one queued mutation. Payload carries the serialized record (or the
// ids for a delete); the replayer decodes it per collection.
type Op struct {
	Collection string          `json:"collection"`
	Kind       OpKind          `json:"kind"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

const queueKey = "outbox"

// Outbox is a durable FIFO of pending mutations. Every Enqueue rewrites the
// backing blob so a crash never loses an acknowledged queue entry. During a
// drain the blob always holds the full outstanding set (the not-yet-applied
// remainder plus anything enqueued mid-drain); a crash may re-replay the
// single in-flight op, so replays must be idempotent.
type Outbox struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	ops      []Op
	draining []Op
}

// Open loads any queue left over from a previous run out of stateDir.
func Open(stateDir string) (*Outbox, error) {
	if stateDir == "" {
		return nil, errors.New("outbox: state directory required")
	}
	o := &Outbox{d: diskv.New(diskv.Options{
		BasePath:     stateDir,
		CacheSizeMax: 1024 * 1024,
	})}
	o.load()
	return o, nil
}

// NewMemory returns an outbox with no disk backing, for tests.
func NewMemory() *Outbox {
	return &Outbox{}
}

func (o *Outbox) load() {
	data, err := o.d.Read(queueKey)
	if err != nil {
		return
	}
	if err := json.Unmarshal(data, &o.ops); err != nil {
		log.Error().Err(err).Msg("outbox corrupt, dropping queued mutations")
		o.ops = nil
	}
}

// persist writes the full outstanding set, drain remainder included. Callers
// hold the mutex.
func (o *Outbox) persist() {
	if o.d == nil {
		return
	}
	outstanding := make([]Op, 0, len(o.draining)+len(o.ops))
	outstanding = append(outstanding, o.draining...)
	outstanding = append(outstanding, o.ops...)
	if len(outstanding) == 0 {
		if err := o.d.Erase(queueKey); err != nil {
			log.Debug().Err(err).Msg("failed to erase drained outbox")
		}
		return
	}
	data, err := json.Marshal(outstanding)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal outbox")
		return
	}
	if err := o.d.Write(queueKey, data); err != nil {
		log.Error().Err(err).Msg("failed to persist outbox")
	}
}

// Enqueue appends op and flushes the queue to disk before returning.
func (o *Outbox) Enqueue(op Op) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
	o.persist()
	log.Debug().Str("collection", op.Collection).Str("kind", string(op.Kind)).
		Int("pending", len(o.ops)).Msg("queued offline mutation")
}

// Len reports the number of outstanding mutations, drain remainder included.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.draining) + len(o.ops)
}

// Flush replays queued mutations in enqueue order. apply reports whether
// the op reached the backend; the first failure stops the drain and the
// failed op plus everything after it stays queued ahead of anything enqueued
// mid-drain. The blob is rewritten after every applied op. Returns the number
// of ops applied. Only one Flush runs at a time.
func (o *Outbox) Flush(apply func(Op) bool) int {
	o.mu.Lock()
	if o.draining != nil {
		o.mu.Unlock()
		return 0
	}
	pending := o.ops
	o.ops = nil
	o.draining = pending
	o.mu.Unlock()

	applied := 0
	for i, op := range pending {
		if !apply(op) {
			o.mu.Lock()
			// the remainder replays before anything enqueued during the drain
			requeued := append([]Op(nil), pending[i:]...)
			o.ops = append(requeued, o.ops...)
			o.draining = nil
			o.persist()
			o.mu.Unlock()
			return applied
		}
		applied++
		o.mu.Lock()
		o.draining = pending[i+1:]
		o.persist()
		o.mu.Unlock()
	}

	o.mu.Lock()
	o.draining = nil
	o.persist()
	o.mu.Unlock()
	if applied > 0 {
		log.Info().Int("applied", applied).Msg("outbox drained")
	}
	return applied
}
