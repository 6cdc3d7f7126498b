package usecase_broker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/humanbelnik/singalong/core/internal/model"
)

type Outcome int

const (
	Completed Outcome = iota
	TimedOut
	ForcedEmpty
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	case ForcedEmpty:
		return "forced_empty"
	default:
		return "unknown"
	}
}

// Computation is an in-flight recognition the orchestrator will collect later.
type Computation interface {
	Wait(ctx context.Context) (model.Verdict, error)
	Cancel()
}

type Submission struct {
	Recording   model.Recording
	Computation Computation
}

type pending struct {
	keyword    model.Keyword
	done       chan struct{}
	signalled  bool
	forced     bool
	submission *Submission
}

// Broker hands submissions that arrive on connection goroutines
// to the room goroutine waiting on the same TurnSlot.
type Broker struct {
	mu     sync.Mutex
	slots  map[model.TurnSlot]*pending
	logger *slog.Logger
}

func New() *Broker {
	return &Broker{
		slots:  make(map[model.TurnSlot]*pending),
		logger: slog.Default(),
	}
}

// RegisterSlot opens a slot and returns a channel closed on its first completion.
func (b *Broker) RegisterSlot(key model.TurnSlot, keyword model.Keyword) <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	if old, ok := b.slots[key]; ok {
		b.logger.Error("slot registered twice", "slot", key.String())
		b.discard(old)
	}

	p := &pending{
		keyword: keyword,
		done:    make(chan struct{}),
	}
	b.slots[key] = p
	return p.done
}

// Complete stores the submission and wakes the waiter.
// It returns false, storing nothing, when the slot is unknown or already signalled;
// the caller then owns sub.Computation.
func (b *Broker) Complete(key model.TurnSlot, sub Submission) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.slots[key]
	if !ok || p.signalled {
		return false
	}
	p.submission = &sub
	p.signalled = true
	close(p.done)
	return true
}

// ForceCompleteEmpty wakes the waiter without a payload.
func (b *Broker) ForceCompleteEmpty(key model.TurnSlot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.slots[key]; ok {
		b.forceLocked(p)
	}
}

// ForceCompleteParticipant force-empties every open slot of a participant in a room and returns how many were woken.
func (b *Broker) ForceCompleteParticipant(room model.RoomID, participant model.ParticipantID) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for key, p := range b.slots {
		if key.Room == room && key.Participant == participant && !p.signalled {
			b.forceLocked(p)
			n++
		}
	}
	return n
}

// Take removes the slot and returns its submission, if one arrived.
func (b *Broker) Take(key model.TurnSlot) (Submission, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.slots[key]
	if !ok {
		return Submission{}, false
	}
	delete(b.slots, key)
	if p.submission == nil {
		return Submission{}, false
	}
	return *p.submission, true
}

// Release drops the slot and cancels any computation nobody is going to collect.
func (b *Broker) Release(key model.TurnSlot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.slots[key]; ok {
		delete(b.slots, key)
		b.discard(p)
	}
}

// Keyword returns the keyword the slot was opened for.
func (b *Broker) Keyword(key model.TurnSlot) (model.Keyword, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.slots[key]
	if !ok || p.signalled {
		return model.Keyword{}, false
	}
	return p.keyword, true
}

// Await blocks until the slot is completed, forced empty, or timeout elapses.
// The slot is always gone when Await returns.
func (b *Broker) Await(ctx context.Context, key model.TurnSlot, timeout time.Duration) (Submission, Outcome) {
	b.mu.Lock()
	p, ok := b.slots[key]
	b.mu.Unlock()
	if !ok {
		return Submission{}, TimedOut
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
	case <-ctx.Done():
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if cur, ok := b.slots[key]; !ok || cur != p {
		return Submission{}, TimedOut
	}
	delete(b.slots, key)

	switch {
	case p.submission != nil:
		return *p.submission, Completed
	case p.forced:
		return Submission{}, ForcedEmpty
	default:
		return Submission{}, TimedOut
	}
}

// Len is the number of open slots.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.slots)
}

func (b *Broker) forceLocked(p *pending) {
	if p.signalled {
		return
	}
	p.forced = true
	p.signalled = true
	close(p.done)
}

func (b *Broker) discard(p *pending) {
	if p.submission != nil && p.submission.Computation != nil {
		p.submission.Computation.Cancel()
	}
	if !p.signalled {
		p.signalled = true
		close(p.done)
	}
}
