package actor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/util"
	"go.uber.org/zap"
)

// unwatchTimeout limits the unwatch request made when the subscription
// ends, the original context may be done by then.
const unwatchTimeout = 2 * time.Second

// Subscription delivers lifecycle statuses of a submitted extrinsic in the
// order they're received. The status channel is closed after a terminal
// status, on a lifecycle violation, on connection loss, when the context is
// done or when Close is called, Err tells the reason.
type Subscription struct {
	// TxHash is the hash of the extrinsic.
	TxHash util.Uint256

	client RPCActor
	id     string
	rcvr   chan result.TxStatus
	out    chan result.TxStatus
	stop   chan struct{}
	done   chan struct{}
	once   sync.Once
	log    *zap.Logger

	// err is written before out is closed.
	err error
}

func newSubscription(ctx context.Context, client RPCActor, h util.Uint256, id string, rcvr chan result.TxStatus, opts Options) *Subscription {
	s := &Subscription{
		TxHash: h,
		client: client,
		id:     id,
		rcvr:   rcvr,
		out:    make(chan result.TxStatus, opts.StatusBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		log:    opts.Logger.With(zap.Stringer("hash", h)),
	}
	go s.run(ctx)
	return s
}

// Statuses returns the channel statuses are delivered to.
func (s *Subscription) Statuses() <-chan result.TxStatus {
	return s.out
}

// Err returns the reason the status channel was closed. It's nil after a
// terminal status or Close and is only valid once the channel is closed.
func (s *Subscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close stops status delivery and unwatches the extrinsic. It's safe to call
// it multiple times.
func (s *Subscription) Close() {
	s.once.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.out)
	defer s.unwatch()

	var tracker lifecycle
	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			s.err = ctx.Err()
			return
		case st, ok := <-s.rcvr:
			if !ok {
				s.err = ErrSubscriptionLost
				return
			}
			s.log.Debug("extrinsic status", zap.Stringer("status", st))
			if err := tracker.next(st); err != nil {
				s.log.Warn("lifecycle violation", zap.Error(err))
				s.err = err
				return
			}
			select {
			case s.out <- st:
			case <-s.stop:
				return
			case <-ctx.Done():
				s.err = ctx.Err()
				return
			}
			if st.Kind.IsTerminal() {
				return
			}
		}
	}
}

func (s *Subscription) unwatch() {
	ctx, cancel := context.WithTimeout(context.Background(), unwatchTimeout)
	defer cancel()
	if err := s.client.UnwatchExtrinsic(ctx, s.id); err != nil {
		s.log.Debug("failed to unwatch", zap.String("subscription", s.id), zap.Error(err))
	}
}

// lifecycle checks that statuses follow the extrinsic lifecycle: nothing
// follows a terminal status, an extrinsic included in a block can't become
// invalid, dropped or usurped unless the block is retracted and a
// finalized one can't be included again.
type lifecycle struct {
	prev      *result.TxStatus
	inBlock   bool
	finalized bool
}

func (l *lifecycle) next(st result.TxStatus) error {
	var bad bool
	switch {
	case l.finalized || (l.prev != nil && l.prev.Kind.IsTerminal()):
		bad = true
	case l.inBlock && (st.Kind == result.Invalid || st.Kind == result.Dropped || st.Kind == result.Usurped):
		bad = true
	}
	if bad {
		return fmt.Errorf("%w: %s after %s", ErrUnexpectedStatus, st, l.prev)
	}
	switch st.Kind {
	case result.InBlock:
		l.inBlock = true
	case result.Retracted:
		l.inBlock = false
	case result.Finalized:
		l.finalized = true
	}
	l.prev = &st
	return nil
}
