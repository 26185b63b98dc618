package presence

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Publisher refreshes the bot's status record on an interval and withdraws
// it when stopped.
type Publisher struct {
	store      Store
	botID      string
	every      time.Duration
	ttlSeconds int
	statusFn   func() BotStatus
	logf       func(format string, args ...any)

	doneCh chan struct{}
}

type PublisherOptions struct {
	Store      Store
	BotID      string
	Every      time.Duration
	TTLSeconds int

	// Status is called before each publish to snapshot the bot's state.
	Status func() BotStatus

	Logf func(format string, args ...any)
}

func StartPublisher(ctx context.Context, opts PublisherOptions) (*Publisher, error) {
	if opts.Store == nil {
		return nil, errors.New("presence store is nil")
	}
	if opts.Status == nil {
		return nil, errors.New("status func is nil")
	}
	every := opts.Every
	if every <= 0 {
		every = 5 * time.Second
	}
	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	p := &Publisher{
		store:      opts.Store,
		botID:      strings.TrimSpace(opts.BotID),
		every:      every,
		ttlSeconds: opts.TTLSeconds,
		statusFn:   opts.Status,
		logf:       logf,
		doneCh:     make(chan struct{}),
	}
	go p.loop(ctx)
	return p, nil
}

// Done is closed after the record has been withdrawn.
func (p *Publisher) Done() <-chan struct{} {
	if p == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return p.doneCh
}

func (p *Publisher) loop(ctx context.Context) {
	defer close(p.doneCh)
	if ctx == nil {
		ctx = context.Background()
	}

	// Publish once up front so the record exists before the first tick.
	p.publish(ctx)
	for {
		timer := time.NewTimer(p.every)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.withdraw()
			return
		case <-timer.C:
		}
		p.publish(ctx)
	}
}

func (p *Publisher) publish(ctx context.Context) {
	status := p.statusFn()
	if strings.TrimSpace(status.BotID) == "" {
		status.BotID = p.botID
	}
	status.UpdatedAt = time.Now().UTC()

	cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.store.Upsert(cctx, status, p.ttlSeconds); err != nil {
		p.logf("presence: upsert failed bot_id=%s err=%v", status.BotID, err)
	}
}

func (p *Publisher) withdraw() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.store.Delete(ctx, p.botID); err != nil {
		p.logf("presence: delete failed bot_id=%s err=%v", p.botID, err)
	}
}
