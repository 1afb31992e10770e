package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/moodmix/internal/shared"
)

// stubIssuer counts issuances. When gate is set, IssueToken signals started and blocks until gate is closed.
type stubIssuer struct {
	calls   atomic.Int32
	ttl     time.Duration
	err     error
	gate    chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *stubIssuer) IssueToken(ctx context.Context) (string, time.Duration, error) {
	n := s.calls.Add(1)
	if s.started != nil {
		s.once.Do(func() { close(s.started) })
	}
	if s.gate != nil {
		<-s.gate
	}
	if s.err != nil {
		return "", 0, s.err
	}
	if ctx.Err() != nil {
		return "", 0, ctx.Err()
	}
	return "token-" + string(rune('0'+n)), s.ttl, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestBroker(issuer TokenIssuer) (*CredentialBroker, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	broker := NewCredentialBroker(issuer, nil)
	broker.SetClock(clock.Now)
	return broker, clock
}

func TestCredentialBroker(t *testing.T) {
	ctx := context.Background()

	t.Run("Issues On First Use And Reuses", func(t *testing.T) {
		issuer := &stubIssuer{ttl: time.Hour}
		broker, clock := newTestBroker(issuer)

		if _, ok := broker.cached(); ok {
			t.Fatal("expected empty broker")
		}

		first, err := broker.Credential(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !first.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
			t.Errorf("expected expiry one hour from issue, got %v", first.ExpiresAt)
		}

		second, err := broker.Credential(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second.Token != first.Token {
			t.Errorf("expected cached token %s, got %s", first.Token, second.Token)
		}
		if issuer.calls.Load() != 1 {
			t.Errorf("expected 1 issuance, got %d", issuer.calls.Load())
		}
	})

	t.Run("Refreshes At Expiry", func(t *testing.T) {
		issuer := &stubIssuer{ttl: time.Hour}
		broker, clock := newTestBroker(issuer)

		first, _ := broker.Credential(ctx)

		clock.Set(first.ExpiresAt.Add(-time.Second))
		if cred, _ := broker.Credential(ctx); cred.Token != first.Token {
			t.Errorf("expected cached token before expiry, got %s", cred.Token)
		}

		clock.Set(first.ExpiresAt)
		second, err := broker.Credential(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if second.Token == first.Token {
			t.Error("expected a new token at the expiry instant")
		}
		if issuer.calls.Load() != 2 {
			t.Errorf("expected 2 issuances, got %d", issuer.calls.Load())
		}
	})

	t.Run("Concurrent Callers Share One Issuance", func(t *testing.T) {
		issuer := &stubIssuer{ttl: time.Hour, gate: make(chan struct{}), started: make(chan struct{})}
		broker, _ := newTestBroker(issuer)

		const callers = 16
		tokens := make([]string, callers)
		errs := make([]error, callers)

		var wg sync.WaitGroup
		for i := range callers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				cred, err := broker.Credential(ctx)
				tokens[i], errs[i] = cred.Token, err
			}(i)
		}

		<-issuer.started
		close(issuer.gate)
		wg.Wait()

		for i := range callers {
			if errs[i] != nil {
				t.Fatalf("caller %d: unexpected error %v", i, errs[i])
			}
			if tokens[i] != tokens[0] {
				t.Errorf("caller %d got %s, want %s", i, tokens[i], tokens[0])
			}
		}
		if issuer.calls.Load() != 1 {
			t.Errorf("expected exactly 1 issuance, got %d", issuer.calls.Load())
		}
	})

	t.Run("Failure Leaves Broker Empty", func(t *testing.T) {
		issuer := &stubIssuer{ttl: time.Hour, err: errors.New("invalid_client")}
		broker, _ := newTestBroker(issuer)

		_, err := broker.Credential(ctx)
		if !errors.Is(err, shared.ErrAuthentication) {
			t.Fatalf("expected ErrAuthentication, got %v", err)
		}
		if _, ok := broker.cached(); ok {
			t.Error("expected no cached credential after failure")
		}

		_, _ = broker.Credential(ctx)
		if issuer.calls.Load() != 2 {
			t.Errorf("expected retry on next call, got %d issuances", issuer.calls.Load())
		}
	})

	t.Run("Abandoned Caller Does Not Cancel Issuance", func(t *testing.T) {
		issuer := &stubIssuer{ttl: time.Hour, gate: make(chan struct{}), started: make(chan struct{})}
		broker, _ := newTestBroker(issuer)

		cancelCtx, cancel := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			_, err := broker.Credential(cancelCtx)
			done <- err
		}()

		<-issuer.started
		cancel()
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}

		close(issuer.gate)

		cred, err := broker.Credential(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cred.Token != "token-1" {
			t.Errorf("expected the abandoned issuance's token, got %s", cred.Token)
		}
		if issuer.calls.Load() != 1 {
			t.Errorf("expected 1 issuance, got %d", issuer.calls.Load())
		}
	})

	t.Run("Invalidate", func(t *testing.T) {
		issuer := &stubIssuer{ttl: time.Hour}
		broker, _ := newTestBroker(issuer)

		cred, _ := broker.Credential(ctx)

		broker.Invalidate("some-other-token")
		if _, ok := broker.cached(); !ok {
			t.Error("expected credential kept for non-matching token")
		}

		broker.Invalidate(cred.Token)
		if _, ok := broker.cached(); ok {
			t.Error("expected credential dropped")
		}

		next, _ := broker.Credential(ctx)
		if next.Token == cred.Token {
			t.Error("expected a new token after invalidation")
		}
	})
}
