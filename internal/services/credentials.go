package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/shared"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "token"

// CredentialBroker owns the single process-wide access token.
//
// Concurrent callers that find the token missing or expired share one issuance. A caller whose context is
// cancelled stops waiting but the issuance itself runs to completion so the next caller can use its result.
type CredentialBroker struct {
	issuer TokenIssuer
	logger *log.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current models.Credential

	refresh singleflight.Group
}

var _ CredentialProvider = (*CredentialBroker)(nil)

// NewCredentialBroker creates a broker in the Empty state.
func NewCredentialBroker(issuer TokenIssuer, logger *log.Logger) *CredentialBroker {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CredentialBroker{issuer: issuer, logger: logger, now: time.Now}
}

// SetClock replaces the broker's time source.
func (b *CredentialBroker) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}

func (b *CredentialBroker) clock() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.now()
}

// Credential returns a credential valid at call time, issuing a new one when needed.
//
// Errors from the issuer are reported as [shared.ErrAuthentication]; a cancelled ctx returns ctx.Err().
func (b *CredentialBroker) Credential(ctx context.Context) (models.Credential, error) {
	if cred, ok := b.cached(); ok {
		return cred, nil
	}

	ch := b.refresh.DoChan(refreshKey, func() (any, error) {
		if cred, ok := b.cached(); ok {
			return cred, nil
		}
		return b.issue(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return models.Credential{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return models.Credential{}, res.Err
		}
		return res.Val.(models.Credential), nil
	}
}

// Invalidate drops the cached credential if it still holds token.
//
// Used when the catalog rejects a token before its recorded expiry.
func (b *CredentialBroker) Invalidate(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if token != "" && b.current.Token == token {
		b.current = models.Credential{}
		b.logger.Warn("access token rejected, dropped cached credential")
	}
}

func (b *CredentialBroker) cached() (models.Credential, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.current.ValidAt(b.now()) {
		return b.current, true
	}
	return models.Credential{}, false
}

// issue runs one exchange. Expiry is counted from when the request was sent.
func (b *CredentialBroker) issue(ctx context.Context) (models.Credential, error) {
	start := b.clock()
	b.logger.Debug("requesting access token")

	token, ttl, err := b.issuer.IssueToken(ctx)
	if err != nil {
		b.logger.Error("token issuance failed", "error", err)
		if !errors.Is(err, shared.ErrAuthentication) {
			err = fmt.Errorf("%w: %w", shared.ErrAuthentication, err)
		}
		return models.Credential{}, err
	}
	if token == "" {
		return models.Credential{}, fmt.Errorf("%w: issuer returned an empty token", shared.ErrAuthentication)
	}

	cred := models.Credential{Token: token, ExpiresAt: start.Add(ttl)}

	b.mu.Lock()
	b.current = cred
	b.mu.Unlock()

	b.logger.Info("access token issued", "expires_at", cred.ExpiresAt.Format(time.RFC3339))
	return cred, nil
}
