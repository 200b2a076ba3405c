package gov

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidNationalID is returned by backend operations for a
// malformed ID.
var ErrInvalidNationalID = errors.New("gov: invalid national ID")

// TravelRecord is the result of a travel-record lookup.
type TravelRecord struct {
	Outside bool `json:"outside"`
}

// RelativeMatch is the result of a relative-matching request.
type RelativeMatch struct {
	Matched  bool   `json:"matched"`
	Relation string `json:"relation,omitempty"`
}

// Channel is an opened secure communication channel.
type Channel struct {
	ID string `json:"channel_id"`
}

// Backend simulates the remote government services with realistic
// response delays. Delays scale with delayScale so tests can run at
// zero latency.
type Backend struct {
	delayScale float64

	mu  sync.Mutex
	rng *rand.Rand
}

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithDelayScale scales the simulated response delays. Zero disables
// them.
func WithDelayScale(scale float64) BackendOption {
	return func(b *Backend) {
		if scale >= 0 {
			b.delayScale = scale
		}
	}
}

// WithRandSeed seeds the acceptance randomness for reproducible runs.
func WithRandSeed(seed int64) BackendOption {
	return func(b *Backend) {
		b.rng = rand.New(rand.NewSource(seed))
	}
}

// NewBackend creates a simulated backend with production-like delays.
func NewBackend(opts ...BackendOption) *Backend {
	b := &Backend{
		delayScale: 1,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// VerifyNafath simulates identity verification through Nafath.
// Verification always succeeds in the demo; only the delay is real.
func (b *Backend) VerifyNafath(ctx context.Context, id string) (bool, error) {
	if !ValidateNationalID(id) {
		return false, ErrInvalidNationalID
	}
	if err := b.wait(ctx, 3*time.Second); err != nil {
		return false, err
	}
	return true, nil
}

// CheckTravelRecord reports whether the ID's holder is currently
// outside the kingdom. IDs ending 0 through 4 are outside.
func (b *Backend) CheckTravelRecord(ctx context.Context, id string) (TravelRecord, error) {
	if !ValidateNationalID(id) {
		return TravelRecord{}, ErrInvalidNationalID
	}
	if err := b.wait(ctx, 300*time.Millisecond); err != nil {
		return TravelRecord{}, err
	}
	last := id[len(id)-1]
	return TravelRecord{Outside: last <= '4'}, nil
}

// MatchRelative checks whether fullName matches a registered relative
// of the ID's holder. Names longer than six characters match.
func (b *Backend) MatchRelative(ctx context.Context, id, fullName string) (RelativeMatch, error) {
	if !ValidateNationalID(id) {
		return RelativeMatch{}, ErrInvalidNationalID
	}
	if err := b.wait(ctx, 1200*time.Millisecond); err != nil {
		return RelativeMatch{}, err
	}
	if len([]rune(strings.TrimSpace(fullName))) > 6 {
		return RelativeMatch{Matched: true, Relation: "الدرجة الأولى"}, nil
	}
	return RelativeMatch{}, nil
}

// SendContactRequest asks the relative for contact permission.
// Acceptance is random at a 60% rate.
func (b *Backend) SendContactRequest(ctx context.Context, id, fullName string) (bool, error) {
	if !ValidateNationalID(id) {
		return false, ErrInvalidNationalID
	}
	if err := b.wait(ctx, 2*time.Second); err != nil {
		return false, err
	}
	b.mu.Lock()
	accepted := b.rng.Float64() < 0.6
	b.mu.Unlock()
	return accepted, nil
}

// OpenSecureChannel opens a channel to the named contact and returns
// its identifier.
func (b *Backend) OpenSecureChannel(ctx context.Context, id, toName string) (Channel, error) {
	if !ValidateNationalID(id) {
		return Channel{}, ErrInvalidNationalID
	}
	if err := b.wait(ctx, 800*time.Millisecond); err != nil {
		return Channel{}, err
	}
	return Channel{ID: "chan_" + uuid.NewString()}, nil
}

// wait sleeps for the scaled delay or until the context is done.
func (b *Backend) wait(ctx context.Context, d time.Duration) error {
	d = time.Duration(float64(d) * b.delayScale)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
