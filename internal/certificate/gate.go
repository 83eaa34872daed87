// Package certificate guards issuance of completion certificates.
package certificate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/typecheck/internal/model"
)

var (
	// ErrAlreadyIssued rejects a second certificate for one attempt.
	ErrAlreadyIssued = rejection{reason: "already issued for this session"}
	// ErrInProgress rejects a request while another one is being saved.
	ErrInProgress = rejection{reason: "issuance already in progress"}
	// ErrNotCompleted rejects a request before the test has finished.
	ErrNotCompleted = rejection{reason: "test not completed"}
	// ErrUnauthenticated rejects a request without a signed-in user.
	ErrUnauthenticated = rejection{reason: "sign in required"}
	// ErrStale is returned when the attempt was reset while saving.
	ErrStale = errors.New("session was reset during issuance")
)

type rejection struct {
	reason string
}

func (r rejection) Error() string {
	return "certificate rejected: " + r.reason
}

func (r rejection) UserMessage() string {
	switch r {
	case ErrAlreadyIssued:
		return "A certificate was already issued for this test. Take a new test to earn another."
	case ErrUnauthenticated:
		return "Sign in (set your email with --email or in the config) to get a certificate."
	case ErrNotCompleted:
		return "Finish the test before requesting a certificate."
	case ErrInProgress:
		return "Your certificate is being issued."
	}
	return "Certificate " + r.reason + "."
}

// PersistError reports a failed certificate write. The attempt may be retried.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save certificate: %v", e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Recoverable reports that the same request may be retried.
func (e *PersistError) Recoverable() bool {
	return true
}

// UserMessage implements the display contract used by session.Message.
func (e *PersistError) UserMessage() string {
	return "Could not save your certificate. Press c to try again."
}

// Store persists certificates.
type Store interface {
	SaveCertificate(ctx context.Context, rec model.CertificateRecord) error
}

// Session is the completed attempt a certificate is issued for.
type Session interface {
	Generation() uint64
	Result() (model.ScoreResult, bool)
	CertificateStatus() model.CertificateStatus
	SetCertificateStatus(generation uint64, status model.CertificateStatus) bool
}

// Ticket is a prepared certificate tied to one attempt.
type Ticket struct {
	Generation uint64
	Record     model.CertificateRecord
}

// Gate issues at most one certificate per completed attempt.
type Gate struct {
	store  Store
	now    func() time.Time
	rnd    *rand.Rand
	logger *zap.Logger
}

// Option customizes a Gate.
type Option func(*Gate)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// WithRand overrides the random source used for certificate numbers.
func WithRand(rnd *rand.Rand) Option {
	return func(g *Gate) { g.rnd = rnd }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// NewGate returns a Gate writing to store.
func NewGate(store Store, opts ...Option) *Gate {
	g := &Gate{
		store:  store,
		now:    time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Issue checks the preconditions, writes the certificate and marks the
// attempt. It runs Prepare, Persist and Settle in sequence.
func (g *Gate) Issue(ctx context.Context, s Session, id *model.Identity) (model.CertificateRecord, error) {
	t, err := g.Prepare(s, id)
	if err != nil {
		return model.CertificateRecord{}, err
	}
	err = g.Persist(ctx, t)
	if serr := g.Settle(s, t, err); serr != nil {
		return model.CertificateRecord{}, serr
	}
	return t.Record, nil
}

// Prepare validates the request and reserves the attempt. The returned
// ticket must be passed to Settle.
func (g *Gate) Prepare(s Session, id *model.Identity) (Ticket, error) {
	if id == nil {
		return Ticket{}, ErrUnauthenticated
	}
	res, ok := s.Result()
	if !ok {
		return Ticket{}, ErrNotCompleted
	}
	switch s.CertificateStatus() {
	case model.CertificateIssued:
		return Ticket{}, ErrAlreadyIssued
	case model.CertificatePending:
		return Ticket{}, ErrInProgress
	}
	gen := s.Generation()
	if !s.SetCertificateStatus(gen, model.CertificatePending) {
		return Ticket{}, ErrNotCompleted
	}
	now := g.now()
	return Ticket{
		Generation: gen,
		Record: model.CertificateRecord{
			Number:          g.number(now),
			UserEmail:       id.Email,
			WPM:             res.WPM,
			AccuracyPercent: res.AccuracyPercent,
			Date:            now.UTC(),
		},
	}, nil
}

// Persist writes the ticket's record. It touches no session state and may
// run off the event loop.
func (g *Gate) Persist(ctx context.Context, t Ticket) error {
	if err := g.store.SaveCertificate(ctx, t.Record); err != nil {
		g.logger.Warn("certificate save failed",
			zap.String("number", t.Record.Number),
			zap.Error(err))
		return &PersistError{Err: err}
	}
	g.logger.Info("certificate issued",
		zap.String("number", t.Record.Number),
		zap.Int("wpm", t.Record.WPM))
	return nil
}

// Settle marks the attempt issued when persistErr is nil, or releases the
// reservation so the request can be retried.
func (g *Gate) Settle(s Session, t Ticket, persistErr error) error {
	status := model.CertificateIssued
	if persistErr != nil {
		status = model.CertificateNone
	}
	if !s.SetCertificateStatus(t.Generation, status) {
		if persistErr != nil {
			return persistErr
		}
		return ErrStale
	}
	return persistErr
}

func (g *Gate) number(now time.Time) string {
	return fmt.Sprintf("CERT-%d-%d", now.UnixMilli(), g.rnd.Intn(10000))
}
