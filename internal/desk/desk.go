// Package desk drives the events page of each open session: it applies view
// transitions, runs event and participant commands against the events API,
// and renders the page model. Session state lives in a Store between calls.
package desk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/eventdesk/internal/auth"
	"github.com/Shivanand-hulikatti/eventdesk/internal/log"
	"github.com/Shivanand-hulikatti/eventdesk/internal/metrics"
	"github.com/Shivanand-hulikatti/eventdesk/internal/model"
	"github.com/Shivanand-hulikatti/eventdesk/internal/session"
)

var (
	// ErrBusy is returned when a command arrives while another command of
	// the same session is still waiting on the events API.
	ErrBusy = errors.New("another command is in progress for this session")

	ErrUnauthenticated = errors.New("unauthenticated")
)

// Gateway is the subset of the events API the desk calls.
type Gateway interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	ListMyEvents(ctx context.Context) ([]model.Event, error)
	ListPublicEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (model.Event, error)
	CreateEvent(ctx context.Context, form model.EventForm) (model.Event, error)
	UpdateEvent(ctx context.Context, id string, form model.EventForm) error
	DeleteEvent(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, eventID, userID string, role model.Role) error
	RemoveParticipant(ctx context.Context, eventID, userID string) error
	ChangeParticipantRole(ctx context.Context, eventID, userID string, role model.Role) error
	ListUsers(ctx context.Context) ([]model.User, error)
}

// GatewayFactory returns a gateway that authenticates with token. An empty
// token yields an anonymous gateway.
type GatewayFactory func(token string) Gateway

// Store persists sessions between requests. Save must fail with
// session.ErrNotFound instead of recreating a session that no longer exists.
type Store interface {
	Create(ctx context.Context, s *session.Session) error
	Load(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
	Delete(ctx context.Context, id string) error
}

// Verifier checks a bearer token and identifies its holder.
type Verifier interface {
	Verify(raw string) (auth.Principal, error)
}

// Desk owns every open session of this process.
type Desk struct {
	store    Store
	gateways GatewayFactory
	verifier Verifier
	log      zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serializes the operations on one session. Only sessions
// known to exist get one.
type sessionLock struct {
	sync.Mutex
	// opened is set when this process opened the session and counted it
	// in the open sessions gauge.
	opened bool
}

// New creates a Desk.
func New(store Store, gateways GatewayFactory, verifier Verifier) *Desk {
	return &Desk{
		store:    store,
		gateways: gateways,
		verifier: verifier,
		log:      log.WithComponent("desk"),
		locks:    make(map[string]*sessionLock),
	}
}

// Open verifies token, creates a session for its holder and loads the
// initial events and users.
func (d *Desk) Open(ctx context.Context, token string) (*Page, error) {
	p, err := d.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	s := session.New(uuid.NewString(), token, p.UserID, p.IsAdmin())
	if err := d.store.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	d.mu.Lock()
	d.locks[s.ID] = &sessionLock{opened: true}
	d.mu.Unlock()
	metrics.DeskSessionsOpen.Inc()
	d.log.Info().Str("session_id", s.ID).Str("viewer", s.ViewerID).Bool("admin", s.Admin).Msg("session opened")

	gw := d.gateways(s.Token)
	d.fetchAll(ctx, s, gw)
	d.fetchUsers(ctx, s, gw)
	if err := d.save(ctx, s); err != nil {
		return nil, err
	}
	return Render(s), nil
}

// Close ends a session. Commands still in flight for it finish against the
// events API but their results are dropped.
func (d *Desk) Close(ctx context.Context, sid string) error {
	if err := d.store.Delete(ctx, sid); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			d.forget(sid)
		}
		return err
	}
	d.forget(sid)
	d.log.Info().Str("session_id", sid).Msg("session closed")
	return nil
}

// Page renders the current page of a session.
func (d *Desk) Page(ctx context.Context, sid string) (*Page, error) {
	s, err := d.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	return Render(s), nil
}

// load reads a session and drops the bookkeeping of one that is gone,
// whether closed elsewhere or expired.
func (d *Desk) load(ctx context.Context, sid string) (*session.Session, error) {
	s, err := d.store.Load(ctx, sid)
	if errors.Is(err, session.ErrNotFound) {
		d.forget(sid)
	}
	return s, err
}

// forget removes the lock of sid. A session opened here also leaves the
// open sessions gauge.
func (d *Desk) forget(sid string) {
	d.mu.Lock()
	l, ok := d.locks[sid]
	delete(d.locks, sid)
	d.mu.Unlock()

	if ok && l.opened {
		metrics.DeskSessionsOpen.Dec()
	}
}

// lockFor returns the lock of sid, creating it only for a session the store
// still holds.
func (d *Desk) lockFor(ctx context.Context, sid string) (*sessionLock, error) {
	d.mu.Lock()
	l, ok := d.locks[sid]
	d.mu.Unlock()
	if ok {
		return l, nil
	}

	if _, err := d.load(ctx, sid); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if l, ok = d.locks[sid]; !ok {
		l = &sessionLock{}
		d.locks[sid] = l
	}
	return l, nil
}

// view runs a local transition on the session. It waits for any command in
// flight and never calls the events API.
func (d *Desk) view(ctx context.Context, sid string, fn func(s *session.Session) error) (*Page, error) {
	lock, err := d.lockFor(ctx, sid)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	s, err := d.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	if err := d.save(ctx, s); err != nil {
		return nil, err
	}
	return Render(s), nil
}

// command runs fn with the session's gateway. Only one command per session
// may be in flight; a second one fails fast with ErrBusy.
func (d *Desk) command(ctx context.Context, sid string, fn func(s *session.Session, gw Gateway)) (*Page, error) {
	lock, err := d.lockFor(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !lock.TryLock() {
		d.log.Debug().Str("session_id", sid).Msg("command rejected while another is in flight")
		return nil, ErrBusy
	}
	defer lock.Unlock()

	s, err := d.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	fn(s, d.gateways(s.Token))
	if err := d.save(ctx, s); err != nil {
		return nil, err
	}
	return Render(s), nil
}

func (d *Desk) save(ctx context.Context, s *session.Session) error {
	err := d.store.Save(ctx, s)
	if errors.Is(err, session.ErrNotFound) {
		d.log.Info().Str("session_id", s.ID).Msg("session closed during command; result dropped")
		d.forget(s.ID)
	}
	return err
}
