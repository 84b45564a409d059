// Package router is the view state machine of the shopper client. Which views
// are reachable depends only on whether the session holds a token.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/logger"
)

type View string

const (
	ViewLogin   View = "login"
	ViewCatalog View = "catalog"
	ViewCart    View = "cart"
	ViewOrders  View = "orders"
)

var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidTransition = errors.New("invalid view transition")
)

func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewLogin, ViewCatalog, ViewCart, ViewOrders:
		return v, nil
	default:
		return "", fmt.Errorf("%w: unknown view %q", ErrInvalidTransition, s)
	}
}

// Reason says what caused a transition.
type Reason string

const (
	ReasonLogin    Reason = "login"
	ReasonLogout   Reason = "logout"
	ReasonNavigate Reason = "navigate"
)

type Transition struct {
	From   View
	To     View
	Reason Reason
}

type Session interface {
	Token() (string, bool)
	SetToken(ctx context.Context, token string) error
}

// Authenticator logs in and stores the resulting token in the session.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type Router struct {
	mu        sync.Mutex
	view      View
	session   Session
	auth      Authenticator
	observers []func(context.Context, Transition)
	log       *logger.Logger
}

// New starts at the catalog when the session already holds a token and at
// the login view otherwise.
func New(session Session, auth Authenticator, log *logger.Logger) *Router {
	if log == nil {
		log = logger.Discard()
	}
	view := ViewLogin
	if _, ok := session.Token(); ok {
		view = ViewCatalog
	}
	return &Router{view: view, session: session, auth: auth, log: log}
}

// OnTransition registers fn to run after every completed transition.
func (r *Router) OnTransition(fn func(context.Context, Transition)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

// Login is only valid from the login view. On failure the router stays there
// and the error is returned as is.
func (r *Router) Login(ctx context.Context, email, password string) error {
	if r.Current() != ViewLogin {
		return fmt.Errorf("%w: already logged in", ErrInvalidTransition)
	}

	// no lock across the network call
	if _, err := r.auth.Login(ctx, email, password); err != nil {
		r.log.WithError(err).Debug("login failed")
		return err
	}

	r.transition(ctx, ViewCatalog, ReasonLogin)
	return nil
}

// Logout clears the session and returns to the login view from anywhere. If
// the token cannot be cleared the view does not change.
func (r *Router) Logout(ctx context.Context) error {
	if err := r.session.SetToken(ctx, ""); err != nil {
		return err
	}
	r.transition(ctx, ViewLogin, ReasonLogout)
	return nil
}

// Navigate moves among the catalog, cart and orders views. It requires a
// session; the login view is only reached through Logout.
func (r *Router) Navigate(ctx context.Context, to View) error {
	switch to {
	case ViewCatalog, ViewCart, ViewOrders:
	case ViewLogin:
		return fmt.Errorf("%w: use logout to return to login", ErrInvalidTransition)
	default:
		return fmt.Errorf("%w: unknown view %q", ErrInvalidTransition, to)
	}

	if _, ok := r.session.Token(); !ok {
		return ErrNotAuthenticated
	}

	r.transition(ctx, to, ReasonNavigate)
	return nil
}

func (r *Router) transition(ctx context.Context, to View, reason Reason) {
	r.mu.Lock()
	t := Transition{From: r.view, To: to, Reason: reason}
	r.view = to
	observers := make([]func(context.Context, Transition), len(r.observers))
	copy(observers, r.observers)
	r.mu.Unlock()

	r.log.WithField("from", t.From).WithField("to", t.To).WithField("reason", t.Reason).Debug("view changed")
	for _, fn := range observers {
		fn(ctx, t)
	}
}
