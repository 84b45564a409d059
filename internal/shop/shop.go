// Package shop wires the storefront components together from configuration.
package shop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/activity"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/router"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

type Shop struct {
	Session  *session.Store
	Gateway  *gateway.Gateway
	Auth     *auth.Client
	Catalog  *catalog.Search
	Cart     *cart.Controller
	Orders   *orders.Service
	Router   *router.Router
	Registry *prometheus.Registry

	log       *logger.Logger
	publisher activity.Publisher
}

type settings struct {
	backend    session.Backend
	httpClient *http.Client
	registry   *prometheus.Registry
	publisher  activity.Publisher
	log        *logger.Logger
}

type Option func(*settings)

// WithBackend overrides the session backend chosen by configuration.
func WithBackend(b session.Backend) Option {
	return func(s *settings) { s.backend = b }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

func WithRegistry(r *prometheus.Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithPublisher overrides the activity sink chosen by configuration.
func WithPublisher(p activity.Publisher) Option {
	return func(s *settings) { s.publisher = p }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// New opens the session and builds every component. The router's initial
// view reflects whatever token the session backend already holds.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Shop, error) {
	st := &settings{}
	for _, opt := range opts {
		opt(st)
	}
	if st.log == nil {
		st.log = logger.New("storefront", cfg.LogLevel, cfg.LogFormat, os.Stderr)
	}
	if st.registry == nil {
		st.registry = prometheus.NewRegistry()
	}

	backend := st.backend
	if backend == nil {
		var err error
		if backend, err = OpenBackend(ctx, cfg); err != nil {
			return nil, err
		}
	}
	store, err := session.Open(ctx, backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	publisher := st.publisher
	if publisher == nil {
		if publisher, err = OpenPublisher(cfg); err != nil {
			store.Close()
			return nil, err
		}
	}

	gwOpts := []gateway.Option{
		gateway.WithLogger(st.log.Named("gateway")),
		gateway.WithMetrics(metrics.NewGatewayMetrics(st.registry)),
		gateway.WithTimeout(cfg.RequestTimeout),
	}
	if st.httpClient != nil {
		gwOpts = append(gwOpts, gateway.WithHTTPClient(st.httpClient))
	}
	if cfg.BreakerEnabled {
		gwOpts = append(gwOpts, gateway.WithBreaker(cfg.BreakerFailures, cfg.BreakerOpenFor))
	}
	gw := gateway.New(store, gwOpts...)

	s := &Shop{
		Session:   store,
		Gateway:   gw,
		Auth:      auth.NewClient(gw, store, cfg.AuthURL),
		Catalog:   catalog.NewSearch(gw, cfg.CatalogURL),
		Orders:    orders.NewService(gw, cfg.OrderURL),
		Registry:  st.registry,
		log:       st.log,
		publisher: publisher,
	}
	s.Cart = cart.NewController(gw, cfg.CartURL, &publishingCheckout{next: s.Orders, publisher: publisher, log: st.log})
	s.Router = router.New(store, s.Auth, st.log.Named("router"))
	s.Router.OnTransition(s.publishTransition)

	return s, nil
}

// OpenBackend returns the session backend named by cfg.SessionBackend.
func OpenBackend(ctx context.Context, cfg *config.Config) (session.Backend, error) {
	switch strings.ToLower(cfg.SessionBackend) {
	case "", "sqlite":
		b, err := session.NewSQLiteBackend(cfg.SessionPath)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return session.NewRedisBackend(client), nil
	case "memory":
		return session.NewMemoryBackend(""), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

// OpenPublisher returns the activity sink named by cfg.ActivitySink.
func OpenPublisher(cfg *config.Config) (activity.Publisher, error) {
	switch strings.ToLower(cfg.ActivitySink) {
	case "", "none":
		return activity.Nop{}, nil
	case "kafka":
		return activity.NewKafkaPublisher(cfg.KafkaTopic, cfg.Brokers()...), nil
	case "amqp", "rabbitmq":
		p, err := activity.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown activity sink %q", cfg.ActivitySink)
	}
}

// CheckoutNonEmpty refuses to check out an empty cart, then places the order.
// The cart passed in is the one the shopper is looking at.
func (s *Shop) CheckoutNonEmpty(ctx context.Context, current *domain.Cart) (domain.Order, error) {
	if current.IsEmpty() {
		return domain.Order{}, cart.ErrEmptyCart
	}
	return s.Cart.Checkout(ctx)
}

func (s *Shop) Close() error {
	return errors.Join(s.Session.Close(), s.publisher.Close())
}

func (s *Shop) publishTransition(ctx context.Context, t router.Transition) {
	var e activity.Event
	switch t.Reason {
	case router.ReasonLogin:
		e = activity.NewEvent(activity.EventLogin)
	case router.ReasonLogout:
		e = activity.NewEvent(activity.EventLogout)
	default:
		return
	}
	publish(ctx, s.publisher, s.log, e)
}

type publishingCheckout struct {
	next      cart.Checkouter
	publisher activity.Publisher
	log       *logger.Logger
}

func (p *publishingCheckout) Checkout(ctx context.Context) (domain.Order, error) {
	order, err := p.next.Checkout(ctx)
	if err != nil {
		return order, err
	}
	publish(ctx, p.publisher, p.log, activity.NewCheckoutEvent(order.ID))
	return order, nil
}

func publish(ctx context.Context, p activity.Publisher, log *logger.Logger, e activity.Event) {
	if err := p.Publish(ctx, e); err != nil {
		log.WithContext(ctx).WithError(err).WithField("event_type", e.Type).Warn("failed to publish activity event")
	}
}
