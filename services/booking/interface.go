package booking

import (
	"context"
	"sync"
	"time"

	basketRepo "seabook/database/repository/basket"
	bookingRepo "seabook/database/repository/booking"
	catalogRepo "seabook/database/repository/catalog"
	sessionRepo "seabook/database/repository/session"
	"seabook/models"
	"seabook/services/reservation"
	"seabook/services/resilience"

	"go.uber.org/zap"
)

// BookingSessionService drives one reservation attempt through the
// provider's multi-step protocol: price discovery, basket hold, booking
// submission, payment.
type BookingSessionService interface {
	CreateSession(ctx context.Context, comp models.PassengerComposition, cruiseReference string) (*models.BookingSession, error)
	GetSession(ctx context.Context, sessionID string) (*models.BookingSession, error)
	GetCabinGrades(ctx context.Context, sessionID string) ([]models.CabinGradeQuote, error)
	SelectCabin(ctx context.Context, sessionID, gradeID, rateCode, cabinNumber string) (*models.BasketItem, error)
	GetBasket(ctx context.Context, sessionID string) (*models.BasketItem, error)
	CreateBooking(ctx context.Context, sessionID string, passengers []models.Passenger, contact models.ContactDetails) (*models.Booking, error)
	ProcessPayment(ctx context.Context, bookingID string, payment models.PaymentRequest) (*models.Booking, error)
}

// ProviderClient is the outbound surface of the reservation provider used
// by the engine. Satisfied by *reservation.Client.
type ProviderClient interface {
	OpenSession(ctx context.Context, token, cruiseReference string, comp models.PassengerComposition) (string, error)
	ListCabinGrades(ctx context.Context, token, handle string, comp models.PassengerComposition) ([]models.CabinGradeQuote, error)
	AddToBasket(ctx context.Context, token, handle string, sel models.CabinSelection) (*reservation.BasketAddResult, error)
	GetBasket(ctx context.Context, token, handle string) ([]reservation.BasketLine, error)
	CreateBooking(ctx context.Context, token, handle string, passengers []models.Passenger, contact models.ContactDetails) (*reservation.BookingResult, error)
	SubmitPayment(ctx context.Context, token, providerBookingID string, payment models.PaymentRequest) (*reservation.PaymentResult, error)
}

// SessionCache is the fast half of the dual session store.
type SessionCache interface {
	Get(ctx context.Context, id string) (*models.BookingSession, error)
	Set(ctx context.Context, session models.BookingSession, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// QuoteCache holds short-TTL cabin-grade quote sets keyed by cruise
// reference and passenger composition. Population is idempotent.
type QuoteCache interface {
	Get(ctx context.Context, key string) ([]models.CabinGradeQuote, bool, error)
	Set(ctx context.Context, key string, quotes []models.CabinGradeQuote, ttl time.Duration) error
}

// ReconcileEnqueuer queues a reconciliation task when local state diverged
// from the provider after money or holds moved.
type ReconcileEnqueuer interface {
	EnqueueReconcile(payload models.ReconcilePayload) error
}

// DefaultBookingSessionService implements BookingSessionService.
type DefaultBookingSessionService struct {
	Sessions     sessionRepo.SessionRepository
	Bookings     bookingRepo.BookingRepository
	Baskets      basketRepo.BasketSnapshotRepository
	Catalog      catalogRepo.CatalogRepository
	SessionCache SessionCache
	PricingCache QuoteCache
	Provider     ProviderClient
	Exec         *resilience.Executor
	Tasks        ReconcileEnqueuer
	Logger       *zap.Logger

	// SessionLifetime is the provider's fixed session lifetime.
	SessionLifetime time.Duration
	// PricingTTL bounds how long a cached quote set may serve reads.
	PricingTTL time.Duration
	// CommitWindow bounds the age of the fresh quote backing a basket
	// commit. The provider documents no precise staleness window, so this
	// stays configurable.
	CommitWindow time.Duration
	// DesyncRetries is how many extra re-price+commit rounds run after a
	// zero-priced basket response. The basket-add call is not idempotent,
	// so this stays small.
	DesyncRetries int

	locks keyedMutex
}

// keyedMutex serializes mutations per session id so unrelated sessions
// never block each other. Entries are refcounted and removed once the last
// holder unlocks, so the map never grows with the session population.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the lock for key and returns the matching release func.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sessionLock)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sessionLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// held reports how many session locks are currently tracked.
func (k *keyedMutex) held() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

func (s *DefaultBookingSessionService) desyncRetries() int {
	if s.DesyncRetries > 0 {
		return s.DesyncRetries
	}
	return 2
}
