package booking

import (
	"context"
	"sync"
	"time"

	"seabook/models"
	"seabook/services/reservation"
	"seabook/services/resilience"

	"go.uber.org/zap"
)

type fakeSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]models.BookingSession
	createErr error
	updateErr error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]models.BookingSession)}
}

func (r *fakeSessionRepo) Create(ctx context.Context, session models.BookingSession) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id string) (*models.BookingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session models.BookingSession) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

func (r *fakeSessionRepo) stored(id string) models.BookingSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[string]models.Booking
	createErr error
	updateErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking models.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	return &booking, nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if ok {
		booking.Status = status
		r.bookings[id] = booking
	}
	return nil
}

func (r *fakeBookingRepo) SetPayment(ctx context.Context, id string, payment models.PaymentSummary, status string) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if ok {
		booking.Payment = &payment
		booking.Status = status
		r.bookings[id] = booking
	}
	return nil
}

func (r *fakeBookingRepo) stored(id string) models.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id]
}

type fakeBasketRepo struct {
	mu        sync.Mutex
	snapshots map[string]models.BasketItem
	saveErr   error
}

func newFakeBasketRepo() *fakeBasketRepo {
	return &fakeBasketRepo{snapshots: make(map[string]models.BasketItem)}
}

func (r *fakeBasketRepo) Save(ctx context.Context, item models.BasketItem) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[item.SessionID] = item
	return nil
}

func (r *fakeBasketRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.BasketItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.snapshots[sessionID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

type fakeCatalog struct {
	cruises map[string]models.CruiseSummary
}

func (c *fakeCatalog) SearchCruiseByReference(ctx context.Context, cruiseReference string) (*models.CruiseSummary, error) {
	summary, ok := c.cruises[cruiseReference]
	if !ok {
		return nil, nil
	}
	return &summary, nil
}

type memSessionCache struct {
	mu      sync.Mutex
	entries map[string]models.BookingSession
	sets    int
	deletes int
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{entries: make(map[string]models.BookingSession)}
}

func (c *memSessionCache) Get(ctx context.Context, id string) (*models.BookingSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	session, ok := c.entries[id]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

func (c *memSessionCache) Set(ctx context.Context, session models.BookingSession, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[session.ID] = session
	c.sets++
	return nil
}

func (c *memSessionCache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.deletes++
	return nil
}

type memQuoteCache struct {
	mu      sync.Mutex
	entries map[string][]models.CabinGradeQuote
	sets    int
}

func newMemQuoteCache() *memQuoteCache {
	return &memQuoteCache{entries: make(map[string][]models.CabinGradeQuote)}
}

func (c *memQuoteCache) Get(ctx context.Context, key string) ([]models.CabinGradeQuote, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	quotes, ok := c.entries[key]
	return quotes, ok, nil
}

func (c *memQuoteCache) Set(ctx context.Context, key string, quotes []models.CabinGradeQuote, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = quotes
	c.sets++
	return nil
}

// fakeProvider implements ProviderClient with overridable behavior per call
// and per-call counters.
type fakeProvider struct {
	mu sync.Mutex

	openSessionFn   func() (string, error)
	listGradesFn    func() ([]models.CabinGradeQuote, error)
	addToBasketFn   func() (*reservation.BasketAddResult, error)
	getBasketFn     func() ([]reservation.BasketLine, error)
	createBookingFn func() (*reservation.BookingResult, error)
	submitPaymentFn func() (*reservation.PaymentResult, error)

	openCalls    int
	gradesCalls  int
	addCalls     int
	basketCalls  int
	bookingCalls int
	paymentCalls int
}

func (p *fakeProvider) OpenSession(ctx context.Context, token, cruiseReference string, comp models.PassengerComposition) (string, error) {
	p.mu.Lock()
	p.openCalls++
	fn := p.openSessionFn
	p.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return "handle-1", nil
}

func (p *fakeProvider) ListCabinGrades(ctx context.Context, token, handle string, comp models.PassengerComposition) ([]models.CabinGradeQuote, error) {
	p.mu.Lock()
	p.gradesCalls++
	fn := p.listGradesFn
	p.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return defaultQuotes(), nil
}

func (p *fakeProvider) AddToBasket(ctx context.Context, token, handle string, sel models.CabinSelection) (*reservation.BasketAddResult, error) {
	p.mu.Lock()
	p.addCalls++
	fn := p.addToBasketFn
	p.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return &reservation.BasketAddResult{ItemKey: "item-1", TotalPrice: 899.00, Currency: "USD"}, nil
}

func (p *fakeProvider) GetBasket(ctx context.Context, token, handle string) ([]reservation.BasketLine, error) {
	p.mu.Lock()
	p.basketCalls++
	fn := p.getBasketFn
	p.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return []reservation.BasketLine{{ItemKey: "item-1", GradeID: "BAL", TotalPrice: 899.00, Currency: "USD"}}, nil
}

func (p *fakeProvider) CreateBooking(ctx context.Context, token, handle string, passengers []models.Passenger, contact models.ContactDetails) (*reservation.BookingResult, error) {
	p.mu.Lock()
	p.bookingCalls++
	fn := p.createBookingFn
	p.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return &reservation.BookingResult{ProviderBookingID: "PB-1", TotalAmount: 899.00, DepositAmount: 250.00, Currency: "USD"}, nil
}

func (p *fakeProvider) SubmitPayment(ctx context.Context, token, providerBookingID string, payment models.PaymentRequest) (*reservation.PaymentResult, error) {
	p.mu.Lock()
	p.paymentCalls++
	fn := p.submitPaymentFn
	p.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return &reservation.PaymentResult{Reference: "PAY-1", Status: reservation.PaymentAccepted}, nil
}

func defaultQuotes() []models.CabinGradeQuote {
	return []models.CabinGradeQuote{
		{GradeID: "INS", RateCode: "BESTFARE", CabinType: "inside", TotalPrice: 599.00, PerPersonPrice: 299.50, Currency: "USD"},
		{GradeID: "BAL", RateCode: "BESTFARE", CabinType: "balcony", TotalPrice: 899.00, PerPersonPrice: 449.50, Currency: "USD"},
	}
}

type fakeTokens struct{}

func (fakeTokens) GetToken(ctx context.Context) (string, error) { return "tok", nil }
func (fakeTokens) Invalidate()                                  {}

type fakeTasks struct {
	mu       sync.Mutex
	payloads []models.ReconcilePayload
	err      error
}

func (t *fakeTasks) EnqueueReconcile(payload models.ReconcilePayload) error {
	if t.err != nil {
		return t.err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.payloads = append(t.payloads, payload)
	return nil
}

func (t *fakeTasks) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.payloads)
}

type testEnv struct {
	svc        *DefaultBookingSessionService
	sessions   *fakeSessionRepo
	bookings   *fakeBookingRepo
	baskets    *fakeBasketRepo
	catalog    *fakeCatalog
	sessCache  *memSessionCache
	quoteCache *memQuoteCache
	provider   *fakeProvider
	tasks      *fakeTasks
}

const testCruise = "CR-1001"

func newTestEnv() *testEnv {
	env := &testEnv{
		sessions:   newFakeSessionRepo(),
		bookings:   newFakeBookingRepo(),
		baskets:    newFakeBasketRepo(),
		catalog:    &fakeCatalog{cruises: map[string]models.CruiseSummary{testCruise: {CruiseReference: testCruise, Name: "Western Caribbean", Nights: 7}}},
		sessCache:  newMemSessionCache(),
		quoteCache: newMemQuoteCache(),
		provider:   &fakeProvider{},
		tasks:      &fakeTasks{},
	}
	env.svc = &DefaultBookingSessionService{
		Sessions:     env.sessions,
		Bookings:     env.bookings,
		Baskets:      env.baskets,
		Catalog:      env.catalog,
		SessionCache: env.sessCache,
		PricingCache: env.quoteCache,
		Provider:     env.provider,
		Exec: &resilience.Executor{
			Tokens:      fakeTokens{},
			Logger:      zap.NewNop(),
			MaxRetries:  2,
			BackoffBase: time.Millisecond,
		},
		Tasks:           env.tasks,
		Logger:          zap.NewNop(),
		SessionLifetime: 40 * time.Minute,
		PricingTTL:      5 * time.Minute,
		CommitWindow:    time.Minute,
		DesyncRetries:   2,
	}
	return env
}

// seedSession plants a session in both halves of the store, bypassing the
// provider.
func (env *testEnv) seedSession(session models.BookingSession) {
	env.sessions.sessions[session.ID] = session
	env.sessCache.entries[session.ID] = session
}

func basketedSession(id string) models.BookingSession {
	now := time.Now()
	item := models.BasketItem{
		ItemKey:         "item-1",
		SessionID:       id,
		CruiseReference: testCruise,
		SelectedCabin:   models.CabinSelection{GradeID: "BAL", RateCode: "BESTFARE", CabinType: "balcony"},
		CommittedPrice:  899.00,
		Currency:        "USD",
		CommittedAt:     now,
	}
	return models.BookingSession{
		ID:                    id,
		ProviderSessionHandle: "handle-1",
		CruiseReference:       testCruise,
		Passengers:            models.PassengerComposition{Adults: 2},
		SelectedCabin:         &item.SelectedCabin,
		Basket:                &item,
		State:                 models.SessionBasketed,
		CreatedAt:             now,
		ExpiresAt:             now.Add(40 * time.Minute),
	}
}
