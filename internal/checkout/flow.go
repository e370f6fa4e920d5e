package checkout

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/thomas/knits-terminal-go/internal/cart"
	"github.com/thomas/knits-terminal-go/internal/pricing"
)

// DefaultRedirectDelay is how long the confirmation stays on screen.
const DefaultRedirectDelay = 3 * time.Second

// Receipt is the order as it stood when it was placed. It is taken before
// the cart is cleared so the confirmation can show real totals.
type Receipt struct {
	OrderID   string
	PlacedAt  time.Time
	Email     string
	Name      string
	Items     []cart.LineItem
	ItemCount int
	Totals    pricing.Totals
}

// Option configures a Flow.
type Option func(*Flow)

// WithRedirectDelay overrides DefaultRedirectDelay.
func WithRedirectDelay(d time.Duration) Option {
	return func(f *Flow) {
		f.delay = d
	}
}

// WithLogger sets the flow's logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithPlacedHook registers fn to run after an order is placed.
func WithPlacedHook(fn func(Receipt)) Option {
	return func(f *Flow) {
		f.onPlaced = fn
	}
}

// WithRejectedHook registers fn to run when a submission is refused.
func WithRejectedHook(fn func(error)) Option {
	return func(f *Flow) {
		f.onRejected = fn
	}
}

// WithClock overrides time.Now for receipts.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) {
		f.now = now
	}
}

// Flow is a single checkout attempt against a cart. Once an order is placed
// the flow is finished; start a new one for the next order.
type Flow struct {
	store      *cart.Store
	delay      time.Duration
	logger     *log.Logger
	onPlaced   func(Receipt)
	onRejected func(error)
	now        func() time.Time

	mu       sync.Mutex
	receipt  *Receipt
	redirect *Redirect
}

// NewFlow creates a checkout flow for store.
func NewFlow(store *cart.Store, opts ...Option) *Flow {
	f := &Flow{
		store:  store,
		delay:  DefaultRedirectDelay,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Totals returns the current cart's order totals including tax.
func (f *Flow) Totals() pricing.Totals {
	return pricing.Compute(f.store.Subtotal())
}

// Submit validates form and places the order. On success the cart is
// cleared and the redirect timer starts. On failure nothing changes.
func (f *Flow) Submit(form Form) (*Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.receipt != nil {
		return nil, f.reject(ErrAlreadyPlaced)
	}
	items := f.store.Items()
	if len(items) == 0 {
		return nil, f.reject(ErrEmptyCart)
	}
	if err := form.Validate(); err != nil {
		return nil, f.reject(err)
	}

	receipt := &Receipt{
		OrderID:   uuid.NewString(),
		PlacedAt:  f.now(),
		Email:     form.Email,
		Name:      form.FirstName + " " + form.LastName,
		Items:     items,
		ItemCount: f.store.ItemCount(),
		Totals:    pricing.Compute(cart.Subtotal(items)),
	}
	f.store.Clear()
	f.receipt = receipt
	f.redirect = NewRedirect(f.delay)

	f.logger.Info("order placed",
		"order", receipt.OrderID,
		"items", receipt.ItemCount,
		"total", pricing.Format(receipt.Totals.GrandTotal),
	)
	if f.onPlaced != nil {
		f.onPlaced(*receipt)
	}
	return receipt, nil
}

// Placed reports whether an order has been placed.
func (f *Flow) Placed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt != nil
}

// Receipt returns the placed order, or nil.
func (f *Flow) Receipt() *Receipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt
}

// Redirect returns the pending redirect, or nil before an order is placed.
func (f *Flow) Redirect() *Redirect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.redirect
}

// Teardown cancels a pending redirect. Call it when the confirmation view
// goes away.
func (f *Flow) Teardown() {
	f.mu.Lock()
	r := f.redirect
	f.mu.Unlock()

	if r != nil && r.Cancel() {
		f.logger.Debug("redirect canceled")
	}
}

func (f *Flow) reject(err error) error {
	f.logger.Debug("checkout rejected", "err", err)
	if f.onRejected != nil {
		f.onRejected(err)
	}
	return err
}
