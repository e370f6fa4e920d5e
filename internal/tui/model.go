package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/thomas/knits-terminal-go/internal/cart"
	"github.com/thomas/knits-terminal-go/internal/catalog"
	"github.com/thomas/knits-terminal-go/internal/checkout"
)

const (
	storeName = "Cozy Knits Co."
	tagline   = "Premium Men's Sweaters"

	flashDuration = 3 * time.Second
)

// ViewState represents the current view in the application.
type ViewState int

const (
	ViewProductList ViewState = iota
	ViewProductDetails
	ViewCart
	ViewCheckout
	ViewOrderConfirmation
	ViewNotFound
)

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the session logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Model) {
		m.logger = logger
	}
}

// WithRedirectDelay sets how long the order confirmation stays up.
func WithRedirectDelay(d time.Duration) Option {
	return func(m *Model) {
		m.redirectDelay = d
	}
}

// WithCheckoutOptions adds options to every checkout flow the model starts.
func WithCheckoutOptions(opts ...checkout.Option) Option {
	return func(m *Model) {
		m.checkoutOpts = append(m.checkoutOpts, opts...)
	}
}

// WithStartProduct opens the detail view for id once the catalog loads.
func WithStartProduct(id int) Option {
	return func(m *Model) {
		m.startProduct = id
	}
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Dependencies
	provider      catalog.Provider
	store         *cart.Store
	logger        *log.Logger
	checkoutOpts  []checkout.Option
	redirectDelay time.Duration

	// View state
	viewState ViewState
	width     int
	height    int
	styles    Styles

	// Catalog
	catalog *catalog.Catalog
	loading bool
	spinner spinner.Model

	// Product list view
	productList list.Model
	searchInput textinput.Model
	showSearch  bool
	category    string
	sortKey     catalog.SortKey
	visible     []catalog.Product

	// Product details view
	selectedProduct *catalog.Product
	selection       *selection
	detailForm      *huh.Form
	detailErr       string
	flash           string
	flashSeq        int
	startProduct    int
	notFoundID      int

	// Cart view
	cartIdx    int
	returnView ViewState

	// Checkout
	session      *session
	flow         *checkout.Flow
	formData     *checkout.Form
	checkoutForm *huh.Form
	checkoutErr  string
	receipt      *checkout.Receipt

	// Error handling
	err error
}

// Messages
type (
	catalogLoadedMsg struct {
		catalog *catalog.Catalog
	}
	flashExpiredMsg struct {
		seq int
	}
	redirectMsg struct {
		redirect *checkout.Redirect
	}
	errMsg struct {
		err error
	}
)

// NewModel creates a storefront model over a catalog provider and the
// session's cart.
func NewModel(provider catalog.Provider, store *cart.Store, opts ...Option) Model {
	styles := DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorHeather)

	ti := textinput.New()
	ti.Placeholder = "Search sweaters..."
	ti.CharLimit = 50
	ti.Width = 30

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(colorHighlight).
		BorderLeftForeground(colorHighlight)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(colorHeather).
		BorderLeftForeground(colorHighlight)

	productList := list.New([]list.Item{}, delegate, 0, 0)
	productList.Title = "Sweaters"
	productList.SetShowHelp(false)
	productList.SetFilteringEnabled(false)
	productList.SetShowStatusBar(false)
	productList.KeyMap.Quit.SetEnabled(false)
	productList.Styles.Title = styles.ListTitle

	m := Model{
		provider:      provider,
		store:         store,
		logger:        log.Default(),
		redirectDelay: checkout.DefaultRedirectDelay,
		viewState:     ViewProductList,
		styles:        styles,
		loading:       true,
		spinner:       sp,
		productList:   productList,
		searchInput:   ti,
		category:      catalog.AllCategories,
		sortKey:       catalog.SortDefault,
		session:       &session{},
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.loadCatalog(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.productList.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case catalogLoadedMsg:
		m.loading = false
		m.err = nil
		m.catalog = msg.catalog
		m.applyFilters()
		if m.startProduct != 0 {
			cmds = append(cmds, m.openProduct(m.startProduct))
			m.startProduct = 0
		}

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}

	case redirectMsg:
		if m.viewState == ViewOrderConfirmation && m.flow != nil && m.flow.Redirect() == msg.redirect {
			m.finishOrder()
		}

	case errMsg:
		m.loading = false
		m.err = msg.err
	}

	// Forms advance through their own messages.
	switch m.viewState {
	case ViewProductDetails:
		if m.detailForm != nil {
			cmds = append(cmds, m.updateDetailForm(msg))
		}
	case ViewCheckout:
		if m.checkoutForm != nil {
			cmds = append(cmds, m.updateCheckoutForm(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.teardown()
		return m, tea.Quit
	}

	switch m.viewState {
	case ViewProductList:
		return m.handleProductListKeys(msg)
	case ViewProductDetails:
		return m.handleProductDetailsKeys(msg)
	case ViewCart:
		return m.handleCartKeys(msg)
	case ViewCheckout:
		return m.handleCheckoutKeys(msg)
	case ViewOrderConfirmation:
		return m.handleOrderConfirmationKeys(msg)
	case ViewNotFound:
		return m.handleNotFoundKeys(msg)
	}

	return m, nil
}

func (m Model) loadCatalog() tea.Cmd {
	provider := m.provider
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		c, err := provider.Load(ctx)
		if err != nil {
			return errMsg{err: fmt.Errorf("loading catalog: %w", err)}
		}
		return catalogLoadedMsg{catalog: c}
	}
}

// session is shared by every copy of a Model, so the checkout flow started
// inside Update can still be reached once the program is gone.
type session struct {
	mu   sync.Mutex
	flow *checkout.Flow
}

func (s *session) track(f *checkout.Flow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flow = f
}

func (s *session) teardown() {
	s.mu.Lock()
	f := s.flow
	s.flow = nil
	s.mu.Unlock()

	if f != nil {
		f.Teardown()
	}
}

// Teardown cancels a pending checkout redirect. It may be called from any
// goroutine on any copy of the model, including after the program exits.
func (m Model) Teardown() {
	if m.session != nil {
		m.session.teardown()
	}
}

// teardown releases anything with a timer behind it.
func (m *Model) teardown() {
	m.Teardown()
}

// View renders the current view.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string

	switch m.viewState {
	case ViewProductList:
		content = m.viewProductList()
	case ViewProductDetails:
		content = m.viewProductDetails()
	case ViewCart:
		content = m.viewCart()
	case ViewCheckout:
		content = m.viewCheckout()
	case ViewOrderConfirmation:
		content = m.viewOrderConfirmation()
	case ViewNotFound:
		content = m.viewNotFound()
	}

	return m.styles.App.Render(content)
}

func (m Model) renderHeader() string {
	title := m.styles.HeaderTitle.Render("🧶 " + storeName)
	tag := m.styles.HeaderTag.Render(tagline)
	badge := m.styles.CartBadge.Render(fmt.Sprintf("🛒 %d", m.store.ItemCount()))

	return m.styles.Header.Render(strings.Join([]string{title, tag, badge}, "  "))
}

// GetSelectedProduct returns the currently selected product (for testing).
func (m Model) GetSelectedProduct() *catalog.Product {
	return m.selectedProduct
}

// GetViewState returns the current view state (for testing).
func (m Model) GetViewState() ViewState {
	return m.viewState
}

// GetReceipt returns the last placed order (for testing).
func (m Model) GetReceipt() *checkout.Receipt {
	return m.receipt
}
