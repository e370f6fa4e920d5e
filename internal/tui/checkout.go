package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/thomas/knits-terminal-go/internal/checkout"
	"github.com/thomas/knits-terminal-go/internal/pricing"
)

// shippingFieldCount is how many of the form fields belong to the
// shipping group. The rest are payment.
const shippingFieldCount = 7

var placeholders = map[string]string{
	"Email":       "john@example.com",
	"First Name":  "John",
	"Last Name":   "Doe",
	"Address":     "123 Main St, Apt 4B",
	"City":        "New York",
	"State":       "NY",
	"ZIP Code":    "10001",
	"Card Number": "1234 5678 9012 3456",
	"Expiry Date": "MM/YY",
	"CVV":         "123",
}

// startCheckout opens the checkout view with a new flow over the cart.
func (m *Model) startCheckout() tea.Cmd {
	m.teardown()

	opts := append([]checkout.Option{
		checkout.WithLogger(m.logger),
		checkout.WithRedirectDelay(m.redirectDelay),
	}, m.checkoutOpts...)

	m.flow = checkout.NewFlow(m.store, opts...)
	m.session.track(m.flow)
	m.formData = &checkout.Form{}
	m.checkoutErr = ""
	m.viewState = ViewCheckout
	return m.buildCheckoutForm()
}

// buildCheckoutForm creates the huh form over formData. Values already
// entered are kept.
func (m *Model) buildCheckoutForm() tea.Cmd {
	fields := m.formData.Fields()

	inputs := make([]huh.Field, 0, len(fields))
	for _, field := range fields {
		input := huh.NewInput().
			Title(field.Label).
			Placeholder(placeholders[field.Label]).
			Value(field.Value)
		if field.Label == "CVV" {
			input = input.EchoMode(huh.EchoModePassword).CharLimit(4)
		}
		inputs = append(inputs, input)
	}

	m.checkoutForm = huh.NewForm(
		huh.NewGroup(inputs[:shippingFieldCount]...).Title("Shipping"),
		huh.NewGroup(inputs[shippingFieldCount:]...).Title("Payment"),
	).
		WithTheme(huh.ThemeCharm()).
		WithShowHelp(false)
	return m.checkoutForm.Init()
}

func (m *Model) updateCheckoutForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.checkoutForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.checkoutForm = f
	}

	if m.checkoutForm.State == huh.StateCompleted {
		return tea.Batch(cmd, m.placeOrder())
	}
	return cmd
}

// placeOrder submits the form. Rejections keep the entered values and
// reopen the form.
func (m *Model) placeOrder() tea.Cmd {
	receipt, err := m.flow.Submit(*m.formData)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			m.checkoutErr = "Please fill in all fields: " + strings.Join(verr.Missing, ", ")
		case errors.Is(err, checkout.ErrEmptyCart):
			m.checkoutErr = "Your cart is empty"
		default:
			m.checkoutErr = err.Error()
		}
		return m.buildCheckoutForm()
	}

	m.receipt = receipt
	m.checkoutErr = ""
	m.checkoutForm = nil
	m.viewState = ViewOrderConfirmation
	return waitForRedirect(m.flow.Redirect())
}

// waitForRedirect reports when the confirmation should close on its own.
// A cancelled redirect yields no message.
func waitForRedirect(r *checkout.Redirect) tea.Cmd {
	if r == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-r.Fired():
			return redirectMsg{redirect: r}
		case <-r.Stopped():
			return nil
		}
	}
}

// finishOrder leaves the confirmation and returns to the shop.
func (m *Model) finishOrder() {
	m.teardown()
	m.flow = nil
	m.formData = nil
	m.checkoutForm = nil
	m.viewState = ViewProductList
}

func (m Model) handleCheckoutKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.store.IsEmpty() {
		switch msg.String() {
		case "enter", "esc", "backspace":
			m.finishOrder()
		case "q":
			m.teardown()
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.String() == "esc" {
		m.teardown()
		m.flow = nil
		m.checkoutForm = nil
		m.openCart()
		m.returnView = ViewProductList
		return m, nil
	}

	if m.checkoutForm == nil {
		return m, nil
	}
	return m, m.updateCheckoutForm(msg)
}

func (m Model) handleOrderConfirmationKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc", "q":
		m.finishOrder()
	}
	return m, nil
}

func (m Model) viewCheckout() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.styles.SectionTitle.Render("Checkout"))
	b.WriteString("\n\n")

	if m.store.IsEmpty() {
		b.WriteString(m.styles.Box.Render(
			m.styles.EmptyState.Render("Your cart is empty") + "\n" +
				m.styles.Subtle.Render("Add some items to your cart to proceed with checkout") + "\n\n" +
				m.styles.Highlight.Render("[ Continue Shopping ]"),
		))
		b.WriteString("\n")
		b.WriteString(m.styles.HelpBar.Render("enter: continue shopping"))
		return b.String()
	}

	if m.checkoutForm != nil {
		b.WriteString(m.checkoutForm.View())
		b.WriteString("\n")
	}

	if m.checkoutErr != "" {
		b.WriteString(m.styles.Error.Render(m.checkoutErr))
		b.WriteString("\n")
	}

	b.WriteString(m.renderOrderSummary(m.flow.Totals(), m.store.ItemCount()))
	b.WriteString("\n")
	b.WriteString(m.styles.HelpBar.Render("tab/enter: next field • shift+tab: previous • esc: back to cart"))

	return b.String()
}

func (m Model) renderOrderSummary(totals pricing.Totals, itemCount int) string {
	lines := []string{
		m.styles.SectionTitle.Render(fmt.Sprintf("Order Summary (%d items)", itemCount)),
		summaryLine("Subtotal", pricing.Format(totals.Subtotal)),
		summaryLine("Shipping", pricing.FormatShipping(totals.Shipping)),
		summaryLine("Tax (8%)", pricing.Format(totals.Tax)),
		m.styles.Total.Render(summaryLine("Total", pricing.Format(totals.GrandTotal))),
	}
	return m.styles.Summary.Render(strings.Join(lines, "\n"))
}

func (m Model) viewOrderConfirmation() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	r := m.receipt
	if r == nil {
		return b.String()
	}

	body := []string{
		m.styles.Success.Bold(true).Render("✓ Order Placed Successfully!"),
		"",
		"Thank you for your purchase. You will receive a confirmation email shortly.",
		"",
		m.styles.Subtle.Render("Order: ") + r.OrderID,
		m.styles.Subtle.Render("Email: ") + r.Email,
	}
	for _, item := range r.Items {
		body = append(body, fmt.Sprintf("  %d × %s (%s / %s)", item.Quantity, item.Name, item.Size, item.Color))
	}

	b.WriteString(m.styles.Box.Render(strings.Join(body, "\n")))
	b.WriteString("\n")
	b.WriteString(m.renderOrderSummary(r.Totals, r.ItemCount))
	b.WriteString("\n")
	b.WriteString(m.styles.HelpBar.Render("Returning to the shop shortly • enter: continue shopping"))

	return b.String()
}
