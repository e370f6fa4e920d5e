package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thomas/knits-terminal-go/internal/pricing"
)

// openCart shows the cart panel, remembering where to return to.
func (m *Model) openCart() {
	if m.viewState != ViewCart {
		m.returnView = m.viewState
	}
	m.viewState = ViewCart
	m.cartIdx = 0
	m.store.SetPanelVisible(true)
}

// closeCart hides the cart panel and goes back to the previous view.
func (m *Model) closeCart() {
	m.store.SetPanelVisible(false)
	m.viewState = m.returnView
	if m.viewState == ViewProductDetails && m.selectedProduct == nil {
		m.viewState = ViewProductList
	}
}

func (m Model) handleCartKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.store.Items()

	switch msg.String() {
	case "esc", "backspace", "s":
		m.closeCart()
		return m, nil

	case "q":
		m.teardown()
		return m, tea.Quit

	case "up", "k":
		if m.cartIdx > 0 {
			m.cartIdx--
		}

	case "down", "j":
		if m.cartIdx < len(items)-1 {
			m.cartIdx++
		}

	case "+", "=", "right", "l":
		if m.cartIdx < len(items) {
			item := items[m.cartIdx]
			m.store.SetQuantity(item.ID, item.Size, item.Color, item.Quantity+1)
		}

	case "-", "left", "h":
		if m.cartIdx < len(items) {
			item := items[m.cartIdx]
			m.store.SetQuantity(item.ID, item.Size, item.Color, item.Quantity-1)
			m.clampCartIdx()
		}

	case "d", "delete", "x":
		if m.cartIdx < len(items) {
			item := items[m.cartIdx]
			m.store.Remove(item.ID, item.Size, item.Color)
			m.clampCartIdx()
		}

	case "o", "enter":
		if !m.store.IsEmpty() {
			m.store.SetPanelVisible(false)
			return m, m.startCheckout()
		}
	}

	return m, nil
}

func (m *Model) clampCartIdx() {
	if n := m.store.Len(); m.cartIdx >= n {
		m.cartIdx = n - 1
	}
	if m.cartIdx < 0 {
		m.cartIdx = 0
	}
}

func (m Model) viewCart() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	items := m.store.Items()
	b.WriteString(m.styles.SectionTitle.Render(fmt.Sprintf("Shopping Cart (%d)", len(items))))
	b.WriteString("\n\n")

	if len(items) == 0 {
		b.WriteString(m.styles.EmptyState.Render("Your cart is empty"))
		b.WriteString("\n")
		b.WriteString(m.styles.HelpBar.Render("esc: continue shopping • q: quit"))
		return b.String()
	}

	for i, item := range items {
		cursor := "  "
		nameStyle := lipgloss.NewStyle()
		if i == m.cartIdx {
			cursor = m.styles.Highlight.Render("▸ ")
			nameStyle = m.styles.Highlight
		}

		b.WriteString(cursor)
		b.WriteString(nameStyle.Render(item.Name))
		b.WriteString("\n    ")
		b.WriteString(m.styles.Subtle.Render(fmt.Sprintf("%s / %s", item.Size, item.Color)))
		b.WriteString(fmt.Sprintf("   %d × %s = ", item.Quantity, pricing.Format(item.Price)))
		b.WriteString(m.styles.ProductPrice.Render(pricing.Format(item.Total())))
		b.WriteString("\n")
	}

	totals := pricing.Compute(m.store.Subtotal())
	b.WriteString(m.renderCartSummary(totals))
	b.WriteString("\n")

	b.WriteString(m.styles.HelpBar.Render("↑/↓: select • +/-: quantity • d: remove • o: checkout • esc: back"))

	return b.String()
}

func (m Model) renderCartSummary(totals pricing.Totals) string {
	lines := []string{
		summaryLine("Subtotal", pricing.Format(totals.Subtotal)),
		summaryLine("Shipping", pricing.FormatShipping(totals.Shipping)),
		m.styles.Total.Render(summaryLine("Total", pricing.Format(totals.PreTaxTotal()))),
	}

	if remaining := pricing.AmountToFreeShipping(totals.Subtotal); remaining.IsPositive() {
		lines = append(lines, "", m.styles.Subtle.Render(
			fmt.Sprintf("Add %s more for free shipping", pricing.Format(remaining)),
		))
	} else {
		lines = append(lines, "", m.styles.Success.Render("You qualify for free shipping!"))
	}

	return m.styles.Summary.Render(strings.Join(lines, "\n"))
}

func summaryLine(label, value string) string {
	return fmt.Sprintf("%-12s %10s", label, value)
}
