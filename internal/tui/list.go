package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thomas/knits-terminal-go/internal/catalog"
	"github.com/thomas/knits-terminal-go/internal/pricing"
)

// productItem implements list.Item for products.
type productItem struct {
	product catalog.Product
}

func (i productItem) Title() string {
	if i.product.IsBestseller() {
		return i.product.Name + " ★ Bestseller"
	}
	return i.product.Name
}

func (i productItem) Description() string {
	return fmt.Sprintf("%s  ·  %s  ·  ★ %.1f (%d)",
		pricing.Format(i.product.Price),
		i.product.Category,
		i.product.Rating,
		i.product.Reviews,
	)
}

func (i productItem) FilterValue() string { return i.product.Name }

// applyFilters recomputes the visible listing from the catalog and the
// current category, search text and sort key.
func (m *Model) applyFilters() {
	if m.catalog == nil {
		return
	}

	search := strings.TrimSpace(m.searchInput.Value())
	m.visible = catalog.FilterAndSort(m.catalog.Products, m.category, search, m.sortKey)

	items := make([]list.Item, len(m.visible))
	for i, p := range m.visible {
		items[i] = productItem{product: p}
	}
	m.productList.SetItems(items)
	m.productList.ResetSelected()
}

func (m Model) handleProductListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showSearch {
		switch msg.String() {
		case "esc":
			m.showSearch = false
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.applyFilters()
			return m, nil
		case "enter":
			m.showSearch = false
			m.searchInput.Blur()
			return m, nil
		}

		var cmd tea.Cmd
		before := m.searchInput.Value()
		m.searchInput, cmd = m.searchInput.Update(msg)
		if m.searchInput.Value() != before {
			m.applyFilters()
		}
		return m, cmd
	}

	if m.catalog == nil {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "r":
			if m.err != nil {
				m.err = nil
				m.loading = true
				return m, tea.Batch(m.spinner.Tick, m.loadCatalog())
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "/":
		m.showSearch = true
		return m, m.searchInput.Focus()

	case "]", "tab":
		m.category = catalog.NextCategory(m.catalog.Categories, m.category, 1)
		m.applyFilters()
		return m, nil

	case "[", "shift+tab":
		m.category = catalog.NextCategory(m.catalog.Categories, m.category, -1)
		m.applyFilters()
		return m, nil

	case "s":
		m.sortKey = m.sortKey.Next()
		m.applyFilters()
		return m, nil

	case "x":
		m.category = catalog.AllCategories
		m.sortKey = catalog.SortDefault
		m.searchInput.SetValue("")
		m.applyFilters()
		return m, nil

	case "c":
		m.openCart()
		return m, nil

	case "enter":
		if item, ok := m.productList.SelectedItem().(productItem); ok {
			return m, m.openProduct(item.product.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.productList, cmd = m.productList.Update(msg)
	return m, cmd
}

func (m Model) viewProductList() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.loading {
		b.WriteString(fmt.Sprintf("%s Loading sweaters...\n", m.spinner.View()))
		return b.String()
	}

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
		b.WriteString(m.styles.HelpBar.Render("r: retry • q: quit"))
		return b.String()
	}

	b.WriteString(m.renderFilterBar())
	b.WriteString("\n")

	if m.showSearch {
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(m.styles.EmptyState.Render("No products found"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.productList.View())
	}

	b.WriteString("\n")
	if m.showSearch {
		b.WriteString(m.styles.HelpBar.Render("type to search • enter: done • esc: clear"))
	} else {
		b.WriteString(m.styles.HelpBar.Render("↑/↓: navigate • enter: view • [/]: category • s: sort • /: search • x: clear • c: cart • q: quit"))
	}

	return b.String()
}

func (m Model) renderFilterBar() string {
	parts := []string{
		m.styles.FilterLabel.Render("Category:") + " " + m.styles.FilterValue.Render(m.category),
		m.styles.FilterLabel.Render("Sort:") + " " + m.styles.FilterValue.Render(m.sortKey.Label()),
	}
	if search := strings.TrimSpace(m.searchInput.Value()); search != "" && !m.showSearch {
		parts = append(parts, m.styles.FilterLabel.Render("Search:")+" "+m.styles.FilterValue.Render(search))
	}
	parts = append(parts, m.styles.Subtle.Render(fmt.Sprintf("%d products", len(m.visible))))

	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, "   "))
}
