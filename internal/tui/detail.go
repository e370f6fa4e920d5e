package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/thomas/knits-terminal-go/internal/catalog"
	"github.com/thomas/knits-terminal-go/internal/pricing"
)

const maxQuantity = 10

// selection is bound to the detail form fields.
type selection struct {
	Size     string
	Color    string
	Quantity int
}

// openProduct moves to the detail view for id, or to the not found view
// when the catalog has no such product.
func (m *Model) openProduct(id int) tea.Cmd {
	if m.catalog == nil {
		return nil
	}

	product, err := m.catalog.Find(id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		m.selectedProduct = nil
		m.notFoundID = id
		m.viewState = ViewNotFound
		return nil
	}

	m.selectedProduct = &product
	m.flash = ""
	m.detailErr = ""
	m.viewState = ViewProductDetails
	return m.resetDetailForm()
}

// resetDetailForm starts a fresh selection with the first size and color
// preselected and a quantity of one.
func (m *Model) resetDetailForm() tea.Cmd {
	p := m.selectedProduct
	sel := &selection{Quantity: 1}
	if len(p.Sizes) > 0 {
		sel.Size = p.Sizes[0]
	}
	if len(p.Colors) > 0 {
		sel.Color = p.Colors[0]
	}
	m.selection = sel

	var fields []huh.Field
	if len(p.Sizes) > 0 {
		fields = append(fields, huh.NewSelect[string]().
			Title("Size").
			Options(huh.NewOptions(p.Sizes...)...).
			Value(&sel.Size).
			Inline(true))
	}
	if len(p.Colors) > 0 {
		fields = append(fields, huh.NewSelect[string]().
			Title("Color").
			Options(huh.NewOptions(p.Colors...)...).
			Value(&sel.Color).
			Inline(true))
	}

	quantities := make([]huh.Option[int], 0, maxQuantity)
	for q := 1; q <= maxQuantity; q++ {
		quantities = append(quantities, huh.NewOption(strconv.Itoa(q), q))
	}
	fields = append(fields, huh.NewSelect[int]().
		Title("Quantity").
		Options(quantities...).
		Value(&sel.Quantity).
		Inline(true))

	m.detailForm = huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(huh.ThemeCharm()).
		WithShowHelp(false)
	return m.detailForm.Init()
}

func (m *Model) updateDetailForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.detailForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.detailForm = f
	}

	if m.detailForm.State == huh.StateCompleted {
		return tea.Batch(cmd, m.addSelectionToCart())
	}
	return cmd
}

// addSelectionToCart puts the current selection in the cart, shows a
// short confirmation and starts over with a fresh selection.
func (m *Model) addSelectionToCart() tea.Cmd {
	p := m.selectedProduct
	sel := m.selection
	if p == nil || sel == nil {
		return nil
	}

	if len(p.Sizes) > 0 && !p.HasSize(sel.Size) {
		m.detailErr = "Please choose a size"
		return m.resetDetailForm()
	}
	if len(p.Colors) > 0 && !p.HasColor(sel.Color) {
		m.detailErr = "Please choose a color"
		return m.resetDetailForm()
	}

	m.store.Add(*p, sel.Size, sel.Color, sel.Quantity)
	m.logger.Debug("added to cart", "product", p.ID, "size", sel.Size, "color", sel.Color, "qty", sel.Quantity)

	m.detailErr = ""
	m.flash = "Added to cart!"
	m.flashSeq++
	seq := m.flashSeq

	return tea.Batch(
		m.resetDetailForm(),
		tea.Tick(flashDuration, func(time.Time) tea.Msg {
			return flashExpiredMsg{seq: seq}
		}),
	)
}

func (m Model) handleProductDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewState = ViewProductList
		m.selectedProduct = nil
		m.detailForm = nil
		m.flash = ""
		return m, nil
	case "c":
		m.openCart()
		return m, nil
	}

	if m.detailForm == nil {
		return m, nil
	}
	return m, m.updateDetailForm(msg)
}

func (m Model) viewProductDetails() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	p := m.selectedProduct
	if p == nil {
		return b.String()
	}

	name := m.styles.ProductName.Render(p.Name)
	if p.IsBestseller() {
		name += " " + m.styles.Bestseller.Render("Bestseller")
	}
	b.WriteString(name)
	b.WriteString("\n")
	b.WriteString(m.styles.ProductCategory.Render(p.Category))
	b.WriteString("\n\n")

	b.WriteString(m.styles.ProductPrice.Render(pricing.Format(p.Price)))
	b.WriteString("  ")
	b.WriteString(m.styles.Rating.Render(fmt.Sprintf("%s %.1f", stars(p.Rating), p.Rating)))
	b.WriteString(m.styles.Subtle.Render(fmt.Sprintf(" (%d reviews)", p.Reviews)))
	b.WriteString("\n")

	if desc := catalog.PlainText(p.Description); desc != "" {
		width := m.width - 8
		if width < 20 {
			width = 60
		}
		b.WriteString(m.styles.ProductDescription.Width(width).Render(desc))
		b.WriteString("\n")
	}

	if m.detailForm != nil {
		b.WriteString(m.detailForm.View())
		b.WriteString("\n")
	}

	if m.detailErr != "" {
		b.WriteString(m.styles.Error.Render(m.detailErr))
		b.WriteString("\n")
	}
	if m.flash != "" {
		b.WriteString(m.styles.Flash.Render("✓ " + m.flash))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.HelpBar.Render("←/→: change • enter: next / add to cart • c: cart • esc: back"))

	return b.String()
}

func (m Model) handleNotFoundKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "enter", "backspace":
		m.viewState = ViewProductList
		return m, nil
	}
	return m, nil
}

func (m Model) viewNotFound() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.styles.Box.Render(
		m.styles.Error.Render("Product not found") + "\n\n" +
			m.styles.Subtle.Render(fmt.Sprintf("There is no sweater with id %d.", m.notFoundID)),
	))
	b.WriteString("\n")
	b.WriteString(m.styles.HelpBar.Render("enter: back to shop • q: quit"))

	return b.String()
}

// stars renders a rating out of five as filled and empty stars.
func stars(rating float64) string {
	full := int(rating + 0.5)
	if full > 5 {
		full = 5
	}
	if full < 0 {
		full = 0
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}
