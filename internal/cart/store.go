// Package cart holds a customer's shopping cart and persists it to a
// key-value store after every change.
package cart

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/thomas/knits-terminal-go/internal/catalog"
	"github.com/thomas/knits-terminal-go/internal/storage"
)

// StorageKey is the key the serialized line items are written under.
const StorageKey = "cart"

// Key identifies a line item. A cart never holds two items with the same key.
type Key struct {
	ProductID int
	Size      string
	Color     string
}

// String renders the key for logs.
func (k Key) String() string {
	return fmt.Sprintf("%d/%s/%s", k.ProductID, k.Size, k.Color)
}

// LineItem is one (product, size, color) selection with a quantity.
type LineItem struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
	Quantity int             `json:"quantity"`
}

// Key returns the item's uniqueness key.
func (i LineItem) Key() Key {
	return Key{ProductID: i.ID, Size: i.Size, Color: i.Color}
}

// Total returns price × quantity.
func (i LineItem) Total() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Op names the mutation that produced an Event.
type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
)

// Event describes an effective change to the cart. Items is a snapshot of
// the cart after the change.
type Event struct {
	Op    Op
	Key   Key
	Items []LineItem
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence problems.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store is a session's cart. Mutations are persisted synchronously and
// announced to subscribers.
type Store struct {
	mu           sync.Mutex
	items        []LineItem
	panelVisible bool

	kv     storage.KV
	logger *log.Logger

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewStore creates a store backed by kv and rehydrates any cart saved in it.
// A missing or unreadable saved cart yields an empty store.
func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.items = s.load()
	return s
}

// Add puts quantity units of the product in the given size and color into
// the cart, merging with an existing line item for the same selection.
// Quantities below one are treated as one.
func (s *Store) Add(product catalog.Product, size, color string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	key := Key{ProductID: product.ID, Size: size, Color: color}

	s.mu.Lock()
	if i := s.indexOf(key); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, LineItem{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			Image:    product.Image,
			Size:     size,
			Color:    color,
			Quantity: quantity,
		})
	}
	s.commit(OpAdd, key)
}

// SetQuantity replaces the quantity of a line item. A quantity of zero or
// less removes it. Unknown keys are ignored.
func (s *Store) SetQuantity(productID int, size, color string, quantity int) {
	if quantity <= 0 {
		s.Remove(productID, size, color)
		return
	}
	key := Key{ProductID: productID, Size: size, Color: color}

	s.mu.Lock()
	i := s.indexOf(key)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items[i].Quantity = quantity
	s.commit(OpUpdate, key)
}

// Remove deletes a line item if present.
func (s *Store) Remove(productID int, size, color string) {
	key := Key{ProductID: productID, Size: size, Color: color}

	s.mu.Lock()
	i := s.indexOf(key)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.commit(OpRemove, key)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.commit(OpClear, Key{})
}

// Items returns a copy of the line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Lookup returns the line item for key.
func (s *Store) Lookup(key Key) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(key); i >= 0 {
		return s.items[i], true
	}
	return LineItem{}, false
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// IsEmpty reports whether the cart has no items.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// ItemCount returns the total quantity across all line items.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns Σ price × quantity.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subtotal(s.items)
}

// SetPanelVisible shows or hides the cart panel. Not persisted.
func (s *Store) SetPanelVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelVisible = visible
}

// PanelVisible reports whether the cart panel is open.
func (s *Store) PanelVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panelVisible
}

// Subscribe registers fn to be called after every effective mutation.
// Callbacks run synchronously on the mutating goroutine, in the order they
// subscribed. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool {
			return sub.id == id
		})
	}
}

// Subtotal sums price × quantity over items.
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Total())
	}
	return total
}

// Encode serializes items to the persisted format.
func Encode(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// Decode parses the persisted format. Items with a non-positive quantity
// are dropped and duplicate keys are merged into the first occurrence.
func Decode(data []byte) ([]LineItem, error) {
	var raw []LineItem
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}

	items := make([]LineItem, 0, len(raw))
	index := make(map[Key]int, len(raw))
	for _, item := range raw {
		if item.Quantity <= 0 {
			continue
		}
		if i, ok := index[item.Key()]; ok {
			items[i].Quantity += item.Quantity
			continue
		}
		index[item.Key()] = len(items)
		items = append(items, item)
	}
	return items, nil
}

// commit persists the cart, releases the lock and notifies subscribers.
// Callers must hold s.mu.
func (s *Store) commit(op Op, key Key) {
	items := s.snapshot()
	subs := slices.Clone(s.subs)
	s.persist(items)
	s.mu.Unlock()

	event := Event{Op: op, Key: key, Items: items}
	for _, sub := range subs {
		sub.fn(event)
	}
}

func (s *Store) persist(items []LineItem) {
	data, err := Encode(items)
	if err != nil {
		s.logger.Warn("encoding cart", "err", err)
		return
	}
	if err := s.kv.Put(StorageKey, data); err != nil {
		s.logger.Warn("saving cart", "err", err)
	}
}

func (s *Store) load() []LineItem {
	data, ok, err := s.kv.Get(StorageKey)
	if err != nil {
		s.logger.Warn("reading saved cart", "err", err)
		return nil
	}
	if !ok {
		return nil
	}

	items, err := Decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable saved cart", "err", err)
		return nil
	}
	s.logger.Debug("restored cart", "items", len(items))
	return items
}

func (s *Store) indexOf(key Key) int {
	for i := range s.items {
		if s.items[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}
