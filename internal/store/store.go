// Package store owns the single in-memory document for the process lifetime.
//
// Every reader gets a deep-copied snapshot and every writer goes through a
// granular mutator, so no caller ever holds a live reference into the owned
// document. Persistence is best effort: a failed save leaves the in-memory
// state authoritative until the next successful one.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"fintrack/internal/core"
)

// ThemeDetector senses the environment's preferred theme for a fresh
// dataset. It is only consulted when no stored document exists.
type ThemeDetector func() string

type Store struct {
	mu          sync.Mutex
	backend     Backend
	log         *slog.Logger
	detectTheme ThemeDetector
	doc         core.Document
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.log = logger }
}

func WithThemeDetector(detect ThemeDetector) Option {
	return func(s *Store) { s.detectTheme = detect }
}

// New creates a store over the given persistence backend. The document
// starts at defaults; call Load to pick up previously saved data.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.doc = s.defaultDocument()
	return s
}

func (s *Store) defaultDocument() core.Document {
	doc := core.DefaultDocument()
	if s.detectTheme != nil && s.detectTheme() == core.ThemeDark {
		doc.Settings.Theme = core.ThemeDark
	}
	return doc
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Load reads the persisted document and merges it field by field over
// defaults. A corrupt or unreadable record is discarded and replaced by
// defaults; the returned error is recoverable and only exists so the caller
// can notify the user. Transient view state always resets.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.backend.Read(ctx)
	if err != nil {
		s.doc = s.defaultDocument()
		if err == ErrNoDocument {
			s.log.Info("no saved document, starting from defaults")
			return nil
		}
		return fmt.Errorf("read document: %w", err)
	}

	raw, err := decodeRaw(data)
	if err != nil || !raw.recognizable() {
		// Drop the bad record so the next load starts clean.
		if delErr := s.backend.Delete(ctx); delErr != nil {
			s.log.Warn("failed to discard corrupt document", "error", delErr)
		}
		s.doc = s.defaultDocument()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		return ErrCorruptData
	}

	s.doc = merge(raw, s.defaultDocument())
	s.log.Info("document loaded",
		"transactions", len(s.doc.Transactions),
		"goals", len(s.doc.Goals),
		"notes", len(s.doc.Notes))
	return nil
}

// Save serializes the persistent subset of the document. A failure is
// reported but never alters in-memory state.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	data, err := json.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// DecodeBackup parses and validates raw backup bytes into a fully merged
// document without touching any store. The same default-filling rules as
// Load apply; an unrecognizable shape is an error and nothing is mutated.
func DecodeBackup(data []byte) (core.Document, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return core.Document{}, fmt.Errorf("parse backup: %w", err)
	}
	if !raw.recognizable() {
		return core.Document{}, ErrCorruptData
	}
	return merge(raw, core.DefaultDocument()), nil
}

// Restore replaces the current document with a previously decoded backup
// and persists it. Confirmation of the overwrite is the caller's job and
// must happen before this is reached.
func (s *Store) Restore(ctx context.Context, doc core.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.UITransient = core.DefaultTransient()
	s.doc = doc.Clone()
	return s.saveLocked(ctx)
}

// ClearAll erases persisted storage and resets the document to defaults,
// preserving only the current theme choice. The cleared state is saved so
// it survives the next load. Confirmation is the caller's job.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	theme := s.doc.Settings.Theme
	if err := s.backend.Delete(ctx); err != nil && err != ErrNoDocument {
		s.log.Warn("failed to erase stored document", "error", err)
	}
	s.doc = s.defaultDocument()
	s.doc.Settings.Theme = theme
	return s.saveLocked(ctx)
}

// --- Transactions ---

func (s *Store) AddTransaction(t core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Transactions = append(s.doc.Transactions, t)
}

// UpdateTransaction replaces the stored record with the same id. The
// original creation timestamp is preserved when the replacement leaves it
// unset.
func (s *Store) UpdateTransaction(t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.doc.Transactions {
		if existing.ID == t.ID {
			if t.Timestamp == 0 {
				t.Timestamp = existing.Timestamp
			}
			s.doc.Transactions[i] = t
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", t.ID, ErrNotFound)
}

func (s *Store) DeleteTransaction(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.doc.Transactions {
		if t.ID == id {
			s.doc.Transactions = append(s.doc.Transactions[:i], s.doc.Transactions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
}

// --- Goals ---

func (s *Store) AddGoal(g core.SavingsGoal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Goals = append(s.doc.Goals, g)
}

func (s *Store) DeleteGoal(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.doc.Goals {
		if g.ID == id {
			s.doc.Goals = append(s.doc.Goals[:i], s.doc.Goals[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("goal %s: %w", id, ErrNotFound)
}

// --- Notes ---

func (s *Store) AddNote(n core.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Notes = append(s.doc.Notes, n)
}

func (s *Store) DeleteNote(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.doc.Notes {
		if n.ID == id {
			s.doc.Notes = append(s.doc.Notes[:i], s.doc.Notes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("note %s: %w", id, ErrNotFound)
}

// --- Budgets ---

// SetOverallBudget stores the overall monthly cap. A nil, NaN, or negative
// amount removes the cap instead of storing an invalid entry.
func (s *Store) SetOverallBudget(amount *float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount == nil || math.IsNaN(*amount) || *amount < 0 {
		s.doc.Budgets.Overall = nil
		return
	}
	s.doc.Budgets.Overall = &core.BudgetEntry{Amount: *amount}
}

// SetCategoryBudget stores a per-category limit under the first-seen key
// casing; a nil, NaN, or negative amount removes the entry.
func (s *Store) SetCategoryBudget(category string, amount *float64) {
	category = strings.TrimSpace(category)
	if category == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if amount == nil || math.IsNaN(*amount) || *amount < 0 {
		s.deleteCategoryBudgetLocked(category)
		return
	}
	key := category
	if existing, ok := s.findBudgetKeyLocked(category); ok {
		key = existing
	}
	s.doc.Budgets.Categories[key] = core.BudgetEntry{Amount: *amount}
}

// DeleteCategoryBudget removes a category limit, matching the stored key
// case-insensitively.
func (s *Store) DeleteCategoryBudget(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCategoryBudgetLocked(category)
}

func (s *Store) deleteCategoryBudgetLocked(category string) {
	if key, ok := s.findBudgetKeyLocked(category); ok {
		delete(s.doc.Budgets.Categories, key)
	}
}

func (s *Store) findBudgetKeyLocked(category string) (string, bool) {
	for key := range s.doc.Budgets.Categories {
		if strings.EqualFold(key, category) {
			return key, true
		}
	}
	return "", false
}

// --- Categories ---

// AddCategory registers a category name, keeping the set sorted. Returns
// false without change when an equal-case-insensitive entry already exists.
func (s *Store) AddCategory(category string) bool {
	category = strings.TrimSpace(category)
	if category == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.doc.Settings.Categories {
		if strings.EqualFold(c, category) {
			return false
		}
	}
	s.doc.Settings.Categories = append(s.doc.Settings.Categories, category)
	sort.Strings(s.doc.Settings.Categories)
	return true
}

// DeleteCategory removes a category (case-insensitive) and cascades to its
// budget entry. Historical transactions keep their category field: written
// data is immutable except through explicit edit.
func (s *Store) DeleteCategory(category string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.doc.Settings.Categories[:0]
	removed := false
	for _, c := range s.doc.Settings.Categories {
		if strings.EqualFold(c, category) {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.doc.Settings.Categories = kept
	if removed {
		s.deleteCategoryBudgetLocked(category)
	}
	return removed
}

// --- Recurring templates ---

func (s *Store) AddRecurringTemplate(t core.RecurringTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Settings.RecurringTemplates = append(s.doc.Settings.RecurringTemplates, t)
}

// RemoveRecurringTemplate drops the template whose id matches the
// originating transaction id. Removing a template never touches historical
// transactions.
func (s *Store) RemoveRecurringTemplate(originID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	templates := s.doc.Settings.RecurringTemplates[:0]
	for _, t := range s.doc.Settings.RecurringTemplates {
		if t.ID != originID {
			templates = append(templates, t)
		}
	}
	s.doc.Settings.RecurringTemplates = templates
}

// --- Settings and preferences ---

func (s *Store) SetTheme(theme string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if theme == core.ThemeLight || theme == core.ThemeDark {
		s.doc.Settings.Theme = theme
	}
}

func (s *Store) SetCurrency(c core.Currency) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Symbol != "" && c.Code != "" {
		s.doc.Settings.Currency = c
	}
}

func (s *Store) SetActiveSection(section string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if validSection(section) {
		s.doc.UIPreferences.ActiveSection = section
	}
}

func (s *Store) SetSidebarCollapsed(collapsed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.UIPreferences.IsSidebarCollapsed = collapsed
}

// --- Transient view state (never persisted) ---

func (s *Store) SetFilters(f core.Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.UITransient.Filters = f
}

func (s *Store) SetSort(spec core.SortSpec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.UITransient.Sort = spec
}

func (s *Store) SetNotesSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.UITransient.NotesSearchTerm = term
}

func (s *Store) SetEditingItem(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.UITransient.EditingItemID = id
}

// ResetTransient restores default filters, sort, and search state.
func (s *Store) ResetTransient() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.UITransient = core.DefaultTransient()
}
