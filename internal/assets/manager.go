package assets

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/daroga0002/tech-controllers/internal/emodul"
)

// TranslationSource fetches a language pack. Satisfied by *emodul.Client.
type TranslationSource interface {
	GetTranslations(ctx context.Context, language string) (*emodul.Translations, error)
}

// TranslationManager resolves eMODUL text ids to human-readable names.
//
// Tiles and zones carry numeric txtId/iconId fields rather than names; the
// i18n endpoint maps those ids to strings. The manager caches one language
// pack and a reverse lookup for the lifetime of the process.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type TranslationManager struct {
	mu            sync.RWMutex
	translations  map[string]string
	reverseLookup map[string]int
}

// NewTranslationManager creates an empty manager. Call Load before use;
// until then Text returns fallback strings.
func NewTranslationManager() *TranslationManager {
	return &TranslationManager{}
}

// Load fetches and caches the language pack for the given language.
// Unsupported languages fall back to English inside the client.
func (m *TranslationManager) Load(ctx context.Context, language string, source TranslationSource) error {
	t, err := source.GetTranslations(ctx, language)
	if err != nil {
		return fmt.Errorf("loading translations for %s: %w", language, err)
	}

	reverse := make(map[string]int, len(t.Data))
	for key, value := range t.Data {
		if id, convErr := strconv.Atoi(key); convErr == nil {
			reverse[value] = id
		}
	}

	m.mu.Lock()
	m.translations = t.Data
	m.reverseLookup = reverse
	m.mu.Unlock()

	return nil
}

// IsLoaded reports whether a language pack has been loaded.
func (m *TranslationManager) IsLoaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.translations != nil
}

// Text resolves a text id to its translated string. Unknown ids, id 0,
// and an unloaded manager all return the "txtId N" fallback.
func (m *TranslationManager) Text(textID int) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.translations == nil || textID == 0 {
		return fmt.Sprintf("txtId %d", textID)
	}

	if text, ok := m.translations[strconv.Itoa(textID)]; ok {
		return text
	}
	return fmt.Sprintf("txtId %d", textID)
}

// TextID performs a reverse lookup from translated text to its id.
// Returns 0 when the text is unknown or no pack is loaded.
func (m *TranslationManager) TextID(text string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if text == "" || m.reverseLookup == nil {
		return 0
	}
	return m.reverseLookup[text]
}

// TextByType resolves a tile type to its translated label via the type's
// default text id. Unknown types return a "type N" fallback.
func (m *TranslationManager) TextByType(tileType int) string {
	textID, ok := txtIDByType[tileType]
	if !ok {
		return fmt.Sprintf("type %d", tileType)
	}
	return m.Text(textID)
}

// Count returns the number of cached translations.
func (m *TranslationManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.translations)
}

// Clear drops the cached language pack.
func (m *TranslationManager) Clear() {
	m.mu.Lock()
	m.translations = nil
	m.reverseLookup = nil
	m.mu.Unlock()
}
