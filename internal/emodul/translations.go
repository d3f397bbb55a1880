package emodul

import (
	"context"
	"fmt"
)

// DefaultLanguage is the fallback language code. The API returns a 400 for
// unknown languages rather than falling back itself, so the client maps
// unsupported codes to this before making the request.
const DefaultLanguage = "en"

// supportedLanguages is the set of language packs the eMODUL i18n endpoint
// serves.
var supportedLanguages = map[string]bool{
	"bg": true,
	"cs": true,
	"de": true,
	"en": true,
	"es": true,
	"fr": true,
	"hu": true,
	"it": true,
	"lt": true,
	"nl": true,
	"pl": true,
	"ro": true,
	"ru": true,
	"sk": true,
	"uk": true,
}

// GetTranslations fetches the language pack for the given language code,
// silently substituting DefaultLanguage for unsupported codes.
func (c *Client) GetTranslations(ctx context.Context, language string) (*Translations, error) {
	if !supportedLanguages[language] {
		c.debugf("language not supported, using default", "language", language, "default", DefaultLanguage)
		language = DefaultLanguage
	}

	var t Translations
	if err := c.get(ctx, fmt.Sprintf("i18n/%s", language), &t); err != nil {
		return nil, err
	}
	return &t, nil
}
