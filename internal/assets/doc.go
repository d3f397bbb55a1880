// Package assets resolves eMODUL text and icon ids to display values.
//
// The cloud API identifies tiles and zones by numeric ids. Display names
// come from the i18n language pack (cached by TranslationManager) and icons
// from static id/type tables matching the eMODUL tile catalogue.
package assets
