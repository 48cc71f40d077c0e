package i18n

import "embed"

// LocaleFS — встроенные JSON-каталоги переводов.
//
//go:embed locales/*.json
var LocaleFS embed.FS
