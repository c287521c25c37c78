// Package l10n provides localized message templates for every user-facing
// error and warning string the configuration engine produces, under the
// "pgbackrest" gettext domain, used by internal/cfgerror, internal/merge,
// and internal/validate.
package l10n

import (
	"fmt"

	gettext "github.com/snapcore/go-gettext"
)

var domain gettext.TextDomain
var locale gettext.Catalog

func init() {
	domain = gettext.TextDomain{Name: "pgbackrest"}
	locale = domain.UserLocale()
}

// T localizes a simple message template. Callers pass fmt.Sprintf-style
// verbs; vars are substituted positionally after translation lookup so the
// untranslated (source) template stays the canonical format string other
// packages format errors against.
func T(str string, vars ...any) string {
	translation := locale.Gettext(str)
	if len(vars) > 0 {
		return fmt.Sprintf(translation, vars...)
	}
	return translation
}

// TN localizes a template with singular/plural forms.
func TN(singular, plural string, n uint32, vars ...any) string {
	translation := locale.NGettext(singular, plural, n)
	if len(vars) > 0 {
		return fmt.Sprintf(translation, vars...)
	}
	return translation
}

// TC localizes a template scoped to a disambiguation context.
func TC(ctx, str string, vars ...any) string {
	translation := locale.PGettext(ctx, str)
	if len(vars) > 0 {
		return fmt.Sprintf(translation, vars...)
	}
	return translation
}

// TNC localizes a template with both a context and plural forms.
func TNC(ctx, singular, plural string, n uint32, vars ...any) string {
	translation := locale.NPGettext(ctx, singular, plural, n)
	if len(vars) > 0 {
		return fmt.Sprintf(translation, vars...)
	}
	return translation
}
