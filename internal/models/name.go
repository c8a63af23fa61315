package models

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameTitleCaser = cases.Title(language.English)

// NormalizeName trims and title-cases a staff/patient name before storage,
// matching the source's `(name or '').strip().title()` convention so that
// uniqueness checks and special_list/omit_staff name matching operate on a
// single canonical form.
func NormalizeName(name string) string {
	return nameTitleCaser.String(strings.TrimSpace(name))
}
