package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"

	"github.com/jask/contactimport/internal/database/repository"
)

// Contact fields a column can be mapped to.
const (
	FieldSkip      = "skip"
	FieldEmail     = "email"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldPhone     = "phone"
	FieldCompany   = "company"
)

// Fields lists the mappable fields in display order.
var Fields = []string{FieldSkip, FieldEmail, FieldFirstName, FieldLastName, FieldPhone, FieldCompany}

// ErrInvalidMapping is returned by ValidateMapping.
var ErrInvalidMapping = errors.New("invalid column mapping")

var fieldAliases = map[string][]string{
	FieldEmail:     {"email", "emailaddress", "mail", "e-mail"},
	FieldFirstName: {"firstname", "first", "givenname", "forename", "name"},
	FieldLastName:  {"lastname", "last", "surname", "familyname"},
	FieldPhone:     {"phone", "phonenumber", "mobile", "telephone", "tel", "cell"},
	FieldCompany:   {"company", "organization", "organisation", "employer", "business"},
}

// NormalizeHeader lowercases s and drops everything but letters and digits.
func NormalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GuessMapping proposes a field per column from header text. Each field is
// used at most once; columns with no close match are skipped.
func GuessMapping(header []string) []string {
	return GuessMappingLearned(header, nil)
}

// GuessMappingLearned is GuessMapping with remembered choices, keyed by
// NormalizeHeader, applied before fuzzy matching.
func GuessMappingLearned(header []string, learned map[string]string) []string {
	out := make([]string, len(header))
	used := map[string]bool{}
	decided := make([]bool, len(header))
	for i, h := range header {
		out[i] = FieldSkip
		f, ok := learned[NormalizeHeader(h)]
		if !ok || !isField(f) || (f != FieldSkip && used[f]) {
			continue
		}
		out[i], decided[i] = f, true
		if f != FieldSkip {
			used[f] = true
		}
	}
	for i, h := range header {
		norm := NormalizeHeader(h)
		if decided[i] || norm == "" {
			continue
		}
		best, bestDist := "", -1
		for _, field := range Fields[1:] {
			if used[field] {
				continue
			}
			for _, alias := range fieldAliases[field] {
				d := levenshtein.ComputeDistance(norm, NormalizeHeader(alias))
				if d > maxDistance(alias) {
					continue
				}
				if bestDist < 0 || d < bestDist {
					best, bestDist = field, d
				}
			}
		}
		if best != "" {
			out[i] = best
			used[best] = true
		}
	}
	return out
}

func maxDistance(alias string) int {
	if len(alias) <= 4 {
		return 0
	}
	return len(alias) / 4
}

// ValidateMapping checks a mapping has one known field per column and uses
// every non-skip field at most once.
func ValidateMapping(mapping []string, cols int) error {
	if len(mapping) != cols {
		return fmt.Errorf("%w: %d fields for %d columns", ErrInvalidMapping, len(mapping), cols)
	}
	seen := map[string]bool{}
	for i, f := range mapping {
		if !isField(f) {
			return fmt.Errorf("%w: column %d: unknown field %q", ErrInvalidMapping, i+1, f)
		}
		if f == FieldSkip {
			continue
		}
		if seen[f] {
			return fmt.Errorf("%w: field %q mapped twice", ErrInvalidMapping, f)
		}
		seen[f] = true
	}
	return nil
}

func isField(f string) bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Summary counts what an organized import will produce.
type Summary struct {
	Contacts     int
	MissingEmail int
	InvalidEmail int
}

// Summarize counts non-empty data rows and email problems of an import.
func Summarize(rec repository.ContactImport) Summary {
	var s Summary
	emailCol := -1
	for i, f := range rec.Mapping {
		if f == FieldEmail {
			emailCol = i
		}
	}
	for y, row := range rec.Table {
		if y == 0 && rec.HasHeader {
			continue
		}
		if blankRow(row) {
			continue
		}
		s.Contacts++
		if emailCol < 0 || emailCol >= len(row) || strings.TrimSpace(row[emailCol]) == "" {
			s.MissingEmail++
			continue
		}
		if _, err := mail.ParseAddress(strings.TrimSpace(row[emailCol])); err != nil {
			s.InvalidEmail++
		}
	}
	return s
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
