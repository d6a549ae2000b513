package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/contactimport/internal/database/repository"
)

func TestGuessMapping(t *testing.T) {
	t.Parallel()

	got := GuessMapping([]string{"E-mail", "First Name", "Surname", "Notes", "Phone number", "Organisation", ""})
	require.Equal(t, []string{FieldEmail, FieldFirstName, FieldLastName, FieldSkip, FieldPhone, FieldCompany, FieldSkip}, got)

	// close misspellings match, each field at most once
	got = GuessMapping([]string{"email adress", "Email"})
	require.Equal(t, []string{FieldEmail, FieldSkip}, got)
}

func TestGuessMappingLearned(t *testing.T) {
	t.Parallel()

	learned := map[string]string{
		"who":   FieldFirstName,
		"notes": FieldSkip,
		"mail":  "nickname", // unknown fields fall back to fuzzy matching
	}
	got := GuessMappingLearned([]string{"Who?", "Notes", "Mail", "First"}, learned)
	// a learned first_name beats the fuzzy match for "First"
	require.Equal(t, []string{FieldFirstName, FieldSkip, FieldEmail, FieldSkip}, got)
}

func TestValidateMapping(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateMapping([]string{FieldEmail, FieldSkip, FieldSkip}, 3))
	require.ErrorIs(t, ValidateMapping([]string{FieldEmail}, 2), ErrInvalidMapping)
	require.ErrorIs(t, ValidateMapping([]string{"fax"}, 1), ErrInvalidMapping)
	require.ErrorIs(t, ValidateMapping([]string{FieldEmail, FieldEmail}, 2), ErrInvalidMapping)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	rec := repository.ContactImport{
		Table: [][]string{
			{"email", "name"},
			{"ada@example.com", "Ada"},
			{"", "Bob"},
			{"not-an-email", "Cy"},
			{"", ""},
		},
		Mapping:   []string{FieldEmail, FieldFirstName},
		HasHeader: true,
	}
	require.Equal(t, Summary{Contacts: 3, MissingEmail: 1, InvalidEmail: 1}, Summarize(rec))

	rec.HasHeader = false
	rec.Mapping = []string{FieldSkip, FieldFirstName}
	require.Equal(t, Summary{Contacts: 4, MissingEmail: 4}, Summarize(rec))
}
