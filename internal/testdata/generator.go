// Package testdata generates sample contact tables.
package testdata

import (
	"fmt"
	"math/rand"
	"strings"
)

// Header is the header row of Contacts.
var Header = []string{"Email", "First Name", "Last Name", "Phone", "Company"}

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Margaret", "Linus", "Radia", "Dennis"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Thompson", "Hamilton", "Torvalds", "Perlman", "Ritchie"}
	companies  = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", ""}
)

// Contacts returns a header row plus n contact rows. The same seed yields
// the same table. Roughly one row in ten has no email.
func Contacts(n int, seed int64) [][]string {
	r := rand.New(rand.NewSource(seed))
	rows := make([][]string, 0, n+1)
	rows = append(rows, append([]string(nil), Header...))
	for i := 0; i < n; i++ {
		first := firstNames[r.Intn(len(firstNames))]
		last := lastNames[r.Intn(len(lastNames))]
		email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i)
		if r.Intn(10) == 0 {
			email = ""
		}
		phone := fmt.Sprintf("+1 555 %03d %04d", r.Intn(1000), r.Intn(10000))
		rows = append(rows, []string{email, first, last, phone, companies[r.Intn(len(companies))]})
	}
	return rows
}

// TSV renders rows the way a spreadsheet puts them on the clipboard.
func TSV(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteString("\r\n")
	}
	return b.String()
}
