package birthday

import (
	"bytes"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/bdaybook/internal/model"
)

// UpcomingWindow is the number of records shown in the upcoming list.
const UpcomingWindow = 4

// Celebrant is a record whose birthday is today.
type Celebrant struct {
	Person     model.Person
	TurningAge int
}

// Entry is a record projected onto its next occurrence.
type Entry struct {
	Person    model.Person
	Next      time.Time
	DaysUntil int
}

// RankedView is the transient projection served to the dashboard. It is
// recomputed on every read and holds no state of its own.
type RankedView struct {
	Today    []Celebrant
	Next     *Entry // nil when Today is non-empty or no records qualify
	Upcoming []Entry
}

// Rank derives the dashboard view from the full record set and a single
// captured "today". Records with unparseable birth dates are excluded from
// all three lists. Output is deterministic for equal input: every ordering
// breaks ties by record id ascending.
func Rank(people []model.Person, today time.Time) RankedView {
	var view RankedView
	var rest []Entry

	for _, p := range people {
		b, ok := Parse(p.BirthDate)
		if !ok {
			continue
		}
		if b.Month == today.Month() && b.Day == today.Day() {
			view.Today = append(view.Today, Celebrant{Person: p, TurningAge: Age(b, today) + 1})
			continue
		}
		rest = append(rest, Entry{Person: p, Next: NextOccurrence(b, today), DaysUntil: DaysUntil(b, today)})
	}

	sort.Slice(view.Today, func(i, j int) bool {
		return idLess(view.Today[i].Person.ID, view.Today[j].Person.ID)
	})
	sort.Slice(rest, func(i, j int) bool {
		if !rest[i].Next.Equal(rest[j].Next) {
			return rest[i].Next.Before(rest[j].Next)
		}
		return idLess(rest[i].Person.ID, rest[j].Person.ID)
	})

	// Today's celebrants suppress the single "next" slot.
	if len(view.Today) == 0 && len(rest) > 0 {
		next := rest[0]
		view.Next = &next
		rest = rest[1:]
	}

	d := dateOnly(today)
	for _, e := range rest {
		if !e.Next.After(d) {
			continue
		}
		view.Upcoming = append(view.Upcoming, e)
		if len(view.Upcoming) == UpcomingWindow {
			break
		}
	}
	return view
}

func idLess(a, b uuid.UUID) bool { return bytes.Compare(a[:], b[:]) < 0 }
