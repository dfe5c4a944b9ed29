package httpapi

import (
	"time"

	"github.com/and161185/bdaybook/internal/birthday"
	"github.com/and161185/bdaybook/internal/model"
)

// personDTO mirrors the JSON field names of the original API.
type personDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Nickname      string    `json:"nickname,omitempty"`
	PhoneNumber   string    `json:"phone_number"`
	BirthDate     string    `json:"birth_date"`
	Relationship  string    `json:"relationship"`
	Zodiac        string    `json:"zodiac,omitempty"`
	PhotoURL      string    `json:"photo_url,omitempty"`
	Message       string    `json:"personalized_message,omitempty"`
	FavoriteColor string    `json:"favorite_color,omitempty"`
	Hobbies       string    `json:"hobbies,omitempty"`
	GiftIdeas     string    `json:"gift_ideas,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPersonDTO(p model.Person) personDTO {
	dto := personDTO{
		ID:            p.ID.String(),
		Name:          p.Name,
		Nickname:      p.Nickname,
		PhoneNumber:   p.PhoneDigits,
		BirthDate:     p.BirthDate,
		Relationship:  p.Relationship,
		Zodiac:        p.Zodiac,
		Message:       p.Message,
		FavoriteColor: p.FavoriteColor,
		Hobbies:       p.Hobbies,
		GiftIdeas:     p.GiftIdeas,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.PhotoRef != "" {
		dto.PhotoURL = "/api/media/" + p.PhotoRef
	}
	return dto
}

func toPersonDTOs(people []model.Person) []personDTO {
	out := make([]personDTO, 0, len(people))
	for _, p := range people {
		out = append(out, toPersonDTO(p))
	}
	return out
}

type celebrantDTO struct {
	personDTO
	TurningAge int `json:"turning_age"`
}

type upcomingDTO struct {
	personDTO
	NextOccurrence string `json:"next_occurrence"`
	DaysUntil      int    `json:"days_until"`
}

type rankedDTO struct {
	Today    []celebrantDTO `json:"today"`
	Next     *upcomingDTO   `json:"next,omitempty"`
	Upcoming []upcomingDTO  `json:"upcoming"`
}

func toRankedDTO(v birthday.RankedView) rankedDTO {
	out := rankedDTO{
		Today:    make([]celebrantDTO, 0, len(v.Today)),
		Upcoming: make([]upcomingDTO, 0, len(v.Upcoming)),
	}
	for _, c := range v.Today {
		out.Today = append(out.Today, celebrantDTO{personDTO: toPersonDTO(c.Person), TurningAge: c.TurningAge})
	}
	if v.Next != nil {
		out.Next = &upcomingDTO{
			personDTO:      toPersonDTO(v.Next.Person),
			NextOccurrence: v.Next.Next.Format("2006-01-02"),
			DaysUntil:      v.Next.DaysUntil,
		}
	}
	for _, e := range v.Upcoming {
		out.Upcoming = append(out.Upcoming, upcomingDTO{
			personDTO:      toPersonDTO(e.Person),
			NextOccurrence: e.Next.Format("2006-01-02"),
			DaysUntil:      e.DaysUntil,
		})
	}
	return out
}
