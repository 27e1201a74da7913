package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Plan struct {
	ID            int             `json:"id"`
	Title         string          `json:"title"`
	Hours         int             `json:"hours"`
	PriceUSD      decimal.Decimal `json:"priceUsd"`
	RouterProfile string          `json:"routerProfile"`
}

func (p Plan) DurationMinutes() int { return p.Hours * 60 }

var Plans = []Plan{
	{ID: 1, Title: "1 Hora", Hours: 1, PriceUSD: decimal.NewFromInt(1), RouterProfile: "1h"},
	{ID: 2, Title: "3 Horas", Hours: 3, PriceUSD: decimal.NewFromInt(2), RouterProfile: "3h"},
	{ID: 3, Title: "5 Horas", Hours: 5, PriceUSD: decimal.NewFromInt(3), RouterProfile: "5h"},
}

func PlanByID(id int) (Plan, bool) {
	for _, p := range Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// LongestPlan is the widest window in which a sale can still be active.
func LongestPlan() time.Duration {
	var longest int
	for _, p := range Plans {
		longest = max(longest, p.DurationMinutes())
	}
	return time.Duration(longest) * time.Minute
}
