package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page is skip/take paging as sent by list endpoints.
type Page struct {
	Skip int `json:"skip" query:"skip"`
	Take int `json:"take" query:"take"`
}

func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Take <= 0 {
		p.Take = DefaultPageSize
	}
	if p.Take > MaxPageSize {
		p.Take = MaxPageSize
	}
	return p
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return db.Offset(p.Skip).Limit(p.Take)
}

// likePattern builds a case-insensitive LIKE pattern, escaping the wildcard characters.
func likePattern(search string) string {
	s := strings.ToLower(strings.TrimSpace(search))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
