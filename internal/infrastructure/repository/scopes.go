package repository

import (
	"strings"

	"gorm.io/gorm"

	"github.com/Alexrusso3108/cura-doctors-portal/pkg/pagination"
)

// DoctorScope restricts a query to rows owned by one doctor. A zero id
// matches nothing rather than everything.
func DoctorScope(doctorID int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if doctorID <= 0 {
			return db.Where("1 = 0")
		}
		return db.Where("doctor_id = ?", doctorID)
	}
}

// Paginate applies offset and limit. Params are clamped into range first.
func Paginate(p *pagination.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if p == nil {
			p = pagination.DefaultPagination()
		}
		p.Validate()
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

// ContainsAny matches rows where any of the columns contains term,
// ignoring case. An empty term leaves the query unfiltered.
func ContainsAny(term string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + escapeLike(term) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = col + " ILIKE ?"
			args[i] = like
		}
		return db.Where(strings.Join(clauses, " OR "), args...)
	}
}

// escapeLike keeps % and _ typed by the user literal
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
