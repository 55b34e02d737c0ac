package postgres

import (
	"fmt"
	"strings"

	"github.com/dtroode/academia-moderation/internal/model"
)

var materialSortColumns = map[model.MaterialSortField]string{
	model.MaterialSortCreatedAt: "m.created_at",
	model.MaterialSortUpdatedAt: "m.updated_at",
	model.MaterialSortSubject:   "m.subject",
	model.MaterialSortSemester:  "m.semester",
	model.MaterialSortYear:      "m.year",
	model.MaterialSortStatus:    "m.status",
}

// args accumulates positional query arguments.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

func materialWhere(filter model.MaterialFilter, a *args) string {
	var conds []string

	if filter.Status != nil {
		conds = append(conds, "m.status = "+a.add(string(*filter.Status)))
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		p := a.add(likePattern(search))
		conds = append(conds, fmt.Sprintf(
			"(m.subject ILIKE %[1]s OR m.description ILIKE %[1]s OR m.subject_area ILIKE %[1]s OR array_to_string(m.branches, ' ') ILIKE %[1]s)",
			p,
		))
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func materialOrderBy(field model.MaterialSortField, desc bool) string {
	col, ok := materialSortColumns[field]
	if !ok {
		col = materialSortColumns[model.MaterialSortCreatedAt]
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, m.id %s", col, dir, dir)
}

func userWhere(filter model.UserFilter, a *args) string {
	var conds []string

	switch filter.Role {
	case model.UserRoleAdmin:
		conds = append(conds, "is_admin")
	case model.UserRoleUser:
		conds = append(conds, "NOT is_admin")
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		p := a.add(likePattern(search))
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}

	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}
