package models

// Role — роль пользователя из фиксированного перечисления.
type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

// Valid сообщает, входит ли роль в перечисление.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleGuide, RoleLeadGuide, RoleAdmin:
		return true
	}
	return false
}

// RoleSet — множество ролей, допущенных к действию.
type RoleSet map[Role]struct{}

// NewRoleSet собирает множество из перечисленных ролей.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has проверяет принадлежность роли множеству.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}
