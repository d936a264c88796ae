package models

import (
	"encoding/json"
	"fmt"
)

// Role - битовая маска ролей, у пользователя хранится одно значение
type Role int

const (
	RoleNone     Role = 0
	RoleEmployee Role = 1
	RoleManager  Role = 2
)

// HasRole истинно, если роль пересекается хотя бы с одной из требуемых
func HasRole(userRole Role, required ...Role) bool {
	var mask Role
	for _, r := range required {
		mask |= r
	}
	return mask&userRole != 0
}

func ParseRole(value int) (Role, error) {
	switch Role(value) {
	case RoleNone, RoleEmployee, RoleManager:
		return Role(value), nil
	}
	return RoleNone, fmt.Errorf("неизвестная роль: %d", value)
}

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "NONE"
	case RoleEmployee:
		return "EMPLOYEE"
	case RoleManager:
		return "MANAGER"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(r))
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var value int
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseRole(value)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
