package user

// Profile holds the contact details shown on the profile page.
type Profile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Address    string `json:"address"`
}

// Profiles are keyed by Role: the visible one is always the current user's.
type Profiles map[Role]Profile

// DefaultProfiles returns the records every portal starts with.
func DefaultProfiles() Profiles {
	return Profiles{
		RoleStudent: {
			Name:       "Carl Kitusa",
			Email:      "carl.kitusa@student.campus.edu",
			Phone:      "+1 (555) 010-2030",
			Department: "Computer Science",
			Address:    "Residence Hall B, Room 214",
		},
		RoleAdmin: {
			Name:       "Admin User",
			Email:      "admin@campus.edu",
			Phone:      "+1 (555) 010-1000",
			Department: "Office of the Registrar",
			Address:    "Administration Building, Suite 100",
		},
	}
}

// Get returns a copy of the Profile for `role`.
func (p Profiles) Get(role Role) (Profile, bool) {
	prof, ok := p[role]
	return prof, ok
}
