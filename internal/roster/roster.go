package roster

import "strings"

// Role is one of the three fixed account roles.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "GURU"
	RoleStudent Role = "SISWA"
)

// Label returns the display form used in screen headers.
func (r Role) Label() string {
	return strings.ToLower(string(r))
}

// User is a seeded account. AssignedClass is the homeroom class for a teacher
// and the enrolled class for a student.
type User struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	NIPNISN       string `json:"nip_nisn"`
	Password      string `json:"-"`
	AssignedClass string `json:"assigned_class,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
}

// IsHomeroomTeacher reports whether u is a teacher responsible for a class.
func (u User) IsHomeroomTeacher() bool {
	return u.Role == RoleTeacher && u.AssignedClass != ""
}

// SchoolConfig is the read-only display configuration.
type SchoolConfig struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Year      string `json:"year"`
	Semester  string `json:"semester"`
	EntryTime string `json:"entry_time"`
	LogoURL   string `json:"logo_url,omitempty"`
}

// Directory is a read-only user set.
type Directory struct {
	users []User
}

// NewDirectory copies users into a directory.
func NewDirectory(users []User) *Directory {
	cp := make([]User, len(users))
	copy(cp, users)
	return &Directory{users: cp}
}

// Authenticate finds the user whose email or NIP/NISN equals identifier and
// whose password equals credential exactly.
func (d *Directory) Authenticate(identifier, credential string) (User, bool) {
	for _, u := range d.users {
		if (u.Email == identifier || u.NIPNISN == identifier) && u.Password != "" && u.Password == credential {
			return u, true
		}
	}
	return User{}, false
}

// Find returns the user with the given id.
func (d *Directory) Find(id string) (User, bool) {
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// All returns a copy of every user.
func (d *Directory) All() []User {
	cp := make([]User, len(d.users))
	copy(cp, d.users)
	return cp
}

// CountByRole returns how many users hold role.
func (d *Directory) CountByRole(role Role) int {
	n := 0
	for _, u := range d.users {
		if u.Role == role {
			n++
		}
	}
	return n
}

// StudentsInClass returns the students enrolled in class, in seed order.
func (d *Directory) StudentsInClass(class string) []User {
	var out []User
	for _, u := range d.users {
		if u.Role == RoleStudent && u.AssignedClass == class {
			out = append(out, u)
		}
	}
	return out
}
