package roster

// DefaultSchool is the display configuration the app ships with.
var DefaultSchool = SchoolConfig{
	Name:      "SMA Negeri 1 Digital",
	Address:   "Jl. Pendidikan No. 1, Jakarta",
	Year:      "2023/2024",
	Semester:  "Ganjil",
	EntryTime: "07:00",
}

// SeedUsers returns the demo accounts.
func SeedUsers() []User {
	return []User{
		{
			ID:       "1",
			Name:     "Admin Utama",
			Email:    "admin@abdig.com",
			Role:     RoleAdmin,
			NIPNISN:  "ADMIN001",
			Password: "password",
			Avatar:   "https://picsum.photos/200/200?random=1",
		},
		{
			ID:            "2",
			Name:          "Budi Santoso (Guru)",
			Email:         "budi@guru.com",
			Role:          RoleTeacher,
			NIPNISN:       "198001012005011001",
			AssignedClass: "XII-IPA-1",
			Password:      "password",
			Avatar:        "https://picsum.photos/200/200?random=2",
		},
		{
			ID:       "3",
			Name:     "Siti Aminah (Guru)",
			Email:    "siti@guru.com",
			Role:     RoleTeacher,
			NIPNISN:  "198502022005012002",
			Password: "password",
			Avatar:   "https://picsum.photos/200/200?random=3",
		},
		{
			ID:            "4",
			Name:          "Ahmad Rizki",
			Email:         "ahmad@siswa.com",
			Role:          RoleStudent,
			NIPNISN:       "0051234567",
			AssignedClass: "XII-IPA-1",
			Password:      "password",
			Avatar:        "https://picsum.photos/200/200?random=4",
		},
		{
			ID:            "5",
			Name:          "Dewi Lestari",
			Email:         "dewi@siswa.com",
			Role:          RoleStudent,
			NIPNISN:       "0051234568",
			AssignedClass: "XII-IPA-1",
			Password:      "password",
			Avatar:        "https://picsum.photos/200/200?random=5",
		},
		{
			ID:            "6",
			Name:          "Eko Prasetyo",
			Email:         "eko@siswa.com",
			Role:          RoleStudent,
			NIPNISN:       "0051234569",
			AssignedClass: "XII-IPS-1",
			Password:      "password",
			Avatar:        "https://picsum.photos/200/200?random=6",
		},
	}
}
