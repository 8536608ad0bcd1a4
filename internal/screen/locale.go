package screen

import (
	"fmt"
	"time"
)

var (
	hari  = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
	bulan = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni",
		"Juli", "Agustus", "September", "Oktober", "November", "Desember"}
)

// LongDate formats t the Indonesian way, e.g. "Senin, 15 Juli 2024".
func LongDate(t time.Time) string {
	return fmt.Sprintf("%s, %d %s %d", hari[t.Weekday()], t.Day(), bulan[t.Month()-1], t.Year())
}

// weekdayName returns the Indonesian name of d.
func weekdayName(d time.Weekday) string {
	return hari[d]
}
