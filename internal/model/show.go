package model

// Slot identifies a time-of-day screening window.  Slots are
// managed by the backend and arrive embedded in a Show.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable name ("Morning", "Evening").
//  StartTime – wall-clock start of the window (HH:MM:SS).
//  EndTime   – wall-clock end of the window (HH:MM:SS).
type Slot struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Movie carries display metadata for the film being screened.
// All fields come from the backend movie service and are never
// edited locally.
//
// Fields:
//  Name     – movie title.
//  Poster   – poster image URL.
//  Plot     – short synopsis.
//  Genre    – comma separated genre list.
//  Duration – runtime descriptor ("2h 15min").
//  Rating   – certification or audience rating.
type Movie struct {
	Name     string `json:"name"`
	Poster   string `json:"poster"`
	Plot     string `json:"plot"`
	Genre    string `json:"genre"`
	Duration string `json:"duration"`
	Rating   string `json:"rating"`
}

// Show represents a scheduled screening as supplied by the backend
// when a booking dialog opens.  It is immutable for the duration of
// a booking flow; the wizard never writes to it.
//
// Fields:
//  ID             – primary key identifier.
//  Date           – screening date (YYYY-MM-DD).
//  Cost           – base price per standard seat in rupees.
//  AvailableSeats – number of seats still free for this show.
//  Slot           – time-of-day window of the screening.
//  Movie          – film metadata for display.
type Show struct {
	ID             uint64  `json:"id"`
	Date           string  `json:"date"`
	Cost           float64 `json:"cost"`
	AvailableSeats uint32  `json:"availableseats"`
	Slot           Slot    `json:"slot"`
	Movie          Movie   `json:"movie"`
}
