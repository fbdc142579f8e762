package igdb

// IGDB enumerates genres, platforms, and age ratings by numeric code. The
// codes are stable, so static tables avoid one API call per code.

var genreNames = map[int64]string{
	2:  "Point-and-click",
	4:  "Fighting",
	5:  "Shooter",
	7:  "Music",
	8:  "Platform",
	9:  "Puzzle",
	10: "Racing",
	11: "Real Time Strategy (RTS)",
	12: "Role-playing (RPG)",
	13: "Simulator",
	14: "Sport",
	15: "Strategy",
	16: "Turn-based strategy (TBS)",
	24: "Tactical",
	25: "Hack and slash/Beat 'em up",
	26: "Quiz/Trivia",
	30: "Pinball",
	31: "Adventure",
	32: "Indie",
	33: "Arcade",
}

var platformNames = map[int64]string{
	3:   "Linux",
	4:   "Nintendo 64",
	5:   "Wii",
	6:   "PC (Microsoft Windows)",
	7:   "PlayStation",
	8:   "PlayStation 2",
	9:   "PlayStation 3",
	11:  "Xbox",
	12:  "Xbox 360",
	13:  "PC DOS",
	14:  "Mac",
	15:  "Commodore C64/128",
	16:  "Amiga",
	18:  "Nintendo Entertainment System (NES)",
	19:  "Super Nintendo Entertainment System (SNES)",
	20:  "Nintendo DS",
	21:  "Nintendo GameCube",
	22:  "Game Boy Color",
	23:  "Dreamcast",
	24:  "Game Boy Advance",
	29:  "Sega Mega Drive/Genesis",
	32:  "Sega Saturn",
	33:  "Game Boy",
	34:  "Android",
	37:  "Nintendo 3DS",
	38:  "PlayStation Portable",
	39:  "iOS",
	41:  "Wii U",
	46:  "PlayStation Vita",
	48:  "PlayStation 4",
	49:  "Xbox One",
	52:  "Arcade",
	55:  "Mobile",
	59:  "Atari 2600",
	62:  "Atari Jaguar",
	64:  "Sega Master System",
	82:  "Web browser",
	86:  "TurboGrafx-16/PC Engine",
	92:  "SteamOS",
	117: "Philips CD-i",
	130: "Nintendo Switch",
	137: "New Nintendo 3DS",
	162: "Oculus VR",
	165: "PlayStation VR",
	167: "PlayStation 5",
	169: "Xbox Series X|S",
	508: "Nintendo Switch 2",
}

// platformRenames maps IGDB platform names onto the collection's stock
// allowed values. Unmapped names extend the allowed list instead.
var platformRenames = map[string]string{
	"Nintendo Entertainment System (NES)": "Nintendo",
	"PlayStation 2":                       "PlayStation2",
	"PlayStation 3":                       "PlayStation3",
	"PlayStation 4":                       "PlayStation4",
	"PlayStation Portable":                "PSP",
	"Wii":                                 "Nintendo Wii",
	"Nintendo GameCube":                   "GameCube",
	"PC (Microsoft Windows)":              "Windows",
	"Mac":                                 "Mac OS",
}

var esrbNames = map[int64]string{
	1: "Pending",
	2: "Early Childhood",
	3: "Everyone",
	4: "Everyone 10+",
	5: "Teen",
	6: "Mature",
	7: "Adults Only",
}

var pegiNames = map[int64]string{
	1: "PEGI 3",
	2: "PEGI 7",
	3: "PEGI 12",
	4: "PEGI 16",
	5: "PEGI 18",
}

// pegiAllowed is the allowed list for the optional pegi choice field.
var pegiAllowed = []string{"PEGI 3", "PEGI 7", "PEGI 12", "PEGI 16", "PEGI 18"}
