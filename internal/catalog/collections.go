package catalog

const (
	categoryGeneral        = "General"
	categoryPublishing     = "Publishing"
	categoryClassification = "Classification"
	categoryPersonal       = "Personal"
	categoryFeatures       = "Features"
)

// SchemaFor builds the default schema for a collection type.
func SchemaFor(typ Type) *Schema {
	switch typ {
	case TypeBook:
		return BookSchema()
	case TypeVideo:
		return VideoSchema()
	case TypeGame:
		return GameSchema()
	default:
		return NewSchema(typ)
	}
}

// BookSchema builds the default book collection schema.
func BookSchema() *Schema {
	s := NewSchema(TypeBook)
	mustAdd(s,
		Field{Name: "title", Title: "Title", Category: categoryGeneral, Kind: KindTitle},
		Field{Name: "subtitle", Title: "Subtitle", Category: categoryGeneral, Kind: KindTitle},
		Field{Name: "author", Title: "Author", Category: categoryGeneral, Kind: KindName, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "series", Title: "Series", Category: categoryGeneral, Kind: KindTitle, Flags: FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "binding", Title: "Binding", Category: categoryGeneral, Kind: KindChoice, Flags: FlagAllowGrouped,
			Allowed: []string{"Hardback", "Paperback", "Trade Paperback", "E-Book", "Magazine", "Journal"}},
		Field{Name: "publisher", Title: "Publisher", Category: categoryPublishing, Kind: KindLine, Flags: FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "edition", Title: "Edition", Category: categoryPublishing, Kind: KindLine, Flags: FlagAllowCompletion},
		Field{Name: "pub_year", Title: "Publication Year", Category: categoryPublishing, Kind: KindNumber, Flags: FlagAllowGrouped},
		Field{Name: "isbn", Title: "ISBN#", Category: categoryPublishing, Kind: KindLine},
		Field{Name: "lccn", Title: "LCCN#", Category: categoryPublishing, Kind: KindLine},
		Field{Name: "pages", Title: "Pages", Category: categoryPublishing, Kind: KindNumber},
		Field{Name: "language", Title: "Language", Category: categoryPublishing, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "genre", Title: "Genre", Category: categoryClassification, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "keyword", Title: "Keywords", Category: categoryClassification, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "rating", Title: "Rating", Category: categoryPersonal, Kind: KindRating, Flags: FlagAllowGrouped},
		Field{Name: "cover", Title: "Front Cover", Kind: KindImage},
		Field{Name: "plot", Title: "Plot Summary", Kind: KindPara},
		Field{Name: "comments", Title: "Comments", Kind: KindPara},
	)
	s.SetIdentifiers("isbn", "lccn")
	s.SetMatchWeights([]FieldWeight{
		{Field: "title", Weight: 3},
		{Field: "author", Weight: 2},
		{Field: "series", Weight: 2},
		{Field: "publisher", Weight: 1},
		{Field: "pub_year", Weight: 1},
		{Field: "binding", Weight: 1},
	})
	return s
}

// VideoSchema builds the default video collection schema.
func VideoSchema() *Schema {
	s := NewSchema(TypeVideo)
	mustAdd(s,
		Field{Name: "title", Title: "Title", Category: categoryGeneral, Kind: KindTitle},
		Field{Name: "year", Title: "Production Year", Category: categoryGeneral, Kind: KindNumber, Flags: FlagAllowGrouped},
		Field{Name: "medium", Title: "Medium", Category: categoryGeneral, Kind: KindChoice, Flags: FlagAllowGrouped,
			Allowed: []string{"DVD", "Blu-ray", "HD DVD", "VHS", "VCD", "DivX", "Digital"}},
		Field{Name: "certification", Title: "Certification", Category: categoryGeneral, Kind: KindChoice, Flags: FlagAllowGrouped,
			Allowed: []string{"U (USA)", "G (USA)", "PG (USA)", "PG-13 (USA)", "R (USA)"}},
		Field{Name: "genre", Title: "Genre", Category: categoryGeneral, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "director", Title: "Director", Category: categoryFeatures, Kind: KindName, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "writer", Title: "Writer", Category: categoryFeatures, Kind: KindName, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "cast", Title: "Cast", Category: categoryFeatures, Kind: KindName, Flags: FlagAllowMultiple},
		Field{Name: "studio", Title: "Studio", Category: categoryFeatures, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "nationality", Title: "Nationality", Category: categoryFeatures, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped},
		Field{Name: "running-time", Title: "Running Time", Category: categoryFeatures, Kind: KindNumber},
		Field{Name: "imdb", Title: "IMDb Link", Category: categoryGeneral, Kind: KindURL},
		Field{Name: "rating", Title: "Personal Rating", Category: categoryPersonal, Kind: KindRating, Flags: FlagAllowGrouped},
		Field{Name: "keyword", Title: "Keywords", Category: categoryPersonal, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "cover", Title: "Cover", Kind: KindImage},
		Field{Name: "plot", Title: "Plot Summary", Kind: KindPara},
		Field{Name: "comments", Title: "Comments", Kind: KindPara},
	)
	s.SetIdentifiers("imdb")
	s.SetMatchWeights([]FieldWeight{
		{Field: "title", Weight: 3},
		{Field: "year", Weight: 2},
		{Field: "director", Weight: 1},
		{Field: "studio", Weight: 1},
		{Field: "running-time", Weight: 1},
		{Field: "medium", Weight: 1},
	})
	return s
}

// GameSchema builds the default video game collection schema.
func GameSchema() *Schema {
	s := NewSchema(TypeGame)
	mustAdd(s,
		Field{Name: "title", Title: "Title", Category: categoryGeneral, Kind: KindTitle},
		Field{Name: "platform", Title: "Platform", Category: categoryGeneral, Kind: KindChoice, Flags: FlagAllowGrouped,
			Allowed: []string{
				"Xbox One", "Xbox 360", "Xbox",
				"PlayStation4", "PlayStation3", "PlayStation2", "PlayStation", "PSP",
				"Nintendo Switch", "Nintendo Wii", "GameCube", "Nintendo 64", "Super Nintendo", "Nintendo",
				"Windows", "Mac OS", "Linux",
			}},
		Field{Name: "genre", Title: "Genre", Category: categoryGeneral, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "year", Title: "Release Year", Category: categoryGeneral, Kind: KindNumber, Flags: FlagAllowGrouped},
		Field{Name: "publisher", Title: "Publisher", Category: categoryGeneral, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "developer", Title: "Developer", Category: categoryGeneral, Kind: KindLine, Flags: FlagAllowMultiple | FlagAllowGrouped | FlagAllowCompletion},
		Field{Name: "certification", Title: "ESRB Rating", Category: categoryGeneral, Kind: KindChoice, Flags: FlagAllowGrouped,
			Allowed: []string{"Unrated", "Adults Only", "Mature", "Teen", "Everyone 10+", "Everyone", "Early Childhood", "Pending"}},
		// pub-id and dev-id hold raw company ids between search and resolve;
		// adapters clear them once the display names are looked up.
		Field{Name: "pub-id", Title: "Publisher ID", Category: categoryGeneral, Kind: KindNumber, Flags: FlagAllowMultiple},
		Field{Name: "dev-id", Title: "Developer ID", Category: categoryGeneral, Kind: KindNumber, Flags: FlagAllowMultiple},
		Field{Name: "rating", Title: "Personal Rating", Category: categoryPersonal, Kind: KindRating, Flags: FlagAllowGrouped},
		Field{Name: "cover", Title: "Cover", Kind: KindImage},
		Field{Name: "description", Title: "Description", Kind: KindPara},
		Field{Name: "comments", Title: "Comments", Kind: KindPara},
	)
	s.SetIdentifiers("igdb")
	s.SetMatchWeights([]FieldWeight{
		{Field: "title", Weight: 3},
		{Field: "platform", Weight: 2},
		{Field: "year", Weight: 1},
		{Field: "publisher", Weight: 1},
		{Field: "developer", Weight: 1},
	})
	return s
}

func mustAdd(s *Schema, fields ...Field) {
	for _, field := range fields {
		if err := s.AddField(field); err != nil {
			panic(err)
		}
	}
}
