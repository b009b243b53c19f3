package domain

// SeedCatalog is a declarative set of reference data and games. Games refer
// to their publisher and category by name.
type SeedCatalog struct {
	Categories []SeedCategory
	Publishers []SeedPublisher
	Games      []SeedGame
}

type SeedCategory struct {
	Name string
}

type SeedPublisher struct {
	Name        string
	Description *string
}

type SeedGame struct {
	Title       string
	Description string
	StarRating  *float64
	Publisher   string
	Category    string
}

type SeedResult struct {
	CategoriesCreated int
	PublishersCreated int
	GamesCreated      int
	GamesSkipped      int
}
