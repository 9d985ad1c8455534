package catalog

// CardRecord is one catalog entry: the descriptive fields of a card plus the
// local reference image its embedding is generated from.
//
// HP is nil when the source data carried no parseable hit-point value; trainer
// and energy cards have none at all.
type CardRecord struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	SetCode         string `json:"set"`
	CollectorNumber string `json:"number"`
	HP              *int   `json:"hp,omitempty"`
	ImagePath       string `json:"image_path"`
}
