package catalog

// Channel is one entry of the provider catalog. Immutable once fetched.
type Channel struct {
	ID              int    `json:"stream_id"`
	Name            string `json:"name"`
	CategoryID      string `json:"category_id"`
	ArchiveDuration int    `json:"tv_archive_duration"`
}

type Category struct {
	ID   string `json:"category_id"`
	Name string `json:"category_name"`
}
