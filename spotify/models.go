package spotify

// ExternalURLs maps a platform name ("spotify") to a public link.
type ExternalURLs map[string]string

// User is the subset of the profile returned by /me.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

type Artist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

type Track struct {
	Name         string       `json:"name"`
	Artists      []Artist     `json:"artists"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

type Playlist struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

type savedTracksPage struct {
	Items []struct {
		Track *Track `json:"track"`
	} `json:"items"`
	Total int `json:"total"`
}

type searchResult struct {
	Playlists struct {
		Items []*Playlist `json:"items"`
	} `json:"playlists"`
}
