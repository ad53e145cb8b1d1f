package mood

// DefaultGenre is used for labels the table does not know.
const DefaultGenre = "chill"

var emotionGenres = map[string]string{
	"happy":    "pop",
	"sad":      "acoustic",
	"angry":    "rock",
	"fear":     "ambient",
	"surprise": "dance",
	"disgust":  "metal",
	"neutral":  "chill",
}

// GenreFor maps a normalized emotion label to a playlist genre.
func GenreFor(emotion string) string {
	if g, ok := emotionGenres[emotion]; ok {
		return g
	}
	return DefaultGenre
}
