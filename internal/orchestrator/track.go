package orchestrator

// Track is an immutable descriptor of a playable item, as returned by a
// node's load-tracks endpoint. Encoded is the node-specific opaque base64
// blob that must be replayed verbatim in a later updatePlayer call.
type Track struct {
	Encoded      string `json:"encoded"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	LengthMs     int64  `json:"lengthMs"`
	URI          string `json:"uri,omitempty"`
	ThumbnailURI string `json:"thumbnailUri,omitempty"`
	RequesterID  string `json:"-"`
}

// Equal compares tracks by encoded blob and requester, per the data model.
func (t Track) Equal(other Track) bool {
	return t.Encoded == other.Encoded && t.RequesterID == other.RequesterID
}

// loadType enumerates the possible values of a trackLoad response's
// loadType field.
type loadType string

const (
	loadTypeTrack    loadType = "TRACK_LOADED"
	loadTypePlaylist loadType = "PLAYLIST_LOADED"
	loadTypeSearch   loadType = "SEARCH_RESULT"
	loadTypeNoMatch  loadType = "NO_MATCHES"
	loadTypeFailed   loadType = "LOAD_FAILED"
)

// trackLoadTrackInfo mirrors the wire shape of a single track entry inside
// a trackLoad response.
type trackLoadTrackInfo struct {
	Encoded string `json:"encoded"`
	Info    struct {
		Title      string `json:"title"`
		Author     string `json:"author"`
		Length     int64  `json:"length"`
		URI        string `json:"uri"`
		ArtworkURL string `json:"artworkUrl"`
	} `json:"info"`
}

func (t trackLoadTrackInfo) toTrack(requesterID string) Track {
	return Track{
		Encoded:      t.Encoded,
		Title:        t.Info.Title,
		Author:       t.Info.Author,
		LengthMs:     t.Info.Length,
		URI:          t.Info.URI,
		ThumbnailURI: t.Info.ArtworkURL,
		RequesterID:  requesterID,
	}
}

// trackLoadResponse is the decoded response of GET /v3/loadtracks.
type trackLoadResponse struct {
	LoadType     loadType             `json:"loadType"`
	Tracks       []trackLoadTrackInfo `json:"tracks"`
	PlaylistInfo struct {
		SelectedTrack int `json:"selectedTrack"`
	} `json:"playlistInfo"`
}

// PlayResult is returned by Player.Play, summarizing what got queued and
// whether playback was (re)started as a result.
type PlayResult struct {
	Track     Track
	Count     int
	Playing   bool
	Truncated bool
}

// SeekResult is returned by Player.Seek when the node confirms the seek
// against a known current track.
type SeekResult struct {
	PositionMs int64
	TotalMs    int64
	Track      Track
}
