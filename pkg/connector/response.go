package connector

// Entry is the wire shape of one file or directory, shared by every
// listing key (cwd, files, added, changed, tree).
type Entry struct {
	// Name is the entry's base name; the volume alias at a root.
	Name string `json:"name"`

	// Hash is the entry's target token.
	Hash string `json:"hash"`

	// PHash is the parent's token; absent on volume roots.
	PHash string `json:"phash,omitempty"`

	// Mime is the content type; "directory" for directories.
	Mime string `json:"mime"`

	// Ts is the modification time in unix seconds.
	Ts int64 `json:"ts"`

	// Size is the length in bytes; 0 for directories.
	Size int64 `json:"size"`

	// Dirs marks directories that contain visible subdirectories.
	Dirs int `json:"dirs,omitempty"`

	Read   int `json:"read"`
	Write  int `json:"write"`
	Locked int `json:"locked"`

	// Tmb is the thumbnail token when cached, or "1" when one can be
	// generated on request.
	Tmb string `json:"tmb,omitempty"`

	// Dim is "WxH" for decodable images.
	Dim string `json:"dim,omitempty"`

	// VolumeID is set on volume-root directories only.
	VolumeID string `json:"volumeid,omitempty"`
}

// Options is the per-cwd option block of open/init responses.
type Options struct {
	Path          string   `json:"path"`
	URL           string   `json:"url,omitempty"`
	TmbURL        string   `json:"tmbUrl,omitempty"`
	Separator     string   `json:"separator"`
	Disabled      []string `json:"disabled"`
	CopyOverwrite int      `json:"copyOverwrite"`
}

type OpenResponse struct {
	API        float64  `json:"api,omitempty"`
	Cwd        Entry    `json:"cwd"`
	Files      []Entry  `json:"files"`
	Options    *Options `json:"options,omitempty"`
	UplMaxSize string   `json:"uplMaxSize,omitempty"`
	NetDrivers []string `json:"netDrivers,omitempty"`
}

type TreeResponse struct {
	Tree []Entry `json:"tree"`
}

type LsResponse struct {
	List []string `json:"list"`
}

type AddedResponse struct {
	Added []Entry `json:"added"`
}

type RemovedResponse struct {
	Removed []string `json:"removed"`
}

type AddedRemovedResponse struct {
	Added   []Entry  `json:"added"`
	Removed []string `json:"removed"`
}

type ChangedResponse struct {
	Changed []Entry `json:"changed"`
}

type ContentResponse struct {
	Content string `json:"content"`
}

type DimResponse struct {
	Dim string `json:"dim"`
}

type TmbResponse struct {
	Images map[string]string `json:"images"`
}
