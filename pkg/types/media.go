package types

// Media is a stored media entity. Path is the absolute location of the
// original file inside the host's upload area.
type Media struct {
	ID       int64  `json:"mediaId"`
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Path     string `json:"-"`
	GUID     string `json:"guid,omitempty"`
}
