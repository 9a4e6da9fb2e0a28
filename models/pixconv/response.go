package pixconv

type ImageInfo struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	BitDepth   int    `json:"bitDepth"`
	ColorType  string `json:"colorType"`
	Channels   int    `json:"channels"`
	Interlaced bool   `json:"interlaced"`
	Supported  bool   `json:"supported"`
	Reason     string `json:"reason,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Phase string `json:"phase,omitempty"`
}
