package profile

// Profile describes the coordinator using the device
type Profile struct {
	FullName      string `json:"fullName"`
	Position      string `json:"position"`
	Municipality  string `json:"municipality"`
	ContactNumber string `json:"contactNumber"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	CoverURL      string `json:"coverUrl,omitempty"`
}
