package profile

// CreateProfileParams carries the fields accepted on profile creation.
// Technologies are names; missing ones are created on the fly.
type CreateProfileParams struct {
	Greeting     string   `json:"greeting"`
	Nickname     string   `json:"nickname"`
	Slogan       string   `json:"slogan"`
	AboutMe      string   `json:"aboutMe"`
	Technologies []string `json:"technologies"`
}

// UpdateProfileParams carries optional fields for a partial update.
// A non-nil Technologies list replaces the whole mapping set.
type UpdateProfileParams struct {
	Greeting     *string   `json:"greeting,omitempty"`
	Nickname     *string   `json:"nickname,omitempty"`
	Slogan       *string   `json:"slogan,omitempty"`
	AboutMe      *string   `json:"aboutMe,omitempty"`
	Technologies *[]string `json:"technologies,omitempty"`
}
