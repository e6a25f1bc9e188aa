package project

// CreateProjectParams is the request body for creating a project.
// Technologies is a list of names; unknown names are created, repeated
// or re-cased names collapse to one tag.
type CreateProjectParams struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	GithubURL    *string  `json:"github_url"`
	DemoURL      *string  `json:"demo_url"`
	ImagePath    *string  `json:"image_path"`
	SortOrder    int      `json:"sort_order"`
	Technologies []string `json:"technologies"`
}

// UpdateProjectParams carries partial updates; nil fields are left
// untouched. A non-nil Technologies replaces the whole mapping set.
type UpdateProjectParams struct {
	Name         *string   `json:"name"`
	Description  *string   `json:"description"`
	GithubURL    *string   `json:"github_url"`
	DemoURL      *string   `json:"demo_url"`
	ImagePath    *string   `json:"image_path"`
	SortOrder    *int      `json:"sort_order"`
	Technologies *[]string `json:"technologies"`
}
