package loam

// EntryMetadata is the frontmatter of a project document. The body of the
// document carries the JSON or YAML payload itself, optionally wrapped in
// a fenced code block.
type EntryMetadata struct {
	ID   string `json:"id" mapstructure:"id"`
	Kind string `json:"kind" mapstructure:"kind"`
	Name string `json:"name" mapstructure:"name"`

	// Description is free text shown by `kinema inspect`.
	Description string `json:"description" mapstructure:"description"`
}
