package model

type Image struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Repository string   `json:"repository"`
	Tag        string   `json:"tag"`
	CreatedAt  string   `json:"created_at"`
	Size       string   `json:"size"`
	Projects   []string `json:"projects"`
}

// ImageName is the short listing form of an image.
type ImageName struct {
	Name string `json:"name"`
}

const noneMarker = "<none>"

// NormalizeImageName joins repository and tag. An unresolved repository
// yields "" and the image should be dropped; an unresolved tag yields the
// bare repository.
func NormalizeImageName(repository, tag string) string {
	if repository == "" || repository == noneMarker {
		return ""
	}
	if tag == "" || tag == noneMarker {
		return repository
	}
	return repository + ":" + tag
}
